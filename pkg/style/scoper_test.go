package style

import (
	"strings"
	"testing"
)

func TestScopeSimpleAndHost(t *testing.T) {
	s := NewScoper()
	got := s.Scope(".a{color:red} :host .b{color:blue}")
	want := ".a[_ngcontent-%COMP%]{color:red} [_nghost-%COMP%] .b[_ngcontent-%COMP%]{color:blue}"
	if got != want {
		t.Errorf("Scope() = %q, want %q", got, want)
	}
}

func TestScopeIdempotent(t *testing.T) {
	s := NewScoper()
	inputs := []string{
		".a{color:red}",
		":host{display:block}",
		":host .b{color:blue}",
		"div > span.x{margin:0}",
		"@media (max-width: 600px) { .c{color:green} }",
	}
	for _, css := range inputs {
		once := s.Scope(css)
		twice := s.Scope(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\n once: %q\ntwice: %q", css, once, twice)
		}
	}
}

func TestHostBecomesAttrExactlyOnce(t *testing.T) {
	s := NewScoper()
	got := s.Scope(":host{display:block}")
	if strings.Contains(got, ":host") {
		t.Errorf(":host must be replaced, got %q", got)
	}
	if strings.Count(got, HostAttr) != 1 {
		t.Errorf("host attribute must appear exactly once, got %q", got)
	}
}

func TestHostWithArgument(t *testing.T) {
	s := NewScoper()
	got := s.Scope(":host(.active){color:red}")
	if !strings.Contains(got, "[_nghost-%COMP%].active") {
		t.Errorf(":host(X) must compound X onto the host attribute, got %q", got)
	}
}

func TestHostContext(t *testing.T) {
	s := NewScoper()
	got := s.Scope(":host-context(.dark) {color:white}")
	if !strings.Contains(got, ".dark [_nghost-%COMP%]") {
		t.Errorf(":host-context must preserve ancestor matching, got %q", got)
	}
}

func TestPseudoInsertionPoint(t *testing.T) {
	s := NewScoper()
	got := s.Scope(".foo:hover{color:red}")
	if !strings.Contains(got, ".foo[_ngcontent-%COMP%]:hover") {
		t.Errorf("attribute must precede the pseudo, got %q", got)
	}
}

func TestDescendantCompoundsAllScoped(t *testing.T) {
	s := NewScoper()
	got := s.Scope("ul li a{color:red}")
	want := "ul[_ngcontent-%COMP%] li[_ngcontent-%COMP%] a[_ngcontent-%COMP%]{color:red}"
	if got != want {
		t.Errorf("Scope() = %q, want %q", got, want)
	}
}

func TestSelectorListEachScoped(t *testing.T) {
	s := NewScoper()
	got := s.Scope("h1, h2{margin:0}")
	want := "h1[_ngcontent-%COMP%], h2[_ngcontent-%COMP%]{margin:0}"
	if got != want {
		t.Errorf("Scope() = %q, want %q", got, want)
	}
}

func TestMediaRecursesKeyframesUntouched(t *testing.T) {
	s := NewScoper()
	got := s.Scope("@media screen { .a{color:red} } @keyframes spin { from{transform:none} to{transform:rotate(1turn)} }")
	if !strings.Contains(got, "@media screen { .a[_ngcontent-%COMP%]{color:red} }") {
		t.Errorf("rules inside @media must be scoped, got %q", got)
	}
	if !strings.Contains(got, "@keyframes spin { from{transform:none} to{transform:rotate(1turn)} }") {
		t.Errorf("@keyframes content must stay untouched, got %q", got)
	}
}

func TestFontFaceUntouched(t *testing.T) {
	s := NewScoper()
	css := `@font-face { font-family: "Custom"; src: url(x.woff2); }`
	if got := s.Scope(css); got != css {
		t.Errorf("@font-face must pass through, got %q", got)
	}
}

func TestSlottedUntouched(t *testing.T) {
	s := NewScoper()
	css := "::slotted(span){color:red}"
	if got := s.Scope(css); got != css {
		t.Errorf("::slotted selectors must not be scoped, got %q", got)
	}
}

func TestCommentsAndStringsPreserved(t *testing.T) {
	s := NewScoper()
	css := `.a{content:"}{"}`
	got := s.Scope(css)
	if !strings.Contains(got, `content:"}{"`) {
		t.Errorf("string contents must not be treated as structure, got %q", got)
	}
}

func TestChildCombinatorSpellingPreserved(t *testing.T) {
	s := NewScoper()
	got := s.Scope("div > span{margin:0}")
	want := "div[_ngcontent-%COMP%] > span[_ngcontent-%COMP%]{margin:0}"
	if got != want {
		t.Errorf("Scope() = %q, want %q", got, want)
	}
}
