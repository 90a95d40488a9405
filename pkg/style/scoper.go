// Package style implements the CSS scoping transform for emulated view
// encapsulation: every selector gains a per-component content
// attribute, :host/:host-context become host-attribute forms, and at-rule
// preludes pass through untouched.
package style

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Placeholders the runtime substitutes with the per-component id; the
// emitter leaves them literal.
const (
	ContentAttr = "[_ngcontent-%COMP%]"
	HostAttr    = "[_nghost-%COMP%]"
)

// cssLexer tokenizes stylesheets; strings and comments get their own
// token kinds so that braces and semicolons inside them never count as
// structure.
var cssLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Comment", Pattern: `/\*(?:[^*]|\*+[^*/])*\*+/`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`},
		{Name: "AtKeyword", Pattern: `@[a-zA-Z-]+`},
		{Name: "LBrace", Pattern: `\{`},
		{Name: "RBrace", Pattern: `\}`},
		{Name: "Semi", Pattern: `;`},
		{Name: "Text", Pattern: `[^{};"'@/]+`},
		{Name: "Any", Pattern: `[/@]`},
	},
})

func cssSymbol(name string) lexer.TokenType {
	return cssLexer.Symbols()[name]
}

// Scoper rewrites stylesheets for one encapsulation scope. The zero
// configuration uses the %COMP% placeholder attributes.
type Scoper struct {
	contentAttr string
	hostAttr    string
}

// NewScoper returns a scoper emitting the standard placeholder attributes.
func NewScoper() *Scoper {
	return &Scoper{contentAttr: ContentAttr, hostAttr: HostAttr}
}

// Scope rewrites every rule of css so its selectors match only elements
// carrying the component's scope attribute. Unparseable input is returned
// unchanged: a broken stylesheet is the browser's problem to report, not
// a compile abort.
func (s *Scoper) Scope(css string) string {
	toks, err := cssTokens(css)
	if err != nil {
		return css
	}
	var out strings.Builder
	w := &walker{s: s, toks: toks}
	w.rules(&out, false)
	return out.String()
}

func cssTokens(css string) ([]lexer.Token, error) {
	lx, err := cssLexer.LexString("", css)
	if err != nil {
		return nil, err
	}
	var out []lexer.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			return out, nil
		}
		out = append(out, tok)
	}
}

type walker struct {
	s    *Scoper
	toks []lexer.Token
	pos  int
}

func (w *walker) peek() (lexer.Token, bool) {
	if w.pos >= len(w.toks) {
		return lexer.Token{}, false
	}
	return w.toks[w.pos], true
}

func (w *walker) next() lexer.Token {
	t := w.toks[w.pos]
	w.pos++
	return t
}

// rules processes a run of rules until EOF or, when nested, the closing
// brace of the enclosing conditional at-rule. raw disables selector
// scoping (inside @keyframes, whose "selectors" are keyframe offsets).
func (w *walker) rules(out *strings.Builder, raw bool) {
	var prelude strings.Builder
	flushPrelude := func() {
		out.WriteString(prelude.String())
		prelude.Reset()
	}
	for {
		t, ok := w.peek()
		if !ok {
			flushPrelude()
			return
		}
		switch t.Type {
		case cssSymbol("RBrace"):
			flushPrelude()
			return
		case cssSymbol("Semi"):
			// an at-rule like @import, or a stray semicolon
			w.next()
			flushPrelude()
			out.WriteString(";")
		case cssSymbol("LBrace"):
			w.next()
			pre := prelude.String()
			prelude.Reset()
			switch atKind(pre) {
			case atConditional:
				out.WriteString(pre)
				out.WriteString("{")
				w.rules(out, raw)
				w.closeBrace(out)
			case atRaw:
				out.WriteString(pre)
				out.WriteString("{")
				w.copyBalanced(out)
			default:
				if raw {
					out.WriteString(pre)
				} else {
					out.WriteString(w.s.scopeSelectorList(pre))
				}
				out.WriteString("{")
				w.copyBalanced(out)
			}
		default:
			prelude.WriteString(w.next().Value)
		}
	}
}

func (w *walker) closeBrace(out *strings.Builder) {
	if t, ok := w.peek(); ok && t.Type == cssSymbol("RBrace") {
		w.next()
		out.WriteString("}")
	}
}

// copyBalanced copies a declaration block verbatim through its matching
// close brace.
func (w *walker) copyBalanced(out *strings.Builder) {
	depth := 1
	for depth > 0 {
		t, ok := w.peek()
		if !ok {
			return
		}
		w.next()
		switch t.Type {
		case cssSymbol("LBrace"):
			depth++
		case cssSymbol("RBrace"):
			depth--
		}
		out.WriteString(t.Value)
	}
}

type atRuleKind int

const (
	atNone atRuleKind = iota
	atConditional
	atRaw
)

// atKind classifies a rule prelude: conditional at-rules recurse with
// scoping applied to their inner rules; @keyframes/@font-face/@page keep
// both prelude and body untouched.
func atKind(prelude string) atRuleKind {
	trimmed := strings.TrimSpace(prelude)
	if !strings.HasPrefix(trimmed, "@") {
		return atNone
	}
	name := trimmed[1:]
	if i := strings.IndexAny(name, " \t\r\n("); i >= 0 {
		name = name[:i]
	}
	switch strings.TrimPrefix(strings.ToLower(name), "-webkit-") {
	case "media", "supports", "layer", "container", "document":
		return atConditional
	default:
		return atRaw
	}
}

// scopeSelectorList rewrites one selector list (the text before a rule's
// opening brace), preserving trailing whitespace so declaration blocks
// stay glued the way the author wrote them.
func (s *Scoper) scopeSelectorList(list string) string {
	lead := list[:len(list)-len(strings.TrimLeft(list, " \t\r\n"))]
	trail := list[len(strings.TrimRight(list, " \t\r\n")):]
	body := strings.TrimSpace(list)
	if body == "" {
		return list
	}
	parts := splitTopLevel(body, ',')
	for i, p := range parts {
		parts[i] = s.scopeSelector(strings.TrimSpace(p))
	}
	return lead + strings.Join(parts, ", ") + trail
}

// scopeSelector rewrites one complex selector compound by compound: in a
// descendant chain like `a b`, every compound gets the scope attribute.
func (s *Scoper) scopeSelector(sel string) string {
	if strings.Contains(sel, "::slotted") {
		return sel
	}
	compounds, combinators := splitCompounds(sel)
	for i, c := range compounds {
		compounds[i] = s.scopeCompound(c)
	}
	var b strings.Builder
	for i, c := range compounds {
		b.WriteString(c)
		if i < len(combinators) {
			b.WriteString(combinators[i])
		}
	}
	return b.String()
}

// scopeCompound applies the scope attribute to a single compound selector.
// Already-scoped compounds pass through unchanged, which makes the whole
// transform idempotent.
func (s *Scoper) scopeCompound(c string) string {
	if c == "" || strings.Contains(c, "%COMP%") {
		return c
	}
	if strings.HasPrefix(c, ":host-context") {
		return s.rewriteHostContext(c)
	}
	if strings.HasPrefix(c, ":host") {
		return s.rewriteHost(c)
	}
	// insert before the first pseudo so `.foo:hover` becomes
	// `.foo[_ngcontent-%COMP%]:hover`
	if i := pseudoIndex(c); i >= 0 {
		return c[:i] + s.contentAttr + c[i:]
	}
	return c + s.contentAttr
}

// rewriteHost turns `:host` into the host attribute and `:host(X)` into
// the host attribute with X compounded onto it.
func (s *Scoper) rewriteHost(c string) string {
	rest := c[len(":host"):]
	if strings.HasPrefix(rest, "(") {
		if end := matchParen(rest); end > 0 {
			return s.hostAttr + rest[1:end] + rest[end+1:]
		}
	}
	return s.hostAttr + rest
}

// rewriteHostContext turns `:host-context(X)` into a parent-combinator
// form that preserves ancestor matching: `X [_nghost-%COMP%]`.
func (s *Scoper) rewriteHostContext(c string) string {
	rest := c[len(":host-context"):]
	if !strings.HasPrefix(rest, "(") {
		return s.hostAttr + rest
	}
	end := matchParen(rest)
	if end <= 0 {
		return s.hostAttr
	}
	ancestor := rest[1:end]
	return ancestor + " " + s.hostAttr + rest[end+1:]
}

// pseudoIndex finds the position of the first top-level pseudo-class or
// pseudo-element in a compound, -1 if none. A leading `:` (as in a bare
// `:hover`) is treated as position 0.
func pseudoIndex(c string) int {
	depth := 0
	for i := 0; i < len(c); i++ {
		switch c[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ':':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func matchParen(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits on sep outside parens, brackets, and quotes.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote && (i == 0 || s[i-1] != '\\') {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// splitCompounds splits a complex selector into its compound selectors
// and the combinator strings between them, preserving the author's
// combinator spelling (` `, ` > `, `+`, `~`).
func splitCompounds(sel string) ([]string, []string) {
	var compounds, combinators []string
	depth := 0
	start := 0
	i := 0
	for i < len(sel) {
		c := sel[i]
		switch c {
		case '(', '[':
			depth++
			i++
		case ')', ']':
			depth--
			i++
		case ' ', '\t', '>', '+', '~':
			if depth > 0 {
				i++
				continue
			}
			j := i
			for j < len(sel) && (sel[j] == ' ' || sel[j] == '\t' || sel[j] == '>' || sel[j] == '+' || sel[j] == '~') {
				j++
			}
			compounds = append(compounds, sel[start:i])
			combinators = append(combinators, sel[i:j])
			start = j
			i = j
		default:
			i++
		}
	}
	compounds = append(compounds, sel[start:])
	return compounds, combinators
}
