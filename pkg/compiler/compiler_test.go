package compiler

import (
	"strings"
	"testing"

	"github.com/gaarutyunov/facet/pkg/diag"
)

const helloManifest = `{
  "components": [
    {
      "className": "HelloComponent",
      "selector": "app-hello",
      "standalone": true,
      "changeDetection": "OnPush",
      "template": "<p>{{ title }}</p>",
      "styles": [".a{color:red}"],
      "inputs": [{"public": "title"}],
      "outputs": [{"public": "done"}]
    }
  ]
}`

func TestCompileComponent(t *testing.T) {
	res := New().Compile("hello.json", helloManifest)
	if hasErrors(res.Diagnostics) {
		t.Fatalf("unexpected errors: %v", res.Diagnostics)
	}
	for _, want := range []string{
		"export class HelloComponent {",
		"static ɵfac = function HelloComponent_Factory(t)",
		"i0.ɵɵdefineComponent({",
		`selectors: [["app-hello"]],`,
		"decls: 2,",
		"vars: 1,",
		`inputs: { title: "title" },`,
		`outputs: { done: "done" },`,
		"changeDetection: 0,",
		`.a[_ngcontent-%COMP%]{color:red}`,
	} {
		if !strings.Contains(res.Code, want) {
			t.Errorf("output missing %q\n%s", want, res.Code)
		}
	}
}

func hasErrors(diags []*diag.Diagnostic) bool {
	for _, d := range diags {
		if d.Category == diag.Error {
			return true
		}
	}
	return false
}

func TestCompileReportsFatalAsErrorCode(t *testing.T) {
	manifest := `{"components": [{"className": "Bad", "selector": "x-bad",
		"template": "@for (item of items) {<b>{{item}}</b>}"}]}`
	res := New().Compile("bad.json", manifest)
	if !strings.HasPrefix(res.Code, "/* Error") {
		t.Fatalf("fatal diagnostic must abort emission, got %q", res.Code)
	}
	if !hasErrors(res.Diagnostics) {
		t.Fatalf("expected an error diagnostic")
	}
}

func TestCompileInvalidManifest(t *testing.T) {
	res := New().Compile("broken.json", "{not json")
	if !strings.HasPrefix(res.Code, "/* Error") {
		t.Fatalf("expected error code output, got %q", res.Code)
	}
}

func TestCompileBatchPreservesOrder(t *testing.T) {
	single := func(name string) File {
		return File{Filename: name, Content: `{"components": [{"className": "C` + name[:1] + `", "selector": "x-a", "template": "<p>hi</p>"}]}`}
	}
	files := []File{single("aaa.json"), single("bbb.json"), single("ccc.json")}
	results := New().CompileBatch(files)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Filename != files[i].Filename {
			t.Errorf("result %d out of order: %s", i, res.Filename)
		}
		if strings.HasPrefix(res.Code, "/* Error") {
			t.Errorf("unexpected failure for %s: %s", res.Filename, res.Code)
		}
	}
}

func TestCompileDeterministic(t *testing.T) {
	c := New()
	first := c.Compile("hello.json", helloManifest)
	second := c.Compile("hello.json", helloManifest)
	if first.Code != second.Code {
		t.Fatalf("identical input must produce byte-identical output")
	}
}

func TestCompileCancellation(t *testing.T) {
	res := New().CompileOpts("hello.json", helloManifest, Options{Cancelled: func() bool { return true }})
	if strings.Contains(res.Code, "defineComponent") {
		t.Fatalf("cancelled compilation must not emit definitions")
	}
}

func TestCompileDirectiveWithHost(t *testing.T) {
	manifest := `{
	  "components": [
	    {
	      "className": "TooltipDirective",
	      "kind": "directive",
	      "selector": "[tooltip]",
	      "standalone": true,
	      "host": {"[attr.title]": "text", "(mouseenter)": "show()"},
	      "inputs": [{"public": "text"}]
	    }
	  ]
	}`
	res := New().Compile("dir.json", manifest)
	if hasErrors(res.Diagnostics) {
		t.Fatalf("unexpected errors: %v", res.Diagnostics)
	}
	for _, want := range []string{
		"i0.ɵɵdefineDirective({",
		"hostBindings: function TooltipDirective_HostBindings(rf, ctx)",
		`i0.ɵɵattribute("title", ctx.text);`,
		`i0.ɵɵlistener("mouseenter", function() {`,
	} {
		if !strings.Contains(res.Code, want) {
			t.Errorf("output missing %q\n%s", want, res.Code)
		}
	}
}

func TestCompilePipeRecord(t *testing.T) {
	manifest := `{"components": [{"className": "ReversePipe", "kind": "pipe", "pipeName": "reverse", "standalone": true}]}`
	res := New().Compile("pipe.json", manifest)
	if !strings.Contains(res.Code, "i0.ɵɵdefinePipe({") {
		t.Fatalf("pipe definition missing\n%s", res.Code)
	}
}
