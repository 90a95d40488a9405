package decorator

import (
	"testing"

	"github.com/gaarutyunov/facet/pkg/component"
)

func TestExtractComponent(t *testing.T) {
	manifest := []byte(`{
	  "components": [
	    {
	      "className": "AppComponent",
	      "selector": "app-root",
	      "standalone": true,
	      "changeDetection": "OnPush",
	      "encapsulation": "None",
	      "template": "<p>hi</p>",
	      "styles": ["p{margin:0}"],
	      "inputs": [
	        {"public": "title"},
	        {"public": "mode", "field": "modeField", "required": true, "transform": "toMode"}
	      ],
	      "outputs": [{"public": "done", "field": "doneEmitter"}],
	      "dependencies": [
	        {"className": "UpperCasePipe", "kind": "pipe", "pipeName": "uppercase"},
	        {"className": "ChildComponent", "kind": "component"}
	      ],
	      "hostDirectives": ["FocusDirective", {"className": "ThemeDirective", "inputs": ["theme"]}],
	      "ctorDeps": ["ElementRef"]
	    }
	  ]
	}`)
	records, err := New().Extract("app.json", manifest)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.ClassName != "AppComponent" || rec.Kind != component.KindComponent {
		t.Errorf("identity wrong: %#v", rec)
	}
	if rec.ChangeDetection != component.ChangeDetectionOnPush {
		t.Errorf("expected OnPush")
	}
	if rec.Encapsulation != component.EncapsulationNone {
		t.Errorf("expected None encapsulation")
	}
	if len(rec.Inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %d", len(rec.Inputs))
	}
	if rec.Inputs[0].Public != "title" || rec.Inputs[0].Field != "title" {
		t.Errorf("input 0 wrong: %#v", rec.Inputs[0])
	}
	if rec.Inputs[1].Field != "modeField" || !rec.Inputs[1].Required || rec.Inputs[1].Transform != "toMode" {
		t.Errorf("input 1 wrong: %#v", rec.Inputs[1])
	}
	if len(rec.Outputs) != 1 || rec.Outputs[0].Field != "doneEmitter" {
		t.Errorf("outputs wrong: %#v", rec.Outputs)
	}
	purity := rec.PipePurity()
	if pure, ok := purity["uppercase"]; !ok || !pure {
		t.Errorf("pipe purity table wrong: %#v", purity)
	}
	if len(rec.HostDirectives) != 2 {
		t.Fatalf("expected 2 host directives, got %d", len(rec.HostDirectives))
	}
	if rec.HostDirectives[0].ClassName != "FocusDirective" {
		t.Errorf("bare host directive wrong: %#v", rec.HostDirectives[0])
	}
	if rec.HostDirectives[1].ClassName != "ThemeDirective" || len(rec.HostDirectives[1].Inputs) != 1 {
		t.Errorf("object host directive wrong: %#v", rec.HostDirectives[1])
	}
	if len(rec.CtorDeps) != 1 || rec.CtorDeps[0] != "ElementRef" {
		t.Errorf("ctor deps wrong: %#v", rec.CtorDeps)
	}
}

func TestExtractHostMap(t *testing.T) {
	manifest := []byte(`{
	  "components": [
	    {
	      "className": "D", "kind": "directive", "selector": "[d]",
	      "host": {"[attr.role]": "role", "(click)": "onClick($event)", "tabindex": "0"}
	    }
	  ]
	}`)
	records, err := New().Extract("d.json", manifest)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	rec := records[0]
	if len(rec.HostBindings) != 2 {
		t.Fatalf("expected 2 host bindings, got %#v", rec.HostBindings)
	}
	if rec.HostBindings[0].Target != "attr.role" {
		t.Errorf("binding 0 wrong: %#v", rec.HostBindings[0])
	}
	if rec.HostBindings[1].Target != "attr.tabindex" || rec.HostBindings[1].Expr != `"0"` {
		t.Errorf("static host attr wrong: %#v", rec.HostBindings[1])
	}
	if len(rec.HostListeners) != 1 || rec.HostListeners[0].Event != "click" {
		t.Errorf("host listeners wrong: %#v", rec.HostListeners)
	}
}

func TestParseDeclaration(t *testing.T) {
	rec, err := ParseDeclaration([]byte(`{"className": "X", "selector": "x-x", "template": "<b>y</b>"}`))
	if err != nil {
		t.Fatalf("ParseDeclaration failed: %v", err)
	}
	if rec.ClassName != "X" || rec.Template != "<b>y</b>" {
		t.Errorf("record wrong: %#v", rec)
	}
}

func TestExtractRejectsBadHostDirectives(t *testing.T) {
	manifest := []byte(`{"components": [{"className": "X", "hostDirectives": {"not": "an array"}}]}`)
	if _, err := New().Extract("x.json", manifest); err == nil {
		t.Fatalf("non-array hostDirectives must be rejected")
	}
}
