package codegen

import (
	"strings"
	"testing"

	"github.com/gaarutyunov/facet/pkg/component"
	"github.com/gaarutyunov/facet/pkg/diag"
	"github.com/gaarutyunov/facet/pkg/ir"
	"github.com/gaarutyunov/facet/pkg/phases"
	"github.com/gaarutyunov/facet/pkg/template"
)

func emit(t *testing.T, rec *component.Record) string {
	t.Helper()
	bag := &diag.Bag{}
	tpl, parseBag := template.Parse("test.html", rec.Template, false)
	bag.Extend(parseBag)
	b := phases.NewBuilder(rec.ClassName, bag)
	root := b.Build(tpl)
	pool := ir.NewConstPool()
	fns := &phases.PureFunctionPool{}
	phases.NewPipeline(b, &phases.PipeRegistry{Pure: rec.PipePurity()}, pool, fns, bag).Run(root)
	if bag.HasErrors() {
		t.Fatalf("pipeline errors: %v", bag.All())
	}
	out, err := NewEmitter().Emit(&Component{
		Record: rec, Root: root, Pool: pool, Fns: fns.Fns, Tags: b.TagNames(), Styles: rec.Styles,
	})
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	return string(out)
}

func record(className, selector, tpl string) *component.Record {
	return &component.Record{
		ClassName:       className,
		Selector:        selector,
		Template:        tpl,
		Standalone:      true,
		ChangeDetection: component.ChangeDetectionDefault,
	}
}

func TestEmitSimpleComponent(t *testing.T) {
	code := emit(t, record("HelloComponent", "app-hello", "<p>{{ title }}</p>"))
	for _, want := range []string{
		`import * as i0 from "@angular/core";`,
		"export class HelloComponent {",
		"static ɵfac = function HelloComponent_Factory(t) { return new (t || HelloComponent)(); };",
		"static ɵcmp = /* @__PURE__ */ i0.ɵɵdefineComponent({",
		"type: HelloComponent,",
		`selectors: [["app-hello"]],`,
		"decls: 2,",
		"vars: 1,",
		"template: function HelloComponent_Template(rf, ctx) {",
		"if (rf & 1) {",
		`i0.ɵɵelementStart(0, "p");`,
		"i0.ɵɵtext(1);",
		"i0.ɵɵelementEnd();",
		"if (rf & 2) {",
		"i0.ɵɵadvance();",
		"i0.ɵɵtextInterpolate(ctx.title);",
		"standalone: true,",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("output missing %q\n%s", want, code)
		}
	}
}

func TestEmitListener(t *testing.T) {
	code := emit(t, record("App", "app-root", `<button (click)="handler()">Go</button>`))
	for _, want := range []string{
		`i0.ɵɵelementStart(0, "button", 0);`,
		`i0.ɵɵlistener("click", function App_click_0_listener() {`,
		"return i0.ɵɵresetView(ctx.handler());",
		`i0.ɵɵtext(1, "Go");`,
		"consts: [[3, \"click\"]],",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("output missing %q\n%s", want, code)
		}
	}
}

func TestEmitTwoWayBinding(t *testing.T) {
	code := emit(t, record("App", "app-root", `<input [(ngModel)]="name">`))
	for _, want := range []string{
		`i0.ɵɵtwoWayProperty("ngModel", ctx.name);`,
		`i0.ɵɵtwoWayListener("ngModelChange", function($event) {`,
		"i0.ɵɵtwoWayBindingSet(ctx.name, $event) || (ctx.name = $event);",
		"return $event;",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("output missing %q\n%s", want, code)
		}
	}
}

func TestEmitPureFunctions(t *testing.T) {
	code := emit(t, record("App", "app-root", `<a [routerLink]="['/home']" [queryParams]="{ref: 'x'}">go</a>`))
	for _, want := range []string{
		`const _c0 = () => ["/home"];`,
		`const _c1 = () => ({ ref: "x" });`,
		`i0.ɵɵproperty("routerLink", i0.ɵɵpureFunction0(2, _c0))("queryParams", i0.ɵɵpureFunction0(3, _c1));`,
	} {
		if !strings.Contains(code, want) {
			t.Errorf("output missing %q\n%s", want, code)
		}
	}
}

func TestEmitRepeater(t *testing.T) {
	code := emit(t, record("App", "app-root", `@for (item of items; track item.id) {<div>{{item.name}}</div>}`))
	for _, want := range []string{
		"const _forTrack0 = ($index, $item) => $item.id;",
		"function App_For_0_Template(rf, ctx) {",
		"i0.ɵɵtextInterpolate(ctx.$implicit.name);",
		"i0.ɵɵrepeaterCreate(0, App_For_0_Template, 2, 1, _forTrack0);",
		"i0.ɵɵrepeater(ctx.items);",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("output missing %q\n%s", want, code)
		}
	}
}

func TestEmitConditional(t *testing.T) {
	code := emit(t, record("App", "app-root", `@if (a) {<b>1</b>} @else if (b) {<b>2</b>} @else {<b>3</b>}`))
	for _, want := range []string{
		"i0.ɵɵconditionalCreate(0, App_Conditional_0_Template, 2, 0, App_Conditional_1_Template, 2, 0, App_Conditional_2_Template, 2, 0);",
		"i0.ɵɵconditional(ctx.a ? 0 : ctx.b ? 1 : 2);",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("output missing %q\n%s", want, code)
		}
	}
}

func TestEmitSwitch(t *testing.T) {
	code := emit(t, record("App", "app-root", `@switch (mode) { @case (1) {<b>a</b>} @default {<b>c</b>} }`))
	if !strings.Contains(code, "i0.ɵɵconditional(ctx.mode === 1 ? 0 : 1);") {
		t.Errorf("switch select wrong\n%s", code)
	}
}

func TestEmitPipe(t *testing.T) {
	rec := record("App", "app-root", `<p>{{ name | uppercase }}</p>`)
	rec.Dependencies = []component.Dependency{{ClassName: "UpperCasePipe", Kind: component.KindPipe, PipeName: "uppercase", PipePure: true}}
	code := emit(t, rec)
	for _, want := range []string{
		`i0.ɵɵpipe(2, "uppercase");`,
		"i0.ɵɵtextInterpolate(i0.ɵɵpipeBind1(2, 1, ctx.name));",
		"dependencies: [UpperCasePipe],",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("output missing %q\n%s", want, code)
		}
	}
}

func TestEmitMetadataShapes(t *testing.T) {
	rec := record("App", "app-root", "<p>x</p>")
	rec.ChangeDetection = component.ChangeDetectionOnPush
	rec.Inputs = []component.Input{{Public: "title", Field: "title"}, {Public: "count", Field: "countField"}}
	rec.Outputs = []component.Output{{Public: "done", Field: "done"}}
	code := emit(t, rec)
	for _, want := range []string{
		`inputs: { title: "title", count: "countField" },`,
		`outputs: { done: "done" },`,
		"changeDetection: 0,",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("output missing %q\n%s", want, code)
		}
	}
}

func TestEmitRichInputShape(t *testing.T) {
	rec := record("App", "app-root", "<p>x</p>")
	rec.Inputs = []component.Input{
		{Public: "title", Field: "title", Required: true},
		{Public: "mode", Field: "mode"},
	}
	code := emit(t, rec)
	if !strings.Contains(code, `inputs: { title: [1, "title"], mode: [0, "mode"] },`) {
		t.Errorf("rich input shape wrong\n%s", code)
	}
}

func TestEmitDeterministic(t *testing.T) {
	rec := record("App", "app-root", `<div [a]="x" [b]="y" (c)="z()">{{w}}</div>`)
	first := emit(t, rec)
	second := emit(t, rec)
	if first != second {
		t.Fatalf("emission is not byte-reproducible")
	}
}

func TestEmitDirective(t *testing.T) {
	rec := &component.Record{
		ClassName:  "HighlightDirective",
		Kind:       component.KindDirective,
		Selector:   "[appHighlight]",
		Standalone: true,
	}
	out, err := NewEmitter().Emit(&Component{Record: rec})
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	code := string(out)
	for _, want := range []string{
		"static ɵdir = /* @__PURE__ */ i0.ɵɵdefineDirective({",
		`selectors: [["", "appHighlight", ""]],`,
	} {
		if !strings.Contains(code, want) {
			t.Errorf("output missing %q\n%s", want, code)
		}
	}
}

func TestEmitPipeDefinition(t *testing.T) {
	rec := &component.Record{
		ClassName: "ReversePipe", Kind: component.KindPipe,
		PipeName: "reverse", PipePure: true, Standalone: true,
	}
	out, err := NewEmitter().Emit(&Component{Record: rec})
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	code := string(out)
	for _, want := range []string{
		"static ɵpipe = /* @__PURE__ */ i0.ɵɵdefinePipe({",
		`name: "reverse",`,
		"pure: true,",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("output missing %q\n%s", want, code)
		}
	}
}

func TestSelectorEncoding(t *testing.T) {
	tests := []struct {
		selector string
		want     string
	}{
		{"app-root", `[["app-root"]]`},
		{"[myDir]", `[["", "myDir", ""]]`},
		{"input[type=text]", `[["input", "type", "text"]]`},
		{"a, b", `[["a"], ["b"]]`},
		{".warn", `[["", "class", "warn"]]`},
	}
	for _, tc := range tests {
		if got := encodeSelector(tc.selector); got != tc.want {
			t.Errorf("encodeSelector(%q) = %s, want %s", tc.selector, got, tc.want)
		}
	}
}

func TestEmitStylesAndEncapsulation(t *testing.T) {
	rec := record("App", "app-root", "<p>x</p>")
	rec.Styles = []string{".a[_ngcontent-%COMP%]{color:red}"}
	code := emit(t, rec)
	if !strings.Contains(code, `styles: [".a[_ngcontent-%COMP%]{color:red}"],`) {
		t.Errorf("styles missing\n%s", code)
	}
}
