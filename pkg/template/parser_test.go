package template

import (
	"testing"

	"github.com/gaarutyunov/facet/pkg/diag"
	"github.com/gaarutyunov/facet/pkg/expr"
)

func parse(t *testing.T, src string) (*Template, *diag.Bag) {
	t.Helper()
	root, bag := Parse("test.html", src, false)
	if root == nil {
		t.Fatalf("Parse(%q) returned nil root", src)
	}
	return root, bag
}

func firstElement(t *testing.T, nodes []Node) *Element {
	t.Helper()
	for _, n := range nodes {
		if el, ok := n.(*Element); ok {
			return el
		}
	}
	t.Fatalf("no element among %d nodes", len(nodes))
	return nil
}

func TestParseElementWithText(t *testing.T) {
	root, bag := parse(t, "<p>hello</p>")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	el := firstElement(t, root.Children)
	if el.Tag != "p" {
		t.Errorf("expected tag p, got %s", el.Tag)
	}
	if len(el.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(el.Children))
	}
	text, ok := el.Children[0].(*Text)
	if !ok || text.Value != "hello" {
		t.Errorf("expected text 'hello', got %#v", el.Children[0])
	}
}

func TestInterpolationBecomesBoundText(t *testing.T) {
	root, _ := parse(t, "<p>{{ title }}</p>")
	el := firstElement(t, root.Children)
	bt, ok := el.Children[0].(*BoundText)
	if !ok {
		t.Fatalf("expected BoundText, got %T", el.Children[0])
	}
	if len(bt.Parts) != 1 || bt.Parts[0].Expr == nil {
		t.Fatalf("expected one expression part, got %#v", bt.Parts)
	}
}

func TestAttributeClassification(t *testing.T) {
	root, _ := parse(t, `<div id="x" [title]="t" (click)="go()" [(value)]="v" #ref [attr.role]="r" [class.on]="c" [style.width.px]="w"></div>`)
	el := firstElement(t, root.Children)
	if len(el.Attrs) != 1 || el.Attrs[0].Name != "id" || el.Attrs[0].Value != "x" {
		t.Errorf("static attrs wrong: %#v", el.Attrs)
	}
	if len(el.Inputs) != 4 {
		t.Fatalf("expected 4 inputs, got %d", len(el.Inputs))
	}
	if el.Inputs[0].Name != "title" || el.Inputs[0].Kind != InputProperty {
		t.Errorf("input 0 wrong: %#v", el.Inputs[0])
	}
	if el.Inputs[1].Name != "role" || el.Inputs[1].Kind != InputAttribute {
		t.Errorf("input 1 wrong: %#v", el.Inputs[1])
	}
	if el.Inputs[2].Name != "on" || el.Inputs[2].Kind != InputClass {
		t.Errorf("input 2 wrong: %#v", el.Inputs[2])
	}
	if el.Inputs[3].Name != "width" || el.Inputs[3].Kind != InputStyle || el.Inputs[3].Unit != "px" {
		t.Errorf("input 3 wrong: %#v", el.Inputs[3])
	}
	if len(el.Outputs) != 1 || el.Outputs[0].Name != "click" {
		t.Errorf("outputs wrong: %#v", el.Outputs)
	}
	if len(el.TwoWays) != 1 || el.TwoWays[0].Name != "value" {
		t.Errorf("two-ways wrong: %#v", el.TwoWays)
	}
	if len(el.Refs) != 1 || el.Refs[0].Name != "ref" {
		t.Errorf("refs wrong: %#v", el.Refs)
	}
}

func TestKeyModifiedOutput(t *testing.T) {
	root, _ := parse(t, `<input (keydown.enter)="submit()">`)
	el := firstElement(t, root.Children)
	if len(el.Outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(el.Outputs))
	}
	out := el.Outputs[0]
	if out.Name != "keydown" || out.KeyEvent != "enter" {
		t.Errorf("expected keydown.enter, got %#v", out)
	}
}

func TestVoidElementHasNoChildren(t *testing.T) {
	root, _ := parse(t, `<img src="a.png">text after`)
	el := firstElement(t, root.Children)
	if el.Tag != "img" || !el.IsVoid {
		t.Fatalf("expected void img, got %#v", el)
	}
	if len(el.Children) != 0 {
		t.Errorf("void element must not take children, got %d", len(el.Children))
	}
	if len(root.Children) < 2 {
		t.Errorf("text after void element must be a sibling")
	}
}

func TestStructuralDirectiveDesugaring(t *testing.T) {
	root, _ := parse(t, `<li *ngFor="let i of items; trackBy: tb; index as j">x</li>`)
	tpl, ok := root.Children[0].(*Template)
	if !ok {
		t.Fatalf("expected desugared Template, got %T", root.Children[0])
	}
	if len(tpl.Inputs) != 2 {
		t.Fatalf("expected ngForOf + ngForTrackBy inputs, got %#v", tpl.Inputs)
	}
	if tpl.Inputs[0].Name != "ngForOf" {
		t.Errorf("expected ngForOf, got %s", tpl.Inputs[0].Name)
	}
	if tpl.Inputs[1].Name != "ngForTrackBy" {
		t.Errorf("expected ngForTrackBy, got %s", tpl.Inputs[1].Name)
	}
	if len(tpl.Vars) != 2 {
		t.Fatalf("expected vars i and j, got %#v", tpl.Vars)
	}
	if tpl.Vars[0].Name != "i" || tpl.Vars[0].Source != "" {
		t.Errorf("var 0 wrong: %#v", tpl.Vars[0])
	}
	if tpl.Vars[1].Name != "j" || tpl.Vars[1].Source != "index" {
		t.Errorf("var 1 wrong: %#v", tpl.Vars[1])
	}
	if _, ok := tpl.Children[0].(*Element); !ok {
		t.Errorf("template must wrap the host element")
	}
}

func TestIfElseChain(t *testing.T) {
	root, _ := parse(t, `@if (a) {<b>1</b>} @else if (b) {<b>2</b>} @else {<b>3</b>}`)
	blk, ok := root.Children[0].(*IfBlock)
	if !ok {
		t.Fatalf("expected IfBlock, got %T", root.Children[0])
	}
	if len(blk.Branches) != 3 {
		t.Fatalf("expected 3 branches, got %d", len(blk.Branches))
	}
	if blk.Branches[0].Cond == nil || blk.Branches[1].Cond == nil {
		t.Errorf("first two branches must carry conditions")
	}
	if blk.Branches[2].Cond != nil {
		t.Errorf("final else must have no condition")
	}
}

func TestForBlockRequiresTrack(t *testing.T) {
	_, bag := parse(t, `@for (item of items) {<span>{{item}}</span>}`)
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.CodeForMissingTrack {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing track must be diagnosed, got %v", bag.All())
	}
}

func TestForBlockWithEmptyAndAliases(t *testing.T) {
	root, bag := parse(t, `@for (item of items; track item.id; let idx = $index) {<b>{{item}}</b>} @empty {<i>none</i>}`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	blk, ok := root.Children[0].(*ForBlock)
	if !ok {
		t.Fatalf("expected ForBlock, got %T", root.Children[0])
	}
	if blk.Item != "item" {
		t.Errorf("expected item var, got %s", blk.Item)
	}
	if blk.Tracker == nil {
		t.Errorf("tracker must be parsed")
	}
	if len(blk.Aliases) != 1 || blk.Aliases[0].Name != "idx" || blk.Aliases[0].Source != "$index" {
		t.Errorf("aliases wrong: %#v", blk.Aliases)
	}
	if blk.EmptyTemplate == nil {
		t.Errorf("@empty template missing")
	}
}

func TestSwitchBlock(t *testing.T) {
	root, _ := parse(t, `@switch (mode) { @case (1) {<b>a</b>} @case (2) {<b>b</b>} @default {<b>c</b>} }`)
	blk, ok := root.Children[0].(*SwitchBlock)
	if !ok {
		t.Fatalf("expected SwitchBlock, got %T", root.Children[0])
	}
	if len(blk.Cases) != 3 {
		t.Fatalf("expected 3 cases, got %d", len(blk.Cases))
	}
	if blk.Cases[2].Matches != nil {
		t.Errorf("@default must carry no match expression")
	}
}

func TestLetDeclaration(t *testing.T) {
	root, _ := parse(t, `@let full = first + last;<p>{{full}}</p>`)
	let, ok := root.Children[0].(*LetDeclaration)
	if !ok {
		t.Fatalf("expected LetDeclaration, got %T", root.Children[0])
	}
	if let.Name != "full" {
		t.Errorf("expected full, got %s", let.Name)
	}
	if _, ok := let.Expr.(*expr.Binary); !ok {
		t.Errorf("expected binary expression, got %T", let.Expr)
	}
	if len(root.Children) < 2 {
		t.Fatalf("content after @let lost")
	}
}

func TestDuplicateReferenceDiagnosed(t *testing.T) {
	_, bag := parse(t, `<input #name><select #name></select>`)
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.CodeDuplicateReference {
			found = true
		}
	}
	if !found {
		t.Fatalf("duplicate #name must be diagnosed")
	}
}

func TestNgTemplateBecomesTemplateNode(t *testing.T) {
	root, _ := parse(t, `<ng-template #tip [context]="c"><b>x</b></ng-template>`)
	tpl, ok := root.Children[0].(*Template)
	if !ok {
		t.Fatalf("expected Template node, got %T", root.Children[0])
	}
	if len(tpl.Refs) != 1 || tpl.Refs[0].Name != "tip" {
		t.Errorf("template ref lost: %#v", tpl.Refs)
	}
	if len(tpl.Inputs) != 1 || tpl.Inputs[0].Name != "context" {
		t.Errorf("template input lost: %#v", tpl.Inputs)
	}
}

func TestNgContentSelect(t *testing.T) {
	root, _ := parse(t, `<ng-content select="[slot=header]"></ng-content>`)
	content, ok := root.Children[0].(*Content)
	if !ok {
		t.Fatalf("expected Content, got %T", root.Children[0])
	}
	if content.Select != "[slot=header]" {
		t.Errorf("expected select preserved, got %q", content.Select)
	}
}

func TestUnclosedTagRecovers(t *testing.T) {
	root, bag := parse(t, `<div><p>text`)
	if len(root.Children) == 0 {
		t.Fatalf("recovery must still produce a tree")
	}
	_ = bag // implicit close at EOF is not an error by itself
}

func TestAtWithoutKeywordIsText(t *testing.T) {
	root, _ := parse(t, `<p>user@example.com</p>`)
	el := firstElement(t, root.Children)
	text, ok := el.Children[0].(*Text)
	if !ok || text.Value != "user@example.com" {
		t.Fatalf("bare @ must stay literal text, got %#v", el.Children[0])
	}
}

func TestWhitespaceCollapsed(t *testing.T) {
	root, _ := parse(t, "<p>a   \n\t  b</p>")
	el := firstElement(t, root.Children)
	text := el.Children[0].(*Text)
	if text.Value != "a b" {
		t.Errorf("expected collapsed 'a b', got %q", text.Value)
	}
}

func TestWhitespacePreserved(t *testing.T) {
	root, _ := Parse("test.html", "<p>a   b</p>", true)
	el := firstElement(t, root.Children)
	text := el.Children[0].(*Text)
	if text.Value != "a   b" {
		t.Errorf("expected preserved 'a   b', got %q", text.Value)
	}
}

func TestRawTextElements(t *testing.T) {
	root, _ := parse(t, `<script>if (a < b) { x() }</script>`)
	el := firstElement(t, root.Children)
	if el.Tag != "script" {
		t.Fatalf("expected script, got %s", el.Tag)
	}
	text, ok := el.Children[0].(*Text)
	if !ok || text.Value != "if (a < b) { x() }" {
		t.Fatalf("raw text mangled: %#v", el.Children[0])
	}
}

func TestInterpolatedAttributeBecomesInput(t *testing.T) {
	root, _ := parse(t, `<a title="Hi {{name}}!">x</a>`)
	el := firstElement(t, root.Children)
	if len(el.Inputs) != 1 || el.Inputs[0].Name != "title" {
		t.Fatalf("interpolated attribute must become an input: %#v", el.Inputs)
	}
	if _, ok := el.Inputs[0].Expr.(*expr.TemplateLiteral); !ok {
		t.Errorf("expected TemplateLiteral expr, got %T", el.Inputs[0].Expr)
	}
}

func TestNamespacedTag(t *testing.T) {
	root, _ := parse(t, `<svg:circle [attr.r]="radius"/>`)
	el := firstElement(t, root.Children)
	if el.Namespace != "svg" {
		t.Errorf("expected svg namespace, got %q", el.Namespace)
	}
}
