package phases

import (
	"testing"

	"github.com/gaarutyunov/facet/pkg/diag"
	"github.com/gaarutyunov/facet/pkg/expr"
	"github.com/gaarutyunov/facet/pkg/ir"
	"github.com/gaarutyunov/facet/pkg/template"
)

func run(t *testing.T, src string, pipes map[string]bool) (*ir.TemplateIR, *ir.ConstPool, *PureFunctionPool, *diag.Bag) {
	t.Helper()
	tpl, bag := template.Parse("test.html", src, false)
	b := NewBuilder("App", bag)
	root := b.Build(tpl)
	pool := ir.NewConstPool()
	fns := &PureFunctionPool{}
	NewPipeline(b, &PipeRegistry{Pure: pipes}, pool, fns, bag).Run(root)
	return root, pool, fns, bag
}

func TestSimpleInterpolationCounts(t *testing.T) {
	root, _, _, bag := run(t, "<p>{{ title }}</p>", nil)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	if root.Decls != 2 {
		t.Errorf("expected decls 2, got %d", root.Decls)
	}
	if root.Vars != 1 {
		t.Errorf("expected vars 1, got %d", root.Vars)
	}
	if len(root.Update) != 2 {
		t.Fatalf("expected advance + textInterpolate, got %d ops", len(root.Update))
	}
	adv, ok := root.Update[0].(ir.Advance)
	if !ok || adv.N != 1 {
		t.Errorf("expected Advance(1) first, got %#v", root.Update[0])
	}
	ti, ok := root.Update[1].(ir.TextInterpolate)
	if !ok || ti.Slot != 1 {
		t.Fatalf("expected TextInterpolate at slot 1, got %#v", root.Update[1])
	}
	read, ok := ti.Exprs[0].(*expr.ResolvedRead)
	if !ok || read.Kind != expr.ResolvedComponentMember || read.Accessor != "title" {
		t.Errorf("title must resolve to a component member, got %#v", ti.Exprs[0])
	}
}

func TestTwoWayExpansion(t *testing.T) {
	root, _, _, _ := run(t, `<input [(ngModel)]="name">`, nil)
	props, listeners := 0, 0
	listenerAfterElement := false
	for i, op := range root.Create {
		if l, ok := op.(ir.TwoWayListener); ok {
			listeners++
			if l.Prop != "ngModel" {
				t.Errorf("expected ngModel, got %s", l.Prop)
			}
			if i > 0 {
				if _, ok := root.Create[i-1].(ir.Element); ok {
					listenerAfterElement = true
				}
			}
		}
	}
	for _, op := range root.Update {
		if p, ok := op.(ir.TwoWayProperty); ok {
			props++
			if p.Name != "ngModel" {
				t.Errorf("expected ngModel property, got %s", p.Name)
			}
			if _, ok := p.Expr.(*expr.ResolvedRead); !ok {
				t.Errorf("two-way expression must be resolved, got %T", p.Expr)
			}
		}
	}
	if props != 1 || listeners != 1 {
		t.Fatalf("expected exactly one twoWayProperty and one twoWayListener, got %d/%d", props, listeners)
	}
	if !listenerAfterElement {
		t.Errorf("twoWayListener must directly follow its element's create op")
	}
}

func TestAdvanceReconstructsMonotonically(t *testing.T) {
	root, _, _, _ := run(t, `<p [title]="a">{{x}}</p><div [id]="b">{{y}}</div>`, nil)
	current, prev := 0, -1
	for _, op := range root.Update {
		if adv, ok := op.(ir.Advance); ok {
			if adv.N == 0 {
				t.Errorf("Advance(0) must never be emitted")
			}
			current += adv.N
			continue
		}
		if target, ok := targetSlot(op); ok {
			if current != target {
				t.Errorf("op targets slot %d but pointer is at %d", target, current)
			}
			if current < prev {
				t.Errorf("slot pointer went backwards: %d after %d", current, prev)
			}
			prev = current
		}
	}
}

func TestPipeAllocationSharing(t *testing.T) {
	pipes := map[string]bool{"uppercase": true, "shuffle": false}
	root, _, _, _ := run(t, `<p>{{a | uppercase}} {{b | uppercase}} {{c | shuffle}} {{d | shuffle}}</p>`, pipes)
	pipeOps := 0
	for _, op := range root.Create {
		if _, ok := op.(ir.Pipe); ok {
			pipeOps++
		}
	}
	// one shared slot for the pure pipe, one per use for the impure pipe
	if pipeOps != 3 {
		t.Fatalf("expected 3 pipe create ops, got %d", pipeOps)
	}
}

func TestUnknownPipeWarnsAndDefaultsPure(t *testing.T) {
	root, _, _, bag := run(t, `<p>{{a | wat}}</p>`, map[string]bool{"uppercase": true})
	warned := false
	for _, d := range bag.All() {
		if d.Code == diag.CodeUnknownPipe && d.Category == diag.Warning {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("unknown pipe must warn, got %v", bag.All())
	}
	if bag.HasErrors() {
		t.Fatalf("unknown pipe must not be fatal")
	}
	pipeOps := 0
	for _, op := range root.Create {
		if _, ok := op.(ir.Pipe); ok {
			pipeOps++
		}
	}
	if pipeOps != 1 {
		t.Errorf("expected the unknown pipe to still allocate a slot")
	}
}

func TestPipeBindContributesVars(t *testing.T) {
	root, _, _, _ := run(t, `<p>{{name | uppercase}}</p>`, map[string]bool{"uppercase": true})
	// 1 interpolation hole + (1 arg + 1 result cache) for the pipe bind
	if root.Vars != 3 {
		t.Errorf("expected vars 3, got %d", root.Vars)
	}
	if root.Decls != 3 {
		t.Errorf("expected decls 3 (element + text + pipe), got %d", root.Decls)
	}
}

func TestPureFunctionLifting(t *testing.T) {
	root, _, fns, _ := run(t, `<a [routerLink]="['/home']" [queryParams]="{ref: 'x'}">go</a>`, nil)
	if len(fns.Fns) != 2 {
		t.Fatalf("expected 2 hoisted constants, got %d", len(fns.Fns))
	}
	if fns.Fns[0].Name != "_c0" || fns.Fns[1].Name != "_c1" {
		t.Errorf("hoisted constants misnamed: %s, %s", fns.Fns[0].Name, fns.Fns[1].Name)
	}
	var slots []int
	for _, op := range root.Update {
		if p, ok := op.(ir.Property); ok {
			if ref, ok := p.Expr.(*expr.PureFunctionRef); ok {
				slots = append(slots, ref.Slot)
			}
		}
	}
	if len(slots) != 2 {
		t.Fatalf("expected both bindings rewritten to pure-function refs, got %d", len(slots))
	}
	// memo slots sit after the 2 plain binding vars, consecutively
	if slots[0] != 2 || slots[1] != 3 {
		t.Errorf("expected memo slots 2 and 3, got %v", slots)
	}
	if root.Vars != 4 {
		t.Errorf("expected vars 4 (2 bindings + 2 memos), got %d", root.Vars)
	}
}

func TestForBlockBuildsRepeater(t *testing.T) {
	root, _, _, bag := run(t, `@for (item of items; track item.id) {<div>{{item.name}}</div>}`, nil)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	var rc ir.RepeaterCreate
	found := false
	for _, op := range root.Create {
		if r, ok := op.(ir.RepeaterCreate); ok {
			rc = r
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a RepeaterCreate op")
	}
	if rc.TrackFn != "_forTrack0" {
		t.Errorf("expected _forTrack0, got %s", rc.TrackFn)
	}
	if rc.TrackExpr == nil || rc.ItemName != "item" {
		t.Errorf("track expression lost: %#v", rc)
	}
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 sub-template, got %d", len(root.Children))
	}
	child := root.Children[0]
	if child.Decls != 2 || child.Vars != 1 {
		t.Errorf("sub-template counts wrong: decls %d vars %d", child.Decls, child.Vars)
	}
	// item.name resolves against the row context
	var ti ir.TextInterpolate
	for _, op := range child.Update {
		if x, ok := op.(ir.TextInterpolate); ok {
			ti = x
		}
	}
	pr, ok := ti.Exprs[0].(*expr.PropertyRead)
	if !ok {
		t.Fatalf("expected PropertyRead, got %T", ti.Exprs[0])
	}
	read, ok := pr.Receiver.(*expr.ResolvedRead)
	if !ok || read.Kind != expr.ResolvedTemplateVar || read.Accessor != "$implicit" {
		t.Errorf("item must resolve to $implicit, got %#v", pr.Receiver)
	}
}

func TestIfChainConditional(t *testing.T) {
	root, _, _, _ := run(t, `@if (a) {<b>1</b>} @else if (b) {<b>2</b>} @else {<b>3</b>}`, nil)
	var cond ir.Conditional
	found := false
	for _, op := range root.Update {
		if c, ok := op.(ir.Conditional); ok {
			cond = c
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a Conditional update op")
	}
	if len(cond.Conditions) != 3 {
		t.Fatalf("expected 3 branch conditions, got %d", len(cond.Conditions))
	}
	if cond.Conditions[0] == nil || cond.Conditions[1] == nil || cond.Conditions[2] != nil {
		t.Errorf("condition shape wrong: %#v", cond.Conditions)
	}
	var cc ir.ConditionalCreate
	for _, op := range root.Create {
		if c, ok := op.(ir.ConditionalCreate); ok {
			cc = c
		}
	}
	if len(cc.TemplateFns) != 3 {
		t.Errorf("expected 3 branch templates, got %d", len(cc.TemplateFns))
	}
}

func TestNestedContextDepth(t *testing.T) {
	root, _, _, _ := run(t, `@if (show) {<p>{{ title }}</p>}`, nil)
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child template")
	}
	var ti ir.TextInterpolate
	for _, op := range root.Children[0].Update {
		if x, ok := op.(ir.TextInterpolate); ok {
			ti = x
		}
	}
	read, ok := ti.Exprs[0].(*expr.ResolvedRead)
	if !ok || read.Kind != expr.ResolvedComponentMember {
		t.Fatalf("title must resolve to component member, got %#v", ti.Exprs[0])
	}
	if read.Depth != 1 {
		t.Errorf("component read inside one nested template needs 1 context hop, got %d", read.Depth)
	}
}

func TestListenerEventDetection(t *testing.T) {
	root, _, _, _ := run(t, `<button (click)="go($event)">a</button><a (mouseup)="done()">b</a>`, nil)
	var with, without bool
	for _, op := range root.Create {
		if l, ok := op.(ir.Listener); ok {
			if l.Event == "click" && l.UsesEvent {
				with = true
			}
			if l.Event == "mouseup" && !l.UsesEvent {
				without = true
			}
		}
	}
	if !with || !without {
		t.Errorf("listener $event detection wrong: with=%v without=%v", with, without)
	}
}

func TestConstsEntryForListener(t *testing.T) {
	_, pool, _, _ := run(t, `<button (click)="go()">Go</button>`, nil)
	if pool.Len() != 1 {
		t.Fatalf("expected 1 consts entry, got %d", pool.Len())
	}
	entry, ok := pool.Values()[0].([]interface{})
	if !ok || len(entry) != 2 {
		t.Fatalf("expected [3, click], got %#v", pool.Values()[0])
	}
	if entry[0] != 3 || entry[1] != "click" {
		t.Errorf("expected marker 3 + event name, got %#v", entry)
	}
}

func TestConstPoolDeduplicatesAcrossElements(t *testing.T) {
	_, pool, _, _ := run(t, `<div class="a">1</div><div class="a">2</div>`, nil)
	if pool.Len() != 1 {
		t.Errorf("identical consts entries must dedupe, got %d", pool.Len())
	}
}

func TestLetDeclarationScoping(t *testing.T) {
	root, _, _, _ := run(t, `@let full = name;<p>{{full}}</p>`, nil)
	var store ir.LetStore
	foundStore := false
	for _, op := range root.Update {
		if s, ok := op.(ir.LetStore); ok {
			store = s
			foundStore = true
		}
	}
	if !foundStore {
		t.Fatalf("expected a LetStore op")
	}
	if _, ok := store.Expr.(*expr.ResolvedRead); !ok {
		t.Errorf("@let value must be resolved, got %T", store.Expr)
	}
	var ti ir.TextInterpolate
	for _, op := range root.Update {
		if x, ok := op.(ir.TextInterpolate); ok {
			ti = x
		}
	}
	read, ok := ti.Exprs[0].(*expr.ResolvedRead)
	if !ok || read.Kind != expr.ResolvedTemplateVar {
		t.Errorf("full must resolve as a template-scope variable, got %#v", ti.Exprs[0])
	}
}
