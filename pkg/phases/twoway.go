package phases

import (
	"github.com/gaarutyunov/facet/pkg/expr"
	"github.com/gaarutyunov/facet/pkg/ir"
)

// ExpandTwoWay is pipeline phase 2: each twoWayStage placeholder
// left by the builder is split into an update TwoWayProperty binding plus a
// create TwoWayListener whose synthetic handler assigns $event back to the
// bound expression through the runtime's twoWayBindingSet helper. The
// listener is inserted directly after the create op of the element it
// belongs to, the position a hand-written listener would occupy.
func ExpandTwoWay(root *ir.TemplateIR) {
	expandTwoWayTemplate(root)
}

func expandTwoWayTemplate(t *ir.TemplateIR) {
	listeners := map[int][]ir.TwoWayListener{}
	var update []ir.UpdateOp
	for _, op := range t.Update {
		tw, ok := op.(twoWayStage)
		if !ok {
			update = append(update, op)
			continue
		}
		update = append(update, ir.TwoWayProperty{Slot: tw.Slot, Name: tw.Name, Expr: tw.Expr})
		listeners[tw.Slot] = append(listeners[tw.Slot], ir.TwoWayListener{
			Prop:       tw.Name,
			HandlerRef: tw.Name + "Change",
			Target:     tw.Expr,
		})
	}
	t.Update = update

	if len(listeners) > 0 {
		var create []ir.CreateOp
		for _, op := range t.Create {
			create = append(create, op)
			if s, ok := elementSlot(op); ok {
				create = append(create, toCreateOps(listeners[s])...)
				delete(listeners, s)
			}
		}
		t.Create = create
	}

	for _, c := range t.Children {
		expandTwoWayTemplate(c)
	}
}

func elementSlot(op ir.CreateOp) (int, bool) {
	switch o := op.(type) {
	case ir.ElementStart:
		return o.Slot, true
	case ir.Element:
		return o.Slot, true
	case ir.Template:
		return o.Slot, true
	}
	return 0, false
}

func toCreateOps(ls []ir.TwoWayListener) []ir.CreateOp {
	out := make([]ir.CreateOp, len(ls))
	for i, l := range ls {
		out[i] = l
	}
	return out
}

// TwoWayHandlerTarget returns the assignable LHS a synthetic twoWayListener
// handler writes to, via
// `$event => (twoWayBindingSet(target, $event) || (target = $event))`.
func TwoWayHandlerTarget(target expr.Node) expr.Node { return target }
