package phases

import "github.com/gaarutyunov/facet/pkg/ir"

// Reconcile is pipeline phase 7: walks a template's finalized
// update-op list once and prefixes each op with the minimum `Advance(n)`
// needed to move the runtime's slot pointer from wherever the previous op
// left it to this op's target slot. `Advance(0)` is never emitted;
// `Advance(1)` is emitted as the implicit no-argument default form (the
// emitter, not this phase, collapses N==1 to the bare call).
func Reconcile(root *ir.TemplateIR) {
	reconcileTemplate(root)
}

func reconcileTemplate(t *ir.TemplateIR) {
	var out []ir.UpdateOp
	current := 0
	for _, op := range t.Update {
		target, ok := targetSlot(op)
		if ok && target != current {
			out = append(out, ir.Advance{N: target - current})
			current = target
		}
		out = append(out, op)
	}
	t.Update = out
	for _, c := range t.Children {
		reconcileTemplate(c)
	}
}

// targetSlot reports the element/text/control-flow slot an update op
// applies to, if it has one. Ops with no slot of their own (none currently)
// leave the pointer wherever it was.
func targetSlot(op ir.UpdateOp) (int, bool) {
	switch o := op.(type) {
	case ir.Property:
		return o.Slot, true
	case ir.Attribute:
		return o.Slot, true
	case ir.StyleProp:
		return o.Slot, true
	case ir.ClassProp:
		return o.Slot, true
	case ir.StyleMap:
		return o.Slot, true
	case ir.ClassMap:
		return o.Slot, true
	case ir.TextInterpolate:
		return o.Slot, true
	case ir.Conditional:
		return o.Slot, true
	case ir.Repeater:
		return o.Slot, true
	case ir.LetStore:
		return o.Slot, true
	case ir.TwoWayProperty:
		return o.Slot, true
	}
	return 0, false
}
