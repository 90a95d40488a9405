package phases

import (
	"github.com/gaarutyunov/facet/pkg/diag"
	"github.com/gaarutyunov/facet/pkg/expr"
	"github.com/gaarutyunov/facet/pkg/ir"
	"github.com/gaarutyunov/facet/pkg/span"
)

// FinalizeCounts is pipeline phase 8: computes `decls` (highest slot + 1)
// and `vars` (total update bindings) for every template in the tree, assigns each hoisted pipe-bind
// and pure-function its offset within the vars region, and records an
// internal-compiler-error diagnostic if the highest slot any update op
// targets reaches `decls`.
//
// Scalar bindings occupy the front of the vars region in op order; the
// memo slots for pipe binds and pure functions follow, allocated in the
// order the ops (and, within one op, the expression tree walked
// outermost-first, left to right) reference them. A pipe bind takes
// len(args)+1 slots, a pure function len(freeVars)+1.
func FinalizeCounts(root *ir.TemplateIR, bag *diag.Bag) {
	finalizeTemplate(root, bag)
}

func finalizeTemplate(t *ir.TemplateIR, bag *diag.Bag) {
	maxSlot := -1
	walkCreateSlots(t.Create, &maxSlot)
	t.Decls = maxSlot + 1

	plain := 0
	for _, op := range t.Update {
		plain += scalarVars(op)
	}
	offset := plain
	for _, op := range t.Update {
		forEachOpExpr(op, func(e expr.Node) {
			assignOffsets(e, &offset)
		})
	}
	t.Vars = offset

	for _, op := range t.Update {
		if target, ok := targetSlot(op); ok && target >= t.Decls {
			bag.Errorf(diag.CodeInternalInvariant, diag.Internal, span.Span{}, "update op targets slot %d but decls is %d", target, t.Decls)
		}
	}

	for _, c := range t.Children {
		finalizeTemplate(c, bag)
	}
}

// scalarVars is an op's own contribution to vars, not counting hoisted
// pipe-bind/pure-function memo slots: 1 for a scalar binding, N for an
// N-hole interpolation.
func scalarVars(op ir.UpdateOp) int {
	switch o := op.(type) {
	case ir.Property, ir.Attribute, ir.StyleProp, ir.ClassProp, ir.StyleMap,
		ir.ClassMap, ir.TwoWayProperty, ir.LetStore, ir.Conditional, ir.Repeater:
		return 1
	case ir.TextInterpolate:
		return len(o.Exprs)
	}
	return 0
}

// forEachOpExpr visits every expression an update op owns, in emission
// order.
func forEachOpExpr(op ir.UpdateOp, f func(expr.Node)) {
	switch o := op.(type) {
	case ir.Property:
		f(o.Expr)
	case ir.Attribute:
		f(o.Expr)
	case ir.StyleProp:
		f(o.Expr)
	case ir.ClassProp:
		f(o.Expr)
	case ir.StyleMap:
		f(o.Expr)
	case ir.ClassMap:
		f(o.Expr)
	case ir.TwoWayProperty:
		f(o.Expr)
	case ir.LetStore:
		f(o.Expr)
	case ir.Repeater:
		f(o.Items)
	case ir.Conditional:
		for _, c := range o.Conditions {
			f(c)
		}
		f(o.SwitchOn)
		for _, m := range o.CaseMatches {
			f(m)
		}
	case ir.TextInterpolate:
		for _, e := range o.Exprs {
			f(e)
		}
	case ir.HostListener:
		f(o.Handler)
	}
}

// assignOffsets walks an expression outermost-first, handing every
// PipeBindRef/PureFunctionRef its memo offset and advancing the counter
// past its reserved slots.
func assignOffsets(n expr.Node, offset *int) {
	if n == nil {
		return
	}
	switch e := n.(type) {
	case *expr.PipeBindRef:
		e.VarOffset = *offset
		*offset += len(e.Args) + 1
		for _, a := range e.Args {
			assignOffsets(a, offset)
		}
	case *expr.PureFunctionRef:
		e.Slot = *offset
		*offset += len(e.FreeVars) + 1
		for _, a := range e.FreeVars {
			assignOffsets(a, offset)
		}
	case *expr.PropertyRead:
		assignOffsets(e.Receiver, offset)
	case *expr.SafePropertyRead:
		assignOffsets(e.Receiver, offset)
	case *expr.KeyedRead:
		assignOffsets(e.Receiver, offset)
		assignOffsets(e.Key, offset)
	case *expr.Call:
		assignOffsets(e.Callee, offset)
		for _, a := range e.Args {
			assignOffsets(a, offset)
		}
	case *expr.SafeCall:
		assignOffsets(e.Callee, offset)
		for _, a := range e.Args {
			assignOffsets(a, offset)
		}
	case *expr.MethodCall:
		assignOffsets(e.Receiver, offset)
		for _, a := range e.Args {
			assignOffsets(a, offset)
		}
	case *expr.Prefix:
		assignOffsets(e.Operand, offset)
	case *expr.Binary:
		assignOffsets(e.Left, offset)
		assignOffsets(e.Right, offset)
	case *expr.Conditional:
		assignOffsets(e.Cond, offset)
		assignOffsets(e.Then, offset)
		assignOffsets(e.Else, offset)
	case *expr.Chain:
		for _, sub := range e.Expressions {
			assignOffsets(sub, offset)
		}
	case *expr.Assignment:
		assignOffsets(e.Target, offset)
		assignOffsets(e.Value, offset)
	case *expr.NullishCoalesce:
		assignOffsets(e.Left, offset)
		assignOffsets(e.Right, offset)
	case *expr.TypeGuard:
		assignOffsets(e.Expr, offset)
	case *expr.TemplateLiteral:
		for _, sub := range e.Expressions {
			assignOffsets(sub, offset)
		}
	case *expr.Literal:
		for _, el := range e.Elements {
			assignOffsets(el, offset)
		}
		for _, kv := range e.Entries {
			assignOffsets(kv.Value, offset)
		}
	}
}
