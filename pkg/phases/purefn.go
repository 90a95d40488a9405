package phases

import (
	"fmt"

	"github.com/gaarutyunov/facet/pkg/expr"
	"github.com/gaarutyunov/facet/pkg/ir"
)

// PureFunctionPool collects the module-top `const _cN = (...) => ...`
// constants hoisted from literal array/object expressions appearing in
// bindings. It is shared across a whole
// component compilation, not per-template, since the hoisted constants sit
// at module scope alongside every template function.
type PureFunctionPool struct {
	nextID int
	Fns    []PureFunctionDef
}

// PureFunctionDef is one hoisted `_cN` constant.
type PureFunctionDef struct {
	Name     string
	FreeVars []string // synthetic parameter names ("a0", "a1", ...)
	Body     expr.Node
}

func (p *PureFunctionPool) alloc(body expr.Node, freeVars []string) string {
	name := fmt.Sprintf("_c%d", p.nextID)
	p.nextID++
	p.Fns = append(p.Fns, PureFunctionDef{Name: name, FreeVars: freeVars, Body: body})
	return name
}

// LiftPureFunctions is run alongside constant interning: every literal
// array/object expression found at the root of a binding is hoisted to a
// pool entry and replaced in place by a PureFunctionRef; count
// finalization later charges each memo n+1 var slots.
func LiftPureFunctions(root *ir.TemplateIR, pool *PureFunctionPool) {
	liftTemplate(root, pool)
}

func liftTemplate(t *ir.TemplateIR, pool *PureFunctionPool) {
	for i, op := range t.Update {
		t.Update[i] = liftUpdateOp(op, pool)
	}
	for _, c := range t.Children {
		liftTemplate(c, pool)
	}
}

func liftUpdateOp(op ir.UpdateOp, pool *PureFunctionPool) ir.UpdateOp {
	switch o := op.(type) {
	case ir.Property:
		o.Expr = liftExprRoot(o.Expr, pool)
		return o
	case ir.Attribute:
		o.Expr = liftExprRoot(o.Expr, pool)
		return o
	case ir.StyleMap:
		o.Expr = liftExprRoot(o.Expr, pool)
		return o
	case ir.ClassMap:
		o.Expr = liftExprRoot(o.Expr, pool)
		return o
	case ir.TwoWayProperty:
		o.Expr = liftExprRoot(o.Expr, pool)
		return o
	}
	return op
}

// liftExprRoot only lifts a literal array/object expression sitting at the
// very root of a binding: `[routerLink]="['/home']"` hoists the whole
// array, never sub-expressions nested inside a call.
func liftExprRoot(n expr.Node, pool *PureFunctionPool) expr.Node {
	lit, ok := n.(*expr.Literal)
	if !ok || (lit.Kind != expr.LitArray && lit.Kind != expr.LitObject) {
		return n
	}
	var free []string
	var freeVars []expr.Node
	collectFreeVars(lit, &free, &freeVars)
	name := pool.alloc(lit, free)
	return &expr.PureFunctionRef{Slot: 0, FnRef: name, FreeVars: freeVars}
}

// collectFreeVars walks a literal expression and records every
// non-literal sub-expression as a free variable the hoisted function
// closes over via a parameter, so a literal with N embedded reads becomes
// `_cN = (a0,a1,...) => ...`.
func collectFreeVars(n expr.Node, names *[]string, nodes *[]expr.Node) {
	switch e := n.(type) {
	case *expr.Literal:
		for _, el := range e.Elements {
			collectFreeVars(el, names, nodes)
		}
		for _, kv := range e.Entries {
			collectFreeVars(kv.Value, names, nodes)
		}
	default:
		*names = append(*names, fmt.Sprintf("a%d", len(*names)))
		*nodes = append(*nodes, n)
	}
}
