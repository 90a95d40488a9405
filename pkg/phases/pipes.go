package phases

import (
	"github.com/gaarutyunov/facet/pkg/diag"
	"github.com/gaarutyunov/facet/pkg/expr"
	"github.com/gaarutyunov/facet/pkg/ir"
	"github.com/gaarutyunov/facet/pkg/span"
)

// PipeRegistry answers purity questions for a pipe name; an unknown name
// defaults pure with a diagnostic.
type PipeRegistry struct {
	Pure map[string]bool
}

// IsPure reports whether name is a declared pure pipe, defaulting true (and
// recording a diagnostic) for names the registry has never seen.
func (r *PipeRegistry) IsPure(name string, sp span.Span, bag *diag.Bag) bool {
	if r == nil || r.Pure == nil {
		bag.Warnf(diag.CodeUnknownPipe, diag.Semantic, sp, "unknown pipe %q, assuming pure", name)
		return true
	}
	pure, ok := r.Pure[name]
	if !ok {
		suggestion := diag.Suggest(name, diag.SortedCandidates(pureKeys(r.Pure)))
		if suggestion != "" {
			bag.Warnf(diag.CodeUnknownPipe, diag.Semantic, sp, "unknown pipe %q, did you mean %q? assuming pure", name, suggestion)
		} else {
			bag.Warnf(diag.CodeUnknownPipe, diag.Semantic, sp, "unknown pipe %q, assuming pure", name)
		}
		return true
	}
	return pure
}

func pureKeys(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

// pipeAllocator assigns one slot per distinct pipe instance within a single
// template: pure pipes share a slot across repeated uses of the same name,
// impure pipes get a fresh slot every occurrence.
type pipeAllocator struct {
	reg     *PipeRegistry
	bag     *diag.Bag
	builder *Builder
	slot    *int
	pureIdx map[string]int
}

// AllocatePipes is pipeline phase 4: walks every update-op expression tree
// looking for expr.PipeUse and replaces each with an expr.PipeBindRef bound
// to a newly (or previously, for pure pipes) allocated pipe slot, emitting
// the corresponding ir.Pipe create op.
func AllocatePipes(root *ir.TemplateIR, reg *PipeRegistry, b *Builder, bag *diag.Bag) {
	allocatePipesTemplate(root, reg, b, bag)
}

func allocatePipesTemplate(t *ir.TemplateIR, reg *PipeRegistry, b *Builder, bag *diag.Bag) {
	slot := nextFreeSlot(t)
	a := &pipeAllocator{reg: reg, bag: bag, builder: b, slot: &slot, pureIdx: map[string]int{}}
	for i, op := range t.Update {
		t.Update[i] = a.rewriteUpdateOp(t, op)
	}
	t.Decls = *a.slot
	for _, c := range t.Children {
		allocatePipesTemplate(c, reg, b, bag)
	}
}

// nextFreeSlot returns one past the highest slot any existing create op
// occupies, the starting point for pipe-slot allocation.
func nextFreeSlot(t *ir.TemplateIR) int {
	max := -1
	walkCreateSlots(t.Create, &max)
	return max + 1
}

func walkCreateSlots(ops []ir.CreateOp, max *int) {
	bump := func(s int) {
		if s > *max {
			*max = s
		}
	}
	for _, op := range ops {
		switch o := op.(type) {
		case ir.ElementStart:
			bump(o.Slot)
		case ir.Element:
			bump(o.Slot)
		case ir.Text:
			bump(o.Slot)
		case ir.TextEmpty:
			bump(o.Slot)
		case ir.Template:
			bump(o.Slot)
		case ir.Reference:
			bump(o.Slot)
		case ir.Projection:
			bump(o.Slot)
		case ir.Pipe:
			bump(o.Slot)
		case ir.RepeaterCreate:
			bump(o.Slot)
		case ir.ConditionalCreate:
			bump(o.Slot)
		case ir.LetDecl:
			bump(o.Slot)
		case ir.DeferCreate:
			bump(o.Slot)
		}
	}
}

func (a *pipeAllocator) pipeSlotFor(t *ir.TemplateIR, name string, sp span.Span) int {
	pure := a.reg.IsPure(name, sp, a.bag)
	if pure {
		if s, ok := a.pureIdx[name]; ok {
			return s
		}
	}
	s := *a.slot
	*a.slot++
	t.Create = append(t.Create, ir.Pipe{Slot: s, Name: name})
	if pure {
		a.pureIdx[name] = s
	}
	return s
}

func (a *pipeAllocator) rewriteUpdateOp(t *ir.TemplateIR, op ir.UpdateOp) ir.UpdateOp {
	switch o := op.(type) {
	case ir.Property:
		o.Expr = a.rewriteExpr(t, o.Expr)
		return o
	case ir.Attribute:
		o.Expr = a.rewriteExpr(t, o.Expr)
		return o
	case ir.StyleProp:
		o.Expr = a.rewriteExpr(t, o.Expr)
		return o
	case ir.ClassProp:
		o.Expr = a.rewriteExpr(t, o.Expr)
		return o
	case ir.StyleMap:
		o.Expr = a.rewriteExpr(t, o.Expr)
		return o
	case ir.ClassMap:
		o.Expr = a.rewriteExpr(t, o.Expr)
		return o
	case ir.TextInterpolate:
		for i, e := range o.Exprs {
			o.Exprs[i] = a.rewriteExpr(t, e)
		}
		return o
	case ir.Conditional:
		for i, c := range o.Conditions {
			o.Conditions[i] = a.rewriteExpr(t, c)
		}
		o.SwitchOn = a.rewriteExpr(t, o.SwitchOn)
		for i, m := range o.CaseMatches {
			o.CaseMatches[i] = a.rewriteExpr(t, m)
		}
		return o
	case ir.Repeater:
		o.Items = a.rewriteExpr(t, o.Items)
		return o
	case ir.LetStore:
		o.Expr = a.rewriteExpr(t, o.Expr)
		return o
	case ir.TwoWayProperty:
		o.Expr = a.rewriteExpr(t, o.Expr)
		return o
	}
	return op
}

// rewriteExpr deep-maps an expression tree, replacing every PipeUse with a
// PipeBindRef bound to an allocated pipe slot.
func (a *pipeAllocator) rewriteExpr(t *ir.TemplateIR, n expr.Node) expr.Node {
	if n == nil {
		return nil
	}
	switch e := n.(type) {
	case *expr.PipeUse:
		left := a.rewriteExpr(t, e.Left)
		args := make([]expr.Node, len(e.Args))
		for i, arg := range e.Args {
			args[i] = a.rewriteExpr(t, arg)
		}
		slot := a.pipeSlotFor(t, e.Name, e.Span())
		allArgs := append([]expr.Node{left}, args...)
		return &expr.PipeBindRef{PipeSlot: slot, Name: e.Name, Args: allArgs}
	case *expr.PropertyRead:
		e.Receiver = a.rewriteExpr(t, e.Receiver)
		return e
	case *expr.SafePropertyRead:
		e.Receiver = a.rewriteExpr(t, e.Receiver)
		return e
	case *expr.KeyedRead:
		e.Receiver = a.rewriteExpr(t, e.Receiver)
		e.Key = a.rewriteExpr(t, e.Key)
		return e
	case *expr.Call:
		e.Callee = a.rewriteExpr(t, e.Callee)
		for i, arg := range e.Args {
			e.Args[i] = a.rewriteExpr(t, arg)
		}
		return e
	case *expr.SafeCall:
		e.Callee = a.rewriteExpr(t, e.Callee)
		for i, arg := range e.Args {
			e.Args[i] = a.rewriteExpr(t, arg)
		}
		return e
	case *expr.MethodCall:
		e.Receiver = a.rewriteExpr(t, e.Receiver)
		for i, arg := range e.Args {
			e.Args[i] = a.rewriteExpr(t, arg)
		}
		return e
	case *expr.Prefix:
		e.Operand = a.rewriteExpr(t, e.Operand)
		return e
	case *expr.Binary:
		e.Left = a.rewriteExpr(t, e.Left)
		e.Right = a.rewriteExpr(t, e.Right)
		return e
	case *expr.Conditional:
		e.Cond = a.rewriteExpr(t, e.Cond)
		e.Then = a.rewriteExpr(t, e.Then)
		e.Else = a.rewriteExpr(t, e.Else)
		return e
	case *expr.Chain:
		for i, sub := range e.Expressions {
			e.Expressions[i] = a.rewriteExpr(t, sub)
		}
		return e
	case *expr.Assignment:
		e.Target = a.rewriteExpr(t, e.Target)
		e.Value = a.rewriteExpr(t, e.Value)
		return e
	case *expr.NullishCoalesce:
		e.Left = a.rewriteExpr(t, e.Left)
		e.Right = a.rewriteExpr(t, e.Right)
		return e
	case *expr.TypeGuard:
		e.Expr = a.rewriteExpr(t, e.Expr)
		return e
	case *expr.TemplateLiteral:
		for i, sub := range e.Expressions {
			e.Expressions[i] = a.rewriteExpr(t, sub)
		}
		return e
	case *expr.Literal:
		for i, el := range e.Elements {
			e.Elements[i] = a.rewriteExpr(t, el)
		}
		for i, kv := range e.Entries {
			e.Entries[i].Value = a.rewriteExpr(t, kv.Value)
		}
		return e
	default:
		return n
	}
}
