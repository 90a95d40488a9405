package phases

import (
	"github.com/gaarutyunov/facet/pkg/expr"
	"github.com/gaarutyunov/facet/pkg/ir"
)

var contextVarNames = map[string]bool{
	"$implicit": true, "$index": true, "$count": true,
	"$first": true, "$last": true, "$even": true, "$odd": true,
}

// scopeStack keeps one frame of declared variables per nested template,
// searched innermost-out, so a hit can report how many nextContext(n)
// hops separate the reading template from the declaring one.
type scopeStack struct {
	frames [][]ir.ScopeVar
}

func newScopeStack() *scopeStack { return &scopeStack{} }

func (s *scopeStack) push(vars []ir.ScopeVar) { s.frames = append(s.frames, vars) }

func (s *scopeStack) pop() { s.frames = s.frames[:len(s.frames)-1] }

// find searches innermost-out and returns (kind, accessor, depth). A name
// declared nowhere resolves to a component-instance member read at the
// root context, depth = hops from the current template up to the root.
func (s *scopeStack) find(name string) (expr.ResolvedKind, string, int) {
	if contextVarNames[name] {
		return expr.ResolvedContextVar, name, 0
	}
	for depth, i := 0, len(s.frames)-1; i >= 0; i, depth = i-1, depth+1 {
		for _, v := range s.frames[i] {
			if v.Name == name {
				return expr.ResolvedTemplateVar, v.Accessor(), depth
			}
		}
	}
	return expr.ResolvedComponentMember, name, len(s.frames) - 1
}

// ResolveNames is pipeline phase 1: every ImplicitReceiver
// becomes a ResolvedRead against a template variable, a context variable,
// or (when nothing in the scope chain matches) a component-instance member.
func ResolveNames(root *ir.TemplateIR) {
	st := newScopeStack()
	resolveTemplate(root, st)
}

func resolveTemplate(t *ir.TemplateIR, st *scopeStack) {
	st.push(t.Scope)
	defer st.pop()

	for i, op := range t.Update {
		t.Update[i] = resolveUpdateOp(op, st)
	}
	for i, op := range t.Create {
		t.Create[i] = resolveCreateOp(op, st)
	}
	for _, child := range t.Children {
		resolveTemplate(child, st)
	}
}

func resolveCreateOp(op ir.CreateOp, st *scopeStack) ir.CreateOp {
	switch o := op.(type) {
	case ir.Listener:
		o.Handler = resolveExpr(o.Handler, st)
		return o
	}
	return op
}

func resolveUpdateOp(op ir.UpdateOp, st *scopeStack) ir.UpdateOp {
	switch o := op.(type) {
	case ir.Property:
		o.Expr = resolveExpr(o.Expr, st)
		return o
	case ir.Attribute:
		o.Expr = resolveExpr(o.Expr, st)
		return o
	case ir.StyleProp:
		o.Expr = resolveExpr(o.Expr, st)
		return o
	case ir.ClassProp:
		o.Expr = resolveExpr(o.Expr, st)
		return o
	case ir.StyleMap:
		o.Expr = resolveExpr(o.Expr, st)
		return o
	case ir.ClassMap:
		o.Expr = resolveExpr(o.Expr, st)
		return o
	case ir.TextInterpolate:
		for i, e := range o.Exprs {
			o.Exprs[i] = resolveExpr(e, st)
		}
		return o
	case ir.Conditional:
		for i, c := range o.Conditions {
			o.Conditions[i] = resolveExpr(c, st)
		}
		o.SwitchOn = resolveExpr(o.SwitchOn, st)
		for i, m := range o.CaseMatches {
			o.CaseMatches[i] = resolveExpr(m, st)
		}
		return o
	case ir.Repeater:
		o.Items = resolveExpr(o.Items, st)
		return o
	case ir.LetStore:
		o.Expr = resolveExpr(o.Expr, st)
		return o
	case ir.TwoWayProperty:
		o.Expr = resolveExpr(o.Expr, st)
		return o
	case ir.HostListener:
		o.Handler = resolveExpr(o.Handler, st)
		return o
	case twoWayStage:
		o.Expr = resolveExpr(o.Expr, st)
		return o
	}
	return op
}

// resolveExpr deep-maps an expression tree, replacing every
// ImplicitReceiver-rooted PropertyRead with a ResolvedRead. It is a manual
// sum-to-sum transform rather than a Visitor implementation,
// since every case needs to rebuild its node with resolved children.
func resolveExpr(n expr.Node, st *scopeStack) expr.Node {
	if n == nil {
		return nil
	}
	switch e := n.(type) {
	case *expr.Identifier:
		// $event stays a bare identifier: it is the listener parameter,
		// not a context read.
		if e.Name == "$event" {
			return e
		}
		kind, accessor, depth := st.find(e.Name)
		return &expr.ResolvedRead{Kind: kind, Name: e.Name, Accessor: accessor, Depth: depth}
	case *expr.PropertyRead:
		if _, ok := e.Receiver.(*expr.ImplicitReceiver); ok {
			kind, accessor, depth := st.find(e.Name)
			return &expr.ResolvedRead{Kind: kind, Name: e.Name, Accessor: accessor, Depth: depth}
		}
		e.Receiver = resolveExpr(e.Receiver, st)
		return e
	case *expr.SafePropertyRead:
		e.Receiver = resolveExpr(e.Receiver, st)
		return e
	case *expr.KeyedRead:
		e.Receiver = resolveExpr(e.Receiver, st)
		e.Key = resolveExpr(e.Key, st)
		return e
	case *expr.Call:
		e.Callee = resolveExpr(e.Callee, st)
		for i, a := range e.Args {
			e.Args[i] = resolveExpr(a, st)
		}
		return e
	case *expr.SafeCall:
		e.Callee = resolveExpr(e.Callee, st)
		for i, a := range e.Args {
			e.Args[i] = resolveExpr(a, st)
		}
		return e
	case *expr.MethodCall:
		if _, ok := e.Receiver.(*expr.ImplicitReceiver); !ok {
			e.Receiver = resolveExpr(e.Receiver, st)
		}
		for i, a := range e.Args {
			e.Args[i] = resolveExpr(a, st)
		}
		return e
	case *expr.Prefix:
		e.Operand = resolveExpr(e.Operand, st)
		return e
	case *expr.Binary:
		e.Left = resolveExpr(e.Left, st)
		e.Right = resolveExpr(e.Right, st)
		return e
	case *expr.Conditional:
		e.Cond = resolveExpr(e.Cond, st)
		e.Then = resolveExpr(e.Then, st)
		e.Else = resolveExpr(e.Else, st)
		return e
	case *expr.Chain:
		for i, sub := range e.Expressions {
			e.Expressions[i] = resolveExpr(sub, st)
		}
		return e
	case *expr.PipeUse:
		e.Left = resolveExpr(e.Left, st)
		for i, a := range e.Args {
			e.Args[i] = resolveExpr(a, st)
		}
		return e
	case *expr.Assignment:
		e.Target = resolveExpr(e.Target, st)
		e.Value = resolveExpr(e.Value, st)
		return e
	case *expr.NullishCoalesce:
		e.Left = resolveExpr(e.Left, st)
		e.Right = resolveExpr(e.Right, st)
		return e
	case *expr.TypeGuard:
		e.Expr = resolveExpr(e.Expr, st)
		return e
	case *expr.TemplateLiteral:
		for i, sub := range e.Expressions {
			e.Expressions[i] = resolveExpr(sub, st)
		}
		return e
	case *expr.Literal:
		for i, el := range e.Elements {
			e.Elements[i] = resolveExpr(el, st)
		}
		for i, kv := range e.Entries {
			e.Entries[i].Value = resolveExpr(kv.Value, st)
		}
		return e
	default:
		return n
	}
}
