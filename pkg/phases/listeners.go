package phases

import (
	"github.com/gaarutyunov/facet/pkg/expr"
	"github.com/gaarutyunov/facet/pkg/ir"
)

// HoistListeners is pipeline phase 5: detects whether a
// listener's handler body references the implicit `$event` parameter and
// records it on the op so the emitter knows whether to declare the closure
// as `function($event) {...}` or a bare `function() {...}`.
func HoistListeners(root *ir.TemplateIR) {
	hoistTemplate(root)
}

func hoistTemplate(t *ir.TemplateIR) {
	for i, op := range t.Create {
		if l, ok := op.(ir.Listener); ok {
			l.UsesEvent = referencesEvent(l.Handler)
			t.Create[i] = l
		}
	}
	for _, c := range t.Children {
		hoistTemplate(c)
	}
}

// referencesEvent reports whether n contains an identifier named "$event"
// anywhere in its tree.
func referencesEvent(n expr.Node) bool {
	found := false
	var walk func(expr.Node)
	walk = func(n expr.Node) {
		if n == nil || found {
			return
		}
		switch e := n.(type) {
		case *expr.Identifier:
			if e.Name == "$event" {
				found = true
			}
		case *expr.PropertyRead:
			walk(e.Receiver)
		case *expr.SafePropertyRead:
			walk(e.Receiver)
		case *expr.KeyedRead:
			walk(e.Receiver)
			walk(e.Key)
		case *expr.Call:
			walk(e.Callee)
			for _, a := range e.Args {
				walk(a)
			}
		case *expr.SafeCall:
			walk(e.Callee)
			for _, a := range e.Args {
				walk(a)
			}
		case *expr.MethodCall:
			walk(e.Receiver)
			for _, a := range e.Args {
				walk(a)
			}
		case *expr.Prefix:
			walk(e.Operand)
		case *expr.Binary:
			walk(e.Left)
			walk(e.Right)
		case *expr.Conditional:
			walk(e.Cond)
			walk(e.Then)
			walk(e.Else)
		case *expr.Chain:
			for _, sub := range e.Expressions {
				walk(sub)
			}
		case *expr.Assignment:
			walk(e.Target)
			walk(e.Value)
		case *expr.NullishCoalesce:
			walk(e.Left)
			walk(e.Right)
		case *expr.TypeGuard:
			walk(e.Expr)
		}
	}
	walk(n)
	return found
}

// ReturnValueOf reports the expression whose value a listener handler
// should return: the last expression of a Chain, or the handler itself for
// a single expression. A multi-statement chain keeps every statement's
// execution but returns only the final value.
func ReturnValueOf(handler expr.Node) expr.Node {
	if chain, ok := handler.(*expr.Chain); ok && len(chain.Expressions) > 0 {
		return chain.Expressions[len(chain.Expressions)-1]
	}
	return handler
}
