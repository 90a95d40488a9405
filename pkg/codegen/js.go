package codegen

import (
	"fmt"
	"strings"

	"github.com/gaarutyunov/facet/pkg/expr"
)

// Operator precedence levels used to decide where parentheses are needed
// in rendered JavaScript. Higher binds tighter.
const (
	precComma       = 1
	precAssignment  = 3
	precConditional = 4
	precNullish     = 6
	precLogicalOr   = 6
	precLogicalAnd  = 7
	precEquality    = 10
	precRelational  = 11
	precAdditive    = 13
	precMultiplic   = 14
	precPrefix      = 15
	precCall        = 18
	precPrimary     = 20
)

var binaryPrec = map[string]int{
	"*": precMultiplic, "/": precMultiplic, "%": precMultiplic,
	"+": precAdditive, "-": precAdditive,
	"<": precRelational, ">": precRelational, "<=": precRelational, ">=": precRelational,
	"==": precEquality, "!=": precEquality, "===": precEquality, "!==": precEquality,
	"&&": precLogicalAnd, "||": precLogicalOr,
}

// jsExpr renders a finalized expression tree to JavaScript source.
func jsExpr(n expr.Node) string {
	s, _ := renderExpr(n)
	return s
}

// jsExprPrec renders n and parenthesizes it when its own precedence is
// lower than the position it is being placed into.
func jsExprPrec(n expr.Node, min int) string {
	s, p := renderExpr(n)
	if p < min {
		return "(" + s + ")"
	}
	return s
}

func renderExpr(n expr.Node) (string, int) {
	switch e := n.(type) {
	case nil:
		return "undefined", precPrimary
	case *expr.Empty:
		return "undefined", precPrimary
	case *expr.Literal:
		return renderLiteral(e)
	case *expr.Identifier:
		return e.Name, precPrimary
	case *expr.ThisReceiver:
		return "ctx", precPrimary
	case *expr.ImplicitReceiver:
		return "ctx", precPrimary
	case *expr.ResolvedRead:
		return renderResolvedRead(e), precCall
	case *expr.PropertyRead:
		return jsExprPrec(e.Receiver, precCall) + "." + e.Name, precCall
	case *expr.SafePropertyRead:
		return jsExprPrec(e.Receiver, precCall) + "?." + e.Name, precCall
	case *expr.KeyedRead:
		return jsExprPrec(e.Receiver, precCall) + "[" + jsExpr(e.Key) + "]", precCall
	case *expr.Call:
		return jsExprPrec(e.Callee, precCall) + "(" + renderArgs(e.Args) + ")", precCall
	case *expr.SafeCall:
		return jsExprPrec(e.Callee, precCall) + "?.(" + renderArgs(e.Args) + ")", precCall
	case *expr.MethodCall:
		dot := "."
		if e.Safe {
			dot = "?."
		}
		return jsExprPrec(e.Receiver, precCall) + dot + e.Name + "(" + renderArgs(e.Args) + ")", precCall
	case *expr.Prefix:
		return e.Op + jsExprPrec(e.Operand, precPrefix), precPrefix
	case *expr.Binary:
		p, ok := binaryPrec[e.Op]
		if !ok {
			p = precEquality
		}
		return jsExprPrec(e.Left, p) + " " + e.Op + " " + jsExprPrec(e.Right, p+1), p
	case *expr.Conditional:
		return jsExprPrec(e.Cond, precConditional+1) + " ? " + jsExprPrec(e.Then, precConditional) + " : " + jsExprPrec(e.Else, precConditional), precConditional
	case *expr.Chain:
		parts := make([]string, len(e.Expressions))
		for i, sub := range e.Expressions {
			parts[i] = jsExprPrec(sub, precAssignment)
		}
		return "(" + strings.Join(parts, ", ") + ")", precPrimary
	case *expr.Assignment:
		return jsExprPrec(e.Target, precCall) + " = " + jsExprPrec(e.Value, precAssignment), precAssignment
	case *expr.NullishCoalesce:
		return jsExprPrec(e.Left, precNullish+1) + " ?? " + jsExprPrec(e.Right, precNullish+1), precNullish
	case *expr.TypeGuard:
		// type-only cast, no runtime form
		return renderExpr(e.Expr)
	case *expr.TemplateLiteral:
		var b strings.Builder
		b.WriteByte('`')
		for i, q := range e.Quasis {
			b.WriteString(escapeTemplateQuasi(q))
			if i < len(e.Expressions) {
				b.WriteString("${")
				b.WriteString(jsExpr(e.Expressions[i]))
				b.WriteString("}")
			}
		}
		b.WriteByte('`')
		return b.String(), precPrimary
	case *expr.PipeBindRef:
		return renderPipeBind(e), precCall
	case *expr.PureFunctionRef:
		return renderPureFunction(e), precCall
	case *expr.PipeUse:
		// should have been rewritten by the pipe-allocation phase
		return "undefined /* unbound pipe " + e.Name + " */", precPrimary
	default:
		return "undefined", precPrimary
	}
}

func renderResolvedRead(e *expr.ResolvedRead) string {
	recv := "ctx"
	switch {
	case e.Depth == 1:
		recv = "i0.ɵɵnextContext()"
	case e.Depth > 1:
		recv = fmt.Sprintf("i0.ɵɵnextContext(%d)", e.Depth)
	}
	return recv + "." + e.Accessor
}

func renderArgs(args []expr.Node) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = jsExprPrec(a, precAssignment)
	}
	return strings.Join(parts, ", ")
}

func renderPipeBind(e *expr.PipeBindRef) string {
	n := len(e.Args)
	if n >= 1 && n <= 4 {
		return fmt.Sprintf("i0.ɵɵpipeBind%d(%d, %d, %s)", n, e.PipeSlot, e.VarOffset, renderArgs(e.Args))
	}
	parts := make([]string, n)
	for i, a := range e.Args {
		parts[i] = jsExprPrec(a, precAssignment)
	}
	return fmt.Sprintf("i0.ɵɵpipeBindV(%d, %d, [%s])", e.PipeSlot, e.VarOffset, strings.Join(parts, ", "))
}

func renderPureFunction(e *expr.PureFunctionRef) string {
	n := len(e.FreeVars)
	switch {
	case n == 0:
		return fmt.Sprintf("i0.ɵɵpureFunction0(%d, %s)", e.Slot, e.FnRef)
	case n <= 8:
		return fmt.Sprintf("i0.ɵɵpureFunction%d(%d, %s, %s)", n, e.Slot, e.FnRef, renderArgs(e.FreeVars))
	default:
		parts := make([]string, n)
		for i, a := range e.FreeVars {
			parts[i] = jsExprPrec(a, precAssignment)
		}
		return fmt.Sprintf("i0.ɵɵpureFunctionV(%d, %s, [%s])", e.Slot, e.FnRef, strings.Join(parts, ", "))
	}
}

func renderLiteral(e *expr.Literal) (string, int) {
	switch e.Kind {
	case expr.LitString:
		// the expression parser stores string literals unquoted
		return jsString(e.Raw), precPrimary
	case expr.LitNull:
		return e.Raw, precPrimary
	case expr.LitArray:
		parts := make([]string, len(e.Elements))
		for i, el := range e.Elements {
			parts[i] = jsExprPrec(el, precAssignment)
		}
		return "[" + strings.Join(parts, ", ") + "]", precPrimary
	case expr.LitObject:
		parts := make([]string, len(e.Entries))
		for i, kv := range e.Entries {
			key := kv.Key
			if kv.Quoted {
				key = jsString(kv.Key)
			}
			parts[i] = key + ": " + jsExprPrec(kv.Value, precAssignment)
		}
		return "{ " + strings.Join(parts, ", ") + " }", precPrimary
	default:
		return e.Raw, precPrimary
	}
}

// jsString renders s as a double-quoted JavaScript string literal.
func jsString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func escapeTemplateQuasi(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "`", "\\`")
	return strings.ReplaceAll(s, "${", "\\${")
}

// jsValue renders a constant-pool value (plain numbers/strings/bools and
// nested arrays) as a JavaScript literal.
func jsValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return jsString(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", t)
	case float64:
		return fmt.Sprintf("%g", t)
	case []interface{}:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = jsValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", t)
	}
}
