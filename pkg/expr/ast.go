// Package expr implements the expression parser: the grammar used for
// interpolations, property/event bindings, and structural-directive
// microsyntax expressions.
package expr

import "github.com/gaarutyunov/facet/pkg/span"

// Node is implemented by every expression AST variant.
type Node interface {
	Span() span.Span
	Accept(v Visitor) interface{}
}

type base struct {
	Pos span.Span
}

func (b base) Span() span.Span { return b.Pos }

// LiteralKind distinguishes the literal sub-variants.
type LiteralKind int

const (
	LitNumber LiteralKind = iota
	LitString
	LitBool
	LitNull
	LitArray
	LitObject
)

// Literal covers number/string/bool/null/array/object literals.
type Literal struct {
	base
	Kind     LiteralKind
	Raw      string   // source text for Number/Bool/Null; String holds its text without the quotes
	Elements []Node   // LitArray
	Entries  []KeyVal // LitObject
}

// KeyVal is one `key: value` pair inside an object literal.
type KeyVal struct {
	Key   string
	Quoted bool
	Value Node
}

func (n *Literal) Accept(v Visitor) interface{} { return v.VisitLiteral(n) }

// Identifier is a bare name; name resolution (component member, template
// variable, context variable) happens in pkg/phases, not here.
type Identifier struct {
	base
	Name string
}

func (n *Identifier) Accept(v Visitor) interface{} { return v.VisitIdentifier(n) }

// ImplicitReceiver marks an identifier/property-read whose receiver was
// omitted in source (`title` rather than `this.title`); resolved to either
// a template variable or `ctx.<name>` during the resolve-names phase.
type ImplicitReceiver struct{ base }

func (n *ImplicitReceiver) Accept(v Visitor) interface{} { return v.VisitImplicitReceiver(n) }

// ThisReceiver is an explicit `this`.
type ThisReceiver struct{ base }

func (n *ThisReceiver) Accept(v Visitor) interface{} { return v.VisitThisReceiver(n) }

// PropertyRead is `receiver.name`.
type PropertyRead struct {
	base
	Receiver Node
	Name     string
}

func (n *PropertyRead) Accept(v Visitor) interface{} { return v.VisitPropertyRead(n) }

// SafePropertyRead is `receiver?.name`.
type SafePropertyRead struct {
	base
	Receiver Node
	Name     string
}

func (n *SafePropertyRead) Accept(v Visitor) interface{} { return v.VisitSafePropertyRead(n) }

// KeyedRead is `receiver[key]`.
type KeyedRead struct {
	base
	Receiver Node
	Key      Node
}

func (n *KeyedRead) Accept(v Visitor) interface{} { return v.VisitKeyedRead(n) }

// Call is `callee(args...)`.
type Call struct {
	base
	Callee Node
	Args   []Node
}

func (n *Call) Accept(v Visitor) interface{} { return v.VisitCall(n) }

// SafeCall is `callee?.(args...)`.
type SafeCall struct {
	base
	Callee Node
	Args   []Node
}

func (n *SafeCall) Accept(v Visitor) interface{} { return v.VisitSafeCall(n) }

// MethodCall is `receiver.name(args...)`, kept distinct from a PropertyRead
// wrapped in a Call so the emitter can special-case method dispatch without
// re-deriving it.
type MethodCall struct {
	base
	Receiver Node
	Name     string
	Args     []Node
	Safe     bool // receiver?.name(...)
}

func (n *MethodCall) Accept(v Visitor) interface{} { return v.VisitMethodCall(n) }

// Prefix is a unary operator: !, +, -.
type Prefix struct {
	base
	Op      string
	Operand Node
}

func (n *Prefix) Accept(v Visitor) interface{} { return v.VisitPrefix(n) }

// Binary is a left/right operator pair (arithmetic, comparison, logical
// and/or); `??` has its own NullishCoalesce node.
type Binary struct {
	base
	Op    string
	Left  Node
	Right Node
}

func (n *Binary) Accept(v Visitor) interface{} { return v.VisitBinary(n) }

// Conditional is the ternary `cond ? then : else`.
type Conditional struct {
	base
	Cond Node
	Then Node
	Else Node
}

func (n *Conditional) Accept(v Visitor) interface{} { return v.VisitConditional(n) }

// Chain is a `;`-separated sequence; only the last expression's value
// matters for a handler's return value, but every expression executes.
type Chain struct {
	base
	Expressions []Node
}

func (n *Chain) Accept(v Visitor) interface{} { return v.VisitChain(n) }

// PipeUse is `left | name:args`.
type PipeUse struct {
	base
	Left Node
	Name string
	Args []Node
}

func (n *PipeUse) Accept(v Visitor) interface{} { return v.VisitPipeUse(n) }

// Assignment is never produced by the grammar, since assignment is
// disallowed in template expressions; it is only constructed through
// NewAssignment. Two-way expansion does not use it: it emits
// TwoWayProperty/TwoWayListener ops instead.
type Assignment struct {
	base
	Target Node
	Value  Node
}

func (n *Assignment) Accept(v Visitor) interface{} { return v.VisitAssignment(n) }

// NullishCoalesce is `left ?? right`.
type NullishCoalesce struct {
	base
	Left  Node
	Right Node
}

func (n *NullishCoalesce) Accept(v Visitor) interface{} { return v.VisitNullishCoalesce(n) }

// TypeGuard is `expr as Type`, a type-only annotation: the node is kept
// through the phases and the emitter renders only Expr.
type TypeGuard struct {
	base
	Expr Node
	Type string
}

func (n *TypeGuard) Accept(v Visitor) interface{} { return v.VisitTypeGuard(n) }

// TemplateLiteral is a backtick string with `${}` interpolations. Quasis
// has len(Expressions)+1 entries (text before/between/after each hole).
type TemplateLiteral struct {
	base
	Quasis      []string
	Expressions []Node
}

func (n *TemplateLiteral) Accept(v Visitor) interface{} { return v.VisitTemplateLiteral(n) }

// Empty is the error-recovery placeholder: downstream phases treat it as
// a no-op update binding.
type Empty struct{ base }

func (n *Empty) Accept(v Visitor) interface{} { return v.VisitEmpty(n) }

// ResolvedKind distinguishes what an implicit identifier turned out to mean
// once the resolve-names phase ran.
type ResolvedKind int

const (
	// ResolvedComponentMember reads off the component instance (ctx.<name>).
	ResolvedComponentMember ResolvedKind = iota
	// ResolvedTemplateVar reads a `let`/structural-directive/`@let` local.
	ResolvedTemplateVar
	// ResolvedContextVar reads a reserved context accessor ($implicit,
	// $index, $count, $first, $last, $even, $odd).
	ResolvedContextVar
)

// ResolvedRead replaces an ImplicitReceiver-rooted PropertyRead once the
// resolve-names phase has determined what it refers to. Depth is the
// number of nextContext(n) hops needed to reach the declaring template
// scope; 0 means "this template's own scope or the component instance".
// Accessor is the runtime context member the read compiles to: the
// member name itself for component reads, "$implicit"/"$index"/... for
// template variables bound through a structural-directive context.
type ResolvedRead struct {
	base
	Kind     ResolvedKind
	Name     string
	Accessor string
	Depth    int
}

func (n *ResolvedRead) Accept(v Visitor) interface{} { return v.VisitResolvedRead(n) }

// PipeBindRef replaces a PipeUse node once the pipe-allocation phase has
// assigned the pipe instance a slot; the
// emitter renders it as ɵɵpipeBind1..V(pipeSlot, varOffset, args...) inline within
// whatever binding expression contained the original `| name:args`.
type PipeBindRef struct {
	base
	PipeSlot  int
	VarOffset int // offset of this bind's result cache in the template's vars region
	Name      string
	Args      []Node
}

func (n *PipeBindRef) Accept(v Visitor) interface{} { return v.VisitPipeBindRef(n) }

// PureFunctionRef replaces a literal array/object node
// once the pure-function-lifting pass has hoisted it to a module-level
// memoized constant; the emitter
// renders it as ɵɵpureFunction0..V(slot, fnRef, freeVars...).
type PureFunctionRef struct {
	base
	Slot     int
	FnRef    string
	FreeVars []Node
}

func (n *PureFunctionRef) Accept(v Visitor) interface{} { return v.VisitPureFunctionRef(n) }

// NewTemplateLiteral builds a template literal from already-parsed quasis
// and hole expressions; used by the template attribute parser to lower
// `attr="a{{b}}c"` interpolation into the same node shape as a backtick
// string.
func NewTemplateLiteral(pos span.Span, quasis []string, exprs []Node) *TemplateLiteral {
	return &TemplateLiteral{base: base{Pos: pos}, Quasis: quasis, Expressions: exprs}
}

// NewAssignment builds a synthetic assignment node. The span covers the
// value expression since there is no `=` token in source for it.
func NewAssignment(target, value Node) *Assignment {
	return &Assignment{base: base{Pos: value.Span()}, Target: target, Value: value}
}
