// Package template implements the HTML-like template lexer and parser:
// elements, bound text, control-flow blocks, and the attribute/binding
// sub-model that classifies `[x]`, `(e)`, `[(m)]`, `#ref`, and `*dir`
// syntax.
package template

import (
	"github.com/gaarutyunov/facet/pkg/expr"
	"github.com/gaarutyunov/facet/pkg/span"
)

// Node is implemented by every template AST variant.
type Node interface {
	Span() span.Span
	Accept(v Visitor) interface{}
}

type base struct {
	Pos span.Span
}

func (b base) Span() span.Span { return b.Pos }

// InputKind distinguishes the binding target classes an `[x]=e` attribute
// can desugar to.
type InputKind int

const (
	InputProperty InputKind = iota
	InputAttribute
	InputStyle
	InputClass
	InputAnimation
)

// SecurityContext records the sanitizer the emitter must apply to a bound
// value, derived from the target property/attribute name.
type SecurityContext int

const (
	SecurityNone SecurityContext = iota
	SecurityURL
	SecurityResourceURL
	SecurityHTML
	SecurityStyle
)

// Attribute is a plain static `name="value"` pair.
type Attribute struct {
	Pos   span.Span
	Name  string
	Value string
}

// Input is a property/attribute/style/class/animation binding produced by
// `[x]=e`, `[attr.x]=e`, `[style.x.unit]=e`, `[class.x]=e`.
type Input struct {
	Pos      span.Span
	Name     string
	Kind     InputKind
	Unit     string // style bindings only, e.g. "px"
	Expr     expr.Node
	Security SecurityContext
}

// Output is an event binding produced by `(name)=h` or `(name.phase)=h`.
type Output struct {
	Pos      span.Span
	Name     string
	KeyEvent string // e.g. "enter" for (keydown.enter)
	Phase    string // animation trigger phase, e.g. "start"/"done"
	Handler  expr.Node
}

// TwoWayBinding is `[(m)]=e`: lowered by the two-way expansion phase into a
// TwoWayProperty(m, e) update op plus a TwoWayListener(mChange) create op.
type TwoWayBinding struct {
	Pos  span.Span
	Name string
	Expr expr.Node
}

// TemplateVariable is one `let x` / `let x = key` / `as x` binding attached
// to a Template node: structural-directive context variables, `@for`
// aliases, or `@if (...; as y)` captures.
type TemplateVariable struct {
	Pos    span.Span
	Name   string
	Source string // context key the variable reads from, "" for $implicit
}

// Reference is a `#name` or `#name="exportAs"` template reference.
type Reference struct {
	base
	Name     string
	ExportAs string
}

func (n *Reference) Accept(v Visitor) interface{} { return v.VisitReference(n) }

// Element is a tag with its classified attributes/bindings and children.
type Element struct {
	base
	Tag       string
	Namespace string // "" default, "svg", "math"
	Attrs     []Attribute
	Inputs    []Input
	Outputs   []Output
	TwoWays   []TwoWayBinding
	Refs      []Reference
	Children  []Node
	IsVoid    bool
}

func (n *Element) Accept(v Visitor) interface{} { return v.VisitElement(n) }

// Template is an `ng-template`-shaped node: the desugared body of a
// structural directive, or an explicit `<ng-template>`.
type Template struct {
	base
	Vars     []TemplateVariable
	Inputs   []Input
	Outputs  []Output
	Refs     []Reference
	Children []Node
}

func (n *Template) Accept(v Visitor) interface{} { return v.VisitTemplate(n) }

// Text is a literal run with no interpolation holes.
type Text struct {
	base
	Value string
}

func (n *Text) Accept(v Visitor) interface{} { return v.VisitText(n) }

// TextPart is one piece of a BoundText: either a literal run (Expr == nil)
// or an interpolation hole.
type TextPart struct {
	Literal string
	Expr    expr.Node
}

// BoundText is a text node containing one or more `{{ }}` interpolations.
type BoundText struct {
	base
	Parts []TextPart
}

func (n *BoundText) Accept(v Visitor) interface{} { return v.VisitBoundText(n) }

// Content is an `<ng-content select="...">` projection slot.
type Content struct {
	base
	Select string
}

func (n *Content) Accept(v Visitor) interface{} { return v.VisitContent(n) }

// IfBranch is one `@if`/`@else if`/`@else` arm. Cond is nil for the final
// unconditional `@else`.
type IfBranch struct {
	Cond  expr.Node
	Alias []TemplateVariable // `@if (expr; as y)`
	Body  *Template
}

// IfBlock is a full `@if`/`@else if`*/`@else`? chain.
type IfBlock struct {
	base
	Branches []IfBranch
}

func (n *IfBlock) Accept(v Visitor) interface{} { return v.VisitIfBlock(n) }

// ForBlock is `@for (item of items; track expr; ...) { } @empty { }`.
type ForBlock struct {
	base
	Item          string
	Items         expr.Node
	Tracker       expr.Node
	Aliases       []TemplateVariable // `let i = $index` etc.
	ItemTemplate  *Template
	EmptyTemplate *Template // nil if no @empty block
}

func (n *ForBlock) Accept(v Visitor) interface{} { return v.VisitForBlock(n) }

// SwitchCase is one `@case`/`@default` arm. Matches is nil for @default.
type SwitchCase struct {
	Matches expr.Node
	Body    *Template
}

// SwitchBlock is `@switch (expr) { @case ... @default ... }`.
type SwitchBlock struct {
	base
	Expr  expr.Node
	Cases []SwitchCase
}

func (n *SwitchBlock) Accept(v Visitor) interface{} { return v.VisitSwitchBlock(n) }

// LetDeclaration is `@let name = expr;`, visible in the remainder of its
// enclosing template scope.
type LetDeclaration struct {
	base
	Name string
	Expr expr.Node
}

func (n *LetDeclaration) Accept(v Visitor) interface{} { return v.VisitLetDeclaration(n) }

// DeferBlock carries the main template plus the optional
// placeholder/loading/error sub-templates; lowering emits only a stub
// create op for it.
type DeferBlock struct {
	base
	Main        *Template
	Placeholder *Template
	Loading     *Template
	Error       *Template
}

func (n *DeferBlock) Accept(v Visitor) interface{} { return v.VisitDeferBlock(n) }

// Invalid is the template parser's error-recovery placeholder, the
// template-AST equivalent of expr.Empty.
type Invalid struct{ base }

func (n *Invalid) Accept(v Visitor) interface{} { return v.VisitInvalid(n) }
