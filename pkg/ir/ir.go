// Package ir defines the create/update op model the pipeline phases
// transform and the emitter renders to JavaScript.
package ir

import "github.com/gaarutyunov/facet/pkg/expr"

// CreateOp is implemented by every op emitted once, on first render.
type CreateOp interface{ isCreateOp() }

// UpdateOp is implemented by every op re-run on each change-detection pass.
type UpdateOp interface{ isUpdateOp() }

type createBase struct{}

func (createBase) isCreateOp() {}

type updateBase struct{}

func (updateBase) isUpdateOp() {}

// --- create ops ---

type ElementStart struct {
	createBase
	Slot       int
	TagIdx     int // index into the component's tag-name string table
	ConstsIdx  int // -1 if no consts entry
	HasConsts  bool
}

type ElementEnd struct{ createBase }

// Element is the self-closing combined form of ElementStart+ElementEnd.
type Element struct {
	createBase
	Slot      int
	TagIdx    int
	ConstsIdx int
	HasConsts bool
}

type Text struct {
	createBase
	Slot    int
	Literal string
}

// TextEmpty marks a slot that will receive TextInterpolate updates.
type TextEmpty struct {
	createBase
	Slot int
}

type Template struct {
	createBase
	Slot      int
	TagIdx    int
	FnRef     string // emitted function name, e.g. "Host_Conditional_0_Template"
	Decls     int
	Vars      int
	ConstsIdx int
	HasConsts bool
	RefName   string // "" if this sub-template has no #ref
}

type Listener struct {
	createBase
	Event      string
	HandlerRef string // name of the hoisted handler closure, for emitter bookkeeping
	Handler    expr.Node
	UsesEvent  bool // handler body references $event
	UseCapture bool
}

type TwoWayListener struct {
	createBase
	Prop       string
	HandlerRef string
	Target     expr.Node // assignable LHS the synthetic handler writes to
}

type Reference struct {
	createBase
	Slot int
	Name string
}

type Projection struct {
	createBase
	Slot       int
	SelectorIdx int
}

type Pipe struct {
	createBase
	Slot int
	Name string
}

type DisableBindings struct{ createBase }
type EnableBindings struct{ createBase }

type RepeaterCreate struct {
	createBase
	Slot            int
	ForTemplateFn   string
	EmptyTemplateFn string // "" if no @empty
	TrackFn         string // hoisted track function name, e.g. "_forTrack0"
	TrackExpr       expr.Node
	ItemName        string // loop variable name inside TrackExpr, rendered as $item
}

type ConditionalCreate struct {
	createBase
	Slot        int
	TemplateFns []string
}

type LetDecl struct {
	createBase
	Slot int
}

type DeferCreate struct {
	createBase
	Slot int
}

// --- update ops ---

type Advance struct {
	updateBase
	N int // 0 is omitted entirely by the emitter; 1 is the implicit default form
}

// Slot on Property/Attribute/StyleProp/ClassProp/StyleMap/ClassMap/
// TwoWayProperty is not part of the runtime call (the instruction reads the
// runtime's current slot pointer implicitly) but records the element each
// op targets so the advance-reconciliation phase knows where `Advance(n)`
// needs to move the pointer before emitting the call.

type Property struct {
	updateBase
	Slot      int
	Name      string
	Expr      expr.Node
	Sanitizer string // "" if none
}

type Attribute struct {
	updateBase
	Slot      int
	Name      string
	Expr      expr.Node
	Sanitizer string
}

type StyleProp struct {
	updateBase
	Slot int
	Name string
	Expr expr.Node
	Unit string
}

type ClassProp struct {
	updateBase
	Slot int
	Name string
	Expr expr.Node
}

type StyleMap struct {
	updateBase
	Slot int
	Expr expr.Node
}

type ClassMap struct {
	updateBase
	Slot int
	Expr expr.Node
}

// TextInterpolate holds N expression holes for a bound-text slot; the
// emitter picks textInterpolate/textInterpolateN/textInterpolateV based on
// len(Exprs).
type TextInterpolate struct {
	updateBase
	Slot    int
	Quasis  []string
	Exprs   []expr.Node
}

type HostListener struct {
	updateBase
	Event   string
	Handler expr.Node
}

// Conditional selects which ConditionalCreate branch is active this cycle.
// For an `@if` chain, Conditions holds one expression per branch (nil for
// the trailing unconditional `@else`); for `@switch`, SwitchOn holds the
// subject and CaseMatches one match expression per case (nil for
// `@default`). The emitter flattens either form into the runtime's index
// ternary, -1 meaning "none matched".
type Conditional struct {
	updateBase
	Slot        int
	Conditions  []expr.Node
	SwitchOn    expr.Node
	CaseMatches []expr.Node
}

type Repeater struct {
	updateBase
	Slot  int
	Items expr.Node
}

type TwoWayProperty struct {
	updateBase
	Slot int
	Name string
	Expr expr.Node
}

type LetStore struct {
	updateBase
	Slot int
	Expr expr.Node
}

type PipeBind struct {
	updateBase
	Slot    int
	PipeSlot int
	Args    []expr.Node
}

// PureFunction hoists a literal array/object expression to a module-level
// memoized constant.
type PureFunction struct {
	updateBase
	Slot     int
	FnRef    string
	FreeVars []expr.Node
}

// TemplateIR is one template function's finalized op lists plus the
// bookkeeping the emitter and runtime need.
type TemplateIR struct {
	Name      string // emitted function name; "" for the root template
	Create    []CreateOp
	Update    []UpdateOp
	Decls     int
	Vars      int
	ConstsIdx int
	HasConsts bool
	Children  []*TemplateIR // sub-templates in source order

	// Scope lists the variables visible to resolve-names within this
	// template only (context variables from structural-directive
	// microsyntax, `let` aliases, and `@let` declarations); it does not
	// include parent scopes — the resolve-names phase walks Children with
	// an explicit stack to see the full chain.
	Scope []ScopeVar

	// PendingConsts holds consts entries the builder attached to a Create op
	// before the constant pool existed; InternConsts (phase 6) consumes and
	// clears this.
	PendingConsts []PendingConst
}

// ScopeVar is one template-local variable: its declared name plus the
// per-template context key it reads at runtime ("" means $implicit).
type ScopeVar struct {
	Name   string
	Source string
}

// Accessor returns the runtime context member a variable read compiles to.
func (v ScopeVar) Accessor() string {
	if v.Source == "" {
		return "$implicit"
	}
	return v.Source
}
