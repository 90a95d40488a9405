// Package component defines the Record type the compiler consumes from
// decorator metadata extraction and the
// interface the extraction collaborator implements.
package component

// Kind distinguishes what a record (or a dependency of one) declares.
type Kind int

const (
	KindComponent Kind = iota
	KindDirective
	KindPipe
)

func (k Kind) String() string {
	switch k {
	case KindDirective:
		return "directive"
	case KindPipe:
		return "pipe"
	}
	return "component"
}

// Change-detection strategies, numbered per the runtime contract.
const (
	ChangeDetectionOnPush  = 0
	ChangeDetectionDefault = 1
)

// View-encapsulation modes.
const (
	EncapsulationEmulated = 0
	EncapsulationNone     = 2
)

// Input is one declared input, keyed by its public binding name.
// Inputs are kept as an ordered slice, never a Go map: emitted key order
// must equal source order.
type Input struct {
	Public    string
	Field     string
	Required  bool
	Transform string // emitted function reference, "" if none
}

// Output is one declared output, public binding name to class field.
type Output struct {
	Public string
	Field  string
}

// Dependency is one resolved entry of the component's `dependencies` list.
type Dependency struct {
	ClassName string
	Kind      Kind
	PipeName  string // pipe dependencies only: the template-facing name
	PipePure  bool
}

// HostDirective is one hostDirectives entry: a directive applied to the
// host with a subset of its inputs/outputs re-exposed.
type HostDirective struct {
	ClassName string
	Inputs    []string
	Outputs   []string
}

// HostBinding is a directive-level host property binding, e.g.
// `host: {"[attr.role]": "role"}`.
type HostBinding struct {
	Target string
	Expr   string
}

// HostListenerDecl is a directive-level host event binding, e.g.
// `host: {"(click)": "onClick($event)"}`.
type HostListenerDecl struct {
	Event   string
	Handler string
}

// Record is one class's extracted decorator metadata, the unit the
// compiler core consumes. A Record also
// describes directives and pipes; fields that do not apply to a kind are
// zero.
type Record struct {
	ClassName       string
	Kind            Kind
	Selector        string
	Standalone      bool
	ChangeDetection int
	Encapsulation   int

	Template            string
	PreserveWhitespaces bool
	Styles              []string

	Inputs  []Input
	Outputs []Output

	Dependencies   []Dependency
	HostDirectives []HostDirective
	HostBindings   []HostBinding
	HostListeners  []HostListenerDecl

	// CtorDeps lists constructor-injected dependency references, in
	// declaration order, for the factory emission.
	CtorDeps []string

	// Pipe records only.
	PipeName string
	PipePure bool
}

// PipePurity builds the name→purity table the pipe-allocation phase
// consults, from the record's resolved pipe dependencies.
func (r *Record) PipePurity() map[string]bool {
	out := map[string]bool{}
	for _, d := range r.Dependencies {
		if d.Kind == KindPipe {
			out[d.PipeName] = d.PipePure
		}
	}
	return out
}

// Extractor is the decorator-metadata collaborator interface. Extraction
// from real source files lives outside the core; pkg/decorator ships a
// manifest-backed implementation for the CLI and tests.
type Extractor interface {
	Extract(filename string, source []byte) ([]*Record, error)
}
