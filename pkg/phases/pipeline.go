package phases

import (
	"github.com/gaarutyunov/facet/pkg/diag"
	"github.com/gaarutyunov/facet/pkg/ir"
)

// Pipeline runs the eight required passes over a just-built IR
// tree in a fixed order, each pass's contract documented on its own file
// (resolve.go, twoway.go, pipes.go, listeners.go, consts.go, advance.go,
// counts.go).
type Pipeline struct {
	Pipes *PipeRegistry
	Pool  *ir.ConstPool
	Fns   *PureFunctionPool
	Bag   *diag.Bag
	b     *Builder
}

// NewPipeline wires a Pipeline against the component-wide constant pool,
// pure-function pool, and pipe purity registry; all three are shared by
// every template of one component and by nothing else.
func NewPipeline(b *Builder, pipes *PipeRegistry, pool *ir.ConstPool, fns *PureFunctionPool, bag *diag.Bag) *Pipeline {
	return &Pipeline{Pipes: pipes, Pool: pool, Fns: fns, Bag: bag, b: b}
}

// Run executes every phase, in fixed order, over root.
func (p *Pipeline) Run(root *ir.TemplateIR) {
	ResolveNames(root)
	ExpandTwoWay(root)
	// Structural-directive lowering (phase 3) is folded into the builder
	// (template-parser microsyntax already attaches inputs/vars) plus
	// InternConsts below, which gives the Template op its consts index.
	AllocatePipes(root, p.Pipes, p.b, p.Bag)
	HoistListeners(root)
	InternConsts(root, p.Pool)
	LiftPureFunctions(root, p.Fns)
	Reconcile(root)
	FinalizeCounts(root, p.Bag)
}
