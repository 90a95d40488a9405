package phases

import (
	"github.com/gaarutyunov/facet/pkg/ir"
	"github.com/gaarutyunov/facet/pkg/template"
)

// attachConsts builds an ir.ConstsEntry for an element/template node's
// static attrs and bound names and, if non-empty, registers it as a
// PendingConst against the Create op the builder just appended at opIndex.
func attachConsts(t *ir.TemplateIR, opIndex int, attrs []template.Attribute, inputs []template.Input, outputs []template.Output) {
	var entry ir.ConstsEntry
	for _, a := range attrs {
		entry.StaticPairs = append(entry.StaticPairs, [2]string{a.Name, a.Value})
	}
	for _, in := range inputs {
		switch in.Kind {
		case template.InputStyle, template.InputClass:
			entry.StyleClass = append(entry.StyleClass, in.Name)
		default:
			entry.Properties = append(entry.Properties, in.Name)
		}
	}
	for _, out := range outputs {
		entry.TemplateOnly = append(entry.TemplateOnly, out.Name)
	}
	if entry.Empty() {
		return
	}
	t.PendingConsts = append(t.PendingConsts, ir.PendingConst{OpIndex: opIndex, Entry: entry})
}

// InternConsts is pipeline phase 6: every
// PendingConst recorded by the builder is interned into the component-wide
// pool (deduplicated by structural equality) and the owning Create op's
// ConstsIdx/HasConsts fields are finalized.
func InternConsts(root *ir.TemplateIR, pool *ir.ConstPool) {
	internTemplateConsts(root, pool)
}

func internTemplateConsts(t *ir.TemplateIR, pool *ir.ConstPool) {
	for _, pc := range t.PendingConsts {
		idx := pool.Intern(toInterfaceSlice(pc.Entry.Value()))
		setConstsIdx(t.Create, pc.OpIndex, idx)
	}
	t.PendingConsts = nil
	for _, c := range t.Children {
		internTemplateConsts(c, pool)
	}
}

func toInterfaceSlice(v []interface{}) interface{} { return v }

func setConstsIdx(ops []ir.CreateOp, idx int, constsIdx int) {
	switch o := ops[idx].(type) {
	case ir.ElementStart:
		o.ConstsIdx, o.HasConsts = constsIdx, true
		ops[idx] = o
	case ir.Element:
		o.ConstsIdx, o.HasConsts = constsIdx, true
		ops[idx] = o
	case ir.Template:
		o.ConstsIdx, o.HasConsts = constsIdx, true
		ops[idx] = o
	}
}
