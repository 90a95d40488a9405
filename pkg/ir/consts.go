package ir

// ConstsEntry is one per-element/template `consts` literal:
// static attribute pairs followed by marker-delimited runs of bound names.
// Marker values follow the runtime's TAttributes contract: 1=property
// binding, 3=template-only binding (event names, outlet bindings),
// 4=i18n, 5=style/class bindings.
type ConstsEntry struct {
	StaticPairs  [][2]string
	Properties   []string
	TemplateOnly []string
	I18n         []string
	StyleClass   []string
}

// Empty reports whether the entry carries nothing worth interning.
func (e ConstsEntry) Empty() bool {
	return len(e.StaticPairs) == 0 && len(e.Properties) == 0 &&
		len(e.TemplateOnly) == 0 && len(e.I18n) == 0 && len(e.StyleClass) == 0
}

// Value renders the entry to the flat JSON-like literal the constant pool
// stores and the emitter prints as a JS array literal.
func (e ConstsEntry) Value() []interface{} {
	var out []interface{}
	for _, p := range e.StaticPairs {
		out = append(out, p[0], p[1])
	}
	appendRun := func(marker int, names []string) {
		if len(names) == 0 {
			return
		}
		out = append(out, marker)
		for _, n := range names {
			out = append(out, n)
		}
	}
	appendRun(1, e.Properties)
	appendRun(3, e.TemplateOnly)
	appendRun(4, e.I18n)
	appendRun(5, e.StyleClass)
	return out
}

// PendingConst associates a not-yet-interned ConstsEntry with the index,
// within its owning TemplateIR.Create slice, of the op whose
// ConstsIdx/HasConsts fields phase 6 (constant interning) fills in once the
// entry has a pool index.
type PendingConst struct {
	OpIndex int
	Entry   ConstsEntry
}
