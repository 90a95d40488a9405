// Package phases implements the IR builder and the fixed-order pipeline
// passes that follow it: each phase is a function over the in-progress
// IR, composed by Pipeline.Run.
package phases

import (
	"fmt"

	"github.com/gaarutyunov/facet/pkg/diag"
	"github.com/gaarutyunov/facet/pkg/expr"
	"github.com/gaarutyunov/facet/pkg/ir"
	"github.com/gaarutyunov/facet/pkg/template"
)

// twoWayStage is a build-time-only staging op for a two-way binding; phase
// 2 (two-way expansion) consumes it and emits the real TwoWayProperty
// update + TwoWayListener create ops. It never reaches the emitter.
type twoWayStage struct {
	ir.UpdateOp
	Slot int
	Name string
	Expr expr.Node
}

// Builder walks a parsed template.Template into an unresolved TemplateIR
// tree: slots are assigned, but names aren't resolved, pipes aren't
// allocated, and two-way bindings haven't been split yet. Those are the
// job of the phases that run after Build.
type Builder struct {
	bag         *diag.Bag
	nextFnID    int
	nextTrackID int
	nextLsnrID  int
	hostName    string
	tags        *tagTable
}

// NewBuilder creates a builder that reports into bag and names generated
// sub-template functions after hostName (the component class name). Each
// Builder owns its own tag table so concurrent compilations never share
// mutable state.
func NewBuilder(hostName string, bag *diag.Bag) *Builder {
	return &Builder{bag: bag, hostName: hostName, tags: &tagTable{index: map[string]int{}}}
}

// Build produces the root TemplateIR for a parsed template.
func (b *Builder) Build(root *template.Template) *ir.TemplateIR {
	t := &ir.TemplateIR{Name: b.hostName + "_Template", Scope: scopeOf(root)}
	slot := 0
	b.buildChildren(t, root.Children, &slot)
	return t
}

// scopeOf collects the variables visible within tpl itself: its declared
// context variables plus any `@let` declarations among its direct
// children. Nested sub-templates get their own Scope entry built
// separately when buildSubTemplate recurses into them.
func scopeOf(tpl *template.Template) []ir.ScopeVar {
	var vars []ir.ScopeVar
	for _, v := range tpl.Vars {
		vars = append(vars, ir.ScopeVar{Name: v.Name, Source: v.Source})
	}
	for _, c := range tpl.Children {
		if let, ok := c.(*template.LetDeclaration); ok {
			// an @let reads back its own stored value, never a context key
			vars = append(vars, ir.ScopeVar{Name: let.Name, Source: let.Name})
		}
	}
	return vars
}

func (b *Builder) genFnName(kind string) string {
	b.nextFnID++
	return fmt.Sprintf("%s_%s_%d_Template", b.hostName, kind, b.nextFnID-1)
}

func (b *Builder) genTrackName() string {
	b.nextTrackID++
	return fmt.Sprintf("_forTrack%d", b.nextTrackID-1)
}

func (b *Builder) genListenerName(event string) string {
	b.nextLsnrID++
	return fmt.Sprintf("%s_%s_%d_listener", b.hostName, sanitizeIdent(event), b.nextLsnrID-1)
}

// sanitizeIdent keeps event names like "keydown.enter" usable inside a
// generated JS function name.
func sanitizeIdent(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' {
			out = append(out, c)
		} else {
			out = append(out, '_')
		}
	}
	return string(out)
}

func (b *Builder) buildChildren(t *ir.TemplateIR, nodes []template.Node, slot *int) {
	for _, n := range nodes {
		b.buildNode(t, n, slot)
	}
}

func (b *Builder) buildNode(t *ir.TemplateIR, n template.Node, slot *int) {
	switch node := n.(type) {
	case *template.Element:
		b.buildElement(t, node, slot)
	case *template.Template:
		b.buildExplicitTemplate(t, node, slot)
	case *template.Text:
		s := *slot
		*slot++
		t.Create = append(t.Create, ir.Text{Slot: s, Literal: node.Value})
	case *template.BoundText:
		s := *slot
		*slot++
		t.Create = append(t.Create, ir.TextEmpty{Slot: s})
		quasis, holes := splitParts(node.Parts)
		t.Update = append(t.Update, ir.TextInterpolate{Slot: s, Quasis: quasis, Exprs: holes})
	case *template.Content:
		s := *slot
		*slot++
		t.Create = append(t.Create, ir.Projection{Slot: s, SelectorIdx: -1})
	case *template.IfBlock:
		b.buildIfBlock(t, node, slot)
	case *template.ForBlock:
		b.buildForBlock(t, node, slot)
	case *template.SwitchBlock:
		b.buildSwitchBlock(t, node, slot)
	case *template.LetDeclaration:
		s := *slot
		*slot++
		t.Create = append(t.Create, ir.LetDecl{Slot: s})
		t.Update = append(t.Update, ir.LetStore{Slot: s, Expr: node.Expr})
	case *template.DeferBlock:
		b.buildDeferBlock(t, node, slot)
	case *template.Invalid:
		// error-recovery placeholder: contributes no ops, the template-AST
		// equivalent of an Empty expression compiling to a no-op binding.
	}
}

func splitParts(parts []template.TextPart) ([]string, []expr.Node) {
	var quasis []string
	var holes []expr.Node
	for _, p := range parts {
		if p.Expr != nil {
			holes = append(holes, p.Expr)
			continue
		}
		quasis = append(quasis, p.Literal)
	}
	for len(quasis) <= len(holes) {
		quasis = append(quasis, "")
	}
	return quasis, holes
}

func (b *Builder) buildElement(t *ir.TemplateIR, el *template.Element, slot *int) {
	s := *slot
	*slot++
	opIndex := len(t.Create)
	combined := len(el.Children) == 0
	if combined {
		t.Create = append(t.Create, ir.Element{Slot: s, TagIdx: b.internTag(el.Tag)})
	} else {
		t.Create = append(t.Create, ir.ElementStart{Slot: s, TagIdx: b.internTag(el.Tag)})
	}
	attachConsts(t, opIndex, el.Attrs, el.Inputs, el.Outputs)

	for _, a := range el.Inputs {
		b.buildInput(t, s, a)
	}
	for _, out := range el.Outputs {
		event := out.Name
		if out.KeyEvent != "" {
			event = out.Name + "." + out.KeyEvent
		}
		t.Create = append(t.Create, ir.Listener{Event: event, HandlerRef: b.genListenerName(event), Handler: out.Handler})
	}
	for _, tw := range el.TwoWays {
		t.Update = append(t.Update, twoWayStage{Slot: s, Name: tw.Name, Expr: tw.Expr})
	}
	for _, r := range el.Refs {
		t.Create = append(t.Create, ir.Reference{Slot: s, Name: r.Name})
	}

	for _, c := range el.Children {
		b.buildNode(t, c, slot)
	}
	if !combined {
		t.Create = append(t.Create, ir.ElementEnd{})
	}
}

func (b *Builder) buildInput(t *ir.TemplateIR, slot int, in template.Input) {
	switch in.Kind {
	case template.InputStyle:
		t.Update = append(t.Update, ir.StyleProp{Slot: slot, Name: in.Name, Expr: in.Expr, Unit: in.Unit})
	case template.InputClass:
		t.Update = append(t.Update, ir.ClassProp{Slot: slot, Name: in.Name, Expr: in.Expr})
	case template.InputAttribute:
		t.Update = append(t.Update, ir.Attribute{Slot: slot, Name: in.Name, Expr: in.Expr, Sanitizer: sanitizerFor(in.Security)})
	default:
		t.Update = append(t.Update, ir.Property{Slot: slot, Name: in.Name, Expr: in.Expr, Sanitizer: sanitizerFor(in.Security)})
	}
}

func sanitizerFor(sc template.SecurityContext) string {
	switch sc {
	case template.SecurityURL:
		return "sanitizeUrl"
	case template.SecurityResourceURL:
		return "sanitizeUrl"
	case template.SecurityHTML:
		return "sanitizeHtml"
	case template.SecurityStyle:
		return "sanitizeStyle"
	}
	return ""
}

// buildSubTemplate builds a child template.Template into its own
// ir.TemplateIR, named fnKind, and returns it alongside the parent-facing
// Template create op.
func (b *Builder) buildSubTemplate(parent *ir.TemplateIR, tpl *template.Template, parentSlot int, fnKind string) *ir.TemplateIR {
	child := &ir.TemplateIR{Name: b.genFnName(fnKind), Scope: scopeOf(tpl)}
	slot := 0
	b.buildChildren(child, tpl.Children, &slot)
	parent.Children = append(parent.Children, child)
	return child
}

func (b *Builder) buildExplicitTemplate(t *ir.TemplateIR, tpl *template.Template, slot *int) {
	s := *slot
	*slot++
	child := b.buildSubTemplate(t, tpl, s, "Template")
	refName := ""
	if len(tpl.Refs) > 0 {
		refName = tpl.Refs[0].Name
	}
	opIndex := len(t.Create)
	t.Create = append(t.Create, ir.Template{Slot: s, TagIdx: b.internTag("ng-template"), FnRef: child.Name, RefName: refName})
	attachConsts(t, opIndex, nil, tpl.Inputs, tpl.Outputs)
	for _, in := range tpl.Inputs {
		b.buildInput(t, s, in)
	}
}

func (b *Builder) buildIfBlock(t *ir.TemplateIR, blk *template.IfBlock, slot *int) {
	s := *slot
	*slot++
	var fns []string
	var conds []expr.Node
	for _, br := range blk.Branches {
		br.Body.Vars = append(br.Body.Vars, br.Alias...)
		child := b.buildSubTemplate(t, br.Body, s, "Conditional")
		fns = append(fns, child.Name)
		conds = append(conds, br.Cond)
	}
	t.Create = append(t.Create, ir.ConditionalCreate{Slot: s, TemplateFns: fns})
	t.Update = append(t.Update, ir.Conditional{Slot: s, Conditions: conds})
}

// forImplicitVars are always in scope inside a `@for` body.
var forImplicitVars = []string{"$index", "$count", "$first", "$last", "$even", "$odd"}

func (b *Builder) buildForBlock(t *ir.TemplateIR, blk *template.ForBlock, slot *int) {
	s := *slot
	*slot++
	blk.ItemTemplate.Vars = append(blk.ItemTemplate.Vars, template.TemplateVariable{Name: blk.Item})
	for _, name := range forImplicitVars {
		blk.ItemTemplate.Vars = append(blk.ItemTemplate.Vars, template.TemplateVariable{Name: name, Source: name})
	}
	blk.ItemTemplate.Vars = append(blk.ItemTemplate.Vars, blk.Aliases...)
	itemChild := b.buildSubTemplate(t, blk.ItemTemplate, s, "For")
	emptyFn := ""
	if blk.EmptyTemplate != nil {
		emptyChild := b.buildSubTemplate(t, blk.EmptyTemplate, s, "ForEmpty")
		emptyFn = emptyChild.Name
	}
	t.Create = append(t.Create, ir.RepeaterCreate{
		Slot:            s,
		ForTemplateFn:   itemChild.Name,
		EmptyTemplateFn: emptyFn,
		TrackFn:         b.genTrackName(),
		TrackExpr:       blk.Tracker,
		ItemName:        blk.Item,
	})
	t.Update = append(t.Update, ir.Repeater{Slot: s, Items: blk.Items})
}

func (b *Builder) buildSwitchBlock(t *ir.TemplateIR, blk *template.SwitchBlock, slot *int) {
	s := *slot
	*slot++
	var fns []string
	var matches []expr.Node
	for _, c := range blk.Cases {
		child := b.buildSubTemplate(t, c.Body, s, "Switch")
		fns = append(fns, child.Name)
		matches = append(matches, c.Matches)
	}
	t.Create = append(t.Create, ir.ConditionalCreate{Slot: s, TemplateFns: fns})
	t.Update = append(t.Update, ir.Conditional{Slot: s, SwitchOn: blk.Expr, CaseMatches: matches})
}

func (b *Builder) buildDeferBlock(t *ir.TemplateIR, blk *template.DeferBlock, slot *int) {
	s := *slot
	*slot++
	b.buildSubTemplate(t, blk.Main, s, "Defer")
	if blk.Placeholder != nil {
		b.buildSubTemplate(t, blk.Placeholder, s, "DeferPlaceholder")
	}
	if blk.Loading != nil {
		b.buildSubTemplate(t, blk.Loading, s, "DeferLoading")
	}
	if blk.Error != nil {
		b.buildSubTemplate(t, blk.Error, s, "DeferError")
	}
	t.Create = append(t.Create, ir.DeferCreate{Slot: s})
}

// tagTable gives every element/template tag a stable per-Builder index; the
// emitter renders actual tag-name strings inline so the table only needs to
// exist long enough to hand back consistent integers within one Build call.
// It is owned by a single Builder instance (never a package global) so that
// concurrent compilations across goroutines never share mutable state.
type tagTable struct {
	names []string
	index map[string]int
}

func (b *Builder) internTag(name string) int {
	if idx, ok := b.tags.index[name]; ok {
		return idx
	}
	idx := len(b.tags.names)
	b.tags.names = append(b.tags.names, name)
	b.tags.index[name] = idx
	return idx
}

// TagNames returns the tag table interned by this Builder's Build call.
func (b *Builder) TagNames() []string { return append([]string(nil), b.tags.names...) }
