// Package codegen renders finalized IR to JavaScript source: template
// functions, factories, and the ɵcmp/ɵdir/ɵpipe definition objects.
package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gaarutyunov/facet/pkg/component"
	"github.com/gaarutyunov/facet/pkg/expr"
	"github.com/gaarutyunov/facet/pkg/ir"
	"github.com/gaarutyunov/facet/pkg/phases"
)

// Component bundles everything the emitter needs for one class: the
// decorator record, the finalized IR tree, the per-component pools, the
// tag-name table the builder interned, and the styles already run through
// the scoper.
type Component struct {
	Record *component.Record
	Root   *ir.TemplateIR
	Host   *ir.TemplateIR // directive host bindings, nil when none
	Pool   *ir.ConstPool
	Fns    []phases.PureFunctionDef
	Tags   []string
	Styles []string
}

// Emitter generates JavaScript for one component per Emit call.
type Emitter struct {
	output      bytes.Buffer
	indentLevel int
	tags        []string
	templates   map[string]*ir.TemplateIR
	usedRuntime bool
}

// NewEmitter creates a new JavaScript emitter.
func NewEmitter() *Emitter {
	return &Emitter{templates: make(map[string]*ir.TemplateIR)}
}

// Emit renders the full output for one component: hoisted constants,
// sub-template functions, and the class with its static definitions.
func (g *Emitter) Emit(c *Component) ([]byte, error) {
	g.output.Reset()
	g.indentLevel = 0
	g.tags = c.Tags
	g.templates = make(map[string]*ir.TemplateIR)
	g.usedRuntime = false
	if c.Root != nil {
		g.indexTemplates(c.Root)
	}

	var body bytes.Buffer
	g.generateConstants(c)
	if c.Root != nil {
		g.generateTrackFunctions(c.Root)
		for _, child := range c.Root.Children {
			g.generateTemplateFunction(c, child)
		}
	}
	g.generateClass(c)
	body.Write(g.output.Bytes())

	g.output.Reset()
	if g.usedRuntime {
		g.writeln(`import * as i0 from "@angular/core";`)
		g.writeln("")
	}
	g.output.Write(body.Bytes())
	return g.output.Bytes(), nil
}

func (g *Emitter) indexTemplates(t *ir.TemplateIR) {
	g.templates[t.Name] = t
	for _, c := range t.Children {
		g.indexTemplates(c)
	}
}

// Helper methods for writing output

func (g *Emitter) write(s string) {
	g.output.WriteString(s)
}

func (g *Emitter) writeln(s string) {
	if s != "" {
		g.write(g.indent() + s)
	}
	g.output.WriteString("\n")
}

func (g *Emitter) indent() string {
	return strings.Repeat("    ", g.indentLevel)
}

func (g *Emitter) increaseIndent() {
	g.indentLevel++
}

func (g *Emitter) decreaseIndent() {
	if g.indentLevel > 0 {
		g.indentLevel--
	}
}

// rt renders an i0.ɵɵ-prefixed instruction reference and marks the
// runtime import as needed.
func (g *Emitter) rt(name string) string {
	g.usedRuntime = true
	return "i0.ɵɵ" + name
}

func (g *Emitter) tagName(idx int) string {
	if idx >= 0 && idx < len(g.tags) {
		return g.tags[idx]
	}
	return "div"
}

// Generate module-top pure-function constants

func (g *Emitter) generateConstants(c *Component) {
	for _, fn := range c.Fns {
		params := strings.Join(fn.FreeVars, ", ")
		body := jsExpr(fn.Body)
		if _, ok := fn.Body.(*expr.Literal); ok && strings.HasPrefix(body, "{") {
			body = "(" + body + ")"
		}
		g.writeln(fmt.Sprintf("const %s = (%s) => %s;", fn.Name, params, body))
	}
	if len(c.Fns) > 0 {
		g.writeln("")
	}
}

// Generate hoisted @for track functions, in create-op order

func (g *Emitter) generateTrackFunctions(t *ir.TemplateIR) {
	for _, op := range t.Create {
		if r, ok := op.(ir.RepeaterCreate); ok {
			body := "$index"
			if r.TrackExpr != nil {
				body = jsExpr(substituteTrackVars(r.TrackExpr, r.ItemName))
			}
			g.writeln(fmt.Sprintf("const %s = ($index, $item) => %s;", r.TrackFn, body))
			g.writeln("")
		}
	}
	for _, c := range t.Children {
		g.generateTrackFunctions(c)
	}
}

// substituteTrackVars rewrites implicit reads inside a track expression to
// the hoisted function's parameters: the loop variable becomes $item,
// $index stays $index.
func substituteTrackVars(n expr.Node, itemName string) expr.Node {
	if n == nil {
		return nil
	}
	switch e := n.(type) {
	case *expr.PropertyRead:
		if _, ok := e.Receiver.(*expr.ImplicitReceiver); ok {
			if e.Name == itemName {
				return &expr.Identifier{Name: "$item"}
			}
			return &expr.Identifier{Name: e.Name}
		}
		e.Receiver = substituteTrackVars(e.Receiver, itemName)
		return e
	case *expr.SafePropertyRead:
		e.Receiver = substituteTrackVars(e.Receiver, itemName)
		return e
	case *expr.KeyedRead:
		e.Receiver = substituteTrackVars(e.Receiver, itemName)
		e.Key = substituteTrackVars(e.Key, itemName)
		return e
	case *expr.Call:
		e.Callee = substituteTrackVars(e.Callee, itemName)
		for i, a := range e.Args {
			e.Args[i] = substituteTrackVars(a, itemName)
		}
		return e
	case *expr.MethodCall:
		e.Receiver = substituteTrackVars(e.Receiver, itemName)
		for i, a := range e.Args {
			e.Args[i] = substituteTrackVars(a, itemName)
		}
		return e
	case *expr.Binary:
		e.Left = substituteTrackVars(e.Left, itemName)
		e.Right = substituteTrackVars(e.Right, itemName)
		return e
	case *expr.Prefix:
		e.Operand = substituteTrackVars(e.Operand, itemName)
		return e
	case *expr.Conditional:
		e.Cond = substituteTrackVars(e.Cond, itemName)
		e.Then = substituteTrackVars(e.Then, itemName)
		e.Else = substituteTrackVars(e.Else, itemName)
		return e
	default:
		return n
	}
}

// Generate one sub-template function plus, recursively, its own children

func (g *Emitter) generateTemplateFunction(c *Component, t *ir.TemplateIR) {
	for _, child := range t.Children {
		g.generateTemplateFunction(c, child)
	}
	g.writeln(fmt.Sprintf("function %s(rf, ctx) {", t.Name))
	g.increaseIndent()
	g.generateTemplateBody(c, t, false)
	g.decreaseIndent()
	g.writeln("}")
	g.writeln("")
}

// generateTemplateBody writes the two rf-guarded phases shared by the root
// template, every sub-template, and hostBindings functions. host selects
// the host-binding instruction set (hostProperty instead of property).
func (g *Emitter) generateTemplateBody(c *Component, t *ir.TemplateIR, host bool) {
	if len(t.Create) > 0 {
		g.writeln("if (rf & 1) {")
		g.increaseIndent()
		g.generateCreateOps(c, t)
		g.decreaseIndent()
		g.writeln("}")
	}
	if len(t.Update) > 0 {
		g.writeln("if (rf & 2) {")
		g.increaseIndent()
		g.generateUpdateOps(t, host)
		g.decreaseIndent()
		g.writeln("}")
	}
}

func (g *Emitter) generateCreateOps(c *Component, t *ir.TemplateIR) {
	if t == c.Root && hasProjection(t) {
		g.writeln(g.rt("projectionDef") + "();")
	}
	for _, op := range t.Create {
		g.generateCreateOp(c, op)
	}
}

func hasProjection(t *ir.TemplateIR) bool {
	for _, op := range t.Create {
		if _, ok := op.(ir.Projection); ok {
			return true
		}
	}
	for _, c := range t.Children {
		if hasProjection(c) {
			return true
		}
	}
	return false
}

func (g *Emitter) generateCreateOp(c *Component, op ir.CreateOp) {
	switch o := op.(type) {
	case ir.ElementStart:
		g.writeln(g.rt("elementStart") + g.elementArgs(o.Slot, o.TagIdx, o.ConstsIdx, o.HasConsts) + ";")
	case ir.ElementEnd:
		g.writeln(g.rt("elementEnd") + "();")
	case ir.Element:
		g.writeln(g.rt("element") + g.elementArgs(o.Slot, o.TagIdx, o.ConstsIdx, o.HasConsts) + ";")
	case ir.Text:
		g.writeln(fmt.Sprintf("%s(%d, %s);", g.rt("text"), o.Slot, jsString(o.Literal)))
	case ir.TextEmpty:
		g.writeln(fmt.Sprintf("%s(%d);", g.rt("text"), o.Slot))
	case ir.Template:
		child := g.templates[o.FnRef]
		decls, vars := 0, 0
		if child != nil {
			decls, vars = child.Decls, child.Vars
		}
		args := fmt.Sprintf("%d, %s, %d, %d, %s", o.Slot, o.FnRef, decls, vars, jsString(g.tagName(o.TagIdx)))
		if o.HasConsts {
			args += fmt.Sprintf(", %d", o.ConstsIdx)
		} else if o.RefName != "" {
			args += ", null"
		}
		if o.RefName != "" {
			args += fmt.Sprintf(", [%s, %s], %s", jsString(o.RefName), jsString(""), g.rt("templateRefExtractor"))
		}
		g.writeln(g.rt("template") + "(" + args + ");")
	case ir.Listener:
		g.generateListener(o)
	case ir.TwoWayListener:
		g.generateTwoWayListener(o)
	case ir.Reference:
		// reference targets live in a secondary space resolved through
		// consts metadata; no standalone instruction is emitted
	case ir.Projection:
		if o.SelectorIdx >= 0 {
			g.writeln(fmt.Sprintf("%s(%d, %d);", g.rt("projection"), o.Slot, o.SelectorIdx))
		} else {
			g.writeln(fmt.Sprintf("%s(%d);", g.rt("projection"), o.Slot))
		}
	case ir.Pipe:
		g.writeln(fmt.Sprintf("%s(%d, %s);", g.rt("pipe"), o.Slot, jsString(o.Name)))
	case ir.DisableBindings:
		g.writeln(g.rt("disableBindings") + "();")
	case ir.EnableBindings:
		g.writeln(g.rt("enableBindings") + "();")
	case ir.RepeaterCreate:
		g.generateRepeaterCreate(o)
	case ir.ConditionalCreate:
		g.generateConditionalCreate(o)
	case ir.LetDecl:
		g.writeln(fmt.Sprintf("%s(%d);", g.rt("declareLet"), o.Slot))
	case ir.DeferCreate:
		g.writeln(fmt.Sprintf("%s(%d);", g.rt("defer"), o.Slot))
	}
}

func (g *Emitter) elementArgs(slot, tagIdx, constsIdx int, hasConsts bool) string {
	if hasConsts {
		return fmt.Sprintf("(%d, %s, %d)", slot, jsString(g.tagName(tagIdx)), constsIdx)
	}
	return fmt.Sprintf("(%d, %s)", slot, jsString(g.tagName(tagIdx)))
}

func (g *Emitter) generateListener(o ir.Listener) {
	param := ""
	if o.UsesEvent {
		param = "$event"
	}
	g.writeln(fmt.Sprintf("%s(%s, function %s(%s) {", g.rt("listener"), jsString(o.Event), o.HandlerRef, param))
	g.increaseIndent()
	g.generateHandlerBody(o.Handler)
	g.decreaseIndent()
	g.writeln("});")
}

// generateHandlerBody executes every chained expression and returns the
// last one's value through resetView.
func (g *Emitter) generateHandlerBody(handler expr.Node) {
	if handler == nil {
		g.writeln("return;")
		return
	}
	if chain, ok := handler.(*expr.Chain); ok && len(chain.Expressions) > 0 {
		for _, sub := range chain.Expressions[:len(chain.Expressions)-1] {
			g.writeln(jsExpr(sub) + ";")
		}
		handler = chain.Expressions[len(chain.Expressions)-1]
	}
	g.writeln(fmt.Sprintf("return %s(%s);", g.rt("resetView"), jsExpr(handler)))
}

func (g *Emitter) generateTwoWayListener(o ir.TwoWayListener) {
	target := jsExpr(o.Target)
	g.writeln(fmt.Sprintf("%s(%s, function($event) {", g.rt("twoWayListener"), jsString(o.Prop+"Change")))
	g.increaseIndent()
	g.writeln(fmt.Sprintf("%s(%s, $event) || (%s = $event);", g.rt("twoWayBindingSet"), target, target))
	g.writeln("return $event;")
	g.decreaseIndent()
	g.writeln("});")
}

func (g *Emitter) generateRepeaterCreate(o ir.RepeaterCreate) {
	forChild := g.templates[o.ForTemplateFn]
	decls, vars := 0, 0
	if forChild != nil {
		decls, vars = forChild.Decls, forChild.Vars
	}
	args := fmt.Sprintf("%d, %s, %d, %d, %s", o.Slot, o.ForTemplateFn, decls, vars, o.TrackFn)
	if o.EmptyTemplateFn != "" {
		empty := g.templates[o.EmptyTemplateFn]
		eDecls, eVars := 0, 0
		if empty != nil {
			eDecls, eVars = empty.Decls, empty.Vars
		}
		args += fmt.Sprintf(", %s, %d, %d", o.EmptyTemplateFn, eDecls, eVars)
	}
	g.writeln(g.rt("repeaterCreate") + "(" + args + ");")
}

func (g *Emitter) generateConditionalCreate(o ir.ConditionalCreate) {
	parts := []string{fmt.Sprintf("%d", o.Slot)}
	for _, fn := range o.TemplateFns {
		child := g.templates[fn]
		decls, vars := 0, 0
		if child != nil {
			decls, vars = child.Decls, child.Vars
		}
		parts = append(parts, fmt.Sprintf("%s, %d, %d", fn, decls, vars))
	}
	g.writeln(g.rt("conditionalCreate") + "(" + strings.Join(parts, ", ") + ");")
}

// Update-phase emission. Consecutive property (and attribute) ops chain
// into one call expression, matching the runtime's fluent form (seed S5).

func (g *Emitter) generateUpdateOps(t *ir.TemplateIR, host bool) {
	ops := t.Update
	for i := 0; i < len(ops); i++ {
		switch o := ops[i].(type) {
		case ir.Property:
			run := []ir.Property{o}
			for i+1 < len(ops) {
				next, ok := ops[i+1].(ir.Property)
				if !ok {
					break
				}
				run = append(run, next)
				i++
			}
			g.generatePropertyRun(run, host)
		case ir.Attribute:
			run := []ir.Attribute{o}
			for i+1 < len(ops) {
				next, ok := ops[i+1].(ir.Attribute)
				if !ok {
					break
				}
				run = append(run, next)
				i++
			}
			g.generateAttributeRun(run)
		default:
			g.generateUpdateOp(ops[i])
		}
	}
}

func (g *Emitter) generatePropertyRun(run []ir.Property, host bool) {
	name := "property"
	if host {
		name = "hostProperty"
	}
	var b strings.Builder
	b.WriteString(g.rt(name))
	for _, o := range run {
		b.WriteString(fmt.Sprintf("(%s, %s%s)", jsString(o.Name), jsExpr(o.Expr), g.sanitizerArg(o.Sanitizer)))
	}
	b.WriteString(";")
	g.writeln(b.String())
}

func (g *Emitter) generateAttributeRun(run []ir.Attribute) {
	var b strings.Builder
	b.WriteString(g.rt("attribute"))
	for _, o := range run {
		b.WriteString(fmt.Sprintf("(%s, %s%s)", jsString(o.Name), jsExpr(o.Expr), g.sanitizerArg(o.Sanitizer)))
	}
	b.WriteString(";")
	g.writeln(b.String())
}

func (g *Emitter) sanitizerArg(name string) string {
	if name == "" {
		return ""
	}
	return ", " + g.rt(name)
}

func (g *Emitter) generateUpdateOp(op ir.UpdateOp) {
	switch o := op.(type) {
	case ir.Advance:
		if o.N == 1 {
			g.writeln(g.rt("advance") + "();")
		} else {
			g.writeln(fmt.Sprintf("%s(%d);", g.rt("advance"), o.N))
		}
	case ir.StyleProp:
		if o.Unit != "" {
			g.writeln(fmt.Sprintf("%s(%s, %s, %s);", g.rt("styleProp"), jsString(o.Name), jsExpr(o.Expr), jsString(o.Unit)))
		} else {
			g.writeln(fmt.Sprintf("%s(%s, %s);", g.rt("styleProp"), jsString(o.Name), jsExpr(o.Expr)))
		}
	case ir.ClassProp:
		g.writeln(fmt.Sprintf("%s(%s, %s);", g.rt("classProp"), jsString(o.Name), jsExpr(o.Expr)))
	case ir.StyleMap:
		g.writeln(fmt.Sprintf("%s(%s);", g.rt("styleMap"), jsExpr(o.Expr)))
	case ir.ClassMap:
		g.writeln(fmt.Sprintf("%s(%s);", g.rt("classMap"), jsExpr(o.Expr)))
	case ir.TextInterpolate:
		g.generateTextInterpolate(o)
	case ir.Conditional:
		g.writeln(fmt.Sprintf("%s(%s);", g.rt("conditional"), g.conditionalSelect(o)))
	case ir.Repeater:
		g.writeln(fmt.Sprintf("%s(%s);", g.rt("repeater"), jsExpr(o.Items)))
	case ir.TwoWayProperty:
		g.writeln(fmt.Sprintf("%s(%s, %s);", g.rt("twoWayProperty"), jsString(o.Name), jsExpr(o.Expr)))
	case ir.LetStore:
		g.writeln(fmt.Sprintf("%s(%s);", g.rt("storeLet"), jsExpr(o.Expr)))
	case ir.HostListener:
		g.writeln(fmt.Sprintf("%s(%s, function() {", g.rt("listener"), jsString(o.Event)))
		g.increaseIndent()
		g.generateHandlerBody(o.Handler)
		g.decreaseIndent()
		g.writeln("});")
	}
}

func (g *Emitter) generateTextInterpolate(o ir.TextInterpolate) {
	n := len(o.Exprs)
	if n == 1 && allEmpty(o.Quasis) {
		g.writeln(fmt.Sprintf("%s(%s);", g.rt("textInterpolate"), jsExpr(o.Exprs[0])))
		return
	}
	parts := interleave(o.Quasis, o.Exprs)
	if n <= 8 {
		name := "textInterpolate"
		if n > 1 {
			name = fmt.Sprintf("textInterpolate%d", n)
		} else {
			name = "textInterpolate1"
		}
		g.writeln(fmt.Sprintf("%s(%s);", g.rt(name), strings.Join(parts, ", ")))
		return
	}
	g.writeln(fmt.Sprintf("%s([%s]);", g.rt("textInterpolateV"), strings.Join(parts, ", ")))
}

func allEmpty(quasis []string) bool {
	for _, q := range quasis {
		if q != "" {
			return false
		}
	}
	return true
}

// interleave renders quasi/expression alternation: q0, e0, q1, e1, ... qN.
func interleave(quasis []string, exprs []expr.Node) []string {
	var parts []string
	for i := 0; i <= len(exprs); i++ {
		q := ""
		if i < len(quasis) {
			q = quasis[i]
		}
		parts = append(parts, jsString(q))
		if i < len(exprs) {
			parts = append(parts, jsExpr(exprs[i]))
		}
	}
	return parts
}

// conditionalSelect flattens an @if chain or @switch into the runtime's
// branch-index ternary, branches numbered in source order; -1 means no
// branch matched.
func (g *Emitter) conditionalSelect(o ir.Conditional) string {
	if o.SwitchOn != nil {
		subject := jsExprPrec(o.SwitchOn, precEquality+1)
		out := "-1"
		for i := len(o.CaseMatches) - 1; i >= 0; i-- {
			if o.CaseMatches[i] == nil {
				out = fmt.Sprintf("%d", i)
				continue
			}
			out = fmt.Sprintf("%s === %s ? %d : %s", subject, jsExprPrec(o.CaseMatches[i], precEquality+1), i, out)
		}
		return out
	}
	out := "-1"
	for i := len(o.Conditions) - 1; i >= 0; i-- {
		if o.Conditions[i] == nil {
			out = fmt.Sprintf("%d", i)
			continue
		}
		out = fmt.Sprintf("%s ? %d : %s", jsExprPrec(o.Conditions[i], precConditional+1), i, out)
	}
	return out
}

// Class and definition-object emission

func (g *Emitter) generateClass(c *Component) {
	rec := c.Record
	g.writeln(fmt.Sprintf("export class %s {", rec.ClassName))
	g.increaseIndent()
	g.generateFactory(rec)
	switch rec.Kind {
	case component.KindPipe:
		g.generatePipeDef(rec)
	case component.KindDirective:
		g.generateDirectiveDef(c)
	default:
		g.generateComponentDef(c)
	}
	g.decreaseIndent()
	g.writeln("}")
}

func (g *Emitter) generateFactory(rec *component.Record) {
	deps := make([]string, len(rec.CtorDeps))
	for i, d := range rec.CtorDeps {
		deps[i] = g.rt("directiveInject") + "(" + d + ")"
	}
	g.writeln(fmt.Sprintf("static ɵfac = function %s_Factory(t) { return new (t || %s)(%s); };",
		rec.ClassName, rec.ClassName, strings.Join(deps, ", ")))
}

func (g *Emitter) generateComponentDef(c *Component) {
	g.writeDefineComponent(c, fmt.Sprintf("static ɵcmp = /* @__PURE__ */ %s({", g.rt("defineComponent")), "});")
}

// EmitDefinition renders only the hoisted support code (constants, track
// functions, sub-template functions) and the bare defineComponent
// expression, the form the partial-declaration linker splices into a
// pre-compiled library file in place of the ɵɵngDeclareComponent call.
func (g *Emitter) EmitDefinition(c *Component) (hoisted string, def string, err error) {
	g.output.Reset()
	g.indentLevel = 0
	g.tags = c.Tags
	g.templates = make(map[string]*ir.TemplateIR)
	g.usedRuntime = false
	if c.Root != nil {
		g.indexTemplates(c.Root)
		g.generateConstants(c)
		g.generateTrackFunctions(c.Root)
		for _, child := range c.Root.Children {
			g.generateTemplateFunction(c, child)
		}
	}
	hoisted = g.output.String()
	g.output.Reset()
	g.writeDefineComponent(c, fmt.Sprintf("/* @__PURE__ */ %s({", g.rt("defineComponent")), "})")
	def = strings.TrimRight(g.output.String(), "\n")
	return hoisted, def, nil
}

func (g *Emitter) writeDefineComponent(c *Component, head, tail string) {
	rec := c.Record
	g.writeln(head)
	g.increaseIndent()
	g.writeln(fmt.Sprintf("type: %s,", rec.ClassName))
	g.writeln(fmt.Sprintf("selectors: %s,", encodeSelector(rec.Selector)))
	g.writeln(fmt.Sprintf("decls: %d,", c.Root.Decls))
	g.writeln(fmt.Sprintf("vars: %d,", c.Root.Vars))
	if c.Pool != nil && c.Pool.Len() > 0 {
		vals := make([]string, c.Pool.Len())
		for i, v := range c.Pool.Values() {
			vals[i] = jsValue(v)
		}
		g.writeln(fmt.Sprintf("consts: [%s],", strings.Join(vals, ", ")))
	}
	g.writeln(fmt.Sprintf("template: function %s(rf, ctx) {", c.Root.Name))
	g.increaseIndent()
	g.generateTemplateBody(c, c.Root, false)
	g.decreaseIndent()
	g.writeln("},")
	g.generateInputsOutputs(rec)
	if rec.Standalone {
		g.writeln("standalone: true,")
	}
	if len(c.Styles) > 0 {
		styles := make([]string, len(c.Styles))
		for i, s := range c.Styles {
			styles[i] = jsString(s)
		}
		g.writeln(fmt.Sprintf("styles: [%s],", strings.Join(styles, ", ")))
	}
	if rec.Encapsulation == component.EncapsulationNone {
		g.writeln("encapsulation: 2,")
	}
	if rec.ChangeDetection == component.ChangeDetectionOnPush {
		g.writeln("changeDetection: 0,")
	}
	if len(rec.Dependencies) > 0 {
		deps := make([]string, len(rec.Dependencies))
		for i, d := range rec.Dependencies {
			deps[i] = d.ClassName
		}
		g.writeln(fmt.Sprintf("dependencies: [%s],", strings.Join(deps, ", ")))
	}
	g.decreaseIndent()
	g.writeln(tail)
}

func (g *Emitter) generateDirectiveDef(c *Component) {
	rec := c.Record
	g.writeln(fmt.Sprintf("static ɵdir = /* @__PURE__ */ %s({", g.rt("defineDirective")))
	g.increaseIndent()
	g.writeln(fmt.Sprintf("type: %s,", rec.ClassName))
	g.writeln(fmt.Sprintf("selectors: %s,", encodeSelector(rec.Selector)))
	if c.Host != nil && (len(c.Host.Create) > 0 || len(c.Host.Update) > 0) {
		g.writeln(fmt.Sprintf("hostBindings: function %s_HostBindings(rf, ctx) {", rec.ClassName))
		g.increaseIndent()
		g.generateTemplateBody(c, c.Host, true)
		g.decreaseIndent()
		g.writeln("},")
	}
	g.generateInputsOutputs(rec)
	if rec.Standalone {
		g.writeln("standalone: true,")
	}
	g.decreaseIndent()
	g.writeln("});")
}

func (g *Emitter) generatePipeDef(rec *component.Record) {
	g.writeln(fmt.Sprintf("static ɵpipe = /* @__PURE__ */ %s({", g.rt("definePipe")))
	g.increaseIndent()
	g.writeln(fmt.Sprintf("name: %s,", jsString(rec.PipeName)))
	g.writeln(fmt.Sprintf("type: %s,", rec.ClassName))
	g.writeln(fmt.Sprintf("pure: %v,", rec.PipePure))
	if rec.Standalone {
		g.writeln("standalone: true,")
	}
	g.decreaseIndent()
	g.writeln("});")
}

// generateInputsOutputs renders the inputs/outputs maps. Inputs use the
// rich [flags, field, transform?] form as soon as any input needs flags or
// a transform, the shorthand otherwise. Key order equals record order.
func (g *Emitter) generateInputsOutputs(rec *component.Record) {
	if len(rec.Inputs) > 0 {
		rich := false
		for _, in := range rec.Inputs {
			if in.Required || in.Transform != "" {
				rich = true
				break
			}
		}
		parts := make([]string, len(rec.Inputs))
		for i, in := range rec.Inputs {
			if rich {
				flags := 0
				if in.Required {
					flags = 1
				}
				entry := fmt.Sprintf("%s: [%d, %s", in.Public, flags, jsString(in.Field))
				if in.Transform != "" {
					entry += ", " + in.Transform
				}
				parts[i] = entry + "]"
			} else {
				parts[i] = fmt.Sprintf("%s: %s", in.Public, jsString(in.Field))
			}
		}
		g.writeln(fmt.Sprintf("inputs: { %s },", strings.Join(parts, ", ")))
	}
	if len(rec.Outputs) > 0 {
		parts := make([]string, len(rec.Outputs))
		for i, out := range rec.Outputs {
			parts[i] = fmt.Sprintf("%s: %s", out.Public, jsString(out.Field))
		}
		g.writeln(fmt.Sprintf("outputs: { %s },", strings.Join(parts, ", ")))
	}
}
