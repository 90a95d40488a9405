// Package compiler wires the full pipeline (template parse, IR build,
// phases, style scoping, emission) behind the public entry points:
// Compile, CompileBatch, and the project configuration the CLI reads.
package compiler

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gaarutyunov/facet/pkg/codegen"
	"github.com/gaarutyunov/facet/pkg/component"
	"github.com/gaarutyunov/facet/pkg/decorator"
	"github.com/gaarutyunov/facet/pkg/diag"
	"github.com/gaarutyunov/facet/pkg/expr"
	"github.com/gaarutyunov/facet/pkg/ir"
	"github.com/gaarutyunov/facet/pkg/phases"
	"github.com/gaarutyunov/facet/pkg/span"
	"github.com/gaarutyunov/facet/pkg/style"
	"github.com/gaarutyunov/facet/pkg/template"
)

// Result is one file's compilation outcome.
type Result struct {
	Filename    string
	Code        string
	Diagnostics []*diag.Diagnostic
}

// File is one CompileBatch input.
type File struct {
	Filename string
	Content  string
}

// Options carries per-call knobs. Cancelled, when non-nil, is checked at
// phase boundaries only; a cancelled call returns the diagnostics
// gathered so far.
type Options struct {
	Cancelled func() bool
}

// Compiler is a long-lived handle, safe for concurrent use: every call
// allocates its own scratch state, so calls never share buffers.
type Compiler struct {
	extractor component.Extractor
}

// New builds a compiler using the manifest-backed metadata reader.
func New() *Compiler {
	return &Compiler{extractor: decorator.New()}
}

// NewWithExtractor builds a compiler over a caller-supplied decorator
// extraction collaborator.
func NewWithExtractor(e component.Extractor) *Compiler {
	return &Compiler{extractor: e}
}

// Compile compiles every component declared in one source file.
func (c *Compiler) Compile(filename, source string) Result {
	return c.CompileOpts(filename, source, Options{})
}

// CompileOpts is Compile with per-call options.
func (c *Compiler) CompileOpts(filename, source string, opts Options) Result {
	records, err := c.extractor.Extract(filename, []byte(source))
	if err != nil {
		bag := &diag.Bag{}
		bag.Errorf(diag.CodeUnexpectedToken, diag.Syntax, span.Span{File: filename}, "%v", err)
		return Result{Filename: filename, Code: errorCode(err.Error()), Diagnostics: bag.All()}
	}
	bag := &diag.Bag{}
	var parts []string
	for _, rec := range records {
		if cancelled(opts) {
			break
		}
		code := c.CompileRecord(filename, rec, bag, opts)
		parts = append(parts, code)
	}
	code := strings.Join(dedupeRuntimeImport(parts), "\n")
	if bag.HasErrors() {
		code = errorCode(firstError(bag).Message)
	}
	return Result{Filename: filename, Code: code, Diagnostics: bag.All()}
}

// CompileBatch compiles files concurrently; each compilation is isolated,
// so fan-out is a plain worker-per-file spread.
func (c *Compiler) CompileBatch(files []File) []Result {
	results := make([]Result, len(files))
	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(i int, f File) {
			defer wg.Done()
			results[i] = c.Compile(f.Filename, f.Content)
		}(i, f)
	}
	wg.Wait()
	return results
}

// CompileRecord runs the core pipeline for a single component record and
// returns its emitted JavaScript. Diagnostics land in bag; an internal
// panic is caught and reported as an internal-compiler-error diagnostic;
// the compiler never lets one escape across the API boundary.
func (c *Compiler) CompileRecord(filename string, rec *component.Record, bag *diag.Bag, opts Options) (code string) {
	defer func() {
		if r := recover(); r != nil {
			bag.Errorf(diag.CodeInternalInvariant, diag.Internal, span.Span{File: filename}, "internal compiler error: %v", r)
			code = ""
		}
	}()
	comp, err := c.BuildComponent(filename, rec, bag, opts)
	if err != nil || comp == nil {
		return ""
	}
	out, err := codegen.NewEmitter().Emit(comp)
	if err != nil {
		bag.Errorf(diag.CodeInternalInvariant, diag.Internal, span.Span{File: filename}, "emit failed: %v", err)
		return ""
	}
	return string(out)
}

// BuildComponent runs parse + IR build + phases for one record and
// returns the emitter-ready bundle. The partial-declaration linker shares
// this front-to-middle path.
func (c *Compiler) BuildComponent(filename string, rec *component.Record, bag *diag.Bag, opts Options) (*codegen.Component, error) {
	comp := &codegen.Component{Record: rec}

	if rec.Kind != component.KindPipe {
		tpl, parseBag := template.Parse(filename, rec.Template, rec.PreserveWhitespaces)
		bag.Extend(parseBag)
		if cancelled(opts) {
			return nil, nil
		}
		b := phases.NewBuilder(rec.ClassName, bag)
		root := b.Build(tpl)
		if cancelled(opts) {
			return nil, nil
		}
		pool := ir.NewConstPool()
		fns := &phases.PureFunctionPool{}
		reg := &phases.PipeRegistry{Pure: rec.PipePurity()}
		phases.NewPipeline(b, reg, pool, fns, bag).Run(root)
		comp.Root = root
		comp.Pool = pool
		comp.Fns = fns.Fns
		comp.Tags = b.TagNames()
	}
	if cancelled(opts) {
		return nil, nil
	}

	if rec.Kind == component.KindDirective && (len(rec.HostBindings) > 0 || len(rec.HostListeners) > 0) {
		comp.Host = buildHost(filename, rec, bag)
	}

	if rec.Kind == component.KindComponent {
		comp.Styles = scopeStyles(rec)
	}
	return comp, nil
}

func cancelled(opts Options) bool {
	return opts.Cancelled != nil && opts.Cancelled()
}

// buildHost lowers a directive's host metadata into a miniature template
// IR: property/attribute/style/class bindings become update ops against
// the host slot, host listeners become HostListener update ops. Only the
// resolve-names phase applies; host expressions read the directive
// instance directly.
func buildHost(filename string, rec *component.Record, bag *diag.Bag) *ir.TemplateIR {
	host := &ir.TemplateIR{Name: rec.ClassName + "_HostBindings"}
	for _, hb := range rec.HostBindings {
		p, exprBag := expr.New(filename, hb.Expr, false)
		bag.Extend(exprBag)
		e := p.Parse()
		switch {
		case strings.HasPrefix(hb.Target, "attr."):
			host.Update = append(host.Update, ir.Attribute{Name: strings.TrimPrefix(hb.Target, "attr."), Expr: e})
		case strings.HasPrefix(hb.Target, "class."):
			host.Update = append(host.Update, ir.ClassProp{Name: strings.TrimPrefix(hb.Target, "class."), Expr: e})
		case strings.HasPrefix(hb.Target, "style."):
			host.Update = append(host.Update, ir.StyleProp{Name: strings.TrimPrefix(hb.Target, "style."), Expr: e})
		default:
			host.Update = append(host.Update, ir.Property{Name: hb.Target, Expr: e})
		}
	}
	for _, hl := range rec.HostListeners {
		p, exprBag := expr.New(filename, hl.Handler, false)
		bag.Extend(exprBag)
		host.Update = append(host.Update, ir.HostListener{Event: hl.Event, Handler: p.ParseChain()})
	}
	phases.ResolveNames(host)
	return host
}

// scopeStyles runs the emulated-encapsulation transform over each style
// sheet; None passes them through untouched.
func scopeStyles(rec *component.Record) []string {
	if len(rec.Styles) == 0 {
		return nil
	}
	out := make([]string, len(rec.Styles))
	if rec.Encapsulation == component.EncapsulationNone {
		copy(out, rec.Styles)
		return out
	}
	sc := style.NewScoper()
	for i, s := range rec.Styles {
		out[i] = sc.Scope(s)
	}
	return out
}

// dedupeRuntimeImport keeps only the first emitted runtime import when a
// file declares several classes; the emitter injects one per class since
// it never sees more than one at a time.
func dedupeRuntimeImport(parts []string) []string {
	const header = "import * as i0 from \"@angular/core\";\n\n"
	seen := false
	for i, p := range parts {
		if !strings.HasPrefix(p, header) {
			continue
		}
		if seen {
			parts[i] = strings.TrimPrefix(p, header)
		}
		seen = true
	}
	return parts
}

func errorCode(msg string) string {
	return fmt.Sprintf("/* Error: %s */", strings.ReplaceAll(msg, "*/", "*\\/"))
}

func firstError(bag *diag.Bag) *diag.Diagnostic {
	for _, d := range bag.All() {
		if d.Category == diag.Error {
			return d
		}
	}
	return &diag.Diagnostic{Message: "unknown error"}
}
