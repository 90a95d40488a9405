// Package driver orchestrates file I/O around the core compiler: it
// reads project sources, fans them into CompileBatch, writes outputs
// (retrying transient failures), and renders diagnostics to the
// terminal. The core never touches the filesystem itself; anything that
// blocks on I/O lives here.
package driver

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/jpillora/backoff"

	"github.com/gaarutyunov/facet/internal/cache"
	"github.com/gaarutyunov/facet/pkg/compiler"
	"github.com/gaarutyunov/facet/pkg/diag"
)

var (
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	posStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	spanStyle = lipgloss.NewStyle().Underline(true)
)

// Driver runs project builds. Each Driver gets its own build id in New so
// verbose logs from parallel invocations stay attributable.
type Driver struct {
	Verbose bool
	buildID string
	c       *compiler.Compiler
}

// New creates a driver over a fresh compiler handle.
func New(verbose bool) *Driver {
	return &Driver{Verbose: verbose, buildID: uuid.NewString(), c: compiler.New()}
}

// BuildID returns this driver's per-invocation id.
func (d *Driver) BuildID() string { return d.buildID }

// Run compiles every file in the project and writes the outputs. It
// returns an error when any file produced an error-category diagnostic,
// after all files have been attempted.
func (d *Driver) Run(p *compiler.Project) error {
	start := time.Now()
	if d.Verbose {
		log.Printf("[%s] building %d file(s)", d.buildID, len(p.Files))
	}

	var store *cache.Cache
	if p.CompilerOptions.Cache {
		loaded, err := cache.Load(filepath.Join(p.Dir, ".facetcache.json"))
		if err != nil {
			return err
		}
		store = loaded
	}

	var inputs []compiler.File
	var skipped int
	for _, name := range p.Files {
		path := p.Resolve(name)
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if store != nil && !store.NeedsRegeneration(path, content) {
			skipped++
			continue
		}
		inputs = append(inputs, compiler.File{Filename: path, Content: string(content)})
	}
	if d.Verbose && skipped > 0 {
		log.Printf("[%s] %d file(s) unchanged, skipped", d.buildID, skipped)
	}

	results := d.c.CompileBatch(inputs)
	failed := 0
	for i, res := range results {
		d.PrintDiagnostics(inputs[i].Content, res)
		if hasErrors(res.Diagnostics) {
			failed++
			continue
		}
		outPath := p.OutPath(res.Filename)
		if err := d.WriteOutput(outPath, []byte(res.Code)); err != nil {
			return err
		}
		if store != nil {
			store.UpdateHash(res.Filename, []byte(inputs[i].Content))
		}
		if d.Verbose {
			log.Printf("[%s] %s -> %s", d.buildID, res.Filename, outPath)
		}
	}

	if store != nil {
		if err := store.Save(); err != nil {
			return err
		}
	}
	log.Printf("compiled %d file(s) in %s (%d failed)", len(inputs), time.Since(start).Round(time.Millisecond), failed)
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to compile", failed)
	}
	return nil
}

// WriteOutput writes data to path, retrying transient failures with
// exponential backoff before giving up.
func (d *Driver) WriteOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	b := &backoff.Backoff{Min: 10 * time.Millisecond, Max: 500 * time.Millisecond, Factor: 2, Jitter: true}
	var err error
	for attempt := 0; attempt < 4; attempt++ {
		if err = os.WriteFile(path, data, 0644); err == nil {
			return nil
		}
		time.Sleep(b.Duration())
	}
	return fmt.Errorf("write %s: %w", path, err)
}

func hasErrors(diags []*diag.Diagnostic) bool {
	for _, d := range diags {
		if d.Category == diag.Error {
			return true
		}
	}
	return false
}

// PrintDiagnostics renders every diagnostic of a result with its source
// line, the offending span underlined.
func (d *Driver) PrintDiagnostics(source string, res compiler.Result) {
	for _, dg := range res.Diagnostics {
		fmt.Fprintln(os.Stderr, RenderDiagnostic(source, dg))
	}
}

// RenderDiagnostic formats one diagnostic for the terminal:
//
//	error FT8103: @for requires a track expression
//	  app.html:3:12
//	  @for (item of items) {
//
// The diagnostic's span is underlined in place on the source line.
func RenderDiagnostic(source string, dg *diag.Diagnostic) string {
	style := warnStyle
	if dg.Category == diag.Error {
		style = errStyle
	}
	var b strings.Builder
	b.WriteString(style.Render(fmt.Sprintf("%s FT%d", dg.Category, dg.Code)))
	b.WriteString(": ")
	b.WriteString(dg.Message)
	if dg.Span.File != "" {
		b.WriteString("\n  ")
		b.WriteString(posStyle.Render(fmt.Sprintf("%s:%d:%d", dg.Span.File, dg.Span.Line, dg.Span.Col)))
	}
	line, startCol, length := sourceLine(source, dg.Span.Start, dg.Span.Len())
	if line != "" {
		b.WriteString("\n  ")
		end := startCol + length
		if end > len(line) {
			end = len(line)
		}
		b.WriteString(line[:startCol])
		b.WriteString(spanStyle.Render(line[startCol:end]))
		b.WriteString(line[end:])
	}
	return b.String()
}

// sourceLine extracts the line containing byte offset start, plus the
// span's column and clamped length within that line.
func sourceLine(source string, start, length int) (string, int, int) {
	if start < 0 || start > len(source) {
		return "", 0, 0
	}
	lineStart := strings.LastIndexByte(source[:start], '\n') + 1
	lineEnd := strings.IndexByte(source[start:], '\n')
	if lineEnd < 0 {
		lineEnd = len(source)
	} else {
		lineEnd += start
	}
	line := source[lineStart:lineEnd]
	col := start - lineStart
	if length < 1 {
		length = 1
	}
	if col+length > len(line) {
		length = len(line) - col
		if length < 0 {
			length = 0
		}
	}
	return line, col, length
}
