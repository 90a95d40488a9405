// Package diag defines the diagnostic model used across every pass of the
// compiler: lexer, expression parser, template parser, IR phases, and
// emitter all append to a shared Bag instead of returning Go errors, so a
// single malformed template never aborts compilation of the rest of it.
package diag

import (
	"fmt"
	"sort"

	"github.com/gaarutyunov/facet/pkg/span"
	"github.com/xrash/smetrics"
)

// Category distinguishes fatal from non-fatal diagnostics. A single Error
// diagnostic aborts emission for the file it belongs to; Warning
// diagnostics accumulate and never block output.
type Category int

const (
	Warning Category = iota
	Error
)

func (c Category) String() string {
	if c == Error {
		return "error"
	}
	return "warning"
}

// Kind classifies a diagnostic: Syntax, Structural, Semantic, Internal.
type Kind int

const (
	Syntax Kind = iota
	Structural
	Semantic
	Internal
)

// Diagnostic is one reported problem, carrying a stable numeric code.
type Diagnostic struct {
	Code     int
	Kind     Kind
	Category Category
	Message  string
	Span     span.Span
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s(%d) %s:%d:%d: %s", d.Category, d.Code, d.Span.File, d.Span.Line, d.Span.Col, d.Message)
}

// Bag collects diagnostics in report order: insertion order, never sorted
// or deduplicated implicitly.
type Bag struct {
	items []*Diagnostic
}

// Add appends a diagnostic and returns it, so call sites can do
// `d := bag.Add(...); d.Span = x` style fix-ups if needed.
func (b *Bag) Add(code int, kind Kind, cat Category, sp span.Span, format string, args ...interface{}) *Diagnostic {
	d := &Diagnostic{
		Code:     code,
		Kind:     kind,
		Category: cat,
		Message:  fmt.Sprintf(format, args...),
		Span:     sp,
	}
	b.items = append(b.items, d)
	return d
}

// Errorf is shorthand for Add(..., Error, ...).
func (b *Bag) Errorf(code int, kind Kind, sp span.Span, format string, args ...interface{}) *Diagnostic {
	return b.Add(code, kind, Error, sp, format, args...)
}

// Warnf is shorthand for Add(..., Warning, ...).
func (b *Bag) Warnf(code int, kind Kind, sp span.Span, format string, args ...interface{}) *Diagnostic {
	return b.Add(code, kind, Warning, sp, format, args...)
}

// Extend appends every diagnostic from other onto b, preserving order. Used
// when a sub-template's diagnostics need folding into the parent's bag.
func (b *Bag) Extend(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}

// All returns every diagnostic in report order.
func (b *Bag) All() []*Diagnostic {
	return b.items
}

// HasErrors reports whether any Error-category diagnostic was recorded.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Category == Error {
			return true
		}
	}
	return false
}

// Len reports the number of diagnostics recorded so far.
func (b *Bag) Len() int {
	return len(b.items)
}

// Suggest ranks candidates by Jaro-Winkler similarity to name and returns the
// closest match, or "" if candidates is empty or nothing is close enough.
// Used for "unknown pipe 'x', did you mean 'y'?" diagnostics (pipe
// allocation).
func Suggest(name string, candidates []string) string {
	const threshold = 0.7
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		score := smetrics.JaroWinkler(name, c, 0.7, 4)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if bestScore < threshold {
		return ""
	}
	return best
}

// SortedCandidates is a small helper so callers that pull candidate names
// out of an insertion-ordered map (inputs/outputs/pipes) can still hand
// Suggest a deterministic slice without caring about map iteration order.
func SortedCandidates(names map[string]bool) []string {
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Diagnostic codes, numbered in the 8000s band and grouped by the phase
// that raises them. See cmd/ngc's `explain` subcommand for the prose
// behind each code.
const (
	CodeUnexpectedToken       = 8100
	CodeUnterminatedTag       = 8101
	CodeUnterminatedAttr      = 8102
	CodeForMissingTrack       = 8103
	CodeDuplicateReference    = 8104
	CodeContentOutsideComp    = 8105
	CodeInvalidTwoWayTarget   = 8106
	CodeUnresolvedIdentifier  = 8107
	CodeUnknownPipe           = 8108
	CodeMismatchedThenElse    = 8109
	CodeUnsupportedInputShape = 8110
	CodeInternalInvariant     = 8111
	CodeEmptyExpression       = 8112
	CodeUnusedDependency      = 8113
	CodeUnknownDirective      = 8114
	CodeInvalidMicrosyntax    = 8115
)
