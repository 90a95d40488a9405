// Package span defines the source-location type shared by every AST in the
// compiler: expression nodes, template nodes, and IR ops all carry a Span.
package span

import "github.com/alecthomas/participle/v2/lexer"

// Span identifies a byte range in a single source file. Start and End are
// zero-based UTF-8 byte offsets; Line and Col describe the position of
// Start only, matching what a diagnostic needs to point a human at.
//
// Invariant: Start <= End <= len(source).
type Span struct {
	File  string
	Start int
	End   int
	Line  int
	Col   int
}

// FromPosition builds a Span from a participle lexer.Position (the start)
// and an explicit end offset. Every lexer in this module hands back
// lexer.Position for token starts, so this is the one conversion point.
func FromPosition(pos lexer.Position, end int) Span {
	return Span{
		File:  pos.Filename,
		Start: pos.Offset,
		End:   end,
		Line:  pos.Line,
		Col:   pos.Column,
	}
}

// Pos converts the span's start back into a lexer.Position, for call sites
// that still need to hand a Position to participle-based tooling.
func (s Span) Pos() lexer.Position {
	return lexer.Position{
		Filename: s.File,
		Offset:   s.Start,
		Line:     s.Line,
		Column:   s.Col,
	}
}

// Len reports the byte length of the span.
func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Join returns the smallest span covering both a and b. Both must be in the
// same file; Join panics otherwise since it indicates a compiler bug, not a
// user-facing error.
func Join(a, b Span) Span {
	if a.File != b.File {
		panic("span: Join across different files: " + a.File + " vs " + b.File)
	}
	start, end := a, b
	if b.Start < a.Start {
		start, end = b, a
	}
	merged := start
	if end.End > merged.End {
		merged.End = end.End
	}
	return merged
}

// Zero reports whether the span carries no location information at all,
// which happens for synthetic nodes the emitter invents (e.g. a hoisted
// pure-function constant has no single source span).
func (s Span) Zero() bool {
	return s.File == "" && s.Start == 0 && s.End == 0
}
