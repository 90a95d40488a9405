// Package linker rewrites pre-compiled library files: every
// ɵɵngDeclareComponent(...) call is converted back into a component
// record, run through the same IR builder, phases, and emitter as the
// primary compiler, and replaced by the concrete ɵɵdefineComponent(...)
// expression.
package linker

import (
	"fmt"
	"strings"

	"github.com/gaarutyunov/facet/pkg/codegen"
	"github.com/gaarutyunov/facet/pkg/compiler"
	"github.com/gaarutyunov/facet/pkg/decorator"
	"github.com/gaarutyunov/facet/pkg/diag"
)

const declareMarker = "ɵɵngDeclareComponent("

// Linker links partial declarations using a shared compiler handle.
type Linker struct {
	c *compiler.Compiler
}

// New returns a linker over a fresh compiler.
func New() *Linker { return &Linker{c: compiler.New()} }

// LinkFile substitutes every partial declaration in source and returns
// the rewritten file. On failure it returns a string beginning with
// `/* Linker Error` instead of partial output.
func (l *Linker) LinkFile(filename, source string) string {
	var hoistedAll []string
	var out strings.Builder
	rest := source
	for {
		idx := strings.Index(rest, declareMarker)
		if idx < 0 {
			out.WriteString(rest)
			break
		}
		// the call may be namespaced (i0.ɵɵngDeclareComponent); drop the
		// alias along with the call itself
		callStart := idx
		for callStart > 0 && isAliasChar(rest[callStart-1]) {
			callStart--
		}
		argStart := idx + len(declareMarker)
		argEnd := matchCallParen(rest, argStart)
		if argEnd < 0 {
			return linkerError(filename, "unterminated ɵɵngDeclareComponent call")
		}
		rec, err := decorator.ParseDeclaration([]byte(rest[argStart:argEnd]))
		if err != nil {
			return linkerError(filename, err.Error())
		}
		bag := &diag.Bag{}
		comp, err := l.c.BuildComponent(filename, rec, bag, compiler.Options{})
		if err != nil {
			return linkerError(filename, err.Error())
		}
		if bag.HasErrors() {
			return linkerError(filename, bag.All()[0].Message)
		}
		hoisted, def, err := codegen.NewEmitter().EmitDefinition(comp)
		if err != nil {
			return linkerError(filename, err.Error())
		}
		if hoisted != "" {
			hoistedAll = append(hoistedAll, hoisted)
		}
		out.WriteString(rest[:callStart])
		out.WriteString(def)
		rest = rest[argEnd+1:]
	}
	if len(hoistedAll) == 0 {
		return out.String()
	}
	return strings.Join(hoistedAll, "") + out.String()
}

func isAliasChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '$' || c == '.'
}

// matchCallParen returns the index of the `)` closing the call whose
// argument list starts at start (just past the opening paren), skipping
// strings so braces and parens inside declaration values don't count.
func matchCallParen(s string, start int) int {
	depth := 1
	var quote byte
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func linkerError(filename, msg string) string {
	return fmt.Sprintf("/* Linker Error in %s: %s */", filename, strings.ReplaceAll(msg, "*/", "*\\/"))
}
