package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/russross/blackfriday/v2"
	"github.com/urfave/cli/v2"

	"github.com/gaarutyunov/facet/pkg/diag"
)

func explainCommand() *cli.Command {
	return &cli.Command{
		Name:      "explain",
		Usage:     "print the documentation behind a diagnostic code",
		ArgsUsage: "<code>  (e.g. FT8103 or 8103)",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "man", Usage: "emit roff man-page source instead of terminal text"},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 1 {
				return fmt.Errorf("explain: exactly one diagnostic code expected")
			}
			code, err := parseCode(ctx.Args().First())
			if err != nil {
				return err
			}
			doc, ok := diagnosticDocs[code]
			if !ok {
				return fmt.Errorf("no documentation for diagnostic %d", code)
			}
			if ctx.Bool("man") {
				os.Stdout.Write(md2man.Render([]byte(doc)))
				return nil
			}
			os.Stdout.WriteString(renderMarkdown(doc))
			return nil
		},
	}
}

func parseCode(s string) (int, error) {
	s = strings.TrimPrefix(strings.ToUpper(s), "FT")
	code, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("explain: %q is not a diagnostic code", s)
	}
	return code, nil
}

// renderMarkdown flattens a Markdown document to terminal text: headings
// end with a newline, code spans keep their backticks, code blocks are
// indented four spaces, paragraphs are separated by blank lines.
func renderMarkdown(doc string) string {
	parser := blackfriday.New(blackfriday.WithExtensions(blackfriday.CommonExtensions))
	root := parser.Parse([]byte(doc))
	var b strings.Builder
	root.Walk(func(node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		switch node.Type {
		case blackfriday.Heading:
			if !entering {
				b.WriteString("\n")
			}
		case blackfriday.Paragraph:
			if !entering {
				b.WriteString("\n\n")
			}
		case blackfriday.Text:
			b.Write(node.Literal)
		case blackfriday.Code:
			b.WriteString("`")
			b.Write(node.Literal)
			b.WriteString("`")
		case blackfriday.CodeBlock:
			for _, line := range strings.Split(strings.TrimRight(string(node.Literal), "\n"), "\n") {
				b.WriteString("    " + line + "\n")
			}
			b.WriteString("\n")
		case blackfriday.Item:
			if entering {
				b.WriteString("  - ")
			}
		}
		return blackfriday.GoToNext
	})
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// diagnosticDocs holds the prose behind each stable diagnostic code the
// compiler can report.
var diagnosticDocs = map[int]string{
	diag.CodeUnexpectedToken: `# FT8100: unexpected token

The lexer or expression parser hit a token it could not fit into the
grammar at that position. The surrounding construct is replaced with an
empty placeholder and compilation continues, so later diagnostics in the
same file are still meaningful.`,

	diag.CodeUnterminatedTag: `# FT8101: unterminated tag

A tag, close tag, comment, or control-flow block header reached the end
of the template before it was closed. Lexing and parsing keep going.`,

	diag.CodeUnterminatedAttr: `# FT8102: unterminated attribute value

A quoted attribute value was not closed before the end of its tag.`,

	diag.CodeForMissingTrack: "# FT8103: @for requires track\n\n" +
		"Every `@for` block must declare a `track` expression so the runtime\n" +
		"can key rows across re-renders:\n\n" +
		"    @for (item of items; track item.id) { ... }\n\n" +
		"Tracking by identity (`track item`) is valid but re-creates DOM for\n" +
		"every new object instance.",

	diag.CodeDuplicateReference: `# FT8104: duplicate template reference

Two ` + "`#name`" + ` references with the same name were declared in the same
template scope. Each reference name must be unique within its enclosing
template.`,

	diag.CodeContentOutsideComp: `# FT8105: ng-content outside a component

Projection slots only make sense inside a component's template.`,

	diag.CodeInvalidTwoWayTarget: "# FT8106: invalid two-way binding target\n\n" +
		"The expression inside `[(x)]=\"e\"` must be assignable: a property\n" +
		"read or a keyed read. Calls, literals, and operators cannot receive\n" +
		"the write-back.",

	diag.CodeUnresolvedIdentifier: `# FT8107: unresolved identifier

A name used in a binding matched no template variable, @let declaration,
or context variable, and is assumed to be a component member. If the
component has no such member the emitted code reads ` + "`undefined`" + `.`,

	diag.CodeUnknownPipe: `# FT8108: unknown pipe

A pipe name was not found among the component's pipe dependencies. The
compiler assumes the pipe is pure, which shares one pipe instance across
identical uses; an impure pipe misdeclared this way will appear to skip
updates.`,

	diag.CodeMismatchedThenElse: `# FT8109: mismatched then/else template

A conditional referenced a then/else template that does not exist in the
surrounding scope.`,

	diag.CodeUnsupportedInputShape: `# FT8110: unsupported input shape

An input declaration used a metadata form the compiler does not accept.`,

	diag.CodeInternalInvariant: `# FT8111: internal compiler error

An IR invariant was violated. This is a bug in the compiler, not in the
template; please report it with the template that triggered it.`,

	diag.CodeEmptyExpression: `# FT8112: empty binding expression

A binding position contained no expression. The binding is compiled as a
no-op.`,

	diag.CodeUnusedDependency: `# FT8113: unused dependency

A class listed in the component's dependencies matched nothing in the
template: no element matched a directive selector and no pipe name was
used. The dependency is still emitted, but it usually indicates a stale
import.`,

	diag.CodeUnknownDirective: `# FT8114: unknown directive

A control-flow block keyword appeared where no block of that kind can
start, such as an ` + "`@case`" + ` outside ` + "`@switch`" + ` or an ` + "`@empty`" + ` outside ` + "`@for`" + `.
The block is parsed and dropped.`,

	diag.CodeInvalidMicrosyntax: "# FT8115: invalid microsyntax\n\n" +
		"A control-flow header or declaration did not follow its grammar: an\n" +
		"`@for` header without an `item of items` clause, or an `@let`\n" +
		"without `name = value`.",
}
