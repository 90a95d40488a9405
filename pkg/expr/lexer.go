package expr

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// tokenDef is the stateful lexer for expression fragments: a lexer.Rules
// table with named states and explicit Push/Pop transitions.
// "Root" tokenizes ordinary expression syntax; "TemplateLiteral" and
// "TemplateLiteralExpr" handle backtick strings with `${...}` holes.
var tokenDef = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Keyword", Pattern: `\b(true|false|null|undefined|this|as)\b`},
		{Name: "Ident", Pattern: `[$_a-zA-Z][$_a-zA-Z0-9]*`},
		{Name: "Number", Pattern: `\d+(\.\d+)?([eE][+-]?\d+)?`},
		{Name: "String", Pattern: `'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"`},
		{Name: "Backtick", Pattern: "`", Action: lexer.Push("TemplateLiteral")},
		{Name: "Op", Pattern: `(\?\.|\?\?|===|!==|==|!=|<=|>=|&&|\|\||=>|\.\.\.|[-+*/%<>!?:.,;()\[\]{}|=])`},
	},
	"TemplateLiteral": {
		{Name: "BacktickEnd", Pattern: "`", Action: lexer.Pop()},
		{Name: "TemplateExprStart", Pattern: `\$\{`, Action: lexer.Push("TemplateLiteralExpr")},
		{Name: "TemplateText", Pattern: "(?:\\\\.|[^`$])+|\\$"},
	},
	"TemplateLiteralExpr": {
		{Name: "TemplateExprEnd", Pattern: `\}`, Action: lexer.Pop()},
		lexer.Include("Root"),
	},
})

// tokens lexes an entire fragment eagerly into a slice; expression
// fragments are short (one binding at a time) so there is no benefit to
// streaming, and the parser needs unlimited lookahead/backtracking for the
// postfix chains (member/call/index/safe-nav) anyway.
func tokens(filename, source string) ([]lexer.Token, error) {
	lx, err := tokenDef.LexString(filename, source)
	if err != nil {
		return nil, err
	}
	var out []lexer.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return out, err
		}
		if tok.EOF() {
			out = append(out, tok)
			return out, nil
		}
		if tok.Type == tokenDef.Symbols()["Whitespace"] {
			continue
		}
		out = append(out, tok)
	}
}

func symbol(name string) lexer.TokenType {
	return tokenDef.Symbols()[name]
}
