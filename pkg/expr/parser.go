package expr

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/gaarutyunov/facet/pkg/diag"
	"github.com/gaarutyunov/facet/pkg/span"
)

// Parser is a hand-written precedence-climbing (Pratt) parser over the
// token stream produced by the stateful lexer in lexer.go. Expression
// fragments need per-token error recovery that a struct-tag PEG grammar
// doesn't give us, so only tokenization goes through participle and the
// parse functions are hand-rolled.
type Parser struct {
	file       string
	toks       []lexer.Token
	pos        int
	allowPipes bool
	parenDepth int
	bag        *diag.Bag
}

// New builds a parser over a single expression fragment. allowPipes is
// true for interpolations and property bindings, false for event-handler
// bodies, two-way targets, and pipe arguments.
func New(file, source string, allowPipes bool) (*Parser, *diag.Bag) {
	bag := &diag.Bag{}
	toks, err := tokens(file, source)
	if err != nil {
		bag.Errorf(diag.CodeUnexpectedToken, diag.Syntax, span.Span{File: file}, "could not tokenize expression: %v", err)
	}
	return &Parser{file: file, toks: toks, allowPipes: allowPipes, bag: bag}, bag
}

// Parse parses one binding-position expression (interpolation hole, input
// binding value, structural-directive KEY expression). On an unrecoverable
// token it returns an Empty node and leaves a diagnostic in the bag handed
// back from New.
func (p *Parser) Parse() (node Node) {
	defer func() {
		if r := recover(); r != nil {
			p.bag.Errorf(diag.CodeInternalInvariant, diag.Internal, p.here(), "internal error parsing expression: %v", r)
			node = &Empty{base{Pos: p.here()}}
		}
	}()
	if len(p.toks) == 0 || p.peek().EOF() {
		return &Empty{base{Pos: p.here()}}
	}
	n := p.parsePipe()
	if !p.peek().EOF() {
		p.bag.Errorf(diag.CodeUnexpectedToken, diag.Syntax, p.here(), "unexpected trailing token %q", p.peek().Value)
	}
	return n
}

// ParseChain parses a `;`-separated handler body; every statement
// executes but only the last expression's value is the handler's result.
func (p *Parser) ParseChain() Node {
	start := p.here()
	var exprs []Node
	exprs = append(exprs, p.parsePipe())
	for p.at("Op", ";") {
		p.next()
		if p.peek().EOF() {
			break
		}
		exprs = append(exprs, p.parsePipe())
	}
	if !p.peek().EOF() {
		p.bag.Errorf(diag.CodeUnexpectedToken, diag.Syntax, p.here(), "unexpected trailing token %q", p.peek().Value)
	}
	if len(exprs) == 1 {
		return exprs[0]
	}
	return &Chain{base{Pos: span.Join(start, exprs[len(exprs)-1].Span())}, exprs}
}

// --- token cursor helpers ---

func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.toks) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(off int) lexer.Token {
	idx := p.pos + off
	if idx >= len(p.toks) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.toks[idx]
}

func (p *Parser) next() lexer.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) at(typeName, value string) bool {
	t := p.peek()
	return t.Type == symbol(typeName) && t.Value == value
}

func (p *Parser) atAny(typeName string, values ...string) bool {
	t := p.peek()
	if t.Type != symbol(typeName) {
		return false
	}
	for _, v := range values {
		if t.Value == v {
			return true
		}
	}
	return false
}

func (p *Parser) here() span.Span {
	t := p.peek()
	if t.EOF() && p.pos > 0 {
		t = p.toks[p.pos-1]
	}
	return span.FromPosition(t.Pos, t.Pos.Offset+len(t.Value))
}

func (p *Parser) expect(typeName, value string) bool {
	if p.at(typeName, value) {
		p.next()
		return true
	}
	p.bag.Errorf(diag.CodeUnexpectedToken, diag.Syntax, p.here(), "expected %q, found %q", value, p.peek().Value)
	return false
}

// --- precedence ladder (high to low) ---
// primary -> postfix -> prefix -> multiplicative -> additive -> relational
// -> equality -> logical-and -> logical-or -> nullish -> conditional -> pipe

func (p *Parser) parsePipe() Node {
	left := p.parseConditional()
	if p.parenDepth > 0 || !p.allowPipes {
		return left
	}
	for p.at("Op", "|") {
		start := left.Span()
		p.next()
		if p.peek().Type != symbol("Ident") {
			p.bag.Errorf(diag.CodeUnexpectedToken, diag.Syntax, p.here(), "expected pipe name")
			return left
		}
		name := p.next().Value
		var args []Node
		for p.at("Op", ":") {
			p.next()
			args = append(args, p.parseConditional())
		}
		left = &PipeUse{base{Pos: span.Join(start, p.here())}, left, name, args}
	}
	return left
}

func (p *Parser) parseConditional() Node {
	cond := p.parseNullish()
	if p.at("Op", "?") && !p.at("Op", "?.") {
		p.next()
		thenE := p.parsePipeNoTop()
		p.expect("Op", ":")
		elseE := p.parsePipeNoTop()
		return &Conditional{base{Pos: span.Join(cond.Span(), elseE.Span())}, cond, thenE, elseE}
	}
	return cond
}

// parsePipeNoTop parses the branches of a ternary with the conditional
// grammar. A `|` inside a branch is not parsed as a pipe: it ends the
// branch.
func (p *Parser) parsePipeNoTop() Node {
	return p.parseConditional()
}

func (p *Parser) parseNullish() Node {
	left := p.parseLogicalOr()
	for p.at("Op", "??") {
		p.next()
		right := p.parseLogicalOr()
		left = &NullishCoalesce{base{Pos: span.Join(left.Span(), right.Span())}, left, right}
	}
	return left
}

func (p *Parser) parseLogicalOr() Node {
	left := p.parseLogicalAnd()
	for p.at("Op", "||") {
		p.next()
		right := p.parseLogicalAnd()
		left = &Binary{base{Pos: span.Join(left.Span(), right.Span())}, "||", left, right}
	}
	return left
}

func (p *Parser) parseLogicalAnd() Node {
	left := p.parseEquality()
	for p.at("Op", "&&") {
		p.next()
		right := p.parseEquality()
		left = &Binary{base{Pos: span.Join(left.Span(), right.Span())}, "&&", left, right}
	}
	return left
}

func (p *Parser) parseEquality() Node {
	left := p.parseRelational()
	for p.atAny("Op", "==", "!=", "===", "!==") {
		op := p.next().Value
		right := p.parseRelational()
		left = &Binary{base{Pos: span.Join(left.Span(), right.Span())}, op, left, right}
	}
	return left
}

func (p *Parser) parseRelational() Node {
	left := p.parseAdditive()
	for p.atAny("Op", "<", ">", "<=", ">=") {
		op := p.next().Value
		right := p.parseAdditive()
		left = &Binary{base{Pos: span.Join(left.Span(), right.Span())}, op, left, right}
	}
	return left
}

func (p *Parser) parseAdditive() Node {
	left := p.parseMultiplicative()
	for p.atAny("Op", "+", "-") {
		op := p.next().Value
		right := p.parseMultiplicative()
		left = &Binary{base{Pos: span.Join(left.Span(), right.Span())}, op, left, right}
	}
	return left
}

func (p *Parser) parseMultiplicative() Node {
	left := p.parsePrefix()
	for p.atAny("Op", "*", "/", "%") {
		op := p.next().Value
		right := p.parsePrefix()
		left = &Binary{base{Pos: span.Join(left.Span(), right.Span())}, op, left, right}
	}
	return left
}

func (p *Parser) parsePrefix() Node {
	if p.atAny("Op", "!", "-", "+") {
		start := p.here()
		op := p.next().Value
		operand := p.parsePrefix()
		return &Prefix{base{Pos: span.Join(start, operand.Span())}, op, operand}
	}
	return p.parseTypeGuard()
}

func (p *Parser) parseTypeGuard() Node {
	n := p.parsePostfix()
	if p.at("Keyword", "as") {
		p.next()
		if p.peek().Type == symbol("Ident") {
			typeName := p.next().Value
			return &TypeGuard{base{Pos: span.Join(n.Span(), p.here())}, n, typeName}
		}
		p.bag.Errorf(diag.CodeUnexpectedToken, diag.Syntax, p.here(), "expected type name after 'as'")
	}
	return n
}

func (p *Parser) parsePostfix() Node {
	n := p.parsePrimary()
	for {
		switch {
		case p.at("Op", "."):
			p.next()
			if p.peek().Type != symbol("Ident") {
				p.bag.Errorf(diag.CodeUnexpectedToken, diag.Syntax, p.here(), "expected property name after '.'")
				return n
			}
			name := p.next().Value
			if p.at("Op", "(") {
				args := p.parseArgs()
				n = &MethodCall{base{Pos: span.Join(n.Span(), p.here())}, n, name, args, false}
			} else {
				n = &PropertyRead{base{Pos: span.Join(n.Span(), p.here())}, n, name}
			}
		case p.at("Op", "?."):
			p.next()
			if p.at("Op", "(") {
				args := p.parseArgs()
				n = &SafeCall{base{Pos: span.Join(n.Span(), p.here())}, n, args}
				continue
			}
			if p.peek().Type != symbol("Ident") {
				p.bag.Errorf(diag.CodeUnexpectedToken, diag.Syntax, p.here(), "expected property name after '?.'")
				return n
			}
			name := p.next().Value
			if p.at("Op", "(") {
				args := p.parseArgs()
				n = &MethodCall{base{Pos: span.Join(n.Span(), p.here())}, n, name, args, true}
			} else {
				n = &SafePropertyRead{base{Pos: span.Join(n.Span(), p.here())}, n, name}
			}
		case p.at("Op", "["):
			p.next()
			key := p.parsePipe()
			p.expect("Op", "]")
			n = &KeyedRead{base{Pos: span.Join(n.Span(), p.here())}, n, key}
		case p.at("Op", "("):
			args := p.parseArgs()
			n = &Call{base{Pos: span.Join(n.Span(), p.here())}, n, args}
		default:
			return n
		}
	}
}

func (p *Parser) parseArgs() []Node {
	p.expect("Op", "(")
	var args []Node
	p.parenDepth++
	for !p.at("Op", ")") && !p.peek().EOF() {
		args = append(args, p.parseConditional())
		if p.at("Op", ",") {
			p.next()
			continue
		}
		break
	}
	p.parenDepth--
	p.expect("Op", ")")
	return args
}

func (p *Parser) parsePrimary() Node {
	t := p.peek()
	switch {
	case t.Type == symbol("Number"):
		p.next()
		return &Literal{base{Pos: p.spanOf(t)}, LitNumber, t.Value, nil, nil}
	case t.Type == symbol("String"):
		p.next()
		return &Literal{base{Pos: p.spanOf(t)}, LitString, unquote(t.Value), nil, nil}
	case t.Type == symbol("Keyword") && (t.Value == "true" || t.Value == "false"):
		p.next()
		return &Literal{base{Pos: p.spanOf(t)}, LitBool, t.Value, nil, nil}
	case t.Type == symbol("Keyword") && (t.Value == "null" || t.Value == "undefined"):
		p.next()
		return &Literal{base{Pos: p.spanOf(t)}, LitNull, t.Value, nil, nil}
	case t.Type == symbol("Keyword") && t.Value == "this":
		p.next()
		return &ThisReceiver{base{Pos: p.spanOf(t)}}
	case t.Type == symbol("Ident"):
		p.next()
		return p.resolveIdentCall(t)
	case t.Type == symbol("Op") && t.Value == "(":
		p.next()
		p.parenDepth++
		inner := p.parsePipe()
		p.parenDepth--
		p.expect("Op", ")")
		return inner
	case t.Type == symbol("Op") && t.Value == "[":
		return p.parseArrayLiteral()
	case t.Type == symbol("Op") && t.Value == "{":
		return p.parseObjectLiteral()
	case t.Type == symbol("Backtick"):
		return p.parseTemplateLiteral()
	default:
		p.bag.Errorf(diag.CodeUnexpectedToken, diag.Syntax, p.here(), "unexpected token %q", t.Value)
		if !t.EOF() {
			p.next()
		}
		return &Empty{base{Pos: p.here()}}
	}
}

// resolveIdentCall turns a bare identifier into either a Call ("$any(e)" and
// ordinary function calls on the implicit receiver) or an ImplicitReceiver-
// rooted PropertyRead. $any(e) is a type-only cast with no runtime
// meaning, so it is unwrapped to its argument right here.
func (p *Parser) resolveIdentCall(t lexer.Token) Node {
	name := t.Value
	if p.at("Op", "(") {
		args := p.parseArgs()
		if name == "$any" && len(args) == 1 {
			return args[0]
		}
		return &Call{base{Pos: span.Join(p.spanOf(t), p.here())}, &Identifier{base{Pos: p.spanOf(t)}, name}, args}
	}
	// $event is the listener parameter, not a context read
	if name == "$event" {
		return &Identifier{base{Pos: p.spanOf(t)}, name}
	}
	return &PropertyRead{base{Pos: p.spanOf(t)}, &ImplicitReceiver{base{Pos: p.spanOf(t)}}, name}
}

func (p *Parser) parseArrayLiteral() Node {
	start := p.here()
	p.expect("Op", "[")
	p.parenDepth++
	var elems []Node
	for !p.at("Op", "]") && !p.peek().EOF() {
		elems = append(elems, p.parseConditional())
		if p.at("Op", ",") {
			p.next()
			continue
		}
		break
	}
	p.parenDepth--
	p.expect("Op", "]")
	return &Literal{base{Pos: span.Join(start, p.here())}, LitArray, "", elems, nil}
}

func (p *Parser) parseObjectLiteral() Node {
	start := p.here()
	p.expect("Op", "{")
	p.parenDepth++
	var entries []KeyVal
	for !p.at("Op", "}") && !p.peek().EOF() {
		var key string
		quoted := false
		if p.peek().Type == symbol("String") {
			key = unquote(p.next().Value)
			quoted = true
		} else if p.peek().Type == symbol("Ident") || p.peek().Type == symbol("Keyword") {
			key = p.next().Value
		} else {
			p.bag.Errorf(diag.CodeUnexpectedToken, diag.Syntax, p.here(), "expected object key")
			break
		}
		p.expect("Op", ":")
		val := p.parseConditional()
		entries = append(entries, KeyVal{Key: key, Quoted: quoted, Value: val})
		if p.at("Op", ",") {
			p.next()
			continue
		}
		break
	}
	p.parenDepth--
	p.expect("Op", "}")
	return &Literal{base{Pos: span.Join(start, p.here())}, LitObject, "", nil, entries}
}

func (p *Parser) parseTemplateLiteral() Node {
	start := p.here()
	p.next() // Backtick
	var quasis []string
	var exprs []Node
	var textBuf strings.Builder
	for {
		t := p.peek()
		switch {
		case t.Type == symbol("TemplateText"):
			p.next()
			textBuf.WriteString(t.Value)
		case t.Type == symbol("TemplateExprStart"):
			p.next()
			quasis = append(quasis, textBuf.String())
			textBuf.Reset()
			exprs = append(exprs, p.parsePipe())
			p.expect("TemplateExprEnd", "}")
		case t.Type == symbol("BacktickEnd"):
			p.next()
			quasis = append(quasis, textBuf.String())
			return &TemplateLiteral{base{Pos: span.Join(start, p.here())}, quasis, exprs}
		case t.EOF():
			p.bag.Errorf(diag.CodeUnexpectedToken, diag.Syntax, p.here(), "unterminated template literal")
			quasis = append(quasis, textBuf.String())
			return &TemplateLiteral{base{Pos: span.Join(start, p.here())}, quasis, exprs}
		default:
			p.next()
		}
	}
}

func (p *Parser) spanOf(t lexer.Token) span.Span {
	return span.FromPosition(t.Pos, t.Pos.Offset+len(t.Value))
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

// ParseNumberLiteral converts a Number literal's raw text to a float64 for
// passes (e.g. constant pool interning) that need the numeric value rather
// than the source text.
func ParseNumberLiteral(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	return v, err == nil
}
