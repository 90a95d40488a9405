package template

import (
	"strings"

	"github.com/gaarutyunov/facet/pkg/diag"
	"github.com/gaarutyunov/facet/pkg/expr"
	"github.com/gaarutyunov/facet/pkg/span"
)

// voidTags never have children regardless of source.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Parser builds the Template AST from a token stream. It is a hand-written
// recursive-descent parser (not participle) for the same reason the lexer
// is hand-written: per-construct error recovery and dynamic raw-text/
// close-tag matching don't fit a static grammar.
type Parser struct {
	file               string
	toks               []Token
	pos                int
	bag                *diag.Bag
	preserveWhitespace bool
	refNames           map[string]bool
}

// Parse lexes and parses an entire component template. preserveWhitespace
// disables the whitespace-collapsing policy.
func Parse(file, source string, preserveWhitespace bool) (*Template, *diag.Bag) {
	bag := &diag.Bag{}
	lx := NewLexer(file, source, bag)
	toks := lx.Tokenize()
	p := &Parser{file: file, toks: toks, bag: bag, preserveWhitespace: preserveWhitespace, refNames: map[string]bool{}}
	rootStart := p.here()
	var children []Node
	for {
		children = append(children, p.parseNodes("")...)
		// a close brace with no enclosing block is literal text at root
		if p.peek().Kind == TokRBrace {
			children = append(children, &Text{base: base{Pos: p.here()}, Value: "}"})
			p.next()
			continue
		}
		break
	}
	rootEnd := p.here()
	return &Template{base: base{Pos: span.Join(rootStart, rootEnd)}, Children: children}, bag
}

// --- cursor helpers ---

func (p *Parser) peek() Token {
	if p.pos >= len(p.toks) {
		return Token{Kind: TokEOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(off int) Token {
	idx := p.pos + off
	if idx >= len(p.toks) {
		return Token{Kind: TokEOF}
	}
	return p.toks[idx]
}

func (p *Parser) next() Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) here() span.Span {
	return p.peek().Pos
}

func (p *Parser) errf(code int, kind diag.Kind, format string, args ...interface{}) {
	p.bag.Add(code, kind, diag.Error, p.here(), format, args...)
}

// parseNodes parses siblings until EOF, a matching close tag named
// closeTag (lowercased), or a block-closing '}'. closeTag == "" means
// "parse to EOF" (root level).
func (p *Parser) parseNodes(closeTag string) []Node {
	var out []Node
	for {
		t := p.peek()
		switch t.Kind {
		case TokEOF:
			return collapseWhitespace(out, p.preserveWhitespace)
		case TokRBrace:
			return collapseWhitespace(out, p.preserveWhitespace)
		case TokLTSlash:
			name := strings.ToLower(localName(p.peekAt(1).Value))
			if closeTag != "" && name == closeTag {
				p.next() // </
				p.next() // name
				if p.peek().Kind == TokGT {
					p.next()
				}
				return collapseWhitespace(out, p.preserveWhitespace)
			}
			// stray/mismatched close tag: consume it and keep going, per
			// the "never throws, always recovers" contract.
			p.next()
			p.next()
			if p.peek().Kind == TokGT {
				p.next()
			}
		case TokComment, TokCData, TokDoctype:
			p.next()
		case TokLT:
			out = append(out, p.parseElement())
		case TokAt:
			out = append(out, p.parseBlock())
		case TokText, TokInterpStart:
			out = append(out, p.parseTextRun())
		default:
			p.next()
		}
	}
}

// parseTextRun merges a run of Text/interpolation tokens into a single Text
// or BoundText node.
func (p *Parser) parseTextRun() Node {
	start := p.here()
	var parts []TextPart
	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			parts = append(parts, TextPart{Literal: literal.String()})
			literal.Reset()
		}
	}
loop:
	for {
		switch p.peek().Kind {
		case TokText:
			literal.WriteString(p.next().Value)
		case TokInterpStart:
			p.next()
			holeStart := p.here()
			raw, end := p.collectInterpBody()
			e := p.parseExprFragment(raw, holeStart, end, true)
			flush()
			parts = append(parts, TextPart{Expr: e})
		default:
			break loop
		}
	}
	flush()
	end := p.here()
	if len(parts) == 1 && parts[0].Expr == nil {
		return &Text{base: base{Pos: span.Join(start, end)}, Value: parts[0].Literal}
	}
	if len(parts) == 0 {
		return &Text{base: base{Pos: span.Join(start, end)}, Value: ""}
	}
	hasExpr := false
	for _, pt := range parts {
		if pt.Expr != nil {
			hasExpr = true
		}
	}
	if !hasExpr {
		var b strings.Builder
		for _, pt := range parts {
			b.WriteString(pt.Literal)
		}
		return &Text{base: base{Pos: span.Join(start, end)}, Value: b.String()}
	}
	return &BoundText{base: base{Pos: span.Join(start, end)}, Parts: parts}
}

// collectInterpBody scans raw tokens up to the matching TokInterpEnd,
// reconstructing the expression source text (tokens don't retain
// inter-token whitespace, but expressions re-lex their own fragment so
// that's fine — we just need the text).
func (p *Parser) collectInterpBody() (string, span.Span) {
	start := p.here()
	var b strings.Builder
	for {
		t := p.peek()
		if t.Kind == TokInterpEnd {
			end := p.here()
			p.next()
			return b.String(), span.Join(start, end)
		}
		if t.Kind == TokEOF {
			p.errf(diag.CodeUnexpectedToken, diag.Syntax, "unterminated interpolation")
			return b.String(), p.here()
		}
		b.WriteString(t.Value)
		p.next()
	}
}

func (p *Parser) parseExprFragment(raw string, sp span.Span, end span.Span, allowPipes bool) expr.Node {
	ep, ebag := expr.New(p.file, raw, allowPipes)
	n := ep.Parse()
	p.bag.Extend(ebag)
	return n
}

// parseElement parses `<tag ...>children</tag>` or `<tag .../>`, classifies
// its attributes, and desugars a leading structural directive if present.
func (p *Parser) parseElement() Node {
	start := p.here()
	p.next() // '<'
	tagTok := p.next()
	tagName := tagTok.Value
	lname := strings.ToLower(localName(tagName))
	el := &Element{base: base{Pos: start}, Tag: tagName, IsVoid: voidTags[lname]}
	if i := strings.IndexByte(tagName, ':'); i >= 0 {
		el.Namespace = tagName[:i]
	}

	var structDir *Attribute
	var structVal string
	for p.peek().Kind == TokAttrName {
		nameTok := p.next()
		name := nameTok.Value
		var valTok *Token
		if p.peek().Kind == TokEq {
			p.next()
			v := p.next()
			valTok = &v
		}
		p.classifyAttr(el, name, valTok, nameTok.Pos)
		if strings.HasPrefix(name, "*") {
			sv := ""
			if valTok != nil {
				sv = valTok.Value
			}
			nm := name[1:]
			structDir = &Attribute{Name: nm, Pos: nameTok.Pos}
			structVal = sv
		}
	}

	selfClosed := false
	switch p.peek().Kind {
	case TokSelfClose:
		p.next()
		selfClosed = true
	case TokGT:
		p.next()
	default:
		p.errf(diag.CodeUnterminatedTag, diag.Syntax, "unterminated tag %q", tagName)
	}

	if lname == "ng-content" {
		sel := "*"
		for _, a := range el.Attrs {
			if a.Name == "select" {
				sel = a.Value
			}
		}
		if !selfClosed {
			p.parseNodes(lname) // fallback content is not modeled; discard but still consume tokens
		}
		content := &Content{base: base{Pos: start}, Select: sel}
		return wrapStructural(structDir, structVal, p, content, start)
	}

	if !el.IsVoid && !selfClosed {
		if lname == "script" || lname == "style" || lname == "textarea" || lname == "title" {
			if p.peek().Kind == TokRawText {
				raw := p.next()
				el.Children = []Node{&Text{base: base{Pos: raw.Pos}, Value: raw.Value}}
			}
		} else {
			el.Children = p.parseNodes(lname)
		}
	}
	end := p.here()
	el.Pos = span.Join(start, end)

	var result Node = el
	if lname == "ng-template" {
		result = elementToTemplate(el)
	}
	return wrapStructural(structDir, structVal, p, result, start)
}

// wrapStructural desugars `*dir="micro"` by wrapping node in a synthetic
// Template carrying the microsyntax-derived inputs/vars.
func wrapStructural(dir *Attribute, val string, p *Parser, node Node, start span.Span) Node {
	if dir == nil {
		return node
	}
	tpl := &Template{base: base{Pos: start}, Children: []Node{node}}
	p.applyMicrosyntax(tpl, dir.Name, val, dir.Pos)
	return tpl
}

func elementToTemplate(el *Element) *Template {
	return &Template{
		base:     el.base,
		Inputs:   el.Inputs,
		Outputs:  el.Outputs,
		Refs:     el.Refs,
		Children: el.Children,
	}
}

func (p *Parser) classifyAttr(el *Element, name string, valTok *Token, pos span.Span) {
	valueString := func() string {
		if valTok == nil {
			return ""
		}
		return valTok.Value
	}
	switch {
	case strings.HasPrefix(name, "[(") && strings.HasSuffix(name, ")]"):
		inner := name[2 : len(name)-2]
		e := p.parseAttrExpr(valueString(), pos, false)
		el.TwoWays = append(el.TwoWays, TwoWayBinding{Pos: pos, Name: inner, Expr: e})
	case strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]"):
		inner := name[1 : len(name)-1]
		in := Input{Pos: pos, Expr: p.parseAttrExpr(valueString(), pos, true)}
		switch {
		case strings.HasPrefix(inner, "attr."):
			in.Name = inner[len("attr."):]
			in.Kind = InputAttribute
			in.Security = securityFor(in.Name)
		case strings.HasPrefix(inner, "style."):
			rest := inner[len("style."):]
			if i := strings.IndexByte(rest, '.'); i >= 0 {
				in.Name, in.Unit = rest[:i], rest[i+1:]
			} else {
				in.Name = rest
			}
			in.Kind = InputStyle
		case strings.HasPrefix(inner, "class."):
			in.Name = inner[len("class."):]
			in.Kind = InputClass
		default:
			in.Name = inner
			in.Kind = InputProperty
			in.Security = securityFor(in.Name)
		}
		el.Inputs = append(el.Inputs, in)
	case strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")"):
		inner := name[1 : len(name)-1]
		var handler expr.Node
		if raw := valueString(); strings.TrimSpace(raw) == "" {
			handler = p.parseAttrExpr(raw, pos, false)
		} else {
			// handler bodies may be `a; b` chains
			ep, ebag := expr.New(p.file, raw, false)
			handler = ep.ParseChain()
			p.bag.Extend(ebag)
		}
		out := Output{Pos: pos, Handler: handler}
		parts := strings.SplitN(inner, ".", 2)
		out.Name = parts[0]
		if len(parts) == 2 {
			if strings.HasPrefix(out.Name, "@") {
				out.Phase = parts[1]
			} else {
				out.KeyEvent = parts[1]
			}
		}
		el.Outputs = append(el.Outputs, out)
	case strings.HasPrefix(name, "#"):
		refName := name[1:]
		exportAs := valueString()
		if p.refNames[refName] {
			p.bag.Add(diag.CodeDuplicateReference, diag.Structural, diag.Error, pos, "duplicate reference #%s", refName)
		}
		p.refNames[refName] = true
		el.Refs = append(el.Refs, Reference{base: base{Pos: pos}, Name: refName, ExportAs: exportAs})
	case strings.HasPrefix(name, "*"):
		// handled by the caller (structural directive); nothing is recorded
		// on the element here.
	default:
		raw := valueString()
		if strings.Contains(raw, "{{") {
			e := p.parseInterpolatedAttr(raw, pos)
			el.Inputs = append(el.Inputs, Input{Pos: pos, Name: name, Kind: InputProperty, Expr: e, Security: securityFor(name)})
			return
		}
		el.Attrs = append(el.Attrs, Attribute{Pos: pos, Name: name, Value: raw})
	}
}

func securityFor(name string) SecurityContext {
	switch name {
	case "href", "src", "xlink:href":
		return SecurityURL
	case "innerHTML":
		return SecurityHTML
	case "formAction", "action":
		return SecurityResourceURL
	}
	return SecurityNone
}

func (p *Parser) parseAttrExpr(raw string, pos span.Span, allowPipes bool) expr.Node {
	ep, ebag := expr.New(p.file, raw, allowPipes)
	n := ep.Parse()
	p.bag.Extend(ebag)
	return n
}

// parseInterpolatedAttr lowers `attr="a{{b}}c"` into a TemplateLiteral
// expression, the same structure used for bound-text interpolation holes.
func (p *Parser) parseInterpolatedAttr(raw string, pos span.Span) expr.Node {
	var quasis []string
	var exprs []expr.Node
	i := 0
	var lit strings.Builder
	for i < len(raw) {
		if strings.HasPrefix(raw[i:], "{{") {
			quasis = append(quasis, lit.String())
			lit.Reset()
			j := strings.Index(raw[i+2:], "}}")
			if j < 0 {
				p.errf(diag.CodeUnexpectedToken, diag.Syntax, "unterminated interpolation in attribute")
				break
			}
			frag := raw[i+2 : i+2+j]
			exprs = append(exprs, p.parseAttrExpr(frag, pos, true))
			i = i + 2 + j + 2
			continue
		}
		lit.WriteByte(raw[i])
		i++
	}
	quasis = append(quasis, lit.String())
	return expr.NewTemplateLiteral(pos, quasis, exprs)
}

// --- control-flow block parsing ---

func (p *Parser) consumeParenBody() (string, bool) {
	if p.peek().Kind == TokParenBody {
		t := p.next()
		return t.Value, true
	}
	return "", false
}

func (p *Parser) consumeLBrace() {
	if p.peek().Kind == TokLBrace {
		p.next()
	}
}

func (p *Parser) consumeRBrace() {
	if p.peek().Kind == TokText && strings.TrimSpace(p.peek().Value) == "" && p.peekAt(1).Kind == TokRBrace {
		p.next()
	}
	if p.peek().Kind == TokRBrace {
		p.next()
	}
}

func (p *Parser) parseBraceBody() []Node {
	nodes := p.parseNodes("")
	p.consumeRBrace()
	return nodes
}

// skipBlockGap advances past whitespace-only text between a block's `}`
// and a chained `@else`/`@empty`/`@case`/`@default` keyword; that gap is
// dropped whitespace per the §4.3 policy either way.
func (p *Parser) skipBlockGap() {
	for p.peek().Kind == TokText && strings.TrimSpace(p.peek().Value) == "" &&
		p.peekAt(1).Kind == TokAt {
		p.next()
	}
}

func splitAlias(header string) (condSrc, alias string) {
	parts := strings.SplitN(header, ";", 2)
	if len(parts) == 2 {
		rest := strings.TrimSpace(parts[1])
		if strings.HasPrefix(rest, "as ") {
			return strings.TrimSpace(parts[0]), strings.TrimSpace(rest[len("as "):])
		}
	}
	return strings.TrimSpace(header), ""
}

func aliasVars(name string) []TemplateVariable {
	if name == "" {
		return nil
	}
	return []TemplateVariable{{Name: name}}
}

// parseBlock dispatches on the keyword following '@'. Malformed or
// orphaned block keywords (a `@case` with no enclosing `@switch`, etc.)
// recover as an Invalid node rather than aborting the template.
func (p *Parser) parseBlock() Node {
	start := p.here()
	p.next() // '@'
	kw := p.next().Value
	switch kw {
	case "if":
		return p.parseIfBlock(start)
	case "for":
		return p.parseForBlock(start)
	case "switch":
		return p.parseSwitchBlock(start)
	case "let":
		return p.parseLetDecl(start)
	case "defer":
		return p.parseDeferBlock(start)
	default:
		p.errf(diag.CodeUnknownDirective, diag.Structural, "unexpected block @%s", kw)
		p.consumeParenBody()
		p.consumeLBrace()
		p.parseBraceBody()
		return &Invalid{base{Pos: start}}
	}
}

func (p *Parser) parseIfBlock(start span.Span) Node {
	header, _ := p.consumeParenBody()
	condSrc, alias := splitAlias(header)
	cond := p.parseAttrExpr(condSrc, start, true)
	p.consumeLBrace()
	body := p.parseBraceBody()
	branches := []IfBranch{{
		Cond:  cond,
		Alias: aliasVars(alias),
		Body:  &Template{base: base{Pos: start}, Vars: aliasVars(alias), Children: body},
	}}
	for {
		p.skipBlockGap()
		if p.peek().Kind != TokAt || p.peekAt(1).Value != "else" {
			break
		}
		p.next() // '@'
		p.next() // 'else'
		if p.peek().Kind == TokBlockKeyword && p.peek().Value == "if" {
			p.next() // 'if'
			h, _ := p.consumeParenBody()
			cSrc, al := splitAlias(h)
			c := p.parseAttrExpr(cSrc, start, true)
			p.consumeLBrace()
			b := p.parseBraceBody()
			branches = append(branches, IfBranch{
				Cond:  c,
				Alias: aliasVars(al),
				Body:  &Template{base: base{Pos: start}, Vars: aliasVars(al), Children: b},
			})
			continue
		}
		p.consumeLBrace()
		b := p.parseBraceBody()
		branches = append(branches, IfBranch{Body: &Template{base: base{Pos: start}, Children: b}})
		break
	}
	return &IfBlock{base: base{Pos: span.Join(start, p.here())}, Branches: branches}
}

func (p *Parser) parseForBlock(start span.Span) Node {
	header, _ := p.consumeParenBody()
	segs := strings.Split(header, ";")
	item, itemsSrc := "", ""
	if len(segs) > 0 {
		first := strings.TrimSpace(segs[0])
		if idx := strings.Index(first, " of "); idx >= 0 {
			item = strings.TrimSpace(first[:idx])
			itemsSrc = strings.TrimSpace(first[idx+len(" of "):])
		} else {
			p.errf(diag.CodeInvalidMicrosyntax, diag.Structural, "malformed @for header %q", header)
		}
	}
	items := p.parseAttrExpr(itemsSrc, start, true)
	var tracker expr.Node
	var aliases []TemplateVariable
	foundTrack := false
	for _, seg := range segs[min(1, len(segs)):] {
		seg = strings.TrimSpace(seg)
		switch {
		case strings.HasPrefix(seg, "track "):
			tracker = p.parseAttrExpr(strings.TrimSpace(seg[len("track "):]), start, false)
			foundTrack = true
		case strings.HasPrefix(seg, "let "):
			for _, part := range strings.Split(seg[len("let "):], ",") {
				kv := strings.SplitN(part, "=", 2)
				name := strings.TrimSpace(kv[0])
				src := ""
				if len(kv) == 2 {
					src = strings.TrimSpace(kv[1])
				}
				if name != "" {
					aliases = append(aliases, TemplateVariable{Name: name, Source: src})
				}
			}
		}
	}
	if !foundTrack {
		p.bag.Add(diag.CodeForMissingTrack, diag.Structural, diag.Error, start, "@for requires a track expression")
	}
	p.consumeLBrace()
	body := p.parseBraceBody()
	itemTpl := &Template{base: base{Pos: start}, Children: body}
	var emptyTpl *Template
	p.skipBlockGap()
	if p.peek().Kind == TokAt && p.peekAt(1).Value == "empty" {
		p.next()
		p.next()
		p.consumeLBrace()
		eb := p.parseBraceBody()
		emptyTpl = &Template{base: base{Pos: start}, Children: eb}
	}
	return &ForBlock{
		base: base{Pos: span.Join(start, p.here())}, Item: item, Items: items,
		Tracker: tracker, Aliases: aliases, ItemTemplate: itemTpl, EmptyTemplate: emptyTpl,
	}
}

func (p *Parser) parseSwitchBlock(start span.Span) Node {
	header, _ := p.consumeParenBody()
	switchExpr := p.parseAttrExpr(header, start, true)
	p.consumeLBrace()
	var cases []SwitchCase
	for {
		p.skipBlockGap()
		if p.peek().Kind != TokAt || p.peekAt(1).Value != "case" && p.peekAt(1).Value != "default" {
			break
		}
		p.next() // '@'
		kw := p.next().Value
		var matches expr.Node
		if kw == "case" {
			h, _ := p.consumeParenBody()
			matches = p.parseAttrExpr(h, start, true)
		}
		p.consumeLBrace()
		b := p.parseBraceBody()
		cases = append(cases, SwitchCase{Matches: matches, Body: &Template{base: base{Pos: start}, Children: b}})
	}
	p.consumeRBrace()
	return &SwitchBlock{base: base{Pos: span.Join(start, p.here())}, Expr: switchExpr, Cases: cases}
}

// parseLetDecl handles `@let name = expr;`. The lexer stops at the keyword
// (no parens or brace follow `@let`), so the declaration body arrives as a
// plain Text token; anything after the terminating `;` is re-injected as a
// Text token so the rest of the template still lexes normally.
func (p *Parser) parseLetDecl(start span.Span) Node {
	if p.peek().Kind != TokText {
		p.errf(diag.CodeInvalidMicrosyntax, diag.Structural, "malformed @let declaration")
		return &Invalid{base{Pos: start}}
	}
	raw := p.next().Value
	body, rest := raw, ""
	if idx := strings.IndexByte(raw, ';'); idx >= 0 {
		body, rest = raw[:idx], raw[idx+1:]
	}
	eq := strings.IndexByte(body, '=')
	if eq < 0 {
		p.errf(diag.CodeInvalidMicrosyntax, diag.Structural, "malformed @let declaration %q", body)
		return &Invalid{base{Pos: start}}
	}
	name := strings.TrimSpace(body[:eq])
	valueSrc := strings.TrimSpace(body[eq+1:])
	e := p.parseAttrExpr(valueSrc, start, true)
	if rest != "" {
		tok := Token{Kind: TokText, Value: rest, Pos: p.here()}
		tail := append([]Token{tok}, p.toks[p.pos:]...)
		p.toks = append(p.toks[:p.pos], tail...)
	}
	return &LetDeclaration{base: base{Pos: start}, Name: name, Expr: e}
}

func isDeferSub(kw string) bool {
	return kw == "placeholder" || kw == "loading" || kw == "error"
}

func (p *Parser) parseDeferBlock(start span.Span) Node {
	p.consumeParenBody()
	p.consumeLBrace()
	mainBody := p.parseBraceBody()
	mainTpl := &Template{base: base{Pos: start}, Children: mainBody}
	var placeholder, loading, errTpl *Template
	for {
		p.skipBlockGap()
		if p.peek().Kind != TokAt || !isDeferSub(p.peekAt(1).Value) {
			break
		}
		p.next()
		kw := p.next().Value
		p.consumeParenBody()
		p.consumeLBrace()
		b := p.parseBraceBody()
		t := &Template{base: base{Pos: start}, Children: b}
		switch kw {
		case "placeholder":
			placeholder = t
		case "loading":
			loading = t
		case "error":
			errTpl = t
		}
	}
	return &DeferBlock{
		base: base{Pos: span.Join(start, p.here())}, Main: mainTpl,
		Placeholder: placeholder, Loading: loading, Error: errTpl,
	}
}

// applyMicrosyntax desugars `*dir="micro"`: `let VAR [= CTX_KEY]`,
// `KEY EXPR`, and `EXPR as VAR` segments separated by `;`. This covers
// the canonical ngIf/ngFor/ngSwitchCase shapes; it is a pragmatic subset
// rather than every form the full microsyntax grammar accepts.
func (p *Parser) applyMicrosyntax(tpl *Template, dir, val string, pos span.Span) {
	val = strings.TrimSpace(val)
	if val == "" {
		tpl.Inputs = append(tpl.Inputs, Input{Pos: pos, Name: dir, Kind: InputProperty})
		return
	}
	segs := strings.Split(val, ";")
	first := strings.TrimSpace(segs[0])
	remainder := first
	if strings.HasPrefix(first, "let ") {
		afterLet := strings.TrimSpace(first[len("let "):])
		fields := strings.SplitN(afterLet, " ", 2)
		tpl.Vars = append(tpl.Vars, TemplateVariable{Pos: pos, Name: fields[0]})
		remainder = ""
		if len(fields) == 2 {
			remainder = strings.TrimSpace(fields[1])
		}
	}
	if remainder != "" {
		fields := strings.SplitN(remainder, " ", 2)
		if len(fields) == 2 {
			key := fields[0]
			inputName := dir + strings.ToUpper(key[:1]) + key[1:]
			e := p.parseAttrExpr(fields[1], pos, true)
			tpl.Inputs = append(tpl.Inputs, Input{Pos: pos, Name: inputName, Kind: InputProperty, Expr: e})
		} else {
			e := p.parseAttrExpr(remainder, pos, true)
			tpl.Inputs = append(tpl.Inputs, Input{Pos: pos, Name: dir, Kind: InputProperty, Expr: e})
		}
	}
	for _, seg := range segs[min(1, len(segs)):] {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "let ") {
			afterLet := strings.TrimSpace(seg[len("let "):])
			kv := strings.SplitN(afterLet, "=", 2)
			name := strings.TrimSpace(kv[0])
			src := ""
			if len(kv) == 2 {
				src = strings.TrimSpace(kv[1])
			}
			tpl.Vars = append(tpl.Vars, TemplateVariable{Pos: pos, Name: name, Source: src})
			continue
		}
		if idx := strings.Index(seg, " as "); idx >= 0 {
			key := strings.TrimSpace(seg[:idx])
			varName := strings.TrimSpace(seg[idx+len(" as "):])
			tpl.Vars = append(tpl.Vars, TemplateVariable{Pos: pos, Name: varName, Source: key})
			continue
		}
		var key, exprSrc string
		if ci := strings.IndexByte(seg, ':'); ci >= 0 {
			key, exprSrc = strings.TrimSpace(seg[:ci]), strings.TrimSpace(seg[ci+1:])
		} else {
			fields := strings.SplitN(seg, " ", 2)
			key = fields[0]
			if len(fields) == 2 {
				exprSrc = fields[1]
			}
		}
		if key == "" {
			continue
		}
		inputName := dir + strings.ToUpper(key[:1]) + key[1:]
		e := p.parseAttrExpr(exprSrc, pos, true)
		tpl.Inputs = append(tpl.Inputs, Input{Pos: pos, Name: inputName, Kind: InputProperty, Expr: e})
	}
}

// collapseWhitespace collapses runs of whitespace in plain Text nodes to
// a single space, and
// drop whitespace-only Text nodes sitting at either end of a sibling list
// (adjacent to a block/element boundary), unless preserveWhitespace is set.
func collapseWhitespace(nodes []Node, preserve bool) []Node {
	if preserve {
		return nodes
	}
	out := make([]Node, 0, len(nodes))
	for i, n := range nodes {
		if t, ok := n.(*Text); ok {
			collapsed := collapseSpaceRuns(t.Value)
			if strings.TrimSpace(collapsed) == "" && (i == 0 || i == len(nodes)-1) {
				continue
			}
			out = append(out, &Text{base: t.base, Value: collapsed})
			continue
		}
		out = append(out, n)
	}
	return out
}

func collapseSpaceRuns(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		isSpace := r == ' ' || r == '\t' || r == '\r' || r == '\n'
		if isSpace {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
