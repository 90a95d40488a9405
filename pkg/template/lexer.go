package template

import (
	"strings"

	"github.com/gaarutyunov/facet/pkg/diag"
	"github.com/gaarutyunov/facet/pkg/span"
	"golang.org/x/net/html/atom"
)

// TokenKind enumerates the token variants the lexer produces. Unlike
// pkg/expr's tokenizer, this lexer is hand-rolled rather than built on
// participle/v2/lexer.Stateful: raw-text elements (script/style/textarea/
// title) close on a tag-name-dependent sequence that a static state table
// can't express, and the lexer must never fail to cover a byte of input,
// which is easier to guarantee with an explicit
// cursor than with regex-driven states.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokText
	TokLT          // '<' starting an open tag
	TokLTSlash     // '</' starting a close tag
	TokTagName     // tag identifier, Value may contain "ns:local"
	TokAttrName    // attribute identifier, Value may contain "ns:local"
	TokEq          // '='
	TokAttrValue   // attribute value text, quotes stripped, Quote keeps quote char
	TokGT          // '>'
	TokSelfClose   // '/>'
	TokComment     // HTML comment body
	TokCData       // CDATA section body
	TokDoctype     // doctype body, ignored by the parser
	TokRawText     // raw text content of script/style/textarea/title
	TokInterpStart // '{{'
	TokInterpEnd   // '}}'
	TokAt          // '@' beginning a recognized control-flow keyword
	TokBlockKeyword
	TokParenBody // raw text between a block keyword's '(' and matching ')'
	TokLBrace
	TokRBrace
	TokSemicolon
)

// Token is one lexical unit with its source span. Quote stripped from
// AttrValue; Quote preserves the original quote character ('"', '\'', or 0
// for unquoted) so the parser can tell whether `{{ }}` substrings were
// inside a quoted value.
type Token struct {
	Kind  TokenKind
	Value string
	Quote byte
	Pos   span.Span
}

var blockKeywords = map[string]bool{
	"if": true, "else": true, "for": true, "empty": true,
	"switch": true, "case": true, "default": true, "let": true,
	"defer": true, "placeholder": true, "loading": true, "error": true,
}

// rawTextTags are elements whose content is literal text up to the matching
// close tag.
var rawTextTags = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Textarea: true, atom.Title: true,
}

// Lexer turns template source into a token stream. It never returns a Go
// error: unrecoverable spans are reported to bag and lexing continues, so
// every byte of input still produces a token.
type Lexer struct {
	file string
	src  string
	pos  int // byte offset
	line int
	col  int
	bag  *diag.Bag
}

// NewLexer constructs a lexer over source, reporting into bag.
func NewLexer(file, source string, bag *diag.Bag) *Lexer {
	return &Lexer{file: file, src: source, line: 1, col: 1, bag: bag}
}

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

func (l *Lexer) peekByte() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) hasPrefixAt(off int, s string) bool {
	end := l.pos + off + len(s)
	if end > len(l.src) {
		return false
	}
	return l.src[l.pos+off:end] == s
}

func (l *Lexer) advance(n int) {
	for i := 0; i < n && !l.eof(); i++ {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *Lexer) here() span.Span {
	return span.Span{File: l.file, Start: l.pos, End: l.pos, Line: l.line, Col: l.col}
}

func (l *Lexer) spanFrom(startPos int, startLine, startCol int) span.Span {
	return span.Span{File: l.file, Start: startPos, End: l.pos, Line: startLine, Col: startCol}
}

// Tokenize lexes the whole fragment in "Text" mode (the document root and
// the inside of element children share this mode; tag interiors are lexed
// on demand by lexTag once an open/close angle bracket is seen).
func (l *Lexer) Tokenize() []Token {
	var out []Token
	for !l.eof() {
		switch {
		case l.hasPrefixAt(0, "<!--"):
			out = append(out, l.lexComment())
		case l.hasPrefixAt(0, "<![CDATA["):
			out = append(out, l.lexCData())
		case l.hasPrefixAt(0, "<!") && l.hasPrefixAtFold(2, "doctype"):
			out = append(out, l.lexDoctype())
		case l.hasPrefixAt(0, "</"):
			out = append(out, l.lexCloseTagName()...)
		case l.peekByte() == '<' && isNameStart(l.byteAt(1)):
			toks, tagAtom := l.lexOpenTag()
			out = append(out, toks...)
			if rawTextTags[tagAtom] {
				out = append(out, l.lexRawText(tagAtom))
			}
		case l.hasPrefixAt(0, "{{"):
			out = append(out, l.emit(TokInterpStart, "{{", 2))
		case l.hasPrefixAt(0, "}}"):
			out = append(out, l.emit(TokInterpEnd, "}}", 2))
		case l.peekByte() == '}':
			out = append(out, l.emit(TokRBrace, "}", 1))
		case l.peekByte() == '@' && l.atBlockKeyword():
			out = append(out, l.lexBlockHeader()...)
		default:
			out = append(out, l.lexText())
		}
	}
	out = append(out, Token{Kind: TokEOF, Pos: l.here()})
	return out
}

func (l *Lexer) byteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) hasPrefixAtFold(off int, s string) bool {
	end := l.pos + off + len(s)
	if end > len(l.src) {
		return false
	}
	return strings.EqualFold(l.src[l.pos+off:end], s)
}

func isNameStart(b byte) bool {
	return b == '/' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '-' || b == ':' || b == '_'
}

func (l *Lexer) emit(kind TokenKind, value string, n int) Token {
	startPos, startLine, startCol := l.pos, l.line, l.col
	l.advance(n)
	return Token{Kind: kind, Value: value, Pos: l.spanFrom(startPos, startLine, startCol)}
}

// lexText consumes a run of plain text up to the next `<`, `{{`, `}`, or
// recognized `@` block keyword. An `@` not followed by a known keyword is
// literal text, and so is a leading `<` that starts no tag or comment.
func (l *Lexer) lexText() Token {
	startPos, startLine, startCol := l.pos, l.line, l.col
	var b strings.Builder
	for !l.eof() {
		if (l.peekByte() == '<' && l.pos > startPos) || l.peekByte() == '}' || l.hasPrefixAt(0, "{{") {
			break
		}
		if l.peekByte() == '@' && l.atBlockKeyword() {
			break
		}
		b.WriteByte(l.peekByte())
		l.advance(1)
	}
	return Token{Kind: TokText, Value: b.String(), Pos: l.spanFrom(startPos, startLine, startCol)}
}

func (l *Lexer) atBlockKeyword() bool {
	j := l.pos + 1
	start := j
	for j < len(l.src) && isNameByte(l.src[j]) && l.src[j] != ':' && l.src[j] != '-' {
		j++
	}
	if j == start {
		return false
	}
	return blockKeywords[l.src[start:j]]
}

func (l *Lexer) lexComment() Token {
	startPos, startLine, startCol := l.pos, l.line, l.col
	l.advance(4) // "<!--"
	bodyStart := l.pos
	for !l.eof() && !l.hasPrefixAt(0, "-->") {
		l.advance(1)
	}
	body := l.src[bodyStart:l.pos]
	if l.hasPrefixAt(0, "-->") {
		l.advance(3)
	} else {
		l.bag.Errorf(diag.CodeUnterminatedTag, diag.Syntax, l.here(), "unterminated comment")
	}
	return Token{Kind: TokComment, Value: body, Pos: l.spanFrom(startPos, startLine, startCol)}
}

func (l *Lexer) lexCData() Token {
	startPos, startLine, startCol := l.pos, l.line, l.col
	l.advance(9) // "<![CDATA["
	bodyStart := l.pos
	for !l.eof() && !l.hasPrefixAt(0, "]]>") {
		l.advance(1)
	}
	body := l.src[bodyStart:l.pos]
	if l.hasPrefixAt(0, "]]>") {
		l.advance(3)
	}
	return Token{Kind: TokCData, Value: body, Pos: l.spanFrom(startPos, startLine, startCol)}
}

func (l *Lexer) lexDoctype() Token {
	startPos, startLine, startCol := l.pos, l.line, l.col
	for !l.eof() && l.peekByte() != '>' {
		l.advance(1)
	}
	if !l.eof() {
		l.advance(1)
	}
	return Token{Kind: TokDoctype, Pos: l.spanFrom(startPos, startLine, startCol)}
}

// lexOpenTag lexes `<tagname` plus its attribute list up to `>` or `/>`,
// returning the full token run and the recognized atom (Zero if unknown/
// custom) so the caller can decide whether raw-text mode follows.
func (l *Lexer) lexOpenTag() ([]Token, atom.Atom) {
	var out []Token
	out = append(out, l.emit(TokLT, "<", 1))
	name := l.lexName()
	out = append(out, name)
	out = append(out, l.lexAttrs()...)
	if l.hasPrefixAt(0, "/>") {
		out = append(out, l.emit(TokSelfClose, "/>", 2))
	} else if l.peekByte() == '>' {
		out = append(out, l.emit(TokGT, ">", 1))
	} else {
		l.bag.Errorf(diag.CodeUnterminatedTag, diag.Syntax, l.here(), "unterminated tag %q", name.Value)
	}
	return out, atom.Lookup([]byte(strings.ToLower(localName(name.Value))))
}

func localName(qname string) string {
	if i := strings.IndexByte(qname, ':'); i >= 0 {
		return qname[i+1:]
	}
	return qname
}

func (l *Lexer) lexCloseTagName() []Token {
	var out []Token
	out = append(out, l.emit(TokLTSlash, "</", 2))
	out = append(out, l.lexName())
	l.skipWhitespace()
	if l.peekByte() == '>' {
		out = append(out, l.emit(TokGT, ">", 1))
	} else {
		l.bag.Errorf(diag.CodeUnterminatedTag, diag.Syntax, l.here(), "unterminated close tag")
	}
	return out
}

func (l *Lexer) lexName() Token {
	startPos, startLine, startCol := l.pos, l.line, l.col
	start := l.pos
	for !l.eof() && isNameByte(l.peekByte()) {
		l.advance(1)
	}
	return Token{Kind: TokTagName, Value: l.src[start:l.pos], Pos: l.spanFrom(startPos, startLine, startCol)}
}

func (l *Lexer) skipWhitespace() {
	for !l.eof() {
		switch l.peekByte() {
		case ' ', '\t', '\r', '\n':
			l.advance(1)
		default:
			return
		}
	}
}

// lexAttrs lexes zero or more `name`, `name=value` pairs. Attribute values
// may embed `{{ }}` interpolation substrings; those are preserved verbatim
// in the token's Value for the parser to split.
func (l *Lexer) lexAttrs() []Token {
	var out []Token
	for {
		l.skipWhitespace()
		if l.eof() || l.peekByte() == '>' || l.hasPrefixAt(0, "/>") {
			return out
		}
		startPos, startLine, startCol := l.pos, l.line, l.col
		start := l.pos
		for !l.eof() && !isAttrNameBoundary(l.peekByte()) {
			l.advance(1)
		}
		if l.pos == start {
			// unexpected byte inside tag; consume one to guarantee progress
			l.advance(1)
			continue
		}
		out = append(out, Token{Kind: TokAttrName, Value: l.src[start:l.pos], Pos: l.spanFrom(startPos, startLine, startCol)})
		l.skipWhitespace()
		if l.peekByte() != '=' {
			continue
		}
		out = append(out, l.emit(TokEq, "=", 1))
		l.skipWhitespace()
		out = append(out, l.lexAttrValue())
	}
}

func isAttrNameBoundary(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '=', '>', '/':
		return true
	}
	return false
}

func (l *Lexer) lexAttrValue() Token {
	startPos, startLine, startCol := l.pos, l.line, l.col
	switch l.peekByte() {
	case '"', '\'':
		q := l.peekByte()
		l.advance(1)
		start := l.pos
		for !l.eof() && l.peekByte() != q {
			l.advance(1)
		}
		val := l.src[start:l.pos]
		if !l.eof() {
			l.advance(1)
		} else {
			l.bag.Errorf(diag.CodeUnterminatedAttr, diag.Syntax, l.here(), "unterminated attribute value")
		}
		return Token{Kind: TokAttrValue, Value: val, Quote: q, Pos: l.spanFrom(startPos, startLine, startCol)}
	default:
		start := l.pos
		for !l.eof() && !isAttrNameBoundary(l.peekByte()) {
			l.advance(1)
		}
		return Token{Kind: TokAttrValue, Value: l.src[start:l.pos], Pos: l.spanFrom(startPos, startLine, startCol)}
	}
}

// lexRawText scans forward from just after a raw-text element's opening
// `>` until the matching case-insensitive `</tagname`, treating everything
// between as one literal token.
func (l *Lexer) lexRawText(tag atom.Atom) Token {
	startPos, startLine, startCol := l.pos, l.line, l.col
	closer := "</" + tag.String()
	for !l.eof() && !l.hasPrefixAtFold(0, closer) {
		l.advance(1)
	}
	return Token{Kind: TokRawText, Value: l.src[startPos:l.pos], Pos: l.spanFrom(startPos, startLine, startCol)}
}

// lexBlockHeader lexes `@keyword(...)` or bare `@keyword`/`@else if(...)`
// into TokAt, TokBlockKeyword, and (if present) a TokParenBody holding the
// raw text between the matching parens, left for a nested expr.Parser call.
func (l *Lexer) lexBlockHeader() []Token {
	var out []Token
	out = append(out, l.emit(TokAt, "@", 1))
	kwStart := l.pos
	kwStartLine, kwStartCol := l.line, l.col
	for !l.eof() && isNameByte(l.peekByte()) && l.peekByte() != ':' && l.peekByte() != '-' {
		l.advance(1)
	}
	kw := l.src[kwStart:l.pos]
	out = append(out, Token{Kind: TokBlockKeyword, Value: kw, Pos: l.spanFrom(kwStart, kwStartLine, kwStartCol)})
	l.skipWhitespace()
	if kw == "else" {
		// possible "else if"
		if l.hasPrefixAtFold(0, "if") && !isNameByte(l.byteAt(2)) {
			ifStart, ifLine, ifCol := l.pos, l.line, l.col
			l.advance(2)
			out = append(out, Token{Kind: TokBlockKeyword, Value: "if", Pos: l.spanFrom(ifStart, ifLine, ifCol)})
			l.skipWhitespace()
		}
	}
	if l.peekByte() == '(' {
		startPos, startLine, startCol := l.pos, l.line, l.col
		l.advance(1)
		bodyStart := l.pos
		depth := 1
		for !l.eof() {
			switch l.peekByte() {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					goto parenDone
				}
			}
			l.advance(1)
		}
	parenDone:
		body := l.src[bodyStart:l.pos]
		if l.peekByte() == ')' {
			l.advance(1)
		} else {
			l.bag.Errorf(diag.CodeUnterminatedTag, diag.Syntax, l.here(), "unterminated block header")
		}
		out = append(out, Token{Kind: TokParenBody, Value: body, Pos: l.spanFrom(startPos, startLine, startCol)})
	}
	l.skipWhitespace()
	if l.peekByte() == '{' {
		out = append(out, l.emit(TokLBrace, "{", 1))
	}
	return out
}
