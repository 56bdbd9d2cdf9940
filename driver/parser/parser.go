package parser

import (
	"io"
	"strconv"
	"strings"

	"github.com/knotlang/knot/ast"
	"github.com/knotlang/knot/driver/lexer"
	"github.com/knotlang/knot/grammar/lexical"
	spec "github.com/knotlang/knot/spec/grammar"
)

// Parser is a hand-written recursive-descent parser for the knot language.
// One parse produces two trees: a concrete syntax tree carrying every token
// of the source text, hidden ones included, and a typed model tree carrying
// only the significant structure. The parser recovers from syntax errors at
// statement boundaries, so both trees come out even for broken input.
type Parser struct {
	stream  *tokenStream
	tb      *treeBuilder
	model   *ast.Model
	synErrs []*SyntaxError
}

// NewParser returns a parser reading src under the knot token vocabulary.
func NewParser(src io.Reader) (*Parser, error) {
	types, err := lexical.KnotVocabulary()
	if err != nil {
		return nil, err
	}
	return NewParserWithVocabulary(types, src)
}

// NewParserWithVocabulary returns a parser driven by an explicit vocabulary.
func NewParserWithVocabulary(types lexical.TokenTypes, src io.Reader) (*Parser, error) {
	stream, err := newTokenStream(types, src)
	if err != nil {
		return nil, err
	}
	return &Parser{
		stream: stream,
	}, nil
}

// Parse parses src to completion and returns the parser for inspection.
func Parse(src io.Reader) (*Parser, error) {
	p, err := NewParser(src)
	if err != nil {
		return nil, err
	}
	if err := p.Parse(); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse consumes the whole token stream. Syntax errors do not stop the
// parse; they are collected and the offending tokens end up under error
// nodes of the concrete syntax tree.
func (p *Parser) Parse() error {
	p.tb = newTreeBuilder()
	p.synErrs = nil
	p.tb.open("model")
	first := p.stream.peek()
	p.model = &ast.Model{
		Start: ast.Pos{Row: first.Row, Col: first.Col},
	}
	p.parseStatements(&p.model.Statements, false)
	p.shift() // EOF; flushes trailing hidden tokens into the tree
	p.tb.close()
	return nil
}

// CST returns the concrete syntax tree of the last parse.
func (p *Parser) CST() *Node {
	return p.tb.Tree()
}

// Model returns the typed model tree of the last parse.
func (p *Parser) Model() *ast.Model {
	return p.model
}

// SyntaxErrors returns the syntax errors the last parse detected.
func (p *Parser) SyntaxErrors() []*SyntaxError {
	return p.synErrs
}

// shift consumes the lookahead token and appends it to the current tree
// node, preceded by the hidden tokens buffered in front of it. The EOF
// token produces no leaf but still flushes the hidden buffer.
func (p *Parser) shift() *lexer.Token {
	p.stream.peek()
	for _, h := range p.stream.drainHidden() {
		p.tb.leaf(h.KindName, string(h.Lexeme), h.Row, h.Col, true)
	}
	tok := p.stream.next()
	if !tok.EOF {
		name := tok.KindName
		if tok.Invalid {
			name = "invalid"
		}
		p.tb.leaf(name, string(tok.Lexeme), tok.Row, tok.Col, false)
	}
	return tok
}

// accept shifts the lookahead when it has the given kind.
func (p *Parser) accept(kind string) (*lexer.Token, bool) {
	if p.stream.peek().KindName != kind {
		return nil, false
	}
	return p.shift(), true
}

// expect is accept plus a syntax error when the lookahead does not match.
// It never consumes a non-matching token; recovery is the caller's call.
func (p *Parser) expect(kind string) (*lexer.Token, bool) {
	if tok, ok := p.accept(kind); ok {
		return tok, true
	}
	p.syntaxError(p.stream.peek(), kind)
	return nil, false
}

func (p *Parser) syntaxError(tok *lexer.Token, expected ...string) {
	msg := "unexpected token"
	if tok.Invalid {
		msg = "invalid input"
	} else if tok.EOF {
		msg = "unexpected end of source"
	}
	p.synErrs = append(p.synErrs, &SyntaxError{
		Row:               tok.Row,
		Col:               tok.Col,
		Message:           msg,
		Token:             tok,
		ExpectedTerminals: expected,
	})
}

// recoveryBoundary reports whether the parser should stop discarding tokens
// during error recovery: statement starts, closing delimiters, separators,
// and EOF all mark places where a production can resynchronize.
func recoveryBoundary(tok *lexer.Token) bool {
	if tok.EOF {
		return true
	}
	switch tok.KindName {
	case spec.KindKWGraph, spec.KindKWNode, spec.KindKWStyle,
		spec.KindRBrace, spec.KindRBracket, spec.KindComma, spec.KindSemicolon:
		return true
	}
	return false
}

// recover discards tokens up to the next recovery boundary, keeping them in
// the tree under an error node. It may consume nothing; callers that loop
// must guarantee progress themselves.
func (p *Parser) recover() {
	if recoveryBoundary(p.stream.peek()) {
		return
	}
	p.tb.openError()
	for !recoveryBoundary(p.stream.peek()) {
		p.shift()
	}
	p.tb.close()
}

// parseStatements parses statements into stmts until EOF or, when inBlock
// is true, until the closing brace, which is left for the caller.
func (p *Parser) parseStatements(stmts *[]ast.Node, inBlock bool) {
	for {
		tok := p.stream.peek()
		if tok.EOF {
			if inBlock {
				p.syntaxError(tok, spec.KindRBrace)
			}
			return
		}
		if tok.KindName == spec.KindRBrace {
			if inBlock {
				return
			}
			p.syntaxError(tok, spec.KindKWGraph, spec.KindKWNode, spec.KindKWStyle, spec.KindID, spec.KindString)
			p.tb.openError()
			p.shift()
			p.tb.close()
			continue
		}
		p.parseStatement(stmts)
		if p.stream.peek() == tok {
			// The statement consumed nothing; discard one token so the
			// parse always terminates.
			p.tb.openError()
			p.shift()
			p.tb.close()
		}
	}
}

func (p *Parser) parseStatement(stmts *[]ast.Node) {
	tok := p.stream.peek()
	switch tok.KindName {
	case spec.KindKWGraph, spec.KindKWNode:
		if e := p.parseElement(); e != nil {
			*stmts = append(*stmts, e)
		}
	case spec.KindKWStyle:
		if s := p.parseStyle(); s != nil {
			*stmts = append(*stmts, s)
		}
	case spec.KindID, spec.KindString:
		p.parseLink(stmts)
	default:
		p.syntaxError(tok, spec.KindKWGraph, spec.KindKWNode, spec.KindKWStyle, spec.KindID, spec.KindString)
		p.recover()
	}
}

// parseElement parses a node or graph declaration. Every part after the
// keyword is optional; an element consisting of a bare keyword is valid.
func (p *Parser) parseElement() *ast.Element {
	p.tb.open("element")
	defer p.tb.close()

	kw := p.shift()
	e := &ast.Element{
		Start: tokenPos(kw),
	}
	if kw.KindName == spec.KindKWGraph {
		e.Form = ast.FormGraph
	}
	if tok, ok := p.accept(spec.KindID); ok {
		e.ID = string(tok.Lexeme)
	}
	if tok, ok := p.accept(spec.KindString); ok {
		e.Label = unquote(string(tok.Lexeme))
	}
	if p.stream.peek().KindName == spec.KindColon {
		e.StyleRef = p.parseStyleRef()
	}
	if p.stream.peek().KindName == spec.KindLBracket {
		e.Attrs = p.parseAttrList()
	}
	if e.Form == ast.FormGraph && p.stream.peek().KindName == spec.KindLBrace {
		p.parseBlock(e)
	}
	return e
}

func (p *Parser) parseBlock(e *ast.Element) {
	p.tb.open("block")
	defer p.tb.close()

	p.shift() // {
	e.Children = []ast.Node{}
	p.parseStatements(&e.Children, true)
	p.accept(spec.KindRBrace)
}

// parseLink parses an endpoint chain. A chain of n endpoints expands into
// n-1 links sharing the chain's style reference and attributes.
func (p *Parser) parseLink(stmts *[]ast.Node) {
	p.tb.open("link")
	defer p.tb.close()

	var eps []*ast.Endpoint
	if ep := p.parseEndpoint(); ep != nil {
		eps = append(eps, ep)
	}
	if _, ok := p.expect(spec.KindArrow); !ok {
		p.recover()
		return
	}
	if ep := p.parseEndpoint(); ep != nil {
		eps = append(eps, ep)
	}
	for {
		if _, ok := p.accept(spec.KindArrow); !ok {
			break
		}
		if ep := p.parseEndpoint(); ep != nil {
			eps = append(eps, ep)
		}
	}

	var styleRef *ast.Reference
	var attrs []*ast.Attribute
	if p.stream.peek().KindName == spec.KindColon {
		styleRef = p.parseStyleRef()
	}
	if p.stream.peek().KindName == spec.KindLBracket {
		attrs = p.parseAttrList()
	}

	for i := 0; i+1 < len(eps); i++ {
		*stmts = append(*stmts, &ast.Link{
			From:     eps[i],
			To:       eps[i+1],
			StyleRef: styleRef,
			Attrs:    attrs,
			Start:    eps[i].Pos(),
		})
	}
}

// parseEndpoint parses one side of a link: an ID referring to an element
// declared elsewhere, or a string declaring an inline anonymous element.
func (p *Parser) parseEndpoint() *ast.Endpoint {
	p.tb.open("endpoint")
	defer p.tb.close()

	tok := p.stream.peek()
	switch tok.KindName {
	case spec.KindID:
		p.shift()
		return &ast.Endpoint{
			Ref: &ast.Reference{
				Text:  string(tok.Lexeme),
				Start: tokenPos(tok),
			},
		}
	case spec.KindString:
		p.shift()
		return &ast.Endpoint{
			Elem: &ast.Element{
				Form:  ast.FormNode,
				Label: unquote(string(tok.Lexeme)),
				Start: tokenPos(tok),
			},
		}
	}
	p.syntaxError(tok, spec.KindID, spec.KindString)
	p.recover()
	return nil
}

func (p *Parser) parseStyleRef() *ast.Reference {
	p.tb.open("style_ref")
	defer p.tb.close()

	p.shift() // :
	tok, ok := p.expect(spec.KindID)
	if !ok {
		p.recover()
		return nil
	}
	return &ast.Reference{
		Text:  string(tok.Lexeme),
		Start: tokenPos(tok),
	}
}

func (p *Parser) parseAttrList() []*ast.Attribute {
	p.tb.open("attr_list")
	defer p.tb.close()

	p.shift() // [
	var attrs []*ast.Attribute
	for {
		if a := p.parseAttr(); a != nil {
			attrs = append(attrs, a)
		}
		if _, ok := p.accept(spec.KindComma); ok {
			continue
		}
		if _, ok := p.expect(spec.KindRBracket); !ok {
			p.recover()
			p.accept(spec.KindRBracket)
		}
		return attrs
	}
}

func (p *Parser) parseAttr() *ast.Attribute {
	p.tb.open("attr")
	defer p.tb.close()

	key, ok := p.expect(spec.KindID)
	if !ok {
		p.recover()
		return nil
	}
	if _, ok := p.expect(spec.KindColon); !ok {
		p.recover()
		return nil
	}
	v, ok := p.parseValue()
	if !ok {
		return nil
	}
	return &ast.Attribute{
		Key:   string(key.Lexeme),
		Value: v,
		Start: tokenPos(key),
	}
}

func (p *Parser) parseStyle() *ast.Style {
	p.tb.open("style")
	defer p.tb.close()

	kw := p.shift()
	s := &ast.Style{
		Start: tokenPos(kw),
	}
	if tok, ok := p.expect(spec.KindID); ok {
		s.ID = string(tok.Lexeme)
	} else {
		p.recover()
	}
	if _, ok := p.expect(spec.KindLBrace); !ok {
		p.recover()
		if _, ok := p.accept(spec.KindLBrace); !ok {
			return s
		}
	}
	for {
		tok := p.stream.peek()
		if tok.EOF {
			p.syntaxError(tok, spec.KindRBrace)
			return s
		}
		if tok.KindName == spec.KindRBrace {
			p.shift()
			return s
		}
		if prop := p.parseProperty(); prop != nil {
			s.Properties = append(s.Properties, prop)
		} else if p.stream.peek() == tok {
			p.tb.openError()
			p.shift()
			p.tb.close()
		}
		p.accept(spec.KindSemicolon)
	}
}

func (p *Parser) parseProperty() *ast.Property {
	p.tb.open("property")
	defer p.tb.close()

	key, ok := p.expect(spec.KindID)
	if !ok {
		p.recover()
		return nil
	}
	if _, ok := p.expect(spec.KindColon); !ok {
		p.recover()
		return nil
	}
	v, ok := p.parseValue()
	if !ok {
		return nil
	}
	return &ast.Property{
		Key:   string(key.Lexeme),
		Value: v,
		Start: tokenPos(key),
	}
}

func (p *Parser) parseValue() (ast.Value, bool) {
	p.tb.open("value")
	defer p.tb.close()

	tok := p.stream.peek()
	raw := string(tok.Lexeme)
	switch tok.KindName {
	case spec.KindString:
		p.shift()
		return ast.Value{Kind: ast.ValueString, Str: unquote(raw), Raw: raw}, true
	case spec.KindNumber:
		p.shift()
		n, _ := strconv.ParseFloat(raw, 64)
		return ast.Value{Kind: ast.ValueNumber, Num: n, Raw: raw}, true
	case spec.KindColor:
		p.shift()
		return ast.Value{Kind: ast.ValueColor, Color: raw, Raw: raw}, true
	case spec.KindID:
		p.shift()
		return ast.Value{Kind: ast.ValueIdent, Ident: raw, Raw: raw}, true
	}
	p.syntaxError(tok, spec.KindString, spec.KindNumber, spec.KindColor, spec.KindID)
	p.recover()
	return ast.Value{}, false
}

func tokenPos(tok *lexer.Token) ast.Pos {
	return ast.Pos{Row: tok.Row, Col: tok.Col}
}

// unquote strips the quotes of a string lexeme and processes its escapes.
// Unknown escapes resolve to the escaped character itself.
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	s := raw[1 : len(raw)-1]
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
