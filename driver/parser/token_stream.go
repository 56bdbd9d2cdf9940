package parser

import (
	"io"

	"github.com/knotlang/knot/driver/lexer"
	"github.com/knotlang/knot/grammar/lexical"
)

// tokenStream feeds the parser significant tokens while buffering the
// hidden tokens that precede them. The parser drains the buffer into tree
// leaves just before it shifts the significant token, which keeps hidden
// tokens at their source positions in the tree.
type tokenStream struct {
	lex       *lexer.Lexer
	lookahead *lexer.Token
	hidden    []*lexer.Token
}

func newTokenStream(types lexical.TokenTypes, src io.Reader) (*tokenStream, error) {
	lex, err := lexer.NewLexer(types, src)
	if err != nil {
		return nil, err
	}
	return &tokenStream{
		lex: lex,
	}, nil
}

// peek returns the next significant, invalid, or EOF token without
// consuming it.
func (s *tokenStream) peek() *lexer.Token {
	if s.lookahead != nil {
		return s.lookahead
	}
	for {
		tok := s.lex.Next()
		if tok.Hidden {
			s.hidden = append(s.hidden, tok)
			continue
		}
		s.lookahead = tok
		return tok
	}
}

// next consumes and returns the token peek would return.
func (s *tokenStream) next() *lexer.Token {
	tok := s.peek()
	s.lookahead = nil
	return tok
}

// drainHidden returns the hidden tokens collected in front of the current
// lookahead and clears the buffer.
func (s *tokenStream) drainHidden() []*lexer.Token {
	toks := s.hidden
	s.hidden = nil
	return toks
}
