package highlight

import (
	"bytes"
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/knotlang/knot/driver/lexer"
	"github.com/knotlang/knot/grammar/lexical"
	spec "github.com/knotlang/knot/spec/grammar"
)

// tokenTypes maps knot token kinds onto chroma's token taxonomy. Kinds
// without an entry render as plain text.
var tokenTypes = map[string]chroma.TokenType{
	spec.KindWS:        chroma.TextWhitespace,
	spec.KindMLComment: chroma.CommentMultiline,
	spec.KindSLComment: chroma.CommentSingle,
	spec.KindID:        chroma.Name,
	spec.KindString:    chroma.LiteralString,
	spec.KindNumber:    chroma.LiteralNumber,
	spec.KindColor:     chroma.LiteralNumberHex,
	spec.KindKWGraph:   chroma.Keyword,
	spec.KindKWNode:    chroma.Keyword,
	spec.KindKWStyle:   chroma.Keyword,
	spec.KindArrow:     chroma.Operator,
	spec.KindLBrace:    chroma.Punctuation,
	spec.KindRBrace:    chroma.Punctuation,
	spec.KindLBracket:  chroma.Punctuation,
	spec.KindRBracket:  chroma.Punctuation,
	spec.KindColon:     chroma.Punctuation,
	spec.KindComma:     chroma.Punctuation,
	spec.KindSemicolon: chroma.Punctuation,
}

// Tokens lexes src with the knot vocabulary and returns the corresponding
// chroma tokens. Hidden tokens are included, so the token values
// concatenate back to src and the rendering covers every byte. Invalid
// input renders as error tokens instead of failing.
func Tokens(src []byte) ([]chroma.Token, error) {
	types, err := lexical.KnotVocabulary()
	if err != nil {
		return nil, err
	}
	lex, err := lexer.NewLexer(types, bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	var toks []chroma.Token
	for {
		tok := lex.Next()
		if tok.EOF {
			return toks, nil
		}
		t := chroma.Error
		if !tok.Invalid {
			if tt, ok := tokenTypes[tok.KindName]; ok {
				t = tt
			} else {
				t = chroma.Text
			}
		}
		toks = append(toks, chroma.Token{Type: t, Value: string(tok.Lexeme)})
	}
}

// WriteHTML renders src as a standalone highlighted HTML document using
// the named chroma style.
func WriteHTML(w io.Writer, src []byte, styleName string) error {
	toks, err := Tokens(src)
	if err != nil {
		return err
	}
	f := html.New(html.Standalone(true), html.WithLineNumbers(true))
	return f.Format(w, style(styleName), chroma.Literator(toks...))
}

// WriteTerminal renders src with ANSI colors using the named chroma style.
func WriteTerminal(w io.Writer, src []byte, styleName string) error {
	toks, err := Tokens(src)
	if err != nil {
		return err
	}
	f := formatters.Get("terminal256")
	if f == nil {
		return fmt.Errorf("no terminal formatter is available")
	}
	return f.Format(w, style(styleName), chroma.Literator(toks...))
}

func style(name string) *chroma.Style {
	if s := styles.Get(name); s != nil {
		return s
	}
	return styles.Fallback
}
