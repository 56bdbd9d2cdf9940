package lexer

import (
	"io"
	"unicode/utf8"

	"github.com/knotlang/knot/grammar/lexical"
)

// Token represents a token.
type Token struct {
	// KindID is the index of the token's type in the vocabulary driving the
	// lexer. It is negative for EOF and invalid tokens.
	KindID int

	// KindName is the name of the token's type.
	KindName string

	// Row is a row number where a lexeme appears.
	Row int

	// Col is a column number where a lexeme appears.
	// Note that Col is counted in code points, not bytes.
	Col int

	// BytePos is a byte position where a lexeme appears.
	BytePos int

	// ByteLen is a length of a lexeme in bytes.
	ByteLen int

	// Lexeme is a byte sequence matched by the token's type.
	Lexeme []byte

	// Hidden is true when the token's type is classified as hidden. Hidden
	// tokens are emitted so a parser can keep them as tree leaves, but they
	// carry no phrase structure.
	Hidden bool

	// When this field is true, it means the token is the EOF token.
	EOF bool

	// When this field is true, it means the token is an error token.
	Invalid bool
}

// Lexer is a scanner driven by a token vocabulary. At each position it
// applies every token type and takes the longest match; ties go to the
// earlier type, which is how keywords win over identifiers of the same
// spelling. Skipped token types are consumed and never emitted. A run of
// bytes no type matches is emitted as one invalid token.
type Lexer struct {
	types lexical.TokenTypes
	src   []byte
	pos   int
	row   int
	col   int
}

// NewLexer returns a new lexer reading src under the given vocabulary.
func NewLexer(types lexical.TokenTypes, src io.Reader) (*Lexer, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return &Lexer{
		types: types,
		src:   b,
	}, nil
}

// Next returns a next token. After the end of the source text it keeps
// returning the EOF token.
func (l *Lexer) Next() *Token {
	for {
		tok := l.next()
		if tok.EOF || tok.Invalid {
			return tok
		}
		if l.types[tok.KindID].Group == lexical.GroupSkipped {
			continue
		}
		return tok
	}
}

func (l *Lexer) next() *Token {
	row := l.row
	col := l.col
	pos := l.pos
	if pos >= len(l.src) {
		return &Token{
			KindID:  -1,
			Row:     row,
			Col:     col,
			BytePos: pos,
			EOF:     true,
		}
	}

	rest := l.src[pos:]
	kind := -1
	length := 0
	for i, t := range l.types {
		if n := t.Match(rest); n > length {
			kind = i
			length = n
		}
	}
	if kind < 0 {
		lexeme := l.invalidRun()
		l.advance(lexeme, true)
		return &Token{
			KindID:  -1,
			Row:     row,
			Col:     col,
			BytePos: pos,
			ByteLen: len(lexeme),
			Lexeme:  lexeme,
			Invalid: true,
		}
	}

	t := l.types[kind]
	lexeme := rest[:length]
	l.advance(lexeme, t.LineBreaks)
	return &Token{
		KindID:   kind,
		KindName: t.Name,
		Row:      row,
		Col:      col,
		BytePos:  pos,
		ByteLen:  length,
		Lexeme:   lexeme,
		Hidden:   t.Group == lexical.GroupHidden,
	}
}

// invalidRun collects the maximal run of runes starting at the current
// position that no token type matches.
func (l *Lexer) invalidRun() []byte {
	end := l.pos
	for end < len(l.src) {
		rest := l.src[end:]
		if end > l.pos {
			matched := false
			for _, t := range l.types {
				if t.Match(rest) > 0 {
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		_, n := utf8.DecodeRune(rest)
		end += n
	}
	return l.src[l.pos:end]
}

// advance moves the scan position past lexeme. When scanLines is false the
// lexeme is known not to contain line feeds, so the column advances by the
// lexeme's code point count. Otherwise the bytes are walked one by one.
//
// The lexer treats LF as the end of lines and counts columns in code
// points, not bytes. To count in code points, we refer to the First Byte
// column in the Table 3-6.
//
// Reference:
// - [Table 3-6] https://www.unicode.org/versions/Unicode13.0.0/ch03.pdf > Table 3-6. UTF-8 Bit Distribution
func (l *Lexer) advance(lexeme []byte, scanLines bool) {
	l.pos += len(lexeme)
	if !scanLines {
		l.col += utf8.RuneCount(lexeme)
		return
	}
	for _, b := range lexeme {
		if b < 128 {
			// 0x0A is LF.
			if b == 0x0A {
				l.row++
				l.col = 0
			} else {
				l.col++
			}
		} else if b>>5 == 6 || b>>4 == 14 || b>>3 == 30 {
			l.col++
		}
	}
}
