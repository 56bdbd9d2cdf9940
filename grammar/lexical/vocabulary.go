package lexical

import (
	"bytes"
	"errors"
	"regexp"
)

// Group classifies how a token type participates in parsing.
type Group int

const (
	// GroupNone marks significant tokens. They drive the phrase structure.
	GroupNone Group = iota

	// GroupSkipped marks tokens the lexer consumes and discards. They never
	// reach the parser, so a tree built from the token stream cannot
	// reproduce the source text exactly.
	GroupSkipped

	// GroupHidden marks tokens that are insignificant to the phrase
	// structure but still emitted. A parser can keep them as tree leaves,
	// which preserves layout and comments through the tree.
	GroupHidden
)

func (g Group) String() string {
	switch g {
	case GroupSkipped:
		return "skipped"
	case GroupHidden:
		return "hidden"
	}
	return "none"
}

// MatchFunc is a hand-written or wrapped matcher. It reports the length in
// bytes of the prefix of src belonging to the token, or 0 when the token
// does not match. Match functions may consume line breaks.
type MatchFunc func(src []byte) int

// TokenType is one entry of a token vocabulary. Exactly one of Literal,
// Pattern, and Matcher drives matching: Literal for keyword spellings,
// Pattern for terminals with a compiled pattern, Matcher for terminals that
// need a match function.
type TokenType struct {
	Name    string
	Literal string
	Pattern *regexp.Regexp
	Matcher MatchFunc

	// LineBreaks reports whether a lexeme of this type can contain line
	// breaks. It is set exactly for matcher-backed types; compiled patterns
	// and literals are assumed to stay within one line.
	LineBreaks bool

	Group Group
}

// Match reports the length in bytes of the prefix of src this token type
// matches, or 0 when it does not match.
func (t *TokenType) Match(src []byte) int {
	switch {
	case t.Matcher != nil:
		return t.Matcher(src)
	case t.Pattern != nil:
		loc := t.Pattern.FindIndex(src)
		if loc == nil {
			return 0
		}
		return loc[1]
	case t.Literal != "":
		if bytes.HasPrefix(src, []byte(t.Literal)) {
			return len(t.Literal)
		}
	}
	return 0
}

// Vocabulary is the result shape of a token builder. Lexers for languages
// without lexer modes consume the ordered TokenTypes form; ModalVocabulary
// exists for mode-switching lexers.
type Vocabulary interface {
	vocabulary()
}

// TokenTypes is an ordered token type array. Order is the lexer's
// tie-breaker: when two types match a lexeme of the same length, the
// earlier one wins.
type TokenTypes []*TokenType

func (TokenTypes) vocabulary() {}

// Index returns the position of the token type named name, or -1.
func (ts TokenTypes) Index(name string) int {
	for i, t := range ts {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// ModalVocabulary maps lexer mode names to the token types active in that
// mode.
type ModalVocabulary map[string]TokenTypes

func (ModalVocabulary) vocabulary() {}

// ErrMalformedVocabulary indicates a token builder returned something other
// than an ordered token type array. This is a definition-time fault, not an
// input error, so callers must treat it as fatal.
var ErrMalformedVocabulary = errors.New("malformed token vocabulary")
