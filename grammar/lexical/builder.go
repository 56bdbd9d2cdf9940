package lexical

import (
	"bytes"
	"fmt"
	"regexp"
	"regexp/syntax"
	"sort"
	"sync"

	spec "github.com/knotlang/knot/spec/grammar"
)

// TokenBuilder produces a token vocabulary from grammar rules.
type TokenBuilder interface {
	BuildVocabulary(g *spec.Grammar) (Vocabulary, error)
	BuildTerminalToken(rule *spec.TerminalRule) (*TokenType, error)
}

// DefaultBuilder derives a token vocabulary from grammar rules the generic
// way: keyword types first, longer spellings before shorter ones, then one
// type per terminal rule in definition order. Hidden terminals are
// classified as skipped, so a lexer driven by the default vocabulary
// discards layout and comments.
type DefaultBuilder struct {
	// Scanners supplies hand-written matchers for terminals whose pattern
	// source cannot be compiled. Keys are terminal rule names.
	Scanners map[string]MatchFunc

	// Terminal, when set, replaces BuildTerminalToken during vocabulary
	// builds. A customized builder hooks per-terminal construction here
	// while reusing the default build loop.
	Terminal func(rule *spec.TerminalRule) (*TokenType, error)
}

// BuildVocabulary builds the vocabulary for every keyword and terminal rule
// of g.
func (b *DefaultBuilder) BuildVocabulary(g *spec.Grammar) (Vocabulary, error) {
	var types TokenTypes

	kws := make([]*spec.KeywordRule, len(g.Keywords))
	copy(kws, g.Keywords)
	sort.SliceStable(kws, func(i, j int) bool {
		return len(kws[i].Literal) > len(kws[j].Literal)
	})
	for _, kw := range kws {
		types = append(types, &TokenType{
			Name:    kw.Name,
			Literal: kw.Literal,
		})
	}

	build := b.BuildTerminalToken
	if b.Terminal != nil {
		build = b.Terminal
	}
	for _, rule := range g.Terminals {
		tok, err := build(rule)
		if err != nil {
			return nil, err
		}
		types = append(types, tok)
	}

	return types, nil
}

// BuildTerminalToken builds the token type for one terminal rule. The
// line-break flag is set exactly when the derived pattern is a match
// function; functions are assumed capable of multi-line matches, compiled
// patterns are assumed not to span lines.
func (b *DefaultBuilder) BuildTerminalToken(rule *spec.TerminalRule) (*TokenType, error) {
	pattern, matcher, err := DerivePattern(rule, b.Scanners[rule.Name])
	if err != nil {
		return nil, err
	}
	tok := &TokenType{
		Name:       rule.Name,
		Pattern:    pattern,
		Matcher:    matcher,
		LineBreaks: matcher != nil,
	}
	if rule.Hidden {
		tok.Group = GroupSkipped
	}
	return tok, nil
}

// DerivePattern turns a terminal rule's pattern source into a runnable
// matcher: either a compiled pattern anchored at the scan position or a
// match function. A match function is substituted in two cases. When the
// source does not compile, the rule's registered scanner carries the
// behavior; without one the rule is not expressible and derivation fails.
// When the compiled pattern can consume a line feed, the pattern is
// wrapped, so that compiled patterns never span lines and the lexer's
// single-line position arithmetic stays valid for them.
func DerivePattern(rule *spec.TerminalRule, scanner MatchFunc) (*regexp.Regexp, MatchFunc, error) {
	re, err := regexp.Compile(`\A(?:` + rule.Pattern + `)`)
	if err != nil {
		if scanner == nil {
			return nil, nil, fmt.Errorf("terminal %v: pattern is not expressible as a plain pattern and no scanner is registered: %w", rule.Name, err)
		}
		return nil, scanner, nil
	}
	if patternSpansLines(rule.Pattern) {
		fn := func(src []byte) int {
			loc := re.FindIndex(src)
			if loc == nil {
				return 0
			}
			return loc[1]
		}
		return nil, fn, nil
	}
	return re, nil, nil
}

// patternSpansLines reports whether a pattern can consume a line feed
// anywhere in a match.
func patternSpansLines(pattern string) bool {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return true
	}
	return canMatchLineFeed(re)
}

func canMatchLineFeed(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpLiteral:
		for _, r := range re.Rune {
			if r == '\n' {
				return true
			}
		}
	case syntax.OpCharClass:
		for i := 0; i+1 < len(re.Rune); i += 2 {
			if re.Rune[i] <= '\n' && '\n' <= re.Rune[i+1] {
				return true
			}
		}
	case syntax.OpAnyChar:
		return true
	}
	for _, sub := range re.Sub {
		if canMatchLineFeed(sub) {
			return true
		}
	}
	return false
}

// Builder is the knot token builder. It reuses the default builder through
// composition and diverges from it in exactly two ways: the produced
// vocabulary must be an ordered token type array, and hidden terminals are
// classified as hidden rather than skipped, so the parser receives layout
// and comments and can keep them as tree leaves. That retention is what
// makes exact source-text reconstruction from a tree possible.
type Builder struct {
	delegate TokenBuilder
}

// NewBuilder returns the token builder for the knot language.
func NewBuilder() *Builder {
	b := &Builder{}
	d := &DefaultBuilder{
		Scanners: map[string]MatchFunc{
			spec.KindMLComment: matchBlockComment,
		},
	}
	d.Terminal = b.BuildTerminalToken
	b.delegate = d
	return b
}

// BuildVocabulary builds the vocabulary for g and validates its shape: the
// result must be an ordered token type array with no gaps. Any other shape
// means the builder configuration itself is broken, so the error wraps
// ErrMalformedVocabulary and must be treated as fatal rather than retried.
// A valid array is returned unchanged; this builder never reorders or
// filters token types.
func (b *Builder) BuildVocabulary(g *spec.Grammar) (TokenTypes, error) {
	v, err := b.delegate.BuildVocabulary(g)
	if err != nil {
		return nil, err
	}
	switch types := v.(type) {
	case TokenTypes:
		if types == nil {
			return nil, fmt.Errorf("%w: token builder produced a nil token type array", ErrMalformedVocabulary)
		}
		for i, t := range types {
			if t == nil {
				return nil, fmt.Errorf("%w: entry #%v is not a token type", ErrMalformedVocabulary, i)
			}
		}
		return types, nil
	case ModalVocabulary:
		return nil, fmt.Errorf("%w: token builder produced a mode-keyed vocabulary, want an ordered token type array", ErrMalformedVocabulary)
	case nil:
		return nil, fmt.Errorf("%w: token builder produced nothing, want an ordered token type array", ErrMalformedVocabulary)
	default:
		return nil, fmt.Errorf("%w: token builder produced %T, want an ordered token type array", ErrMalformedVocabulary, v)
	}
}

// BuildTerminalToken builds the token type for one terminal rule, deriving
// the pattern the default way and then applying the knot classification:
// hidden terminals become hidden, not skipped.
func (b *Builder) BuildTerminalToken(rule *spec.TerminalRule) (*TokenType, error) {
	tok, err := b.delegate.BuildTerminalToken(rule)
	if err != nil {
		return nil, err
	}
	if rule.Hidden {
		tok.Group = GroupHidden
	}
	return tok, nil
}

// matchBlockComment scans a block comment spanning any number of lines.
// An unterminated comment does not match; the lexer then reports the
// remainder as invalid input.
func matchBlockComment(src []byte) int {
	if !bytes.HasPrefix(src, []byte("/*")) {
		return 0
	}
	if i := bytes.Index(src[2:], []byte("*/")); i >= 0 {
		return i + 4
	}
	return 0
}

var (
	knotOnce  sync.Once
	knotTypes TokenTypes
	knotErr   error
)

// KnotVocabulary returns the token vocabulary of the knot grammar. It is
// built once per process and shared by all callers; the vocabulary is
// immutable after construction.
func KnotVocabulary() (TokenTypes, error) {
	knotOnce.Do(func() {
		knotTypes, knotErr = NewBuilder().BuildVocabulary(spec.Knot())
	})
	return knotTypes, knotErr
}
