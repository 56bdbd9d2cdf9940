package lexical

import (
	"errors"
	"fmt"
	"testing"

	spec "github.com/knotlang/knot/spec/grammar"
)

func testGrammar() *spec.Grammar {
	return &spec.Grammar{
		Name: "test",
		Terminals: []*spec.TerminalRule{
			{Name: "ws", Pattern: `[\t\n ]+`, Hidden: true},
			{Name: "id", Pattern: `[a-z]+`},
		},
		Keywords: []*spec.KeywordRule{
			{Name: "kw_node", Literal: "node"},
			{Name: "l_brace", Literal: "{"},
		},
	}
}

func TestBuilder_BuildTerminalToken(t *testing.T) {
	tests := []struct {
		rule       *spec.TerminalRule
		group      Group
		lineBreaks bool
		fn         bool
		errMsg     bool
	}{
		// A hidden terminal is classified as hidden, never skipped.
		{
			rule:       &spec.TerminalRule{Name: "ws", Pattern: `[\t\n ]+`, Hidden: true},
			group:      GroupHidden,
			lineBreaks: true,
			fn:         true,
		},
		// A significant terminal stays unclassified.
		{
			rule:  &spec.TerminalRule{Name: "id", Pattern: `[a-z]+`},
			group: GroupNone,
		},
		// A single-line hidden terminal keeps its compiled pattern.
		{
			rule:  &spec.TerminalRule{Name: "sl_comment", Pattern: `//[^\n]*`, Hidden: true},
			group: GroupHidden,
		},
		// A pattern that can consume a line break is wrapped in a match
		// function even when it is significant.
		{
			rule:       &spec.TerminalRule{Name: "raw_text", Pattern: `<<(?:[^>]|\n)*>>`},
			group:      GroupNone,
			lineBreaks: true,
			fn:         true,
		},
		// An inexpressible pattern without a registered scanner fails.
		{
			rule:   &spec.TerminalRule{Name: "broken", Pattern: `a(?=b)`},
			errMsg: true,
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.rule.Name), func(t *testing.T) {
			b := NewBuilder()
			tok, err := b.BuildTerminalToken(tt.rule)
			if tt.errMsg {
				if err == nil {
					t.Fatalf("expected an error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tok.Name != tt.rule.Name {
				t.Fatalf("unexpected name; want: %v, got: %v", tt.rule.Name, tok.Name)
			}
			if tok.Group != tt.group {
				t.Fatalf("unexpected group; want: %v, got: %v", tt.group, tok.Group)
			}
			if tok.LineBreaks != tt.lineBreaks {
				t.Fatalf("unexpected line-break flag; want: %v, got: %v", tt.lineBreaks, tok.LineBreaks)
			}
			if tt.fn && tok.Matcher == nil {
				t.Fatalf("expected a match function, got a compiled pattern")
			}
			if !tt.fn && tok.Pattern == nil {
				t.Fatalf("expected a compiled pattern, got a match function")
			}
		})
	}
}

// The default builder classifies the same hidden rule as skipped; the knot
// builder's divergence is exactly the hidden classification.
func TestDefaultBuilder_BuildTerminalToken(t *testing.T) {
	d := &DefaultBuilder{}
	tok, err := d.BuildTerminalToken(&spec.TerminalRule{Name: "ws", Pattern: `[\t\n ]+`, Hidden: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Group != GroupSkipped {
		t.Fatalf("unexpected group; want: %v, got: %v", GroupSkipped, tok.Group)
	}
	if !tok.LineBreaks || tok.Matcher == nil {
		t.Fatalf("expected a line-breaking match function, got: %+v", tok)
	}
}

func TestBuilder_BuildVocabulary(t *testing.T) {
	b := NewBuilder()
	types, err := b.BuildVocabulary(testGrammar())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := []string{}
	for _, tok := range types {
		names = append(names, tok.Name)
	}
	wantOrder := []string{"kw_node", "l_brace", "ws", "id"}
	if len(names) != len(wantOrder) {
		t.Fatalf("unexpected vocabulary; want: %#v, got: %#v", wantOrder, names)
	}
	for i, name := range wantOrder {
		if names[i] != name {
			t.Fatalf("unexpected vocabulary order; want: %#v, got: %#v", wantOrder, names)
		}
	}

	ws := types[types.Index("ws")]
	if ws.Group != GroupHidden || !ws.LineBreaks || ws.Matcher == nil {
		t.Fatalf("unexpected ws token type: %+v", ws)
	}
	id := types[types.Index("id")]
	if id.Group != GroupNone || id.LineBreaks || id.Pattern == nil {
		t.Fatalf("unexpected id token type: %+v", id)
	}
	kw := types[types.Index("kw_node")]
	if kw.Literal != "node" || kw.Group != GroupNone {
		t.Fatalf("unexpected keyword token type: %+v", kw)
	}
}

type stubBuilder struct {
	v Vocabulary
}

func (b *stubBuilder) BuildVocabulary(g *spec.Grammar) (Vocabulary, error) {
	return b.v, nil
}

func (b *stubBuilder) BuildTerminalToken(rule *spec.TerminalRule) (*TokenType, error) {
	return &TokenType{Name: rule.Name}, nil
}

func TestBuilder_BuildVocabulary_malformed(t *testing.T) {
	tests := []struct {
		caption string
		v       Vocabulary
	}{
		{
			caption: "a mode-keyed vocabulary is not an ordered array",
			v: ModalVocabulary{
				"default": TokenTypes{},
			},
		},
		{
			caption: "a missing vocabulary is malformed",
			v:       nil,
		},
		{
			caption: "a nil array is malformed",
			v:       TokenTypes(nil),
		},
		{
			caption: "an array with a gap is malformed",
			v:       TokenTypes{{Name: "id"}, nil},
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.caption), func(t *testing.T) {
			b := &Builder{delegate: &stubBuilder{v: tt.v}}
			_, err := b.BuildVocabulary(testGrammar())
			if err == nil {
				t.Fatalf("expected an error, got none")
			}
			if !errors.Is(err, ErrMalformedVocabulary) {
				t.Fatalf("unexpected error; want: %v, got: %v", ErrMalformedVocabulary, err)
			}
		})
	}
}

// Building a vocabulary from the same grammar twice yields structurally
// equal results.
func TestBuilder_BuildVocabulary_deterministic(t *testing.T) {
	a, err := NewBuilder().BuildVocabulary(testGrammar())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewBuilder().BuildVocabulary(testGrammar())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("unexpected vocabulary size; want: %v, got: %v", len(a), len(b))
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.Name != y.Name || x.Literal != y.Literal || x.Group != y.Group || x.LineBreaks != y.LineBreaks {
			t.Fatalf("entry #%v differs; want: %+v, got: %+v", i, x, y)
		}
		if (x.Pattern == nil) != (y.Pattern == nil) || (x.Matcher == nil) != (y.Matcher == nil) {
			t.Fatalf("entry #%v differs in pattern backing", i)
		}
		if x.Pattern != nil && x.Pattern.String() != y.Pattern.String() {
			t.Fatalf("entry #%v differs; want: %v, got: %v", i, x.Pattern, y.Pattern)
		}
	}
}

func TestKnotVocabulary(t *testing.T) {
	types, err := KnotVocabulary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := KnotVocabulary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if &types[0] != &again[0] {
		t.Fatalf("KnotVocabulary must return the shared instance")
	}

	tests := []struct {
		name       string
		group      Group
		lineBreaks bool
	}{
		{name: spec.KindWS, group: GroupHidden, lineBreaks: true},
		{name: spec.KindMLComment, group: GroupHidden, lineBreaks: true},
		{name: spec.KindSLComment, group: GroupHidden},
		{name: spec.KindID, group: GroupNone},
		{name: spec.KindString, group: GroupNone},
		{name: spec.KindNumber, group: GroupNone},
		{name: spec.KindColor, group: GroupNone},
		{name: spec.KindKWGraph, group: GroupNone},
		{name: spec.KindArrow, group: GroupNone},
	}
	for _, tt := range tests {
		i := types.Index(tt.name)
		if i < 0 {
			t.Fatalf("token type %v is not in the vocabulary", tt.name)
		}
		tok := types[i]
		if tok.Group != tt.group {
			t.Fatalf("%v: unexpected group; want: %v, got: %v", tt.name, tt.group, tok.Group)
		}
		if tok.LineBreaks != tt.lineBreaks {
			t.Fatalf("%v: unexpected line-break flag; want: %v, got: %v", tt.name, tt.lineBreaks, tok.LineBreaks)
		}
	}

	// Keywords precede terminals, and longer keywords precede shorter ones.
	if !(types.Index(spec.KindKWGraph) < types.Index(spec.KindKWNode)) {
		t.Fatalf("kw_graph must precede kw_node")
	}
	if !(types.Index(spec.KindKWNode) < types.Index(spec.KindArrow)) {
		t.Fatalf("kw_node must precede arrow")
	}
	if !(types.Index(spec.KindArrow) < types.Index(spec.KindWS)) {
		t.Fatalf("keywords must precede terminals")
	}
}

func TestTokenType_Match(t *testing.T) {
	b := NewBuilder()
	mustBuild := func(rule *spec.TerminalRule) *TokenType {
		tok, err := b.BuildTerminalToken(rule)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return tok
	}
	id := mustBuild(&spec.TerminalRule{Name: "id", Pattern: `[a-z]+`})
	ws := mustBuild(&spec.TerminalRule{Name: "ws", Pattern: `[\t\n ]+`, Hidden: true})
	ml := mustBuild(&spec.TerminalRule{Name: spec.KindMLComment, Pattern: `/\*(?:(?!\*/)[\s\S])*\*/`, Hidden: true})
	kw := &TokenType{Name: "kw_node", Literal: "node"}

	tests := []struct {
		tok *TokenType
		src string
		len int
	}{
		{tok: id, src: "abc 123", len: 3},
		{tok: id, src: "123", len: 0},
		{tok: ws, src: " \n\tx", len: 3},
		{tok: ws, src: "x", len: 0},
		{tok: ml, src: "/* a\nb */x", len: 9},
		{tok: ml, src: "/* unterminated", len: 0},
		{tok: ml, src: "// no", len: 0},
		{tok: kw, src: "node x", len: 4},
		{tok: kw, src: "nod", len: 0},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.tok.Name), func(t *testing.T) {
			if n := tt.tok.Match([]byte(tt.src)); n != tt.len {
				t.Fatalf("unexpected match length; want: %v, got: %v", tt.len, n)
			}
		})
	}
}
