package highlight

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"
)

func TestTokens(t *testing.T) {
	src := []byte("graph g { // c\n    a -> b @\n}\n")
	toks, err := Tokens(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Every byte of the source is covered, hidden tokens included.
	var b strings.Builder
	for _, tok := range toks {
		b.WriteString(tok.Value)
	}
	if b.String() != string(src) {
		t.Fatalf("token values do not cover the source;\nwant: %#v\ngot:  %#v", string(src), b.String())
	}

	wantTypes := map[string]chroma.TokenType{
		"graph": chroma.Keyword,
		"g":     chroma.Name,
		"{":     chroma.Punctuation,
		"// c":  chroma.CommentSingle,
		"->":    chroma.Operator,
		"@":     chroma.Error,
	}
	for _, tok := range toks {
		want, ok := wantTypes[tok.Value]
		if !ok {
			continue
		}
		if tok.Type != want {
			t.Fatalf("unexpected token type for %q; want: %v, got: %v", tok.Value, want, tok.Type)
		}
		delete(wantTypes, tok.Value)
	}
	if len(wantTypes) > 0 {
		t.Fatalf("tokens not seen: %v", wantTypes)
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHTML(&buf, []byte("node a\n"), "monokai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<html>") || !strings.Contains(out, "node") {
		t.Fatalf("unexpected HTML output: %v", out)
	}
}

func TestWriteTerminal(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTerminal(&buf, []byte("node a\n"), "monokai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "node") {
		t.Fatalf("unexpected terminal output: %v", buf.String())
	}
}
