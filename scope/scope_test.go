package scope

import (
	"fmt"
	"strings"
	"testing"

	"github.com/knotlang/knot/ast"
	"github.com/knotlang/knot/driver/parser"
)

func buildSource(t *testing.T, src string) *Resolution {
	t.Helper()
	p, err := parser.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.SyntaxErrors()) > 0 {
		t.Fatalf("unexpected syntax errors: %+v", p.SyntaxErrors()[0])
	}
	return Build(p.Model(), nil)
}

func diagnosticMessages(res *Resolution) []string {
	var msgs []string
	for _, d := range res.Diagnostics {
		msgs = append(msgs, fmt.Sprintf("%v: %v", d.Severity, d.Message))
	}
	return msgs
}

func TestBuild(t *testing.T) {
	res := buildSource(t, `
graph pipeline {
    node checkout
    node build: accent
    checkout -> build
}
style accent { fill: #1e90ff }
`)
	if len(res.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diagnosticMessages(res))
	}

	root := res.Root
	if sym := root.Local("pipeline"); sym == nil || sym.Kind != SymbolElement {
		t.Fatalf("unexpected symbol for pipeline: %+v", sym)
	}
	if sym := root.Local("accent"); sym == nil || sym.Kind != SymbolStyle {
		t.Fatalf("unexpected symbol for accent: %+v", sym)
	}
	// Nodes declared inside the graph live in its scope, not the document's.
	if root.Local("checkout") != nil {
		t.Fatalf("checkout must not be declared at the document level")
	}
	if len(root.Children()) != 1 {
		t.Fatalf("unexpected child scope count; want: 1, got: %v", len(root.Children()))
	}
	inner := root.Children()[0]
	if inner.Owner() == nil || inner.Owner().ID != "pipeline" {
		t.Fatalf("unexpected scope owner: %+v", inner.Owner())
	}
	if sym := inner.Local("checkout"); sym == nil {
		t.Fatalf("checkout must be declared in the graph scope")
	}
	// Lookup walks outward.
	if sym := inner.Lookup("accent"); sym == nil || sym.Kind != SymbolStyle {
		t.Fatalf("accent must be visible from the graph scope: %+v", sym)
	}
	// Every reference resolved: the link's two endpoints and the style ref.
	if len(res.Bindings) != 3 {
		t.Fatalf("unexpected binding count; want: 3, got: %v", len(res.Bindings))
	}
}

func TestBuild_diagnostics(t *testing.T) {
	tests := []struct {
		caption  string
		src      string
		severity Severity
		fragment string
	}{
		{
			caption:  "duplicate element names collide",
			src:      "node a\nnode a\na -> a",
			severity: SeverityError,
			fragment: "already declared",
		},
		{
			caption:  "an unresolved endpoint is reported",
			src:      "node a\na -> ghost",
			severity: SeverityError,
			fragment: "undefined element ghost",
		},
		{
			caption:  "an unresolved style ref is reported",
			src:      "node a: ghost\nnode b\na -> b",
			severity: SeverityError,
			fragment: "undefined style ghost",
		},
		{
			caption:  "a style used as an endpoint is a kind mismatch",
			src:      "style s { fill: red }\nnode a: s\na -> s",
			severity: SeverityError,
			fragment: "s is a style, not an element",
		},
		{
			caption:  "an element used as a style is a kind mismatch",
			src:      "node a\nnode b: a\na -> b",
			severity: SeverityError,
			fragment: "a is an element, not a style",
		},
		{
			caption:  "an unused style is a warning",
			src:      "node a\nnode b\na -> b\nstyle lonely { fill: red }",
			severity: SeverityWarning,
			fragment: "lonely is declared but never used",
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.caption), func(t *testing.T) {
			res := buildSource(t, tt.src)
			for _, d := range res.Diagnostics {
				if d.Severity == tt.severity && strings.Contains(d.Message, tt.fragment) {
					return
				}
			}
			t.Fatalf("no diagnostic matched %q (%v); got: %v", tt.fragment, tt.severity, diagnosticMessages(res))
		})
	}
}

// An inner declaration shadows an outer one; endpoints resolve to the
// innermost declaration of the name.
func TestBuild_innermostFirst(t *testing.T) {
	res := buildSource(t, `
node x
graph g {
    node x
    node y
    x -> y
}
`)
	if len(res.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diagnosticMessages(res))
	}
	inner := res.Root.Children()[0]
	want := inner.Local("x")
	var bound *Symbol
	for ref, sym := range res.Bindings {
		if ref.Text == "x" {
			bound = sym
		}
	}
	if bound == nil || bound != want {
		t.Fatalf("x must resolve to the inner declaration; want: %+v, got: %+v", want, bound)
	}
}

// Styles always land in the document scope, so a style declared inside a
// graph is usable anywhere, and nested graphs see document-level styles.
func TestBuild_stylesLiveInDocumentScope(t *testing.T) {
	res := buildSource(t, `
graph outer {
    style deep { fill: red }
    graph inner {
        node a: accent
        node b: deep
        a -> b
    }
}
style accent { fill: blue }
`)
	if len(res.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diagnosticMessages(res))
	}
	if res.Root.Local("deep") == nil {
		t.Fatalf("deep must be declared at the document level")
	}
}

func TestResolution_DefinitionOf(t *testing.T) {
	p, err := parser.Parse(strings.NewReader("node a\nnode b\na -> b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := Build(p.Model(), nil)

	link := p.Model().Statements[2].(*ast.Link)
	def := res.DefinitionOf(link.From.Ref)
	if def == nil {
		t.Fatalf("the endpoint must resolve")
	}
	if e, ok := def.(*ast.Element); !ok || e.ID != "a" {
		t.Fatalf("unexpected definition: %+v", def)
	}
	if res.DefinitionOf(&ast.Reference{Text: "a"}) != nil {
		t.Fatalf("an unknown reference value must not resolve")
	}
}

// A custom name function changes what is indexable without touching the
// resolver.
func TestBuild_customNameFunc(t *testing.T) {
	p, err := parser.Parse(strings.NewReader("node a\nnode b\na -> b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	noNames := func(n ast.Node) (string, bool) {
		return "", false
	}
	res := Build(p.Model(), noNames)
	if len(res.Root.Symbols()) != 0 {
		t.Fatalf("no symbol must be indexed: %+v", res.Root.Symbols())
	}
	// With nothing indexed, both endpoints are unresolved.
	errs := 0
	for _, d := range res.Diagnostics {
		if d.Severity == SeverityError {
			errs++
		}
	}
	if errs != 2 {
		t.Fatalf("unexpected error count; want: 2, got: %v (%v)", errs, diagnosticMessages(res))
	}
}
