package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/knotlang/knot/ast"
	"github.com/knotlang/knot/driver/lexer"
	"github.com/knotlang/knot/driver/parser"
	"github.com/knotlang/knot/grammar/lexical"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source *string
	cst    *bool
	tokens *bool
	json   *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse",
		Short:   "Parse a source text and print its syntax tree",
		Example: `  cat model.knot | knot parse`,
		Args:    cobra.NoArgs,
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.cst = cmd.Flags().Bool("cst", false, "print the concrete syntax tree instead of the model tree")
	parseFlags.tokens = cmd.Flags().Bool("tokens", false, "print the token stream instead of a tree")
	parseFlags.json = cmd.Flags().Bool("json", false, "print the concrete syntax tree as JSON")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) (retErr error) {
	defer func() {
		v := recover()
		if v != nil {
			err, ok := v.(error)
			if !ok {
				retErr = fmt.Errorf("an unexpected error occurred: %v", v)
				fmt.Fprintf(os.Stderr, "%v:\n%v", retErr, string(debug.Stack()))
				return
			}
			retErr = err
			fmt.Fprintf(os.Stderr, "%v:\n%v", retErr, string(debug.Stack()))
		}
	}()

	src, err := openSource(*parseFlags.source)
	if err != nil {
		return err
	}
	defer src.Close()

	if *parseFlags.tokens {
		return printTokens(os.Stdout, src)
	}

	p, err := parser.Parse(src)
	if err != nil {
		return err
	}
	writeSyntaxErrors(os.Stderr, p.SyntaxErrors())

	switch {
	case *parseFlags.json:
		d, err := json.Marshal(p.CST())
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(d))
	case *parseFlags.cst:
		parser.PrintTree(os.Stdout, p.CST())
	default:
		printModel(os.Stdout, p.Model())
	}

	if len(p.SyntaxErrors()) > 0 {
		return fmt.Errorf("the source text contains syntax errors")
	}
	return nil
}

func openSource(path string) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the source file %s: %w", path, err)
	}
	return f, nil
}

func writeSyntaxErrors(w io.Writer, synErrs []*parser.SyntaxError) {
	for _, synErr := range synErrs {
		tok := synErr.Token

		var msg string
		switch {
		case tok.EOF:
			msg = "<eof>"
		case tok.Invalid:
			msg = fmt.Sprintf("'%v' (<invalid>)", string(tok.Lexeme))
		default:
			msg = fmt.Sprintf("'%v' (%v)", string(tok.Lexeme), tok.KindName)
		}

		fmt.Fprintf(w, "%v:%v: %v: %v", synErr.Row+1, synErr.Col+1, synErr.Message, msg)
		if len(synErr.ExpectedTerminals) > 0 {
			fmt.Fprintf(w, "; expected: %v", synErr.ExpectedTerminals[0])
			for _, t := range synErr.ExpectedTerminals[1:] {
				fmt.Fprintf(w, ", %v", t)
			}
		}
		fmt.Fprintf(w, "\n")
	}
}

func printTokens(w io.Writer, src io.Reader) error {
	types, err := lexical.KnotVocabulary()
	if err != nil {
		return err
	}
	lex, err := lexer.NewLexer(types, src)
	if err != nil {
		return err
	}
	for {
		tok := lex.Next()
		if tok.EOF {
			return nil
		}
		name := tok.KindName
		switch {
		case tok.Invalid:
			name = "<invalid>"
		case tok.Hidden:
			name = name + " (hidden)"
		}
		fmt.Fprintf(w, "%v:%v: %v %q\n", tok.Row+1, tok.Col+1, name, string(tok.Lexeme))
	}
}

func printModel(w io.Writer, model *ast.Model) {
	fmt.Fprintln(w, "model")
	for _, stmt := range model.Statements {
		printModelNode(w, stmt, 1)
	}
}

func printModelNode(w io.Writer, n ast.Node, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "    "
	}
	switch n := n.(type) {
	case *ast.Element:
		fmt.Fprintf(w, "%v%v", indent, n.Form)
		if n.ID != "" {
			fmt.Fprintf(w, " %v", n.ID)
		}
		if n.Label != "" {
			fmt.Fprintf(w, " %q", n.Label)
		}
		if n.StyleRef != nil {
			fmt.Fprintf(w, " : %v", n.StyleRef.Text)
		}
		fmt.Fprintln(w)
		for _, a := range n.Attrs {
			printModelNode(w, a, depth+1)
		}
		for _, c := range n.Children {
			printModelNode(w, c, depth+1)
		}
	case *ast.Link:
		fmt.Fprintf(w, "%vlink %v -> %v", indent, endpointText(n.From), endpointText(n.To))
		if n.StyleRef != nil {
			fmt.Fprintf(w, " : %v", n.StyleRef.Text)
		}
		fmt.Fprintln(w)
		for _, a := range n.Attrs {
			printModelNode(w, a, depth+1)
		}
	case *ast.Style:
		fmt.Fprintf(w, "%vstyle %v\n", indent, n.ID)
		for _, p := range n.Properties {
			printModelNode(w, p, depth+1)
		}
	case *ast.Attribute:
		fmt.Fprintf(w, "%v%v: %v\n", indent, n.Key, n.Value)
	case *ast.Property:
		fmt.Fprintf(w, "%v%v: %v\n", indent, n.Key, n.Value)
	}
}

func endpointText(ep *ast.Endpoint) string {
	if ep == nil {
		return "<error>"
	}
	if ep.Ref != nil {
		return ep.Ref.Text
	}
	return fmt.Sprintf("%q", ep.Elem.Label)
}
