package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/knotlang/knot/ast"
	"github.com/knotlang/knot/driver/parser"
	"github.com/knotlang/knot/scope"
	"github.com/spf13/cobra"
)

var symbolsFlags = struct {
	source     *string
	references *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "symbols",
		Short:   "List the symbols a source text declares",
		Example: `  knot symbols -s model.knot --references`,
		Args:    cobra.NoArgs,
		RunE:    runSymbols,
	}
	symbolsFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	symbolsFlags.references = cmd.Flags().Bool("references", false, "also list resolved references with their definition sites")
	rootCmd.AddCommand(cmd)
}

func runSymbols(cmd *cobra.Command, args []string) error {
	src, err := openSource(*symbolsFlags.source)
	if err != nil {
		return err
	}
	defer src.Close()

	p, err := parser.Parse(src)
	if err != nil {
		return err
	}
	writeSyntaxErrors(os.Stderr, p.SyntaxErrors())

	res := scope.Build(p.Model(), nil)
	printScope(os.Stdout, res.Root, 0)

	if *symbolsFlags.references {
		printReferences(os.Stdout, res)
	}
	return nil
}

func printScope(w io.Writer, t *scope.Table, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "    "
	}
	if t.Owner() == nil {
		fmt.Fprintf(w, "%vdocument\n", indent)
	} else {
		name := t.Owner().ID
		if name == "" {
			name = "<anonymous>"
		}
		fmt.Fprintf(w, "%vgraph %v\n", indent, name)
	}
	for _, sym := range t.Symbols() {
		fmt.Fprintf(w, "%v    %v %v (%v:%v)\n", indent, sym.Kind, sym.Name, sym.Pos.Row+1, sym.Pos.Col+1)
	}
	for _, c := range t.Children() {
		printScope(w, c, depth+1)
	}
}

func printReferences(w io.Writer, res *scope.Resolution) {
	type binding struct {
		ref *ast.Reference
		sym *scope.Symbol
	}
	var bs []binding
	for ref, sym := range res.Bindings {
		bs = append(bs, binding{ref: ref, sym: sym})
	}
	sort.Slice(bs, func(i, j int) bool {
		if bs[i].ref.Start.Row != bs[j].ref.Start.Row {
			return bs[i].ref.Start.Row < bs[j].ref.Start.Row
		}
		return bs[i].ref.Start.Col < bs[j].ref.Start.Col
	})
	for _, b := range bs {
		fmt.Fprintf(w, "%v:%v: %v -> %v %v at %v:%v\n",
			b.ref.Start.Row+1, b.ref.Start.Col+1, b.ref.Text,
			b.sym.Kind, b.sym.Name, b.sym.Pos.Row+1, b.sym.Pos.Col+1)
	}
}
