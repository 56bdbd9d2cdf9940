package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/knotlang/knot/grammar/lexical"
	spec "github.com/knotlang/knot/spec/grammar"
	"github.com/spf13/cobra"
)

var grammarFlags = struct {
	json *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "grammar",
		Short:   "Describe the knot grammar and its token vocabulary",
		Example: `  knot grammar`,
		Args:    cobra.NoArgs,
		RunE:    runGrammar,
	}
	grammarFlags.json = cmd.Flags().Bool("json", false, "print the description as JSON")
	rootCmd.AddCommand(cmd)
}

func runGrammar(cmd *cobra.Command, args []string) error {
	g := spec.Knot()
	if err := g.Validate(); err != nil {
		return fmt.Errorf("the grammar definition is broken: %w", err)
	}
	d := spec.Describe(g)

	if *grammarFlags.json {
		out, err := json.Marshal(d)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(out))
		return nil
	}

	w := os.Stdout
	fmt.Fprintf(w, "grammar: %v\n", d.Name)

	fmt.Fprintf(w, "\nterminals:\n")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range d.Terminals {
		hidden := ""
		if t.Hidden {
			hidden = "hidden"
		}
		fmt.Fprintf(tw, "    %v\t%v\t%v\t%v\n", t.Number, t.Name, t.Pattern, hidden)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nkeywords:\n")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, k := range d.Keywords {
		fmt.Fprintf(tw, "    %v\t%v\t%q\n", k.Number, k.Name, k.Literal)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nproductions:\n")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range d.Productions {
		fmt.Fprintf(tw, "    %v\t%v\t: %v\n", p.Number, p.Name, p.Form)
	}
	tw.Flush()

	types, err := lexical.KnotVocabulary()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nvocabulary:\n")
	printVocabulary(w, types)
	return nil
}

func printVocabulary(w io.Writer, types lexical.TokenTypes) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, t := range types {
		form := "pattern"
		switch {
		case t.Literal != "":
			form = fmt.Sprintf("literal %q", t.Literal)
		case t.Matcher != nil:
			form = "function"
		}
		lineBreaks := ""
		if t.LineBreaks {
			lineBreaks = "line-breaks"
		}
		group := ""
		if t.Group != lexical.GroupNone {
			group = t.Group.String()
		}
		fmt.Fprintf(tw, "    %v\t%v\t%v\t%v\t%v\n", i, t.Name, form, group, lineBreaks)
	}
	tw.Flush()
}
