package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/knotlang/knot/driver/parser"
	kerr "github.com/knotlang/knot/error"
	"github.com/knotlang/knot/scope"
	"github.com/spf13/cobra"
)

var checkFlags = struct {
	source *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "check",
		Short:   "Check a source text for syntax and semantic problems",
		Example: `  knot check -s model.knot`,
		Args:    cobra.NoArgs,
		RunE:    runCheck,
	}
	checkFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	rootCmd.AddCommand(cmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	src, err := openSource(*checkFlags.source)
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
	for _, d := range res.Diagnostics {
		if d.Severity == scope.SeverityWarning {
			fmt.Fprintf(os.Stderr, "%v: %v:%v: warning: %v\n", *checkFlags.source, d.Pos.Row+1, d.Pos.Col+1, d.Message)
			continue
		}
		e := &kerr.SourceError{
			Cause:      errors.New(d.Message),
			FilePath:   *checkFlags.source,
			SourceName: *checkFlags.source,
			Row:        d.Pos.Row + 1,
			Col:        d.Pos.Col + 1,
		}
		fmt.Fprintf(os.Stderr, "%v\n", e)
	}

	if len(p.SyntaxErrors()) > 0 || res.Errs() {
		return errors.New("the source text contains errors")
	}
	return nil
}
