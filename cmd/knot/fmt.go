package main

import (
	"fmt"
	"os"

	"github.com/knotlang/knot/driver/parser"
	"github.com/knotlang/knot/format"
	"github.com/spf13/cobra"
)

var fmtFlags = struct {
	write *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "fmt <source file path>...",
		Short:   "Format source texts into the canonical layout",
		Example: `  knot fmt -w model.knot`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    runFmt,
	}
	fmtFlags.write = cmd.Flags().BoolP("write", "w", false, "write the result back to the source file instead of stdout")
	rootCmd.AddCommand(cmd)
}

func runFmt(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		if err := formatFile(path); err != nil {
			return err
		}
	}
	return nil
}

func formatFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("Cannot open the source file %s: %w", path, err)
	}
	p, err := parser.Parse(f)
	f.Close()
	if err != nil {
		return err
	}
	if len(p.SyntaxErrors()) > 0 {
		writeSyntaxErrors(os.Stderr, p.SyntaxErrors())
		return fmt.Errorf("%v contains syntax errors; not formatted", path)
	}

	out := format.Canonical(p.CST())
	if !*fmtFlags.write {
		fmt.Fprint(os.Stdout, out)
		return nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(out), fi.Mode().Perm())
}
