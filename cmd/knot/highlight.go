package main

import (
	"fmt"
	"io"
	"os"

	"github.com/knotlang/knot/highlight"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var highlightFlags = struct {
	source *string
	html   *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "highlight",
		Short:   "Render a source text with syntax highlighting",
		Example: `  knot highlight -s model.knot --html > model.html`,
		Args:    cobra.NoArgs,
		RunE:    runHighlight,
	}
	highlightFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	highlightFlags.html = cmd.Flags().Bool("html", false, "render HTML instead of ANSI colors")
	rootCmd.AddCommand(cmd)
}

func runHighlight(cmd *cobra.Command, args []string) error {
	src, err := openSource(*highlightFlags.source)
	if err != nil {
		return err
	}
	defer src.Close()

	text, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("Cannot read the source text: %w", err)
	}

	styleName := viper.GetString("style")
	if *highlightFlags.html {
		return highlight.WriteHTML(os.Stdout, text, styleName)
	}
	return highlight.WriteTerminal(os.Stdout, text, styleName)
}
