package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "knot",
	Short: "Tooling for the knot graph-description language",
	Long: `knot provides tooling for the knot graph-description language:
- Parses a source text into a syntax tree.
- Checks a source text for semantic problems.
- Lists the symbols a source text declares and resolves references.
- Formats and highlights source texts.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().String("style", "monokai", "color style for highlighted output")
	_ = viper.BindPFlag("style", rootCmd.PersistentFlags().Lookup("style"))

	viper.SetEnvPrefix("KNOT")
	viper.AutomaticEnv()
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
