package lexmatch

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagJSON    bool
	flagNoColor bool
	flagConfig  string

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the lexmatch CLI.
var rootCmd = &cobra.Command{
	Use:           "lexmatch",
	Short:         "Multi-keyword text matching and substitution",
	Long:          "lexmatch compiles keyword sets into Aho-Corasick automatons and matches or substitutes them in text, files, or over an HTTP API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the lexmatch CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default: .lexmatch.yml in the working directory)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the lexmatch version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("lexmatch", version)
		},
	})
}
