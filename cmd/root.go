package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "snomed-transform",
	Short: "Transform SNOMED CT release packages into analysis-friendly tables",
	Long: `snomed-transform denormalizes the snapshot tables of a national and an
international SNOMED CT release package into flat terms, definitions and
relations tables.

Examples:

  snomed-transform transform
  snomed-transform transform --limit 100
  snomed-transform export
`,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(tablesCmd)
}
