package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/uib-ub/snomedct-transform/config"
)

var tablesConfigFile string

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Show the configured table registry",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Default()
		if tablesConfigFile != "" {
			var err error
			cfg, err = config.Load(tablesConfigFile)
			if err != nil {
				fmt.Printf("❌ Error loading config: %v\n", err)
				os.Exit(1)
			}
		}

		cyan := color.New(color.FgCyan)
		fmt.Printf("📋 %d configured tables (input dir %q)\n", len(cfg.Tables), cfg.InputDir)
		for _, t := range cfg.Tables {
			fmt.Printf("  %-20s %-13s ", t.Key, t.Family)
			cyan.Printf("%s\n", t.Pattern)
		}
	},
}

func init() {
	tablesCmd.Flags().StringVarP(&tablesConfigFile, "config", "c", "", "YAML file overriding table patterns and replace rules")
}
