package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/uib-ub/snomedct-transform/export"
	"github.com/uib-ub/snomedct-transform/logging"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Transform the release packages and load the result into Postgres",
	Long: `Run the full transform and bulk-load the denormalized tables into the
database pointed to by DATABASE_URL (from the environment or a .env file).

Examples:
  snomed-transform export
  snomed-transform export --limit 1000
`,
	Run: func(cmd *cobra.Command, args []string) {
		log, err := logging.New(debug)
		if err != nil {
			fmt.Printf("❌ Error setting up logging: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()

		cfg, err := buildConfig()
		if err != nil {
			fmt.Printf("❌ Error building configuration: %v\n", err)
			os.Exit(1)
		}

		data, _, err := runPipeline(log, cfg)
		if err != nil {
			fmt.Printf("❌ Error transforming dataset: %v\n", err)
			os.Exit(1)
		}

		if err := export.Run(context.Background(), log, data); err != nil {
			fmt.Printf("❌ Error exporting dataset: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen, color.Bold)
		green.Println("✅ Export complete")
		fmt.Printf("   %d concepts, %d terms, %d definitions, %d relations\n",
			len(data.IDs), len(data.Terms), len(data.Definitions), len(data.Relations))
	},
}

func init() {
	addPipelineFlags(exportCmd)
}
