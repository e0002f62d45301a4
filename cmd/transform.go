package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/uib-ub/snomedct-transform/config"
	"github.com/uib-ub/snomedct-transform/denormalizer"
	"github.com/uib-ub/snomedct-transform/loader"
	"github.com/uib-ub/snomedct-transform/logging"
	"github.com/uib-ub/snomedct-transform/reconciler"
	"github.com/uib-ub/snomedct-transform/snomed"
)

var (
	inputDir         string
	configFile       string
	limit            int
	idFilter         string
	validateRows     bool
	unsafeValidation bool
	sampleRows       int
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Load, reconcile and denormalize the release packages",
	Long: `Load the sixteen snapshot tables from the release packages under the
input directory, reconcile them into an identifier-scoped dataset and
denormalize into terms, definitions and relations.

Examples:
  snomed-transform transform                          # full dataset
  snomed-transform transform --limit 100              # first 100 concepts
  snomed-transform transform --id-filter 123,456      # selected concepts only
  snomed-transform transform --unsafe-validation      # abort on first bad row
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

		data, meta, err := runPipeline(log, cfg)
		if err != nil {
			fmt.Printf("❌ Error transforming dataset: %v\n", err)
			os.Exit(1)
		}

		showSummary(data, meta)
	},
}

// buildConfig assembles the pipeline configuration from the optional YAML
// file and the command-line flags.
func buildConfig() (config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return cfg, err
		}
	}

	if inputDir != "" {
		cfg.InputDir = inputDir
	}
	cfg.Limit = limit
	if idFilter != "" {
		cfg.IDFilter = strings.Split(idFilter, ",")
	}
	cfg.Validate = validateRows
	cfg.SafeValidation = !unsafeValidation
	return cfg, nil
}

func runPipeline(log *logging.Logger, cfg config.Config) (snomed.Data, snomed.Metadata, error) {
	raw, err := loader.New(cfg, log).Load()
	if err != nil {
		return snomed.Data{}, snomed.Metadata{}, err
	}
	rawMeta := snomed.NewMetadata(
		"Snomed raw dataset",
		"Dataset loaded from relevant snapshot tsv files in snomed release packages",
		"loader.Load",
		nil,
	)

	reconciled := reconciler.Reconcile(log, cfg, *raw)
	data := denormalizer.Denormalize(log, reconciled)
	meta := snomed.NewMetadata(
		"Snomed dataset denormalized",
		"Denormalized snomed dataset with one table for terms, definitions etc.",
		"denormalizer.Denormalize",
		&rawMeta,
	)
	return data, meta, nil
}

func showSummary(data snomed.Data, meta snomed.Metadata) {
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan)

	green.Printf("📦 %s\n", meta.Title)
	cyan.Printf("   %s\n", meta.Description)
	cyan.Printf("   produced by %s at %s\n", meta.Source, meta.Date)
	for p := meta.Provenance; p != nil; p = p.Provenance {
		cyan.Printf("   derived from: %s (%s)\n", p.Title, p.Source)
	}
	fmt.Println(strings.Repeat("-", 60))

	fmt.Printf("🆔 Concepts in scope: %d\n", len(data.IDs))
	fmt.Printf("💬 Terms:             %d\n", len(data.Terms))
	fmt.Printf("📖 Definitions:       %d\n", len(data.Definitions))
	fmt.Printf("🔗 Relations:         %d\n", len(data.Relations))

	if sampleRows <= 0 {
		return
	}

	fmt.Println(strings.Repeat("-", 60))
	green.Println("💬 Terms sample")
	for i, t := range data.Terms {
		if i >= sampleRows {
			break
		}
		gp := "-"
		if t.AcceptabilityIDGP != nil {
			gp = *t.AcceptabilityIDGP
		}
		fmt.Printf("  %s  %s  [%s/%s]  %s (gp: %s)  %q\n",
			t.ConceptID, t.TermID, t.LanguageCode, t.TypeID, t.AcceptabilityID, gp, t.Term)
	}

	green.Println("📖 Definitions sample")
	for i, d := range data.Definitions {
		if i >= sampleRows {
			break
		}
		fmt.Printf("  %s  %s  [%s]  %q\n", d.ConceptID, d.DefinitionID, d.LanguageCode, d.Term)
	}

	green.Println("🔗 Relations sample")
	for i, r := range data.Relations {
		if i >= sampleRows {
			break
		}
		fmt.Printf("  %s: %s -[%s]-> %s (group %s)\n",
			r.ID, r.SourceID, r.TypeID, r.DestinationID, r.RelationshipGroup)
	}
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "Input directory with release packages (default \"input\")")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML file overriding table patterns and replace rules")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Keep only the first N in-scope concepts")
	cmd.Flags().StringVar(&idFilter, "id-filter", "", "Comma separated list of concept ids to keep")
	cmd.Flags().BoolVar(&validateRows, "validate", true, "Validate rows while loading")
	cmd.Flags().BoolVar(&unsafeValidation, "unsafe-validation", false, "Abort the run on the first invalid row")
}

func init() {
	addPipelineFlags(transformCmd)
	transformCmd.Flags().IntVar(&sampleRows, "sample", 5, "Rows of each output table to print (0 disables)")
}
