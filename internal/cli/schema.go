package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/coalesce/internal/model"
)

var schemaListFile string

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "List record types and their merge rules",
	Long: `Schema lists the registered record types and, per field, the strategy
used to reconcile values across segments.

Example:
  coalesce schema
  coalesce schema --schema extra-schemas.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := buildRegistry(schemaListFile)
		if err != nil {
			return err
		}

		for _, name := range registry.Types() {
			rules, _ := registry.Rules(name)
			fmt.Printf("%s:\n", name)
			for _, rule := range rules {
				line := fmt.Sprintf("  %-16s %s", rule.Field, rule.Strategy)
				if rule.DedupKey != "" {
					line += fmt.Sprintf(" (dedup_key=%s)", rule.DedupKey)
				}
				if rule.ConfidenceField != "" {
					line += fmt.Sprintf(" (confidence_field=%s)", rule.ConfidenceField)
				}
				fmt.Println(line)
			}
			fmt.Println()
		}

		fmt.Println("Available strategies:")
		for _, s := range model.Strategies() {
			fmt.Printf("  %s\n", s)
		}
		return nil
	},
}

func init() {
	schemaCmd.Flags().StringVar(&schemaListFile, "schema", "", "YAML file with additional record schemas")
	rootCmd.AddCommand(schemaCmd)
}
