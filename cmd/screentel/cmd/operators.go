package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/screentel/screentel/internal/regions"
)

// operatorsCmd represents the operators command.
var operatorsCmd = &cobra.Command{
	Use:   "operators",
	Short: "List the configured carrier names",
	Long: `List the carrier names the analyzer looks for in screenshots.

The list comes from the configuration (analysis.operators); OCR variants of
each name are matched automatically.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		lexicon := regions.NewSelector(cfg.Analysis.Operators).Lexicon()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(map[string]any{
				"operators": lexicon,
				"count":     len(lexicon),
			}, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode operators: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		for _, name := range lexicon {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(operatorsCmd)

	operatorsCmd.Flags().Bool("json", false, "print as JSON")
}
