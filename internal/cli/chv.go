package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claimsift/claimsift/internal/normalize"
)

var chvOut string

// chvCmd groups lookup-table tooling
var chvCmd = &cobra.Command{
	Use:   "chv",
	Short: "Manage the consumer health vocabulary lookup table",
}

// chvBuildCmd converts the CHV flatfile into the JSON lookup table
var chvBuildCmd = &cobra.Command{
	Use:   "build <flatfile.tsv>",
	Short: "Build the JSON lookup table from a CHV flatfile",
	Long: `Build converts the tab-separated Consumer Health Vocabulary
concepts-terms flatfile into the JSON lookup table the normalizer
loads. Disparaged entries (misspellings, abnormal terms) are dropped.

Example:
  claimsift chv build CHV_concepts_terms_flatfile_20110204.tsv --out chv_lookup.json
  claimsift check "chia seeds help heart health" --table chv_lookup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := normalize.ConvertCHVFile(args[0], chvOut)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d entries to %s\n", count, chvOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chvCmd)
	chvCmd.AddCommand(chvBuildCmd)

	chvBuildCmd.Flags().StringVar(&chvOut, "out", "chv_lookup.json", "output JSON path")
}
