package cmd

import (
	"github.com/huangsam/ciweather/core"
	"github.com/huangsam/ciweather/internal/contract"
	"github.com/spf13/cobra"
)

// indexCmd prints the failure index of the latest dashboard.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Show the most frequently failing tests across all jobs.",
	Long: `Print the failure index of the latest dashboard.

Every failing test name seen in any job within the index window is ranked by
how many jobs it failed in. Use this to:
- Spot flaky tests that fail across many unrelated jobs
- Find which job a failing test hits the most
- Export the index for tracking in a spreadsheet or notebook

Examples:
  # Top 25 failing tests
  ciweather index

  # Top 10 as CSV
  ciweather index --limit 10 --output csv

  # Export to Parquet for DuckDB
  ciweather index --output parquet --export-file index.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteIndex(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot show failure index", err)
		}
	},
}
