package cmd

import (
	"github.com/huangsam/ciweather/core"
	"github.com/huangsam/ciweather/internal/contract"
	"github.com/spf13/cobra"
)

// runCmd builds the dashboard once.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the CI weather dashboard from job lists and logs.",
	Long: `Build the dashboard in a single pass.

Reads the sections config, the job lists and the per-job logs, merges them
with the previous dashboard and writes the result as JSON:
- Status, duration and last run of every configured test
- A day-by-day weather history per test
- The cross-job failure index of individual failing tests

The previous dashboard is read from --previous (default: --output-file).
When that file is missing, the copy kept in the snapshot cache is used, so
weather days whose logs have expired keep their failure details.

Examples:
  # Build the dashboard into dashboard.json
  ciweather run --config sections.yaml --jobs jobs.json --logs-dir logs

  # Combine several job lists and keep 14 days of weather
  ciweather run -c sections.yaml -j main.json,nightly.json --days 14

  # Track every run in a history database
  ciweather run -c sections.yaml -j jobs.json --history-backend sqlite`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDashboard(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build dashboard", err)
		}
	},
}
