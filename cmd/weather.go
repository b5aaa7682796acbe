package cmd

import (
	"github.com/huangsam/ciweather/core"
	"github.com/huangsam/ciweather/internal/contract"
	"github.com/spf13/cobra"
)

// weatherCmd prints one test's weather history.
var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Show the day-by-day weather of one test.",
	Long: `Print the weather history of a single configured test.

Each day shows the job that decided it, the step that failed and the
individual tests that failed, followed by how often each failing test
showed up across the whole history.

Examples:
  # Weather of a test by id
  ciweather weather --test gpu-cuda

  # Disambiguate a test id used in several sections
  ciweather weather --section gpu-suite --test gpu-cuda --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteWeather(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot show test weather", err)
		}
	},
}
