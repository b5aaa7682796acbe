// Package cmd defines the command-line interface for ciweather.
package cmd

import (
	"github.com/huangsam/ciweather/internal/contract"
	"github.com/huangsam/ciweather/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(weatherCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("config-file", "", "Path to the ciweather config file (default .ciweather.yaml)")
	rootCmd.PersistentFlags().StringP("output-file", "o", "dashboard.json", "Path of the dashboard JSON written by run and read by index/weather")
	rootCmd.PersistentFlags().String("previous", "", "Previous dashboard snapshot (defaults to --output-file)")
	rootCmd.PersistentFlags().String("now", "", "Reference time in ISO8601 or time ago (default: current time)")
	rootCmd.PersistentFlags().String("export-file", "", "Write reports and exports to this file instead of stdout (required for parquet)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Report format: text or csv or json or parquet")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Snapshot cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for run history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in headers and weather strips (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runCmd to Viper
	runCmd.Flags().StringP("config", "c", "", "Sections config file (YAML or JSON)")
	runCmd.Flags().StringSliceP("jobs", "j", nil, "Job list JSON file(s), repeatable or comma-separated")
	runCmd.Flags().String("logs-dir", "", "Directory of raw job logs named <jobId>.log or <jobId>.txt")
	runCmd.Flags().Int("days", schema.WeatherDays, "Number of days in each weather history")
	runCmd.Flags().String("index-window", contract.DefaultIndexWindow, "Retention window of the failure index")
	runCmd.Flags().BoolP("quiet", "q", false, "Skip the terminal summary after the run")
	if err := viper.BindPFlags(runCmd.Flags()); err != nil {
		contract.LogFatal("Error binding run flags", err)
	}

	// Bind all flags of weatherCmd to Viper
	weatherCmd.Flags().String("test", "", "Test id as shown on the dashboard")
	weatherCmd.Flags().String("section", "", "Section id to search when test ids repeat")
	if err := viper.BindPFlags(weatherCmd.Flags()); err != nil {
		contract.LogFatal("Error binding weather flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
