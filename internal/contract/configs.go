package contract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/ciweather/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultIndexWindow = "30 days"
	MaxWeatherDays     = 60
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Sentinel errors for missing required inputs.
var (
	ErrMissingSections = errors.New("sections config file is required (--config)")
	ErrMissingJobs     = errors.New("at least one job list file is required (--jobs)")
)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a dashboard run.
// This struct remains the "final, validated" config.
type Config struct {
	SectionsFile string
	JobsFiles    []string
	LogsDir      string
	OutputFile   string
	PreviousFile string
	ExportFile   string // Destination of index and weather reports (empty = stdout)

	Now         time.Time
	Days        int
	IndexWindow time.Duration

	Output      schema.OutputMode
	ResultLimit int
	Width       int // Terminal width override (0 = auto-detect)
	TestID      string
	SectionID   string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
	Quiet     bool // Skip the terminal summary after a run
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile       string `mapstructure:"output-file"`
	Previous         string `mapstructure:"previous"`
	Now              string `mapstructure:"now"`
	Output           string `mapstructure:"output"`
	Limit            int    `mapstructure:"limit"`
	Width            int    `mapstructure:"width"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Emoji            string `mapstructure:"emoji"`
	Color            string `mapstructure:"color"`
	ExportFile       string `mapstructure:"export-file"`

	// --- Fields from runCmd.Flags() ---
	Config      string   `mapstructure:"config"`
	Jobs        []string `mapstructure:"jobs"`
	LogsDir     string   `mapstructure:"logs-dir"`
	Days        int      `mapstructure:"days"`
	IndexWindow string   `mapstructure:"index-window"`
	Quiet       bool     `mapstructure:"quiet"`

	// --- Fields from weatherCmd.Flags() ---
	Test    string `mapstructure:"test"`
	Section string `mapstructure:"section"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.JobsFiles != nil {
		clone.JobsFiles = make([]string, len(c.JobsFiles))
		copy(clone.JobsFiles, c.JobsFiles)
	}
	return &clone
}

// SnapshotFile returns the file the previous dashboard is read from.
// It defaults to the output file so consecutive runs chain naturally.
func (c *Config) SnapshotFile() string {
	if c.PreviousFile != "" {
		return c.PreviousFile
	}
	return c.OutputFile
}

// RequireRunInputs reports whether the inputs needed to build a dashboard are present.
func (c *Config) RequireRunInputs() error {
	if c.SectionsFile == "" {
		return ErrMissingSections
	}
	if len(c.JobsFiles) == 0 {
		return ErrMissingJobs
	}
	return nil
}

// Params returns the configuration recorded alongside each history run.
func (c *Config) Params() map[string]any {
	return map[string]any{
		"sections":     c.SectionsFile,
		"jobs":         c.JobsFiles,
		"logs_dir":     c.LogsDir,
		"output_file":  c.OutputFile,
		"days":         c.Days,
		"index_window": c.IndexWindow.String(),
	}
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processInputFiles(cfg, input); err != nil {
		return err
	}
	if err := processTimeSettings(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates snapshot cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// The cache and history stores must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates the presentation fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Width = input.Width
	cfg.Quiet = input.Quiet
	cfg.TestID = strings.TrimSpace(input.Test)
	cfg.SectionID = strings.TrimSpace(input.Section)

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	return nil
}

// processInputFiles collects the input and output file locations.
func processInputFiles(cfg *Config, input *ConfigRawInput) error {
	cfg.SectionsFile = strings.TrimSpace(input.Config)
	cfg.LogsDir = strings.TrimSpace(input.LogsDir)
	cfg.OutputFile = strings.TrimSpace(input.OutputFile)
	cfg.PreviousFile = strings.TrimSpace(input.Previous)
	cfg.ExportFile = strings.TrimSpace(input.ExportFile)

	cfg.JobsFiles = nil
	for _, entry := range input.Jobs {
		for p := range strings.SplitSeq(entry, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cfg.JobsFiles = append(cfg.JobsFiles, trimmed)
			}
		}
	}

	if cfg.OutputFile == "" {
		return errors.New("output-file cannot be empty")
	}
	return nil
}

// processTimeSettings handles the reference time, weather length and index retention.
func processTimeSettings(cfg *Config, input *ConfigRawInput) error {
	now := time.Now().UTC()
	cfg.Now = now
	if s := strings.TrimSpace(input.Now); s != "" {
		if t, err := time.Parse(DateTimeFormat, s); err == nil {
			cfg.Now = t.UTC()
		} else {
			t, relErr := ParseRelativeTime(s, now)
			if relErr != nil {
				return fmt.Errorf("invalid --now value '%s'. Expected absolute ISO8601 or 'N [units] ago': %v", s, err)
			}
			cfg.Now = t.UTC()
		}
	}

	cfg.Days = input.Days
	if cfg.Days == 0 {
		cfg.Days = schema.WeatherDays
	}
	if cfg.Days < 1 || cfg.Days > MaxWeatherDays {
		return fmt.Errorf("days must be between 1 and %d (received %d)", MaxWeatherDays, input.Days)
	}

	window := input.IndexWindow
	if strings.TrimSpace(window) == "" {
		window = DefaultIndexWindow
	}
	d, err := ParseLookbackDuration(window)
	if err != nil {
		return fmt.Errorf("invalid --index-window: %w", err)
	}
	cfg.IndexWindow = d

	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
