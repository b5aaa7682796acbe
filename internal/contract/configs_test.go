package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/ciweather/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns raw input that passes validation; tests mutate a copy.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Config:       "sections.yaml",
		Jobs:         []string{"jobs.json"},
		LogsDir:      "logs",
		OutputFile:   "dashboard.json",
		Output:       "text",
		Limit:        DefaultResultLimit,
		Emoji:        "no",
		Color:        "yes",
		CacheBackend: "none",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{"valid minimal config", func(*ConfigRawInput) {}, false},
		{"invalid output", func(in *ConfigRawInput) { in.Output = "xml" }, true},
		{"zero limit", func(in *ConfigRawInput) { in.Limit = 0 }, true},
		{"limit too large", func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 }, true},
		{"negative width", func(in *ConfigRawInput) { in.Width = -1 }, true},
		{"bad emoji flag", func(in *ConfigRawInput) { in.Emoji = "sometimes" }, true},
		{"bad color flag", func(in *ConfigRawInput) { in.Color = "" }, true},
		{"empty output file", func(in *ConfigRawInput) { in.OutputFile = " " }, true},
		{"absolute now", func(in *ConfigRawInput) { in.Now = "2025-03-10T12:00:00Z" }, false},
		{"relative now", func(in *ConfigRawInput) { in.Now = "2 days ago" }, false},
		{"bad now", func(in *ConfigRawInput) { in.Now = "yesterday-ish" }, true},
		{"days too large", func(in *ConfigRawInput) { in.Days = MaxWeatherDays + 1 }, true},
		{"negative days", func(in *ConfigRawInput) { in.Days = -3 }, true},
		{"bad index window", func(in *ConfigRawInput) { in.IndexWindow = "forever" }, true},
		{"invalid cache backend", func(in *ConfigRawInput) { in.CacheBackend = "redis" }, true},
		{"mysql without dsn", func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, true},
		{"invalid history backend", func(in *ConfigRawInput) { in.HistoryBackend = "mongo" }, true},
		{
			"postgres history",
			func(in *ConfigRawInput) {
				in.HistoryBackend = "postgresql"
				in.HistoryDBConnect = "host=localhost dbname=ciweather"
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)

			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	assert.Equal(t, "sections.yaml", cfg.SectionsFile)
	assert.Equal(t, []string{"jobs.json"}, cfg.JobsFiles)
	assert.Equal(t, schema.WeatherDays, cfg.Days)
	assert.Equal(t, 30*24*time.Hour, cfg.IndexWindow)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, schema.NoneBackend, cfg.CacheBackend)
	assert.Empty(t, cfg.HistoryBackend)
	assert.False(t, cfg.UseEmojis)
	assert.True(t, cfg.UseColors)
	assert.WithinDuration(t, time.Now(), cfg.Now, time.Minute)
	assert.Equal(t, "dashboard.json", cfg.SnapshotFile())
}

func TestProcessAndValidateJobsList(t *testing.T) {
	input := validInput()
	input.Jobs = []string{"a.json, b.json", "", "c.json"}

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, []string{"a.json", "b.json", "c.json"}, cfg.JobsFiles)
}

func TestProcessAndValidateNow(t *testing.T) {
	input := validInput()
	input.Now = "2025-03-10T12:00:00+02:00"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), cfg.Now)
	assert.Equal(t, time.UTC, cfg.Now.Location())
}

func TestSQLiteStoresMustDiffer(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "shared.db")

	input := validInput()
	input.CacheBackend = "sqlite"
	input.CacheDBConnect = dbPath
	input.HistoryBackend = "sqlite"
	input.HistoryDBConnect = dbPath

	err := ProcessAndValidate(&Config{}, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different SQLite database files")

	input.HistoryDBConnect = dbPath + ".history"
	assert.NoError(t, ProcessAndValidate(&Config{}, input))
}

func TestRequireRunInputs(t *testing.T) {
	assert.ErrorIs(t, (&Config{}).RequireRunInputs(), ErrMissingSections)
	assert.ErrorIs(t, (&Config{SectionsFile: "s.yaml"}).RequireRunInputs(), ErrMissingJobs)
	assert.NoError(t, (&Config{SectionsFile: "s.yaml", JobsFiles: []string{"j.json"}}).RequireRunInputs())
}

func TestConfigSnapshotFileAndClone(t *testing.T) {
	cfg := &Config{OutputFile: "out.json", PreviousFile: "prev.json", JobsFiles: []string{"a"}}
	assert.Equal(t, "prev.json", cfg.SnapshotFile())

	clone := cfg.Clone()
	clone.JobsFiles[0] = "b"
	assert.Equal(t, "a", cfg.JobsFiles[0])
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none", schema.NoneBackend, "", false},
		{"mysql ok", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/ciweather", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/ciweather", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres ok", schema.PostgreSQLBackend, "host=localhost dbname=ciweather", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
