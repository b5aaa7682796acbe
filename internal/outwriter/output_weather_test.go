package outwriter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/ciweather/internal/contract"
	"github.com/huangsam/ciweather/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTestWeather(t *testing.T) {
	dash := sampleDashboard()
	section := &dash.Sections[0]
	test := &section.Tests[0]
	test.FailedTestsInWeather = []schema.WeatherFailedTest{{Name: "test_a", Count: 1, Dates: []string{"2025-03-09T00:00:00Z"}}}

	tests := []struct {
		name   string
		output schema.OutputMode
		check  func(t *testing.T, content string)
	}{
		{"table", schema.TextOut, func(t *testing.T, content string) {
			assert.Contains(t, content, "GPU Suite / CUDA: Failed (failed 1 of 3 days)")
			assert.Contains(t, content, "2025-03-09")
			assert.Contains(t, content, "Run tests")
			assert.Contains(t, content, "test_a|test_b")
			assert.Contains(t, content, "1x test_a")
		}},
		{"csv", schema.CSVOut, func(t *testing.T, content string) {
			lines := strings.Split(strings.TrimSpace(content), "\n")
			require.Len(t, lines, 4)
			assert.Equal(t, "2025-03-09,failed,2,20,,Run tests,test_a|test_b", lines[2])
			assert.Equal(t, "2025-03-10,none,,,,N/A,", lines[3])
		}},
		{"json", schema.JSONOut, func(t *testing.T, content string) {
			var got testWeather
			require.NoError(t, json.Unmarshal([]byte(content), &got))
			assert.Equal(t, "gpu", got.SectionID)
			assert.Equal(t, "cuda", got.TestID)
			assert.Len(t, got.WeatherHistory, 3)
			assert.Len(t, got.FailedTestsInWeather, 1)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "weather.out")
			cfg := &contract.Config{Output: tt.output, ExportFile: path, Width: 160}
			require.NoError(t, WriteTestWeather(section, test, cfg))

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			tt.check(t, string(content))
		})
	}

	t.Run("parquet unsupported", func(t *testing.T) {
		assert.Error(t, WriteTestWeather(section, test, &contract.Config{Output: schema.ParquetOut}))
	})
}
