package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/ciweather/internal/contract"
	mcp_internal "github.com/huangsam/ciweather/internal/mcp"
	"github.com/huangsam/ciweather/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDashboard stores a small two-section dashboard and returns its path.
func writeDashboard(t *testing.T) string {
	t.Helper()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	dash := schema.Dashboard{
		LastRefresh: now,
		Sections: []schema.Section{
			{
				ID:      "gpu-suite",
				Name:    "GPU Suite",
				Summary: schema.SectionSummary{Total: 2, Passed: 1, Failed: 1},
				Tests: []schema.TestRecord{
					{
						ID: "gpu-cuda", Name: "gpu-cuda", Status: schema.FailedStatus, FailureCount: 1,
						WeatherHistory: []schema.WeatherDay{{Date: now, Status: schema.WeatherFailed}},
						Error:          &schema.ErrorDetails{FailedStep: "Run tests", Message: "1 of 3 tests failed"},
					},
					{ID: "gpu-rocm", Name: "ROCm Tests", Status: schema.PassedStatus},
				},
			},
			{
				ID:      "cpu-suite",
				Name:    "CPU Suite",
				Summary: schema.SectionSummary{Total: 1, NotRun: 1},
				Tests:   []schema.TestRecord{{ID: "gpu-cuda", Name: "cpu shadow", Status: schema.NotRunStatus}},
			},
		},
		FailedTestsIndex: schema.FailureIndex{
			"test_kernel_launch": {
				Occurrences:        []schema.Occurrence{{Date: "2025-03-10T10:00:00Z", JobName: "gpu-cuda", JobID: "101", RunID: 1001}},
				TotalCount:         1,
				AffectedJobs:       []schema.AffectedJob{{JobName: "gpu-cuda", Count: 1, LatestDate: "2025-03-10T10:00:00Z", JobIDs: []string{"101"}}},
				UniqueJobsAffected: 1,
			},
			"test_memcpy": {
				Occurrences:        []schema.Occurrence{{Date: "2025-03-09T10:00:00Z", JobName: "gpu-cuda", JobID: "100", RunID: 1000}},
				TotalCount:         1,
				AffectedJobs:       []schema.AffectedJob{{JobName: "gpu-cuda", Count: 1, LatestDate: "2025-03-09T10:00:00Z", JobIDs: []string{"100"}}},
				UniqueJobsAffected: 1,
			},
		},
	}
	data, err := json.Marshal(dash)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dashboard.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func callTool(t *testing.T, ctx context.Context, tool string, args map[string]any, cfg *contract.Config) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(cfg, nil)
	st := s.GetTool(tool)
	require.NotNil(t, st, "Tool %s should exist", tool)

	res, err := st.Handler(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: tool, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	missing := filepath.Join(t.TempDir(), "missing.json")
	baseCfg := &contract.Config{OutputFile: missing, ResultLimit: contract.DefaultResultLimit}

	t.Run("get_test_weather missing test_id", func(t *testing.T) {
		res := callTool(t, ctx, "get_test_weather", map[string]any{"test_id": ""}, baseCfg)
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, resultText(res), "test_id is required")
	})

	t.Run("get_dashboard_summary without dashboard", func(t *testing.T) {
		res := callTool(t, ctx, "get_dashboard_summary", map[string]any{}, baseCfg)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "no dashboard found")
	})

	t.Run("get_failed_tests_index without dashboard", func(t *testing.T) {
		res := callTool(t, ctx, "get_failed_tests_index", map[string]any{}, baseCfg)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "failed to load dashboard")
	})

	t.Run("get_test_weather unknown test", func(t *testing.T) {
		args := map[string]any{"test_id": "nope", "dashboard_file": writeDashboard(t)}
		res := callTool(t, ctx, "get_test_weather", args, baseCfg)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), `test "nope" not found`)
	})

	t.Run("get_dashboard_summary unknown section", func(t *testing.T) {
		args := map[string]any{"section_id": "nope", "dashboard_file": writeDashboard(t)}
		res := callTool(t, ctx, "get_dashboard_summary", args, baseCfg)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), `section "nope" not found`)
	})

	t.Run("get_failed_tests_index unknown test name", func(t *testing.T) {
		args := map[string]any{"test_name": "test_nothing", "dashboard_file": writeDashboard(t)}
		res := callTool(t, ctx, "get_failed_tests_index", args, baseCfg)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "not in the failure index")
	})
}

func TestMCPServerHandlers_Success(t *testing.T) {
	ctx := context.Background()
	baseCfg := &contract.Config{OutputFile: writeDashboard(t), ResultLimit: contract.DefaultResultLimit}

	t.Run("get_dashboard_summary", func(t *testing.T) {
		res := callTool(t, ctx, "get_dashboard_summary", map[string]any{}, baseCfg)
		require.False(t, res.IsError, resultText(res))

		var out struct {
			Totals       schema.SectionSummary `json:"totals"`
			FailingTests int                   `json:"failingTestsInIndex"`
			Sections     []struct {
				ID    string `json:"id"`
				Tests []struct {
					ID     string `json:"id"`
					Status string `json:"status"`
				} `json:"tests"`
			} `json:"sections"`
		}
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &out))
		assert.Equal(t, schema.SectionSummary{Total: 3, Passed: 1, Failed: 1, NotRun: 1}, out.Totals)
		assert.Equal(t, 2, out.FailingTests)
		require.Len(t, out.Sections, 2)
		assert.Equal(t, "gpu-suite", out.Sections[0].ID)
		assert.Equal(t, "failed", out.Sections[0].Tests[0].Status)
	})

	t.Run("get_dashboard_summary single section", func(t *testing.T) {
		res := callTool(t, ctx, "get_dashboard_summary", map[string]any{"section_id": "cpu-suite"}, baseCfg)
		require.False(t, res.IsError, resultText(res))
		assert.Contains(t, resultText(res), "cpu shadow")
		assert.NotContains(t, resultText(res), "ROCm Tests")
	})

	t.Run("get_failed_tests_index with limit", func(t *testing.T) {
		res := callTool(t, ctx, "get_failed_tests_index", map[string]any{"limit": 1.0}, baseCfg)
		require.False(t, res.IsError, resultText(res))

		var rows []schema.IndexRow
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "test_kernel_launch", rows[0].TestName)
	})

	t.Run("get_failed_tests_index single entry", func(t *testing.T) {
		res := callTool(t, ctx, "get_failed_tests_index", map[string]any{"test_name": "test_memcpy"}, baseCfg)
		require.False(t, res.IsError, resultText(res))
		assert.Contains(t, resultText(res), `"testName": "test_memcpy"`)
		assert.Contains(t, resultText(res), `"jobIds"`)
	})

	t.Run("get_test_weather first match", func(t *testing.T) {
		res := callTool(t, ctx, "get_test_weather", map[string]any{"test_id": "gpu-cuda"}, baseCfg)
		require.False(t, res.IsError, resultText(res))
		assert.Contains(t, resultText(res), `"sectionId": "gpu-suite"`)
		assert.Contains(t, resultText(res), `"failedStep": "Run tests"`)
	})

	t.Run("get_test_weather scoped to section", func(t *testing.T) {
		args := map[string]any{"test_id": "gpu-cuda", "section_id": "cpu-suite"}
		res := callTool(t, ctx, "get_test_weather", args, baseCfg)
		require.False(t, res.IsError, resultText(res))
		assert.Contains(t, resultText(res), `"name": "cpu shadow"`)
	})
}

// writeRunInputs lays out a sections file, a job list and a log directory.
func writeRunInputs(t *testing.T) (sections, jobs, logs string) {
	t.Helper()
	dir := t.TempDir()
	logs = filepath.Join(dir, "logs")
	require.NoError(t, os.MkdirAll(logs, 0o755))

	sections = filepath.Join(dir, "sections.yaml")
	jobs = filepath.Join(dir, "jobs.json")
	files := map[string]string{
		sections: "sections:\n  - name: GPU Suite\n    jobs:\n      - gpu-cuda\n",
		jobs: `[{"id": 101, "name": "gpu-cuda", "status": "completed", "conclusion": "failure",
			"started_at": "2025-03-10T10:00:00Z", "completed_at": "2025-03-10T10:02:30Z", "run_id": 1001,
			"steps": [{"name": "Run tests", "conclusion": "failure"}]}]`,
		filepath.Join(logs, "101.log"): "##[group]Report tests\nok 1 - warmup\nnot ok 2 - test_kernel_launch\n##[endgroup]\n",
	}
	for path, content := range files {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return sections, jobs, logs
}

func TestMCPServerHandlers_RefreshDashboard(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	output := filepath.Join(t.TempDir(), "dashboard.json")
	baseCfg := &contract.Config{
		OutputFile:  output,
		Now:         now,
		Days:        schema.WeatherDays,
		IndexWindow: 30 * 24 * time.Hour,
		ResultLimit: contract.DefaultResultLimit,
	}

	t.Run("missing inputs", func(t *testing.T) {
		res := callTool(t, ctx, "refresh_dashboard", map[string]any{}, baseCfg)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "failed to refresh dashboard")
		assert.NoFileExists(t, output)
	})

	t.Run("rebuilds the dashboard", func(t *testing.T) {
		sections, jobs, logs := writeRunInputs(t)
		args := map[string]any{"config": sections, "jobs": jobs, "logs_dir": logs}
		res := callTool(t, ctx, "refresh_dashboard", args, baseCfg)
		require.False(t, res.IsError, resultText(res))

		var out struct {
			Totals       schema.SectionSummary `json:"totals"`
			FailingTests int                   `json:"failingTestsInIndex"`
		}
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &out))
		assert.Equal(t, schema.SectionSummary{Total: 1, Failed: 1}, out.Totals)
		assert.Equal(t, 1, out.FailingTests)
		assert.FileExists(t, output)

		weather := callTool(t, ctx, "get_test_weather", map[string]any{"test_id": "gpu-cuda"}, baseCfg)
		require.False(t, weather.IsError, resultText(weather))
		assert.Contains(t, resultText(weather), "test_kernel_launch")
	})
}
