package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/ciweather/core"
	"github.com/huangsam/ciweather/internal/contract"
	"github.com/huangsam/ciweather/internal/inputs"
	"github.com/huangsam/ciweather/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// testSummary is the compact view of a test in the dashboard summary.
type testSummary struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Status       schema.TestStatus `json:"status"`
	FailureCount int               `json:"failureCount"`
	LastRun      string            `json:"lastRun"`
	LastFailure  string            `json:"lastFailure"`
}

type sectionSummary struct {
	ID      string                `json:"id"`
	Name    string                `json:"name"`
	Summary schema.SectionSummary `json:"summary"`
	Tests   []testSummary         `json:"tests"`
}

type dashboardSummary struct {
	LastRefresh  time.Time             `json:"lastRefresh"`
	Totals       schema.SectionSummary `json:"totals"`
	FailingTests int                   `json:"failingTestsInIndex"`
	Sections     []sectionSummary      `json:"sections"`
}

// loadDashboard reads the dashboard named by the request or the configured one.
func (h *toolHandler) loadDashboard(request mcp.CallToolRequest) (*schema.Dashboard, error) {
	cfg := h.baseCfg.Clone()
	if f := request.GetString("dashboard_file", ""); f != "" {
		cfg.OutputFile = f
		cfg.PreviousFile = ""
	}
	return core.LoadDashboard(cfg, h.mgr)
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleGetDashboardSummary(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dash, err := h.loadDashboard(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load dashboard: %v", err)), nil
	}
	only := request.GetString("section_id", "")
	out, ok := summarize(dash, only)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("section %q not found", only)), nil
	}
	return jsonResult(out), nil
}

// summarize builds the compact dashboard view. ok is false when only names
// a section the dashboard does not have.
func summarize(dash *schema.Dashboard, only string) (dashboardSummary, bool) {
	out := dashboardSummary{
		LastRefresh:  dash.LastRefresh,
		Totals:       dash.Summary(),
		FailingTests: len(dash.FailedTestsIndex),
		Sections:     []sectionSummary{},
	}
	for _, s := range dash.Sections {
		if only != "" && s.ID != only {
			continue
		}
		ss := sectionSummary{ID: s.ID, Name: s.Name, Summary: s.Summary, Tests: make([]testSummary, 0, len(s.Tests))}
		for _, t := range s.Tests {
			ss.Tests = append(ss.Tests, testSummary{
				ID:           t.ID,
				Name:         t.Name,
				Status:       t.Status,
				FailureCount: t.FailureCount,
				LastRun:      t.LastRun,
				LastFailure:  t.LastFailure,
			})
		}
		out.Sections = append(out.Sections, ss)
	}
	return out, only == "" || len(out.Sections) > 0
}

func (h *toolHandler) handleGetFailedTestsIndex(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dash, err := h.loadDashboard(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load dashboard: %v", err)), nil
	}

	if name := request.GetString("test_name", ""); name != "" {
		entry, ok := dash.FailedTestsIndex[name]
		if !ok || entry == nil {
			return mcp.NewToolResultError(fmt.Sprintf("test %q is not in the failure index", name)), nil
		}
		return jsonResult(map[string]any{"testName": name, "entry": entry}), nil
	}

	limit := h.baseCfg.ResultLimit
	if l := request.GetInt("limit", 0); l > 0 {
		limit = min(l, contract.MaxResultLimit)
	}
	return jsonResult(core.FailureIndexRows(dash, limit)), nil
}

func (h *toolHandler) handleGetTestWeather(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	testID := request.GetString("test_id", "")
	if testID == "" {
		return mcp.NewToolResultError("test_id is required"), nil
	}

	dash, err := h.loadDashboard(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load dashboard: %v", err)), nil
	}
	section, test, err := core.FindTest(dash, request.GetString("section_id", ""), testID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]any{
		"sectionId":            section.ID,
		"testId":               test.ID,
		"name":                 test.Name,
		"status":               test.Status,
		"failureCount":         test.FailureCount,
		"weatherHistory":       test.WeatherHistory,
		"failedTestsInWeather": test.FailedTestsInWeather,
		"error":                test.Error,
	}), nil
}

func (h *toolHandler) handleRefreshDashboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if f := request.GetString("config", ""); f != "" {
		cfg.SectionsFile = f
	}
	if jobs := request.GetString("jobs", ""); jobs != "" {
		cfg.JobsFiles = nil
		for p := range strings.SplitSeq(jobs, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cfg.JobsFiles = append(cfg.JobsFiles, trimmed)
			}
		}
	}
	if dir := request.GetString("logs_dir", ""); dir != "" {
		cfg.LogsDir = dir
	}
	if f := request.GetString("dashboard_file", ""); f != "" {
		cfg.OutputFile = f
		cfg.PreviousFile = ""
	}

	// stdout carries the MCP stream
	if err := core.ExecuteDashboard(core.WithSuppressHeader(ctx), cfg, h.mgr); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to refresh dashboard: %v", err)), nil
	}
	dash, err := inputs.LoadSnapshot(cfg.OutputFile)
	if err != nil || dash == nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read refreshed dashboard: %v", err)), nil
	}
	out, _ := summarize(dash, "")
	return jsonResult(out), nil
}
