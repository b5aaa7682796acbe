// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/ciweather/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the ciweather MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"ciweather Dashboard Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_dashboard_summary ---
	s.AddTool(mcp.NewTool("get_dashboard_summary",
		mcp.WithDescription("Summarize the latest CI weather dashboard: per-section status counts and every test's status."),
		mcp.WithString("dashboard_file", mcp.Description("Path to the dashboard JSON (defaults to the configured output file).")),
		mcp.WithString("section_id", mcp.Description("Only include this section.")),
	), h.handleGetDashboardSummary)

	// --- 2. Tool: get_failed_tests_index ---
	s.AddTool(mcp.NewTool("get_failed_tests_index",
		mcp.WithDescription("List the most frequently failing tests across all CI jobs in the retention window."),
		mcp.WithString("dashboard_file", mcp.Description("Path to the dashboard JSON.")),
		mcp.WithString("test_name", mcp.Description("Return the full index entry of this failing test instead of the ranking.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleGetFailedTestsIndex)

	// --- 3. Tool: get_test_weather ---
	s.AddTool(mcp.NewTool("get_test_weather",
		mcp.WithDescription("Return the day-by-day weather history of one configured test."),
		mcp.WithString("test_id", mcp.Description("The test id (slug) as shown on the dashboard."), mcp.Required()),
		mcp.WithString("section_id", mcp.Description("Section to search in when test ids repeat across sections.")),
		mcp.WithString("dashboard_file", mcp.Description("Path to the dashboard JSON.")),
	), h.handleGetTestWeather)

	// --- 4. Tool: refresh_dashboard ---
	s.AddTool(mcp.NewTool("refresh_dashboard",
		mcp.WithDescription("Rebuild the dashboard from the job lists and logs, then return its summary."),
		mcp.WithString("config", mcp.Description("Sections config file (defaults to the configured one).")),
		mcp.WithString("jobs", mcp.Description("Comma-separated job list files (defaults to the configured ones).")),
		mcp.WithString("logs_dir", mcp.Description("Directory holding <jobId>.log files.")),
		mcp.WithString("dashboard_file", mcp.Description("Where to write the dashboard JSON.")),
	), h.handleRefreshDashboard)

	return s
}

// StartMCPServer starts the ciweather MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
