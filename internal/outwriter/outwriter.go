// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/ciweather/internal/contract"
	"github.com/huangsam/ciweather/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteDashboardJSON atomically writes the dashboard to path.
func WriteDashboardJSON(path string, dash *schema.Dashboard) error {
	if path == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	return writeAtomic(path, func(w io.Writer) error {
		return writeJSON(w, dash)
	})
}

// LogRunHeader prints a concise, 2-line header before a dashboard run.
func LogRunHeader(cfg *contract.Config, sections, jobs int) {
	if cfg.UseEmojis {
		fmt.Printf("🌦️  Sections: %d, Jobs: %d (%d-day weather)\n", sections, jobs, cfg.Days)
		fmt.Printf("📅 Now: %s, Index window: %v\n", cfg.Now.Format(contract.DateTimeFormat), cfg.IndexWindow)
		return
	}
	fmt.Printf("Sections: %d, Jobs: %d (%d-day weather)\n", sections, jobs, cfg.Days)
	fmt.Printf("Now: %s, Index window: %v\n", cfg.Now.Format(contract.DateTimeFormat), cfg.IndexWindow)
}

// PrintDashboardSummary prints one table row per configured test to stdout.
func PrintDashboardSummary(dash *schema.Dashboard, cfg *contract.Config, duration time.Duration) error {
	return writeSummaryTable(os.Stdout, dash, cfg, duration)
}

// writeSummaryTable generates and writes the human-readable summary.
func writeSummaryTable(w io.Writer, dash *schema.Dashboard, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Section", "Test", "Status", "Weather", "Fails", "Last Run", "Duration"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
	})

	// Status, weather, counts and times take roughly this many columns
	nameWidth := getMaxNameWidth(cfg, 30+schema.WeatherDays*2) / 2

	var data [][]string
	for _, section := range dash.Sections {
		for _, test := range section.Tests {
			data = append(data, []string{
				contract.TruncateText(section.Name, nameWidth),
				contract.TruncateText(test.Name, nameWidth),
				statusLabel(test.Status, cfg.UseColors),
				weatherStrip(test.WeatherHistory, cfg),
				fmt.Sprintf("%d", test.FailureCount),
				test.LastRun,
				test.Duration,
			})
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	total := dash.Summary()
	if _, err := fmt.Fprintf(w, "Tests: %d (passed: %d, failed: %d, running: %d, not run: %d)\n",
		total.Total, total.Passed, total.Failed, total.Running, total.NotRun); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Failure index: %d tests. Dashboard written to %s\n", len(dash.FailedTestsIndex), cfg.OutputFile); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Run completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// statusLabel renders a test status for tables.
func statusLabel(status schema.TestStatus, useColors bool) string {
	if useColors {
		return contract.GetColorLabel(status)
	}
	return contract.GetPlainLabel(status)
}

// weatherSymbol returns the glyph of one day, as an emoji or plain ASCII.
func weatherSymbol(status schema.WeatherStatus, useEmojis bool) string {
	if useEmojis {
		switch status {
		case schema.WeatherPassed:
			return "☀️"
		case schema.WeatherFailed:
			return "⛈️"
		case schema.WeatherRunning:
			return "🌤️"
		default:
			return "▫️"
		}
	}
	switch status {
	case schema.WeatherPassed:
		return "+"
	case schema.WeatherFailed:
		return "x"
	case schema.WeatherRunning:
		return "~"
	default:
		return "."
	}
}

// weatherStrip renders a history oldest first, one glyph per day.
func weatherStrip(history []schema.WeatherDay, cfg *contract.Config) string {
	var b strings.Builder
	for _, d := range history {
		symbol := weatherSymbol(d.Status, cfg.UseEmojis)
		if cfg.UseColors && !cfg.UseEmojis {
			symbol = weatherColor(d.Status).Sprint(symbol)
		}
		b.WriteString(symbol)
	}
	return b.String()
}

// weatherColor maps a day's status onto the test status colors.
func weatherColor(status schema.WeatherStatus) *color.Color {
	switch status {
	case schema.WeatherPassed:
		return contract.PassedColor
	case schema.WeatherFailed:
		return contract.FailedColor
	case schema.WeatherRunning:
		return contract.RunningColor
	default:
		return contract.NotRunColor
	}
}
