package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/ciweather/internal/contract"
	"github.com/huangsam/ciweather/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// testWeather is the JSON view of one test's timeline.
type testWeather struct {
	SectionID            string                     `json:"sectionId"`
	TestID               string                     `json:"testId"`
	Name                 string                     `json:"name"`
	Status               schema.TestStatus          `json:"status"`
	FailureCount         int                        `json:"failureCount"`
	WeatherHistory       []schema.WeatherDay        `json:"weatherHistory"`
	FailedTestsInWeather []schema.WeatherFailedTest `json:"failedTestsInWeather"`
}

// WriteTestWeather outputs the day-by-day weather of a single test,
// dispatching based on the output format configured.
func WriteTestWeather(section *schema.Section, test *schema.TestRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.ExportFile, func(w io.Writer) error {
			return writeJSON(w, testWeather{
				SectionID:            section.ID,
				TestID:               test.ID,
				Name:                 test.Name,
				Status:               test.Status,
				FailureCount:         test.FailureCount,
				WeatherHistory:       test.WeatherHistory,
				FailedTestsInWeather: test.FailedTestsInWeather,
			})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.ExportFile, func(w io.Writer) error {
			return writeWeatherCSV(w, test.WeatherHistory)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errors.New("parquet output is only available for the failure index")
	default:
		return writeWithFile(cfg.ExportFile, func(w io.Writer) error {
			return writeWeatherTable(w, section, test, cfg)
		}, "Wrote table")
	}
}

// writeWeatherTable writes the timeline with one row per day, oldest first.
func writeWeatherTable(w io.Writer, section *schema.Section, test *schema.TestRecord, cfg *contract.Config) error {
	if _, err := fmt.Fprintf(w, "%s / %s: %s (failed %d of %d days)\n",
		section.Name, test.Name, statusLabel(test.Status, cfg.UseColors), test.FailureCount, len(test.WeatherHistory)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Date", "Day", "Job", "Duration", "Failed Step", "Failures"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
	})

	failWidth := getMaxNameWidth(cfg, 70)

	var data [][]string
	for _, d := range test.WeatherHistory {
		data = append(data, []string{
			schema.DayKey(d.Date),
			weatherSymbol(d.Status, cfg.UseEmojis) + " " + string(d.Status),
			formatID(d.JobID),
			formatOptional(d.Duration),
			stepLabel(d),
			contract.TruncateText(failureNames(d.FailureDetails), failWidth),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, f := range test.FailedTestsInWeather {
		if _, err := fmt.Fprintf(w, "  %dx %s\n", f.Count, f.Name); err != nil {
			return err
		}
	}
	return nil
}

// writeWeatherCSV writes one CSV record per day.
func writeWeatherCSV(w io.Writer, history []schema.WeatherDay) error {
	header := []string{"date", "status", "job_id", "run_id", "duration", "failure_step", "failures"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, d := range history {
			rec := []string{
				schema.DayKey(d.Date),
				string(d.Status),
				formatID(d.JobID),
				formatID(d.RunID),
				formatOptional(d.Duration),
				d.FailureStep,
				failureNames(d.FailureDetails),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// stepLabel shows the failed step only on failed days.
func stepLabel(d schema.WeatherDay) string {
	if d.Status != schema.WeatherFailed {
		return ""
	}
	return d.FailureStep
}

func formatID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func formatOptional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// failureNames joins the failing test names of a day with "|".
func failureNames(report *schema.FailureReport) string {
	if report == nil {
		return ""
	}
	names := make([]string, 0, len(report.Failures))
	for _, f := range report.Failures {
		names = append(names, f.Name)
	}
	return strings.Join(names, "|")
}
