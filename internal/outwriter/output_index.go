package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/ciweather/internal/contract"
	"github.com/huangsam/ciweather/internal/parquet"
	"github.com/huangsam/ciweather/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteFailureIndex outputs the top cfg.ResultLimit rows of the failure index,
// dispatching based on the output format configured. Rows are expected in
// rank order.
func WriteFailureIndex(rows []schema.IndexRow, cfg *contract.Config) error {
	total := len(rows)
	if cfg.ResultLimit > 0 && len(rows) > cfg.ResultLimit {
		rows = rows[:cfg.ResultLimit]
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.ExportFile, func(w io.Writer) error {
			return writeJSON(w, rows)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.ExportFile, func(w io.Writer) error {
			return writeIndexCSV(w, rows)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.ExportFile == "" {
			return errors.New("--export-file is required for parquet output")
		}
		return writeWithFile(cfg.ExportFile, func(w io.Writer) error {
			return parquet.WriteFailureIndex(w, rows)
		}, "Wrote Parquet")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.ExportFile, func(w io.Writer) error {
			return writeIndexTable(w, rows, total, cfg)
		}, "Wrote table")
	}
}

// writeIndexTable generates and writes the human-readable index table.
func writeIndexTable(w io.Writer, rows []schema.IndexRow, total int, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Rank", "Test", "Count", "Jobs", "Latest", "Top Job"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	// Rank, counts and the date need about 45 columns; the rest is split between names
	nameWidth := getMaxNameWidth(cfg, 45)
	jobWidth := max(nameWidth/2, minNameWidth)

	var data [][]string
	for i, r := range rows {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(r.TestName, nameWidth),
			strconv.Itoa(r.TotalCount),
			strconv.Itoa(r.UniqueJobsAffected),
			shortDate(r.LatestDate),
			contract.TruncateText(r.TopJob, jobWidth),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing top %d of %d failing tests\n", len(rows), total)
	return err
}

// writeIndexCSV writes the index rows in CSV format.
func writeIndexCSV(w io.Writer, rows []schema.IndexRow) error {
	header := []string{"rank", "test_name", "total_count", "unique_jobs_affected", "latest_date", "top_job"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, r := range rows {
			rec := []string{
				strconv.Itoa(i + 1),
				r.TestName,
				strconv.Itoa(r.TotalCount),
				strconv.Itoa(r.UniqueJobsAffected),
				r.LatestDate,
				r.TopJob,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// shortDate trims an RFC 3339 day to its YYYY-MM-DD part.
func shortDate(iso string) string {
	if t, err := schema.ParseDay(iso); err == nil {
		return schema.DayKey(t)
	}
	return iso
}
