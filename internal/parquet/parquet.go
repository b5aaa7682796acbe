// Package parquet exports dashboard history and the failure index to Parquet
// files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/ciweather/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single dashboard run.
// This struct maps to the ciweather_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalTests   int32 `parquet:"total_tests,snappy"`
	FailedTests  int32 `parquet:"failed_tests,snappy"`
	IndexEntries int32 `parquet:"index_entries,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// TestResult represents the outcome of one configured test within a run.
// This struct maps to the ciweather_test_results database table.
type TestResult struct {
	RunID        int64     `parquet:"run_id,snappy"`
	RunTime      time.Time `parquet:"run_time,snappy"`
	SectionID    string    `parquet:"section_id,snappy,dict"`
	TestID       string    `parquet:"test_id,snappy,dict"`
	TestName     string    `parquet:"test_name,snappy"`
	Status       string    `parquet:"status,snappy,dict"`
	FailureCount int32     `parquet:"failure_count,snappy"`
	Retried      int32     `parquet:"retried,snappy"`
	Duration     string    `parquet:"duration,snappy"`

	// JobID is the CI job the status was taken from (nullable)
	JobID *int64 `parquet:"job_id,optional,snappy"`
}

// FailureIndexRow is one failing test of the cross-run failure index.
type FailureIndexRow struct {
	TestName           string `parquet:"test_name,snappy"`
	TotalCount         int32  `parquet:"total_count,snappy"`
	UniqueJobsAffected int32  `parquet:"unique_jobs_affected,snappy"`
	LatestDate         string `parquet:"latest_date,snappy"`
	TopJob             string `parquet:"top_job,snappy,dict"`
}

// writeRows writes rows of any struct type to w, inferring the schema from its tags.
func writeRows[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// writeFile creates outputPath and writes rows to it.
func writeFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeRows(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteRunsParquet writes runs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteTestResultsParquet writes test results to a Parquet file.
func WriteTestResultsParquet(data []TestResult, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteFailureIndex writes failure index rows to w.
func WriteFailureIndex(w io.Writer, rows []schema.IndexRow) error {
	return writeRows(w, ConvertIndexRows(rows))
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalTests:    record.TotalTests,
			FailedTests:   record.FailedTests,
			IndexEntries:  record.IndexEntries,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertTestResultRecords converts schema.TestResultRecord to TestResult for Parquet export.
func ConvertTestResultRecords(records []schema.TestResultRecord) []TestResult {
	result := make([]TestResult, len(records))
	for i, r := range records {
		result[i] = TestResult{
			RunID:        r.RunID,
			RunTime:      r.RunTime,
			SectionID:    r.SectionID,
			TestID:       r.TestID,
			TestName:     r.TestName,
			Status:       r.Status,
			FailureCount: r.FailureCount,
			Retried:      r.Retried,
			Duration:     r.Duration,
			JobID:        r.JobID,
		}
	}
	return result
}

// ConvertIndexRows converts schema.IndexRow to FailureIndexRow.
func ConvertIndexRows(rows []schema.IndexRow) []FailureIndexRow {
	result := make([]FailureIndexRow, len(rows))
	for i, r := range rows {
		result[i] = FailureIndexRow{
			TestName:           r.TestName,
			TotalCount:         int32(r.TotalCount),
			UniqueJobsAffected: int32(r.UniqueJobsAffected),
			LatestDate:         r.LatestDate,
			TopJob:             r.TopJob,
		}
	}
	return result
}
