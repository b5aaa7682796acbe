package schema

import "time"

// RunSummary is what the history store records about a finished run.
type RunSummary struct {
	Sections     int
	Tests        int
	Passed       int
	Failed       int
	Running      int
	NotRun       int
	IndexEntries int
}

// TestResult is one test's outcome within a recorded run.
type TestResult struct {
	SectionID    string
	TestID       string
	TestName     string
	Status       TestStatus
	FailureCount int
	Retried      int
	Duration     string
	JobID        *int64
}

// RunRecord represents a row from the ciweather_runs table.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalTests    int32
	FailedTests   int32
	IndexEntries  int32
	ConfigParams  *string
}

// TestResultRecord represents a row from the ciweather_test_results table joined with its run.
type TestResultRecord struct {
	RunID        int64
	RunTime      time.Time
	SectionID    string
	TestID       string
	TestName     string
	Status       string
	FailureCount int32
	Retried      int32
	Duration     string
	JobID        *int64
}
