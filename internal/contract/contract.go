// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/ciweather/schema"
)

// LogSource provides the raw text log of a CI job.
// A missing log is reported with an error wrapping fs.ErrNotExist.
type LogSource interface {
	ReadLog(jobID int64) ([]byte, error)
}

// CacheManager defines the interface for managing the persistent stores.
// This allows the storage layer to be mocked for testing.
type CacheManager interface {
	GetSnapshotStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking dashboard runs and per-test results.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error

	// RecordTestResult stores the outcome of one test within a run
	RecordTestResult(runID int64, result schema.TestResult) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run ordered by id
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllTestResults returns every recorded test result ordered by run and test
	GetAllTestResults() ([]schema.TestResultRecord, error)

	// Close closes the underlying connection
	Close() error
}
