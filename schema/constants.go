package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// TestStatus represents the current status of a configured test.
	TestStatus string

	// WeatherStatus represents the outcome attributed to a single day.
	WeatherStatus string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All test statuses supported.
const (
	PassedStatus  TestStatus = "passed"
	FailedStatus  TestStatus = "failed"
	RunningStatus TestStatus = "running"
	NotRunStatus  TestStatus = "not_run"
)

// All weather statuses supported.
const (
	WeatherNone    WeatherStatus = "none"
	WeatherPassed  WeatherStatus = "passed"
	WeatherFailed  WeatherStatus = "failed"
	WeatherRunning WeatherStatus = "running"
)

// All persistence backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Job status values reported by the CI provider.
const (
	JobQueued     = "queued"
	JobInProgress = "in_progress"
	JobCompleted  = "completed"
	JobWaiting    = "waiting"
	JobPending    = "pending"
)

// Job and step conclusion values reported by the CI provider.
const (
	ConclusionSuccess   = "success"
	ConclusionFailure   = "failure"
	ConclusionCancelled = "cancelled"
	ConclusionSkipped   = "skipped"
	ConclusionTimedOut  = "timed_out"
)

// Dashboard-wide constants.
const (
	// WeatherDays is the number of days kept in every weather history.
	WeatherDays = 10

	// IndexWindowDays is the default retention of failure index occurrences.
	IndexWindowDays = 30

	// MaxErrorFailures caps the failures embedded in a test's error details.
	MaxErrorFailures = 20

	// NotAvailable is shown for durations and times that cannot be computed.
	NotAvailable = "N/A"

	// Never is shown when no job with the requested conclusion exists.
	Never = "Never"

	// DefaultFailureStep is used when no failed step can be identified.
	DefaultFailureStep = "N/A"

	// SnapshotVersion is bumped whenever the persisted Dashboard layout changes.
	SnapshotVersion = 1
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid persistence backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
