package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/ciweather/internal/contract"
	"github.com/huangsam/ciweather/schema"
)

// Table names for run history.
const (
	runsTable        = "ciweather_runs"
	testResultsTable = "ciweather_test_results"
)

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the history store and migrates it to the latest schema.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	if _, err := migrateTo(backend, connStr, -1); err != nil {
		return nil, fmt.Errorf("failed to prepare history tables: %w", err)
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}
	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// BeginRun creates a new run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	if hs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING run_id`, quotedTableName)
		err = hs.db.QueryRow(query, formatTime(startTime, hs.backend), string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quotedTableName)
		var result sql.Result
		result, err = hs.db.Exec(query, formatTime(startTime, hs.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error {
	if hs.disabled() {
		return nil
	}

	startTime, err := hs.runStartTime(runID)
	if err != nil {
		return err
	}
	durationMs := endTime.Sub(startTime).Milliseconds()

	query := rebind(hs.backend, fmt.Sprintf(
		`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_tests = ?, failed_tests = ?, index_entries = ? WHERE run_id = ?`,
		quoteTableName(runsTable, hs.backend)))
	if _, err := hs.db.Exec(query, formatTime(endTime, hs.backend), durationMs,
		summary.Tests, summary.Failed, summary.IndexEntries, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// runStartTime reads back the start time of a run.
func (hs *HistoryStoreImpl) runStartTime(runID int64) (time.Time, error) {
	query := rebind(hs.backend, fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quoteTableName(runsTable, hs.backend)))
	row := hs.db.QueryRow(query, runID)

	// Handle different time storage formats per backend
	if hs.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
		}
		t, err := parseSQLiteTime(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse start_time: %w", err)
		}
		return t, nil
	}
	var t time.Time
	if err := row.Scan(&t); err != nil {
		return time.Time{}, fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	return t, nil
}

// RecordTestResult stores the outcome of one test within a run.
func (hs *HistoryStoreImpl) RecordTestResult(runID int64, result schema.TestResult) error {
	if hs.disabled() {
		return nil
	}

	startTime, err := hs.runStartTime(runID)
	if err != nil {
		return err
	}

	query := rebind(hs.backend, fmt.Sprintf(`
		INSERT INTO %s (run_id, run_time, section_id, test_id, test_name, status,
		                failure_count, retried, duration, job_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, quoteTableName(testResultsTable, hs.backend)))
	if _, err := hs.db.Exec(query,
		runID, formatTime(startTime, hs.backend), result.SectionID, result.TestID, result.TestName,
		string(result.Status), result.FailureCount, result.Retried, result.Duration, result.JobID,
	); err != nil {
		return fmt.Errorf("failed to insert test result: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.disabled() {
		return status, nil
	}

	runs := quoteTableName(runsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs)
		oldestQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs)

		var err error
		if status.LastRunID, status.LastRunTime, err = hs.scanRunTime(hs.db.QueryRow(lastQuery)); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if _, status.OldestRunTime, err = hs.scanRunTime(hs.db.QueryRow(oldestQuery)); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
	}

	for _, table := range []string{runsTable, testResultsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalTestResults = int(status.TableSizes[testResultsTable])

	return status, nil
}

// scanRunTime scans a (run_id, start_time) row.
func (hs *HistoryStoreImpl) scanRunTime(row *sql.Row) (int64, time.Time, error) {
	var id int64
	if hs.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&id, &s); err != nil {
			return 0, time.Time{}, err
		}
		t, err := parseSQLiteTime(s)
		return id, t, err
	}
	var t time.Time
	err := row.Scan(&id, &t)
	return id, t, err
}

// GetAllRuns retrieves all runs from the store.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, total_tests, failed_tests, index_entries, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var totalTests, failedTests, indexEntries sql.NullInt32

		switch hs.backend {
		case schema.SQLiteBackend:
			var startStr string
			var endStr *string
			if err := rows.Scan(&record.RunID, &startStr, &endStr, &record.RunDurationMs,
				&totalTests, &failedTests, &indexEntries, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if record.StartTime, err = parseSQLiteTime(startStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endStr != nil {
				end, err := parseSQLiteTime(*endStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &end
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs,
				&totalTests, &failedTests, &indexEntries, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}
		record.TotalTests = totalTests.Int32
		record.FailedTests = failedTests.Int32
		record.IndexEntries = indexEntries.Int32
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllTestResults retrieves all recorded test results from the store.
func (hs *HistoryStoreImpl) GetAllTestResults() ([]schema.TestResultRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_time, section_id, test_id, test_name, status,
		failure_count, retried, duration, job_id
		FROM %s ORDER BY run_id, result_id`, quoteTableName(testResultsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query test results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.TestResultRecord
	for rows.Next() {
		var r schema.TestResultRecord
		switch hs.backend {
		case schema.SQLiteBackend:
			var runTime string
			if err := rows.Scan(&r.RunID, &runTime, &r.SectionID, &r.TestID, &r.TestName, &r.Status,
				&r.FailureCount, &r.Retried, &r.Duration, &r.JobID); err != nil {
				return nil, fmt.Errorf("failed to scan test result: %w", err)
			}
			if r.RunTime, err = parseSQLiteTime(runTime); err != nil {
				return nil, fmt.Errorf("failed to parse run_time: %w", err)
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&r.RunID, &r.RunTime, &r.SectionID, &r.TestID, &r.TestName, &r.Status,
				&r.FailureCount, &r.Retried, &r.Duration, &r.JobID); err != nil {
				return nil, fmt.Errorf("failed to scan test result: %w", err)
			}
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating test results: %w", err)
	}
	return results, nil
}
