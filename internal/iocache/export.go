package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/ciweather/internal/contract"
	"github.com/huangsam/ciweather/internal/parquet"
)

// ExecuteHistoryExport exports the run history to <outputFile>.runs.parquet
// and <outputFile>.test_results.parquet.
func ExecuteHistoryExport(store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--export-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not configured (--history-backend)")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total test results: %d\n", status.TotalTestResults)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	results, err := store.GetAllTestResults()
	if err != nil {
		return fmt.Errorf("failed to retrieve test results: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(runs), runsFile)

	resultsFile := outputFile + ".test_results.parquet"
	if err := parquet.WriteTestResultsParquet(parquet.ConvertTestResultRecords(results), resultsFile); err != nil {
		return fmt.Errorf("failed to write test results: %w", err)
	}
	fmt.Printf("Exported %d test results to: %s\n", len(results), resultsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - Apache Spark")
	return nil
}
