// Package main provides a performance benchmarking tool for the ciweather CLI.
// It generates synthetic CI workloads of increasing size, runs the dashboard
// build several times per workload, treating the first successful run as cold
// and averaging the rest as warm, and writes the timings to a CSV file.
//
// Prerequisites:
// - ciweather binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory the synthetic workloads are generated in
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Workload    string
	Jobs        int
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// Workload describes one synthetic dashboard.
type Workload struct {
	Name            string
	Sections        int
	TestsPerSection int
	JobsPerDay      int // Jobs per test and day
	FailuresPerLog  int // Failing TAP lines in each failed job log
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Days        int
	NoCacheRuns int
	CacheRuns   int
	Workloads   []Workload
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		Days:        10,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Workloads: []Workload{
			{Name: "small", Sections: 2, TestsPerSection: 5, JobsPerDay: 1, FailuresPerLog: 3},
			{Name: "medium", Sections: 8, TestsPerSection: 15, JobsPerDay: 3, FailuresPerLog: 10},
			{Name: "large", Sections: 20, TestsPerSection: 40, JobsPerDay: 6, FailuresPerLog: 40},
		},
	}

	if _, err := exec.LookPath("ciweather"); err != nil {
		fmt.Printf("Prerequisites check failed: ciweather binary not found in PATH\n")
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks generates and measures every configured workload
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d workloads, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Workloads), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, w := range config.Workloads {
		dir := filepath.Join(config.WorkDir, w.Name)
		jobs, err := generateWorkload(dir, w, config.Days)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", w.Name, err)
			continue
		}
		fmt.Printf("Benchmarking %s (%d jobs)\n", w.Name, jobs)
		result := runBenchmarkSuite(config, w.Name, dir)
		result.Jobs = jobs
		results = append(results, result)
	}

	return results
}

// generateWorkload writes sections.yaml, jobs.json and the failed job logs of
// a workload into dir and returns the number of jobs generated.
func generateWorkload(dir string, w Workload, days int) (int, error) {
	logsDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return 0, err
	}

	var sections strings.Builder
	sections.WriteString("sections:\n")
	type step struct {
		Name       string `json:"name"`
		Conclusion string `json:"conclusion"`
	}
	type job struct {
		ID          int64  `json:"id"`
		RunID       int64  `json:"run_id"`
		Name        string `json:"name"`
		Status      string `json:"status"`
		Conclusion  string `json:"conclusion"`
		StartedAt   string `json:"started_at"`
		CompletedAt string `json:"completed_at"`
		RunAttempt  int    `json:"run_attempt"`
		Steps       []step `json:"steps"`
	}
	var jobs []job

	now := time.Now().UTC()
	var nextID int64 = 1
	for s := range w.Sections {
		fmt.Fprintf(&sections, "  - name: Section %d\n    jobs:\n", s)
		for t := range w.TestsPerSection {
			name := fmt.Sprintf("suite-%d-test-%d", s, t)
			fmt.Fprintf(&sections, "      - %s\n", name)

			for d := range days {
				for r := range w.JobsPerDay {
					id := nextID
					nextID++
					start := now.Add(-time.Duration(d)*24*time.Hour - time.Duration(r+1)*time.Hour)
					conclusion := "success"
					if (id+int64(t))%3 == 0 {
						conclusion = "failure"
						if err := writeFailedLog(logsDir, id, w.FailuresPerLog, start); err != nil {
							return 0, err
						}
					}
					jobs = append(jobs, job{
						ID:          id,
						RunID:       id * 10,
						Name:        name,
						Status:      "completed",
						Conclusion:  conclusion,
						StartedAt:   start.Format(time.RFC3339),
						CompletedAt: start.Add(7 * time.Minute).Format(time.RFC3339),
						RunAttempt:  1,
						Steps:       []step{{Name: "Run tests", Conclusion: conclusion}},
					})
				}
			}
		}
	}

	if err := os.WriteFile(filepath.Join(dir, "sections.yaml"), []byte(sections.String()), 0o644); err != nil {
		return 0, err
	}
	data, err := json.Marshal(map[string]any{"total_count": len(jobs), "jobs": jobs})
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(filepath.Join(dir, "jobs.json"), data, 0o644); err != nil {
		return 0, err
	}
	return len(jobs), nil
}

// writeFailedLog writes a timestamped TAP report with n failing tests.
func writeFailedLog(logsDir string, jobID int64, n int, at time.Time) error {
	var b strings.Builder
	ts := at.Format("2006-01-02T15:04:05.0000000Z")
	fmt.Fprintf(&b, "%s ##[group]Report tests\n", ts)
	for i := 1; i <= n; i++ {
		// Reuse a small pool of names so the failure index sees repeats
		fmt.Fprintf(&b, "%s not ok %d - test_case_%d # assertion failed\n", ts, i, (int(jobID)+i)%(n*2))
	}
	fmt.Fprintf(&b, "%s 1..%d\n%s ##[endgroup]\n", ts, n, ts)
	return os.WriteFile(filepath.Join(logsDir, fmt.Sprintf("%d.log", jobID)), []byte(b.String()), 0o644)
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a workload
func runBenchmarkSuite(config BenchmarkConfig, workload, dir string) BenchmarkResult {
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, dir, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs, starting from an empty cache
	cacheDB := filepath.Join(dir, "cache.db")
	_ = os.Remove(cacheDB)
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Workload:    workload,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark builds the dashboard multiple times with the specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, dir, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	output := filepath.Join(dir, "dashboard.json")
	args := []string{
		"run",
		"--config", filepath.Join(dir, "sections.yaml"),
		"--jobs", filepath.Join(dir, "jobs.json"),
		"--logs-dir", filepath.Join(dir, "logs"),
		"--output-file", output,
		"--days", fmt.Sprint(config.Days),
		"--cache-backend", cacheBackend,
	}
	if cacheBackend == "sqlite" {
		args = append(args, "--cache-db-connect", filepath.Join(dir, "cache.db"))
	}

	var times []float64
	for range numRuns {
		// Every run starts without a dashboard file so the cache is what seeds it
		_ = os.Remove(output)
		start := time.Now()

		cmd := exec.Command("ciweather", args...)
		cmd.Dir = dir

		done := make(chan bool)
		var out []byte
		var cmdErr error

		go func() {
			out, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && strings.Contains(string(out), "Run completed in") {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("ciweather_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"workload", "jobs", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		record := []string{result.Workload, fmt.Sprint(result.Jobs), result.NoCacheTime, result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-8s (%6d jobs): No-cache: %s, Cold: %s, Warm: %s\n",
			result.Workload, result.Jobs, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
