package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/ciweather/core/failindex"
	"github.com/huangsam/ciweather/core/logparse"
	"github.com/huangsam/ciweather/core/weather"
	"github.com/huangsam/ciweather/internal/contract"
	"github.com/huangsam/ciweather/internal/inputs"
	"github.com/huangsam/ciweather/internal/iocache"
	"github.com/huangsam/ciweather/internal/outwriter"
	"github.com/huangsam/ciweather/schema"
)

// BuildDashboard runs the aggregation over already loaded inputs. previous
// may be nil, in which case weather and the failure index start empty.
func BuildDashboard(cfg *contract.Config, sections []schema.SectionConfig, jobs []schema.Job, logs contract.LogSource, previous *schema.Dashboard) *schema.Dashboard {
	var seed schema.FailureIndex
	if previous != nil {
		seed = previous.FailedTestsIndex
	}
	index := failindex.New(seed, cfg.IndexWindow)
	parser := logparse.NewParser(logs)
	builder := &weather.Builder{
		Reports:  parser,
		Recorder: index,
		Now:      cfg.Now,
		Days:     cfg.Days,
	}
	assembler := NewAssembler(jobs, previous, parser, builder)

	dash := &schema.Dashboard{Sections: make([]schema.Section, 0, len(sections))}
	for _, sc := range sections {
		dash.Sections = append(dash.Sections, assembler.BuildSection(sc))
	}

	index.Finalize(cfg.Now)
	dash.FailedTestsIndex = index.Entries()
	dash.LastRefresh = cfg.Now
	return dash
}

// ExecuteDashboard loads the inputs, builds the dashboard and persists it.
// It serves as the main entry point for the 'run' command.
func ExecuteDashboard(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	if err := cfg.RequireRunInputs(); err != nil {
		return err
	}

	sections, err := inputs.LoadSections(cfg.SectionsFile)
	if err != nil {
		return fmt.Errorf("failed to load sections config: %w", err)
	}
	jobs, err := inputs.LoadJobs(cfg.JobsFiles...)
	if err != nil {
		return fmt.Errorf("failed to load job list: %w", err)
	}

	if !cfg.Quiet && !shouldSuppressHeader(ctx) {
		outwriter.LogRunHeader(cfg, len(sections), len(jobs))
	}

	var snapshots contract.CacheStore
	var history contract.HistoryStore
	if mgr != nil {
		snapshots = mgr.GetSnapshotStore()
		history = mgr.GetHistoryStore()
	}

	previous := loadPrevious(cfg, snapshots)
	ctx = beginRun(ctx, cfg, history)

	dash := BuildDashboard(cfg, sections, jobs, inputs.NewLogDir(cfg.LogsDir), previous)

	if err := outwriter.WriteDashboardJSON(cfg.OutputFile, dash); err != nil {
		return fmt.Errorf("failed to write dashboard: %w", err)
	}
	if err := iocache.StoreSnapshot(snapshots, iocache.SnapshotKey(cfg.OutputFile), dash, cfg.Now); err != nil {
		contract.LogWarn("Failed to store dashboard snapshot", err)
	}
	recordRun(ctx, history, dash)

	if cfg.Quiet || shouldSuppressHeader(ctx) {
		return nil
	}
	return outwriter.PrintDashboardSummary(dash, cfg, time.Since(start))
}

// loadPrevious returns the snapshot to merge with: the previous output file
// first, then the snapshot cache. Unusable snapshots are reported and skipped.
func loadPrevious(cfg *contract.Config, snapshots contract.CacheStore) *schema.Dashboard {
	previous, err := inputs.LoadSnapshot(cfg.SnapshotFile())
	if err != nil {
		contract.LogWarn(fmt.Sprintf("Ignoring unreadable snapshot %s", cfg.SnapshotFile()), err)
	}
	if previous != nil {
		return previous
	}

	previous, err = iocache.LoadSnapshot(snapshots, iocache.SnapshotKey(cfg.OutputFile))
	if err != nil {
		contract.LogWarn("Ignoring cached snapshot", err)
		return nil
	}
	return previous
}

// beginRun opens a history run and stores its id in the context.
func beginRun(ctx context.Context, cfg *contract.Config, history contract.HistoryStore) context.Context {
	if history == nil {
		return ctx
	}
	runID, err := history.BeginRun(time.Now(), cfg.Params())
	if err != nil {
		contract.LogWarn("Run history initialization failed", err)
		return ctx
	}
	if runID <= 0 {
		return ctx
	}
	return withRunID(ctx, runID)
}

// recordRun stores every test outcome of the dashboard and closes the run.
func recordRun(ctx context.Context, history contract.HistoryStore, dash *schema.Dashboard) {
	runID, ok := getRunID(ctx)
	if history == nil || !ok {
		return
	}

	for _, section := range dash.Sections {
		for _, test := range section.Tests {
			result := schema.TestResult{
				SectionID:    section.ID,
				TestID:       test.ID,
				TestName:     test.Name,
				Status:       test.Status,
				FailureCount: test.FailureCount,
				Retried:      test.Retried,
				Duration:     test.Duration,
				JobID:        test.JobID,
			}
			if err := history.RecordTestResult(runID, result); err != nil {
				contract.LogWarn(fmt.Sprintf("Failed to record result for %s/%s", section.ID, test.ID), err)
			}
		}
	}

	total := dash.Summary()
	summary := schema.RunSummary{
		Sections:     len(dash.Sections),
		Tests:        total.Total,
		Passed:       total.Passed,
		Failed:       total.Failed,
		Running:      total.Running,
		NotRun:       total.NotRun,
		IndexEntries: len(dash.FailedTestsIndex),
	}
	if err := history.EndRun(runID, time.Now(), summary); err != nil {
		contract.LogWarn("Failed to finalize run history", err)
	}
}
