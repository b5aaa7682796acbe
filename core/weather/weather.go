// Package weather reconstructs the recent day-by-day outcome of a configured test.
package weather

import (
	"strconv"
	"time"

	"github.com/huangsam/ciweather/internal/contract"
	"github.com/huangsam/ciweather/schema"
)

// ReportSource returns the parsed failure report of a job, or nil when the
// job has no usable test output.
type ReportSource interface {
	Parse(jobID int64) *schema.FailureReport
}

// Recorder receives every failing test found on a failed day.
type Recorder interface {
	Record(testName, dateISO, jobName, jobID string, runID int64)
}

// DayCache holds a test's weather from the previous snapshot, keyed by calendar day.
type DayCache map[string]schema.WeatherDay

// NewDayCache indexes days by their calendar day. The first entry wins on duplicates.
func NewDayCache(days []schema.WeatherDay) DayCache {
	cache := make(DayCache, len(days))
	for _, d := range days {
		if d.Date.IsZero() {
			continue
		}
		key := d.DayKey()
		if _, ok := cache[key]; !ok {
			cache[key] = d
		}
	}
	return cache
}

// Builder produces fixed-length weather histories.
type Builder struct {
	Reports  ReportSource
	Recorder Recorder
	Now      time.Time
	Days     int
}

// days returns the window length, defaulting to schema.WeatherDays.
func (b *Builder) days() int {
	if b.Days <= 0 {
		return schema.WeatherDays
	}
	return b.Days
}

// Window returns the calendar days covered by a history, oldest first,
// each at UTC midnight and ending on the day of b.Now.
func (b *Builder) Window() []time.Time {
	n := b.days()
	today := contract.TruncateToDay(b.Now)
	out := make([]time.Time, n)
	for i := range n {
		out[i] = today.AddDate(0, 0, i-(n-1))
	}
	return out
}

// Build returns one WeatherDay per day of the window for a test whose jobs
// are given most recent first. displayName is forwarded to the Recorder.
func (b *Builder) Build(displayName string, jobs []schema.Job, cache DayCache) []schema.WeatherDay {
	window := b.Window()
	history := make([]schema.WeatherDay, len(window))
	for i, day := range window {
		history[i] = b.buildDay(day, displayName, jobs, cache)
	}
	return history
}

// buildDay resolves a single day: matched job first, then the cached day, then nothing.
func (b *Builder) buildDay(day time.Time, displayName string, jobs []schema.Job, cache DayCache) schema.WeatherDay {
	wd := schema.WeatherDay{
		Date:        day,
		Status:      schema.WeatherNone,
		FailureStep: schema.DefaultFailureStep,
	}

	job := findJobForDay(jobs, day)
	if job == nil {
		if cached, ok := cachedDay(cache, day); ok {
			wd.Status = cached.Status
			wd.RunID = cached.RunID
			wd.JobID = cached.JobID
			wd.FailureDetails = cached.FailureDetails.Clone()
		}
		return wd
	}

	runID := job.RunIdentifier()
	jobID := job.ID
	wd.RunID = &runID
	wd.JobID = &jobID
	wd.FailureStep = job.FailedStep()
	if d := contract.FormatDuration(job.StartTimePtr(), job.CompletedAt); d != schema.NotAvailable {
		wd.Duration = &d
	}

	switch {
	case job.IsRunning():
		wd.Status = schema.WeatherRunning
	case job.IsSuccess():
		wd.Status = schema.WeatherPassed
	case job.IsFailure():
		wd.Status = schema.WeatherFailed
		wd.FailureDetails = freshDetails(b.Reports, job)
		if wd.FailureDetails == nil {
			wd.FailureDetails = cachedDetails(cache, day)
		}
		b.forward(wd, displayName, job)
	}
	return wd
}

// forward hands every failure of a failed day to the Recorder.
func (b *Builder) forward(wd schema.WeatherDay, displayName string, job *schema.Job) {
	if b.Recorder == nil || wd.FailureDetails == nil {
		return
	}
	dateISO := schema.DayISO(wd.Date)
	jobID := strconv.FormatInt(job.ID, 10)
	for _, f := range wd.FailureDetails.Failures {
		b.Recorder.Record(f.Name, dateISO, displayName, jobID, job.RunIdentifier())
	}
}

// findJobForDay returns the first job whose start day equals day. Jobs are
// expected most recent first, so earlier same-day attempts are never attributed.
func findJobForDay(jobs []schema.Job, day time.Time) *schema.Job {
	for i := range jobs {
		start := jobs[i].StartTime()
		if start.IsZero() {
			continue
		}
		if contract.SameDay(start, day) {
			return &jobs[i]
		}
	}
	return nil
}

// freshDetails parses the job's own log.
func freshDetails(reports ReportSource, job *schema.Job) *schema.FailureReport {
	if reports == nil {
		return nil
	}
	return reports.Parse(job.ID)
}

// cachedDetails returns the failure details of the cached entry for day.
func cachedDetails(cache DayCache, day time.Time) *schema.FailureReport {
	cached, ok := cachedDay(cache, day)
	if !ok {
		return nil
	}
	return cached.FailureDetails.Clone()
}

// cachedDay returns the cached entry for day.
func cachedDay(cache DayCache, day time.Time) (schema.WeatherDay, bool) {
	if cache == nil {
		return schema.WeatherDay{}, false
	}
	d, ok := cache[schema.DayKey(day)]
	return d, ok
}
