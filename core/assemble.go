package core

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/ciweather/core/weather"
	"github.com/huangsam/ciweather/internal/contract"
	"github.com/huangsam/ciweather/schema"
)

// Assembler turns configured sections into dashboard sections.
type Assembler struct {
	jobs     map[string][]schema.Job // exact job name -> jobs, most recent first
	previous *schema.Dashboard
	reports  weather.ReportSource
	builder  *weather.Builder
	now      time.Time
}

// NewAssembler indexes jobs by name. previous may be nil on a first run.
func NewAssembler(jobs []schema.Job, previous *schema.Dashboard, reports weather.ReportSource, builder *weather.Builder) *Assembler {
	return &Assembler{
		jobs:     groupJobs(jobs),
		previous: previous,
		reports:  reports,
		builder:  builder,
		now:      builder.Now,
	}
}

// groupJobs buckets jobs by exact name and sorts each bucket by start time,
// most recent first. Jobs with equal start times keep their input order.
func groupJobs(jobs []schema.Job) map[string][]schema.Job {
	byName := make(map[string][]schema.Job)
	for _, j := range jobs {
		byName[j.Name] = append(byName[j.Name], j)
	}
	for _, list := range byName {
		slices.SortStableFunc(list, func(a, b schema.Job) int {
			return b.StartTime().Compare(a.StartTime())
		})
	}
	return byName
}

// BuildSection assembles every configured test of a section.
func (a *Assembler) BuildSection(cfg schema.SectionConfig) schema.Section {
	id := cfg.ID
	if id == "" {
		id = schema.Slug(cfg.Name)
	}
	section := schema.Section{
		ID:          id,
		Name:        cfg.Name,
		Description: cfg.Description,
		Maintainers: append([]string{}, cfg.Maintainers...),
		Tests:       make([]schema.TestRecord, 0, len(cfg.Jobs)),
	}
	for _, entry := range cfg.Jobs {
		test := a.BuildTest(id, entry)
		section.Summary.Add(test.Status)
		section.Tests = append(section.Tests, test)
	}
	return section
}

// BuildTest assembles the dashboard record of one configured job.
func (a *Assembler) BuildTest(sectionID string, entry schema.JobEntry) schema.TestRecord {
	displayName := entry.DisplayName()
	id := entry.ID()
	jobs := a.jobs[entry.Name]

	var cache weather.DayCache
	if prev, ok := a.previous.FindTest(sectionID, id); ok {
		cache = weather.NewDayCache(prev.WeatherHistory)
	}
	history := a.builder.Build(displayName, jobs, cache)

	test := schema.TestRecord{
		ID:                   id,
		Name:                 displayName,
		FullName:             entry.Name,
		Status:               schema.NotRunStatus,
		Duration:             schema.NotAvailable,
		LastRun:              schema.Never,
		LastFailure:          a.lastWith(jobs, schema.Job.IsFailure),
		LastSuccess:          a.lastWith(jobs, schema.Job.IsSuccess),
		WeatherHistory:       history,
		FailureCount:         countFailedDays(history),
		FailedTestsInWeather: failedTestsInWeather(history),
	}
	if len(jobs) == 0 {
		return test
	}

	latest := jobs[0]
	test.Status = deriveStatus(&latest)
	test.Duration = contract.FormatDuration(latest.StartTimePtr(), latest.CompletedAt)
	test.LastRun = contract.FormatRelativeTime(latest.StartTime(), a.now)
	test.JobID = schema.Ptr(latest.ID)
	test.RunID = schema.Ptr(latest.RunIdentifier())
	test.Retried = max(latest.RunAttempt-1, 0)
	if test.Status == schema.FailedStatus {
		test.Error = a.errorDetails(&latest)
	}
	return test
}

// deriveStatus maps the latest job of a test to the test status.
func deriveStatus(job *schema.Job) schema.TestStatus {
	switch {
	case job == nil:
		return schema.NotRunStatus
	case job.IsRunning():
		return schema.RunningStatus
	case job.IsSuccess():
		return schema.PassedStatus
	case job.IsFailure():
		return schema.FailedStatus
	default:
		return schema.NotRunStatus
	}
}

// lastWith renders how long ago the most recent job matching pred finished.
func (a *Assembler) lastWith(jobs []schema.Job, pred func(schema.Job) bool) string {
	for _, j := range jobs {
		if !pred(j) {
			continue
		}
		at := j.StartTime()
		if j.CompletedAt != nil && !j.CompletedAt.IsZero() {
			at = *j.CompletedAt
		}
		return contract.FormatRelativeTime(at, a.now)
	}
	return schema.Never
}

func countFailedDays(history []schema.WeatherDay) int {
	n := 0
	for _, d := range history {
		if d.Status == schema.WeatherFailed {
			n++
		}
	}
	return n
}

// failedTestsInWeather counts, per failing test name, the failed days of
// history it appears in. A name is counted once per day.
func failedTestsInWeather(history []schema.WeatherDay) []schema.WeatherFailedTest {
	var out []schema.WeatherFailedTest
	position := make(map[string]int)
	for _, d := range history {
		if d.Status != schema.WeatherFailed || d.FailureDetails == nil {
			continue
		}
		date := schema.DayISO(d.Date)
		seenToday := make(map[string]struct{})
		for _, f := range d.FailureDetails.Failures {
			if _, dup := seenToday[f.Name]; dup {
				continue
			}
			seenToday[f.Name] = struct{}{}

			i, ok := position[f.Name]
			if !ok {
				i = len(out)
				position[f.Name] = i
				out = append(out, schema.WeatherFailedTest{Name: f.Name})
			}
			out[i].Count++
			out[i].Dates = append(out[i].Dates, date)
		}
	}
	slices.SortStableFunc(out, func(a, b schema.WeatherFailedTest) int {
		return b.Count - a.Count
	})
	if out == nil {
		out = []schema.WeatherFailedTest{}
	}
	return out
}

// errorDetails re-parses the latest failed job to explain the failure.
func (a *Assembler) errorDetails(job *schema.Job) *schema.ErrorDetails {
	step := job.FailedStep()
	var report *schema.FailureReport
	if a.reports != nil {
		report = a.reports.Parse(job.ID)
	}
	if report == nil || len(report.Failures) == 0 {
		return &schema.ErrorDetails{
			FailedStep: step,
			Message:    fmt.Sprintf("Job failed at step %q. View the full log for details.", step),
		}
	}

	shown := report.Failures[:min(len(report.Failures), schema.MaxErrorFailures)]
	stats := report.Stats
	return &schema.ErrorDetails{
		FailedStep:    step,
		Message:       fmt.Sprintf("%d of %d tests failed at step %q.", len(report.Failures), report.Stats.Total, step),
		Failures:      slices.Clone(shown),
		Stats:         &stats,
		Log:           renderFailures(report.Failures),
		TotalFailures: len(report.Failures),
	}
}

// renderFailures writes failures back as TAP "not ok" lines.
func renderFailures(failures []schema.Failure) string {
	lines := make([]string, 0, len(failures))
	for _, f := range failures {
		line := fmt.Sprintf("not ok %d - %s", f.Number, f.Name)
		if f.Comment != "" {
			line += " # " + f.Comment
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
