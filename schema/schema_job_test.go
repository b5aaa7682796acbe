package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobStartTime(t *testing.T) {
	started := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	created := time.Date(2025, 3, 10, 7, 55, 0, 0, time.UTC)

	assert.Equal(t, started, Job{StartedAt: &started, CreatedAt: &created}.StartTime())
	assert.Equal(t, created, Job{CreatedAt: &created}.StartTime())
	assert.True(t, Job{}.StartTime().IsZero())
	assert.Nil(t, Job{}.StartTimePtr())
}

func TestJobRunIdentifier(t *testing.T) {
	assert.Equal(t, int64(7), Job{RunID: 7, WorkflowRunID: 9}.RunIdentifier())
	assert.Equal(t, int64(9), Job{WorkflowRunID: 9}.RunIdentifier())
}

func TestJobStatusHelpers(t *testing.T) {
	tests := []struct {
		name        string
		job         Job
		wantRunning bool
		wantSuccess bool
		wantFailure bool
	}{
		{"queued", Job{Status: JobQueued}, true, false, false},
		{"in progress", Job{Status: JobInProgress}, true, false, false},
		{"success", Job{Status: JobCompleted, Conclusion: ConclusionSuccess}, false, true, false},
		{"failure", Job{Status: JobCompleted, Conclusion: ConclusionFailure}, false, false, true},
		{"timed out", Job{Status: JobCompleted, Conclusion: ConclusionTimedOut}, false, false, true},
		{"cancelled", Job{Status: JobCompleted, Conclusion: ConclusionCancelled}, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantRunning, tt.job.IsRunning())
			assert.Equal(t, tt.wantSuccess, tt.job.IsSuccess())
			assert.Equal(t, tt.wantFailure, tt.job.IsFailure())
		})
	}
}

func TestJobFailedStep(t *testing.T) {
	job := Job{Steps: []Step{
		{Name: "Checkout", Conclusion: ConclusionSuccess},
		{Name: "Run tests", Conclusion: ConclusionFailure},
		{Name: "Upload", Conclusion: ConclusionFailure},
	}}
	assert.Equal(t, "Run tests", job.FailedStep())
	assert.Equal(t, DefaultFailureStep, Job{}.FailedStep())
}

func TestFailureIndexEntryClone(t *testing.T) {
	orig := &FailureIndexEntry{
		Occurrences:  []Occurrence{{Date: "2025-03-10", JobName: "A", JobID: "1", RunID: 10}},
		TotalCount:   1,
		AffectedJobs: []AffectedJob{{JobName: "A", Count: 1, LatestDate: "2025-03-10", JobIDs: []string{"1"}}},
	}
	clone := orig.Clone()
	clone.Occurrences[0].JobID = "2"
	clone.AffectedJobs[0].JobIDs[0] = "2"

	assert.Equal(t, "1", orig.Occurrences[0].JobID)
	assert.Equal(t, "1", orig.AffectedJobs[0].JobIDs[0])
	assert.Nil(t, (*FailureIndexEntry)(nil).Clone())
}

func TestSectionSummaryAdd(t *testing.T) {
	var s SectionSummary
	for _, st := range []TestStatus{PassedStatus, FailedStatus, FailedStatus, RunningStatus, NotRunStatus} {
		s.Add(st)
	}
	assert.Equal(t, SectionSummary{Total: 5, Passed: 1, Failed: 2, Running: 1, NotRun: 1}, s)
}
