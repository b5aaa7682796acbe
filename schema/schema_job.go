package schema

import "time"

// Step is a single step of a CI job.
type Step struct {
	Name       string `json:"name"`
	Status     string `json:"status,omitempty"`
	Conclusion string `json:"conclusion"`
	Number     int    `json:"number,omitempty"`
}

// Job is a CI job record as reported by the CI provider. It is read-only input.
type Job struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Status        string     `json:"status"`
	Conclusion    string     `json:"conclusion"`
	StartedAt     *time.Time `json:"started_at"`
	CreatedAt     *time.Time `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at"`
	RunAttempt    int        `json:"run_attempt"`
	RunID         int64      `json:"run_id"`
	WorkflowRunID int64      `json:"workflow_run_id"`
	HTMLURL       string     `json:"html_url,omitempty"`
	Steps         []Step     `json:"steps"`
}

// StartTime returns when the job started, falling back to its creation time.
// The zero time is returned when neither is known.
func (j Job) StartTime() time.Time {
	if j.StartedAt != nil && !j.StartedAt.IsZero() {
		return *j.StartedAt
	}
	if j.CreatedAt != nil {
		return *j.CreatedAt
	}
	return time.Time{}
}

// StartTimePtr is like StartTime but returns nil when no timestamp is known.
func (j Job) StartTimePtr() *time.Time {
	t := j.StartTime()
	if t.IsZero() {
		return nil
	}
	return &t
}

// RunIdentifier returns the run id, falling back to the workflow run id.
func (j Job) RunIdentifier() int64 {
	if j.RunID != 0 {
		return j.RunID
	}
	return j.WorkflowRunID
}

// IsRunning reports whether the job has not completed yet.
func (j Job) IsRunning() bool {
	switch j.Status {
	case JobQueued, JobInProgress, JobWaiting, JobPending:
		return true
	}
	return false
}

// IsSuccess reports whether the job concluded successfully.
func (j Job) IsSuccess() bool {
	return j.Conclusion == ConclusionSuccess
}

// IsFailure reports whether the job concluded with a failure. Timeouts count as failures.
func (j Job) IsFailure() bool {
	return j.Conclusion == ConclusionFailure || j.Conclusion == ConclusionTimedOut
}

// FailedStep returns the name of the first failed step, or DefaultFailureStep.
func (j Job) FailedStep() string {
	for _, s := range j.Steps {
		if s.Conclusion == ConclusionFailure {
			return s.Name
		}
	}
	return DefaultFailureStep
}

// JobList is the envelope used by the GitHub jobs API.
type JobList struct {
	TotalCount int   `json:"total_count"`
	Jobs       []Job `json:"jobs"`
}
