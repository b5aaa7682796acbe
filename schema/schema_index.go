package schema

// Occurrence records one job in which a test failed.
type Occurrence struct {
	Date    string `json:"date"`
	JobName string `json:"jobName"`
	JobID   string `json:"jobId"`
	RunID   int64  `json:"runId"`
}

// AffectedJob summarizes the occurrences of a failing test for one job name.
type AffectedJob struct {
	JobName    string   `json:"jobName"`
	Count      int      `json:"count"`
	LatestDate string   `json:"latestDate"`
	JobIDs     []string `json:"jobIds"`
}

// FailureIndexEntry tracks every recent job that a single test failed in.
type FailureIndexEntry struct {
	Occurrences        []Occurrence  `json:"occurrences"`
	TotalCount         int           `json:"totalCount"`
	AffectedJobs       []AffectedJob `json:"affectedJobs"`
	UniqueJobsAffected int           `json:"uniqueJobsAffected"`
}

// Clone returns a deep copy of the entry.
func (e *FailureIndexEntry) Clone() *FailureIndexEntry {
	if e == nil {
		return nil
	}
	clone := &FailureIndexEntry{
		TotalCount:         e.TotalCount,
		UniqueJobsAffected: e.UniqueJobsAffected,
	}
	if e.Occurrences != nil {
		clone.Occurrences = make([]Occurrence, len(e.Occurrences))
		copy(clone.Occurrences, e.Occurrences)
	}
	if e.AffectedJobs != nil {
		clone.AffectedJobs = make([]AffectedJob, len(e.AffectedJobs))
		for i, aj := range e.AffectedJobs {
			aj.JobIDs = append([]string(nil), aj.JobIDs...)
			clone.AffectedJobs[i] = aj
		}
	}
	return clone
}

// FailureIndex maps a failing test name to its index entry.
type FailureIndex map[string]*FailureIndexEntry

// IndexRow is a flattened view of an index entry used by table, CSV and Parquet output.
type IndexRow struct {
	TestName           string `json:"testName"`
	TotalCount         int    `json:"totalCount"`
	UniqueJobsAffected int    `json:"uniqueJobsAffected"`
	LatestDate         string `json:"latestDate"`
	TopJob             string `json:"topJob"`
}
