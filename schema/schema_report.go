package schema

// Failure is a single failing test extracted from a job log.
type Failure struct {
	Number  int    `json:"number"`
	Name    string `json:"name"`
	Comment string `json:"comment"`
}

// Stats holds the test counts of a job log.
type Stats struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// FailureReport is the structured result of parsing one job log.
// A nil *FailureReport means no test data was found.
type FailureReport struct {
	Failures []Failure `json:"failures"`
	Stats    Stats     `json:"stats"`
}

// Clone returns a deep copy of the report. Nil stays nil.
func (r *FailureReport) Clone() *FailureReport {
	if r == nil {
		return nil
	}
	clone := &FailureReport{Stats: r.Stats}
	if r.Failures != nil {
		clone.Failures = make([]Failure, len(r.Failures))
		copy(clone.Failures, r.Failures)
	}
	return clone
}
