package schema

import "time"

// ErrorDetails describes why the latest run of a test failed.
type ErrorDetails struct {
	FailedStep    string    `json:"failedStep"`
	Message       string    `json:"message"`
	Failures      []Failure `json:"failures,omitempty"`
	Stats         *Stats    `json:"stats,omitempty"`
	Log           string    `json:"log,omitempty"`
	TotalFailures int       `json:"totalFailures"`
}

// TestRecord is the dashboard view of one configured job.
type TestRecord struct {
	ID                   string              `json:"id"`
	Name                 string              `json:"name"`
	FullName             string              `json:"fullName"`
	Status               TestStatus          `json:"status"`
	Duration             string              `json:"duration"`
	LastRun              string              `json:"lastRun"`
	LastFailure          string              `json:"lastFailure"`
	LastSuccess          string              `json:"lastSuccess"`
	JobID                *int64              `json:"jobId"`
	RunID                *int64              `json:"runId"`
	WeatherHistory       []WeatherDay        `json:"weatherHistory"`
	FailureCount         int                 `json:"failureCount"`
	FailedTestsInWeather []WeatherFailedTest `json:"failedTestsInWeather"`
	Retried              int                 `json:"retried"`
	Error                *ErrorDetails       `json:"error"`
}

// SectionSummary counts the tests of a section by status.
type SectionSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Running int `json:"running"`
	NotRun  int `json:"notRun"`
}

// Add counts one test status.
func (s *SectionSummary) Add(status TestStatus) {
	s.Total++
	switch status {
	case PassedStatus:
		s.Passed++
	case FailedStatus:
		s.Failed++
	case RunningStatus:
		s.Running++
	default:
		s.NotRun++
	}
}

// Section is a named group of tests shown together on the dashboard.
type Section struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Maintainers []string       `json:"maintainers"`
	Tests       []TestRecord   `json:"tests"`
	Summary     SectionSummary `json:"summary"`
}

// Dashboard is the complete output of a run. The previous run's Dashboard
// doubles as the snapshot that seeds the next one.
type Dashboard struct {
	LastRefresh      time.Time    `json:"lastRefresh"`
	Sections         []Section    `json:"sections"`
	FailedTestsIndex FailureIndex `json:"failedTestsIndex"`
}

// FindTest returns the test with the given section and test id.
func (d *Dashboard) FindTest(sectionID, testID string) (*TestRecord, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Sections {
		if d.Sections[i].ID != sectionID {
			continue
		}
		for j := range d.Sections[i].Tests {
			if d.Sections[i].Tests[j].ID == testID {
				return &d.Sections[i].Tests[j], true
			}
		}
	}
	return nil, false
}

// FindTestByID returns the first test with the given id in any section.
func (d *Dashboard) FindTestByID(testID string) (*Section, *TestRecord, bool) {
	if d == nil {
		return nil, nil, false
	}
	for i := range d.Sections {
		for j := range d.Sections[i].Tests {
			if d.Sections[i].Tests[j].ID == testID {
				return &d.Sections[i], &d.Sections[i].Tests[j], true
			}
		}
	}
	return nil, nil, false
}

// Summary totals the section summaries of the dashboard.
func (d *Dashboard) Summary() SectionSummary {
	var total SectionSummary
	if d == nil {
		return total
	}
	for _, s := range d.Sections {
		total.Total += s.Summary.Total
		total.Passed += s.Summary.Passed
		total.Failed += s.Summary.Failed
		total.Running += s.Summary.Running
		total.NotRun += s.Summary.NotRun
	}
	return total
}
