package schema

import "time"

// WeatherDay is the outcome attributed to one calendar day of a test's history.
type WeatherDay struct {
	Date           time.Time      `json:"date"`
	Status         WeatherStatus  `json:"status"`
	RunID          *int64         `json:"runId"`
	JobID          *int64         `json:"jobId"`
	Duration       *string        `json:"duration"`
	FailureStep    string         `json:"failureStep"`
	FailureDetails *FailureReport `json:"failureDetails"`
}

// DayKey returns the calendar day of the entry in YYYY-MM-DD form.
func (d WeatherDay) DayKey() string {
	return DayKey(d.Date)
}

// DayKey formats the UTC calendar day of t in YYYY-MM-DD form.
func DayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// WeatherFailedTest counts how often a failing test name shows up in one test's weather.
type WeatherFailedTest struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Dates []string `json:"dates"`
}

// DayISO formats the UTC midnight of t as an RFC 3339 timestamp. It is the
// date format shared by weather failures and failure index occurrences.
func DayISO(t time.Time) string {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
}

// ParseDay parses an RFC 3339 timestamp or a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
