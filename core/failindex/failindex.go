// Package failindex maintains the rolling registry of failing tests across runs.
package failindex

import (
	"cmp"
	"slices"
	"time"

	"github.com/huangsam/ciweather/schema"
)

// DefaultWindow is how long an occurrence stays in the index.
const DefaultWindow = schema.IndexWindowDays * 24 * time.Hour

// Index is the cumulative failure index. It is seeded from the previous
// snapshot, mutated through Record during a run and derived once by Finalize.
type Index struct {
	entries map[string]*schema.FailureIndexEntry
	seen    map[string]map[string]struct{} // test name -> job ids
	window  time.Duration
}

// New returns an index seeded with a deep copy of seed. A non-positive
// window selects DefaultWindow.
func New(seed schema.FailureIndex, window time.Duration) *Index {
	if window <= 0 {
		window = DefaultWindow
	}
	ix := &Index{
		entries: make(map[string]*schema.FailureIndexEntry, len(seed)),
		seen:    make(map[string]map[string]struct{}, len(seed)),
		window:  window,
	}
	for name, entry := range seed {
		if name == "" || entry == nil {
			continue
		}
		clone := entry.Clone()
		clone.Occurrences = dedupe(clone.Occurrences)
		ix.entries[name] = clone
		ids := make(map[string]struct{}, len(clone.Occurrences))
		for _, o := range clone.Occurrences {
			ids[o.JobID] = struct{}{}
		}
		ix.seen[name] = ids
	}
	return ix
}

// dedupe drops repeated job ids, keeping the first occurrence of each.
func dedupe(occurrences []schema.Occurrence) []schema.Occurrence {
	seen := make(map[string]struct{}, len(occurrences))
	out := occurrences[:0]
	for _, o := range occurrences {
		if _, dup := seen[o.JobID]; dup {
			continue
		}
		seen[o.JobID] = struct{}{}
		out = append(out, o)
	}
	return out
}

// Record adds one occurrence of testName failing in jobID. Recording the same
// (testName, jobID) pair again is a no-op.
func (ix *Index) Record(testName, dateISO, jobName, jobID string, runID int64) {
	if testName == "" {
		return
	}
	ids, ok := ix.seen[testName]
	if !ok {
		ids = make(map[string]struct{})
		ix.seen[testName] = ids
	}
	if _, dup := ids[jobID]; dup {
		return
	}
	ids[jobID] = struct{}{}

	entry, ok := ix.entries[testName]
	if !ok {
		entry = &schema.FailureIndexEntry{}
		ix.entries[testName] = entry
	}
	entry.Occurrences = append(entry.Occurrences, schema.Occurrence{
		Date:    dateISO,
		JobName: jobName,
		JobID:   jobID,
		RunID:   runID,
	})
	sortOccurrences(entry.Occurrences)
	entry.TotalCount = len(entry.Occurrences)
}

// Finalize trims every entry to the retention window ending at now and
// derives the per-job breakdown. Entries left without occurrences are removed.
func (ix *Index) Finalize(now time.Time) {
	cutoff := now.Add(-ix.window)
	for name, entry := range ix.entries {
		entry.Occurrences = trim(entry.Occurrences, cutoff)
		if len(entry.Occurrences) == 0 {
			delete(ix.entries, name)
			delete(ix.seen, name)
			continue
		}
		sortOccurrences(entry.Occurrences)
		entry.TotalCount = len(entry.Occurrences)
		entry.AffectedJobs = affectedJobs(entry.Occurrences)
		entry.UniqueJobsAffected = len(entry.AffectedJobs)
	}
}

// trim keeps occurrences dated at or after cutoff. Unparseable dates are dropped.
func trim(occurrences []schema.Occurrence, cutoff time.Time) []schema.Occurrence {
	out := make([]schema.Occurrence, 0, len(occurrences))
	for _, o := range occurrences {
		t, err := schema.ParseDay(o.Date)
		if err != nil || t.Before(cutoff) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// sortOccurrences orders occurrences most recent first, keeping the relative
// order of equal dates. Unparseable dates sort last.
func sortOccurrences(occurrences []schema.Occurrence) {
	slices.SortStableFunc(occurrences, func(a, b schema.Occurrence) int {
		ta, errA := schema.ParseDay(a.Date)
		tb, errB := schema.ParseDay(b.Date)
		switch {
		case errA != nil && errB != nil:
			return 0
		case errA != nil:
			return 1
		case errB != nil:
			return -1
		}
		return tb.Compare(ta)
	})
}

// affectedJobs groups sorted occurrences by job name in encounter order and
// orders the groups by count, largest first. Ties keep encounter order.
func affectedJobs(occurrences []schema.Occurrence) []schema.AffectedJob {
	var groups []schema.AffectedJob
	position := make(map[string]int)
	for _, o := range occurrences {
		i, ok := position[o.JobName]
		if !ok {
			i = len(groups)
			position[o.JobName] = i
			groups = append(groups, schema.AffectedJob{JobName: o.JobName, LatestDate: o.Date})
		}
		groups[i].Count++
		groups[i].JobIDs = append(groups[i].JobIDs, o.JobID)
	}
	slices.SortStableFunc(groups, func(a, b schema.AffectedJob) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return groups
}

// Entries returns the index for serialization.
func (ix *Index) Entries() schema.FailureIndex {
	return ix.entries
}

// Lookup returns the entry for a test name.
func (ix *Index) Lookup(testName string) (*schema.FailureIndexEntry, bool) {
	entry, ok := ix.entries[testName]
	return entry, ok
}

// Len returns the number of distinct failing test names.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Rows flattens the index into rows ordered by total count, then name.
func Rows(index schema.FailureIndex) []schema.IndexRow {
	rows := make([]schema.IndexRow, 0, len(index))
	for name, entry := range index {
		if entry == nil {
			continue
		}
		row := schema.IndexRow{
			TestName:           name,
			TotalCount:         entry.TotalCount,
			UniqueJobsAffected: entry.UniqueJobsAffected,
		}
		if len(entry.Occurrences) > 0 {
			row.LatestDate = entry.Occurrences[0].Date
		}
		if len(entry.AffectedJobs) > 0 {
			row.TopJob = entry.AffectedJobs[0].JobName
		}
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b schema.IndexRow) int {
		if c := cmp.Compare(b.TotalCount, a.TotalCount); c != 0 {
			return c
		}
		return cmp.Compare(a.TestName, b.TestName)
	})
	return rows
}
