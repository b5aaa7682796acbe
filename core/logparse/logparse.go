// Package logparse extracts structured test failures from CI job logs.
//
// Only lines inside a "report tests" section are considered. A section opens on
// a GitHub Actions group whose title mentions "report tests" (or a markdown
// "# Report tests" heading) and closes on the matching end-group marker or on
// the first line that belongs to the next pipeline step.
package logparse

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strconv"
	"strings"

	"github.com/huangsam/ciweather/internal/contract"
	"github.com/huangsam/ciweather/schema"
)

// Section markers used by GitHub Actions logs.
const (
	groupMarker    = "##[group]"
	endGroupMarker = "##[endgroup]"
	sectionMarker  = "##[section]"
	cleanupMarker  = "Post job cleanup."
	sectionTitle   = "report tests"
)

var (
	// timestampRe matches the timestamp GitHub Actions prepends to every log line.
	timestampRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?Z ?`)

	// headingRe matches a markdown-style "# Report tests" or "## Report tests" heading.
	headingRe = regexp.MustCompile(`(?i)^#{1,2}\s*report tests\b`)

	// notOkRe splits "<name> # <comment>"; a '#' not followed by whitespace stays in the name.
	notOkRe = regexp.MustCompile(`^not ok\s+(\d+)\s*-?\s*(.*?)(?:\s+#(?:\s+(.*))?)?$`)
	okRe    = regexp.MustCompile(`^ok\s+(\d+)(?:\s|$)`)
	planRe  = regexp.MustCompile(`^1\.\.(\d+)\s*$`)
)

// reportBuilder accumulates results while scanning a section.
type reportBuilder struct {
	failures []schema.Failure
	stats    schema.Stats
}

// lineMatcher classifies one kind of TAP line. Matchers are tried in order
// and the first match wins.
type lineMatcher struct {
	re    *regexp.Regexp
	apply func(b *reportBuilder, m []string)
}

var matchers = []lineMatcher{
	{re: notOkRe, apply: applyNotOk},
	{re: okRe, apply: applyOk},
	{re: planRe, apply: func(*reportBuilder, []string) {}},
}

// applyNotOk records a failing test unless its directive marks it skipped.
func applyNotOk(b *reportBuilder, m []string) {
	b.stats.Total++
	b.stats.Failed++

	comment := strings.TrimSpace(m[3])
	lower := strings.ToLower(comment)
	if strings.Contains(lower, "skip") || strings.Contains(lower, "todo") {
		b.stats.Failed--
		b.stats.Skipped++
		return
	}

	number, _ := strconv.Atoi(m[1])
	b.failures = append(b.failures, schema.Failure{
		Number:  number,
		Name:    strings.TrimSpace(m[2]),
		Comment: comment,
	})
}

// applyOk records a passing test.
func applyOk(b *reportBuilder, _ []string) {
	b.stats.Total++
	b.stats.Passed++
}

// report returns nil when the scan found no test data at all.
func (b *reportBuilder) report() *schema.FailureReport {
	if len(b.failures) == 0 && b.stats.Total == 0 {
		return nil
	}
	failures := b.failures
	if failures == nil {
		failures = []schema.Failure{}
	}
	return &schema.FailureReport{Failures: failures, Stats: b.stats}
}

// normalizeLine strips the trailing carriage return and the optional timestamp prefix.
func normalizeLine(line string) string {
	line = strings.TrimRight(line, "\r")
	return timestampRe.ReplaceAllString(line, "")
}

// isSectionStart reports whether the line opens a report section.
func isSectionStart(line string) bool {
	if idx := strings.Index(line, groupMarker); idx >= 0 {
		title := strings.ToLower(line[idx+len(groupMarker):])
		return strings.Contains(title, sectionTitle)
	}
	return headingRe.MatchString(line)
}

// isSectionEnd reports whether the line closes the current report section.
func isSectionEnd(line string) bool {
	return strings.Contains(line, endGroupMarker) ||
		strings.Contains(line, groupMarker) ||
		strings.Contains(line, sectionMarker) ||
		strings.HasPrefix(strings.TrimSpace(line), cleanupMarker)
}

// sectionScanner is the two-state machine that tracks whether the current
// line belongs to a report section.
type sectionScanner struct {
	b         reportBuilder
	inSection bool
}

// feed classifies one log line.
func (s *sectionScanner) feed(line string) {
	line = normalizeLine(line)

	if isSectionStart(line) {
		s.inSection = true
		return
	}
	if !s.inSection {
		return
	}
	if isSectionEnd(line) {
		s.inSection = false
		return
	}

	for _, m := range matchers {
		if sub := m.re.FindStringSubmatch(line); sub != nil {
			m.apply(&s.b, sub)
			return
		}
	}
}

// ParseLog scans a raw job log and returns the failure report of its report
// sections, or nil when no test lines were found. Lines have no length limit.
func ParseLog(text string) *schema.FailureReport {
	var s sectionScanner

	reader := bufio.NewReader(strings.NewReader(text))
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			s.feed(strings.TrimSuffix(line, "\n"))
		}
		if err != nil {
			break
		}
	}

	return s.b.report()
}

// Parser reads job logs from a LogSource and parses them.
// Reports are memoized per job so repeated lookups do not re-read the log.
type Parser struct {
	logs  contract.LogSource
	cache map[int64]*schema.FailureReport
}

// NewParser returns a Parser reading from logs. A nil source yields a parser
// that reports every log as missing.
func NewParser(logs contract.LogSource) *Parser {
	return &Parser{logs: logs, cache: make(map[int64]*schema.FailureReport)}
}

// Parse returns the failure report for the job, or nil when the log is
// missing, unreadable or contains no test data.
func (p *Parser) Parse(jobID int64) *schema.FailureReport {
	if report, ok := p.cache[jobID]; ok {
		return report.Clone()
	}

	report := p.parse(jobID)
	p.cache[jobID] = report
	return report.Clone()
}

func (p *Parser) parse(jobID int64) *schema.FailureReport {
	if p.logs == nil {
		return nil
	}
	data, err := p.logs.ReadLog(jobID)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			contract.LogWarn(fmt.Sprintf("reading log for job %d", jobID), err)
		}
		return nil
	}
	return ParseLog(string(data))
}
