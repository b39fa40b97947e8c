/*
Package taskmatch counts valid tasks for one operator from a raw task
export.

PURPOSE:
  Forklift operators and similar roles are paid per discrete completed
  task rather than per unit produced. The warehouse management system
  exports task reports as text - sometimes fixed-width, sometimes
  delimiter-separated, always messy. This package parses whatever
  arrives, finds the rows belonging to the searched operator, and
  counts the ones executed within their type's target duration.

A TASK IS VALID WHEN:
  1. Its operator field matches the searched name (equal, contains, or
     contained-by; case- and accent-insensitive)
  2. It is marked completed
  3. |completion - assignment| <= the type's target duration
  4. Its type has a configured target (unknown types are ignored)

DEGRADED PARSING:
  Parsing never fails the calculation. If the fixed-position strategy
  cannot locate the required columns, the parser falls back to
  delimiter splitting; if every strategy fails, Match returns an empty
  result with a diagnostic reason.

USAGE:
  m := taskmatch.Matcher{Targets: cat.TaskTargets(), Rate: cfg.ValidTaskRate}
  res := m.MatchExport(exportText, "JOHN SILVA")

SEE ALSO:
  - parser.go:    header location and row extraction
  - normalize.go: accent folding for operator comparison
*/
package taskmatch

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one parsed task-export record.
type Row struct {
	TaskType    string
	Operator    string
	Completed   bool
	AssignedAt  time.Time
	CompletedAt time.Time
}

// TypeBreakdown reports valid tasks for one task type.
type TypeBreakdown struct {
	TaskType      string `json:"task_type"`
	Count         int    `json:"count"`
	TargetSeconds int    `json:"target_seconds"`
}

// Result is the outcome of matching one export for one operator.
type Result struct {
	ValidCount int
	PerType    []TypeBreakdown
	Value      decimal.Decimal
	Degraded   bool   // true when parsing fell back or failed entirely
	Reason     string // diagnostic when Degraded
}

// Matcher counts valid tasks against configured target durations.
type Matcher struct {
	// Targets maps lower-cased task-type name to target duration in
	// seconds. Types absent from the map are ignored, not errors.
	Targets map[string]int

	// Rate is the payout per valid task.
	Rate decimal.Decimal
}

// MatchExport parses raw export text and counts valid tasks for the
// searched operator. It never returns an error: unparseable input
// yields an empty, Degraded result.
func (m Matcher) MatchExport(export, operator string) Result {
	rows, degraded, reason := parseExport(export)
	if len(rows) == 0 {
		// An empty result is only degraded when parsing itself was:
		// a clean header with no data rows is a legitimate zero.
		r := emptyResult()
		r.Degraded = degraded
		r.Reason = reason
		return r
	}

	counts := map[string]int{}
	valid := 0
	for _, row := range rows {
		if !operatorMatches(row.Operator, operator) {
			continue
		}
		if !row.Completed {
			continue
		}
		target, ok := m.Targets[strings.ToLower(strings.TrimSpace(row.TaskType))]
		if !ok {
			continue // type has no configured target
		}
		if row.AssignedAt.IsZero() || row.CompletedAt.IsZero() {
			continue // timestamps did not parse; skip the row only
		}
		elapsed := row.CompletedAt.Sub(row.AssignedAt)
		if elapsed < 0 {
			elapsed = -elapsed
		}
		if int(elapsed.Seconds()) <= target {
			valid++
			counts[strings.ToLower(strings.TrimSpace(row.TaskType))]++
		}
	}

	res := Result{
		ValidCount: valid,
		PerType:    make([]TypeBreakdown, 0, len(counts)),
		Value:      m.Rate.Mul(decimal.NewFromInt(int64(valid))),
		Degraded:   degraded,
		Reason:     reason,
	}
	for name, n := range counts {
		res.PerType = append(res.PerType, TypeBreakdown{
			TaskType:      name,
			Count:         n,
			TargetSeconds: m.Targets[name],
		})
	}
	sort.Slice(res.PerType, func(i, j int) bool { return res.PerType[i].TaskType < res.PerType[j].TaskType })
	return res
}

// FromCount builds a Result for inputs that arrive pre-counted (the
// upstream system already tallied valid tasks).
func (m Matcher) FromCount(count int) Result {
	if count < 0 {
		count = 0
	}
	return Result{
		ValidCount: count,
		PerType:    []TypeBreakdown{},
		Value:      m.Rate.Mul(decimal.NewFromInt(int64(count))),
	}
}

func emptyResult() Result {
	return Result{PerType: []TypeBreakdown{}, Value: decimal.Zero}
}

// operatorMatches compares the row's operator field with the searched
// name: equal, contains, or contained-by, after case and accent
// folding. "JOHN SILVA" matches a row holding "John Silva Santos".
func operatorMatches(field, search string) bool {
	f := Fold(strings.TrimSpace(field))
	s := Fold(strings.TrimSpace(search))
	if f == "" || s == "" {
		return false
	}
	return f == s || strings.Contains(f, s) || strings.Contains(s, f)
}
