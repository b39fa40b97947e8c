/*
parser.go - Heterogeneous task-export parsing

PURPOSE:
  Task exports arrive from the WMS in two broad shapes:

  1. Fixed-width reports - columns padded with spaces, header names at
     fixed text positions:

       TIPO DE TAREFA      OPERADOR            SITUACAO    ATRIBUICAO           CONCLUSAO
       PUTAWAY             JOAO SILVA SANTOS   CONCLUIDA   01/03/2025 08:00:00  01/03/2025 08:03:10

  2. Delimiter-separated dumps - semicolon, tab, comma, or runs of two
     or more spaces.

STRATEGY:
  Locate the required column headers by text position first. If any
  required column cannot be found that way, fall back to splitting the
  header by whichever delimiter it contains and mapping columns by
  cell index. Rows are processed one line at a time; a bad row (missing
  type/operator, unparseable timestamp) is dropped, never fatal.
*/
package taskmatch

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

type columnKey int

const (
	colType columnKey = iota
	colOperator
	colStatus
	colAssigned
	colCompleted
	numColumns
)

// headerAliases are the folded header texts each column is known by.
// Longer aliases first so "data de conclusao" wins over "conclusao".
var headerAliases = map[columnKey][]string{
	colType:      {"tipo de tarefa", "task type", "tarefa", "tipo"},
	colOperator:  {"operador", "operator", "usuario"},
	colStatus:    {"situacao", "status"},
	colAssigned:  {"data de atribuicao", "atribuicao", "data de criacao", "assigned at", "criacao", "inicio"},
	colCompleted: {"data de conclusao", "conclusao", "completed at", "termino", "fim"},
}

var multiSpace = regexp.MustCompile(` {2,}`)

// parseExport extracts rows from raw export text. degraded is true when
// the primary fixed-position strategy was abandoned; reason carries the
// diagnostic in that case.
func parseExport(export string) (rows []Row, degraded bool, reason string) {
	lines := splitLines(export)
	headerIdx := findHeader(lines)
	if headerIdx < 0 {
		return nil, true, "header row not found"
	}

	header := lines[headerIdx]
	body := lines[headerIdx+1:]

	// A delimiter in the header means the file is not fixed-width;
	// header text positions cannot be trusted for slicing.
	if !strings.ContainsAny(header, ";\t,") {
		if positions, ok := locateFixedColumns(header); ok {
			rows := extractFixed(body, positions)
			if fixedSliceWorked(body, rows) {
				return rows, false, ""
			}
			// A multi-space-delimited export has the same header
			// words as a fixed-width report, but its rows ignore the
			// header offsets. Retry with the delimiter split.
		}
	}

	delim, cells := splitHeader(header)
	index, ok := mapDelimitedColumns(cells)
	if !ok {
		return nil, true, "required columns not found by position or delimiter"
	}
	return extractDelimited(body, delim, index), true,
		"fell back to delimiter-separated parsing"
}

// fixedSliceWorked reports whether fixed-position slicing produced
// credible rows. Slicing a non-aligned file at header offsets yields
// garbage fields whose timestamps never parse; a genuine fixed-width
// body always has at least one. An empty body is fine - there is
// nothing to misread.
func fixedSliceWorked(body []string, rows []Row) bool {
	if len(body) == 0 {
		return true
	}
	for _, r := range rows {
		if !r.AssignedAt.IsZero() || !r.CompletedAt.IsZero() {
			return true
		}
	}
	return false
}

func splitLines(export string) []string {
	raw := strings.Split(strings.ReplaceAll(export, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// findHeader returns the first line that names both a task-type column
// and an operator column.
func findHeader(lines []string) int {
	for i, l := range lines {
		folded := Fold(l)
		if containsAlias(folded, colType) && containsAlias(folded, colOperator) {
			return i
		}
	}
	return -1
}

func containsAlias(folded string, key columnKey) bool {
	for _, a := range headerAliases[key] {
		if strings.Contains(folded, a) {
			return true
		}
	}
	return false
}

// =============================================================================
// STRATEGY 1 - fixed text positions
// =============================================================================

type columnPos struct {
	key   columnKey
	start int
}

// locateFixedColumns finds the byte offset of every required header in
// the aligned-folded header line. All five must be present for the
// fixed-width strategy to apply.
func locateFixedColumns(header string) ([]columnPos, bool) {
	folded := foldAligned(header)
	var positions []columnPos
	for key := columnKey(0); key < numColumns; key++ {
		idx := -1
		for _, a := range headerAliases[key] {
			if i := strings.Index(folded, a); i >= 0 {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, false
		}
		positions = append(positions, columnPos{key: key, start: idx})
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].start < positions[j].start })
	return positions, true
}

// extractFixed slices each body line at the header offsets. Both the
// header and the rows go through foldAligned, which keeps one byte per
// rune, so accented text in an early column cannot shift the later
// columns.
func extractFixed(body []string, positions []columnPos) []Row {
	var rows []Row
	for _, line := range body {
		folded := foldAligned(line)
		fields := map[columnKey]string{}
		for i, p := range positions {
			if p.start >= len(folded) {
				continue
			}
			end := len(folded)
			if i+1 < len(positions) && positions[i+1].start < end {
				end = positions[i+1].start
			}
			fields[p.key] = strings.TrimSpace(folded[p.start:end])
		}
		if r, ok := buildRow(fields); ok {
			rows = append(rows, r)
		}
	}
	return rows
}

// =============================================================================
// STRATEGY 2 - delimiter split
// =============================================================================

// splitHeader picks whichever delimiter appears in the header line, in
// preference order, and returns the header cells.
func splitHeader(header string) (delim string, cells []string) {
	for _, d := range []string{";", "\t", ","} {
		if strings.Contains(header, d) {
			return d, strings.Split(header, d)
		}
	}
	return "", multiSpace.Split(strings.TrimSpace(header), -1)
}

func splitRow(line, delim string) []string {
	if delim == "" {
		return multiSpace.Split(strings.TrimSpace(line), -1)
	}
	return strings.Split(line, delim)
}

// mapDelimitedColumns maps each required column to its cell index.
func mapDelimitedColumns(cells []string) (map[columnKey]int, bool) {
	index := map[columnKey]int{}
	for i, c := range cells {
		folded := Fold(c)
		for key := columnKey(0); key < numColumns; key++ {
			if _, done := index[key]; done {
				continue
			}
			if containsAlias(folded, key) {
				index[key] = i
				break
			}
		}
	}
	if len(index) < int(numColumns) {
		return nil, false
	}
	return index, true
}

func extractDelimited(body []string, delim string, index map[columnKey]int) []Row {
	var rows []Row
	for _, line := range body {
		cells := splitRow(line, delim)
		fields := map[columnKey]string{}
		for key, i := range index {
			if i < len(cells) {
				fields[key] = strings.TrimSpace(cells[i])
			}
		}
		if r, ok := buildRow(fields); ok {
			rows = append(rows, r)
		}
	}
	return rows
}

// =============================================================================
// ROW ASSEMBLY
// =============================================================================

// buildRow turns extracted fields into a Row. Rows without a task type
// or operator are discarded. Timestamps that fail to parse stay zero;
// the matcher skips those rows without failing the batch.
func buildRow(fields map[columnKey]string) (Row, bool) {
	taskType := fields[colType]
	operator := fields[colOperator]
	if taskType == "" || operator == "" {
		return Row{}, false
	}
	return Row{
		TaskType:    taskType,
		Operator:    operator,
		Completed:   isCompletedStatus(fields[colStatus]),
		AssignedAt:  parseTimestamp(fields[colAssigned]),
		CompletedAt: parseTimestamp(fields[colCompleted]),
	}, true
}

var completedMarkers = []string{"conclu", "complet", "finaliz", "done", "ok"}

func isCompletedStatus(status string) bool {
	folded := Fold(status)
	for _, m := range completedMarkers {
		if strings.Contains(folded, m) {
			return true
		}
	}
	return false
}

// timestampLayouts covers the formats seen across WMS export variants.
var timestampLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
