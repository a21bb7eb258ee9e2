package builtin

import (
	"fmt"

	"salesclean/pkg/records"
)

// RejectedRow describes a row dropped by a filter.
type RejectedRow struct {
	Line   int
	Row    records.Row
	Reason string
	Stage  string
}

// Require removes any row holding Missing in one of Cols. Names are the
// column names for Cols, used in reject reasons.
type Require struct {
	Cols   []int
	Names  []string
	Reject func(RejectedRow) // optional sink
}

func (r Require) Apply(in []records.Row) []records.Row {
	if len(r.Cols) == 0 {
		return in
	}
	out := in[:0]
	for _, row := range in {
		if i, missing := r.firstMissing(row); missing {
			if r.Reject != nil {
				r.Reject(RejectedRow{
					Line:   row.Line,
					Row:    row,
					Reason: fmt.Sprintf("required field %q missing", nameAt(r.Names, i, r.Cols[i])),
					Stage:  "require",
				})
			}
			continue
		}
		out = append(out, row)
	}
	return out
}

func (r Require) firstMissing(row records.Row) (int, bool) {
	for i, c := range r.Cols {
		if c >= len(row.Cells) || row.Cells[c].IsMissing() {
			return i, true
		}
	}
	return 0, false
}

func nameAt(names []string, i, col int) string {
	if i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("col_%d", col)
}
