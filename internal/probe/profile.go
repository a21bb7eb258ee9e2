// Package probe profiles a loaded table's columns: what kind of values each
// one holds and, for date columns, which layout fits best. It backs the
// -probe mode and never modifies the table.
package probe

import (
	"strings"

	"salesclean/internal/transformer/builtin"
	"salesclean/pkg/records"
)

// Inferred column kinds.
const (
	KindEmpty  = "empty"
	KindNumber = "number"
	KindDate   = "date"
	KindText   = "text"
)

// Column is the profile of one column.
type Column struct {
	Name string
	Kind string

	// Present counts non-missing cells; Missing the rest.
	Present int
	Missing int

	// NonNumeric and NonPositive count present cells that would not survive
	// numeric coercion or the positivity filter.
	NonNumeric  int
	NonPositive int

	// DateLayout is the best fitting layout for date columns, with the
	// number of cells it parses.
	DateLayout  string
	DateMatches int
}

// Profile inspects every column of t. layouts are the date layouts tried in
// order; empty selects builtin.DefaultDateLayouts.
func Profile(t *records.Table, layouts []string) []Column {
	if len(layouts) == 0 {
		layouts = builtin.DefaultDateLayouts
	}
	out := make([]Column, len(t.Columns))
	for i, name := range t.Columns {
		values := make([]string, 0, t.Len())
		c := Column{Name: name}
		for _, r := range t.Rows {
			if i >= len(r.Cells) || r.Cells[i].IsMissing() {
				c.Missing++
				continue
			}
			values = append(values, strings.TrimSpace(r.Cells[i].Raw()))
		}
		c.Present = len(values)
		for _, v := range values {
			d, ok := builtin.ParseNumber(v)
			switch {
			case !ok:
				c.NonNumeric++
			case !d.IsPositive():
				c.NonPositive++
			}
		}
		c.DateLayout, c.DateMatches = BestLayout(values, layouts)
		c.Kind = inferKind(c)
		out[i] = c
	}
	return out
}

// inferKind requires every present value to satisfy the narrower kind.
func inferKind(c Column) string {
	switch {
	case c.Present == 0:
		return KindEmpty
	case c.NonNumeric == 0:
		return KindNumber
	case c.DateMatches == c.Present:
		return KindDate
	default:
		return KindText
	}
}

// BestLayout scores each layout by how many samples it parses and returns
// the highest scoring one. Ties keep the earlier layout. It returns "" when
// no layout parses any sample.
func BestLayout(samples, layouts []string) (string, int) {
	if len(samples) == 0 || len(layouts) == 0 {
		return "", 0
	}
	scores := make([]int, len(layouts))
	for _, s := range samples {
		for i, l := range layouts {
			if _, ok := builtin.ParseDate(s, []string{l}); ok {
				scores[i]++
			}
		}
	}

	best := 0
	for i := range layouts {
		if scores[i] > scores[best] {
			best = i
		}
	}
	if scores[best] == 0 {
		return "", 0
	}
	return layouts[best], scores[best]
}
