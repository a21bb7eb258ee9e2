package builtin

import (
	"fmt"

	"salesclean/pkg/records"
)

// Positive keeps only rows whose Col holds a Number greater than zero.
// Anything else, Missing and non-numeric cells included, is dropped.
type Positive struct {
	Col    int
	Name   string
	Reject func(RejectedRow) // optional sink
}

func (p Positive) Apply(in []records.Row) []records.Row {
	out := in[:0]
	for _, row := range in {
		var v records.Value
		if p.Col < len(row.Cells) {
			v = row.Cells[p.Col]
		}
		if d, ok := v.AsNumber(); ok && d.IsPositive() {
			out = append(out, row)
			continue
		}
		if p.Reject != nil {
			p.Reject(RejectedRow{
				Line:   row.Line,
				Row:    row,
				Reason: fmt.Sprintf("field %q: %q not greater than zero", p.Name, v.Raw()),
				Stage:  "positive",
			})
		}
	}
	return out
}
