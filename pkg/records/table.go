package records

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// Row is one data row. Cells are aligned with Table.Columns. Line is the
// 1-based line of the row in the source file (0 when unknown).
type Row struct {
	Line  int
	Cells []Value
}

// Table is an ordered set of uniquely named columns and the rows beneath
// them. Row positions are implicit: the index of a row in Rows is its index.
type Table struct {
	Columns []string
	Rows    []Row
}

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Head returns at most n leading rows. The returned slice shares storage with
// the table.
func (t *Table) Head(n int) []Row {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

// DateLayouts returns, per column, the layout used to render Date cells:
// DateTimeLayout when any Date in the column has a time of day, DateLayout
// otherwise. Whole-column rendering keeps a column's values uniform.
func (t *Table) DateLayouts() []string {
	out := make([]string, len(t.Columns))
	for i := range out {
		out[i] = DateLayout
	}
	for _, r := range t.Rows {
		for i, v := range r.Cells {
			if i >= len(out) || out[i] == DateTimeLayout {
				continue
			}
			if d, ok := v.AsDate(); ok && !isMidnight(d.Hour(), d.Minute(), d.Second(), d.Nanosecond()) {
				out[i] = DateTimeLayout
			}
		}
	}
	return out
}

// Strings renders row r with the given per-column date layouts.
func (t *Table) Strings(r Row, layouts []string) []string {
	out := make([]string, len(t.Columns))
	for i := range out {
		if i >= len(r.Cells) {
			continue
		}
		layout := DateLayout
		if i < len(layouts) {
			layout = layouts[i]
		}
		out[i] = r.Cells[i].Format(layout)
	}
	return out
}

// Fingerprint returns a 64-bit xxh3 hash over the column names and every
// cell's kind and canonical rendering. Two tables with equal fingerprints
// hold, with overwhelming probability, the same data in the same order.
func (t *Table) Fingerprint() uint64 {
	h := xxh3.New()
	var n [8]byte

	binary.LittleEndian.PutUint64(n[:], uint64(len(t.Columns)))
	_, _ = h.Write(n[:])
	for _, c := range t.Columns {
		_, _ = h.WriteString(c)
		_, _ = h.Write([]byte{0x1f})
	}
	for _, r := range t.Rows {
		_, _ = h.Write([]byte{0x1e})
		for _, v := range r.Cells {
			_, _ = h.Write([]byte{byte(v.kind)})
			switch v.kind {
			case KindDate:
				_, _ = h.WriteString(v.t.UTC().Format("2006-01-02T15:04:05.999999999"))
			case KindMissing:
				// raw text of a coerced-away cell is diagnostic only
			default:
				_, _ = h.WriteString(v.Format(DateLayout))
			}
			_, _ = h.Write([]byte{0x1f})
		}
	}
	return h.Sum64()
}

func isMidnight(h, m, s, ns int) bool { return h == 0 && m == 0 && s == 0 && ns == 0 }
