package builtin

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"salesclean/pkg/records"
)

// Numeric converts Text cells in Col to exact decimals. Text that does not
// parse (including "nan", "inf" and out-of-range magnitudes) becomes Missing
// and keeps its raw text for diagnostics. Number cells are kept; Missing
// stays Missing.
type Numeric struct {
	Col int
}

func (n Numeric) Apply(in []records.Row) []records.Row {
	for _, r := range in {
		if n.Col >= len(r.Cells) {
			continue
		}
		s, ok := r.Cells[n.Col].AsText()
		if !ok {
			continue
		}
		d, ok := ParseNumber(s)
		if !ok {
			r.Cells[n.Col] = records.MissingFrom(s)
			continue
		}
		r.Cells[n.Col] = records.Number(d)
	}
	return in
}

// MaxNumberDigits bounds both the integer and the fractional digits of a
// parsed number. Plain rendering of a decimal expands its exponent, so
// 1e300000000 would otherwise print three hundred million digits.
const MaxNumberDigits = 1000

// ParseNumber parses s as a decimal. It reports false for text that is not
// a number or whose plain form would need more than MaxNumberDigits digits
// on either side of the point.
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 4*MaxNumberDigits {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	c := d.Coefficient()
	digits := len(c.Abs(c).String())
	exp := int64(d.Exponent())
	if exp < -MaxNumberDigits || int64(digits)+exp > MaxNumberDigits {
		return decimal.Decimal{}, false
	}
	return d, true
}

// DefaultDateLayouts is the ordered list of layouts tried by DateNormalize.
// ISO forms come first; ambiguous numeric forms are read month-first.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-1-2",
	"2006/01/02",
	"2006.01.02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"01-02-2006",
	"1-2-2006",
	"01.02.2006",
	"1.2.2006",
	"01/02/06",
	"1/2/06",
	"1-2-06",
	"1.2.06",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"20060102",
}

// DateNormalize parses Text cells in Col as dates. Missing cells and text
// matching none of Layouts are replaced with Fallback. Defaulted counts the
// substitutions made across Apply calls.
type DateNormalize struct {
	Col       int
	Layouts   []string
	Fallback  time.Time
	Defaulted int
}

func (d *DateNormalize) Apply(in []records.Row) []records.Row {
	layouts := d.Layouts
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	for _, r := range in {
		if d.Col >= len(r.Cells) {
			continue
		}
		switch v := r.Cells[d.Col]; v.Kind() {
		case records.KindDate:
			continue
		case records.KindText:
			s, _ := v.AsText()
			if t, ok := ParseDate(strings.TrimSpace(s), layouts); ok {
				r.Cells[d.Col] = records.Date(t)
				continue
			}
		}
		r.Cells[d.Col] = records.Date(d.Fallback)
		d.Defaulted++
	}
	return in
}

// ParseDate tries each layout in order and returns the first successful
// parse.
func ParseDate(s string, layouts []string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
