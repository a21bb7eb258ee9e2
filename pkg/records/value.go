// Package records defines the in-memory table model shared by every pipeline
// stage: a tagged cell Value, positional Rows and the Table that owns them.
package records

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	// KindMissing marks an absent or uncoercible cell. It is the zero Kind so
	// that the zero Value is Missing.
	KindMissing Kind = iota
	KindText
	KindNumber
	KindDate
)

// String returns the lowercase kind name used in logs and reject reasons.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "missing"
	}
}

// Layouts used when rendering Date values.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Value is a single table cell. Exactly one payload is meaningful, selected
// by Kind. A Missing value may carry the raw text it replaced so that
// diagnostics can show what was dropped; that text is never written out.
type Value struct {
	kind Kind
	text string
	num  decimal.Decimal
	t    time.Time
}

// Text returns a Text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number returns a Number value.
func Number(d decimal.Decimal) Value { return Value{kind: KindNumber, num: d} }

// Date returns a Date value.
func Date(t time.Time) Value { return Value{kind: KindDate, t: t} }

// Missing returns the missing marker.
func Missing() Value { return Value{} }

// MissingFrom returns the missing marker remembering the raw text that could
// not be coerced.
func MissingFrom(raw string) Value { return Value{kind: KindMissing, text: raw} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is the missing marker.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// AsText returns the text payload and true when v is Text.
func (v Value) AsText() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// AsNumber returns the numeric payload and true when v is Number.
func (v Value) AsNumber() (decimal.Decimal, bool) {
	if v.kind != KindNumber {
		return decimal.Decimal{}, false
	}
	return v.num, true
}

// AsDate returns the date payload and true when v is Date.
func (v Value) AsDate() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.t, true
}

// Raw returns the source text for Text and coerced-away Missing values, and
// the rendered form for everything else.
func (v Value) Raw() string {
	switch v.kind {
	case KindText, KindMissing:
		return v.text
	default:
		return v.Format(DateLayout)
	}
}

// Format renders v for output. dateLayout applies to Date values only;
// Missing renders as the empty string.
func (v Value) Format(dateLayout string) string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.num.String()
	case KindDate:
		if dateLayout == "" {
			dateLayout = DateLayout
		}
		return v.t.Format(dateLayout)
	default:
		return ""
	}
}

// String implements fmt.Stringer using the date-only layout.
func (v Value) String() string { return v.Format(DateLayout) }

// Equal reports whether v and o hold the same variant and payload. Numbers
// compare by value, so 3 and 3.0 are equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.num.Equal(o.num)
	case KindDate:
		return v.t.Equal(o.t)
	default:
		return true
	}
}
