// Package builtin contains the row-cleaning transformers used by the
// pipeline. Each transformer is bound to column positions at construction
// and leaves every other column untouched.
package builtin

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"salesclean/pkg/records"
)

// Trim strips surrounding Unicode whitespace from Text cells in Col.
// Other kinds pass through.
type Trim struct {
	Col int
}

func (t Trim) Apply(in []records.Row) []records.Row {
	for _, r := range in {
		if t.Col >= len(r.Cells) {
			continue
		}
		if s, ok := r.Cells[t.Col].AsText(); ok {
			r.Cells[t.Col] = records.Text(strings.TrimSpace(s))
		}
	}
	return in
}

// TitleCase rewrites Text cells in Col so each word starts with an upper
// case letter followed by lower case letters. Word boundaries follow Unicode
// segmentation, so an apostrophe does not start a new word ("Kid's").
type TitleCase struct {
	Col   int
	caser cases.Caser
}

// NewTitleCase returns a TitleCase bound to col using language-neutral
// casing rules.
func NewTitleCase(col int) *TitleCase {
	return &TitleCase{Col: col, caser: cases.Title(language.Und)}
}

// Apply is not safe for concurrent use; the underlying caser keeps state.
func (t *TitleCase) Apply(in []records.Row) []records.Row {
	for _, r := range in {
		if t.Col >= len(r.Cells) {
			continue
		}
		if s, ok := r.Cells[t.Col].AsText(); ok {
			r.Cells[t.Col] = records.Text(t.caser.String(s))
		}
	}
	return in
}
