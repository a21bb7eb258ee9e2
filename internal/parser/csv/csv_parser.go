// Package csv loads a delimited file into a records.Table. The whole input
// is materialized; cells arrive as Text, or Missing for empty cells and NA
// tokens.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"salesclean/pkg/records"
)

// DefaultNAValues are the cell spellings treated as missing on load.
var DefaultNAValues = []string{
	"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan",
	"null", "NULL", "None", "#N/A", "<NA>",
}

// ErrNoHeader is returned when the input has no header row.
var ErrNoHeader = errors.New("csv: missing header row")

// Options configures the CSV parser. Zero values select defaults.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// NAValues lists cell values loaded as Missing. When nil,
	// DefaultNAValues is used; an empty non-nil slice disables NA
	// detection except for empty cells.
	NAValues []string

	// LazyQuotes relaxes quote handling for inputs with stray quotes.
	LazyQuotes bool
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs but not for concurrent use.
type Parser struct {
	opt Options
	na  map[string]struct{}
}

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	vals := opt.NAValues
	if vals == nil {
		vals = DefaultNAValues
	}
	na := make(map[string]struct{}, len(vals)+1)
	na[""] = struct{}{}
	for _, v := range vals {
		na[v] = struct{}{}
	}
	return &Parser{opt: opt, na: na}
}

// Parse reads the header and every data row from r. Blank lines are
// skipped; rows shorter than the header are padded with Missing; a row wider
// than the header fails the parse, as does any quoting error.
func (p *Parser) Parse(r io.Reader) (*records.Table, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = p.opt.LazyQuotes

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	t := &records.Table{Columns: StripHeaderBOM(header)}
	width := len(t.Columns)

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(row) > width {
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, width, len(row))
		}

		cells := make([]records.Value, width)
		for i, val := range row {
			cells[i] = p.cell(val)
		}
		t.Rows = append(t.Rows, records.Row{Line: line, Cells: cells})
	}
	return t, nil
}

// cell maps a raw field onto Missing or Text; positions past the row's end
// keep the zero Value, which is Missing.
func (p *Parser) cell(s string) records.Value {
	if _, ok := p.na[s]; ok {
		return records.Missing()
	}
	return records.Text(s)
}
