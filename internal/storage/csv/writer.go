// Package csv persists cleaned tables as delimited files and records
// dropped rows in a reject sidecar.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"salesclean/internal/datasource"
	"salesclean/pkg/records"
)

// Options configures the writer. Zero values select defaults.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune
}

// Write renders t to w: one header row, then one row per table row. Numbers
// use plain decimal notation, Missing cells are empty and Date columns are
// rendered per records.Table.DateLayouts. No row index is written.
func Write(w io.Writer, t *records.Table, opt Options) (int64, error) {
	cw := csv.NewWriter(w)
	if opt.Comma != 0 {
		cw.Comma = opt.Comma
	}
	if err := cw.Write(t.Columns); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	layouts := t.DateLayouts()
	var n int64
	for i, r := range t.Rows {
		if err := cw.Write(t.Strings(r, layouts)); err != nil {
			return n, fmt.Errorf("write row %d: %w", i, err)
		}
		n++
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("flush: %w", err)
	}
	return n, nil
}

// WriteTo writes t into a fresh destination from sink. The destination is
// only published when every row was written; on failure it is discarded.
func WriteTo(ctx context.Context, sink datasource.Sink, t *records.Table, opt Options) (int64, error) {
	dst, err := sink.Create(ctx)
	if err != nil {
		return 0, err
	}
	n, err := Write(dst, t, opt)
	if err != nil {
		_ = dst.Abort()
		return n, err
	}
	if err := dst.Close(); err != nil {
		return n, err
	}
	return n, nil
}
