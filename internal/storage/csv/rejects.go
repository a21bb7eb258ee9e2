package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"salesclean/internal/datasource"
	"salesclean/internal/transformer/builtin"
)

// RejectLog writes one CSV line per dropped row: stage, reason, source line
// and then the row's cells. Cells that failed coercion show their original
// text. Counts are kept per stage.
type RejectLog struct {
	dst    datasource.WriteAborter
	w      *csv.Writer
	counts map[string]int
	err    error
}

// NewRejectLog opens a reject sidecar on sink and writes its header.
func NewRejectLog(ctx context.Context, sink datasource.Sink, columns []string, opt Options) (*RejectLog, error) {
	dst, err := sink.Create(ctx)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(dst)
	if opt.Comma != 0 {
		w.Comma = opt.Comma
	}
	header := append([]string{"stage", "reason", "line"}, columns...)
	if err := w.Write(header); err != nil {
		_ = dst.Abort()
		return nil, fmt.Errorf("write reject header: %w", err)
	}
	return &RejectLog{dst: dst, w: w, counts: make(map[string]int)}, nil
}

// Add records one rejected row. Write errors are kept and returned by Close.
func (l *RejectLog) Add(r builtin.RejectedRow) {
	l.counts[r.Stage]++
	if l.err != nil {
		return
	}
	line := make([]string, 0, 3+len(r.Row.Cells))
	line = append(line, r.Stage, r.Reason, strconv.Itoa(r.Line))
	for _, c := range r.Row.Cells {
		line = append(line, c.Raw())
	}
	if err := l.w.Write(line); err != nil {
		l.err = fmt.Errorf("write reject: %w", err)
	}
}

// Counts returns the number of rejects per stage.
func (l *RejectLog) Counts() map[string]int {
	out := make(map[string]int, len(l.counts))
	for k, v := range l.counts {
		out[k] = v
	}
	return out
}

// Abort discards the sidecar without publishing it.
func (l *RejectLog) Abort() error {
	return l.dst.Abort()
}

// Close flushes and publishes the sidecar.
func (l *RejectLog) Close() error {
	l.w.Flush()
	if l.err == nil {
		l.err = l.w.Error()
	}
	if l.err != nil {
		_ = l.dst.Abort()
		return l.err
	}
	return l.dst.Close()
}
