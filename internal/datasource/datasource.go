// Package datasource abstracts where pipeline bytes come from and go to.
package datasource

import (
	"context"
	"io"
)

// Source yields the raw input stream.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Sink accepts the rendered output stream. Close must be called to publish
// the data; Abort discards whatever was written.
type Sink interface {
	Create(ctx context.Context) (WriteAborter, error)
}

// WriteAborter is a destination that can be committed with Close or
// discarded with Abort.
type WriteAborter interface {
	io.WriteCloser
	Abort() error
}
