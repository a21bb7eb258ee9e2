// Package file implements local filesystem sources and sinks.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"salesclean/internal/datasource"
)

// Local is a filesystem location used as a data source or sink.
type Local struct{ path string }

var (
	_ datasource.Source = (*Local)(nil)
	_ datasource.Sink   = (*Local)(nil)
)

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open opens the configured path for reading.
//
// Behavior:
//   - If the context is already canceled, Open returns the context error
//     without touching the filesystem.
//   - Filesystem errors are wrapped with the path while still permitting
//     errors.Is checks (e.g., errors.Is(err, os.ErrNotExist)).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// Create prepares the path for writing. Parent directories are created as
// needed. Data goes to a temporary file in the same directory, renamed over
// the path on Close, so a failed run never leaves a partial output behind.
func (l *Local) Create(ctx context.Context) (datasource.WriteAborter, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dir %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", l.path, err)
	}
	return &atomicFile{f: f, dst: l.path}, nil
}

// atomicFile renames its temporary file into place on Close.
type atomicFile struct {
	f    *os.File
	dst  string
	done bool
}

func (a *atomicFile) Write(p []byte) (int, error) { return a.f.Write(p) }

func (a *atomicFile) Close() error {
	if a.done {
		return nil
	}
	a.done = true
	if err := a.f.Close(); err != nil {
		_ = os.Remove(a.f.Name())
		return fmt.Errorf("close %s: %w", a.dst, err)
	}
	if err := os.Chmod(a.f.Name(), 0o644); err != nil {
		_ = os.Remove(a.f.Name())
		return fmt.Errorf("chmod %s: %w", a.dst, err)
	}
	if err := os.Rename(a.f.Name(), a.dst); err != nil {
		_ = os.Remove(a.f.Name())
		return fmt.Errorf("rename into %s: %w", a.dst, err)
	}
	return nil
}

func (a *atomicFile) Abort() error {
	if a.done {
		return nil
	}
	a.done = true
	_ = a.f.Close()
	return os.Remove(a.f.Name())
}
