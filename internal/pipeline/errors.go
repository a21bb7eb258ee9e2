package pipeline

import "fmt"

// LoadError reports that the input could not be read or parsed. Nothing was
// cleaned or written.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.Path, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// WriteError reports that the cleaned table (or its reject sidecar) could not
// be persisted. Cleaning had already completed in memory.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write %s: %v", e.Path, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }
