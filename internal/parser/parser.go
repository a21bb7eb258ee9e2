package parser

import (
	"io"

	"salesclean/pkg/records"
)

// Parser turns raw bytes into an in-memory table.
type Parser interface {
	Parse(r io.Reader) (*records.Table, error)
}
