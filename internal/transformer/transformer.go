// Package transformer chains row-level cleaning steps. Each step receives
// the current rows and returns the rows that survive it; filters reslice the
// input in place.
package transformer

import "salesclean/pkg/records"

// Transformer is a single cleaning step.
type Transformer interface {
	Apply([]records.Row) []records.Row
}

// Func adapts a plain function to Transformer.
type Func func([]records.Row) []records.Row

func (f Func) Apply(in []records.Row) []records.Row { return f(in) }

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in []records.Row) []records.Row {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
