// Package schema derives the column layout of a loaded table: canonical
// column names and the semantic roles (product, price, ...) those columns
// play. Everything here is a pure function of the header.
package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Collision policies for NormalizeColumns.
const (
	OnCollisionError  = "error"
	OnCollisionSuffix = "suffix"
)

// ErrColumnCollision is returned (wrapped in a *SchemaError) when two source
// labels normalize to the same column name under the "error" policy.
var ErrColumnCollision = errors.New("column name collision")

// SchemaError describes a header that cannot be turned into a unique set of
// column names.
type SchemaError struct {
	Name    string // normalized name both labels map to
	First   string // first source label
	Second  string // colliding source label
	Columns []string
	Err     error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: %q and %q both normalize to %q: %v", e.First, e.Second, e.Name, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// NormalizeName converts a raw header label into its canonical form:
//  1. trim surrounding whitespace and NFC-normalize
//  2. lowercase
//  3. replace every run of non-word runes with a single '_'
//  4. trim leading/trailing '_'
//
// Word runes are Unicode letters, Unicode numbers and '_'. The result may be
// empty; NormalizeColumns substitutes a positional name in that case.
func NormalizeName(s string) string {
	s = strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))

	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
			inRun = false
			continue
		}
		if !inRun {
			b.WriteByte('_')
			inRun = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// NormalizeColumns normalizes every label in order. Labels that normalize to
// nothing become "col_<i>". Duplicates are handled per policy: "error" (or
// empty) fails with ErrColumnCollision, "suffix" renames later duplicates to
// name_2, name_3, ...
func NormalizeColumns(labels []string, policy string) ([]string, error) {
	out := make([]string, len(labels))
	owner := make(map[string]int, len(labels))

	for i, raw := range labels {
		name := NormalizeName(raw)
		if name == "" {
			name = "col_" + strconv.Itoa(i)
		}
		if j, dup := owner[name]; dup {
			switch policy {
			case OnCollisionSuffix:
				name = uniqueSuffix(name, owner)
			case OnCollisionError, "":
				return nil, &SchemaError{
					Name:    name,
					First:   labels[j],
					Second:  raw,
					Columns: labels,
					Err:     ErrColumnCollision,
				}
			default:
				return nil, fmt.Errorf("schema: unknown collision policy %q", policy)
			}
		}
		owner[name] = i
		out[i] = name
	}
	return out, nil
}

func uniqueSuffix(name string, taken map[string]int) string {
	for n := 2; ; n++ {
		cand := name + "_" + strconv.Itoa(n)
		if _, ok := taken[cand]; !ok {
			return cand
		}
	}
}
