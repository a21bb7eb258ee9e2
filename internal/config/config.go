// Package config defines the pipeline file model for salesclean. A pipeline
// file is JSON, or YAML when its name ends in .yaml or .yml, and maps one to
// one onto the structs below. Anything not set in the file keeps the value
// from Default.
//
// Example (trimmed):
//
//	{
//	  "job":     "daily-sales",
//	  "source":  { "kind": "file", "file": { "path": "data/raw/sales_data_raw.csv" } },
//	  "parser":  { "kind": "csv", "options": { "comma": ",", "na_values": ["NA", "n/a"] } },
//	  "clean":   { "fallback_date": "2024-01-07", "on_collision": "error",
//	               "roles": { "price": ["price", "amount"] } },
//	  "storage": { "kind": "csv", "file": { "path": "data/processed/sales_data_clean.csv" },
//	               "rejects_path": "data/processed/rejects.csv", "preview_rows": 5 }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"salesclean/internal/schema"
)

// Defaults used when neither the pipeline file nor a flag sets a value.
const (
	DefaultJob          = "salesclean"
	DefaultInputPath    = "data/raw/sales_data_raw.csv"
	DefaultOutputPath   = "data/processed/sales_data_clean.csv"
	DefaultFallbackDate = "2024-01-07"
	DefaultPreviewRows  = 5
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job labels metrics and log lines for this pipeline.
	Job string `json:"job" yaml:"job"`

	Source  Source  `json:"source" yaml:"source"`
	Parser  Parser  `json:"parser" yaml:"parser"`
	Clean   Clean   `json:"clean" yaml:"clean"`
	Storage Storage `json:"storage" yaml:"storage"`
}

// Source identifies the input. Only "file" is implemented.
type Source struct {
	Kind string     `json:"kind" yaml:"kind"`
	File SourceFile `json:"file" yaml:"file"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	Path string `json:"path" yaml:"path"`
}

// Parser selects how the raw input is split into rows.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind" yaml:"kind"`

	// Options is interpreted by the parser. For CSV the keys are
	//   comma (string), na_values ([]string), lazy_quotes (bool)
	Options Options `json:"options" yaml:"options"`
}

// Clean configures the column normalizer, role resolver and row cleaner.
type Clean struct {
	// FallbackDate replaces missing or unparseable sale dates (YYYY-MM-DD).
	FallbackDate string `json:"fallback_date" yaml:"fallback_date"`

	// DateLayouts are Go time layouts tried in order when parsing dates.
	// Empty selects the built-in list.
	DateLayouts []string `json:"date_layouts" yaml:"date_layouts"`

	// OnCollision is "error" or "suffix"; see schema.NormalizeColumns.
	OnCollision string `json:"on_collision" yaml:"on_collision"`

	// Roles overrides candidate lists per role. Roles not listed keep the
	// default candidates.
	Roles map[string][]string `json:"roles" yaml:"roles"`
}

// Storage describes where the cleaned table goes.
type Storage struct {
	// Kind selects the sink. Current value: "csv".
	Kind string      `json:"kind" yaml:"kind"`
	File StorageFile `json:"file" yaml:"file"`

	// RejectsPath, when set, receives one CSV line per dropped row.
	RejectsPath string `json:"rejects_path" yaml:"rejects_path"`

	// PreviewRows is how many cleaned rows are echoed to the console.
	PreviewRows int `json:"preview_rows" yaml:"preview_rows"`
}

// StorageFile holds configuration for the "csv" storage kind.
type StorageFile struct {
	Path string `json:"path" yaml:"path"`
}

// Default returns a pipeline that reproduces the stock behavior: read the raw
// sales export, clean it with the built-in roles and write the processed file.
func Default() Pipeline {
	return Pipeline{
		Job:    DefaultJob,
		Source: Source{Kind: "file", File: SourceFile{Path: DefaultInputPath}},
		Parser: Parser{Kind: "csv", Options: Options{}},
		Clean: Clean{
			FallbackDate: DefaultFallbackDate,
			OnCollision:  schema.OnCollisionError,
		},
		Storage: Storage{
			Kind:        "csv",
			File:        StorageFile{Path: DefaultOutputPath},
			PreviewRows: DefaultPreviewRows,
		},
	}
}

// Load reads a pipeline file on top of Default. Unknown keys are rejected so
// typos surface instead of silently falling back to defaults.
func Load(path string) (Pipeline, error) {
	p := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return p, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return p, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}
	return p, nil
}

// Fallback parses FallbackDate. An empty value selects DefaultFallbackDate.
func (c Clean) Fallback() (time.Time, error) {
	s := strings.TrimSpace(c.FallbackDate)
	if s == "" {
		s = DefaultFallbackDate
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fallback_date %q: %w", c.FallbackDate, err)
	}
	return t, nil
}

// Candidates merges the configured role overrides into the defaults.
func (c Clean) Candidates() (schema.Candidates, error) {
	override := schema.Candidates{}
	for name, list := range c.Roles {
		r, err := schema.ParseRole(name)
		if err != nil {
			return nil, err
		}
		override[r] = list
	}
	return schema.DefaultCandidates().Merge(override), nil
}

// Options is a small helper to fetch typed values from a decoded options
// object. It performs minimal coercion and returns the provided default when
// a key is absent or of an unexpected type.
type Options map[string]any

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if the key
// is missing or empty.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringSlice returns a []string for key when the value is an array of
// strings. Non-string elements are skipped. Returns nil when the key is
// missing or not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// UnmarshalJSON makes a missing or null "options" object decode to an empty,
// non-nil map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
