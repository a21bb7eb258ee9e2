package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"salesclean/internal/schema"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "clean.roles.price[1]"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be returned as one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate the pipeline; callers decide whether warnings are fatal.
//
//	issues := config.ValidatePipeline(p)
//	for _, iss := range issues {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels metrics and log lines",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateClean(p.Clean)...)
	issues = append(issues, validateStorage(p.Storage)...)

	if p.Source.Kind == "file" && p.Storage.Kind == "csv" && p.Source.File.Path != "" &&
		filepath.Clean(p.Source.File.Path) == filepath.Clean(p.Storage.File.Path) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.file.path",
			Message:  "output path equals input path; the raw file will be replaced",
		})
	}
	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	switch strings.TrimSpace(s.Kind) {
	case "":
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  "file source requires a non-empty path",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unsupported source kind %q; only \"file\" is implemented", s.Kind),
		})
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	switch strings.TrimSpace(p.Kind) {
	case "":
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  "parser.kind must not be empty",
		})
	case "csv":
	default:
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unsupported parser kind %q; only \"csv\" is implemented", p.Kind),
		})
	}

	if v, ok := p.Options["comma"]; ok {
		s, isStr := v.(string)
		switch {
		case !isStr || utf8.RuneCountInString(s) != 1:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parser.options.comma",
				Message:  "comma must be a single character",
			})
		case s == "\"" || s == "\r" || s == "\n" || s == string(utf8.RuneError):
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parser.options.comma",
				Message:  fmt.Sprintf("comma %q cannot be used as a delimiter", s),
			})
		}
	}
	if v, ok := p.Options["na_values"]; ok {
		switch list := v.(type) {
		case []string:
		case []any:
			for i, x := range list {
				if _, ok := x.(string); !ok {
					issues = append(issues, Issue{
						Severity: SeverityError,
						Path:     fmt.Sprintf("parser.options.na_values[%d]", i),
						Message:  "na_values entries must be strings",
					})
				}
			}
		default:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parser.options.na_values",
				Message:  "na_values must be a list of strings",
			})
		}
	}
	for k := range p.Options {
		switch k {
		case "comma", "na_values", "lazy_quotes":
		default:
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "parser.options." + k,
				Message:  "unknown csv option; it is ignored",
			})
		}
	}
	return issues
}

func validateClean(c Clean) []Issue {
	var issues []Issue

	if _, err := c.Fallback(); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "clean.fallback_date",
			Message:  fmt.Sprintf("fallback_date must be YYYY-MM-DD: %v", err),
		})
	}

	for i, l := range c.DateLayouts {
		if strings.TrimSpace(l) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("clean.date_layouts[%d]", i),
				Message:  "date layout must not be empty",
			})
			continue
		}
		// A layout with no reference-time fields parses nothing.
		if time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC).Format(l) == l {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("clean.date_layouts[%d]", i),
				Message:  fmt.Sprintf("layout %q has no date or time fields", l),
			})
		}
	}

	switch c.OnCollision {
	case "", schema.OnCollisionError, schema.OnCollisionSuffix:
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "clean.on_collision",
			Message:  fmt.Sprintf("on_collision must be %q or %q, got %q", schema.OnCollisionError, schema.OnCollisionSuffix, c.OnCollision),
		})
	}

	for name, list := range c.Roles {
		path := "clean.roles." + name
		if _, err := schema.ParseRole(name); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  err.Error(),
			})
			continue
		}
		if len(list) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  "empty candidate list; the default candidates are used",
			})
		}
		for i, cand := range list {
			if cand == "" {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     fmt.Sprintf("%s[%d]", path, i),
					Message:  "empty candidate never matches",
				})
			} else if schema.NormalizeName(cand) != cand {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     fmt.Sprintf("%s[%d]", path, i),
					Message:  fmt.Sprintf("candidate %q is matched against normalized names; did you mean %q?", cand, schema.NormalizeName(cand)),
				})
			}
		}
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	switch strings.TrimSpace(s.Kind) {
	case "":
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
	case "csv":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.file.path",
				Message:  "csv storage requires a non-empty path",
			})
		}
	default:
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unsupported storage kind %q; only \"csv\" is implemented", s.Kind),
		})
	}

	if s.RejectsPath != "" && filepath.Clean(s.RejectsPath) == filepath.Clean(s.File.Path) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.rejects_path",
			Message:  "rejects_path must differ from the output path",
		})
	}
	if s.PreviewRows < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.preview_rows",
			Message:  "preview_rows must not be negative",
		})
	}
	return issues
}
