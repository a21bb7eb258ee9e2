package transformer

import (
	"time"

	"salesclean/internal/schema"
	"salesclean/internal/transformer/builtin"
	"salesclean/pkg/records"
)

// DefaultFallbackDate replaces missing or unparseable sale dates.
var DefaultFallbackDate = time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC)

// PlanOptions tunes the cleaning plan. Zero values select defaults.
type PlanOptions struct {
	FallbackDate time.Time
	DateLayouts  []string
	Reject       func(builtin.RejectedRow)
}

// Stats summarizes what a plan did to the rows it ran over.
type Stats struct {
	RowsIn             int
	RowsOut            int
	DroppedMissing     int
	DroppedNonPositive int
	DatesDefaulted     int

	// NoNumericColumns is set when neither price nor quantity resolved, so
	// the required-field drop had nothing to check.
	NoNumericColumns bool
}

// step is a named chain element; the name keys per-stage drop counts.
type step struct {
	name string
	t    Transformer
}

// Plan is the ordered cleaning chain compiled from resolved roles.
type Plan struct {
	steps     []step
	dates     *builtin.DateNormalize
	noNumeric bool
}

// Stage names.
const (
	StageTrim     = "trim"
	StageTitle    = "title_case"
	StageNumeric  = "numeric"
	StageRequire  = "require"
	StagePositive = "positive"
	StageDates    = "dates"
)

// Compile builds the plan for the given columns and roles. Steps whose role
// did not resolve are left out. Order: trim, title case, numeric coercion,
// required-field drop, positivity filter, date normalization.
func Compile(columns []string, roles schema.Roles, opt PlanOptions) *Plan {
	idx := func(r schema.Role) (int, string, bool) {
		col, ok := roles.Column(r)
		if !ok {
			return -1, "", false
		}
		for i, c := range columns {
			if c == col {
				return i, col, true
			}
		}
		return -1, "", false
	}

	p := &Plan{}
	text := []schema.Role{schema.RoleProduct, schema.RoleCategory}
	nums := []schema.Role{schema.RolePrice, schema.RoleQuantity}

	for _, r := range text {
		if i, _, ok := idx(r); ok {
			p.steps = append(p.steps, step{StageTrim, builtin.Trim{Col: i}})
		}
	}
	for _, r := range text {
		if i, _, ok := idx(r); ok {
			p.steps = append(p.steps, step{StageTitle, builtin.NewTitleCase(i)})
		}
	}

	var req builtin.Require
	for _, r := range nums {
		if i, name, ok := idx(r); ok {
			p.steps = append(p.steps, step{StageNumeric, builtin.Numeric{Col: i}})
			req.Cols = append(req.Cols, i)
			req.Names = append(req.Names, name)
		}
	}
	if len(req.Cols) == 0 {
		p.noNumeric = true
	} else {
		req.Reject = opt.Reject
		p.steps = append(p.steps, step{StageRequire, req})
	}
	for _, r := range nums {
		if i, name, ok := idx(r); ok {
			p.steps = append(p.steps, step{StagePositive, builtin.Positive{Col: i, Name: name, Reject: opt.Reject}})
		}
	}

	if i, _, ok := idx(schema.RoleDateSold); ok {
		fb := opt.FallbackDate
		if fb.IsZero() {
			fb = DefaultFallbackDate
		}
		p.dates = &builtin.DateNormalize{Col: i, Layouts: opt.DateLayouts, Fallback: fb}
		p.steps = append(p.steps, step{StageDates, p.dates})
	}
	return p
}

// Stages lists the step names in execution order.
func (p *Plan) Stages() []string {
	out := make([]string, len(p.steps))
	for i, s := range p.steps {
		out[i] = s.name
	}
	return out
}

// Run applies the plan to t's rows, replacing them with the survivors, and
// reports per-stage counts.
func (p *Plan) Run(t *records.Table) Stats {
	st := Stats{RowsIn: len(t.Rows), NoNumericColumns: p.noNumeric}
	var before int
	if p.dates != nil {
		before = p.dates.Defaulted
	}
	t.Rows = p.chain(&st).Apply(t.Rows)
	if p.dates != nil {
		st.DatesDefaulted = p.dates.Defaulted - before
	}
	st.RowsOut = len(t.Rows)
	return st
}

// chain wraps each step so the rows it drops are added to st.
func (p *Plan) chain(st *Stats) Chain {
	c := make(Chain, len(p.steps))
	for i, s := range p.steps {
		var dropped *int
		switch s.name {
		case StageRequire:
			dropped = &st.DroppedMissing
		case StagePositive:
			dropped = &st.DroppedNonPositive
		default:
			c[i] = s.t
			continue
		}
		c[i] = Func(func(in []records.Row) []records.Row {
			n := len(in)
			out := s.t.Apply(in)
			*dropped += n - len(out)
			return out
		})
	}
	return c
}
