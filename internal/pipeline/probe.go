package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"salesclean/internal/config"
	"salesclean/internal/logging"
	"salesclean/internal/probe"
	"salesclean/internal/schema"
)

// ProbeResult is what Probe learned about the input.
type ProbeResult struct {
	Original []string
	Columns  []string
	Rows     int
	Roles    schema.Roles
	Profile  []probe.Column
}

// Probe loads the input, normalizes its header, resolves roles and profiles
// each column, then prints the findings to out. Nothing is cleaned or
// written.
func Probe(ctx context.Context, p config.Pipeline, out io.Writer) (ProbeResult, error) {
	if out == nil {
		out = io.Discard
	}
	log := logging.WithFields(ctx, "job", p.Job, "mode", "probe")

	t, err := load(ctx, p, log)
	if err != nil {
		return ProbeResult{}, err
	}
	res := ProbeResult{Original: append([]string(nil), t.Columns...), Rows: t.Len()}

	res.Columns, err = schema.NormalizeColumns(t.Columns, p.Clean.OnCollision)
	if err != nil {
		return res, err
	}
	t.Columns = res.Columns
	cands, err := p.Clean.Candidates()
	if err != nil {
		return res, err
	}
	res.Roles = schema.ResolveRoles(res.Columns, cands)
	res.Profile = probe.Profile(t, p.Clean.DateLayouts)

	byColumn := make(map[string][]string, len(schema.AllRoles))
	for _, role := range schema.AllRoles {
		if col, ok := res.Roles.Column(role); ok {
			byColumn[col] = append(byColumn[col], string(role))
		}
	}

	width := 0
	for _, c := range res.Original {
		width = max(width, runewidth.StringWidth(c))
	}
	fmt.Fprintf(out, "%s: %d rows, %d columns\n", p.Source.File.Path, res.Rows, len(res.Columns))
	for i, c := range res.Original {
		col := res.Profile[i]
		line := runewidth.FillRight(c, width) + "  -> " + res.Columns[i]
		if roles := byColumn[res.Columns[i]]; len(roles) > 0 {
			line += "  [" + strings.Join(roles, ", ") + "]"
		}
		line += fmt.Sprintf("  %s, %d missing", col.Kind, col.Missing)
		fmt.Fprintln(out, line)
	}
	for _, r := range res.Roles.Missing() {
		fmt.Fprintf(out, "unresolved role: %s\n", r)
	}
	for _, r := range []schema.Role{schema.RolePrice, schema.RoleQuantity} {
		if col, ok := res.Roles.Column(r); ok {
			c := res.Profile[t.Index(col)]
			fmt.Fprintf(out, "%s (%s): %d missing, %d not numeric, %d not positive\n",
				r, col, c.Missing, c.NonNumeric, c.NonPositive)
		}
	}
	if col, ok := res.Roles.Column(schema.RoleDateSold); ok {
		c := res.Profile[t.Index(col)]
		if c.DateLayout == "" {
			fmt.Fprintf(out, "date_sold (%s): no layout matches; every value falls back\n", col)
		} else {
			fmt.Fprintf(out, "date_sold (%s): layout %s parses %d of %d values\n", col, c.DateLayout, c.DateMatches, c.Present)
		}
	}
	return res, nil
}
