// Package pipeline runs the sales cleaning job end to end: load the raw file,
// normalize its headers, resolve column roles once, clean the rows, write the
// result and print a preview.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"salesclean/internal/config"
	"salesclean/internal/datasource/file"
	"salesclean/internal/logging"
	"salesclean/internal/metrics"
	"salesclean/internal/parser"
	pcsv "salesclean/internal/parser/csv"
	"salesclean/internal/preview"
	"salesclean/internal/schema"
	scsv "salesclean/internal/storage/csv"
	"salesclean/internal/transformer"
	"salesclean/internal/transformer/builtin"
	"salesclean/pkg/records"
)

// NoNumericMessage is printed when neither price nor quantity resolved, so
// the required-field drop had nothing to check.
const NoNumericMessage = "No invalid price or quantity to clean."

// Summary describes one completed run.
type Summary struct {
	RunID   string
	Job     string
	Input   string
	Output  string
	Rejects string

	Columns    []string
	Roles      map[string]string
	Unresolved []string

	RowsRead           int
	RowsWritten        int
	DroppedMissing     int
	DroppedNonPositive int
	DatesDefaulted     int
	NoNumericColumns   bool

	// Rejected counts dropped rows per stage; set only when a reject
	// sidecar is configured.
	Rejected map[string]int

	// Fingerprint is the xxh3 hash of the cleaned table. Re-cleaning the
	// output yields the same value.
	Fingerprint uint64
	Duration    time.Duration
}

// LogValue implements slog.LogValuer.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("output", s.Output),
		slog.Int("rows_read", s.RowsRead),
		slog.Int("rows_written", s.RowsWritten),
		slog.Int("dropped_missing", s.DroppedMissing),
		slog.Int("dropped_non_positive", s.DroppedNonPositive),
		slog.Int("dates_defaulted", s.DatesDefaulted),
		slog.Any("rejected", s.Rejected),
		slog.String("fingerprint", fmt.Sprintf("%016x", s.Fingerprint)),
		slog.Duration("duration", s.Duration),
	)
}

// Run executes the pipeline described by p. Console output (diagnostic,
// completion message, preview) goes to out; structured logs go through slog.
// The run ID is taken from ctx (see logging.WithRunID) or generated.
func Run(ctx context.Context, p config.Pipeline, out io.Writer) (Summary, error) {
	start := time.Now()
	if out == nil {
		out = io.Discard
	}
	if logging.RunID(ctx) == "" {
		ctx = logging.WithRunID(ctx, uuid.NewString())
	}
	sum := Summary{
		RunID:   logging.RunID(ctx),
		Job:     p.Job,
		Input:   p.Source.File.Path,
		Output:  p.Storage.File.Path,
		Rejects: p.Storage.RejectsPath,
	}
	log := logging.WithFields(ctx, "job", p.Job)

	t, roles, err := prepare(ctx, p, log)
	if err != nil {
		return sum, err
	}
	sum.Columns = t.Columns
	sum.Roles = roles.Map()
	for _, r := range roles.Missing() {
		sum.Unresolved = append(sum.Unresolved, string(r))
	}
	if err := ctx.Err(); err != nil {
		return sum, err
	}

	st, rejects, err := clean(ctx, p, t, roles, log)
	if err != nil {
		return sum, err
	}
	if rejects != nil {
		// The sidecar is published only after the cleaned output.
		defer func() {
			if rejects != nil {
				_ = rejects.Abort()
			}
		}()
		sum.Rejected = rejects.Counts()
	}
	sum.RowsRead = st.RowsIn
	sum.RowsWritten = st.RowsOut
	sum.DroppedMissing = st.DroppedMissing
	sum.DroppedNonPositive = st.DroppedNonPositive
	sum.DatesDefaulted = st.DatesDefaulted
	sum.NoNumericColumns = st.NoNumericColumns
	sum.Fingerprint = t.Fingerprint()
	if st.NoNumericColumns {
		fmt.Fprintln(out, NoNumericMessage)
	}
	if err := ctx.Err(); err != nil {
		return sum, err
	}

	if err := write(ctx, p, t, log); err != nil {
		return sum, err
	}
	metrics.RecordRow(p.Job, metrics.KindWritten, int64(t.Len()))
	if rejects != nil {
		r := rejects
		rejects = nil
		if err := r.Close(); err != nil {
			return sum, &WriteError{Path: p.Storage.RejectsPath, Err: err}
		}
		log.Info("rejects written", "rejects", p.Storage.RejectsPath, "by_stage", sum.Rejected)
	}

	fmt.Fprintf(out, "Cleaned data saved to %s (%d of %d rows kept).\n", sum.Output, sum.RowsWritten, sum.RowsRead)
	if n := p.Storage.PreviewRows; n > 0 {
		if err := preview.Write(out, t, n, preview.Options{}); err != nil {
			log.Warn("preview failed", "err", err)
		}
	}

	sum.Duration = time.Since(start)
	log.Info("run complete", "summary", sum)
	return sum, nil
}

// prepare loads the input, normalizes its header in place and resolves the
// column roles.
func prepare(ctx context.Context, p config.Pipeline, log *slog.Logger) (*records.Table, schema.Roles, error) {
	t, err := load(ctx, p, log)
	if err != nil {
		return nil, schema.Roles{}, err
	}

	done := metrics.TimeStep(p.Job, metrics.StepNormalize)
	cols, err := schema.NormalizeColumns(t.Columns, p.Clean.OnCollision)
	done(err)
	if err != nil {
		return nil, schema.Roles{}, err
	}
	log.Debug("columns normalized", "from", t.Columns, "to", cols)
	t.Columns = cols

	done = metrics.TimeStep(p.Job, metrics.StepResolve)
	cands, err := p.Clean.Candidates()
	done(err)
	if err != nil {
		return nil, schema.Roles{}, err
	}
	roles := schema.ResolveRoles(t.Columns, cands)
	for _, r := range roles.Missing() {
		log.Info("role not resolved; dependent steps skipped", "role", r)
	}
	log.Debug("roles resolved", "roles", roles.Map())
	return t, roles, nil
}

func load(ctx context.Context, p config.Pipeline, log *slog.Logger) (t *records.Table, err error) {
	path := p.Source.File.Path
	done := metrics.TimeStep(p.Job, metrics.StepLoad)
	defer func() { done(err) }()

	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer rc.Close()

	ps, err := buildParser(p.Parser)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	t, err = ps.Parse(rc)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	log.Info("loaded", "input", path, "rows", t.Len(), "columns", len(t.Columns))
	metrics.RecordRow(p.Job, metrics.KindRead, int64(t.Len()))
	return t, nil
}

func buildParser(p config.Parser) (parser.Parser, error) {
	switch p.Kind {
	case "", "csv":
		return pcsv.NewParser(parserOptions(p.Options)), nil
	default:
		return nil, fmt.Errorf("unsupported parser kind %q", p.Kind)
	}
}

// parserOptions maps the pipeline's parser options onto the CSV loader.
// An absent na_values key keeps the loader defaults.
func parserOptions(o config.Options) pcsv.Options {
	opt := pcsv.Options{
		Comma:      o.Rune("comma", ','),
		LazyQuotes: o.Bool("lazy_quotes", false),
	}
	if _, ok := o["na_values"]; ok {
		opt.NAValues = append([]string{}, o.StringSlice("na_values")...)
	}
	return opt
}

// clean runs the cleaning plan over t. When a reject sidecar is configured
// it is returned open; the caller publishes or aborts it.
func clean(ctx context.Context, p config.Pipeline, t *records.Table, roles schema.Roles, log *slog.Logger) (st transformer.Stats, rejects *scsv.RejectLog, err error) {
	done := metrics.TimeStep(p.Job, metrics.StepClean)
	defer func() { done(err) }()

	fb, err := p.Clean.Fallback()
	if err != nil {
		return st, nil, err
	}
	opt := transformer.PlanOptions{FallbackDate: fb, DateLayouts: p.Clean.DateLayouts}

	if path := p.Storage.RejectsPath; path != "" {
		rejects, err = scsv.NewRejectLog(ctx, file.NewLocal(path), t.Columns, storageOptions(p))
		if err != nil {
			return st, nil, &WriteError{Path: path, Err: err}
		}
		opt.Reject = func(r builtin.RejectedRow) {
			log.Debug("row dropped", "line", r.Line, "stage", r.Stage, "reason", r.Reason)
			rejects.Add(r)
		}
	}

	plan := transformer.Compile(t.Columns, roles, opt)
	log.Debug("plan compiled", "stages", plan.Stages())
	st = plan.Run(t)

	metrics.RecordRow(p.Job, metrics.KindDroppedMissing, int64(st.DroppedMissing))
	metrics.RecordRow(p.Job, metrics.KindDroppedNonPositive, int64(st.DroppedNonPositive))
	metrics.RecordRow(p.Job, metrics.KindDatesDefaulted, int64(st.DatesDefaulted))
	log.Info("cleaned",
		"rows_in", st.RowsIn,
		"rows_out", st.RowsOut,
		"dropped_missing", st.DroppedMissing,
		"dropped_non_positive", st.DroppedNonPositive,
		"dates_defaulted", st.DatesDefaulted,
	)
	return st, rejects, nil
}

func write(ctx context.Context, p config.Pipeline, t *records.Table, log *slog.Logger) (err error) {
	path := p.Storage.File.Path
	done := metrics.TimeStep(p.Job, metrics.StepWrite)
	defer func() { done(err) }()

	n, err := scsv.WriteTo(ctx, file.NewLocal(path), t, storageOptions(p))
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	log.Info("written", "output", path, "rows", n)
	return nil
}

// storageOptions writes with the same delimiter the input was read with.
func storageOptions(p config.Pipeline) scsv.Options {
	return scsv.Options{Comma: p.Parser.Options.Rune("comma", ',')}
}
