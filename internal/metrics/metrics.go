// Package metrics records operational metrics for salesclean runs behind a
// small backend-agnostic interface.
//
// A global backend defaults to a no-op, so instrumentation is always safe to
// call. Concrete systems live in subpackages (prompush, datadog) and are
// installed once at startup with SetBackend.
package metrics

import "time"

// Metric names emitted by the helpers below.
const (
	StepTotal           = "salesclean_step_total"
	StepDurationSeconds = "salesclean_step_duration_seconds"
	RecordsTotal        = "salesclean_records_total"
)

// Pipeline steps, used as the "step" label.
const (
	StepLoad      = "load"
	StepNormalize = "normalize"
	StepResolve   = "resolve"
	StepClean     = "clean"
	StepWrite     = "write"
)

// Record kinds, used as the "kind" label.
const (
	KindRead               = "read"
	KindDroppedMissing     = "dropped_missing"
	KindDroppedNonPositive = "dropped_non_positive"
	KindDatesDefaulted     = "dates_defaulted"
	KindWritten            = "written"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one execution of step and observes its duration, labeled
// success or failure depending on err.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// TimeStep returns a func that records step with the time elapsed since
// TimeStep was called.
//
//	done := metrics.TimeStep(job, metrics.StepLoad)
//	tbl, err := load()
//	done(err)
func TimeStep(job, step string) func(error) {
	start := time.Now()
	return func(err error) {
		RecordStep(job, step, err, time.Since(start))
	}
}

// RecordRow increments the record counter for job and kind. Non-positive
// deltas are ignored.
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
