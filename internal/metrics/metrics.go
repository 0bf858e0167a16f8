// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from merge runs.
//
// The package exposes a narrow Backend interface (counters and duration-style
// observations) behind a global, pluggable backend defaulting to a no-op, so
// instrumentation is always safe to call even when no real backend is
// configured. Concrete metric systems (Prometheus Pushgateway, Datadog) live
// in subpackages, keeping the core pipeline decoupled from any of them.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
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

// RecordPhase measures one pipeline phase (sniff, normalize, resolve, write)
// with its duration and outcome.
func RecordPhase(job, phase string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"phase":  phase,
		"status": status,
	}
	backend.IncCounter("concat_phase_total", 1, lbls)
	backend.ObserveHistogram("concat_phase_duration_seconds", d.Seconds(), lbls)
}

// RecordFiles increments a file-level counter for the given job and kind.
//
// Typical kinds mirror the run summary fields:
//   - "merged"
//   - "skipped"
//   - "normalized"
func RecordFiles(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("concat_files_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordRows increments a row-level counter for the given job and kind
// ("written", "deduped", "filled").
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("concat_rows_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
