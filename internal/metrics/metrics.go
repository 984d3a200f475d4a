// Package metrics records operational metrics of inference runs behind a
// pluggable Backend.
//
// The default backend is a no-op, so instrumentation is always safe to call.
// Concrete systems live in subpackages (prompush, datadog) and are installed
// once at startup with SetBackend.
package metrics

import (
	"sync"
	"time"
)

// Metric names.
const (
	StepTotal       = "aragog_step_total"
	StepDuration    = "aragog_step_duration_seconds"
	RecordsTotal    = "aragog_records_total"
	PartitionsTotal = "aragog_partitions_total"
	OverflowedTotal = "aragog_fields_overflowed_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration-style observation.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b. nil restores the no-op backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		b = nopBackend{}
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error { return current().Flush() }

// RecordStep counts one execution of a run step and its latency. Steps are
// "read", "build", "merge", "finalize" and "save".
func RecordStep(dataset, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"dataset": dataset, "step": step, "status": status}
	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRecords counts records fed into the builder.
func RecordRecords(dataset string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RecordsTotal, float64(delta), Labels{"dataset": dataset})
}

// RecordPartitions counts partitions by source: "built" or "cached".
func RecordPartitions(dataset, source string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(PartitionsTotal, float64(delta), Labels{"dataset": dataset, "source": source})
}

// RecordOverflowed counts fields whose categorical tally overflowed.
func RecordOverflowed(dataset string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(OverflowedTotal, float64(delta), Labels{"dataset": dataset})
}
