// Package metrics records operational metrics of a pipeline run behind a
// small backend interface.
//
// The default backend is a no-op, so instrumented code never has to check
// whether metrics are enabled. Concrete systems live in subpackages
// (prompush for a Prometheus Pushgateway, datadog for DogStatsD) and are
// installed once by the CLI with SetBackend.
//
// Metric names:
//
//	etl_step_total             counter   job, step, status
//	etl_step_duration_seconds  histogram job, step, status
//	etl_records_total          counter   job, kind
//	etl_batches_total          counter   job
package metrics

import (
	"io"
	"time"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend needs it.
	Flush() error
}

// Record kinds reported through RecordRow.
const (
	KindExtracted   = "extracted"
	KindTransformed = "transformed"
	KindDropped     = "dropped"
	KindLoaded      = "loaded"
)

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs b and returns the previous backend. Passing nil keeps
// the existing backend.
func SetBackend(b Backend) Backend {
	prev := backend
	if b != nil {
		backend = b
	}
	return prev
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// Close flushes the current backend and releases it when it holds resources
// (a network client), then reinstalls the no-op backend.
func Close() error {
	b := backend
	backend = nopBackend{}
	err := b.Flush()
	if c, ok := b.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// RecordStep records the outcome and latency of one pipeline stage.
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

	backend.IncCounter("etl_step_total", 1, lbls)
	backend.ObserveHistogram("etl_step_duration_seconds", d.Seconds(), lbls)
}

// StartStep returns a function that records the step with the elapsed time
// when called with the step's error:
//
//	done := metrics.StartStep(job, "extract")
//	tbl, err := extract(ctx)
//	done(err)
func StartStep(job, step string) func(error) {
	start := time.Now()
	return func(err error) { RecordStep(job, step, err, time.Since(start)) }
}

// RecordRow increments the record counter for a kind. Non-positive deltas
// are ignored.
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("etl_records_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches increments the batch counter for a job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("etl_batches_total", float64(delta), Labels{
		"job": job,
	})
}
