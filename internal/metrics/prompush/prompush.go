// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A batch job finishes before any scraper would see it, so metrics are kept
// in a private registry and pushed to the gateway when the run flushes. The
// pipeline job is the Pushgateway "job" grouping key; extra grouping labels
// (for example the run id) can be added with WithGrouping.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"csvetl/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	grouping   map[string]string
	reg        *prometheus.Registry

	stepCounter   *prometheus.CounterVec   // etl_step_total
	stepDuration  *prometheus.HistogramVec // etl_step_duration_seconds
	recordCounter *prometheus.CounterVec   // etl_records_total
	batchCounter  prometheus.Counter       // etl_batches_total
}

// Option configures a Backend.
type Option func(*Backend)

// WithGrouping adds a Pushgateway grouping label.
func WithGrouping(name, value string) Option {
	return func(b *Backend) { b.grouping[name] = value }
}

// NewBackend constructs a Pushgateway backend. jobName defaults to "csvetl".
func NewBackend(jobName, gatewayURL string, opts ...Option) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "csvetl"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		grouping:   map[string]string{},
		reg:        prometheus.NewRegistry(),
		stepCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "etl_step_total",
				Help: "Pipeline stage executions by stage and status.",
			},
			[]string{"step", "status"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "etl_step_duration_seconds",
				Help:    "Pipeline stage duration in seconds by stage and status.",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"step", "status"},
		),
		recordCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "etl_records_total",
				Help: "Rows per kind (extracted, transformed, dropped, loaded).",
			},
			[]string{"kind"},
		),
		batchCounter: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "etl_batches_total",
				Help: "Bulk insert batches written by the loader.",
			},
		),
	}
	for _, o := range opts {
		o(b)
	}

	for name, c := range map[string]prometheus.Collector{
		"step counter":   b.stepCounter,
		"step duration":  b.stepDuration,
		"record counter": b.recordCounter,
		"batch counter":  b.batchCounter,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

var _ metrics.Backend = (*Backend)(nil)

// IncCounter routes known counters; the job label is carried by the
// Pushgateway grouping key instead of a metric label.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "etl_step_total":
		if b.stepCounter != nil {
			b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
		}
	case "etl_records_total":
		if b.recordCounter != nil {
			b.recordCounter.WithLabelValues(labels["kind"]).Add(delta)
		}
	case "etl_batches_total":
		if b.batchCounter != nil {
			b.batchCounter.Add(delta)
		}
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "etl_step_duration_seconds" || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the registry to the Pushgateway, replacing the metrics of
// the same grouping key.
func (b *Backend) Flush() error {
	p := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg)
	for k, v := range b.grouping {
		p = p.Grouping(k, v)
	}
	if err := p.Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}
