// Package prompush pushes inference metrics to a Prometheus Pushgateway.
//
// The run is a short-lived CLI process, so metrics are gathered in a private
// registry and pushed on Flush instead of being scraped. The Pushgateway
// "job" grouping key is the configured job name; the dataset is a label.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/xaviermathew/Aragog/internal/metrics"
)

// Backend is a Pushgateway implementation of metrics.Backend.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	stepCounter       *prometheus.CounterVec
	stepDuration      *prometheus.SummaryVec
	recordCounter     *prometheus.CounterVec
	partitionCounter  *prometheus.CounterVec
	overflowedCounter *prometheus.CounterVec
}

// NewBackend registers the collectors. jobName defaults to "aragog".
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "aragog"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		stepCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Inference step executions by dataset, step and status.",
		}, []string{"dataset", "step", "status"}),
		stepDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       metrics.StepDuration,
			Help:       "Inference step duration in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"dataset", "step", "status"}),
		recordCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RecordsTotal,
			Help: "Records observed by the schema builder.",
		}, []string{"dataset"}),
		partitionCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.PartitionsTotal,
			Help: "Partitions processed, by source (built or cached).",
		}, []string{"dataset", "source"}),
		overflowedCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.OverflowedTotal,
			Help: "Fields whose categorical tally overflowed.",
		}, []string{"dataset"}),
	}

	for name, c := range map[string]prometheus.Collector{
		"step counter":       b.stepCounter,
		"step summary":       b.stepDuration,
		"record counter":     b.recordCounter,
		"partition counter":  b.partitionCounter,
		"overflowed counter": b.overflowedCounter,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		b.stepCounter.WithLabelValues(labels["dataset"], labels["step"], labels["status"]).Add(delta)
	case metrics.RecordsTotal:
		b.recordCounter.WithLabelValues(labels["dataset"]).Add(delta)
	case metrics.PartitionsTotal:
		b.partitionCounter.WithLabelValues(labels["dataset"], labels["source"]).Add(delta)
	case metrics.OverflowedTotal:
		b.overflowedCounter.WithLabelValues(labels["dataset"]).Add(delta)
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration {
		return
	}
	b.stepDuration.WithLabelValues(labels["dataset"], labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the registry, replacing the job's previous group.
func (b *Backend) Flush() error {
	if err := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}
