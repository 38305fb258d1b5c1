// Package metrics exposes chain runs as prometheus metrics.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/cartchain/internal/chain"
)

const namespace = "cartchain"

// Collector is a chain.Observer that counts runs and steps. It owns its
// registry so several collectors never clash in tests.
type Collector struct {
	Registry *prometheus.Registry

	runs         *prometheus.CounterVec
	steps        *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
}

// New creates a collector registered on a fresh registry, together with the
// Go runtime and process collectors.
func New() *Collector {
	c := &Collector{
		Registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Chain runs by final outcome.",
		}, []string{"chain", "outcome"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Executed steps by status.",
		}, []string{"chain", "step", "status"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Time spent in step actions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"chain", "step"}),
	}
	c.Registry.MustRegister(
		c.runs,
		c.steps,
		c.stepDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Observe implements chain.Observer.
func (c *Collector) Observe(_ context.Context, ev chain.Event) {
	switch ev.Kind {
	case chain.EventStepContinued:
		c.observeStep(ev, "continued")
	case chain.EventStepStopped:
		c.observeStep(ev, "stopped")
	case chain.EventStepFailed:
		c.observeStep(ev, "failed")
	case chain.EventChainCommitted, chain.EventChainStopped, chain.EventChainFailed:
		c.runs.WithLabelValues(ev.Chain, ev.Kind.String()).Inc()
	}
}

func (c *Collector) observeStep(ev chain.Event, status string) {
	c.steps.WithLabelValues(ev.Chain, ev.Step, status).Inc()
	c.stepDuration.WithLabelValues(ev.Chain, ev.Step).Observe(ev.Duration.Seconds())
}

// Handler serves the collector's registry in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{Registry: c.Registry})
}
