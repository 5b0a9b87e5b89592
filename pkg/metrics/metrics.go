// Package metrics exposes Prometheus instrumentation for query routing,
// tool invocations, and model calls.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/espalier/pkg/domain"
)

// Collector holds the assistant's Prometheus metrics. Register it against a
// registry and bridge it into the engine via Hooks().
type Collector struct {
	queriesTotal      *prometheus.CounterVec
	toolInvocations   *prometheus.CounterVec
	modelCallsTotal   prometheus.Counter
	modelCallDuration prometheus.Histogram
}

// NewCollector creates the metric set. Metrics are not registered yet; call
// Register or use MustRegister on a registry.
func NewCollector() *Collector {
	return &Collector{
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "espalier_queries_total",
			Help: "Queries processed, labelled by the route the policy chose.",
		}, []string{"route"}),
		toolInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "espalier_tool_invocations_total",
			Help: "Tool invocations, labelled by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		modelCallsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "espalier_model_calls_total",
			Help: "Outbound model calls.",
		}),
		modelCallDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "espalier_model_call_duration_seconds",
			Help:    "Latency of outbound model calls.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// Register adds all collectors to reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, col := range c.collectors() {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister adds all collectors to reg, panicking on conflict.
func (c *Collector) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(c.collectors()...)
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.queriesTotal, c.toolInvocations, c.modelCallsTotal, c.modelCallDuration,
	}
}

// Hooks returns lifecycle hooks that record each event as a metric sample.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRouteDecision: func(_ context.Context, e *domain.RouteEvent) {
			c.queriesTotal.WithLabelValues(string(e.Route)).Inc()
		},
		OnToolReturn: func(_ context.Context, e *domain.ToolEvent) {
			outcome := "ok"
			if e.IsError {
				outcome = "error"
			}
			c.toolInvocations.WithLabelValues(e.Tool, outcome).Inc()
		},
		OnModelCall: func(_ context.Context, e *domain.ModelEvent) {
			c.modelCallsTotal.Inc()
			c.modelCallDuration.Observe(e.Duration.Seconds())
		},
	}
}
