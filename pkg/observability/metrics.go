// Package observability exports gate activity as Prometheus metrics via
// the lifecycle hooks.
package observability

import (
	"context"

	"github.com/aretw0/palisade/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the gate's Prometheus collectors. Wire it into a Gate with
// palisade.WithHooks(metrics.Hooks()).
type Metrics struct {
	decisions       *prometheus.CounterVec
	performDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg
// (prometheus.DefaultRegisterer when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "palisade_decisions_total",
				Help: "Gate decisions ahead of dispatch, by outcome and failing stage.",
			},
			[]string{"stack", "action", "outcome", "stage"},
		),
		performDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "palisade_perform_duration_seconds",
				Help:    "Duration of dispatched action logic.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stack", "action", "status"},
		),
	}
	reg.MustRegister(m.decisions, m.performDuration)
	return m
}

// Hooks returns the gate hooks feeding these collectors.
func (m *Metrics) Hooks() domain.GateHooks {
	return domain.GateHooks{
		OnDecision: m.onDecision,
		OnPerform:  m.onPerform,
	}
}

func (m *Metrics) onDecision(_ context.Context, e *domain.DecisionEvent) {
	outcome, stage := "allowed", "none"
	if !e.Allowed {
		outcome, stage = "denied", string(e.Stage)
	}
	m.decisions.WithLabelValues(e.Stack, e.Action, outcome, stage).Inc()
}

func (m *Metrics) onPerform(_ context.Context, e *domain.PerformEvent) {
	status := "success"
	switch {
	case e.Err != nil:
		status = "error"
	case !e.Successful:
		status = "failure"
	}
	m.performDuration.WithLabelValues(e.Stack, e.Action, status).Observe(e.Duration.Seconds())
}
