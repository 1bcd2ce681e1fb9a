package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cstaulbee/quickscope/pkg/session"
)

// Metrics holds the prometheus collectors for one server instance.
type Metrics struct {
	TurnsTotal     *prometheus.CounterVec
	TurnDuration   *prometheus.HistogramVec
	StageEntries   *prometheus.CounterVec
	ActionDuration *prometheus.HistogramVec
	ActionErrors   *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on the given
// registerer. Pass prometheus.DefaultRegisterer for the global set.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TurnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quickscope_turns_total",
				Help: "Total number of processed turns",
			},
			[]string{"status"},
		),
		TurnDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "quickscope_turn_duration_seconds",
				Help: "Duration of turn processing",
			},
			[]string{"status"},
		),
		StageEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quickscope_stage_entries_total",
				Help: "Total number of stage entries",
			},
			[]string{"stage_id", "kind"},
		),
		ActionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "quickscope_action_duration_seconds",
				Help: "Duration of action invocations",
			},
			[]string{"action"},
		),
		ActionErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quickscope_action_errors_total",
				Help: "Total number of failed action invocations",
			},
			[]string{"action"},
		),
	}
	reg.MustRegister(m.TurnsTotal, m.TurnDuration, m.StageEntries, m.ActionDuration, m.ActionErrors)
	return m
}

// Hooks builds lifecycle hooks that feed the collectors. Wire the
// result into the engine with quickscope.WithLifecycleHooks.
func (m *Metrics) Hooks() session.LifecycleHooks {
	var mu sync.Mutex
	starts := make(map[string]time.Time)
	return session.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *session.StageEvent) {
			m.StageEntries.WithLabelValues(e.StageID, e.StageKind).Inc()
		},
		OnActionInvoke: func(ctx context.Context, e *session.ActionEvent) {
			mu.Lock()
			starts[e.SessionID+"/"+e.Action] = e.Timestamp
			mu.Unlock()
		},
		OnActionReturn: func(ctx context.Context, e *session.ActionEvent) {
			key := e.SessionID + "/" + e.Action
			mu.Lock()
			started, ok := starts[key]
			delete(starts, key)
			mu.Unlock()
			if ok {
				m.ActionDuration.WithLabelValues(e.Action).Observe(e.Timestamp.Sub(started).Seconds())
			}
			if e.IsError {
				m.ActionErrors.WithLabelValues(e.Action).Inc()
			}
		},
	}
}

func (m *Metrics) observeTurn(status string, started time.Time) {
	m.TurnsTotal.WithLabelValues(status).Inc()
	m.TurnDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
}
