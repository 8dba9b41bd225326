package observability

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for conversions and editor events.
type Metrics struct {
	Operations       *prometheus.CounterVec
	Duration         *prometheus.HistogramVec
	ValidationErrors *prometheus.CounterVec
	Commits          prometheus.Counter
	Loads            *prometheus.CounterVec
	Entities         *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statemap_operations_total",
				Help: "Total number of conversions by operation and result",
			},
			[]string{"operation", "result"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statemap_operation_duration_seconds",
				Help:    "Duration of conversions",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"operation"},
		),
		ValidationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statemap_validation_errors_total",
				Help: "Validation errors reported, by kind",
			},
			[]string{"kind"},
		),
		Commits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statemap_commits_total",
			Help: "Total number of editor commits",
		}),
		Loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statemap_loads_total",
				Help: "Documents loaded into an editor, by result",
			},
			[]string{"result"},
		),
		Entities: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "statemap_document_entities",
				Help: "Entities in the last committed document, by kind",
			},
			[]string{"kind"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Operations, m.Duration, m.ValidationErrors, m.Commits, m.Loads, m.Entities)
	}
	return m
}

func (m *Metrics) observe(op, result string, elapsed time.Duration) {
	m.Operations.WithLabelValues(op, result).Inc()
	m.Duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) observeErrors(errs []error) {
	for _, err := range errs {
		m.ValidationErrors.WithLabelValues(ErrorKind(err)).Inc()
	}
}

// Hooks returns lifecycle hooks feeding the commit and load collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommit: func(_ context.Context, e *domain.CommitEvent) {
			m.Commits.Inc()
			var states, decisions, superStates int
			if e.Document != nil {
				states, decisions, superStates = len(e.Document.States), len(e.Document.Decisions), len(e.Document.SuperStates)
			}
			m.Entities.WithLabelValues(string(domain.KindState)).Set(float64(states))
			m.Entities.WithLabelValues(string(domain.KindDecision)).Set(float64(decisions))
			m.Entities.WithLabelValues(string(domain.KindSuperState)).Set(float64(superStates))
		},
		OnLoad: func(_ context.Context, e *domain.LoadEvent) {
			result := "ok"
			switch e.Type {
			case domain.EventLoadRejected:
				result = "rejected"
			case domain.EventClear:
				result = "clear"
			}
			m.Loads.WithLabelValues(result).Inc()
		},
	}
}

// ErrorKind returns a stable label for a validation error.
func ErrorKind(err error) string {
	var (
		dup      *schema.DuplicateID
		count    *schema.InvalidEntryPointCount
		dangling *schema.DanglingLinkTarget
		decision *schema.InvalidDecisionPort
		state    *schema.InvalidStatePort
		empty    *schema.EmptyField
		attr     *schema.ValidationError
	)
	switch {
	case errors.As(err, &dup):
		return "duplicate_id"
	case errors.As(err, &count):
		return "invalid_entry_point_count"
	case errors.As(err, &dangling):
		return "dangling_link_target"
	case errors.As(err, &decision):
		return "invalid_decision_port"
	case errors.As(err, &state):
		return "invalid_state_port"
	case errors.As(err, &empty):
		return "empty_field"
	case errors.As(err, &attr):
		return "invalid_attribute"
	}
	return "other"
}
