package whereused

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records strategy attempts and resolution results.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	attempts    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	resolutions *prometheus.CounterVec
}

const (
	resolutionHit      = "hit"
	resolutionGuidance = "guidance"
	resolutionError    = "error"
)

// NewMetrics registers the where-used collectors with reg. Registering twice
// against the same registry reuses the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "abap_whereused_strategy_attempts_total",
		Help: "Where-used strategy attempts by strategy and outcome status.",
	}, []string{"strategy", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "abap_whereused_strategy_duration_seconds",
		Help:    "Duration of where-used strategy requests.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
	}, []string{"strategy"})
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "abap_whereused_resolutions_total",
		Help: "Where-used resolutions by result (hit, guidance, error).",
	}, []string{"outcome"})

	var err error
	if attempts, err = register(reg, attempts); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if resolutions, err = register(reg, resolutions); err != nil {
		return nil, err
	}

	return &Metrics{attempts: attempts, duration: duration, resolutions: resolutions}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observeAttempt(o Outcome) {
	if m == nil {
		return
	}
	label := o.Strategy.RemoteObjectType
	m.attempts.WithLabelValues(label, strings.ToLower(string(o.Status))).Inc()
	m.duration.WithLabelValues(label).Observe(o.Duration.Seconds())
}

func (m *Metrics) observeResolution(outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}
