package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tourism"

// Gate outcomes reported by the request gate.
const (
	OutcomeAnonymous     = "anonymous"
	OutcomeAuthenticated = "authenticated"
	OutcomeExpired       = "expired"
	OutcomeInvalidFormat = "invalid_format"
	OutcomeInvalid       = "invalid"
	OutcomeBlacklisted   = "blacklisted"
	OutcomeError         = "error"
)

// Register registers collector with reg, returning the already registered
// collector of the same type when one exists.
func Register[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return collector, fmt.Errorf("register collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		return existing, nil
	}

	return collector, nil
}

// AuthMetrics counts request gate decisions and blacklist sweeps.
type AuthMetrics struct {
	GateDecisions *prometheus.CounterVec
	SweptTokens   prometheus.Counter
	SweepFailures prometheus.Counter
	SweepDuration prometheus.Histogram
}

// NewAuthMetrics builds and registers the auth pipeline collectors.
func NewAuthMetrics(reg prometheus.Registerer) (*AuthMetrics, error) {
	decisions, err := Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "gate_decisions_total",
		Help:      "Request gate decisions partitioned by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	swept, err := Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "blacklist",
		Name:      "swept_tokens_total",
		Help:      "Expired blacklist entries removed by the sweeper.",
	}))
	if err != nil {
		return nil, err
	}

	failures, err := Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "blacklist",
		Name:      "sweep_failures_total",
		Help:      "Blacklist sweeps that ended in an error.",
	}))
	if err != nil {
		return nil, err
	}

	duration, err := Register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "blacklist",
		Name:      "sweep_duration_seconds",
		Help:      "Duration of blacklist sweeps.",
		Buckets:   prometheus.DefBuckets,
	}))
	if err != nil {
		return nil, err
	}

	return &AuthMetrics{
		GateDecisions: decisions,
		SweptTokens:   swept,
		SweepFailures: failures,
		SweepDuration: duration,
	}, nil
}

// ObserveGate counts one gate decision. Safe on a nil receiver.
func (m *AuthMetrics) ObserveGate(outcome string) {
	if m == nil || m.GateDecisions == nil {
		return
	}
	m.GateDecisions.WithLabelValues(outcome).Inc()
}

// ObserveSweep records the result of one sweep. Safe on a nil receiver.
func (m *AuthMetrics) ObserveSweep(removed int64, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.SweepDuration.Observe(duration.Seconds())
	if err != nil {
		m.SweepFailures.Inc()
		return
	}
	m.SweptTokens.Add(float64(removed))
}
