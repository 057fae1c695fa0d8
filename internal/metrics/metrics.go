// Package metrics exposes Prometheus instrumentation for the sign-in screen.
package metrics

import (
	"github.com/nfrund/signin/internal/signin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "signin"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the sign-in collectors. It implements signin.Observer.
type Metrics struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
	screens  prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Settled sign-in and password-recovery calls by outcome.",
		}, []string{"action", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_duration_seconds",
			Help:      "Latency of authentication service calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"action"}),
		screens: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "screens_mounted",
			Help:      "Sign-in screens currently held in memory.",
		}),
	}

	for _, c := range []prometheus.Collector{m.attempts, m.duration, m.screens} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Settled records a settled call.
func (m *Metrics) Settled(o signin.Outcome) {
	outcome := OutcomeSuccess
	if o.Err != nil {
		outcome = OutcomeFailure
	}
	m.attempts.WithLabelValues(string(o.Action), outcome).Inc()
	m.duration.WithLabelValues(string(o.Action)).Observe(o.Elapsed.Seconds())
}

// ScreenMounted increments the mounted screen gauge.
func (m *Metrics) ScreenMounted() { m.screens.Inc() }

// ScreenUnmounted decrements the mounted screen gauge.
func (m *Metrics) ScreenUnmounted() { m.screens.Dec() }
