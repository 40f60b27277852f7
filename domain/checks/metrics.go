package checks

import (
	"github.com/akeren/telecheck/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	numbersChecked *prometheus.CounterVec
	runDuration    prometheus.Histogram
}

// NewMetrics registers the bulk-check collectors. A nil registerer yields
// working but unexported collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		numbersChecked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telecheck_numbers_checked_total",
				Help: "Phone numbers checked, by result status.",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "telecheck_bulk_run_duration_seconds",
				Help:    "Wall time of a bulk check run.",
				Buckets: []float64{0.01, 0.1, 1, 5, 15, 60, 300, 900},
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.numbersChecked, m.runDuration)
	}
	return m
}

func (m *Metrics) observeResult(result models.CheckResult) {
	if m == nil {
		return
	}
	m.numbersChecked.WithLabelValues(string(result.Status)).Inc()
}

func (m *Metrics) observeRun(seconds float64) {
	if m == nil {
		return
	}
	m.runDuration.Observe(seconds)
}
