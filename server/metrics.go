package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"heatopt/model"
)

// Metrics observes sweeps run through the server. It implements
// sweep.Listener for the per-trial series.
type Metrics struct {
	solver string

	trials   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	sweeps   *prometheus.CounterVec
	best     *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		trials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heatopt_trials_total",
				Help: "Trials solved, by backend",
			},
			[]string{"solver"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "heatopt_solve_duration_seconds",
				Help:    "Wall time of one trial solve",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"solver"},
		),
		sweeps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heatopt_sweeps_total",
				Help: "Sweeps finished, by backend and outcome",
			},
			[]string{"solver", "status"},
		),
		best: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "heatopt_best_mean_temperature",
				Help: "Highest mean bottom temperature of the last finished sweep",
			},
			[]string{"solver"},
		),
	}
	reg.MustRegister(m.trials, m.duration, m.sweeps, m.best)
	return m
}

// For returns a listener bound to one backend label.
func (m *Metrics) For(solver string) *Metrics {
	c := *m
	c.solver = solver
	return &c
}

func (m *Metrics) TrialStarted(int, float64) {}

func (m *Metrics) TrialFinished(r model.TrialResult) {
	m.trials.WithLabelValues(m.solver).Inc()
	m.duration.WithLabelValues(m.solver).Observe(r.Duration.Seconds())
}

// SweepFinished records the outcome; res is nil on failure.
func (m *Metrics) SweepFinished(res *model.SweepResult, err error) {
	if err != nil {
		m.sweeps.WithLabelValues(m.solver, "failed").Inc()
		return
	}
	m.sweeps.WithLabelValues(m.solver, "ok").Inc()
	if best, ok := res.Best(); ok {
		m.best.WithLabelValues(m.solver).Set(best.MeanTemperature)
	}
}
