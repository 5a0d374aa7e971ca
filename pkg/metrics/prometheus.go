package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the solver's Prometheus instrument set. It is built against a
// caller-supplied registry; nothing here registers against the package
// default registry or serves an HTTP endpoint — both are the caller's I/O
// concern (cmd/assign-demo serves its own registry).
type Metrics struct {
	IterationsTotal  *prometheus.CounterVec
	IterationSeconds *prometheus.HistogramVec
	RelativeGap      *prometheus.GaugeVec
	StepSize         *prometheus.GaugeVec
	RunsTotal        *prometheus.CounterVec
	NumericWarnings  *prometheus.CounterVec
}

// New registers a fresh instrument set into reg under namespace/subsystem.
func New(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		IterationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "iterations_total",
				Help:      "Total number of assignment iterations executed",
			},
			[]string{"algorithm"},
		),

		IterationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "iteration_duration_seconds",
				Help:      "Duration of a single assignment iteration",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"algorithm"},
		),

		RelativeGap: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "relative_gap",
				Help:      "Relative gap (rho) at the last completed iteration",
			},
			[]string{"algorithm"},
		),

		StepSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "step_size",
				Help:      "Step size (alpha) applied at the last completed iteration",
			},
			[]string{"algorithm"},
		),

		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "runs_total",
				Help:      "Total number of solver runs, by termination outcome",
			},
			[]string{"algorithm", "outcome"},
		),

		NumericWarnings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "numeric_warnings_total",
				Help:      "Total number of recorded numeric warnings (e.g. line search fallback)",
			},
			[]string{"algorithm", "kind"},
		),
	}
}

// ObserveIteration records the per-iteration instruments after a completed step.
func (m *Metrics) ObserveIteration(algorithm string, rgap, alpha, elapsedSeconds float64) {
	m.IterationsTotal.WithLabelValues(algorithm).Inc()
	m.IterationSeconds.WithLabelValues(algorithm).Observe(elapsedSeconds)
	m.RelativeGap.WithLabelValues(algorithm).Set(rgap)
	m.StepSize.WithLabelValues(algorithm).Set(alpha)
}

// ObserveRun records the terminal outcome of a solver run; the solver
// reports "converged" or "non_convergence".
func (m *Metrics) ObserveRun(algorithm, outcome string) {
	m.RunsTotal.WithLabelValues(algorithm, outcome).Inc()
}

// ObserveWarning records a numeric warning raised during iteration.
func (m *Metrics) ObserveWarning(algorithm, kind string) {
	m.NumericWarnings.WithLabelValues(algorithm, kind).Inc()
}
