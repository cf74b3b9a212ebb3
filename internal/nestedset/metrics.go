package nestedset

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "qubit",
		Subsystem: "nestedset",
		Name:      "mutation_duration_seconds",
		Help:      "Time spent in one structural tree mutation, lock wait included.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"kind", "op"})

	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qubit",
		Subsystem: "nestedset",
		Name:      "mutations_total",
		Help:      "Structural tree mutations by outcome.",
	}, []string{"kind", "op", "result"})

	forestNodes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "qubit",
		Subsystem: "nestedset",
		Name:      "nodes",
		Help:      "Node count per forest as of the last verification.",
	}, []string{"kind"})

	forestViolations = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "qubit",
		Subsystem: "nestedset",
		Name:      "violations",
		Help:      "Invariant violations per forest as of the last verification.",
	}, []string{"kind"})
)

func observeMutation(kind, op string, elapsed time.Duration, err error) {
	mutationDuration.WithLabelValues(kind, op).Observe(elapsed.Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	mutationsTotal.WithLabelValues(kind, op, result).Inc()
}
