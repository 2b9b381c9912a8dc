package battery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// permutationRunsTotal counts engine invocations by test name and result
	permutationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statlab_permutation_runs_total",
		Help: "Total permutation test runs by test name and result",
	}, []string{"name", "result"})

	// permutationTrialsTotal counts completed trials
	permutationTrialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statlab_permutation_trials_total",
		Help: "Total completed permutation trials by test name",
	}, []string{"name"})

	// permutationDuration tracks wall time of a full run
	permutationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "statlab_permutation_duration_seconds",
		Help:    "Permutation test duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
	}, []string{"name"})
)
