package battery

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"statlab/domain/core"
	"statlab/domain/permutation"
)

// MeanDifference is mean(A) - mean(B) over exactly two samples
func MeanDifference(samples []permutation.Sample) (float64, error) {
	if len(samples) != 2 {
		return 0, fmt.Errorf("mean difference needs exactly 2 samples, got %d", len(samples))
	}
	meanA, err := stats.Mean(stats.Float64Data(samples[0]))
	if err != nil {
		return 0, fmt.Errorf("group A: %w", err)
	}
	meanB, err := stats.Mean(stats.Float64Data(samples[1]))
	if err != nil {
		return 0, fmt.Errorf("group B: %w", err)
	}
	return meanA - meanB, nil
}

// ProportionDifference is 100 * (mean(B) - mean(A)) over two 0/1 indicator
// samples, i.e. the difference in percentage points of the B rate over the A rate.
func ProportionDifference(samples []permutation.Sample) (float64, error) {
	diff, err := MeanDifference(samples)
	if err != nil {
		return 0, err
	}
	return -100 * diff, nil
}

// VarianceOfMeans is the sample variance (ddof = 1) of the per-group means
func VarianceOfMeans(samples []permutation.Sample) (float64, error) {
	if len(samples) < 2 {
		return 0, fmt.Errorf("variance of means needs at least 2 groups, got %d", len(samples))
	}
	means := make(stats.Float64Data, len(samples))
	for i, s := range samples {
		m, err := stats.Mean(stats.Float64Data(s))
		if err != nil {
			return 0, fmt.Errorf("group %d: %w", i, err)
		}
		means[i] = m
	}
	return stats.SampleVariance(means)
}

// StatisticByName resolves the statistic names accepted by the CLI and API
func StatisticByName(name string) (permutation.Statistic, error) {
	switch name {
	case "mean-difference", "":
		return MeanDifference, nil
	case "proportion-difference":
		return ProportionDifference, nil
	case "variance-of-means":
		return VarianceOfMeans, nil
	}
	return nil, core.NewValidationError("statistic", fmt.Sprintf("unknown statistic %q", name))
}
