package profiling

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// Describe computes count, mean, sample standard deviation, extrema and
// quartiles, with quartiles linearly interpolated between order statistics.
func (da *DistributionAnalyzer) Describe(data []float64) (Description, error) {
	var d Description
	if len(data) == 0 {
		return d, fmt.Errorf("describe: %w", stats.ErrEmptyInput)
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	mean, err := stats.Mean(sorted)
	if err != nil {
		return d, err
	}

	d.Count = len(sorted)
	d.Mean = mean
	d.Min = sorted[0]
	d.Max = sorted[len(sorted)-1]
	d.Q25 = quantile(sorted, 0.25)
	d.Median = quantile(sorted, 0.5)
	d.Q75 = quantile(sorted, 0.75)

	if len(sorted) > 1 {
		d.Std, err = stats.StandardDeviationSample(sorted)
		if err != nil {
			return d, err
		}
	} else {
		d.Std = math.NaN()
	}

	popStd, _ := stats.StandardDeviationPopulation(sorted)
	if popStd > 0 {
		d.Skewness = calculateSkewness(sorted, mean, popStd)
		d.Kurtosis = calculateKurtosis(sorted, mean, popStd)
	}
	d.Outliers = detectOutliers(sorted, d.Q25, d.Q75)

	return d, nil
}

// quantile interpolates linearly between the order statistics of sorted data
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}

// calculateKurtosis computes bias-corrected sample excess kurtosis
func calculateKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 {
		return 0
	}

	n := float64(len(data))
	sumFourthDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumFourthDeviations += deviation * deviation * deviation * deviation
	}

	m4 := sumFourthDeviations / n
	return ((n+1)*m4 - 3*(n-1)) * (n - 1) / ((n - 2) * (n - 3))
}

// detectOutliers counts values outside the 1.5 IQR fences
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}
