package battery

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"statlab/domain/permutation"
)

// DefaultHistogramBins matches the dashboard's null-distribution plot
const DefaultHistogramBins = 50

// BuildHistogram bins the finite values into equal-width bins spanning
// [min, max]. A constant distribution gets a unit-wide span centred on its
// value. NaN and infinite values are left out of every bin.
func BuildHistogram(values []float64, bins int, observed float64) permutation.Histogram {
	if bins < 1 {
		bins = DefaultHistogramBins
	}

	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return permutation.Histogram{Observed: observed}
	}
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram uses half-open bins; nudge the top edge so max lands in the last bin.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := permutation.Histogram{
		Bins:     make([]permutation.HistogramBin, bins),
		Observed: observed,
	}
	for i := range out.Bins {
		out.Bins[i] = permutation.HistogramBin{
			Lower: dividers[i],
			Upper: dividers[i+1],
			Count: int(counts[i]),
		}
	}
	out.Bins[bins-1].Upper = hi
	return out
}

// SummarizeNull computes the key statistics of a null distribution
func SummarizeNull(nullDistribution []float64) permutation.NullSummary {
	data := stats.Float64Data(nullDistribution)
	if data.Len() == 0 {
		return permutation.NullSummary{}
	}

	var summary permutation.NullSummary
	summary.Mean, _ = data.Mean()
	if data.Len() > 1 {
		summary.StdDev, _ = data.StandardDeviationSample()
	}
	summary.Min, _ = data.Min()
	summary.Max, _ = data.Max()
	summary.Percentile95, _ = data.Percentile(95)
	summary.Percentile99, _ = data.Percentile(99)
	return summary
}
