package diagnostics

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// LeveneResult holds the Brown-Forsythe variant of Levene's test
type LeveneResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	DF1       int     `json:"df1"`
	DF2       int     `json:"df2"`
}

// Levene tests equality of variances across groups using absolute deviations
// from each group's median.
func Levene(groups ...[]float64) (*LeveneResult, error) {
	k := len(groups)
	if k < 2 {
		return nil, fmt.Errorf("levene: need at least 2 groups, got %d", k)
	}

	deviations := make([][]float64, k)
	groupMeans := make([]float64, k)
	n := 0
	for i, g := range groups {
		if len(g) == 0 {
			return nil, fmt.Errorf("levene: group %d is empty", i)
		}
		median, err := stats.Median(g)
		if err != nil {
			return nil, fmt.Errorf("levene: group %d: %w", i, err)
		}
		z := make([]float64, len(g))
		for j, v := range g {
			z[j] = math.Abs(v - median)
		}
		deviations[i] = z
		groupMeans[i] = stat.Mean(z, nil)
		n += len(g)
	}
	if n <= k {
		return nil, fmt.Errorf("levene: %d observations are not enough for %d groups", n, k)
	}

	grandMean := 0.0
	for i, z := range deviations {
		grandMean += groupMeans[i] * float64(len(z))
	}
	grandMean /= float64(n)

	between, within := 0.0, 0.0
	for i, z := range deviations {
		d := groupMeans[i] - grandMean
		between += float64(len(z)) * d * d
		for _, v := range z {
			e := v - groupMeans[i]
			within += e * e
		}
	}
	if within == 0 {
		return nil, ErrZeroVariance
	}

	df1, df2 := k-1, n-k
	w := float64(df2) / float64(df1) * between / within
	fDist := distuv.F{D1: float64(df1), D2: float64(df2)}

	return &LeveneResult{
		Statistic: w,
		PValue:    1 - fDist.CDF(w),
		DF1:       df1,
		DF2:       df2,
	}, nil
}
