package diagnostics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	shapiroMinN = 3
	shapiroMaxN = 5000
)

// Royston (1992, 1995) polynomial coefficients
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.07119, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// ShapiroResult holds the Shapiro-Wilk W statistic and its p-value
type ShapiroResult struct {
	W      float64 `json:"w"`
	PValue float64 `json:"p_value"`
	N      int     `json:"n"`
}

// ShapiroWilk tests the null hypothesis that x was drawn from a normal
// distribution, using Royston's approximation for the coefficients and the
// p-value. Supports 3 <= n <= 5000.
func ShapiroWilk(x []float64) (*ShapiroResult, error) {
	n := len(x)
	if n < shapiroMinN || n > shapiroMaxN {
		return nil, fmt.Errorf("shapiro-wilk: %w: n=%d not in [%d, %d]", ErrSampleSize, n, shapiroMinN, shapiroMaxN)
	}

	sorted := make([]float64, n)
	copy(sorted, x)
	sort.Float64s(sorted)

	if sorted[n-1]-sorted[0] == 0 {
		return nil, fmt.Errorf("shapiro-wilk: %w", ErrZeroVariance)
	}

	a := shapiroCoefficients(n)

	numerator := 0.0
	for i, ai := range a {
		numerator += ai * (sorted[n-1-i] - sorted[i])
	}
	_, variance := stat.MeanVariance(sorted, nil)
	ssq := variance * float64(n-1)

	w := numerator * numerator / ssq
	if w > 1 {
		w = 1
	}

	return &ShapiroResult{W: w, PValue: shapiroPValue(w, n), N: n}, nil
}

// shapiroCoefficients returns the upper half of the antisymmetric weights a_i
func shapiroCoefficients(n int) []float64 {
	half := n / 2
	a := make([]float64, half)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}

	an := float64(n)
	m := make([]float64, half)
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (an + 0.25))
	}
	summ2 := 2 * floats.Dot(m, m)
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(an)

	a1 := poly(swC1, rsn) - m[0]/ssumm2
	a[0] = a1

	first := 1
	var fac float64
	if n > 5 {
		a2 := -m[1]/ssumm2 + poly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
		first = 2
	} else {
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	for i := first; i < half; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

func shapiroPValue(w float64, n int) float64 {
	if n == 3 {
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Pi/3)
		return math.Max(p, 0)
	}

	an := float64(n)
	w1 := math.Log(1 - w)
	var mean, sd float64
	if n <= 11 {
		gamma := poly(swG, an)
		if w1 >= gamma {
			return 0
		}
		w1 = -math.Log(gamma - w1)
		mean = poly(swC3, an)
		sd = math.Exp(poly(swC4, an))
	} else {
		ln := math.Log(an)
		mean = poly(swC5, ln)
		sd = math.Exp(poly(swC6, ln))
	}
	return distuv.UnitNormal.Survival((w1 - mean) / sd)
}

// poly evaluates c[0] + c[1]*x + c[2]*x^2 + ...
func poly(c []float64, x float64) float64 {
	result := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		result = result*x + c[i]
	}
	return result
}
