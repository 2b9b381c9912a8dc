package temporal

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultLags is the number of monthly lags shown on the retail page
const DefaultLags = 12

// Correlogram holds autocorrelation values for lags 0..len(Values)-1.
// Band is the half-width of the approximate 95% interval around zero.
type Correlogram struct {
	Values []float64 `json:"values"`
	Band   float64   `json:"band"`
	N      int       `json:"n"`
}

// ACF returns the biased sample autocorrelation of x for lags 0..nlags
func ACF(x []float64, nlags int) (*Correlogram, error) {
	n := len(x)
	if n < 2 {
		return nil, fmt.Errorf("acf: need at least 2 observations, got %d", n)
	}
	if nlags < 0 || nlags >= n {
		return nil, fmt.Errorf("acf: nlags %d out of range for %d observations", nlags, n)
	}

	acov, err := autocovariance(x, nlags, false)
	if err != nil {
		return nil, fmt.Errorf("acf: %w", err)
	}
	floats.Scale(1/acov[0], acov)

	return &Correlogram{Values: acov, Band: band(n), N: n}, nil
}

// PACF returns the partial autocorrelation of x for lags 0..nlags using
// Yule-Walker equations on the (n-k)-adjusted autocovariance, solved
// recursively with Durbin-Levinson. nlags must be below n/2.
func PACF(x []float64, nlags int) (*Correlogram, error) {
	n := len(x)
	if nlags < 0 || nlags >= n/2 {
		return nil, fmt.Errorf("pacf: nlags %d must be below half of %d observations", nlags, n)
	}

	acov, err := autocovariance(x, nlags, true)
	if err != nil {
		return nil, fmt.Errorf("pacf: %w", err)
	}
	rho := make([]float64, len(acov))
	for k := range acov {
		rho[k] = acov[k] / acov[0]
	}

	pacf := make([]float64, nlags+1)
	pacf[0] = 1
	phi := make([]float64, nlags+1)
	prev := make([]float64, nlags+1)
	for k := 1; k <= nlags; k++ {
		num, den := rho[k], 1.0
		for j := 1; j < k; j++ {
			num -= prev[j] * rho[k-j]
			den -= prev[j] * rho[j]
		}
		if den == 0 {
			return nil, fmt.Errorf("pacf: singular Yule-Walker system at lag %d", k)
		}
		phi[k] = num / den
		for j := 1; j < k; j++ {
			phi[j] = prev[j] - phi[k]*prev[k-j]
		}
		pacf[k] = phi[k]
		copy(prev, phi)
	}

	return &Correlogram{Values: pacf, Band: band(n), N: n}, nil
}

// autocovariance of the demeaned series for lags 0..nlags. With adjusted set
// each lag is divided by n-k instead of n.
func autocovariance(x []float64, nlags int, adjusted bool) ([]float64, error) {
	n := len(x)
	mean := stat.Mean(x, nil)
	dev := make([]float64, n)
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite value at position %d", i)
		}
		dev[i] = v - mean
	}

	acov := make([]float64, nlags+1)
	for k := range acov {
		acov[k] = floats.Dot(dev[:n-k], dev[k:])
		if adjusted {
			acov[k] /= float64(n - k)
		} else {
			acov[k] /= float64(n)
		}
	}
	if acov[0] == 0 {
		return nil, fmt.Errorf("series is constant")
	}
	return acov, nil
}

func band(n int) float64 {
	return distuv.UnitNormal.Quantile(0.975) / math.Sqrt(float64(n))
}
