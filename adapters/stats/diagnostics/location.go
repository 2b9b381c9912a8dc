package diagnostics

import (
	"fmt"

	"github.com/aclements/go-moremath/stats"
)

// LocationResult is the outcome of a two-sample location test
type LocationResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
}

// StudentTTest runs a two-sided pooled-variance t-test of a against b
func StudentTTest(a, b []float64) (*LocationResult, error) {
	res, err := stats.TwoSampleTTest(stats.Sample{Xs: a}, stats.Sample{Xs: b}, stats.LocationDiffers)
	if err != nil {
		return nil, fmt.Errorf("t-test: %w", translate(err))
	}
	return &LocationResult{Statistic: res.T, PValue: res.P}, nil
}

// WelchTTest runs a two-sided unequal-variance t-test of a against b
func WelchTTest(a, b []float64) (*LocationResult, error) {
	res, err := stats.TwoSampleWelchTTest(stats.Sample{Xs: a}, stats.Sample{Xs: b}, stats.LocationDiffers)
	if err != nil {
		return nil, fmt.Errorf("welch t-test: %w", translate(err))
	}
	return &LocationResult{Statistic: res.T, PValue: res.P}, nil
}

// MannWhitney runs a two-sided Mann-Whitney U test of a against b
func MannWhitney(a, b []float64) (*LocationResult, error) {
	res, err := stats.MannWhitneyUTest(a, b, stats.LocationDiffers)
	if err != nil {
		return nil, fmt.Errorf("mann-whitney: %w", translate(err))
	}
	return &LocationResult{Statistic: res.U, PValue: res.P}, nil
}

func translate(err error) error {
	switch err {
	case stats.ErrZeroVariance, stats.ErrSamplesEqual:
		return ErrZeroVariance
	case stats.ErrSampleSize:
		return ErrSampleSize
	}
	return err
}
