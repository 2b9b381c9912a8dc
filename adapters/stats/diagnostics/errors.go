package diagnostics

import "errors"

var (
	// ErrZeroVariance is returned when a test statistic is undefined because the data do not vary
	ErrZeroVariance = errors.New("zero variance in input data")
	// ErrSampleSize is returned when a sample is outside a test's supported size range
	ErrSampleSize = errors.New("sample size not supported")
)
