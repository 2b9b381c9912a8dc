package permutation

import (
	"statlab/domain/core"
)

// MaxTrials bounds a single invocation so it stays interactive
const MaxTrials = 100000

// Sample is an ordered sequence of observations. Binary-categorical
// samples hold 0/1 indicators.
type Sample []float64

// Statistic computes a scalar from one grouping of the pooled data.
// It receives the groups in their original order and must neither modify
// nor retain them.
type Statistic func(samples []Sample) (float64, error)

// ProgressFunc is invoked after each completed trial
type ProgressFunc func(completed, total int)

// Tail selects which null values count as at least as extreme as the observed one
type Tail string

const (
	// TailTwoSided counts |null| >= |observed|
	TailTwoSided Tail = "two-sided"
	// TailGreater counts null >= observed
	TailGreater Tail = "greater"
	// TailLess counts null <= observed
	TailLess Tail = "less"
	// TailGreaterStrict counts null > observed, so ties with the observed value do not count
	TailGreaterStrict Tail = "greater-strict"
	// TailLessStrict counts null < observed
	TailLessStrict Tail = "less-strict"
)

// ParseTail parses a tail name, defaulting to two-sided for empty input
func ParseTail(s string) (Tail, error) {
	switch Tail(s) {
	case "", TailTwoSided:
		return TailTwoSided, nil
	case TailGreater, TailLess, TailGreaterStrict, TailLessStrict:
		return Tail(s), nil
	}
	return "", core.NewValidationError("tail", "must be one of two-sided, greater, less, greater-strict, less-strict")
}

// Request describes one permutation test invocation
type Request struct {
	Name      string // label for the RNG stream and logs
	Samples   []Sample
	Statistic Statistic
	Trials    int
	Seed      int64
	Tail      Tail
	Progress  ProgressFunc
}

// Result is the outcome of a permutation test
type Result struct {
	RunID            core.RunID     `json:"run_id"`
	Name             string         `json:"name"`
	Observed         float64        `json:"observed"`
	NullDistribution []float64      `json:"null_distribution"`
	PValue           float64        `json:"p_value"`
	ExtremeCount     int            `json:"extreme_count"`
	Trials           int            `json:"trials"`
	Tail             Tail           `json:"tail"`
	Seed             int64          `json:"seed"`
	GroupSizes       []int          `json:"group_sizes"`
	Fingerprint      core.Hash      `json:"fingerprint"`
	CompletedAt      core.Timestamp `json:"completed_at"`
}

// Significant reports whether the p-value is below alpha
func (r *Result) Significant(alpha float64) bool {
	return r.PValue < alpha
}

// NullSummary provides key statistics about the null distribution
type NullSummary struct {
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Percentile95 float64 `json:"percentile_95"`
	Percentile99 float64 `json:"percentile_99"`
}

// HistogramBin is one equal-width bin of a histogram, [Lower, Upper)
// except for the last bin, which is closed.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is a binned view of a distribution for display
type Histogram struct {
	Bins     []HistogramBin `json:"bins"`
	Observed float64        `json:"observed"`
}
