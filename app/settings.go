package app

import (
	"statlab/adapters/battery"
	"statlab/adapters/stats/diagnostics"
	"statlab/domain/core"
	"statlab/domain/permutation"
)

// Settings carries the defaults shared by the permutation pages
type Settings struct {
	Seed          int64
	Trials        int
	AnovaTrials   int
	Alpha         float64
	HistogramBins int
	// RandomSeed supplies a seed when a request asks for seed 0
	RandomSeed func() int64
}

// DefaultSettings mirrors the dashboard defaults
func DefaultSettings() Settings {
	return Settings{
		Seed:          42,
		Trials:        1000,
		AnovaTrials:   3000,
		Alpha:         diagnostics.DefaultAlpha,
		HistogramBins: battery.DefaultHistogramBins,
	}
}

// resolveSeed picks the request seed, falling back to the configured one.
// Zero means a fresh seed; the chosen value is reported in the result.
func (s Settings) resolveSeed(requested *int64) int64 {
	seed := s.Seed
	if requested != nil {
		seed = *requested
	}
	if seed == 0 && s.RandomSeed != nil {
		seed = s.RandomSeed()
	}
	return seed
}

func (s Settings) trials(requested, fallback int) (int, error) {
	if requested == 0 {
		requested = fallback
	}
	if requested < 1 || requested > permutation.MaxTrials {
		return 0, core.NewValidationError("trials", "must be between 1 and 100000")
	}
	return requested, nil
}

func (s Settings) bins(requested int) int {
	if requested > 0 {
		return requested
	}
	if s.HistogramBins > 0 {
		return s.HistogramBins
	}
	return battery.DefaultHistogramBins
}

func (s Settings) alpha(requested float64) float64 {
	if requested > 0 && requested < 1 {
		return requested
	}
	return s.Alpha
}

// NullView is the display form of a null distribution
type NullView struct {
	Summary   permutation.NullSummary `json:"summary"`
	Histogram permutation.Histogram   `json:"histogram"`
}

func newNullView(result *permutation.Result, bins int, keepNull bool) NullView {
	view := NullView{
		Summary:   battery.SummarizeNull(result.NullDistribution),
		Histogram: battery.BuildHistogram(result.NullDistribution, bins, result.Observed),
	}
	if !keepNull {
		result.NullDistribution = nil
	}
	return view
}
