package app

import (
	"context"
	"fmt"

	"statlab/adapters/battery"
	"statlab/domain/core"
	"statlab/domain/permutation"
	"statlab/internal"
	"statlab/ports"
)

// Conversions counts successes among visitors of one variant
type Conversions struct {
	Converted int `json:"converted"`
	Total     int `json:"total"`
}

// Rate returns the conversion rate in percent
func (c Conversions) Rate() float64 {
	if c.Total == 0 {
		return 0
	}
	return 100 * float64(c.Converted) / float64(c.Total)
}

// Price test defaults: 200 of 23739 converted at price A, 182 of 22588 at price B
var (
	DefaultVariantA = Conversions{Converted: 200, Total: 23739}
	DefaultVariantB = Conversions{Converted: 182, Total: 22588}
)

// CategoricalRequest asks whether variant A converts better than variant B
type CategoricalRequest struct {
	VariantA    Conversions              `json:"variant_a"`
	VariantB    Conversions              `json:"variant_b"`
	Trials      int                      `json:"trials"`
	Seed        *int64                   `json:"seed,omitempty"`
	Bins        int                      `json:"bins"`
	IncludeNull bool                     `json:"include_null"`
	Progress    permutation.ProgressFunc `json:"-"`
}

// CategoricalResult reports the difference in conversion rate, in percentage points
type CategoricalResult struct {
	VariantA           Conversions         `json:"variant_a"`
	VariantB           Conversions         `json:"variant_b"`
	ObservedDifference float64             `json:"observed_difference"`
	Test               *permutation.Result `json:"test"`
	Null               NullView            `json:"null"`
}

// CategoricalService runs the permutation test on binary outcomes
type CategoricalService struct {
	battery  ports.BatteryPort
	settings Settings
	logger   *internal.Logger
}

// NewCategoricalService creates a categorical service
func NewCategoricalService(batteryPort ports.BatteryPort, settings Settings, logger *internal.Logger) *CategoricalService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CategoricalService{
		battery:  batteryPort,
		settings: settings,
		logger:   logger.WithComponent("CategoricalService"),
	}
}

// Run pools both variants' 0/1 outcomes and tests rate(A) - rate(B) on the upper tail
func (s *CategoricalService) Run(ctx context.Context, req CategoricalRequest) (*CategoricalResult, error) {
	a, b := req.VariantA, req.VariantB
	if a == (Conversions{}) && b == (Conversions{}) {
		a, b = DefaultVariantA, DefaultVariantB
	}
	for name, c := range map[string]Conversions{"variant_a": a, "variant_b": b} {
		if c.Total < 1 || c.Converted < 0 || c.Converted > c.Total {
			return nil, core.NewValidationError(name, "need 0 <= converted <= total and total >= 1")
		}
	}

	trials, err := s.settings.trials(req.Trials, s.settings.Trials)
	if err != nil {
		return nil, err
	}
	seed := s.settings.resolveSeed(req.Seed)

	// ProportionDifference measures the second sample against the first.
	result, err := s.battery.Run(ctx, permutation.Request{
		Name:      "categorical",
		Samples:   []permutation.Sample{indicators(b), indicators(a)},
		Statistic: battery.ProportionDifference,
		Trials:    trials,
		Seed:      seed,
		Tail:      permutation.TailGreaterStrict,
		Progress:  req.Progress,
	})
	if err != nil {
		return nil, fmt.Errorf("categorical permutation test failed: %w", err)
	}

	s.logger.Info("conversion difference %.4f pp, p=%.4f over %d trials (seed %d)", result.Observed, result.PValue, trials, seed)

	return &CategoricalResult{
		VariantA:           a,
		VariantB:           b,
		ObservedDifference: result.Observed,
		Null:               newNullView(result, s.settings.bins(req.Bins), req.IncludeNull),
		Test:               result,
	}, nil
}

// indicators expands counts into a 0/1 sample with the ones first
func indicators(c Conversions) permutation.Sample {
	out := make(permutation.Sample, c.Total)
	for i := 0; i < c.Converted; i++ {
		out[i] = 1
	}
	return out
}
