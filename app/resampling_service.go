package app

import (
	"context"
	"fmt"

	"statlab/adapters/battery"
	"statlab/adapters/stats/diagnostics"
	"statlab/domain/permutation"
	"statlab/internal"
	"statlab/ports"
)

// DefaultGroupA and DefaultGroupB are the exam scores pre-filled on the resampling page
var (
	DefaultGroupA = []float64{95, 79, 92, 95, 78, 92, 98, 100, 100, 100, 100}
	DefaultGroupB = []float64{75, 92, 92, 92, 92, 92, 92, 92, 92, 78, 48}
)

// ResamplingRequest asks whether two groups differ. Statistic and Tail take
// the names accepted by battery.StatisticByName and permutation.ParseTail;
// empty values mean the two-sided mean difference.
type ResamplingRequest struct {
	GroupA      []float64                `json:"group_a"`
	GroupB      []float64                `json:"group_b"`
	Statistic   string                   `json:"statistic,omitempty"`
	Tail        string                   `json:"tail,omitempty"`
	Trials      int                      `json:"trials"`
	Seed        *int64                   `json:"seed,omitempty"`
	Alpha       float64                  `json:"alpha"`
	Bins        int                      `json:"bins"`
	IncludeNull bool                     `json:"include_null"`
	Progress    permutation.ProgressFunc `json:"-"`
}

// ResamplingResult is everything the resampling page displays
type ResamplingResult struct {
	ObservedDifference float64                    `json:"observed_difference"`
	Test               *permutation.Result        `json:"test"`
	Null               NullView                   `json:"null"`
	Decision           *diagnostics.DecisionTable `json:"decision"`
}

// ResamplingService runs the two-group permutation test
type ResamplingService struct {
	battery  ports.BatteryPort
	settings Settings
	logger   *internal.Logger
}

// NewResamplingService creates a resampling service
func NewResamplingService(batteryPort ports.BatteryPort, settings Settings, logger *internal.Logger) *ResamplingService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ResamplingService{
		battery:  batteryPort,
		settings: settings,
		logger:   logger.WithComponent("ResamplingService"),
	}
}

// Run executes the permutation test, by default two-sided on mean(A) - mean(B),
// and builds the decision table. Empty groups fall back to the page defaults.
func (s *ResamplingService) Run(ctx context.Context, req ResamplingRequest) (*ResamplingResult, error) {
	groupA, groupB := req.GroupA, req.GroupB
	if len(groupA) == 0 && len(groupB) == 0 {
		groupA, groupB = DefaultGroupA, DefaultGroupB
	}

	trials, err := s.settings.trials(req.Trials, s.settings.Trials)
	if err != nil {
		return nil, err
	}
	statistic, err := battery.StatisticByName(req.Statistic)
	if err != nil {
		return nil, err
	}
	tail, err := permutation.ParseTail(req.Tail)
	if err != nil {
		return nil, err
	}
	seed := s.settings.resolveSeed(req.Seed)

	result, err := s.battery.Run(ctx, permutation.Request{
		Name:      "resampling",
		Samples:   []permutation.Sample{groupA, groupB},
		Statistic: statistic,
		Trials:    trials,
		Seed:      seed,
		Tail:      tail,
		Progress:  req.Progress,
	})
	if err != nil {
		return nil, fmt.Errorf("resampling test failed: %w", err)
	}

	alpha := s.settings.alpha(req.Alpha)
	decision := diagnostics.BuildDecisionTable(groupA, groupB, result.PValue, alpha)
	s.logger.Info("observed %.2f, p=%.4f over %d trials (seed %d)", result.Observed, result.PValue, trials, seed)

	return &ResamplingResult{
		ObservedDifference: result.Observed,
		Null:               newNullView(result, s.settings.bins(req.Bins), req.IncludeNull),
		Test:               result,
		Decision:           decision,
	}, nil
}
