package app

import (
	"context"
	"fmt"

	"github.com/montanaflynn/stats"

	"statlab/adapters/battery"
	"statlab/domain/core"
	"statlab/domain/dataset"
	"statlab/domain/permutation"
	"statlab/internal"
	"statlab/ports"
)

// AnovaRequest configures the one-way ANOVA permutation test
type AnovaRequest struct {
	Trials      int                      `json:"trials"`
	Seed        *int64                   `json:"seed,omitempty"`
	Bins        int                      `json:"bins"`
	IncludeNull bool                     `json:"include_null"`
	Progress    permutation.ProgressFunc `json:"-"`
}

// GroupMean summarises one page of the four-sessions dataset
type GroupMean struct {
	Page string  `json:"page"`
	N    int     `json:"n"`
	Mean float64 `json:"mean"`
}

// AnovaResult is everything the ANOVA page displays
type AnovaResult struct {
	Groups           []GroupMean         `json:"groups"`
	ObservedVariance float64             `json:"observed_variance"`
	Test             *permutation.Result `json:"test"`
	Null             NullView            `json:"null"`
	Data             []dataset.PageTime  `json:"data"`
}

// AnovaService tests whether session times differ across page designs using
// the variance of the group means as the statistic.
type AnovaService struct {
	battery  ports.BatteryPort
	datasets ports.DatasetReaderPort
	settings Settings
	logger   *internal.Logger
}

// NewAnovaService creates an ANOVA service
func NewAnovaService(batteryPort ports.BatteryPort, datasets ports.DatasetReaderPort, settings Settings, logger *internal.Logger) *AnovaService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnovaService{
		battery:  batteryPort,
		datasets: datasets,
		settings: settings,
		logger:   logger.WithComponent("AnovaService"),
	}
}

// Run loads the four-sessions data and runs the upper-tail permutation test
func (s *AnovaService) Run(ctx context.Context, req AnovaRequest) (*AnovaResult, error) {
	trials, err := s.settings.trials(req.Trials, s.settings.AnovaTrials)
	if err != nil {
		return nil, err
	}

	rows, err := s.datasets.PageTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load four sessions: %w", err)
	}

	pages, samples := GroupByPage(rows)
	if len(samples) < 2 {
		return nil, fmt.Errorf("%w: need at least two pages, found %d", core.ErrInsufficientData, len(samples))
	}

	seed := s.settings.resolveSeed(req.Seed)
	result, err := s.battery.Run(ctx, permutation.Request{
		Name:      "anova",
		Samples:   samples,
		Statistic: battery.VarianceOfMeans,
		Trials:    trials,
		Seed:      seed,
		Tail:      permutation.TailGreaterStrict,
		Progress:  req.Progress,
	})
	if err != nil {
		return nil, fmt.Errorf("anova permutation test failed: %w", err)
	}

	groups := make([]GroupMean, len(samples))
	for i, sample := range samples {
		mean, err := stats.Mean(stats.Float64Data(sample))
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", pages[i], err)
		}
		groups[i] = GroupMean{Page: pages[i], N: len(sample), Mean: mean}
	}

	s.logger.Info("observed variance of means %.3f, p=%.4f over %d trials (seed %d)", result.Observed, result.PValue, trials, seed)

	return &AnovaResult{
		Groups:           groups,
		ObservedVariance: result.Observed,
		Null:             newNullView(result, s.settings.bins(req.Bins), req.IncludeNull),
		Test:             result,
		Data:             rows,
	}, nil
}

// GroupByPage splits session times by page, keeping pages in first-seen order
func GroupByPage(rows []dataset.PageTime) ([]string, []permutation.Sample) {
	index := make(map[string]int)
	var pages []string
	var samples []permutation.Sample
	for _, r := range rows {
		i, ok := index[r.Page]
		if !ok {
			i = len(pages)
			index[r.Page] = i
			pages = append(pages, r.Page)
			samples = append(samples, nil)
		}
		samples[i] = append(samples[i], r.Time)
	}
	return pages, samples
}
