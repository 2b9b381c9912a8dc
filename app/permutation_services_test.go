package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"statlab/adapters/stats/diagnostics"
	"statlab/domain/core"
	"statlab/domain/dataset"
	"statlab/domain/permutation"
	"statlab/internal"
	"statlab/internal/testkit"
)

var quiet = internal.NewLogger(internal.LogLevelError)

func seed(v int64) *int64 { return &v }

func TestResamplingService_Defaults(t *testing.T) {
	svc := NewResamplingService(testkit.NewEngine(), DefaultSettings(), quiet)

	res, err := svc.Run(context.Background(), ResamplingRequest{})
	require.NoError(t, err)

	assert.InDelta(t, 8.363636, res.ObservedDifference, 1e-6)
	assert.Equal(t, 1000, res.Test.Trials)
	assert.Equal(t, int64(42), res.Test.Seed)
	assert.Equal(t, permutation.TailTwoSided, res.Test.Tail)
	assert.Equal(t, []int{11, 11}, res.Test.GroupSizes)
	assert.Nil(t, res.Test.NullDistribution)
	assert.Len(t, res.Null.Histogram.Bins, 50)

	total := 0
	for _, b := range res.Null.Histogram.Bins {
		total += b.Count
	}
	assert.Equal(t, 1000, total)

	require.NotNil(t, res.Decision)
	row := res.Decision.Row(diagnostics.MethodResampling)
	require.NotNil(t, row)
	require.NotNil(t, row.PValue)
	assert.Equal(t, res.Test.PValue, *row.PValue)
	assert.Equal(t, diagnostics.DefaultAlpha, res.Decision.Alpha)
}

func TestResamplingService_SeedHandling(t *testing.T) {
	settings := DefaultSettings()
	settings.RandomSeed = func() int64 { return 777 }
	svc := NewResamplingService(testkit.NewEngine(), settings, quiet)
	ctx := context.Background()

	a, err := svc.Run(ctx, ResamplingRequest{Trials: 200, Seed: seed(9), IncludeNull: true})
	require.NoError(t, err)
	b, err := svc.Run(ctx, ResamplingRequest{Trials: 200, Seed: seed(9), IncludeNull: true})
	require.NoError(t, err)
	assert.Equal(t, a.Test.NullDistribution, b.Test.NullDistribution)
	assert.Equal(t, a.Test.PValue, b.Test.PValue)

	fresh, err := svc.Run(ctx, ResamplingRequest{Trials: 10, Seed: seed(0)})
	require.NoError(t, err)
	assert.Equal(t, int64(777), fresh.Test.Seed)
}

func TestResamplingService_Validation(t *testing.T) {
	svc := NewResamplingService(testkit.NewEngine(), DefaultSettings(), quiet)
	ctx := context.Background()

	_, err := svc.Run(ctx, ResamplingRequest{Trials: permutation.MaxTrials + 1})
	assert.True(t, core.IsInvalidInputError(err))

	_, err = svc.Run(ctx, ResamplingRequest{GroupA: []float64{1, 2}, Trials: 10})
	assert.ErrorIs(t, err, core.ErrEmptySample)
}

func TestResamplingService_Progress(t *testing.T) {
	svc := NewResamplingService(testkit.NewEngine(), DefaultSettings(), quiet)

	calls := 0
	_, err := svc.Run(context.Background(), ResamplingRequest{
		Trials:   25,
		Progress: func(completed, total int) { calls++ },
	})
	require.NoError(t, err)
	assert.Equal(t, 25, calls)
}

func TestAnovaService_FourSessions(t *testing.T) {
	reader := new(testkit.MockDatasetReader)
	reader.On("PageTimes", mock.Anything).Return(testkit.FourSessions(), nil)

	svc := NewAnovaService(testkit.NewEngine(), reader, DefaultSettings(), quiet)
	res, err := svc.Run(context.Background(), AnovaRequest{})
	require.NoError(t, err)

	assert.InDelta(t, 55.426667, res.ObservedVariance, 1e-5)
	assert.Equal(t, 3000, res.Test.Trials)
	assert.Equal(t, permutation.TailGreaterStrict, res.Test.Tail)
	assert.Equal(t, []int{5, 5, 5, 5}, res.Test.GroupSizes)

	require.Len(t, res.Groups, 4)
	assert.Equal(t, "Page 1", res.Groups[0].Page)
	assert.InDelta(t, 172.8, res.Groups[0].Mean, 1e-9)
	assert.InDelta(t, 182.6, res.Groups[1].Mean, 1e-9)
	assert.InDelta(t, 175.6, res.Groups[2].Mean, 1e-9)
	assert.InDelta(t, 164.6, res.Groups[3].Mean, 1e-9)

	// The four-sessions difference is borderline: the null exceeds it in
	// roughly one trial out of twelve.
	assert.Greater(t, res.Test.PValue, 0.02)
	assert.Less(t, res.Test.PValue, 0.2)
	reader.AssertExpectations(t)
}

func TestAnovaService_Errors(t *testing.T) {
	t.Run("single page", func(t *testing.T) {
		reader := new(testkit.MockDatasetReader)
		reader.On("PageTimes", mock.Anything).Return([]dataset.PageTime{{Page: "A", Time: 1}, {Page: "A", Time: 2}}, nil)

		svc := NewAnovaService(testkit.NewEngine(), reader, DefaultSettings(), quiet)
		_, err := svc.Run(context.Background(), AnovaRequest{Trials: 10})
		assert.ErrorIs(t, err, core.ErrInsufficientData)
	})

	t.Run("reader failure", func(t *testing.T) {
		reader := new(testkit.MockDatasetReader)
		reader.On("PageTimes", mock.Anything).Return(nil, core.ErrDatasetNotFound)

		svc := NewAnovaService(testkit.NewEngine(), reader, DefaultSettings(), quiet)
		_, err := svc.Run(context.Background(), AnovaRequest{Trials: 10})
		assert.True(t, core.IsNotFoundError(err))
	})
}

func TestGroupByPage_FirstSeenOrder(t *testing.T) {
	pages, samples := GroupByPage([]dataset.PageTime{
		{Page: "B", Time: 1}, {Page: "A", Time: 2}, {Page: "B", Time: 3},
	})
	assert.Equal(t, []string{"B", "A"}, pages)
	assert.Equal(t, []permutation.Sample{{1, 3}, {2}}, samples)
}

func TestCategoricalService_PriceTest(t *testing.T) {
	svc := NewCategoricalService(testkit.NewEngine(), DefaultSettings(), quiet)

	res, err := svc.Run(context.Background(), CategoricalRequest{Trials: 200})
	require.NoError(t, err)

	assert.InDelta(t, 0.0367579, res.ObservedDifference, 1e-6)
	assert.Equal(t, DefaultVariantA, res.VariantA)
	assert.Equal(t, []int{22588, 23739}, res.Test.GroupSizes)
	assert.Equal(t, permutation.TailGreaterStrict, res.Test.Tail)
	assert.Greater(t, res.Test.PValue, 0.1)
	assert.Less(t, res.Test.PValue, 0.6)
}

func TestCategoricalService_Validation(t *testing.T) {
	svc := NewCategoricalService(testkit.NewEngine(), DefaultSettings(), quiet)

	_, err := svc.Run(context.Background(), CategoricalRequest{
		VariantA: Conversions{Converted: 5, Total: 3},
		VariantB: Conversions{Converted: 1, Total: 3},
		Trials:   10,
	})
	assert.True(t, core.IsInvalidInputError(err))
}

func TestConversions_Rate(t *testing.T) {
	assert.InDelta(t, 0.8424955, DefaultVariantA.Rate(), 1e-6)
	assert.Equal(t, 0.0, Conversions{}.Rate())
}

func TestSettings(t *testing.T) {
	s := DefaultSettings()

	n, err := s.trials(0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1000, n)

	_, err = s.trials(-1, 1000)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))

	assert.Equal(t, 50, s.bins(0))
	assert.Equal(t, 7, s.bins(7))
	assert.Equal(t, 0.01, s.alpha(0.01))
	assert.Equal(t, 0.05, s.alpha(2))
	assert.Equal(t, int64(42), s.resolveSeed(nil))
}
