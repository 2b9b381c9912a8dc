package battery

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"statlab/adapters/rng"
	"statlab/domain/core"
	"statlab/domain/permutation"
	"statlab/internal"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *PermutationEngine {
	return NewPermutationEngine(rng.NewSeededAdapter(), internal.NewLogger(internal.LogLevelError))
}

func TestPermutationEngine_WellSeparatedGroups(t *testing.T) {
	engine := newTestEngine()

	result, err := engine.Run(context.Background(), permutation.Request{
		Name:      "separated",
		Samples:   []permutation.Sample{{1, 2, 3}, {4, 5, 6}},
		Statistic: MeanDifference,
		Trials:    1000,
		Seed:      42,
	})
	require.NoError(t, err)

	assert.InDelta(t, -3.0, result.Observed, 1e-12)
	assert.Len(t, result.NullDistribution, 1000)
	assert.Equal(t, permutation.TailTwoSided, result.Tail)

	extreme := 0
	for _, v := range result.NullDistribution {
		if math.Abs(v) >= 3.0 {
			extreme++
		}
	}
	assert.Equal(t, extreme, result.ExtremeCount)
	assert.InDelta(t, float64(extreme)/1000, result.PValue, 1e-12)

	// Only 2 of the 20 equally likely splits reach |diff| = 3, so the exact p-value is 0.1.
	assert.InDelta(t, 0.1, result.PValue, 0.04)
}

func TestPermutationEngine_IdenticalValues(t *testing.T) {
	engine := newTestEngine()

	for _, trials := range []int{1, 10, 500} {
		result, err := engine.Run(context.Background(), permutation.Request{
			Samples:   []permutation.Sample{{1, 1, 1}, {1, 1, 1}},
			Statistic: MeanDifference,
			Trials:    trials,
			Seed:      7,
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, result.Observed)
		assert.Equal(t, 1.0, result.PValue, "trials=%d", trials)
	}
}

func TestPermutationEngine_VarianceOfMeansSeparatedGroups(t *testing.T) {
	engine := newTestEngine()

	samples := []permutation.Sample{
		{1, 1, 1, 1, 1},
		{2, 2, 2, 2, 2},
		{3, 3, 3, 3, 3},
		{4, 4, 4, 4, 4},
	}

	result, err := engine.Run(context.Background(), permutation.Request{
		Name:      "anova",
		Samples:   samples,
		Statistic: VarianceOfMeans,
		Trials:    3000,
		Seed:      42,
		Tail:      permutation.TailGreater,
	})
	require.NoError(t, err)

	assert.InDelta(t, 5.0/3.0, result.Observed, 1e-12)
	assert.Less(t, result.PValue, 0.05)

	smaller := 0
	for _, v := range result.NullDistribution {
		if v < result.Observed {
			smaller++
		}
	}
	assert.Greater(t, smaller, 1500, "most permuted variances should be smaller than observed")
}

func TestPermutationEngine_RejectsInvalidInput(t *testing.T) {
	calls := 0
	counting := func(samples []permutation.Sample) (float64, error) {
		calls++
		return 0, nil
	}

	tests := []struct {
		name    string
		req     permutation.Request
		wantErr error
	}{
		{
			name:    "empty first sample",
			req:     permutation.Request{Samples: []permutation.Sample{{}, {1, 2}}, Statistic: counting, Trials: 10},
			wantErr: core.ErrEmptySample,
		},
		{
			name:    "single sample",
			req:     permutation.Request{Samples: []permutation.Sample{{1, 2}}, Statistic: counting, Trials: 10},
			wantErr: core.ErrTooFewSamples,
		},
		{
			name:    "zero trials",
			req:     permutation.Request{Samples: []permutation.Sample{{1}, {2}}, Statistic: counting, Trials: 0},
			wantErr: core.ErrInvalidTrials,
		},
		{
			name:    "too many trials",
			req:     permutation.Request{Samples: []permutation.Sample{{1}, {2}}, Statistic: counting, Trials: permutation.MaxTrials + 1},
			wantErr: core.ErrInvalidTrials,
		},
		{
			name:    "NaN value",
			req:     permutation.Request{Samples: []permutation.Sample{{1, math.NaN()}, {2}}, Statistic: counting, Trials: 10},
			wantErr: core.ErrNonFiniteValue,
		},
		{
			name:    "infinite value",
			req:     permutation.Request{Samples: []permutation.Sample{{1}, {math.Inf(-1)}}, Statistic: counting, Trials: 10},
			wantErr: core.ErrNonFiniteValue,
		},
		{
			name:    "nil statistic",
			req:     permutation.Request{Samples: []permutation.Sample{{1}, {2}}, Trials: 10},
			wantErr: core.ErrNilStatistic,
		},
		{
			name:    "unknown tail",
			req:     permutation.Request{Samples: []permutation.Sample{{1}, {2}}, Statistic: counting, Trials: 10, Tail: "sideways"},
			wantErr: core.ErrInvalidInput,
		},
	}

	engine := newTestEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls = 0
			result, err := engine.Run(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.True(t, core.IsInvalidInputError(err))
			assert.Zero(t, calls, "statistic must not run before validation passes")
		})
	}
}

func TestPermutationEngine_PropagatesStatisticErrors(t *testing.T) {
	engine := newTestEngine()
	cause := errors.New("division by zero")

	t.Run("observed", func(t *testing.T) {
		_, err := engine.Run(context.Background(), permutation.Request{
			Samples:   []permutation.Sample{{1}, {2}},
			Statistic: func([]permutation.Sample) (float64, error) { return 0, cause },
			Trials:    10,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrStatistic))
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("mid-run", func(t *testing.T) {
		calls := 0
		progressed := 0
		_, err := engine.Run(context.Background(), permutation.Request{
			Samples: []permutation.Sample{{1, 2}, {3, 4}},
			Statistic: func(s []permutation.Sample) (float64, error) {
				calls++
				if calls == 4 { // observed + 3 trials
					return 0, cause
				}
				return MeanDifference(s)
			},
			Trials:   10,
			Progress: func(completed, total int) { progressed = completed },
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, cause))
		assert.Contains(t, err.Error(), "trial 3")
		assert.Equal(t, 2, progressed, "run must stop at the failing trial")
	})

	t.Run("NaN statistic", func(t *testing.T) {
		_, err := engine.Run(context.Background(), permutation.Request{
			Samples:   []permutation.Sample{{1}, {2}},
			Statistic: func([]permutation.Sample) (float64, error) { return math.NaN(), nil },
			Trials:    10,
		})
		assert.True(t, errors.Is(err, core.ErrStatistic))
	})

	t.Run("mean overflows to infinity", func(t *testing.T) {
		result, err := engine.Run(context.Background(), permutation.Request{
			Samples:   []permutation.Sample{{1.7e308, 1.7e308, 1}, {1, 2, 3}},
			Statistic: MeanDifference,
			Trials:    200,
			Seed:      42,
		})
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, core.ErrStatistic))
		assert.Contains(t, err.Error(), "+Inf")
	})
}

func TestPermutationEngine_PartitionSizesConserved(t *testing.T) {
	engine := newTestEngine()
	sizes := []int{3, 5, 2}
	samples := []permutation.Sample{{1, 2, 3}, {4, 5, 6, 7, 8}, {9, 10}}

	checked := 0
	_, err := engine.Run(context.Background(), permutation.Request{
		Samples: samples,
		Statistic: func(groups []permutation.Sample) (float64, error) {
			require.Len(t, groups, len(sizes))
			for i, g := range groups {
				assert.Len(t, g, sizes[i])
			}
			checked++
			return VarianceOfMeans(groups)
		},
		Trials: 200,
		Seed:   3,
	})
	require.NoError(t, err)
	assert.Equal(t, 201, checked)
}

func TestPermutationEngine_ValuesConservedAndInputUntouched(t *testing.T) {
	samples := []permutation.Sample{{5, 1, 9, 1}, {2, 7}, {3, 3, 8}}
	original := []permutation.Sample{{5, 1, 9, 1}, {2, 7}, {3, 3, 8}}

	p := newPool(samples)
	before := append([]float64(nil), p.values...)
	sort.Float64s(before)

	r := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		p.shuffle(r)
		after := append([]float64(nil), p.values...)
		sort.Float64s(after)
		require.Equal(t, before, after, "multiset changed after %d shuffles", i+1)
	}

	_, err := newTestEngine().Run(context.Background(), permutation.Request{
		Samples: samples, Statistic: VarianceOfMeans, Trials: 50, Seed: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, original, samples, "caller samples must not be reordered")
}

func TestPermutationEngine_Deterministic(t *testing.T) {
	engine := newTestEngine()
	req := permutation.Request{
		Samples:   []permutation.Sample{{95, 79, 92, 95, 78, 92, 98, 100}, {75, 92, 92, 92, 78, 48}},
		Statistic: MeanDifference,
		Trials:    500,
		Seed:      1234,
	}

	first, err := engine.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.NullDistribution, second.NullDistribution)
	assert.Equal(t, first.PValue, second.PValue)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)

	req.Seed = 4321
	third, err := engine.Run(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, first.NullDistribution, third.NullDistribution)
	assert.NotEqual(t, first.Fingerprint, third.Fingerprint)
}

func TestPermutationEngine_PValueInUnitInterval(t *testing.T) {
	engine := newTestEngine()
	gen := rand.New(rand.NewSource(99))

	for i := 0; i < 25; i++ {
		a := make(permutation.Sample, 1+gen.Intn(8))
		b := make(permutation.Sample, 1+gen.Intn(8))
		for j := range a {
			a[j] = gen.NormFloat64()
		}
		for j := range b {
			b[j] = gen.NormFloat64() + 1
		}
		for _, tail := range []permutation.Tail{permutation.TailTwoSided, permutation.TailGreater, permutation.TailLess, permutation.TailGreaterStrict, permutation.TailLessStrict} {
			result, err := engine.Run(context.Background(), permutation.Request{
				Samples: []permutation.Sample{a, b}, Statistic: MeanDifference,
				Trials: 1 + gen.Intn(200), Seed: int64(i), Tail: tail,
			})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, result.PValue, 0.0)
			assert.LessOrEqual(t, result.PValue, 1.0)
		}
	}
}

func TestPermutationEngine_SingleTrial(t *testing.T) {
	result, err := newTestEngine().Run(context.Background(), permutation.Request{
		Samples:   []permutation.Sample{{1, 2, 3}, {4, 5, 6}},
		Statistic: MeanDifference,
		Trials:    1,
		Seed:      5,
	})
	require.NoError(t, err)
	assert.Len(t, result.NullDistribution, 1)
	assert.Contains(t, []float64{0, 1}, result.PValue)
}

func TestPermutationEngine_ConvergesAsTrialsGrow(t *testing.T) {
	engine := newTestEngine()
	samples := []permutation.Sample{{1, 2, 3, 4, 5, 6}, {2, 3, 4, 5, 6, 7}}

	spread := func(trials int) float64 {
		pValues := make([]float64, 0, 20)
		for seed := int64(1); seed <= 20; seed++ {
			result, err := engine.Run(context.Background(), permutation.Request{
				Samples: samples, Statistic: MeanDifference, Trials: trials, Seed: seed,
			})
			require.NoError(t, err)
			pValues = append(pValues, result.PValue)
		}
		v, err := stats.SampleVariance(pValues)
		require.NoError(t, err)
		return v
	}

	small := spread(100)
	large := spread(10000)
	assert.Less(t, large, small, "p-value estimates should stabilise with more trials")
}

func TestPermutationEngine_ProgressAndCancellation(t *testing.T) {
	engine := newTestEngine()

	var seen []int
	_, err := engine.Run(context.Background(), permutation.Request{
		Samples:   []permutation.Sample{{1, 2}, {3, 4}},
		Statistic: MeanDifference,
		Trials:    5,
		Progress: func(completed, total int) {
			assert.Equal(t, 5, total)
			seen = append(seen, completed)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)

	ctx, cancel := context.WithCancel(context.Background())
	_, err = engine.Run(ctx, permutation.Request{
		Samples:   []permutation.Sample{{1, 2}, {3, 4}},
		Statistic: MeanDifference,
		Trials:    1000,
		Progress: func(completed, total int) {
			if completed == 10 {
				cancel()
			}
		},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmpiricalPValue(t *testing.T) {
	null := []float64{-3, -1, 0, 1, 2, 3}

	tests := []struct {
		name     string
		observed float64
		tail     permutation.Tail
		want     float64
	}{
		{"two-sided", -2, permutation.TailTwoSided, 3.0 / 6},
		{"greater", 1, permutation.TailGreater, 3.0 / 6},
		{"less", 0, permutation.TailLess, 3.0 / 6},
		{"greater beyond max", 4, permutation.TailGreater, 0},
		{"greater strict drops ties", 1, permutation.TailGreaterStrict, 2.0 / 6},
		{"less strict drops ties", 0, permutation.TailLessStrict, 2.0 / 6},
		{"greater strict at max", 3, permutation.TailGreaterStrict, 0},
		{"two-sided zero", 0, permutation.TailTwoSided, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := EmpiricalPValue(tt.observed, null, tt.tail)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	p, n := EmpiricalPValue(1, nil, permutation.TailTwoSided)
	assert.Equal(t, 1.0, p)
	assert.Zero(t, n)
}
