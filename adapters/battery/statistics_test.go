package battery

import (
	"testing"

	"statlab/domain/core"
	"statlab/domain/permutation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanDifference(t *testing.T) {
	got, err := MeanDifference([]permutation.Sample{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	assert.InDelta(t, -3.0, got, 1e-12)

	_, err = MeanDifference([]permutation.Sample{{1}, {2}, {3}})
	assert.Error(t, err)

	_, err = MeanDifference([]permutation.Sample{{}, {2}})
	assert.Error(t, err)
}

func TestProportionDifference(t *testing.T) {
	// A: 1 of 4 converted (25%), B: 3 of 4 converted (75%)
	got, err := ProportionDifference([]permutation.Sample{{1, 0, 0, 0}, {1, 1, 1, 0}})
	require.NoError(t, err)
	assert.InDelta(t, 50.0, got, 1e-12)
}

func TestVarianceOfMeans(t *testing.T) {
	tests := []struct {
		name    string
		samples []permutation.Sample
		want    float64
	}{
		{
			name:    "four sessions",
			samples: []permutation.Sample{{164, 172, 177, 156, 195}, {178, 191, 182, 185, 177}, {175, 193, 171, 163, 176}, {155, 166, 164, 170, 168}},
			want:    55.426666666666,
		},
		{
			name:    "unequal sizes",
			samples: []permutation.Sample{{1, 3}, {2, 4, 6}, {10}},
			want:    17.333333333333,
		},
		{
			name:    "equal means",
			samples: []permutation.Sample{{1, 3}, {2, 2}},
			want:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VarianceOfMeans(tt.samples)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}

	_, err := VarianceOfMeans([]permutation.Sample{{1, 2}})
	assert.Error(t, err)
}

func TestStatisticByName(t *testing.T) {
	for _, name := range []string{"", "mean-difference", "proportion-difference", "variance-of-means"} {
		fn, err := StatisticByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, fn)
	}

	_, err := StatisticByName("median-ratio")
	assert.True(t, core.IsInvalidInputError(err))
}
