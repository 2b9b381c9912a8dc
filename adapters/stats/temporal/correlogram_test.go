package temporal

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ar1(n int, phi float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	x := make([]float64, n)
	for i := 1; i < n; i++ {
		x[i] = phi*x[i-1] + rng.NormFloat64()
	}
	return x
}

func TestACF_HandComputed(t *testing.T) {
	c, err := ACF([]float64{1, 2, 3, 4, 5}, 4)
	require.NoError(t, err)

	want := []float64{1, 0.4, -0.1, -0.4, -0.4}
	require.Len(t, c.Values, len(want))
	for i := range want {
		assert.InDelta(t, want[i], c.Values[i], 1e-12, "lag %d", i)
	}
	assert.Equal(t, 5, c.N)
	assert.InDelta(t, 1.96/2.2360679, c.Band, 1e-3)
}

func TestPACF_HandComputed(t *testing.T) {
	c, err := PACF([]float64{1, 2, 3, 4, 5}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Values[0])
	assert.InDelta(t, 0.5, c.Values[1], 1e-12)
}

func TestCorrelogram_AR1(t *testing.T) {
	x := ar1(5000, 0.7, 7)

	acf, err := ACF(x, DefaultLags)
	require.NoError(t, err)
	require.Len(t, acf.Values, DefaultLags+1)
	assert.InDelta(t, 0.7, acf.Values[1], 0.05)
	assert.InDelta(t, 0.49, acf.Values[2], 0.05)

	pacf, err := PACF(x, DefaultLags)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, pacf.Values[1], 0.05)
	for k := 2; k <= DefaultLags; k++ {
		assert.Less(t, pacf.Values[k], 0.1, "lag %d", k)
		assert.Greater(t, pacf.Values[k], -0.1, "lag %d", k)
	}
}

func TestCorrelogram_Errors(t *testing.T) {
	_, err := ACF([]float64{1}, 0)
	assert.Error(t, err)

	_, err = ACF([]float64{1, 2, 3}, 3)
	assert.Error(t, err)

	_, err = ACF([]float64{2, 2, 2, 2}, 1)
	assert.Error(t, err)

	_, err = PACF([]float64{1, 2, 3, 4}, 2)
	assert.Error(t, err)
}
