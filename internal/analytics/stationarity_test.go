package analytics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestADFInsufficientData(t *testing.T) {
	series := make([]float64, MinStationarityObservations-1)
	for i := range series {
		series[i] = float64(i % 3)
	}
	_, err := ADF(series)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestADFUndefinedValuesDoNotCount(t *testing.T) {
	// 40 points, but only 20 are defined.
	series := make([]float64, 40)
	for i := range series {
		if i%2 == 0 {
			series[i] = math.NaN()
		} else {
			series[i] = float64(i % 5)
		}
	}
	_, err := ADF(series)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestADFMeanRevertingSeriesIsStationary(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	series := make([]float64, 300)
	for i := 1; i < len(series); i++ {
		series[i] = 0.3*series[i-1] + r.NormFloat64()
	}

	result, err := ADF(series)
	require.NoError(t, err)

	assert.True(t, result.IsStationary)
	assert.Less(t, result.PValue, StationaritySignificance)
	assert.Less(t, result.Statistic, -3.5)
	assert.Equal(t, 300, result.Observations)
}

func TestADFRandomWalkScoresFarWorse(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	stationary := make([]float64, 300)
	walk := make([]float64, 300)
	for i := 1; i < 300; i++ {
		e := r.NormFloat64()
		stationary[i] = 0.3*stationary[i-1] + e
		walk[i] = walk[i-1] + e
	}

	sRes, err := ADF(stationary)
	require.NoError(t, err)
	wRes, err := ADF(walk)
	require.NoError(t, err)

	assert.Less(t, sRes.Statistic, wRes.Statistic)
	assert.Less(t, sRes.PValue, wRes.PValue)
}

func TestMackinnonPInterpolation(t *testing.T) {
	// Deep in the rejection region.
	assert.InDelta(t, 0.001, mackinnonP(-10, 100), 1e-9)
	// Far on the non-stationary side.
	assert.InDelta(t, 0.999, mackinnonP(5, 100), 1e-9)
	// Near the 5% critical value, on either side.
	assert.Less(t, mackinnonP(-3.2, 100), 0.05)
	assert.Greater(t, mackinnonP(-1.0, 100), 0.05)
	// Monotone in the statistic.
	assert.Less(t, mackinnonP(-3.0, 100), mackinnonP(-2.0, 100))
}
