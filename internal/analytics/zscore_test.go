package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statarb-lab/internal/domain"
)

func metricSeriesWithSpread(spread []float64) *domain.MetricSeries {
	m := &domain.MetricSeries{}
	for i := range spread {
		m.Timestamps = append(m.Timestamps, domain.Tick{Timestamp: float64(i + 1)}.Time())
		m.X = append(m.X, 1)
		m.Y = append(m.Y, 1)
		m.VolX = append(m.VolX, 1)
		m.VolY = append(m.VolY, 1)
		m.Beta = append(m.Beta, 1)
		m.Alpha = append(m.Alpha, 0)
	}
	m.Spread = spread
	return m
}

func TestZScoreFlatSpreadIsZero(t *testing.T) {
	spread := make([]float64, 20)
	for i := range spread {
		spread[i] = 5.0
	}

	m := ApplyZScore(metricSeriesWithSpread(spread), 5)
	require.True(t, m.HasZScore())

	for i := 4; i < m.Len(); i++ {
		assert.False(t, math.IsNaN(m.ZScore[i]), "row %d", i)
		assert.False(t, math.IsInf(m.ZScore[i], 0), "row %d", i)
		assert.InDelta(t, 0.0, m.ZScore[i], 1e-6, "row %d", i)
	}
}

func TestZScoreWarmupIsUndefined(t *testing.T) {
	m := ApplyZScore(metricSeriesWithSpread([]float64{1, 2, 3, 4, 5, 6}), 4)
	require.True(t, m.HasZScore())

	for i := 0; i < 3; i++ {
		assert.True(t, math.IsNaN(m.ZScore[i]), "row %d", i)
	}
	assert.False(t, math.IsNaN(m.ZScore[3]))
}

func TestZScoreSignFollowsDeviation(t *testing.T) {
	// Spread spikes above its recent mean: z must be positive there.
	spread := []float64{1, 1, 1, 1, 10}
	m := ApplyZScore(metricSeriesWithSpread(spread), 5)
	require.True(t, m.HasZScore())
	assert.Greater(t, m.ZScore[4], 1.0)
}

func TestZScoreUndefinedSpreadPropagates(t *testing.T) {
	spread := []float64{1, math.NaN(), 1, 2, 3, 4, 5}
	m := ApplyZScore(metricSeriesWithSpread(spread), 3)
	require.True(t, m.HasZScore())

	// Windows touching the NaN row are undefined.
	for i := 1; i <= 3; i++ {
		assert.True(t, math.IsNaN(m.ZScore[i]), "row %d", i)
	}
	assert.False(t, math.IsNaN(m.ZScore[4]))
}

func TestZScoreNoMetricsPassthrough(t *testing.T) {
	m := &domain.MetricSeries{}
	out := ApplyZScore(m, 5)
	assert.False(t, out.HasZScore())
}
