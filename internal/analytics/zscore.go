package analytics

import (
	"github.com/montanaflynn/stats"

	"statarb-lab/internal/domain"
)

// Epsilon guards the z-score denominator against flat-spread periods where
// the rolling standard deviation is exactly zero.
const Epsilon = 1e-8

// ApplyZScore appends the z-score column to a metric series:
// z[t] = (spread[t] - RollingMean(spread;w)[t]) / (RollingStd(spread;w)[t] + eps).
// A series without metric columns is returned unchanged.
func ApplyZScore(m *domain.MetricSeries, window int) *domain.MetricSeries {
	if !m.HasMetrics() {
		return m
	}

	mean := rolling(m.Spread, window, stats.Mean)
	std := rolling(m.Spread, window, stats.StandardDeviationSample)

	z := make([]float64, m.Len())
	for i := range z {
		z[i] = (m.Spread[i] - mean[i]) / (std[i] + Epsilon)
	}
	m.ZScore = z
	return m
}
