package domain

import (
	"math"
	"time"
)

// AlignedSeries is the regularly-indexed two-instrument table the analytics
// pipeline operates on. All slices share one length; Timestamps is strictly
// increasing. X is the independent instrument, Y the dependent one.
// Derived data: recomputed on every analytics pass, never persisted.
type AlignedSeries struct {
	Timestamps []time.Time
	X          []float64
	Y          []float64
	VolX       []float64
	VolY       []float64
}

// Len returns the number of rows.
func (s *AlignedSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Timestamps)
}

// Empty reports whether the series has no rows.
func (s *AlignedSeries) Empty() bool { return s.Len() == 0 }

// MetricSeries is an AlignedSeries with per-row estimator and signal columns
// appended. NaN marks rows where a rolling aggregate is undefined. Nil metric
// slices mean the estimator declined to run (fewer rows than the window);
// callers must treat that as "insufficient data", not as an error.
type MetricSeries struct {
	AlignedSeries

	Beta   []float64
	Alpha  []float64
	Spread []float64
	ZScore []float64
}

// HasMetrics reports whether estimator columns are present.
func (m *MetricSeries) HasMetrics() bool {
	return m != nil && len(m.Beta) == m.Len() && m.Len() > 0
}

// HasZScore reports whether the z-score column is present.
func (m *MetricSeries) HasZScore() bool {
	return m != nil && len(m.ZScore) == m.Len() && m.Len() > 0
}

// BacktestRow is one step of the position/PnL scan over the z-score signal.
type BacktestRow struct {
	Timestamp     time.Time
	Position      int // -1 short spread, 0 flat, +1 long spread
	ZScore        float64
	Spread        float64
	SpreadReturn  float64
	PnL           float64
	CumulativePnL float64
}

// StationarityResult is the outcome of the augmented Dickey-Fuller test on
// the spread series.
type StationarityResult struct {
	Statistic    float64
	PValue       float64
	IsStationary bool // p_value < 0.05
	Lag          int  // lag order selected by AIC
	Observations int  // non-missing observations used
}

// IsUndefined reports whether v is the undefined-value sentinel.
func IsUndefined(v float64) bool { return math.IsNaN(v) }
