// Package estimator provides the interchangeable hedge-ratio estimation
// strategies. All estimators share one contract: given an aligned series
// they append per-row beta/alpha/spread columns, where
// spread = y - (beta*x + alpha). A series shorter than the configured window
// is returned unmodified with no metric columns — an explicit
// "insufficient data" signal, not an error.
package estimator

import (
	"math"

	"github.com/montanaflynn/stats"

	"statarb-lab/internal/domain"
)

// Estimator produces per-row (beta, alpha, spread) for an aligned series.
type Estimator interface {
	// Method returns the strategy identifier.
	Method() domain.EstimatorMethod

	// Estimate appends metric columns to the series. The input is not
	// mutated; estimator state never survives across calls.
	Estimate(series *domain.AlignedSeries) *domain.MetricSeries
}

// rollingApply evaluates fn over each trailing window of vals. Rows before
// the window fills, and rows where fn fails, hold NaN.
func rollingApply(vals []float64, window int, fn func(stats.Float64Data) (float64, error)) []float64 {
	out := make([]float64, len(vals))
	for i := range out {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		v, err := fn(vals[i-window+1 : i+1])
		if err != nil {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// rollingApply2 is rollingApply over two parallel columns.
func rollingApply2(a, b []float64, window int, fn func(x, y stats.Float64Data) (float64, error)) []float64 {
	out := make([]float64, len(a))
	for i := range out {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		v, err := fn(a[i-window+1:i+1], b[i-window+1:i+1])
		if err != nil {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// nanGuard wraps fn to return NaN when the window itself carries an
// undefined value, since the montanaflynn aggregates sort their input and
// would otherwise fold NaN into an arbitrary result.
func nanGuard(fn func(stats.Float64Data) (float64, error)) func(stats.Float64Data) (float64, error) {
	return func(d stats.Float64Data) (float64, error) {
		for _, v := range d {
			if math.IsNaN(v) {
				return math.NaN(), nil
			}
		}
		return fn(d)
	}
}

// spreadFrom computes spread[t] = y[t] - (beta[t]*x[t] + alpha[t]).
// NaN beta or alpha propagates into the spread.
func spreadFrom(x, y, beta, alpha []float64) []float64 {
	spread := make([]float64, len(y))
	for i := range spread {
		spread[i] = y[i] - (beta[i]*x[i] + alpha[i])
	}
	return spread
}

// withoutMetrics wraps the series unchanged, signalling insufficient data.
func withoutMetrics(series *domain.AlignedSeries) *domain.MetricSeries {
	return &domain.MetricSeries{AlignedSeries: *series}
}
