package estimator

import (
	"math"

	"github.com/montanaflynn/stats"

	"statarb-lab/internal/domain"
)

// Robust estimates the hedge ratio with a rolling median-ratio proxy:
// beta[t] = Median(y/x; w)[t], alpha from the rolling medians of y and x.
//
// This is a computationally cheap stand-in for a robust regression, not an
// iteratively-reweighted Huber fit; it tolerates outliers in either leg but
// has no formal breakdown-point guarantee. Known limitation, kept as-is.
type Robust struct {
	window int
}

// NewRobust creates a rolling median-ratio estimator with the given window.
func NewRobust(window int) *Robust {
	return &Robust{window: window}
}

var _ Estimator = (*Robust)(nil)

// Method returns the strategy identifier.
func (r *Robust) Method() domain.EstimatorMethod { return domain.MethodRobust }

// Estimate appends median-ratio beta/alpha/spread columns.
func (r *Robust) Estimate(series *domain.AlignedSeries) *domain.MetricSeries {
	if series.Len() < r.window {
		return withoutMetrics(series)
	}

	ratio := make([]float64, series.Len())
	for i := range ratio {
		if series.X[i] == 0 {
			ratio[i] = math.NaN()
		} else {
			ratio[i] = series.Y[i] / series.X[i]
		}
	}

	beta := rollingApply(ratio, r.window, nanGuard(stats.Median))
	medX := rollingApply(series.X, r.window, stats.Median)
	medY := rollingApply(series.Y, r.window, stats.Median)

	alpha := make([]float64, series.Len())
	for i := range alpha {
		alpha[i] = medY[i] - beta[i]*medX[i]
	}

	return &domain.MetricSeries{
		AlignedSeries: *series,
		Beta:          beta,
		Alpha:         alpha,
		Spread:        spreadFrom(series.X, series.Y, beta, alpha),
	}
}
