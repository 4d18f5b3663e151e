package estimator

import (
	"github.com/montanaflynn/stats"

	"statarb-lab/internal/domain"
)

// OLS estimates the hedge ratio with a rolling ordinary-least-squares fit:
// beta[t] = Cov(x,y;w)[t] / Var(x;w)[t], alpha from the rolling means.
// A zero-variance window divides by zero and propagates NaN for that row;
// there is deliberately no epsilon guard here.
type OLS struct {
	window int
}

// NewOLS creates a rolling OLS estimator with the given window.
func NewOLS(window int) *OLS {
	return &OLS{window: window}
}

var _ Estimator = (*OLS)(nil)

// Method returns the strategy identifier.
func (o *OLS) Method() domain.EstimatorMethod { return domain.MethodOLS }

// Estimate appends rolling OLS beta/alpha/spread columns.
func (o *OLS) Estimate(series *domain.AlignedSeries) *domain.MetricSeries {
	if series.Len() < o.window {
		return withoutMetrics(series)
	}

	cov := rollingApply2(series.X, series.Y, o.window, stats.Covariance)
	varX := rollingApply(series.X, o.window, stats.SampleVariance)
	meanX := rollingApply(series.X, o.window, stats.Mean)
	meanY := rollingApply(series.Y, o.window, stats.Mean)

	beta := make([]float64, series.Len())
	alpha := make([]float64, series.Len())
	for i := range beta {
		beta[i] = cov[i] / varX[i]
		alpha[i] = meanY[i] - beta[i]*meanX[i]
	}

	return &domain.MetricSeries{
		AlignedSeries: *series,
		Beta:          beta,
		Alpha:         alpha,
		Spread:        spreadFrom(series.X, series.Y, beta, alpha),
	}
}
