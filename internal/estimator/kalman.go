package estimator

import (
	"statarb-lab/internal/domain"
)

// Kalman estimates a dynamic hedge ratio with a recursive filter over the
// state [intercept, slope], modelled as a random walk:
//
//	y_t = intercept_t + slope_t*x_t + eps_t
//	beta_t = beta_{t-1} + nu_t
//
// Delta is the process-noise variance (how fast beta may drift), R the
// measurement-noise variance. The filter scans the entire series in arrival
// order and emits a value from the first observation; early values are
// unreliable by construction. State is rebuilt from scratch on every
// Estimate call, so repeated passes over the same series are reproducible.
type Kalman struct {
	window int
	delta  float64
	r      float64
}

// NewKalman creates a Kalman estimator. Non-positive delta or r fall back
// to the defaults.
func NewKalman(window int, delta, r float64) *Kalman {
	if delta <= 0 {
		delta = domain.DefaultKalmanDelta
	}
	if r <= 0 {
		r = domain.DefaultKalmanR
	}
	return &Kalman{window: window, delta: delta, r: r}
}

var _ Estimator = (*Kalman)(nil)

// Method returns the strategy identifier.
func (k *Kalman) Method() domain.EstimatorMethod { return domain.MethodKalman }

// Estimate appends Kalman beta/alpha/spread columns.
func (k *Kalman) Estimate(series *domain.AlignedSeries) *domain.MetricSeries {
	if series.Len() < k.window {
		return withoutMetrics(series)
	}

	f := newKalmanState(k.delta, k.r)
	beta := make([]float64, series.Len())
	alpha := make([]float64, series.Len())
	for i := range beta {
		slope, intercept := f.update(series.X[i], series.Y[i])
		beta[i] = slope
		alpha[i] = intercept
	}

	return &domain.MetricSeries{
		AlignedSeries: *series,
		Beta:          beta,
		Alpha:         alpha,
		Spread:        spreadFrom(series.X, series.Y, beta, alpha),
	}
}

// kalmanState carries the filter recursion: beta = [intercept, slope] and
// the 2x2 covariance P, initialized to zero state and identity covariance.
type kalmanState struct {
	delta float64
	r     float64
	beta  [2]float64
	p     [2][2]float64
}

func newKalmanState(delta, r float64) *kalmanState {
	return &kalmanState{
		delta: delta,
		r:     r,
		p:     [2][2]float64{{1, 0}, {0, 1}},
	}
}

// update runs one predict/correct step for the observation pair (x, y) and
// returns (slope, intercept). The observation matrix is H = [1, x].
func (s *kalmanState) update(x, y float64) (slope, intercept float64) {
	// Predict: random-walk prior inflates covariance by delta*I.
	pPred := [2][2]float64{
		{s.p[0][0] + s.delta, s.p[0][1]},
		{s.p[1][0], s.p[1][1] + s.delta},
	}

	// Innovation e = y - H*beta.
	e := y - (s.beta[0] + s.beta[1]*x)

	// Innovation variance S = H*P_pred*H' + R, with H = [1, x].
	ph0 := pPred[0][0] + pPred[0][1]*x
	ph1 := pPred[1][0] + pPred[1][1]*x
	sVar := ph0 + ph1*x + s.r

	// Gain K = P_pred*H' / S.
	k0 := ph0 / sVar
	k1 := ph1 / sVar

	// State update.
	s.beta[0] += k0 * e
	s.beta[1] += k1 * e

	// Covariance update P = (I - outer(K, H)) * P_pred.
	s.p = [2][2]float64{
		{(1-k0)*pPred[0][0] - k0*x*pPred[1][0], (1-k0)*pPred[0][1] - k0*x*pPred[1][1]},
		{(1-k1*x)*pPred[1][0] - k1*pPred[0][0], (1-k1*x)*pPred[1][1] - k1*pPred[0][1]},
	}

	return s.beta[1], s.beta[0]
}
