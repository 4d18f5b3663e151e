package analytics

import (
	"errors"
	"math"

	"statarb-lab/internal/domain"
)

// ErrInsufficientData is returned when a diagnostic cannot run. It covers
// both too few observations and internal numerical failure, since the
// caller's branch is the same for either: no test result, try again with
// more data.
var ErrInsufficientData = errors.New("insufficient data")

// MinStationarityObservations is the minimum number of non-missing spread
// points the ADF test requires.
const MinStationarityObservations = 30

// StationaritySignificance is the p-value threshold for calling the spread
// stationary.
const StationaritySignificance = 0.05

// ADF runs an augmented Dickey-Fuller test (constant, no trend) on the
// spread series. Undefined values are dropped first. The lag order is
// selected by AIC over 0..floor(12*(n/100)^0.25), following the usual
// Schwert bound. P-values come from the MacKinnon (2010) response-surface
// critical values with linear interpolation between asymptotic percentiles,
// clamped to [0.001, 0.999]; the only consumer branches on p < 0.05, for
// which this approximation is more than sufficient.
func ADF(series []float64) (*domain.StationarityResult, error) {
	y := dropUndefined(series)
	n := len(y)
	if n < MinStationarityObservations {
		return nil, ErrInsufficientData
	}

	maxlag := int(math.Floor(12 * math.Pow(float64(n)/100, 0.25)))
	if bound := n/2 - 3; maxlag > bound {
		maxlag = bound
	}
	if maxlag < 0 {
		maxlag = 0
	}

	lag, err := selectLag(y, maxlag)
	if err != nil {
		return nil, ErrInsufficientData
	}

	stat, err := adfStatistic(y, lag)
	if err != nil || math.IsNaN(stat) || math.IsInf(stat, 0) {
		return nil, ErrInsufficientData
	}

	p := mackinnonP(stat, n)
	return &domain.StationarityResult{
		Statistic:    stat,
		PValue:       p,
		IsStationary: p < StationaritySignificance,
		Lag:          lag,
		Observations: n,
	}, nil
}

func dropUndefined(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !domain.IsUndefined(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// selectLag picks the lag order minimizing AIC over a common sample, so
// candidates are compared on identical observations.
func selectLag(y []float64, maxlag int) (int, error) {
	best, bestAIC := 0, math.Inf(1)
	for p := 0; p <= maxlag; p++ {
		resp, design := adfRegression(y, p, maxlag)
		fit, err := olsFit(resp, design)
		if err != nil {
			continue
		}
		m := float64(len(resp))
		k := float64(len(design[0]))
		aic := m*math.Log(fit.ssr/m) + 2*k
		if aic < bestAIC {
			best, bestAIC = p, aic
		}
	}
	if math.IsInf(bestAIC, 1) {
		return 0, ErrInsufficientData
	}
	return best, nil
}

// adfStatistic refits the regression at the chosen lag on the full usable
// sample and returns the t-statistic of the level coefficient.
func adfStatistic(y []float64, lag int) (float64, error) {
	resp, design := adfRegression(y, lag, lag)
	fit, err := olsFit(resp, design)
	if err != nil {
		return 0, err
	}
	// Column order: [level, lagged diffs..., const]; gamma is column 0.
	se := fit.stderr(0)
	if se == 0 {
		return 0, ErrInsufficientData
	}
	return fit.coef[0] / se, nil
}

// adfRegression builds the design matrix for
//
//	dy[t] = gamma*y[t-1] + sum_i phi_i*dy[t-i] + c + e[t]
//
// using observations t = startLag+1 .. n-1, so different lag candidates can
// share one sample when startLag is held at maxlag.
func adfRegression(y []float64, lag, startLag int) (resp []float64, design [][]float64) {
	n := len(y)
	dy := make([]float64, n-1)
	for i := range dy {
		dy[i] = y[i+1] - y[i]
	}

	for t := startLag + 1; t < n; t++ {
		row := make([]float64, 0, lag+2)
		row = append(row, y[t-1])
		for i := 1; i <= lag; i++ {
			row = append(row, dy[t-1-i])
		}
		row = append(row, 1)
		design = append(design, row)
		resp = append(resp, dy[t-1])
	}
	return resp, design
}

// mackinnonAnchors are (critical value, p) pairs for the constant-only
// Dickey-Fuller distribution. The 1/5/10% entries get the finite-sample
// response-surface adjustment; the rest are asymptotic percentiles.
func mackinnonAnchors(n int) ([]float64, []float64) {
	nf := float64(n)
	crit01 := -3.43035 - 6.5393/nf - 16.786/(nf*nf) - 79.433/(nf*nf*nf)
	crit05 := -2.86154 - 2.8903/nf - 4.234/(nf*nf) - 40.040/(nf*nf*nf)
	crit10 := -2.56677 - 1.5384/nf - 2.809/(nf*nf)

	stats := []float64{crit01, -3.12, crit05, crit10, -1.57, -0.44, -0.07, 0.23, 0.60}
	probs := []float64{0.01, 0.025, 0.05, 0.10, 0.50, 0.90, 0.95, 0.975, 0.99}
	return stats, probs
}

// mackinnonP interpolates the p-value for the test statistic.
func mackinnonP(stat float64, n int) float64 {
	stats, probs := mackinnonAnchors(n)

	if stat <= stats[0] {
		return 0.001
	}
	if stat >= stats[len(stats)-1] {
		return 0.999
	}
	for i := 1; i < len(stats); i++ {
		if stat <= stats[i] {
			frac := (stat - stats[i-1]) / (stats[i] - stats[i-1])
			return probs[i-1] + frac*(probs[i]-probs[i-1])
		}
	}
	return 0.999
}
