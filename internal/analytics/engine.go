package analytics

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"statarb-lab/internal/align"
	"statarb-lab/internal/domain"
	"statarb-lab/internal/estimator"
	"statarb-lab/internal/observability"
	"statarb-lab/internal/store"
)

// Report is the output of one analytics pass. Stationarity is nil when the
// test had too little data; Backtest and Summary are nil when the z-score
// never became defined. An Empty series means "not enough information to
// proceed" and is not an error.
type Report struct {
	Params       domain.AnalyticsParams
	Series       *domain.MetricSeries
	Stationarity *domain.StationarityResult
	Backtest     []domain.BacktestRow
	Summary      *BacktestSummary
	GeneratedAt  time.Time
}

// Engine runs full analytics passes over the tick store. Each pass
// recomputes everything from the currently buffered window: alignment,
// estimation (including Kalman state, rebuilt from scratch), z-score,
// stationarity and backtest. Passes hold no state between invocations.
type Engine struct {
	store   *store.TickStore
	logger  *log.Logger
	metrics *observability.Metrics
}

// NewEngine creates an analytics engine over the given store.
func NewEngine(s *store.TickStore, logger *log.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{store: s, logger: logger, metrics: metrics}
}

// Run executes one pass over the store's recent ticks.
func (e *Engine) Run(params domain.AnalyticsParams) (*Report, error) {
	series := align.FromTicks(e.store.Recent(), params.SymbolX, params.SymbolY)
	return e.RunSeries(series, params)
}

// RunSeries executes one pass over an already-aligned series. Used by the
// offline replay path, which aligns file input itself.
func (e *Engine) RunSeries(series *domain.AlignedSeries, params domain.AnalyticsParams) (*Report, error) {
	started := time.Now()

	est, err := estimator.FromConfig(params.Estimator)
	if err != nil {
		return nil, fmt.Errorf("build estimator: %w", err)
	}

	report := &Report{
		Params:      params,
		GeneratedAt: started,
	}

	metricSeries := ApplyZScore(est.Estimate(series), params.Estimator.Window)
	report.Series = metricSeries

	if metricSeries.HasMetrics() {
		result, err := ADF(metricSeries.Spread)
		switch {
		case err == nil:
			report.Stationarity = result
		case errors.Is(err, ErrInsufficientData):
			// Not an error: the caller branches on a nil result.
		default:
			return nil, fmt.Errorf("stationarity test: %w", err)
		}

		report.Backtest = Backtest(metricSeries, params.EntryZ, params.ExitZ)
		report.Summary = Summarize(report.Backtest)
	}

	if e.metrics != nil {
		e.metrics.AnalyticsPasses.WithLabelValues(string(params.Estimator.Method)).Inc()
		e.metrics.AnalyticsDuration.Observe(time.Since(started).Seconds())
	}
	e.logger.WithFields(log.Fields{
		"method": params.Estimator.Method,
		"rows":   metricSeries.Len(),
		"took":   time.Since(started),
	}).Debug("analytics pass complete")

	return report, nil
}
