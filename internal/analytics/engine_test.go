package analytics

import (
	"context"
	"io"
	"math"
	"math/rand"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statarb-lab/internal/domain"
	"statarb-lab/internal/store"
	"statarb-lab/internal/store/memory"
)

func quietLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

func seededStore(t *testing.T, n int) *store.TickStore {
	t.Helper()
	s := store.NewTickStore([]string{"AAA", "BBB"}, n*2, memory.NewTradeLog(), quietLogger(), nil)

	ctx := context.Background()
	r := rand.New(rand.NewSource(7))
	for i := 0; i < n; i++ {
		ts := float64(i + 1)
		x := 100 + 10*math.Sin(float64(i)/5) + r.Float64()
		y := 2*x + 5 + 0.1*r.NormFloat64()
		s.Write(ctx, domain.Tick{Timestamp: ts, Symbol: "AAA", Price: x, Size: 1})
		s.Write(ctx, domain.Tick{Timestamp: ts, Symbol: "BBB", Price: y, Size: 1})
	}
	return s
}

func defaultParams(method domain.EstimatorMethod, window int) domain.AnalyticsParams {
	return domain.AnalyticsParams{
		SymbolX:   "AAA",
		SymbolY:   "BBB",
		Estimator: domain.EstimatorConfig{Method: method, Window: window},
		EntryZ:    2.0,
		ExitZ:     0.5,
	}
}

func TestEngineFullPass(t *testing.T) {
	engine := NewEngine(seededStore(t, 200), quietLogger(), nil)

	report, err := engine.Run(defaultParams(domain.MethodOLS, 20))
	require.NoError(t, err)

	require.True(t, report.Series.HasMetrics())
	require.True(t, report.Series.HasZScore())
	assert.Equal(t, 200, report.Series.Len())

	// The pair is cointegrated by construction.
	require.NotNil(t, report.Stationarity)
	assert.True(t, report.Stationarity.IsStationary)

	require.NotEmpty(t, report.Backtest)
	require.NotNil(t, report.Summary)
	assert.Equal(t, len(report.Backtest), report.Summary.Rows)
}

func TestEngineInsufficientDataIsNotAnError(t *testing.T) {
	engine := NewEngine(seededStore(t, 10), quietLogger(), nil)

	report, err := engine.Run(defaultParams(domain.MethodOLS, 50))
	require.NoError(t, err)

	assert.False(t, report.Series.HasMetrics())
	assert.Nil(t, report.Stationarity)
	assert.Nil(t, report.Backtest)
	assert.Nil(t, report.Summary)
}

func TestEngineEmptyStoreIsNotAnError(t *testing.T) {
	s := store.NewTickStore([]string{"AAA", "BBB"}, 10, memory.NewTradeLog(), quietLogger(), nil)
	engine := NewEngine(s, quietLogger(), nil)

	report, err := engine.Run(defaultParams(domain.MethodKalman, 10))
	require.NoError(t, err)
	assert.True(t, report.Series.Empty())
}

func TestEngineRejectsBadEstimator(t *testing.T) {
	engine := NewEngine(seededStore(t, 50), quietLogger(), nil)

	_, err := engine.Run(defaultParams("ridge", 10))
	assert.Error(t, err)
}

func TestEngineAllMethods(t *testing.T) {
	engine := NewEngine(seededStore(t, 100), quietLogger(), nil)

	for _, method := range []domain.EstimatorMethod{domain.MethodOLS, domain.MethodKalman, domain.MethodRobust} {
		report, err := engine.Run(defaultParams(method, 20))
		require.NoError(t, err, "%s", method)
		assert.True(t, report.Series.HasMetrics(), "%s", method)
	}
}
