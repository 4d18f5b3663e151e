package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statarb-lab/internal/domain"
)

// seriesWithZ builds a metric series carrying explicit z-score and spread
// columns for signal tests.
func seriesWithZ(z, spread []float64) *domain.MetricSeries {
	m := &domain.MetricSeries{}
	for i := range z {
		m.Timestamps = append(m.Timestamps, domain.Tick{Timestamp: float64(i + 1)}.Time())
		m.X = append(m.X, 0)
		m.Y = append(m.Y, 0)
		m.VolX = append(m.VolX, 0)
		m.VolY = append(m.VolY, 0)
		m.Beta = append(m.Beta, 1)
		m.Alpha = append(m.Alpha, 0)
	}
	m.Spread = spread
	m.ZScore = z
	return m
}

func TestBacktestPositionScan(t *testing.T) {
	z := []float64{0, 2.5, 2.5, 0.1, -2.5, 0.0}
	spread := []float64{0, 1, 2, 1, -1, 0}

	rows := Backtest(seriesWithZ(z, spread), 2.0, 0.0)
	require.Len(t, rows, 6)

	positions := make([]int, len(rows))
	for i, r := range rows {
		positions[i] = r.Position
	}
	// Carry-forward until the exit threshold is crossed, immediate flip on
	// an opposite breach.
	assert.Equal(t, []int{0, -1, -1, -1, 1, 0}, positions)
}

func TestBacktestPnLLagsPosition(t *testing.T) {
	z := []float64{0, 2.5, 2.5, 0.1}
	spread := []float64{0, 1, 2, 1}

	rows := Backtest(seriesWithZ(z, spread), 2.0, 0.5)
	require.Len(t, rows, 4)

	// Row 1 enters short, but the PnL there uses row 0's flat position.
	assert.Equal(t, 0.0, rows[1].PnL)
	// Row 2: short from row 1, spread +1 => -1.
	assert.Equal(t, -1.0, rows[2].PnL)
	// Row 3: still short, spread -1 => +1.
	assert.Equal(t, 1.0, rows[3].PnL)
	assert.Equal(t, 0.0, rows[3].CumulativePnL)
}

func TestBacktestDropsUndefinedRows(t *testing.T) {
	z := []float64{math.NaN(), math.NaN(), 0, 2.5, 0.1}
	spread := []float64{math.NaN(), math.NaN(), 0, 1, 0}

	rows := Backtest(seriesWithZ(z, spread), 2.0, 0.5)
	require.Len(t, rows, 3)
	assert.Equal(t, 0, rows[0].Position)
	assert.Equal(t, -1, rows[1].Position)
}

func TestBacktestNoZScoreReturnsNil(t *testing.T) {
	m := &domain.MetricSeries{}
	assert.Nil(t, Backtest(m, 2.0, 0.5))

	allNaN := seriesWithZ([]float64{math.NaN()}, []float64{math.NaN()})
	assert.Nil(t, Backtest(allNaN, 2.0, 0.5))
}

func TestBacktestHoldsThroughDeadZone(t *testing.T) {
	// z between exit and entry thresholds: position carries.
	z := []float64{0, 2.5, 1.0, 1.2, 0.4}
	spread := []float64{0, 0, 0, 0, 0}

	rows := Backtest(seriesWithZ(z, spread), 2.0, 0.5)
	positions := make([]int, len(rows))
	for i, r := range rows {
		positions[i] = r.Position
	}
	// A short only exits when z falls to -exit or below; positive z in the
	// dead zone carries the position.
	assert.Equal(t, []int{0, -1, -1, -1, -1}, positions)
}

func TestSummarizeCountsRoundTrips(t *testing.T) {
	z := []float64{0, 2.5, 2.5, 0.1, -2.5, 0.0}
	spread := []float64{0, 1, 2, 1, -1, 0}

	rows := Backtest(seriesWithZ(z, spread), 2.0, 0.0)
	s := Summarize(rows)
	require.NotNil(t, s)

	assert.Equal(t, 6, s.Rows)
	// Short closed by the flip at row 4, long closed flat at row 5.
	assert.Equal(t, 2, s.Trades)
	assert.Equal(t, 1.0, s.WinningPct)
	assert.Equal(t, 0.0, s.FinalZ)
	assert.Equal(t, 3.0, s.TotalPnL)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Nil(t, Summarize(nil))
}
