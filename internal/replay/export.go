package replay

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"statarb-lab/internal/analytics"
	"statarb-lab/internal/domain"
)

// metricRowDTO is one CSV row of the exported metric series.
type metricRowDTO struct {
	Timestamp string  `csv:"timestamp"`
	X         float64 `csv:"x"`
	Y         float64 `csv:"y"`
	VolX      float64 `csv:"vol_x"`
	VolY      float64 `csv:"vol_y"`
	Beta      float64 `csv:"beta"`
	Alpha     float64 `csv:"alpha"`
	Spread    float64 `csv:"spread"`
	ZScore    float64 `csv:"zscore"`
}

// backtestRowDTO is one CSV row of the exported backtest path.
type backtestRowDTO struct {
	Timestamp     string  `csv:"timestamp"`
	Position      int     `csv:"position"`
	ZScore        float64 `csv:"zscore"`
	Spread        float64 `csv:"spread"`
	SpreadReturn  float64 `csv:"spread_return"`
	PnL           float64 `csv:"pnl"`
	CumulativePnL float64 `csv:"cum_pnl"`
}

// ExportSeriesCSV writes the computed metric series to path. Undefined
// values serialize as NaN, which round-trips through the wide-format
// loader.
func ExportSeriesCSV(path string, m *domain.MetricSeries) error {
	if !m.HasMetrics() {
		return fmt.Errorf("series has no metric columns")
	}

	rows := make([]*metricRowDTO, 0, m.Len())
	for i := 0; i < m.Len(); i++ {
		row := &metricRowDTO{
			Timestamp: m.Timestamps[i].UTC().Format(time.RFC3339Nano),
			X:         m.X[i],
			Y:         m.Y[i],
			VolX:      m.VolX[i],
			VolY:      m.VolY[i],
			Beta:      m.Beta[i],
			Alpha:     m.Alpha[i],
			Spread:    m.Spread[i],
		}
		if m.HasZScore() {
			row.ZScore = m.ZScore[i]
		}
		rows = append(rows, row)
	}
	return writeCSV(path, rows)
}

// ExportBacktestCSV writes the backtest path to path.
func ExportBacktestCSV(path string, rows []domain.BacktestRow) error {
	out := make([]*backtestRowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, &backtestRowDTO{
			Timestamp:     r.Timestamp.UTC().Format(time.RFC3339Nano),
			Position:      r.Position,
			ZScore:        r.ZScore,
			Spread:        r.Spread,
			SpreadReturn:  r.SpreadReturn,
			PnL:           r.PnL,
			CumulativePnL: r.CumulativePnL,
		})
	}
	return writeCSV(path, out)
}

// summaryDTO flattens a report for the one-line summary export.
type summaryDTO struct {
	SymbolX      string  `csv:"symbol_x"`
	SymbolY      string  `csv:"symbol_y"`
	Method       string  `csv:"method"`
	Rows         int     `csv:"rows"`
	Trades       int     `csv:"trades"`
	WinningPct   float64 `csv:"winning_pct"`
	TotalPnL     float64 `csv:"total_pnl"`
	ADFStatistic float64 `csv:"adf_statistic"`
	ADFPValue    float64 `csv:"adf_pvalue"`
	Stationary   bool    `csv:"stationary"`
}

// ExportSummaryCSV writes the report summary to path. Missing stationarity
// or backtest sections leave their columns zeroed.
func ExportSummaryCSV(path string, report *analytics.Report) error {
	row := &summaryDTO{
		SymbolX: report.Params.SymbolX,
		SymbolY: report.Params.SymbolY,
		Method:  string(report.Params.Estimator.Method),
	}
	if report.Summary != nil {
		row.Rows = report.Summary.Rows
		row.Trades = report.Summary.Trades
		row.WinningPct = report.Summary.WinningPct
		row.TotalPnL = report.Summary.TotalPnL
	}
	if report.Stationarity != nil {
		row.ADFStatistic = report.Stationarity.Statistic
		row.ADFPValue = report.Stationarity.PValue
		row.Stationary = report.Stationarity.IsStationary
	}
	return writeCSV(path, []*summaryDTO{row})
}

func writeCSV[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
