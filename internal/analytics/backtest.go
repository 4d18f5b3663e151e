package analytics

import (
	"statarb-lab/internal/domain"
)

// Backtest runs the stateful position scan over the z-score sequence.
// Rows with an undefined z-score are dropped first; if nothing remains, or
// the series carries no z-score column, the backtest is skipped and nil is
// returned rather than an error.
//
// Position semantics: -1 shorts the spread (short y, long x) when z rises
// above entryZ, +1 longs the spread when z falls below -entryZ, and a held
// position closes when z crosses exitZ back toward zero. Row 0 is pinned at
// position 0. PnL at t applies the position established at t-1 to the
// spread's change from t-1 to t, eliminating lookahead bias. This is an
// approximate in-sample signal visualization, not an execution simulation.
func Backtest(m *domain.MetricSeries, entryZ, exitZ float64) []domain.BacktestRow {
	if !m.HasZScore() {
		return nil
	}

	rows := make([]domain.BacktestRow, 0, m.Len())
	for i := 0; i < m.Len(); i++ {
		if domain.IsUndefined(m.ZScore[i]) {
			continue
		}
		rows = append(rows, domain.BacktestRow{
			Timestamp: m.Timestamps[i],
			ZScore:    m.ZScore[i],
			Spread:    m.Spread[i],
		})
	}
	if len(rows) == 0 {
		return nil
	}

	position := 0
	cum := 0.0
	for i := range rows {
		if i == 0 {
			rows[0].Position = 0
			continue
		}

		z := rows[i].ZScore
		switch {
		case z > entryZ:
			position = -1
		case z < -entryZ:
			position = 1
		case (position == 1 && z >= exitZ) || (position == -1 && z <= -exitZ):
			position = 0
		}
		rows[i].Position = position

		rows[i].SpreadReturn = rows[i].Spread - rows[i-1].Spread
		rows[i].PnL = float64(rows[i-1].Position) * rows[i].SpreadReturn
		cum += rows[i].PnL
		rows[i].CumulativePnL = cum
	}

	return rows
}

// BacktestSummary condenses a backtest into the headline figures the
// presentation layer renders.
type BacktestSummary struct {
	Rows       int     `json:"rows"`
	Trades     int     `json:"trades"`
	WinningPct float64 `json:"winning_pct"`
	TotalPnL   float64 `json:"total_pnl"`
	FinalZ     float64 `json:"final_z"`
}

// Summarize computes summary statistics over backtest rows. A trade is one
// closed round trip; its outcome is the cumulative PnL change while the
// position was held. Returns nil for an empty backtest.
func Summarize(rows []domain.BacktestRow) *BacktestSummary {
	if len(rows) == 0 {
		return nil
	}

	s := &BacktestSummary{
		Rows:     len(rows),
		TotalPnL: rows[len(rows)-1].CumulativePnL,
		FinalZ:   rows[len(rows)-1].ZScore,
	}

	wins := 0
	holding := false
	entryCum := 0.0
	prevPos := 0
	for _, r := range rows {
		if r.Position != prevPos {
			if holding {
				// Round trip closed (flat or flipped).
				s.Trades++
				if r.CumulativePnL-entryCum > 0 {
					wins++
				}
			}
			holding = r.Position != 0
			if holding {
				entryCum = r.CumulativePnL
			}
		}
		prevPos = r.Position
	}
	if s.Trades > 0 {
		s.WinningPct = float64(wins) / float64(s.Trades)
	}
	return s
}
