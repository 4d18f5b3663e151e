package clickhouse

import (
	"context"
	"fmt"

	"statarb-lab/internal/domain"
	"statarb-lab/internal/store"
)

// TradeLog implements store.TradeLog using ClickHouse, for deployments where
// tick volume outgrows Postgres. The trades table is a ReplacingMergeTree
// ordered by (timestamp, symbol): duplicate keys collapse to one row at
// merge time, and reads use FINAL so the at-most-one-row guarantee holds
// for queries issued before a merge runs.
type TradeLog struct {
	conn *Conn
}

// NewTradeLog creates a new ClickHouse-backed trade log.
func NewTradeLog(conn *Conn) *TradeLog {
	return &TradeLog{conn: conn}
}

// Compile-time interface check.
var _ store.TradeLog = (*TradeLog)(nil)

// Upsert stores the tick. ReplacingMergeTree makes redelivery idempotent.
func (l *TradeLog) Upsert(ctx context.Context, t domain.Tick) error {
	if !t.Valid() {
		return store.ErrInvalidInput
	}

	query := `INSERT INTO trades (timestamp, symbol, price, size) VALUES (?, ?, ?, ?)`
	if err := l.conn.Exec(ctx, query, t.Timestamp, t.Symbol, t.Price, t.Size); err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// RecentRows returns up to limit rows ordered by timestamp descending.
func (l *TradeLog) RecentRows(ctx context.Context, limit int) ([]domain.Tick, error) {
	if limit <= 0 {
		return nil, store.ErrInvalidInput
	}

	query := `
		SELECT timestamp, symbol, price, size
		FROM trades FINAL
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := l.conn.Query(ctx, query, uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("query recent trades: %w", err)
	}
	defer rows.Close()

	var ticks []domain.Tick
	for rows.Next() {
		var t domain.Tick
		if err := rows.Scan(&t.Timestamp, &t.Symbol, &t.Price, &t.Size); err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		ticks = append(ticks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return ticks, nil
}

// Clear removes all rows from the log.
func (l *TradeLog) Clear(ctx context.Context) error {
	if err := l.conn.Exec(ctx, `TRUNCATE TABLE trades`); err != nil {
		return fmt.Errorf("truncate trades: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (l *TradeLog) Close() error {
	return l.conn.Close()
}
