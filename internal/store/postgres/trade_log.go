package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"statarb-lab/internal/domain"
	"statarb-lab/internal/store"
)

// TradeLog implements store.TradeLog using PostgreSQL. The trades table
// carries a primary key on (timestamp, symbol); duplicate upserts are
// absorbed by ON CONFLICT DO NOTHING, so redelivered ticks leave exactly
// one row.
type TradeLog struct {
	pool *Pool
}

// NewTradeLog creates a new Postgres-backed trade log.
func NewTradeLog(pool *Pool) *TradeLog {
	return &TradeLog{pool: pool}
}

// Compile-time interface check.
var _ store.TradeLog = (*TradeLog)(nil)

// Upsert stores the tick, ignoring duplicate (timestamp, symbol) keys.
func (l *TradeLog) Upsert(ctx context.Context, t domain.Tick) error {
	if !t.Valid() {
		return store.ErrInvalidInput
	}

	query := `
		INSERT INTO trades (timestamp, symbol, price, size)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (timestamp, symbol) DO NOTHING
	`

	_, err := l.pool.Exec(ctx, query, t.Timestamp, t.Symbol, t.Price, t.Size)
	if err != nil {
		return fmt.Errorf("upsert trade: %w", err)
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
		FROM trades
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := l.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent trades: %w", err)
	}
	defer rows.Close()

	return scanTicks(rows)
}

// Clear removes all rows from the log.
func (l *TradeLog) Clear(ctx context.Context) error {
	if _, err := l.pool.Exec(ctx, `DELETE FROM trades`); err != nil {
		return fmt.Errorf("clear trades: %w", err)
	}
	return nil
}

// Close closes the underlying pool.
func (l *TradeLog) Close() error {
	l.pool.Close()
	return nil
}

// scanTicks scans multiple rows into a slice of Tick.
func scanTicks(rows pgx.Rows) ([]domain.Tick, error) {
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
