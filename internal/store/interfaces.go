package store

import (
	"context"

	"statarb-lab/internal/domain"
)

// TradeLog is the durable, append-only side of the hybrid store. The log's
// primary key is (timestamp, symbol): an Upsert for an existing key is a
// no-op, not an error, so re-delivered ticks are absorbed silently.
// Durability is best-effort; the in-memory buffers remain the source of
// truth for live analytics.
type TradeLog interface {
	// Upsert stores the tick, ignoring duplicate (timestamp, symbol) keys.
	Upsert(ctx context.Context, t domain.Tick) error

	// RecentRows returns up to limit rows ordered by timestamp descending.
	RecentRows(ctx context.Context, limit int) ([]domain.Tick, error)

	// Clear removes all rows from the log.
	Clear(ctx context.Context) error

	// Close releases the underlying connection resources.
	Close() error
}
