package memory

import (
	"context"
	"sort"
	"sync"

	"statarb-lab/internal/domain"
	"statarb-lab/internal/store"
)

// TradeLog is an in-memory implementation of store.TradeLog, used by tests
// and by deployments that run without a database.
type TradeLog struct {
	mu   sync.RWMutex
	data map[key]domain.Tick
}

type key struct {
	timestamp float64
	symbol    string
}

// NewTradeLog creates an empty in-memory trade log.
func NewTradeLog() *TradeLog {
	return &TradeLog{data: make(map[key]domain.Tick)}
}

// Compile-time interface check.
var _ store.TradeLog = (*TradeLog)(nil)

// Upsert stores the tick. Duplicate (timestamp, symbol) keys are no-ops.
func (l *TradeLog) Upsert(_ context.Context, t domain.Tick) error {
	if !t.Valid() {
		return store.ErrInvalidInput
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	k := key{t.Timestamp, t.Symbol}
	if _, exists := l.data[k]; exists {
		return nil
	}
	l.data[k] = t
	return nil
}

// RecentRows returns up to limit ticks ordered by timestamp descending.
func (l *TradeLog) RecentRows(_ context.Context, limit int) ([]domain.Tick, error) {
	if limit <= 0 {
		return nil, store.ErrInvalidInput
	}

	l.mu.RLock()
	all := make([]domain.Tick, 0, len(l.data))
	for _, t := range l.data {
		all = append(all, t)
	}
	l.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Timestamp != all[j].Timestamp {
			return all[i].Timestamp > all[j].Timestamp
		}
		return all[i].Symbol > all[j].Symbol
	})

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Clear removes all rows.
func (l *TradeLog) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = make(map[key]domain.Tick)
	return nil
}

// Close is a no-op for the in-memory log.
func (l *TradeLog) Close() error { return nil }

// Len returns the number of stored rows. Test helper.
func (l *TradeLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.data)
}
