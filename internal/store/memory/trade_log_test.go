package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statarb-lab/internal/domain"
	"statarb-lab/internal/store"
)

func tick(ts float64, sym string, price float64) domain.Tick {
	return domain.Tick{Timestamp: ts, Symbol: sym, Price: price, Size: 1}
}

func TestUpsertIdempotent(t *testing.T) {
	ctx := context.Background()
	l := NewTradeLog()

	first := tick(100, "BTCUSDT", 50000)
	require.NoError(t, l.Upsert(ctx, first))

	// Same key, different price: first write wins.
	dup := first
	dup.Price = 99999
	require.NoError(t, l.Upsert(ctx, dup))

	assert.Equal(t, 1, l.Len())

	rows, err := l.RecentRows(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 50000.0, rows[0].Price)
}

func TestUpsertRejectsInvalidTick(t *testing.T) {
	ctx := context.Background()
	l := NewTradeLog()

	err := l.Upsert(ctx, domain.Tick{Timestamp: 100, Symbol: "", Price: 1, Size: 1})
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	err = l.Upsert(ctx, domain.Tick{Timestamp: 100, Symbol: "BTCUSDT", Price: -1, Size: 1})
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	assert.Equal(t, 0, l.Len())
}

func TestRecentRowsNewestFirst(t *testing.T) {
	ctx := context.Background()
	l := NewTradeLog()

	for _, ts := range []float64{10, 30, 20} {
		require.NoError(t, l.Upsert(ctx, tick(ts, "BTCUSDT", ts)))
	}

	rows, err := l.RecentRows(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 30.0, rows[0].Timestamp)
	assert.Equal(t, 20.0, rows[1].Timestamp)
}

func TestRecentRowsInvalidLimit(t *testing.T) {
	l := NewTradeLog()
	_, err := l.RecentRows(context.Background(), 0)
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	l := NewTradeLog()

	require.NoError(t, l.Upsert(ctx, tick(1, "BTCUSDT", 1)))
	require.NoError(t, l.Clear(ctx))
	assert.Equal(t, 0, l.Len())
}
