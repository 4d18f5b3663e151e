package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"statarb-lab/internal/domain"
)

func tick(ts float64, sym string, price float64) domain.Tick {
	return domain.Tick{Timestamp: ts, Symbol: sym, Price: price, Size: 1}
}

func TestRingBufferAppendBelowCapacity(t *testing.T) {
	rb := NewRingBuffer(5)
	rb.Append(tick(1, "A", 10))
	rb.Append(tick(2, "A", 11))

	assert.Equal(t, 2, rb.Len())
	assert.Equal(t, 5, rb.Cap())

	snap := rb.Snapshot()
	assert.Equal(t, 10.0, snap[0].Price)
	assert.Equal(t, 11.0, snap[1].Price)
}

func TestRingBufferEvictsOldest(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := 0; i < 7; i++ {
		rb.Append(tick(float64(i), "A", float64(100+i)))
	}

	assert.Equal(t, 3, rb.Len())

	snap := rb.Snapshot()
	assert.Equal(t, []float64{4, 5, 6}, []float64{snap[0].Timestamp, snap[1].Timestamp, snap[2].Timestamp})
}

func TestRingBufferCapacityNeverGrows(t *testing.T) {
	rb := NewRingBuffer(2)
	for i := 0; i < 100; i++ {
		rb.Append(tick(float64(i), "A", 1))
	}
	assert.Equal(t, 2, rb.Cap())
	assert.Equal(t, 2, rb.Len())
}

func TestRingBufferSnapshotIsCopy(t *testing.T) {
	rb := NewRingBuffer(2)
	rb.Append(tick(1, "A", 10))

	snap := rb.Snapshot()
	snap[0].Price = 999

	assert.Equal(t, 10.0, rb.Snapshot()[0].Price)
}
