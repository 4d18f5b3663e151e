package store

import "statarb-lab/internal/domain"

// RingBuffer is a fixed-capacity, insertion-ordered tick buffer with strict
// FIFO eviction. Capacity is set at construction and never grows. It is not
// safe for concurrent use on its own; the TickStore's mutex guards it.
type RingBuffer struct {
	buf   []domain.Tick
	head  int // index of the oldest element
	count int
}

// NewRingBuffer creates a buffer holding at most capacity ticks.
// Capacity must be positive.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &RingBuffer{buf: make([]domain.Tick, capacity)}
}

// Append adds a tick, evicting the oldest one when full.
func (r *RingBuffer) Append(t domain.Tick) {
	tail := (r.head + r.count) % len(r.buf)
	r.buf[tail] = t
	if r.count < len(r.buf) {
		r.count++
		return
	}
	// Full: tail just overwrote head.
	r.head = (r.head + 1) % len(r.buf)
}

// Len returns the number of buffered ticks.
func (r *RingBuffer) Len() int { return r.count }

// Cap returns the fixed capacity.
func (r *RingBuffer) Cap() int { return len(r.buf) }

// Snapshot copies the buffered ticks in insertion order.
func (r *RingBuffer) Snapshot() []domain.Tick {
	out := make([]domain.Tick, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}
