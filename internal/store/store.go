package store

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"statarb-lab/internal/domain"
	"statarb-lab/internal/observability"
)

// TickStore is the hybrid storage engine: one fixed-capacity ring buffer per
// instrument for low-latency recent reads, plus a durable TradeLog for full
// history and coarse resampling.
//
// A single mutex guards all ring buffers for the duration of an append or a
// full snapshot, so readers never observe a partially-appended state. The
// durable write happens outside that critical section; a failure there is
// logged and counted but never rolls back the memory write and never reaches
// the stream client.
type TickStore struct {
	mu      sync.Mutex // guards every ring buffer
	buffers map[string]*RingBuffer
	symbols []string

	tradeLog TradeLog
	logger   *log.Logger
	metrics  *observability.Metrics
}

// NewTickStore creates a store for the given instrument set with per-symbol
// buffers of the given capacity. tradeLog may not be nil; use the memory
// backend when no durable store is configured.
func NewTickStore(symbols []string, capacity int, tradeLog TradeLog, logger *log.Logger, metrics *observability.Metrics) *TickStore {
	buffers := make(map[string]*RingBuffer, len(symbols))
	for _, sym := range symbols {
		buffers[sym] = NewRingBuffer(capacity)
	}
	return &TickStore{
		buffers:  buffers,
		symbols:  append([]string(nil), symbols...),
		tradeLog: tradeLog,
		logger:   logger,
		metrics:  metrics,
	}
}

// Write appends the tick to its instrument's ring buffer and then attempts
// the durable upsert. Ticks for unknown instruments are dropped. Write never
// returns an error: every failure mode here degrades to a logged counter.
func (s *TickStore) Write(ctx context.Context, t domain.Tick) {
	s.mu.Lock()
	buf, ok := s.buffers[t.Symbol]
	buffered := 0
	if ok {
		buf.Append(t)
		buffered = buf.Len()
	}
	s.mu.Unlock()

	if !ok {
		s.logger.WithField("symbol", t.Symbol).Debug("tick for unsubscribed symbol dropped")
		return
	}
	if s.metrics != nil {
		s.metrics.TicksStored.Inc()
		s.metrics.BufferSize.WithLabelValues(t.Symbol).Set(float64(buffered))
	}

	if err := s.tradeLog.Upsert(ctx, t); err != nil {
		if s.metrics != nil {
			s.metrics.LogWriteFailures.Inc()
		}
		s.logger.WithError(err).WithField("symbol", t.Symbol).Warn("durable tick write failed")
	}
}

// Recent snapshots all ring buffers and returns the combined ticks sorted by
// timestamp. The mutex is held only for the copy.
func (s *TickStore) Recent() []domain.Tick {
	s.mu.Lock()
	var all []domain.Tick
	for _, sym := range s.symbols {
		all = append(all, s.buffers[sym].Snapshot()...)
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Timestamp < all[j].Timestamp })
	return all
}

// Symbols returns the instrument set the store was built with.
func (s *TickStore) Symbols() []string {
	return append([]string(nil), s.symbols...)
}

// ResampledRow is one interval bucket with the last observed price per
// instrument.
type ResampledRow struct {
	Timestamp time.Time          `json:"timestamp"`
	Prices    map[string]float64 `json:"prices"`
}

// Resampled reads recent history from the durable log, pivots it into one
// row per timestamp with one column per instrument, forward-fills, and
// downsamples to interval buckets with last-price semantics. At most
// limit*10 raw rows are read to bound the query; the last limit buckets are
// returned. Rows where any instrument is still unobserved are dropped.
func (s *TickStore) Resampled(ctx context.Context, interval time.Duration, limit int) ([]ResampledRow, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if limit <= 0 {
		return nil, ErrInvalidInput
	}

	rows, err := s.tradeLog.RecentRows(ctx, limit*10)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// RecentRows is newest-first; pivot wants ascending time.
	sort.Slice(rows, func(i, j int) bool { return rows[i].Timestamp < rows[j].Timestamp })

	// Bucket by interval, keeping the last price per (bucket, symbol).
	ivl := interval.Seconds()
	type bucketKey = float64
	buckets := make(map[bucketKey]map[string]float64)
	var order []bucketKey
	for _, t := range rows {
		k := math.Floor(t.Timestamp/ivl) * ivl
		m, ok := buckets[k]
		if !ok {
			m = make(map[string]float64, len(s.symbols))
			buckets[k] = m
			order = append(order, k)
		}
		m[t.Symbol] = t.Price
	}
	sort.Float64s(order)

	// Forward-fill and drop leading buckets missing any instrument.
	last := make(map[string]float64, len(s.symbols))
	var out []ResampledRow
	for _, k := range order {
		for sym, p := range buckets[k] {
			last[sym] = p
		}
		if len(last) < len(s.symbols) {
			continue
		}
		prices := make(map[string]float64, len(last))
		for sym, p := range last {
			prices[sym] = p
		}
		sec := int64(k)
		nsec := int64((k - float64(sec)) * 1e9)
		out = append(out, ResampledRow{Timestamp: time.Unix(sec, nsec).UTC(), Prices: prices})
	}

	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Clear empties the durable log. In-memory buffers are unaffected.
func (s *TickStore) Clear(ctx context.Context) error {
	return s.tradeLog.Clear(ctx)
}
