package domain

import (
	"math"
	"time"
)

// Tick represents one timestamped trade observation for one instrument.
// Ticks are immutable once created: the stream client and the file loaders
// construct them, everything downstream only reads them.
type Tick struct {
	Timestamp float64 // Unix seconds; millisecond feeds keep the remainder as a fraction
	Symbol    string  // instrument identifier, e.g. BTCUSDT
	Price     float64
	Size      float64
}

// Valid reports whether the tick satisfies the ingestion invariant:
// finite, non-negative price and size, a symbol, and a positive timestamp.
func (t Tick) Valid() bool {
	if t.Symbol == "" || t.Timestamp <= 0 {
		return false
	}
	for _, v := range []float64{t.Price, t.Size} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}

// Time converts the float timestamp to a time.Time at nanosecond resolution.
func (t Tick) Time() time.Time {
	sec := int64(t.Timestamp)
	nsec := int64((t.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

// TimestampFromTime converts a time.Time back to the float Unix-seconds form.
func TimestampFromTime(ts time.Time) float64 {
	return float64(ts.UnixNano()) / 1e9
}
