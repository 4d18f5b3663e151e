// Package align normalizes heterogeneous tick inputs (live buffers or
// uploaded files) into a single regularly-indexed two-instrument series.
//
// Failure semantics follow the rest of the pipeline: structurally usable
// input that simply does not contain enough information (missing canonical
// columns, no data for a selected instrument) fails softly with an empty
// series and a nil error; input that cannot be interpreted at all (unparseable
// values) returns ErrMalformedInput. Callers branch on the two cases
// differently: empty means "not ready yet", malformed means "reject the file".
package align

import (
	"errors"
	"sort"
	"strings"

	"statarb-lab/internal/domain"
)

// ErrMalformedInput is returned when a table's values cannot be parsed.
// Discard granularity is the whole file.
var ErrMalformedInput = errors.New("malformed input")

// Canonical column names after alias normalization.
const (
	colTimestamp = "timestamp"
	colSymbol    = "symbol"
	colPrice     = "price"
	colVolume    = "volume"
)

// Wide-shape column names (the engine's own analytics export).
const (
	colX    = "x"
	colY    = "y"
	colVolX = "vol_x"
	colVolY = "vol_y"
)

// aliases maps accepted column-name aliases to canonical names. Matching is
// case-insensitive and whitespace-trimmed; first match wins, and a column
// that already carries the canonical name takes precedence over any alias.
var aliases = map[string]string{
	"close":      colPrice,
	"last":       colPrice,
	"ticker":     colSymbol,
	"pair":       colSymbol,
	"instrument": colSymbol,
	"date":       colTimestamp,
	"time":       colTimestamp,
	"datetime":   colTimestamp,
	"size":       colVolume,
	"qty":        colVolume,
}

// Table is loosely-typed tabular input, typically a parsed CSV file.
type Table struct {
	Header  []string
	Records [][]string
}

// longRow is one observation in long format after parsing.
type longRow struct {
	timestamp float64
	symbol    string
	price     float64
	volume    float64
}

// FromTicks aligns live ticks for the selected instrument pair.
func FromTicks(ticks []domain.Tick, symX, symY string) *domain.AlignedSeries {
	rows := make([]longRow, 0, len(ticks))
	for _, t := range ticks {
		rows = append(rows, longRow{t.Timestamp, t.Symbol, t.Price, t.Size})
	}
	return pivot(rows, symX, symY)
}

// FromTable aligns a loosely-typed table in either the wide (pre-aligned)
// or the long shape.
func FromTable(tbl Table, symX, symY string) (*domain.AlignedSeries, error) {
	cols := normalizeHeader(tbl.Header)

	if _, okX := cols[colX]; okX {
		if _, okY := cols[colY]; okY {
			return fromWide(tbl, cols)
		}
	}

	// Long shape requires the canonical triple; fail softly otherwise.
	for _, required := range []string{colTimestamp, colSymbol, colPrice} {
		if _, ok := cols[required]; !ok {
			return &domain.AlignedSeries{}, nil
		}
	}

	rows, err := parseLong(tbl, cols)
	if err != nil {
		return nil, err
	}
	return pivot(rows, symX, symY), nil
}

// normalizeHeader maps column positions by canonical name. Canonical names
// claim their position first; aliases fill the gaps in header order.
func normalizeHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))

	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		if isCanonical(name) {
			if _, taken := cols[name]; !taken {
				cols[name] = i
			}
		}
	}
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		canonical, ok := aliases[name]
		if !ok {
			continue
		}
		if _, taken := cols[canonical]; !taken {
			cols[canonical] = i
		}
	}
	return cols
}

func isCanonical(name string) bool {
	switch name {
	case colTimestamp, colSymbol, colPrice, colVolume, colX, colY, colVolX, colVolY:
		return true
	}
	return false
}

// fromWide passes a pre-aligned table through, coercing the timestamp column
// to a time index. Missing volume columns default to zero; a missing
// timestamp column falls back to row order at one-second spacing.
func fromWide(tbl Table, cols map[string]int) (*domain.AlignedSeries, error) {
	type wideRow struct {
		ts, x, y, volX, volY float64
	}
	rows := make([]wideRow, 0, len(tbl.Records))

	tsIdx, hasTS := cols[colTimestamp]
	volXIdx, hasVolX := cols[colVolX]
	volYIdx, hasVolY := cols[colVolY]

	for i, rec := range tbl.Records {
		var r wideRow
		var err error

		if r.x, err = parseFloat(field(rec, cols[colX])); err != nil {
			return nil, ErrMalformedInput
		}
		if r.y, err = parseFloat(field(rec, cols[colY])); err != nil {
			return nil, ErrMalformedInput
		}
		if hasTS {
			if r.ts, err = parseTimestamp(field(rec, tsIdx)); err != nil {
				return nil, ErrMalformedInput
			}
		} else {
			r.ts = float64(i)
		}
		if hasVolX {
			if r.volX, err = parseFloat(field(rec, volXIdx)); err != nil {
				return nil, ErrMalformedInput
			}
		}
		if hasVolY {
			if r.volY, err = parseFloat(field(rec, volYIdx)); err != nil {
				return nil, ErrMalformedInput
			}
		}
		rows = append(rows, r)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ts < rows[j].ts })

	out := &domain.AlignedSeries{}
	for _, r := range rows {
		// Deduplicate by timestamp, last row wins.
		if n := out.Len(); n > 0 && domain.TimestampFromTime(out.Timestamps[n-1]) == r.ts {
			out.X[n-1], out.Y[n-1] = r.x, r.y
			out.VolX[n-1], out.VolY[n-1] = r.volX, r.volY
			continue
		}
		out.Timestamps = append(out.Timestamps, domain.Tick{Timestamp: r.ts}.Time())
		out.X = append(out.X, r.x)
		out.Y = append(out.Y, r.y)
		out.VolX = append(out.VolX, r.volX)
		out.VolY = append(out.VolY, r.volY)
	}
	return out, nil
}

// parseLong extracts long-format rows from the table.
func parseLong(tbl Table, cols map[string]int) ([]longRow, error) {
	volIdx, hasVol := cols[colVolume]

	rows := make([]longRow, 0, len(tbl.Records))
	for _, rec := range tbl.Records {
		var r longRow
		var err error

		if r.timestamp, err = parseTimestamp(field(rec, cols[colTimestamp])); err != nil {
			return nil, ErrMalformedInput
		}
		r.symbol = strings.TrimSpace(field(rec, cols[colSymbol]))
		if r.symbol == "" {
			return nil, ErrMalformedInput
		}
		if r.price, err = parseFloat(field(rec, cols[colPrice])); err != nil {
			return nil, ErrMalformedInput
		}
		if hasVol {
			if r.volume, err = parseFloat(field(rec, volIdx)); err != nil {
				return nil, ErrMalformedInput
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// pivot turns long rows into the aligned two-instrument series: one row per
// unique timestamp, last price and summed volume per (timestamp, symbol),
// prices forward-filled, leading rows dropped until both instruments have
// been observed. Returns an empty series when either instrument is absent.
func pivot(rows []longRow, symX, symY string) *domain.AlignedSeries {
	if len(rows) == 0 {
		return &domain.AlignedSeries{}
	}

	type cell struct {
		price  float64
		volume float64
		seen   bool
	}
	type bucket struct {
		x, y cell
	}

	buckets := make(map[float64]*bucket)
	var stamps []float64
	haveX, haveY := false, false

	for _, r := range rows {
		var side *cell
		switch r.symbol {
		case symX:
			haveX = true
		case symY:
			haveY = true
		default:
			continue
		}

		b, ok := buckets[r.timestamp]
		if !ok {
			b = &bucket{}
			buckets[r.timestamp] = b
			stamps = append(stamps, r.timestamp)
		}
		if r.symbol == symX {
			side = &b.x
		} else {
			side = &b.y
		}
		side.price = r.price // LAST by arrival order
		side.volume += r.volume
		side.seen = true
	}

	if !haveX || !haveY {
		return &domain.AlignedSeries{}
	}
	sort.Float64s(stamps)

	out := &domain.AlignedSeries{}
	var lastX, lastY float64
	seenX, seenY := false, false
	for _, ts := range stamps {
		b := buckets[ts]
		volX, volY := 0.0, 0.0
		if b.x.seen {
			lastX, seenX = b.x.price, true
			volX = b.x.volume
		}
		if b.y.seen {
			lastY, seenY = b.y.price, true
			volY = b.y.volume
		}
		if !seenX || !seenY {
			continue // leading gap before both instruments observed
		}
		out.Timestamps = append(out.Timestamps, domain.Tick{Timestamp: ts}.Time())
		out.X = append(out.X, lastX)
		out.Y = append(out.Y, lastY)
		out.VolX = append(out.VolX, volX)
		out.VolY = append(out.VolY, volY)
	}
	return out
}

func field(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}
