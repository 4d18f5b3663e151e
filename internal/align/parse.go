package align

import (
	"math"
	"strconv"
	"strings"
	"time"

	"statarb-lab/internal/domain"
)

// timestampLayouts are tried in order for non-numeric timestamp values.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// parseTimestamp accepts float Unix seconds or a textual datetime and
// returns float Unix seconds.
func parseTimestamp(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return 0, ErrMalformedInput
		}
		return v, nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return domain.TimestampFromTime(ts), nil
		}
	}
	return 0, ErrMalformedInput
}

// parseFloat parses a finite float. Empty fields read as zero so sparse
// volume columns don't reject the file.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrMalformedInput
	}
	return v, nil
}
