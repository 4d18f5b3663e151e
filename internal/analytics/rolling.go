package analytics

import (
	"math"

	"github.com/montanaflynn/stats"
)

// rolling evaluates fn over each trailing window. Rows before the window
// fills hold NaN; a window containing an undefined value yields NaN rather
// than letting the aggregate fold NaN into an arbitrary result.
func rolling(vals []float64, window int, fn func(stats.Float64Data) (float64, error)) []float64 {
	out := make([]float64, len(vals))
	for i := range out {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		w := vals[i-window+1 : i+1]
		if hasNaN(w) {
			out[i] = math.NaN()
			continue
		}
		v, err := fn(w)
		if err != nil {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

func hasNaN(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
