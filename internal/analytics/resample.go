package analytics

import (
	"sort"
	"time"

	"statarb-lab/internal/domain"
)

// Resample downsamples a computed series to fixed time buckets.
// Aggregation: last value for prices, beta, alpha and z-score; sum for
// volumes; mean for spread. Aggregates skip undefined values; buckets where
// any aggregate remains undefined are dropped. Metric columns are only
// aggregated when present on the input.
func Resample(m *domain.MetricSeries, interval time.Duration) *domain.MetricSeries {
	if m.Empty() || interval <= 0 {
		return &domain.MetricSeries{}
	}

	type bucket struct {
		start                  time.Time
		x, y, beta, alpha, z   float64
		volX, volY             float64
		spreadSum              float64
		spreadN                int
		hasX, hasBeta, hasZ    bool
		hasAlpha               bool
	}

	withMetrics := m.HasMetrics()
	withZ := m.HasZScore()

	buckets := make(map[int64]*bucket)
	var order []int64
	for i := 0; i < m.Len(); i++ {
		k := m.Timestamps[i].Truncate(interval).UnixNano()
		b, ok := buckets[k]
		if !ok {
			b = &bucket{start: m.Timestamps[i].Truncate(interval)}
			buckets[k] = b
			order = append(order, k)
		}

		b.x, b.y, b.hasX = m.X[i], m.Y[i], true
		b.volX += m.VolX[i]
		b.volY += m.VolY[i]

		if withMetrics {
			if !domain.IsUndefined(m.Beta[i]) {
				b.beta, b.hasBeta = m.Beta[i], true
			}
			if !domain.IsUndefined(m.Alpha[i]) {
				b.alpha, b.hasAlpha = m.Alpha[i], true
			}
			if !domain.IsUndefined(m.Spread[i]) {
				b.spreadSum += m.Spread[i]
				b.spreadN++
			}
		}
		if withZ && !domain.IsUndefined(m.ZScore[i]) {
			b.z, b.hasZ = m.ZScore[i], true
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	out := &domain.MetricSeries{}
	if withMetrics {
		out.Beta = []float64{}
		out.Alpha = []float64{}
		out.Spread = []float64{}
	}
	if withZ {
		out.ZScore = []float64{}
	}

	for _, k := range order {
		b := buckets[k]
		if !b.hasX {
			continue
		}
		if withMetrics && (!b.hasBeta || !b.hasAlpha || b.spreadN == 0) {
			continue
		}
		if withZ && !b.hasZ {
			continue
		}

		out.Timestamps = append(out.Timestamps, b.start)
		out.X = append(out.X, b.x)
		out.Y = append(out.Y, b.y)
		out.VolX = append(out.VolX, b.volX)
		out.VolY = append(out.VolY, b.volY)
		if withMetrics {
			out.Beta = append(out.Beta, b.beta)
			out.Alpha = append(out.Alpha, b.alpha)
			out.Spread = append(out.Spread, b.spreadSum/float64(b.spreadN))
		}
		if withZ {
			out.ZScore = append(out.ZScore, b.z)
		}
	}

	return out
}
