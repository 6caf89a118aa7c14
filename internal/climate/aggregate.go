package climate

import "math"

// Aggregate reduces an ordered series to one averaged point per period.
// Points sharing a period key must be contiguous; output follows first-seen
// key order. Averages are rounded to one decimal.
func Aggregate(points []Point, period Period) []Point {
	out := make([]Point, 0)
	if len(points) == 0 {
		return out
	}

	var (
		key   = PeriodKey(points[0].T, period)
		sum   float64
		count int
	)

	for _, p := range points {
		k := PeriodKey(p.T, period)
		if k != key {
			out = append(out, Point{T: key, V: round1(sum / float64(count))})
			key, sum, count = k, 0, 0
		}
		sum += p.V
		count++
	}
	out = append(out, Point{T: key, V: round1(sum / float64(count))})

	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
