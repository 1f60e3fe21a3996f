// README: compute_stats_generic-equivalent aggregation (§4.11), grounded
// directly on original_source's FoodDeliverySimpyEnv.calculate_stats_generic
// (mean/std_dev/median/mode over a flat list of numeric samples),
// reimplemented over []float64 in Go rather than ported with numpy's exact
// floating-point reduction order.
package metrics

import "math"

// Stats mirrors the original's per-field aggregate: mean, population
// standard deviation (0 for a single-sample list, matching the original's
// "if len(values) > 1 else 0.0"), median, and mode (most frequent value,
// ties broken by first occurrence, matching Python's Counter.most_common).
type Stats struct {
	Mean   float64
	StdDev float64
	Median float64
	Mode   float64
	Count  int
}

// ComputeStats aggregates a flat list of metric samples. An empty slice
// returns the zero Stats, matching the original's "if not values: return {}".
func ComputeStats(values []float64) Stats {
	n := len(values)
	if n == 0 {
		return Stats{}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var variance float64
	if n > 1 {
		for _, v := range values {
			d := v - mean
			variance += d * d
		}
		variance /= float64(n)
	}

	sorted := append([]float64(nil), values...)
	insertionSort(sorted)
	median := medianOf(sorted)

	return Stats{
		Mean:   mean,
		StdDev: math.Sqrt(variance),
		Median: median,
		Mode:   modeOf(values),
		Count:  n,
	}
}

func insertionSort(vs []float64) {
	for i := 1; i < len(vs); i++ {
		v := vs[i]
		j := i - 1
		for j >= 0 && vs[j] > v {
			vs[j+1] = vs[j]
			j--
		}
		vs[j+1] = v
	}
}

func medianOf(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// modeOf returns the most frequent value, first-occurrence ties broken in
// favor of whichever value was seen earliest (Counter.most_common(1) breaks
// ties by insertion order into the counter).
func modeOf(values []float64) float64 {
	counts := make(map[float64]int, len(values))
	order := make([]float64, 0, len(values))
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best := order[0]
	bestCount := counts[best]
	for _, v := range order[1:] {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}
