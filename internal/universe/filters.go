package universe

import (
	"math"
	"sort"
)

// Percentile returns the p-th percentile (0..100) of the finite values using
// linear interpolation between closest ranks. No finite values yields NaN.
func Percentile(values []float64, p float64) float64 {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return math.NaN()
	}
	sort.Float64s(sorted)

	p = math.Max(0, math.Min(100, p))
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// PercentileBetween keeps ids whose value lies within the [low, high]
// percentile band of the cross-section. Bounds are inclusive; NaN values never pass.
func PercentileBetween(values map[string]float64, low, high float64) map[string]bool {
	all := make([]float64, 0, len(values))
	for _, v := range values {
		all = append(all, v)
	}

	keep := make(map[string]bool)
	lo := Percentile(all, low)
	hi := Percentile(all, high)
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return keep
	}

	for id, v := range values {
		if !math.IsNaN(v) && v >= lo && v <= hi {
			keep[id] = true
		}
	}
	return keep
}

// Top returns the ids of the n largest finite values, largest first.
// Ties break on id so the result is deterministic.
func Top(values map[string]float64, n int) []string {
	ids := make([]string, 0, len(values))
	for id, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			ids = append(ids, id)
		}
	}

	sort.Slice(ids, func(i, j int) bool {
		vi, vj := values[ids[i]], values[ids[j]]
		if vi != vj {
			return vi > vj
		}
		return ids[i] < ids[j]
	})

	if n >= 0 && len(ids) > n {
		ids = ids[:n]
	}
	return ids
}
