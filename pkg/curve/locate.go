package curve

import (
	"math"
	"sort"
)

// Locate finds the segment i such that times[i] <= t < times[i+1].
//
// It reports false when t lies outside [times[0], times[n-1]), when t is NaN,
// or when fewer than two times are given. times must be sorted ascending.
func Locate(times []float64, t float64) (int, bool) {
	n := len(times)
	if n < 2 || math.IsNaN(t) || t < times[0] || t >= times[n-1] {
		return -1, false
	}

	// First index whose time is strictly after t.
	idx := sort.Search(n, func(i int) bool {
		return times[i] > t
	})
	return idx - 1, true
}
