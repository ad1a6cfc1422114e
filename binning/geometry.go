package binning

import (
	"math"
	"sort"
)

// classifyScale decides linear vs logarithmic spacing from the ratios
// of consecutive edges: a near-constant ratio distinct from 1 means a
// logarithmic grid, anything else is treated as linear. The ratio test
// only applies when every edge is strictly positive.
func classifyScale(edges []float64) Scale {
	if len(edges) < 3 {
		return Linear
	}
	for _, e := range edges {
		if e <= 0 {
			return Linear
		}
	}
	ratios := make([]float64, len(edges)-1)
	var mean float64
	for i := range ratios {
		ratios[i] = edges[i+1] / edges[i]
		mean += ratios[i]
	}
	mean /= float64(len(ratios))
	var variance float64
	for _, r := range ratios {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(ratios))
	// Constant ratio (CV below 1%) away from 1 is a geometric grid.
	if math.Sqrt(variance)/mean < 0.01 && math.Abs(mean-1) > 0.01 {
		return Log
	}
	return Linear
}

// binCenters returns one center per bin: arithmetic means for linear
// edges, geometric means for logarithmic ones.
func binCenters(edges []float64, scale Scale) []float64 {
	centers := make([]float64, len(edges)-1)
	for i := range centers {
		if scale == Log {
			centers[i] = math.Sqrt(edges[i] * edges[i+1])
		} else {
			centers[i] = 0.5 * (edges[i] + edges[i+1])
		}
	}
	return centers
}

// binWidths returns per-bin widths, used as area factors in the density
// heuristic.
func binWidths(edges []float64) []float64 {
	widths := make([]float64, len(edges)-1)
	for i := range widths {
		widths[i] = edges[i+1] - edges[i]
	}
	return widths
}

// bucket locates the bin containing v under half-open [lo, hi)
// semantics, with the final bin closed so the last edge is included.
// Returns -1 when v is out of range or NaN.
func bucket(edges []float64, v float64) int {
	if math.IsNaN(v) || v < edges[0] || v > edges[len(edges)-1] {
		return -1
	}
	if v == edges[len(edges)-1] {
		return len(edges) - 2
	}
	// sort.SearchFloat64s finds the first edge > v after the offset
	// adjustment, so i-1 is the containing bin.
	i := sort.SearchFloat64s(edges, v)
	if i < len(edges) && edges[i] == v {
		return i
	}
	return i - 1
}

// validateEdges rejects edge slices that are too short or not strictly
// increasing.
func validateEdges(edges []float64) error {
	if len(edges) < 2 {
		return ErrTooFewEdges
	}
	for i := 1; i < len(edges); i++ {
		if !(edges[i] > edges[i-1]) {
			return ErrEdgesNotIncreasing
		}
	}
	return nil
}
