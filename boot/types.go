// Package boot - sizing, spacing and sentinel errors for bootstrap
// window construction.
package boot

import (
	"errors"

	"github.com/katalvlaran/turbsf/field"
)

// Sentinel errors for bootstrap setup.
var (
	// ErrBadBootsize indicates a requested bootsize outside [1, axis length].
	ErrBadBootsize = errors.New("boot: bootsize must lie in [1, axis length]")
	// ErrBadShape indicates non-positive axis lengths.
	ErrBadShape = errors.New("boot: axis lengths must be positive")
)

// Sizes maps plane axes to bootstrap-window lengths.
type Sizes map[field.Axis]int

// Setup resolves the bootstrap window size for both plane axes and
// classifies which axes are bootstrappable. A missing request defaults
// to half the axis length (at least 1); an axis is bootstrappable when
// its window is strictly shorter than the axis, so distinct windows
// exist to resample.
//
// Returns the per-axis sizes, the bootstrappable axes in (row, col)
// order, and their count.
// Complexity: O(1).
func Setup(plane field.Plane, rows, cols int, requested Sizes) (Sizes, []field.Axis, int, error) {
	if !plane.Valid() {
		return nil, nil, 0, field.ErrUnsupportedPlane
	}
	if rows <= 0 || cols <= 0 {
		return nil, nil, 0, ErrBadShape
	}
	rowAxis, colAxis := plane.Dims()
	lengths := map[field.Axis]int{rowAxis: rows, colAxis: cols}

	sizes := make(Sizes, 2)
	for _, a := range []field.Axis{rowAxis, colAxis} {
		length := lengths[a]
		size, ok := requested[a]
		if !ok {
			size = length / 2
			if size < 1 {
				size = 1
			}
		}
		if size < 1 || size > length {
			return nil, nil, 0, ErrBadBootsize
		}
		sizes[a] = size
	}

	var bootstrappable []field.Axis
	for _, a := range []field.Axis{rowAxis, colAxis} {
		if sizes[a] < lengths[a] {
			bootstrappable = append(bootstrappable, a)
		}
	}
	return sizes, bootstrappable, len(bootstrappable), nil
}

// Spacings builds the adaptive spacing ladder: the strides usable when
// drawing bootstrap windows. The ladder is powers of two up to the
// largest stride for which every bootstrappable axis still admits at
// least one window (a window of length b with stride s spans s·(b−1)+1
// points), with that cap appended when it is not itself a power of two.
// With no bootstrappable axes the ladder is the single stride 1.
//
// Returns the per-axis stride caps and the ladder in increasing order.
// Complexity: O(log of the cap).
func Spacings(plane field.Plane, rows, cols int, sizes Sizes, bootstrappable []field.Axis) (map[field.Axis]int, []int) {
	rowAxis, colAxis := plane.Dims()
	lengths := map[field.Axis]int{rowAxis: rows, colAxis: cols}

	caps := make(map[field.Axis]int, len(bootstrappable))
	cap := 0
	for _, a := range bootstrappable {
		length, size := lengths[a], sizes[a]
		axisCap := 1
		if size > 1 {
			axisCap = (length - 1) / (size - 1)
		}
		if axisCap < 1 {
			axisCap = 1
		}
		caps[a] = axisCap
		if cap == 0 || axisCap < cap {
			cap = axisCap
		}
	}
	if cap == 0 {
		cap = 1
	}

	var ladder []int
	for s := 1; s <= cap; s *= 2 {
		ladder = append(ladder, s)
	}
	if last := ladder[len(ladder)-1]; last < cap {
		ladder = append(ladder, cap)
	}
	return caps, ladder
}
