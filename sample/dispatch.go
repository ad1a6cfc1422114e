package sample

import (
	"fmt"

	"github.com/katalvlaran/turbsf/boot"
	"github.com/katalvlaran/turbsf/field"
	"github.com/katalvlaran/turbsf/kernel"
)

// Compute dispatches one structure-function evaluation. When win is
// non-nil and at least one axis is bootstrappable, the dataset is first
// restricted to the selected index column per bootstrappable axis — an
// axis whose spacing has no table entry falls back to the whole axis —
// and the kernel then runs on the restricted window. With no
// bootstrappable axes or a nil window the full dataset passes through
// unchanged.
//
// Fails with field.ErrMissingVariable before any computation when a
// role-assigned variable is absent, and with ErrDrawRange when a draw
// index exceeds the available columns.
func Compute(ds *field.Dataset, kind kernel.Kind, roles field.Roles, order kernel.Order,
	table *boot.Table, axes []field.Axis, win *Window) (kernel.Batch, error) {
	if ds == nil {
		return kernel.Batch{}, ErrNilDataset
	}
	for _, name := range roles.Names() {
		if !ds.Has(name) {
			return kernel.Batch{}, fmt.Errorf("sample: %q: %w", name, field.ErrMissingVariable)
		}
	}

	subset := ds
	if win != nil && table != nil && len(axes) > 0 {
		rowAxis, colAxis := ds.Plane().Dims()
		var rowIdx, colIdx []int
		for _, a := range axes {
			columns := table.Columns(win.Spacing, a)
			if len(columns) == 0 {
				continue // no window fits: keep the whole axis
			}
			draw := win.Draw[a]
			if draw < 0 || draw >= len(columns) {
				return kernel.Batch{}, fmt.Errorf("sample: axis %q draw %d of %d: %w", a, draw, len(columns), ErrDrawRange)
			}
			switch a {
			case rowAxis:
				rowIdx = columns[draw]
			case colAxis:
				colIdx = columns[draw]
			}
		}
		if rowIdx != nil || colIdx != nil {
			sub, err := ds.Select(rowIdx, colIdx)
			if err != nil {
				return kernel.Batch{}, err
			}
			subset = sub
		}
	}
	return kernel.Evaluate(kind, subset, roles, order)
}
