package field

import "fmt"

// Dataset is a named collection of 2D grids sharing one plane and one
// shape, plus coordinate grids for both plane axes. A Dataset is
// immutable for the duration of a computation: construction validates
// and snapshots everything, and all derived views are fresh copies.
type Dataset struct {
	plane      Plane
	rows, cols int
	vars       map[string]*Grid
	coords     map[Axis]*Grid
}

// NewDataset validates and assembles a dataset. Every variable grid and
// both coordinate grids must share one shape, and coordinates must be
// present for both axes of the plane.
// Returns ErrUnsupportedPlane, ErrNoVariables, ErrMissingCoordinate or
// ErrGridShape on invalid input.
// Complexity: O(number of grids).
func NewDataset(plane Plane, vars map[string]*Grid, coords map[Axis]*Grid) (*Dataset, error) {
	if !plane.Valid() {
		return nil, ErrUnsupportedPlane
	}
	if len(vars) == 0 {
		return nil, ErrNoVariables
	}
	var rows, cols int
	for _, g := range vars {
		rows, cols = g.Rows(), g.Cols()
		break
	}
	for name, g := range vars {
		if g.Rows() != rows || g.Cols() != cols {
			return nil, fmt.Errorf("field: variable %q: %w", name, ErrGridShape)
		}
	}
	rowAxis, colAxis := plane.Dims()
	kept := map[Axis]*Grid{}
	for _, a := range []Axis{rowAxis, colAxis} {
		g, ok := coords[a]
		if !ok || g == nil {
			return nil, fmt.Errorf("field: axis %q: %w", a, ErrMissingCoordinate)
		}
		if g.Rows() != rows || g.Cols() != cols {
			return nil, fmt.Errorf("field: coordinate %q: %w", a, ErrGridShape)
		}
		kept[a] = g
	}
	vcopy := make(map[string]*Grid, len(vars))
	for name, g := range vars {
		vcopy[name] = g
	}
	return &Dataset{plane: plane, rows: rows, cols: cols, vars: vcopy, coords: kept}, nil
}

// Plane returns the dataset's plane. Complexity: O(1).
func (d *Dataset) Plane() Plane { return d.plane }

// Rows returns the length of the row axis. Complexity: O(1).
func (d *Dataset) Rows() int { return d.rows }

// Cols returns the length of the column axis. Complexity: O(1).
func (d *Dataset) Cols() int { return d.cols }

// Has reports whether a variable exists. Complexity: O(1).
func (d *Dataset) Has(name string) bool {
	_, ok := d.vars[name]
	return ok
}

// Var returns the grid for a named variable, or ErrMissingVariable.
func (d *Dataset) Var(name string) (*Grid, error) {
	g, ok := d.vars[name]
	if !ok {
		return nil, fmt.Errorf("field: %q: %w", name, ErrMissingVariable)
	}
	return g, nil
}

// Coord returns the coordinate grid of a plane axis, or
// ErrMissingCoordinate for an axis outside the plane.
func (d *Dataset) Coord(a Axis) (*Grid, error) {
	g, ok := d.coords[a]
	if !ok {
		return nil, fmt.Errorf("field: axis %q: %w", a, ErrMissingCoordinate)
	}
	return g, nil
}

// PlaneCoords returns the coordinate grids along the plane's column
// (abscissa) and row (ordinate) directions. For the (z,y) plane the
// abscissa is the y coordinate and the ordinate is z, matching the
// plane ordering returned by Dims.
func (d *Dataset) PlaneCoords() (abscissa, ordinate *Grid) {
	rowAxis, colAxis := d.plane.Dims()
	return d.coords[colAxis], d.coords[rowAxis]
}

// Select returns a new dataset restricted to the given row and column
// indices, in order, applied to every variable and coordinate grid. A
// nil slice keeps that axis whole. Indices may repeat (sampling with
// replacement) but must lie within the axis bounds.
// Returns ErrEmptySelection or ErrIndexRange on invalid selections.
// Complexity: O(grids × kept area).
func (d *Dataset) Select(rowIdx, colIdx []int) (*Dataset, error) {
	if err := checkIndices(rowIdx, d.rows); err != nil {
		return nil, err
	}
	if err := checkIndices(colIdx, d.cols); err != nil {
		return nil, err
	}
	vars := make(map[string]*Grid, len(d.vars))
	for name, g := range d.vars {
		vars[name] = g.gather(rowIdx, colIdx)
	}
	coords := make(map[Axis]*Grid, len(d.coords))
	for a, g := range d.coords {
		coords[a] = g.gather(rowIdx, colIdx)
	}
	out := &Dataset{plane: d.plane, vars: vars, coords: coords}
	for _, g := range vars {
		out.rows, out.cols = g.Rows(), g.Cols()
		break
	}
	return out, nil
}

// checkIndices validates one axis selection against the axis length.
func checkIndices(idx []int, n int) error {
	if idx == nil {
		return nil
	}
	if len(idx) == 0 {
		return ErrEmptySelection
	}
	for _, i := range idx {
		if i < 0 || i >= n {
			return fmt.Errorf("field: index %d on axis of length %d: %w", i, n, ErrIndexRange)
		}
	}
	return nil
}
