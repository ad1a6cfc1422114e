// Package field defines core types, sentinel errors and the role
// manifest for gridded physical fields on a two-dimensional plane.
package field

import "errors"

// Sentinel errors for field operations.
var (
	// ErrEmptyGrid indicates a grid with no rows or no columns.
	ErrEmptyGrid = errors.New("field: grid must have at least one row and one column")
	// ErrShapeMismatch indicates a data buffer whose length does not match rows*cols.
	ErrShapeMismatch = errors.New("field: data length does not match rows*cols")
	// ErrGridShape indicates grids of differing shapes inside one dataset.
	ErrGridShape = errors.New("field: all grids in a dataset must share one shape")
	// ErrUnsupportedPlane indicates a plane outside {y,x}, {z,x}, {z,y}.
	ErrUnsupportedPlane = errors.New("field: unsupported plane; want one of (y,x), (z,x), (z,y)")
	// ErrNoVariables indicates a dataset constructed without variables.
	ErrNoVariables = errors.New("field: dataset must contain at least one variable")
	// ErrMissingVariable indicates a requested variable absent from the dataset.
	ErrMissingVariable = errors.New("field: variable not found in dataset")
	// ErrMissingCoordinate indicates a plane axis without a coordinate grid.
	ErrMissingCoordinate = errors.New("field: coordinate grid missing for a plane axis")
	// ErrIndexRange indicates a selection index outside the axis bounds.
	ErrIndexRange = errors.New("field: selection index out of range")
	// ErrEmptySelection indicates a selection keeping zero indices on an axis.
	ErrEmptySelection = errors.New("field: selection must keep at least one index per axis")
)

// Axis names a spatial dimension of the source data.
type Axis string

// The three spatial axes a plane may be built from.
const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// Plane selects the pair of spatial axes a 2D computation operates over.
// The first axis of the pair runs along grid rows, the second along
// grid columns.
type Plane int

const (
	// PlaneYX is the (y,x) plane: rows follow y, columns follow x.
	PlaneYX Plane = iota
	// PlaneZX is the (z,x) plane: rows follow z, columns follow x.
	PlaneZX
	// PlaneZY is the (z,y) plane: rows follow z, columns follow y.
	PlaneZY
)

// Dims returns the row and column axes of the plane.
func (p Plane) Dims() (row, col Axis) {
	switch p {
	case PlaneYX:
		return AxisY, AxisX
	case PlaneZX:
		return AxisZ, AxisX
	case PlaneZY:
		return AxisZ, AxisY
	default:
		return "", ""
	}
}

// Valid reports whether p is one of the three supported planes.
func (p Plane) Valid() bool {
	return p == PlaneYX || p == PlaneZX || p == PlaneZY
}

// String returns the plane as "(row,col)" axis names.
func (p Plane) String() string {
	row, col := p.Dims()
	if row == "" {
		return "plane(?)"
	}
	return "(" + string(row) + "," + string(col) + ")"
}

// Roles is the explicit manifest assigning dataset variables to the
// semantic roles a kernel consumes. Every kernel requires a subset of
// the fields to be non-empty; unused fields stay empty. Roles replaces
// any name-based guessing: variables are never inferred from substrings.
type Roles struct {
	// Primary and Secondary are the in-plane velocity components,
	// aligned with the plane's column (abscissa) and row (ordinate)
	// directions respectively.
	Primary   string
	Secondary string

	// Scalar and SecondScalar name scalar fields for the scalar and
	// scalar-scalar kernels; Scalar also serves the velocity-scalar
	// cross kernels.
	Scalar       string
	SecondScalar string

	// AdvPrimary and AdvSecondary are the advecting velocity pair
	// consumed by the advective kernel, aligned like Primary/Secondary.
	AdvPrimary   string
	AdvSecondary string
}

// Names returns the non-empty role assignments in canonical order:
// primary, secondary, scalar, second scalar, advecting pair.
func (r Roles) Names() []string {
	out := make([]string, 0, 6)
	for _, n := range []string{r.Primary, r.Secondary, r.Scalar, r.SecondScalar, r.AdvPrimary, r.AdvSecondary} {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
