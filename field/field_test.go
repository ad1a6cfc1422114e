package field_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/turbsf/field"
)

//----------------------------------------------------------------------------//
// Grid construction and access
//----------------------------------------------------------------------------//

// TestNewGrid_Errors verifies that NewGrid rejects malformed shapes.
func TestNewGrid_Errors(t *testing.T) {
	cases := []struct {
		name       string
		rows, cols int
		data       []float64
		err        error
	}{
		{"ZeroRows", 0, 3, nil, field.ErrEmptyGrid},
		{"ZeroCols", 3, 0, nil, field.ErrEmptyGrid},
		{"NegativeRows", -1, 3, nil, field.ErrEmptyGrid},
		{"ShortBuffer", 2, 3, make([]float64, 5), field.ErrShapeMismatch},
		{"LongBuffer", 2, 3, make([]float64, 7), field.ErrShapeMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := field.NewGrid(tc.rows, tc.cols, tc.data)
			if !errors.Is(err, tc.err) {
				t.Errorf("NewGrid(%d,%d) error = %v; want %v", tc.rows, tc.cols, err, tc.err)
			}
		})
	}
}

// TestNewGrid_CopiesBuffer ensures later caller mutation cannot leak in.
func TestNewGrid_CopiesBuffer(t *testing.T) {
	buf := []float64{1, 2, 3, 4}
	g, err := field.NewGrid(2, 2, buf)
	require.NoError(t, err)

	buf[0] = 99
	assert.Equal(t, 1.0, g.At(0, 0), "grid must snapshot the buffer at construction")
}

// TestGrid_At verifies row-major addressing.
func TestGrid_At(t *testing.T) {
	g, err := field.NewGrid(2, 3, []float64{0, 1, 2, 10, 11, 12})
	require.NoError(t, err)

	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, 3, g.Cols())
	assert.Equal(t, 2.0, g.At(0, 2))
	assert.Equal(t, 10.0, g.At(1, 0))
}

// TestUniform checks the constant-grid constructor.
func TestUniform(t *testing.T) {
	g := field.Uniform(3, 2, 7.5)
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			assert.Equal(t, 7.5, g.At(i, j))
		}
	}
}

//----------------------------------------------------------------------------//
// CyclicShift
//----------------------------------------------------------------------------//

// TestCyclicShift_Wraps verifies the periodic mapping on both axes,
// including negative offsets.
func TestCyclicShift_Wraps(t *testing.T) {
	g, err := field.NewGrid(2, 3, []float64{
		0, 1, 2,
		10, 11, 12,
	})
	require.NoError(t, err)

	s := field.CyclicShift(g, 1, 1)
	// entry (i,j) holds g[(i+1) mod 2, (j+1) mod 3]
	assert.Equal(t, 11.0, s.At(0, 0))
	assert.Equal(t, 12.0, s.At(0, 1))
	assert.Equal(t, 10.0, s.At(0, 2))
	assert.Equal(t, 1.0, s.At(1, 0))

	neg := field.CyclicShift(g, -1, -1)
	assert.Equal(t, 12.0, neg.At(0, 0), "negative offsets wrap the other way")

	full := field.CyclicShift(g, 2, 3)
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, g.At(i, j), full.At(i, j), "full-period shift is the identity")
		}
	}
}

//----------------------------------------------------------------------------//
// Dataset construction
//----------------------------------------------------------------------------//

func coordGrids(rows, cols int) map[field.Axis]*field.Grid {
	x := make([]float64, rows*cols)
	y := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x[i*cols+j] = float64(j)
			y[i*cols+j] = float64(i)
		}
	}
	gx, _ := field.NewGrid(rows, cols, x)
	gy, _ := field.NewGrid(rows, cols, y)
	return map[field.Axis]*field.Grid{field.AxisX: gx, field.AxisY: gy}
}

// TestNewDataset_Errors verifies construction-time validation.
func TestNewDataset_Errors(t *testing.T) {
	u := field.Uniform(2, 2, 1)
	coords := coordGrids(2, 2)

	cases := []struct {
		name   string
		plane  field.Plane
		vars   map[string]*field.Grid
		coords map[field.Axis]*field.Grid
		err    error
	}{
		{"BadPlane", field.Plane(9), map[string]*field.Grid{"u": u}, coords, field.ErrUnsupportedPlane},
		{"NoVariables", field.PlaneYX, map[string]*field.Grid{}, coords, field.ErrNoVariables},
		{"MissingCoord", field.PlaneYX, map[string]*field.Grid{"u": u},
			map[field.Axis]*field.Grid{field.AxisX: coords[field.AxisX]}, field.ErrMissingCoordinate},
		{"VarShape", field.PlaneYX,
			map[string]*field.Grid{"u": u, "v": field.Uniform(3, 3, 1)}, coords, field.ErrGridShape},
		{"CoordShape", field.PlaneYX, map[string]*field.Grid{"u": u},
			map[field.Axis]*field.Grid{
				field.AxisX: field.Uniform(3, 3, 0),
				field.AxisY: coords[field.AxisY],
			}, field.ErrGridShape},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := field.NewDataset(tc.plane, tc.vars, tc.coords)
			if !errors.Is(err, tc.err) {
				t.Errorf("NewDataset error = %v; want %v", err, tc.err)
			}
		})
	}
}

// TestDataset_Accessors covers Has, Var, Coord and PlaneCoords.
func TestDataset_Accessors(t *testing.T) {
	ds, err := field.NewDataset(field.PlaneYX,
		map[string]*field.Grid{"u": field.Uniform(2, 2, 3)}, coordGrids(2, 2))
	require.NoError(t, err)

	assert.True(t, ds.Has("u"))
	assert.False(t, ds.Has("w"))

	g, err := ds.Var("u")
	require.NoError(t, err)
	assert.Equal(t, 3.0, g.At(1, 1))

	_, err = ds.Var("w")
	assert.ErrorIs(t, err, field.ErrMissingVariable)

	_, err = ds.Coord(field.AxisZ)
	assert.ErrorIs(t, err, field.ErrMissingCoordinate)

	abscissa, ordinate := ds.PlaneCoords()
	assert.Equal(t, 1.0, abscissa.At(0, 1), "abscissa follows the column axis")
	assert.Equal(t, 1.0, ordinate.At(1, 0), "ordinate follows the row axis")
}

//----------------------------------------------------------------------------//
// Select
//----------------------------------------------------------------------------//

// TestDataset_Select verifies window restriction, including repeated
// indices and whole-axis selection via nil.
func TestDataset_Select(t *testing.T) {
	u, err := field.NewGrid(3, 3, []float64{
		0, 1, 2,
		10, 11, 12,
		20, 21, 22,
	})
	require.NoError(t, err)
	ds, err := field.NewDataset(field.PlaneYX,
		map[string]*field.Grid{"u": u}, coordGrids(3, 3))
	require.NoError(t, err)

	sub, err := ds.Select([]int{0, 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Rows())
	assert.Equal(t, 3, sub.Cols())
	g, err := sub.Var("u")
	require.NoError(t, err)
	assert.Equal(t, 20.0, g.At(1, 0))

	rep, err := ds.Select([]int{1, 1}, []int{2, 2})
	require.NoError(t, err)
	g, err = rep.Var("u")
	require.NoError(t, err)
	assert.Equal(t, 12.0, g.At(0, 0))
	assert.Equal(t, 12.0, g.At(1, 1), "repeated indices sample with replacement")

	// coordinates are restricted alongside variables
	abscissa, _ := rep.PlaneCoords()
	assert.Equal(t, 2.0, abscissa.At(0, 0))
}

// TestDataset_Select_Errors verifies selection validation.
func TestDataset_Select_Errors(t *testing.T) {
	ds, err := field.NewDataset(field.PlaneYX,
		map[string]*field.Grid{"u": field.Uniform(3, 3, 0)}, coordGrids(3, 3))
	require.NoError(t, err)

	_, err = ds.Select([]int{}, nil)
	assert.ErrorIs(t, err, field.ErrEmptySelection)

	_, err = ds.Select([]int{3}, nil)
	assert.ErrorIs(t, err, field.ErrIndexRange)

	_, err = ds.Select(nil, []int{-1})
	assert.ErrorIs(t, err, field.ErrIndexRange)
}

//----------------------------------------------------------------------------//
// Plane and Roles
//----------------------------------------------------------------------------//

// TestPlane_Dims checks the axis pair of every supported plane.
func TestPlane_Dims(t *testing.T) {
	cases := []struct {
		plane    field.Plane
		row, col field.Axis
		str      string
	}{
		{field.PlaneYX, field.AxisY, field.AxisX, "(y,x)"},
		{field.PlaneZX, field.AxisZ, field.AxisX, "(z,x)"},
		{field.PlaneZY, field.AxisZ, field.AxisY, "(z,y)"},
	}
	for _, tc := range cases {
		row, col := tc.plane.Dims()
		assert.Equal(t, tc.row, row)
		assert.Equal(t, tc.col, col)
		assert.Equal(t, tc.str, tc.plane.String())
		assert.True(t, tc.plane.Valid())
	}
	assert.False(t, field.Plane(7).Valid())
}

// TestRoles_Names checks canonical ordering and empty-field skipping.
func TestRoles_Names(t *testing.T) {
	r := field.Roles{Primary: "u", Secondary: "v", Scalar: "temp"}
	assert.Equal(t, []string{"u", "v", "temp"}, r.Names())

	assert.Empty(t, field.Roles{}.Names())
}

// TestGrid_NaNPassthrough confirms that NaN survives storage and access
// untouched; missing data must stay missing.
func TestGrid_NaNPassthrough(t *testing.T) {
	g, err := field.NewGrid(1, 2, []float64{math.NaN(), 1})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(g.At(0, 0)))
	assert.Equal(t, 1.0, g.At(0, 1))
}
