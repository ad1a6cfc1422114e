package field

// Grid is an immutable rectangular 2D array of float64 values stored
// row-major. Missing values are represented as NaN. A Grid is never
// mutated after construction; derived grids are fresh copies.
type Grid struct {
	rows, cols int
	data       []float64
}

// NewGrid constructs a Grid from a row-major buffer of length rows*cols.
// The buffer is copied so later caller mutation cannot leak in.
// Returns ErrEmptyGrid for non-positive dimensions and ErrShapeMismatch
// when the buffer length disagrees with the shape.
// Complexity: O(rows*cols).
func NewGrid(rows, cols int, data []float64) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrEmptyGrid
	}
	if len(data) != rows*cols {
		return nil, ErrShapeMismatch
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return &Grid{rows: rows, cols: cols, data: buf}, nil
}

// Uniform builds a rows×cols grid with every value set to v.
// Panics are avoided by clamping non-positive dimensions to 1.
func Uniform(rows, cols int, v float64) *Grid {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = v
	}
	return &Grid{rows: rows, cols: cols, data: data}
}

// Rows returns the number of grid rows. Complexity: O(1).
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of grid columns. Complexity: O(1).
func (g *Grid) Cols() int { return g.cols }

// At returns the value at row i, column j. Complexity: O(1).
func (g *Grid) At(i, j int) float64 { return g.data[i*g.cols+j] }

// Values returns the row-major backing slice. Callers must treat the
// slice as read-only; it is shared to keep tight numeric loops free of
// per-element call overhead.
func (g *Grid) Values() []float64 { return g.data }

// gather returns a new grid keeping the given row and column indices in
// order. A nil index slice keeps the axis whole. Indices are assumed
// validated by the caller.
func (g *Grid) gather(rowIdx, colIdx []int) *Grid {
	rows, cols := g.rows, g.cols
	if rowIdx != nil {
		rows = len(rowIdx)
	}
	if colIdx != nil {
		cols = len(colIdx)
	}
	data := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		si := i
		if rowIdx != nil {
			si = rowIdx[i]
		}
		for j := 0; j < cols; j++ {
			sj := j
			if colIdx != nil {
				sj = colIdx[j]
			}
			data[i*cols+j] = g.data[si*g.cols+sj]
		}
	}
	return &Grid{rows: rows, cols: cols, data: data}
}

// CyclicShift returns a new grid whose entry (i,j) holds
// g[(i+rowOff) mod rows, (j+colOff) mod cols] — a periodic shift on
// both axes. Negative offsets wrap the other way.
// Complexity: O(rows*cols).
func CyclicShift(g *Grid, rowOff, colOff int) *Grid {
	rows, cols := g.rows, g.cols
	rowOff = ((rowOff % rows) + rows) % rows
	colOff = ((colOff % cols) + cols) % cols
	data := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		si := (i + rowOff) % rows
		for j := 0; j < cols; j++ {
			sj := (j + colOff) % cols
			data[i*cols+j] = g.data[si*cols+sj]
		}
	}
	return &Grid{rows: rows, cols: cols, data: data}
}
