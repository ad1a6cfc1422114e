package boot

import "github.com/katalvlaran/turbsf/field"

// Table is the bootstrap index table: spacing → axis → index columns.
// Each column is one complete window — the index sequence
// start, start+s, …, start+s·(b−1) for stride s and window length b —
// and every start that keeps the window inside the axis contributes one
// column. The consuming core only reads the table; entries for spacings
// outside the initial ladder are built on demand through For.
type Table struct {
	plane      field.Plane
	rows, cols int
	sizes      Sizes
	axes       []field.Axis
	entries    map[int]map[field.Axis][][]int
}

// NewTable precomputes index columns for every spacing of the ladder
// over the bootstrappable axes.
// Complexity: O(Σ windows × window length).
func NewTable(plane field.Plane, rows, cols int, sizes Sizes, axes []field.Axis, spacings []int) *Table {
	t := &Table{
		plane:   plane,
		rows:    rows,
		cols:    cols,
		sizes:   sizes,
		axes:    axes,
		entries: make(map[int]map[field.Axis][][]int, len(spacings)),
	}
	for _, sp := range spacings {
		t.entries[sp] = t.build(sp)
	}
	return t
}

// For returns the axis→columns mapping for a spacing, building and
// caching it when the spacing lies outside the precomputed ladder.
// Not safe for concurrent use with itself; the sampler resolves the
// spacing once before fanning out.
func (t *Table) For(spacing int) map[field.Axis][][]int {
	if e, ok := t.entries[spacing]; ok {
		return e
	}
	e := t.build(spacing)
	t.entries[spacing] = e
	return e
}

// Columns returns the index columns for one axis at one spacing; nil
// when the spacing admits no window on that axis.
func (t *Table) Columns(spacing int, a field.Axis) [][]int {
	return t.For(spacing)[a]
}

// build assembles the columns of every bootstrappable axis for one
// spacing. Axes where the strided window no longer fits are omitted.
func (t *Table) build(spacing int) map[field.Axis][][]int {
	if spacing < 1 {
		spacing = 1
	}
	rowAxis, colAxis := t.plane.Dims()
	lengths := map[field.Axis]int{rowAxis: t.rows, colAxis: t.cols}

	out := make(map[field.Axis][][]int, len(t.axes))
	for _, a := range t.axes {
		length, size := lengths[a], t.sizes[a]
		span := spacing * (size - 1)
		starts := length - span
		if starts <= 0 {
			continue
		}
		cols := make([][]int, starts)
		for start := 0; start < starts; start++ {
			idx := make([]int, size)
			for k := 0; k < size; k++ {
				idx[k] = start + spacing*k
			}
			cols[start] = idx
		}
		out[a] = cols
	}
	return out
}
