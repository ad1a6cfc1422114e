package binning

import (
	"fmt"
	"math"

	"github.com/katalvlaran/turbsf/boot"
	"github.com/katalvlaran/turbsf/field"
	"github.com/katalvlaran/turbsf/kernel"
	"github.com/katalvlaran/turbsf/sample"
)

// GridResult holds the rectangular (Δrow, Δcol) binned structure
// function. All matrices are indexed [rowBin][colBin]; empty bins carry
// NaN means and stds.
type GridResult struct {
	RowAxis field.Axis
	ColAxis field.Axis

	// Exact copies of the input edges, plus derived centers and scale.
	RowEdges   []float64
	ColEdges   []float64
	RowCenters []float64
	ColCenters []float64
	RowScale   Scale
	ColScale   Scale

	Mean       [][]float64
	Std        [][]float64
	Density    [][]float64
	Points     [][]int
	Bootstraps [][]int
	State      [][]BinState
	Converged  [][]bool

	Meta Meta
}

// BinSF estimates the structure function of kind k at the given order
// over a rectangular grid of separation bins, with adaptive bootstrap
// refinement per bin. Edges must be supplied for both plane axes. With
// no bootstrappable axis the estimate degenerates to one deterministic
// pass with per-point weighted statistics.
func BinSF(ds *field.Dataset, roles field.Roles, k kernel.Kind, order kernel.Order, opts GridOptions) (*GridResult, error) {
	if ds == nil {
		return nil, sample.ErrNilDataset
	}
	plane := ds.Plane()
	rowAxis, colAxis := plane.Dims()

	rowEdges, ok := opts.Edges[rowAxis]
	if !ok {
		return nil, fmt.Errorf("binning: axis %q: %w", rowAxis, ErrMissingEdges)
	}
	colEdges, ok := opts.Edges[colAxis]
	if !ok {
		return nil, fmt.Errorf("binning: axis %q: %w", colAxis, ErrMissingEdges)
	}
	if err := validateEdges(rowEdges); err != nil {
		return nil, fmt.Errorf("binning: axis %q: %w", rowAxis, err)
	}
	if err := validateEdges(colEdges); err != nil {
		return nil, fmt.Errorf("binning: axis %q: %w", colAxis, err)
	}

	bopts, err := opts.Bootstrap.normalize()
	if err != nil {
		return nil, err
	}

	sizes, axes, nBoot, err := boot.Setup(plane, ds.Rows(), ds.Cols(), bopts.Bootsize)
	if err != nil {
		return nil, err
	}
	_, spacings := boot.Spacings(plane, ds.Rows(), ds.Cols(), sizes, axes)
	table := boot.NewTable(plane, ds.Rows(), ds.Cols(), sizes, axes, spacings)

	smp, err := sample.New(sample.Config{
		Dataset:  ds,
		Kind:     k,
		Roles:    roles,
		Order:    order,
		Table:    table,
		Axes:     axes,
		Workers:  bopts.Workers,
		Seed:     bopts.Seed,
		Progress: bopts.Progress,
	})
	if err != nil {
		return nil, err
	}

	gb := newGridBinner(rowEdges, colEdges)
	res := &GridResult{
		RowAxis:    rowAxis,
		ColAxis:    colAxis,
		RowEdges:   rowEdges,
		ColEdges:   colEdges,
		RowCenters: binCenters(rowEdges, classifyScale(rowEdges)),
		ColCenters: binCenters(colEdges, classifyScale(colEdges)),
		RowScale:   classifyScale(rowEdges),
		ColScale:   classifyScale(colEdges),
		Meta: Meta{
			Kernel:             k,
			Order:              order,
			Roles:              roles,
			Plane:              plane,
			BootstrappableAxes: axes,
			Spacings:           spacings,
		},
	}

	if nBoot == 0 {
		if err := gb.direct(smp); err != nil {
			return nil, err
		}
		res.fill(gb, nil)
		return res, nil
	}

	eng := newEngine(smp, spacings, bopts, gb)
	if err := eng.run(); err != nil {
		return nil, err
	}
	res.fill(gb, eng)
	return res, nil
}

// fill copies flat engine/binner state into the result matrices. A nil
// engine means the deterministic no-bootstrap path: populated bins are
// reported converged with zero consumed bootstraps.
func (r *GridResult) fill(gb *gridBinner, eng *engine) {
	ny, nx := gb.nRows, gb.nCols
	r.Mean = newMatrix(ny, nx)
	r.Std = newMatrix(ny, nx)
	r.Density = newMatrix(ny, nx)
	r.Points = make([][]int, ny)
	r.Bootstraps = make([][]int, ny)
	r.State = make([][]BinState, ny)
	r.Converged = make([][]bool, ny)
	for j := 0; j < ny; j++ {
		r.Points[j] = make([]int, nx)
		r.Bootstraps[j] = make([]int, nx)
		r.State[j] = make([]BinState, nx)
		r.Converged[j] = make([]bool, nx)
		for i := 0; i < nx; i++ {
			bin := j*nx + i
			r.Points[j][i] = gb.accs[bin].points()
			if eng != nil {
				r.Mean[j][i] = gb.accs[bin].mean()
				r.Std[j][i] = gb.accs[bin].std()
				r.Density[j][i] = eng.density[bin]
				r.Bootstraps[j][i] = eng.boots[bin]
				r.State[j][i] = eng.state[bin]
				r.Converged[j][i] = eng.state[bin].Terminal()
			} else {
				r.Mean[j][i] = gb.directMean[bin]
				r.Std[j][i] = gb.directStd[bin]
				if gb.accs[bin].points() > 0 {
					r.State[j][i] = StateConverged
					r.Converged[j][i] = true
				}
			}
		}
	}
}

func newMatrix(ny, nx int) [][]float64 {
	m := make([][]float64, ny)
	for j := range m {
		m[j] = make([]float64, nx)
		for i := range m[j] {
			m[j][i] = math.NaN()
		}
	}
	return m
}

// gridBinner routes batch points into rectangular bins keyed by their
// (Δrow, Δcol) separation, weighting each point by |Δx·Δy|. Points
// whose separation falls outside the edges are discarded.
type gridBinner struct {
	rowEdges []float64
	colEdges []float64
	nRows    int
	nCols    int
	areaBuf  []float64
	accs     []accumulator

	// per-batch scratch, reset through the touched list
	wsum    []float64
	vsum    []float64
	v2sum   []float64
	cnt     []int
	touched []int

	// deterministic single-pass statistics (no-bootstrap path)
	directMean []float64
	directStd  []float64
}

func newGridBinner(rowEdges, colEdges []float64) *gridBinner {
	ny := len(rowEdges) - 1
	nx := len(colEdges) - 1
	n := ny * nx
	g := &gridBinner{
		rowEdges: rowEdges,
		colEdges: colEdges,
		nRows:    ny,
		nCols:    nx,
		areaBuf:  make([]float64, n),
		accs:     make([]accumulator, n),
		wsum:     make([]float64, n),
		vsum:     make([]float64, n),
		v2sum:    make([]float64, n),
		cnt:      make([]int, n),
	}
	rw := binWidths(rowEdges)
	cw := binWidths(colEdges)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			g.areaBuf[j*nx+i] = rw[j] * cw[i]
		}
	}
	return g
}

func (g *gridBinner) bins() int              { return g.nRows * g.nCols }
func (g *gridBinner) areas() []float64       { return g.areaBuf }
func (g *gridBinner) acc(i int) *accumulator { return &g.accs[i] }

// locate maps one (Δcol, Δrow) separation to a flat bin, -1 when out of
// range. Rows bin on Δy, columns on Δx.
func (g *gridBinner) locate(dx, dy float64) int {
	ci := bucket(g.colEdges, dx)
	if ci < 0 {
		return -1
	}
	ri := bucket(g.rowEdges, dy)
	if ri < 0 {
		return -1
	}
	return ri*g.nCols + ci
}

// ingest adds each batch as one increment to the bins it touches: the
// batch's points in a bin collapse to one weighted mean with weight
// |Δx·Δy|, normalized within the bin.
func (g *gridBinner) ingest(batches []kernel.Batch, counting bool) []int {
	added := make([]int, g.bins())
	for _, b := range batches {
		g.touched = g.touched[:0]
		for k := range b.Values {
			v, dx, dy := b.Values[k], b.DX[k], b.DY[k]
			if math.IsNaN(v) || math.IsNaN(dx) || math.IsNaN(dy) {
				continue
			}
			bin := g.locate(dx, dy)
			if bin < 0 {
				continue
			}
			w := math.Abs(dx * dy)
			if g.cnt[bin] == 0 {
				g.touched = append(g.touched, bin)
			}
			g.wsum[bin] += w
			g.vsum[bin] += v * w
			g.v2sum[bin] += v * v * w
			g.cnt[bin]++
		}
		for _, bin := range g.touched {
			if g.wsum[bin] > 0 {
				mean := g.vsum[bin] / g.wsum[bin]
				meanSq := g.v2sum[bin] / g.wsum[bin]
				g.accs[bin].add(mean, meanSq, 1, g.cnt[bin])
			} else {
				g.accs[bin].add(math.NaN(), math.NaN(), 0, g.cnt[bin])
			}
			if counting {
				added[bin] += g.cnt[bin]
			}
			g.wsum[bin], g.vsum[bin], g.v2sum[bin], g.cnt[bin] = 0, 0, 0, 0
		}
	}
	return added
}

// direct runs the deterministic no-bootstrap path: one full-dataset
// batch, per-point weighted mean and std per bin.
func (g *gridBinner) direct(smp *sample.Sampler) error {
	batches, err := smp.Run(1, 1)
	if err != nil {
		return fmt.Errorf("binning: deterministic pass: %w", err)
	}
	n := g.bins()
	g.directMean = make([]float64, n)
	g.directStd = make([]float64, n)
	for i := range g.directMean {
		g.directMean[i] = math.NaN()
		g.directStd[i] = math.NaN()
	}

	b := batches[0]
	for k := range b.Values {
		v, dx, dy := b.Values[k], b.DX[k], b.DY[k]
		if math.IsNaN(v) || math.IsNaN(dx) || math.IsNaN(dy) {
			continue
		}
		bin := g.locate(dx, dy)
		if bin < 0 {
			continue
		}
		w := math.Abs(dx * dy)
		g.wsum[bin] += w
		g.vsum[bin] += v * w
		g.v2sum[bin] += v * v * w
		g.cnt[bin]++
		g.accs[bin].pts++
	}
	seen := false
	for bin := 0; bin < n; bin++ {
		if g.wsum[bin] > 0 {
			seen = true
			mean := g.vsum[bin] / g.wsum[bin]
			variance := g.v2sum[bin]/g.wsum[bin] - mean*mean
			if variance < 0 {
				variance = 0
			}
			g.directMean[bin] = mean
			g.directStd[bin] = math.Sqrt(variance)
		}
	}
	if !seen {
		return ErrNoValidSamples
	}
	return nil
}
