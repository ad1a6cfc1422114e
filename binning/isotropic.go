package binning

import (
	"fmt"
	"math"

	"github.com/katalvlaran/turbsf/boot"
	"github.com/katalvlaran/turbsf/field"
	"github.com/katalvlaran/turbsf/kernel"
	"github.com/katalvlaran/turbsf/sample"
)

// zScore95 is the two-sided 95% normal quantile used for confidence
// intervals.
const zScore95 = 1.959963984540054

// IsoResult holds the isotropic structure function: per-radial-bin
// statistics plus the angular-radial matrix and the isotropy and
// homogeneity diagnostics derived from it. Polar is indexed
// [thetaBin][rBin]; empty bins carry NaN.
type IsoResult struct {
	// Exact copies of the input radial edges plus the derived angular
	// edges, centers and radial scale.
	REdges       []float64
	ThetaEdges   []float64
	RCenters     []float64
	ThetaCenters []float64
	RScale       Scale

	Mean       []float64
	Std        []float64
	CIUpper    []float64
	CILower    []float64
	Density    []float64
	Points     []int
	Bootstraps []int
	State      []BinState
	Converged  []bool

	Polar [][]float64

	// ErrIsotropy is the mean absolute deviation of sliding angular
	// window means from each radial bin's overall mean. ErrHomogeneity
	// is the analogous radial-window deviation over RSubset.
	ErrIsotropy    []float64
	RSubset        []float64
	ErrHomogeneity []float64

	WindowTheta int
	WindowR     int

	Meta Meta
}

// IsotropicSF estimates the structure function of kind k at the given
// order over radial separation bins, with adaptive bootstrap refinement
// per radial bin and angular bookkeeping for the isotropy diagnostics.
// Angular bins always span the full circle [-π, π].
func IsotropicSF(ds *field.Dataset, roles field.Roles, k kernel.Kind, order kernel.Order, opts IsoOptions) (*IsoResult, error) {
	if ds == nil {
		return nil, sample.ErrNilDataset
	}
	if err := validateEdges(opts.REdges); err != nil {
		return nil, fmt.Errorf("binning: radial edges: %w", err)
	}
	nTheta := opts.NTheta
	if nTheta == 0 {
		nTheta = 36
	}
	if nTheta < 0 {
		return nil, ErrBadAngularBins
	}
	nR := len(opts.REdges) - 1
	winTheta := opts.WindowTheta
	if winTheta <= 0 {
		winTheta = max(nTheta/3, 1)
	}
	winR := opts.WindowR
	if winR <= 0 {
		winR = max(nR/3, 1)
	}

	bopts, err := opts.Bootstrap.normalize()
	if err != nil {
		return nil, err
	}

	plane := ds.Plane()
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

	thetaEdges := make([]float64, nTheta+1)
	for i := range thetaEdges {
		thetaEdges[i] = -math.Pi + 2*math.Pi*float64(i)/float64(nTheta)
	}
	rScale := classifyScale(opts.REdges)

	ib := newIsoBinner(opts.REdges, thetaEdges)
	res := &IsoResult{
		REdges:       opts.REdges,
		ThetaEdges:   thetaEdges,
		RCenters:     binCenters(opts.REdges, rScale),
		ThetaCenters: binCenters(thetaEdges, Linear),
		RScale:       rScale,
		WindowTheta:  winTheta,
		WindowR:      winR,
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
		if err := ib.direct(smp); err != nil {
			return nil, err
		}
		res.fill(ib, nil)
	} else {
		eng := newEngine(smp, spacings, bopts, ib)
		if err := eng.run(); err != nil {
			return nil, err
		}
		res.fill(ib, eng)
	}
	res.diagnostics(ib)
	return res, nil
}

// fill copies flat engine/binner state into per-radial-bin slices. A
// nil engine means the deterministic no-bootstrap path.
func (r *IsoResult) fill(ib *isoBinner, eng *engine) {
	n := ib.nR
	r.Mean = nanSlice(n)
	r.Std = nanSlice(n)
	r.CIUpper = nanSlice(n)
	r.CILower = nanSlice(n)
	r.Density = make([]float64, n)
	r.Points = make([]int, n)
	r.Bootstraps = make([]int, n)
	r.State = make([]BinState, n)
	r.Converged = make([]bool, n)
	r.Polar = ib.polar

	for i := 0; i < n; i++ {
		a := &ib.accs[i]
		r.Points[i] = a.points()
		if eng != nil {
			r.Mean[i] = a.mean()
			r.Std[i] = a.std()
			r.Density[i] = eng.density[i]
			r.Bootstraps[i] = eng.boots[i]
			r.State[i] = eng.state[i]
			r.Converged[i] = eng.state[i].Terminal()
			r.ci(i, a.batches())
		} else {
			r.Mean[i] = ib.directMean[i]
			r.Std[i] = ib.directStd[i]
			if a.points() > 0 {
				r.State[i] = StateConverged
				r.Converged[i] = true
			}
			r.ci(i, a.points())
		}
	}
}

// ci sets the 95% confidence interval of radial bin i from n
// contributions; a single contribution collapses the interval to the
// mean.
func (r *IsoResult) ci(i, n int) {
	if math.IsNaN(r.Mean[i]) || n == 0 {
		return
	}
	if n == 1 {
		r.CIUpper[i] = r.Mean[i]
		r.CILower[i] = r.Mean[i]
		return
	}
	half := zScore95 * r.Std[i] / math.Sqrt(float64(n))
	r.CIUpper[i] = r.Mean[i] + half
	r.CILower[i] = r.Mean[i] - half
}

// diagnostics derives the isotropy and homogeneity errors from the
// polar matrix using sliding windows of contiguous bins. A window size
// at or above the bin count degrades gracefully: the isotropy error
// stays zero, the homogeneity subset widens to every radial bin.
func (r *IsoResult) diagnostics(ib *isoBinner) {
	nR, nTheta := ib.nR, ib.nTheta
	r.ErrIsotropy = make([]float64, nR)

	if nTheta > r.WindowTheta {
		length := nTheta - r.WindowTheta + 1
		for w := 0; w < r.WindowTheta; w++ {
			for i := 0; i < nR; i++ {
				m := ib.thetaWindowMean(w, length, i)
				if !math.IsNaN(m) && !math.IsNaN(r.Mean[i]) {
					r.ErrIsotropy[i] += math.Abs(m - r.Mean[i])
				}
			}
		}
		for i := range r.ErrIsotropy {
			r.ErrIsotropy[i] /= float64(r.WindowTheta)
		}
	}

	if nR > r.WindowR {
		length := nR - r.WindowR + 1
		r.RSubset = append([]float64(nil), r.RCenters[:length]...)
		meanh := make([]float64, length)
		r.ErrHomogeneity = make([]float64, length)
		for w := 0; w < r.WindowR; w++ {
			for l := 0; l < length; l++ {
				meanh[l] += nanOrZero(ib.columnMean(w + l))
			}
		}
		for l := range meanh {
			meanh[l] /= float64(r.WindowR)
		}
		for w := 0; w < r.WindowR; w++ {
			for l := 0; l < length; l++ {
				r.ErrHomogeneity[l] += math.Abs(nanOrZero(ib.columnMean(w+l)) - meanh[l])
			}
		}
		for l := range r.ErrHomogeneity {
			r.ErrHomogeneity[l] /= float64(r.WindowR)
		}
	} else {
		r.RSubset = append([]float64(nil), r.RCenters...)
		r.ErrHomogeneity = make([]float64, nR)
	}
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

func nanOrZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// isoBinner routes batch points into radial annuli keyed by separation
// magnitude, weighting each point by r, and maintains the angular-
// radial matrix by incremental weighted averaging of batch means.
// Points beyond the radial edges are discarded.
type isoBinner struct {
	rEdges     []float64
	thetaEdges []float64
	nR         int
	nTheta     int
	areaBuf    []float64
	accs       []accumulator

	polar    [][]float64 // [thetaBin][rBin]
	polarCnt [][]int

	// per-batch scratch, reset through the touched lists
	wsum, vsum, v2sum []float64
	cnt               []int
	touched           []int
	twsum, tvsum      []float64 // flat thetaBin*nR+rBin
	tcnt              []int
	ttouched          []int

	// deterministic single-pass statistics (no-bootstrap path)
	directMean []float64
	directStd  []float64
}

func newIsoBinner(rEdges, thetaEdges []float64) *isoBinner {
	nR := len(rEdges) - 1
	nTheta := len(thetaEdges) - 1
	b := &isoBinner{
		rEdges:     rEdges,
		thetaEdges: thetaEdges,
		nR:         nR,
		nTheta:     nTheta,
		areaBuf:    make([]float64, nR),
		accs:       make([]accumulator, nR),
		polar:      make([][]float64, nTheta),
		polarCnt:   make([][]int, nTheta),
		wsum:       make([]float64, nR),
		vsum:       make([]float64, nR),
		v2sum:      make([]float64, nR),
		cnt:        make([]int, nR),
		twsum:      make([]float64, nTheta*nR),
		tvsum:      make([]float64, nTheta*nR),
		tcnt:       make([]int, nTheta*nR),
	}
	for i := 0; i < nR; i++ {
		b.areaBuf[i] = math.Pi * (rEdges[i+1]*rEdges[i+1] - rEdges[i]*rEdges[i])
	}
	for t := 0; t < nTheta; t++ {
		b.polar[t] = nanSlice(nR)
		b.polarCnt[t] = make([]int, nR)
	}
	return b
}

func (b *isoBinner) bins() int              { return b.nR }
func (b *isoBinner) areas() []float64       { return b.areaBuf }
func (b *isoBinner) acc(i int) *accumulator { return &b.accs[i] }

// ingest adds each batch as one increment to the radial bins it
// touches and folds the batch's per-(θ,r) weighted means into the polar
// matrix.
func (b *isoBinner) ingest(batches []kernel.Batch, counting bool) []int {
	added := make([]int, b.nR)
	for _, batch := range batches {
		b.touched = b.touched[:0]
		b.ttouched = b.ttouched[:0]
		for k := range batch.Values {
			v, dx, dy := batch.Values[k], batch.DX[k], batch.DY[k]
			if math.IsNaN(v) || math.IsNaN(dx) || math.IsNaN(dy) {
				continue
			}
			rad := math.Hypot(dx, dy)
			ri := bucket(b.rEdges, rad)
			if ri < 0 {
				continue
			}
			theta := math.Atan2(dy, dx)
			ti := bucket(b.thetaEdges, theta)
			if ti < 0 {
				continue
			}
			if b.cnt[ri] == 0 {
				b.touched = append(b.touched, ri)
			}
			b.wsum[ri] += rad
			b.vsum[ri] += v * rad
			b.v2sum[ri] += v * v * rad
			b.cnt[ri]++

			flat := ti*b.nR + ri
			if b.tcnt[flat] == 0 {
				b.ttouched = append(b.ttouched, flat)
			}
			b.twsum[flat] += rad
			b.tvsum[flat] += v * rad
			b.tcnt[flat]++
		}
		for _, ri := range b.touched {
			if b.wsum[ri] > 0 {
				mean := b.vsum[ri] / b.wsum[ri]
				meanSq := b.v2sum[ri] / b.wsum[ri]
				b.accs[ri].add(mean, meanSq, 1, b.cnt[ri])
			} else {
				b.accs[ri].add(math.NaN(), math.NaN(), 0, b.cnt[ri])
			}
			if counting {
				added[ri] += b.cnt[ri]
			}
			b.wsum[ri], b.vsum[ri], b.v2sum[ri], b.cnt[ri] = 0, 0, 0, 0
		}
		for _, flat := range b.ttouched {
			if b.twsum[flat] > 0 {
				b.foldPolar(flat/b.nR, flat%b.nR, b.tvsum[flat]/b.twsum[flat])
			}
			b.twsum[flat], b.tvsum[flat], b.tcnt[flat] = 0, 0, 0
		}
	}
	return added
}

// foldPolar averages one batch mean into the (θ,r) cell incrementally.
func (b *isoBinner) foldPolar(ti, ri int, batchMean float64) {
	n := b.polarCnt[ti][ri]
	if n == 0 || math.IsNaN(b.polar[ti][ri]) {
		b.polar[ti][ri] = batchMean
	} else {
		b.polar[ti][ri] = (b.polar[ti][ri]*float64(n) + batchMean) / float64(n+1)
	}
	b.polarCnt[ti][ri] = n + 1
}

// thetaWindowMean averages the polar matrix over the angular window
// starting at w with the given length, at radial bin i, skipping NaN
// cells.
func (b *isoBinner) thetaWindowMean(w, length, i int) float64 {
	sum, n := 0.0, 0
	for t := w; t < w+length; t++ {
		if v := b.polar[t][i]; !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// columnMean averages one radial column of the polar matrix over all
// angles, skipping NaN cells.
func (b *isoBinner) columnMean(i int) float64 {
	sum, n := 0.0, 0
	for t := 0; t < b.nTheta; t++ {
		if v := b.polar[t][i]; !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// direct runs the deterministic no-bootstrap path: one full-dataset
// batch, per-point weighted mean and std per radial bin, polar matrix
// from the same pass.
func (b *isoBinner) direct(smp *sample.Sampler) error {
	batches, err := smp.Run(1, 1)
	if err != nil {
		return fmt.Errorf("binning: deterministic pass: %w", err)
	}
	b.directMean = nanSlice(b.nR)
	b.directStd = nanSlice(b.nR)

	batch := batches[0]
	for k := range batch.Values {
		v, dx, dy := batch.Values[k], batch.DX[k], batch.DY[k]
		if math.IsNaN(v) || math.IsNaN(dx) || math.IsNaN(dy) {
			continue
		}
		rad := math.Hypot(dx, dy)
		ri := bucket(b.rEdges, rad)
		if ri < 0 {
			continue
		}
		theta := math.Atan2(dy, dx)
		ti := bucket(b.thetaEdges, theta)
		if ti < 0 {
			continue
		}
		b.wsum[ri] += rad
		b.vsum[ri] += v * rad
		b.v2sum[ri] += v * v * rad
		b.cnt[ri]++
		b.accs[ri].pts++

		flat := ti*b.nR + ri
		b.twsum[flat] += rad
		b.tvsum[flat] += v * rad
	}
	seen := false
	for ri := 0; ri < b.nR; ri++ {
		if b.wsum[ri] > 0 {
			seen = true
			mean := b.vsum[ri] / b.wsum[ri]
			variance := b.v2sum[ri]/b.wsum[ri] - mean*mean
			if variance < 0 {
				variance = 0
			}
			b.directMean[ri] = mean
			b.directStd[ri] = math.Sqrt(variance)
		}
	}
	for ti := 0; ti < b.nTheta; ti++ {
		for ri := 0; ri < b.nR; ri++ {
			flat := ti*b.nR + ri
			if b.twsum[flat] > 0 {
				b.polar[ti][ri] = b.tvsum[flat] / b.twsum[flat]
				b.polarCnt[ti][ri] = 1
			}
		}
	}
	if !seen {
		return ErrNoValidSamples
	}
	return nil
}
