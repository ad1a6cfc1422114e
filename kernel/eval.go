package kernel

import (
	"fmt"
	"math"

	"github.com/katalvlaran/turbsf/field"
)

// normFloor keeps projection kernels defined at zero separation: the
// separation norm is floored at this value before use as a divisor.
const normFloor = 1e-10

// roleSet identifies which manifest fields a kernel consumes.
type roleSet int

const (
	rolesVelocity       roleSet = iota // primary + secondary
	rolesScalar                        // one scalar
	rolesTwoScalars                    // scalar + second scalar
	rolesVelocityScalar                // primary + secondary + scalar
	rolesAdvective                     // velocity pair + advecting pair
)

// spec describes one kernel variant: its role requirements, whether it
// needs an (n,k) order pair, and the per-point statistic.
type spec struct {
	roles roleSet
	cross bool
	point func(e *evaluation)
}

// kernelTable is the closed dispatch table, built once at startup and
// indexed by Kind.
var kernelTable = [numKinds]spec{
	Longitudinal:           {roles: rolesVelocity, point: pointLongitudinal},
	Transverse:             {roles: rolesVelocity, point: pointTransverse},
	DefaultVel:             {roles: rolesVelocity, point: pointDefaultVel},
	Scalar:                 {roles: rolesScalar, point: pointScalar},
	ScalarScalar:           {roles: rolesTwoScalars, cross: true, point: pointScalarScalar},
	LongitudinalTransverse: {roles: rolesVelocity, cross: true, point: pointLongTrans},
	LongitudinalScalar:     {roles: rolesVelocityScalar, cross: true, point: pointLongScalar},
	TransverseScalar:       {roles: rolesVelocityScalar, cross: true, point: pointTransScalar},
	Advective:              {roles: rolesAdvective, point: pointAdvective},
}

// evaluation holds the per-call scratch state: resolved field buffers
// plus reusable per-offset difference buffers. All buffers are owned by
// one Evaluate call and released when it returns.
type evaluation struct {
	rows, cols int
	xc, yc     []float64   // plane coordinates (abscissa, ordinate)
	f          [][]float64 // role-ordered field buffers
	d          [][]float64 // per-offset field differences
	ddx, ddy   []float64   // per-offset coordinate differences
	stat       []float64   // per-point statistic before reduction
	order      Order
}

// Evaluate runs one kernel over every discrete offset (Δrow,Δcol) of
// the dataset's domain — rows×cols offsets in total. For each offset it
// forms the forward difference of every needed field, the mean physical
// separation (Δx,Δy), and the domain mean of the per-point statistic,
// ignoring missing values. Differences whose partner would wrap across
// the domain seam carry no physical separation and are treated as
// missing.
//
// Returns ErrRoleArity, ErrCrossOrder or ErrSingleOrder on a manifest or
// order that does not fit the kernel, and propagates
// field.ErrMissingVariable for absent variables.
// Complexity: O((rows×cols)²) time, O(rows×cols) scratch memory.
func Evaluate(k Kind, ds *field.Dataset, roles field.Roles, order Order) (Batch, error) {
	if !k.Valid() {
		return Batch{}, ErrUnknownKind
	}
	sp := kernelTable[k]
	if sp.cross && !order.IsCross() {
		return Batch{}, fmt.Errorf("kernel: %s: %w", k, ErrCrossOrder)
	}
	if !sp.cross && order.IsCross() {
		return Batch{}, fmt.Errorf("kernel: %s: %w", k, ErrSingleOrder)
	}
	names, err := roleNames(k, roles)
	if err != nil {
		return Batch{}, err
	}

	rows, cols := ds.Rows(), ds.Cols()
	e := &evaluation{
		rows:  rows,
		cols:  cols,
		f:     make([][]float64, len(names)),
		d:     make([][]float64, len(names)),
		ddx:   make([]float64, rows*cols),
		ddy:   make([]float64, rows*cols),
		stat:  make([]float64, rows*cols),
		order: order,
	}
	for i, name := range names {
		g, err := ds.Var(name)
		if err != nil {
			return Batch{}, err
		}
		e.f[i] = g.Values()
		e.d[i] = make([]float64, rows*cols)
	}
	xcG, ycG := ds.PlaneCoords()
	e.xc, e.yc = xcG.Values(), ycG.Values()

	out := Batch{
		Values: make([]float64, rows*cols),
		DX:     make([]float64, rows*cols),
		DY:     make([]float64, rows*cols),
	}
	for dr := 0; dr < rows; dr++ {
		for dc := 0; dc < cols; dc++ {
			idx := dr*cols + dc
			seamDiff(e.ddx, e.xc, rows, cols, dr, dc)
			seamDiff(e.ddy, e.yc, rows, cols, dr, dc)
			for fi := range e.f {
				seamDiff(e.d[fi], e.f[fi], rows, cols, dr, dc)
			}
			out.DX[idx] = nanMean(e.ddx)
			out.DY[idx] = nanMean(e.ddy)
			sp.point(e)
			out.Values[idx] = nanMean(e.stat)
		}
	}
	return out, nil
}

// roleNames validates the manifest against the kernel's role set and
// returns the variable names in kernel order. The manifest must fill
// exactly the roles the kernel consumes — no more, no fewer.
func roleNames(k Kind, r field.Roles) ([]string, error) {
	var need, mustBeEmpty []string
	switch kernelTable[k].roles {
	case rolesVelocity:
		need = []string{r.Primary, r.Secondary}
		mustBeEmpty = []string{r.Scalar, r.SecondScalar, r.AdvPrimary, r.AdvSecondary}
	case rolesScalar:
		need = []string{r.Scalar}
		mustBeEmpty = []string{r.Primary, r.Secondary, r.SecondScalar, r.AdvPrimary, r.AdvSecondary}
	case rolesTwoScalars:
		need = []string{r.Scalar, r.SecondScalar}
		mustBeEmpty = []string{r.Primary, r.Secondary, r.AdvPrimary, r.AdvSecondary}
	case rolesVelocityScalar:
		need = []string{r.Primary, r.Secondary, r.Scalar}
		mustBeEmpty = []string{r.SecondScalar, r.AdvPrimary, r.AdvSecondary}
	case rolesAdvective:
		need = []string{r.Primary, r.Secondary, r.AdvPrimary, r.AdvSecondary}
		mustBeEmpty = []string{r.Scalar, r.SecondScalar}
	}
	for _, n := range need {
		if n == "" {
			return nil, fmt.Errorf("kernel: %s requires %d role(s): %w", k, len(need), ErrRoleArity)
		}
	}
	for _, n := range mustBeEmpty {
		if n != "" {
			return nil, fmt.Errorf("kernel: %s takes exactly %d role(s): %w", k, len(need), ErrRoleArity)
		}
	}
	return need, nil
}

// seamDiff writes the forward difference src[i+dr, j+dc] − src[i, j]
// into dst for every point of the domain. Pairs whose partner lies past
// the domain seam (the band a periodic shift would wrap) are marked NaN:
// a wrapped comparison carries no physical separation.
func seamDiff(dst, src []float64, rows, cols, dr, dc int) {
	nan := math.NaN()
	for i := 0; i < rows; i++ {
		base := i * cols
		if i+dr >= rows {
			for j := 0; j < cols; j++ {
				dst[base+j] = nan
			}
			continue
		}
		sbase := (i + dr) * cols
		for j := 0; j < cols; j++ {
			if j+dc >= cols {
				dst[base+j] = nan
				continue
			}
			dst[base+j] = src[sbase+j+dc] - src[base+j]
		}
	}
}

// nanMean reduces a buffer to its mean, ignoring NaN entries; NaN when
// every entry is missing.
func nanMean(xs []float64) float64 {
	var sum float64
	var n int
	for _, v := range xs {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// pointLongitudinal: (du·x̂ + dv·ŷ)ⁿ with x̂,ŷ the unit separation.
func pointLongitudinal(e *evaluation) {
	n := e.order.N()
	du, dv := e.d[0], e.d[1]
	for p := range e.stat {
		dx, dy := e.ddx[p], e.ddy[p]
		norm := math.Max(math.Sqrt(dx*dx+dy*dy), normFloor)
		e.stat[p] = math.Pow(du[p]*(dx/norm)+dv[p]*(dy/norm), n)
	}
}

// pointTransverse: (du·ŷ − dv·x̂)ⁿ.
func pointTransverse(e *evaluation) {
	n := e.order.N()
	du, dv := e.d[0], e.d[1]
	for p := range e.stat {
		dx, dy := e.ddx[p], e.ddy[p]
		norm := math.Max(math.Sqrt(dx*dx+dy*dy), normFloor)
		e.stat[p] = math.Pow(du[p]*(dy/norm)-dv[p]*(dx/norm), n)
	}
}

// pointDefaultVel: duⁿ + dvⁿ.
func pointDefaultVel(e *evaluation) {
	n := e.order.N()
	du, dv := e.d[0], e.d[1]
	for p := range e.stat {
		e.stat[p] = math.Pow(du[p], n) + math.Pow(dv[p], n)
	}
}

// pointScalar: dsⁿ.
func pointScalar(e *evaluation) {
	n := e.order.N()
	dsv := e.d[0]
	for p := range e.stat {
		e.stat[p] = math.Pow(dsv[p], n)
	}
}

// pointScalarScalar: ds₁ⁿ · ds₂ᵏ.
func pointScalarScalar(e *evaluation) {
	n, k := e.order.N(), e.order.K()
	ds1, ds2 := e.d[0], e.d[1]
	for p := range e.stat {
		e.stat[p] = math.Pow(ds1[p], n) * math.Pow(ds2[p], k)
	}
}

// pointLongTrans: parallelⁿ · perpᵏ.
func pointLongTrans(e *evaluation) {
	n, k := e.order.N(), e.order.K()
	du, dv := e.d[0], e.d[1]
	for p := range e.stat {
		dx, dy := e.ddx[p], e.ddy[p]
		norm := math.Max(math.Sqrt(dx*dx+dy*dy), normFloor)
		dpar := du[p]*(dx/norm) + dv[p]*(dy/norm)
		dperp := du[p]*(dy/norm) - dv[p]*(dx/norm)
		e.stat[p] = math.Pow(dpar, n) * math.Pow(dperp, k)
	}
}

// pointLongScalar: parallelⁿ · dsᵏ.
func pointLongScalar(e *evaluation) {
	n, k := e.order.N(), e.order.K()
	du, dv, dsv := e.d[0], e.d[1], e.d[2]
	for p := range e.stat {
		dx, dy := e.ddx[p], e.ddy[p]
		norm := math.Max(math.Sqrt(dx*dx+dy*dy), normFloor)
		dpar := du[p]*(dx/norm) + dv[p]*(dy/norm)
		e.stat[p] = math.Pow(dpar, n) * math.Pow(dsv[p], k)
	}
}

// pointTransScalar: perpⁿ · dsᵏ.
func pointTransScalar(e *evaluation) {
	n, k := e.order.N(), e.order.K()
	du, dv, dsv := e.d[0], e.d[1], e.d[2]
	for p := range e.stat {
		dx, dy := e.ddx[p], e.ddy[p]
		norm := math.Max(math.Sqrt(dx*dx+dy*dy), normFloor)
		dperp := du[p]*(dy/norm) - dv[p]*(dx/norm)
		e.stat[p] = math.Pow(dperp, n) * math.Pow(dsv[p], k)
	}
}

// pointAdvective: (du·dadv_u + dv·dadv_v)ⁿ.
func pointAdvective(e *evaluation) {
	n := e.order.N()
	du, dv, dau, dav := e.d[0], e.d[1], e.d[2], e.d[3]
	for p := range e.stat {
		e.stat[p] = math.Pow(du[p]*dau[p]+dv[p]*dav[p], n)
	}
}
