package binning_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/turbsf/binning"
	"github.com/katalvlaran/turbsf/boot"
	"github.com/katalvlaran/turbsf/field"
	"github.com/katalvlaran/turbsf/kernel"
	"github.com/katalvlaran/turbsf/sample"
)

//----------------------------------------------------------------------------//
// Helpers
//----------------------------------------------------------------------------//

// buildDataset assembles a rows×cols (y,x) dataset with unit-spaced
// coordinates; fill computes each variable value from the grid indices.
func buildDataset(t *testing.T, rows, cols int, fill map[string]func(i, j int) float64) *field.Dataset {
	t.Helper()
	grids := make(map[string]*field.Grid, len(fill))
	for name, f := range fill {
		data := make([]float64, rows*cols)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				data[i*cols+j] = f(i, j)
			}
		}
		g, err := field.NewGrid(rows, cols, data)
		require.NoError(t, err)
		grids[name] = g
	}
	x := make([]float64, rows*cols)
	y := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x[i*cols+j] = float64(j)
			y[i*cols+j] = float64(i)
		}
	}
	gx, err := field.NewGrid(rows, cols, x)
	require.NoError(t, err)
	gy, err := field.NewGrid(rows, cols, y)
	require.NoError(t, err)
	ds, err := field.NewDataset(field.PlaneYX, grids,
		map[field.Axis]*field.Grid{field.AxisX: gx, field.AxisY: gy})
	require.NoError(t, err)
	return ds
}

func constantDataset(t *testing.T, rows, cols int) *field.Dataset {
	one := func(i, j int) float64 { return 1 }
	return buildDataset(t, rows, cols, map[string]func(i, j int) float64{"u": one, "v": one})
}

func variedDataset(t *testing.T, rows, cols int) *field.Dataset {
	return buildDataset(t, rows, cols, map[string]func(i, j int) float64{
		"u": func(i, j int) float64 { return float64((i*3+j*5)%7) * 0.25 },
		"v": func(i, j int) float64 { return float64((i*5+j*2)%5) * 0.5 },
	})
}

func velRoles() field.Roles { return field.Roles{Primary: "u", Secondary: "v"} }

func separationEdges() []float64 { return []float64{-0.5, 0.5, 1.5, 2.5, 3.5} }

//----------------------------------------------------------------------------//
// BinSF validation
//----------------------------------------------------------------------------//

// TestBinSF_Validation rejects malformed inputs before any sampling.
func TestBinSF_Validation(t *testing.T) {
	ds := constantDataset(t, 4, 4)
	edges := separationEdges()

	_, err := binning.BinSF(nil, velRoles(), kernel.DefaultVel, kernel.Single(2), binning.GridOptions{})
	assert.ErrorIs(t, err, sample.ErrNilDataset)

	_, err = binning.BinSF(ds, velRoles(), kernel.DefaultVel, kernel.Single(2), binning.GridOptions{
		Edges: map[field.Axis][]float64{field.AxisX: edges},
	})
	assert.ErrorIs(t, err, binning.ErrMissingEdges)

	_, err = binning.BinSF(ds, velRoles(), kernel.DefaultVel, kernel.Single(2), binning.GridOptions{
		Edges: map[field.Axis][]float64{field.AxisX: {1}, field.AxisY: edges},
	})
	assert.ErrorIs(t, err, binning.ErrTooFewEdges)

	_, err = binning.BinSF(ds, velRoles(), kernel.DefaultVel, kernel.Single(2), binning.GridOptions{
		Edges: map[field.Axis][]float64{field.AxisX: {0, 2, 1}, field.AxisY: edges},
	})
	assert.ErrorIs(t, err, binning.ErrEdgesNotIncreasing)

	_, err = binning.BinSF(ds, velRoles(), kernel.DefaultVel, kernel.Single(2), binning.GridOptions{
		Edges:     map[field.Axis][]float64{field.AxisX: edges, field.AxisY: edges},
		Bootstrap: binning.BootstrapOptions{InitialBootstrap: 500, MaxBootstrap: 100},
	})
	assert.ErrorIs(t, err, binning.ErrBadBootstrapConfig)
}

//----------------------------------------------------------------------------//
// BinSF end-to-end
//----------------------------------------------------------------------------//

// TestBinSF_ConstantField: a uniform velocity field has zero increments
// everywhere, so every populated bin settles at mean 0 (or stays NaN
// where separations carry zero area weight) and converges during the
// initial phase.
func TestBinSF_ConstantField(t *testing.T) {
	ds := constantDataset(t, 4, 4)
	edges := separationEdges()

	res, err := binning.BinSF(ds, velRoles(), kernel.DefaultVel, kernel.Single(2), binning.GridOptions{
		Edges: map[field.Axis][]float64{field.AxisX: edges, field.AxisY: edges},
	})
	require.NoError(t, err)

	assert.Equal(t, field.AxisY, res.RowAxis)
	assert.Equal(t, field.AxisX, res.ColAxis)
	assert.Equal(t, []int{1, 2, 3}, res.Meta.Spacings)
	assert.Equal(t, []field.Axis{field.AxisY, field.AxisX}, res.Meta.BootstrappableAxes)

	populated := 0
	for j := range res.Mean {
		for i := range res.Mean[j] {
			mean, std := res.Mean[j][i], res.Std[j][i]
			if res.Points[j][i] > 0 {
				populated++
				assert.Truef(t, res.Converged[j][i], "bin (%d,%d) must converge in the initial phase", j, i)
				assert.Truef(t, mean == 0 || math.IsNaN(mean), "bin (%d,%d) mean = %v", j, i, mean)
				assert.Truef(t, std == 0 || math.IsNaN(std), "bin (%d,%d) std = %v", j, i, std)
			} else {
				assert.Equalf(t, binning.StateUnseen, res.State[j][i], "bin (%d,%d)", j, i)
				assert.Truef(t, math.IsNaN(mean), "unseen bin (%d,%d) has no estimate", j, i)
			}
			// no refinement happened anywhere
			assert.Equal(t, 100, res.Bootstraps[j][i])
		}
	}
	assert.Greater(t, populated, 0)

	// the diagonal separation bin carries positive |Δx·Δy| weight
	assert.Equal(t, 0.0, res.Mean[1][1])
	assert.Equal(t, 0.0, res.Std[1][1])

	// edge arrays round-trip exactly
	if diff := cmp.Diff(edges, res.RowEdges); diff != "" {
		t.Errorf("row edges (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(edges, res.ColEdges); diff != "" {
		t.Errorf("col edges (-want +got):\n%s", diff)
	}
	assert.Equal(t, binning.Linear, res.RowScale)
	assert.InDeltaSlice(t, []float64{0, 1, 2, 3}, res.ColCenters, 1e-12)
}

// TestBinSF_BudgetBounds: with a tight epsilon every refined bin must
// stop inside [initial, max] and end in a terminal state.
func TestBinSF_BudgetBounds(t *testing.T) {
	ds := variedDataset(t, 8, 8)
	edges := []float64{-0.5, 0.5, 1.5, 2.5, 3.5, 4.5, 5.5, 6.5, 7.5}

	opts := binning.GridOptions{
		Edges: map[field.Axis][]float64{field.AxisX: edges, field.AxisY: edges},
		Bootstrap: binning.BootstrapOptions{
			InitialBootstrap: 30,
			MaxBootstrap:     60,
			StepBootstrap:    10,
			ConvergenceEps:   1e-12,
		},
	}
	res, err := binning.BinSF(ds, velRoles(), kernel.Longitudinal, kernel.Single(2), opts)
	require.NoError(t, err)

	for j := range res.Bootstraps {
		for i := range res.Bootstraps[j] {
			b := res.Bootstraps[j][i]
			assert.GreaterOrEqual(t, b, 30)
			assert.LessOrEqual(t, b, 60, "budget is clamped at MaxBootstrap")
			if res.Points[j][i] > 0 {
				assert.Truef(t, res.State[j][i].Terminal(), "bin (%d,%d) state %s", j, i, res.State[j][i])
			}
		}
	}

	// density snapshot is normalized to a maximum of 1
	maxDensity := 0.0
	for j := range res.Density {
		for i := range res.Density[j] {
			if d := res.Density[j][i]; d > maxDensity {
				maxDensity = d
			}
		}
	}
	assert.InDelta(t, 1.0, maxDensity, 1e-9)
}

// TestBinSF_Deterministic: identical inputs yield bit-identical
// statistics.
func TestBinSF_Deterministic(t *testing.T) {
	edges := []float64{-0.5, 0.5, 1.5, 2.5, 3.5, 4.5, 5.5}
	run := func() *binning.GridResult {
		ds := variedDataset(t, 6, 6)
		res, err := binning.BinSF(ds, velRoles(), kernel.DefaultVel, kernel.Single(2), binning.GridOptions{
			Edges: map[field.Axis][]float64{field.AxisX: edges, field.AxisY: edges},
			Bootstrap: binning.BootstrapOptions{
				InitialBootstrap: 20, MaxBootstrap: 40, StepBootstrap: 10, ConvergenceEps: 0.5,
				Workers: 3,
			},
		})
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	for _, pair := range []struct {
		name      string
		got, want [][]float64
	}{
		{"mean", a.Mean, b.Mean},
		{"std", a.Std, b.Std},
		{"density", a.Density, b.Density},
	} {
		if diff := cmp.Diff(pair.want, pair.got, cmpopts.EquateNaNs()); diff != "" {
			t.Errorf("%s differs between runs (-want +got):\n%s", pair.name, diff)
		}
	}
	assert.Equal(t, b.Bootstraps, a.Bootstraps)
	assert.Equal(t, b.Points, a.Points)
}

// TestBinSF_NoBootstrap: full-length windows leave nothing to resample;
// the result is one deterministic pass with per-point statistics.
func TestBinSF_NoBootstrap(t *testing.T) {
	ds := constantDataset(t, 4, 4)
	edges := separationEdges()

	res, err := binning.BinSF(ds, velRoles(), kernel.DefaultVel, kernel.Single(2), binning.GridOptions{
		Edges: map[field.Axis][]float64{field.AxisX: edges, field.AxisY: edges},
		Bootstrap: binning.BootstrapOptions{
			Bootsize: boot.Sizes{field.AxisY: 4, field.AxisX: 4},
		},
	})
	require.NoError(t, err)

	assert.Empty(t, res.Meta.BootstrappableAxes)
	assert.Equal(t, 0.0, res.Mean[1][1])
	assert.Equal(t, 0.0, res.Std[1][1])
	assert.True(t, res.Converged[1][1])
	assert.Zero(t, res.Bootstraps[1][1], "nothing was resampled")
	assert.Greater(t, res.Points[1][1], 0)
}

//----------------------------------------------------------------------------//
// IsotropicSF
//----------------------------------------------------------------------------//

// TestIsotropicSF_Validation rejects malformed radial and angular bins.
func TestIsotropicSF_Validation(t *testing.T) {
	ds := constantDataset(t, 4, 4)

	_, err := binning.IsotropicSF(nil, velRoles(), kernel.DefaultVel, kernel.Single(2), binning.IsoOptions{})
	assert.ErrorIs(t, err, sample.ErrNilDataset)

	_, err = binning.IsotropicSF(ds, velRoles(), kernel.DefaultVel, kernel.Single(2), binning.IsoOptions{})
	assert.ErrorIs(t, err, binning.ErrTooFewEdges)

	_, err = binning.IsotropicSF(ds, velRoles(), kernel.DefaultVel, kernel.Single(2), binning.IsoOptions{
		REdges: []float64{0, 1, 2}, NTheta: -4,
	})
	assert.ErrorIs(t, err, binning.ErrBadAngularBins)

	_, err = binning.IsotropicSF(ds, velRoles(), kernel.DefaultVel, kernel.Single(2), binning.IsoOptions{
		REdges:    []float64{0, 1, 2},
		Bootstrap: binning.BootstrapOptions{InitialBootstrap: 500, MaxBootstrap: 100},
	})
	assert.ErrorIs(t, err, binning.ErrBadBootstrapConfig)
}

// TestIsotropicSF_ConstantField: zero increments make every estimate 0
// (or NaN at zero-weight separations) with vanishing isotropy error.
func TestIsotropicSF_ConstantField(t *testing.T) {
	ds := constantDataset(t, 4, 4)

	res, err := binning.IsotropicSF(ds, velRoles(), kernel.DefaultVel, kernel.Single(2), binning.IsoOptions{
		REdges: []float64{0, 1, 2, 3, 4, 5},
		NTheta: 8,
	})
	require.NoError(t, err)

	// angular edges span the full circle
	require.Len(t, res.ThetaEdges, 9)
	assert.InDelta(t, -math.Pi, res.ThetaEdges[0], 1e-15)
	assert.InDelta(t, math.Pi, res.ThetaEdges[8], 1e-15)
	require.Len(t, res.RCenters, 5)

	for i := range res.Mean {
		if res.Points[i] == 0 {
			assert.Equal(t, binning.StateUnseen, res.State[i])
			continue
		}
		assert.Truef(t, res.Converged[i], "radial bin %d", i)
		assert.Truef(t, res.Mean[i] == 0 || math.IsNaN(res.Mean[i]), "bin %d mean = %v", i, res.Mean[i])
		assert.LessOrEqualf(t, res.ErrIsotropy[i], 1e-12, "bin %d isotropy error", i)
	}

	// radial bin 1 covers |Δ| ∈ [1,2): unit separations, weight r = 1
	assert.Equal(t, 0.0, res.Mean[1])
	assert.Equal(t, 0.0, res.CIUpper[1], "zero spread collapses the interval")
	assert.Equal(t, 0.0, res.CILower[1])

	if diff := cmp.Diff([]float64{0, 1, 2, 3, 4, 5}, res.REdges); diff != "" {
		t.Errorf("radial edges (-want +got):\n%s", diff)
	}
}

// TestIsotropicSF_CICollapse: in the deterministic path a radial bin
// fed by a single point has its confidence interval collapsed to the
// mean.
func TestIsotropicSF_CICollapse(t *testing.T) {
	ds := constantDataset(t, 2, 2)

	res, err := binning.IsotropicSF(ds, velRoles(), kernel.DefaultVel, kernel.Single(2), binning.IsoOptions{
		REdges: []float64{0.5, 1.2, 1.5},
		NTheta: 4,
		Bootstrap: binning.BootstrapOptions{
			Bootsize: boot.Sizes{field.AxisY: 2, field.AxisX: 2},
		},
	})
	require.NoError(t, err)

	// bin 1 holds only the diagonal separation √2
	require.Equal(t, 1, res.Points[1])
	assert.Equal(t, res.Mean[1], res.CIUpper[1])
	assert.Equal(t, res.Mean[1], res.CILower[1])
}

// TestIsotropicSF_Windows: default diagnostic windows and the reduced
// homogeneity subset.
func TestIsotropicSF_Windows(t *testing.T) {
	ds := variedDataset(t, 6, 6)

	res, err := binning.IsotropicSF(ds, velRoles(), kernel.DefaultVel, kernel.Single(2), binning.IsoOptions{
		REdges: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8},
		Bootstrap: binning.BootstrapOptions{
			InitialBootstrap: 20, MaxBootstrap: 40, StepBootstrap: 10, ConvergenceEps: 0.5,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 12, res.WindowTheta, "36 angular bins / 3")
	assert.Equal(t, 2, res.WindowR, "8 radial bins / 3")

	// 8 radial bins with window 2: subset keeps 8-2+1 = 7 radii
	require.Len(t, res.RSubset, 7)
	require.Len(t, res.ErrHomogeneity, 7)
	assert.InDeltaSlice(t, res.RCenters[:7], res.RSubset, 1e-12)

	require.Len(t, res.Polar, 36)
	for _, row := range res.Polar {
		require.Len(t, row, 8)
	}
}

// TestIsotropicSF_Deterministic: identical inputs yield identical
// radial statistics.
func TestIsotropicSF_Deterministic(t *testing.T) {
	run := func() *binning.IsoResult {
		ds := variedDataset(t, 6, 6)
		res, err := binning.IsotropicSF(ds, velRoles(), kernel.Longitudinal, kernel.Single(3), binning.IsoOptions{
			REdges: []float64{0, 1, 2, 3, 4, 5},
			NTheta: 12,
			Bootstrap: binning.BootstrapOptions{
				InitialBootstrap: 20, MaxBootstrap: 40, StepBootstrap: 10, ConvergenceEps: 0.5,
				Workers: 2,
			},
		})
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	for _, pair := range []struct {
		name      string
		got, want []float64
	}{
		{"mean", a.Mean, b.Mean},
		{"std", a.Std, b.Std},
		{"isotropy", a.ErrIsotropy, b.ErrIsotropy},
		{"homogeneity", a.ErrHomogeneity, b.ErrHomogeneity},
	} {
		if diff := cmp.Diff(pair.want, pair.got, cmpopts.EquateNaNs()); diff != "" {
			t.Errorf("%s differs between runs (-want +got):\n%s", pair.name, diff)
		}
	}
	if diff := cmp.Diff(b.Polar, a.Polar, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("polar matrix differs between runs (-want +got):\n%s", diff)
	}
	assert.Equal(t, b.Bootstraps, a.Bootstraps)
}
