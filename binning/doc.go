// Package binning aggregates Monte Carlo structure-function batches
// into separation bins with adaptive, per-bin bootstrap refinement:
// a rectangular (Δrow, Δcol) grid engine and an isotropic radial engine
// with angular diagnostics.
//
// What:
//
//   - BinSF: rectangular binning by (Δx, Δy) separation, weights |Δx·Δy|.
//   - IsotropicSF: radial binning by separation magnitude, weights r,
//     plus a polar (θ, r) matrix feeding isotropy and homogeneity errors
//     and 95% confidence intervals.
//   - Shared adaptive engine: census across the spacing ladder, density
//     snapshot, immediate convergence of thin or already-tight bins,
//     then density-ordered refinement rounds that spend each bin's
//     budget on the spacings that historically fed it.
//   - Per-bin state machine: unseen → accumulating → converged or
//     max-budget, both terminal and never revisited.
//
// Why:
//
//   - Separation bins fill at wildly different rates: dense small-scale
//     bins converge early while sparse large-scale bins need most of the
//     sampling budget. Spending uniformly wastes nearly all draws.
//
// Options:
//
//   - GridOptions.Edges: bin edges per plane axis (both required).
//   - IsoOptions.REdges, NTheta, WindowTheta, WindowR: radial edges,
//     angular resolution and diagnostic window sizes.
//   - BootstrapOptions: initial/max/step budgets, convergence epsilon,
//     worker bound, seed, Progress hook. See DefaultBootstrapOptions.
//
// Statistics:
//
//   - Each bootstrap batch contributes one increment per touched bin:
//     its weight-normalized mean and mean of squares. Bin means are
//     means of batch means; a single batch leaves std undefined (NaN).
//   - Bin density = points/(area·total points), normalized to max 1.
//   - Refinement step per bin = max(step, ⌊step·(1+2·density)⌋).
//
// Errors:
//
//   - ErrMissingEdges, ErrTooFewEdges, ErrEdgesNotIncreasing,
//     ErrBadAngularBins: malformed bin geometry.
//   - ErrBadBootstrapConfig: inconsistent budgets or epsilon.
//   - ErrNoValidSamples: the census produced nothing to bin.
//
// Both entry points are deterministic for a fixed seed regardless of
// the worker count. With no bootstrappable axis they degrade to one
// full-dataset pass with per-point weighted statistics.
package binning
