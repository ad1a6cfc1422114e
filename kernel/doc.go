// Package kernel implements the structure-function kernel library: nine
// pairwise statistical kernels that turn a field subset into one
// aggregate value per discrete separation offset.
//
// What:
//
//   - Kind: a closed enum of the nine kernel variants with a dispatch
//     table built once at startup — longitudinal, transverse,
//     default_vel, scalar, scalar_scalar, longitudinal_transverse,
//     longitudinal_scalar, transverse_scalar, advective.
//   - Order: a single exponent or an (n,k) pair for cross statistics.
//   - Evaluate: iterates every (Δrow,Δcol) offset of the domain, forms
//     forward differences of the needed fields and the mean physical
//     separation, and reduces the per-point statistic to a domain mean
//     that ignores missing values.
//
// Semantics:
//
//   - Each output entry is a domain-wide aggregate per offset — an
//     estimator of a homogeneous-turbulence structure function, not a
//     local filter.
//   - The separation norm is floored at 1e-10 before use as a divisor,
//     so projection kernels are defined at zero separation.
//   - Differences whose partner would wrap across the domain seam are
//     treated as missing values.
//   - Fractional orders of negative differences yield NaN (math.Pow
//     convention) and drop out of the domain mean.
//
// Errors:
//
//   - ErrUnknownKind: kernel outside the closed variant set.
//   - ErrRoleArity: role manifest not matching the kernel's variables.
//   - ErrCrossOrder, ErrSingleOrder: order form not matching the kernel.
package kernel
