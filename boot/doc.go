// Package boot builds the resampling machinery under the Monte Carlo
// sampler: bootstrap window sizes, the adaptive spacing ladder, and the
// precomputed index table of valid windows.
//
// What:
//
//   - Setup: resolves per-axis window sizes (default: half the axis) and
//     classifies bootstrappable axes (window strictly shorter than axis).
//   - Spacings: the ladder of window strides; larger strides reach
//     larger physical separations from the same window length.
//   - Table: spacing → axis → columns of window indices, built once and
//     extended on demand; consumers only read it.
//
// Errors:
//
//   - ErrBadBootsize: requested window outside [1, axis length].
//   - ErrBadShape: non-positive axis lengths.
package boot
