// Package turbsf estimates two-dimensional spatial structure functions
// for turbulence-like gridded fields — velocity components and scalars —
// using bootstrap resampling with adaptive, per-bin convergence.
//
// 🌀 What is turbsf?
//
//	A pure-Go library that brings together:
//		• field    — immutable gridded datasets on a (y,x), (z,x) or (z,y) plane
//		• kernel   — nine structure-function kernels (longitudinal, transverse,
//		             scalar, cross and advective statistics)
//		• boot     — bootstrap window sizing, adaptive spacings and index tables
//		• sample   — a bounded-parallel Monte Carlo sampler over bootstrap windows
//		• binning  — adaptive (Δy,Δx) grid binning and isotropic (r,θ) binning
//		             with per-bin convergence control and isotropy/homogeneity
//		             diagnostics
//
// ✨ Why choose turbsf?
//
//   - Deterministic — fixed-seed sampling; identical inputs give
//     bit-identical statistics regardless of worker count
//   - Adaptive — each spatial bin draws only as many bootstrap samples
//     as it needs to reach the requested precision
//   - Pure Go — no cgo, no array-computation backend required
//
// Typical entry points are binning.BinSF for a rectangular separation
// grid and binning.IsotropicSF for radially binned statistics.
//
//	go get github.com/katalvlaran/turbsf
package turbsf
