// Package binning - options, bin states and sentinel errors shared by
// the grid and isotropic adaptive binning engines.
package binning

import (
	"errors"

	"github.com/katalvlaran/turbsf/boot"
	"github.com/katalvlaran/turbsf/field"
	"github.com/katalvlaran/turbsf/kernel"
)

// Sentinel errors for binning validation.
var (
	// ErrMissingEdges indicates bin edges absent for a required plane axis.
	ErrMissingEdges = errors.New("binning: bin edges missing for a required axis")
	// ErrTooFewEdges indicates fewer than two bin edges on an axis.
	ErrTooFewEdges = errors.New("binning: bin edges must contain at least 2 values")
	// ErrEdgesNotIncreasing indicates bin edges that are not strictly increasing.
	ErrEdgesNotIncreasing = errors.New("binning: bin edges must be strictly increasing")
	// ErrBadAngularBins indicates a non-positive angular bin count.
	ErrBadAngularBins = errors.New("binning: angular bin count must be positive")
	// ErrBadBootstrapConfig indicates inconsistent bootstrap counts or epsilon.
	ErrBadBootstrapConfig = errors.New("binning: bootstrap counts must be positive, max ≥ initial, eps > 0")
	// ErrNoValidSamples indicates a run that produced nothing to bin.
	ErrNoValidSamples = errors.New("binning: no valid samples to bin")
)

// BinState is the per-bin convergence state machine:
// Unseen → Accumulating → {Converged, MaxBudget}; the two final states
// are terminal and a bin reaching them is never revisited.
type BinState uint8

const (
	// StateUnseen marks a bin that never received a sample.
	StateUnseen BinState = iota
	// StateAccumulating marks a bin still gathering bootstrap samples.
	StateAccumulating
	// StateConverged marks a bin whose std reached the convergence
	// epsilon, or that holds too little data to refine.
	StateConverged
	// StateMaxBudget marks a bin that exhausted its bootstrap budget.
	StateMaxBudget
)

// Terminal reports whether the state ends refinement for the bin.
func (s BinState) Terminal() bool { return s == StateConverged || s == StateMaxBudget }

// String names the state for diagnostics.
func (s BinState) String() string {
	switch s {
	case StateUnseen:
		return "unseen"
	case StateAccumulating:
		return "accumulating"
	case StateConverged:
		return "converged"
	case StateMaxBudget:
		return "max-budget"
	default:
		return "invalid"
	}
}

// Scale classifies an axis's bin spacing.
type Scale int

const (
	// Linear bins: centers are arithmetic means of the edges.
	Linear Scale = iota
	// Log bins: centers are geometric means of the edges.
	Log
)

// String returns the scale name used in result metadata.
func (s Scale) String() string {
	if s == Log {
		return "logarithmic"
	}
	return "linear"
}

// BootstrapOptions tunes the adaptive sampling shared by both engines.
type BootstrapOptions struct {
	// Bootsize requests bootstrap window lengths per plane axis; a
	// missing axis defaults to half its length (see boot.Setup).
	Bootsize boot.Sizes

	// InitialBootstrap samples are split evenly across the spacing
	// ladder before any convergence decision.
	InitialBootstrap int
	// MaxBootstrap bounds the budget any single bin may consume.
	MaxBootstrap int
	// StepBootstrap is the base budget added to a bin per refinement
	// visit, scaled up with bin density.
	StepBootstrap int
	// ConvergenceEps is the target standard deviation below which a
	// bin's estimate is accepted.
	ConvergenceEps float64

	// Workers bounds concurrent bootstrap draws; non-positive means
	// GOMAXPROCS.
	Workers int
	// Seed fixes the sampling stream; 0 selects the package default.
	Seed int64
	// Progress, when non-nil, receives phase and diagnostic messages.
	Progress func(format string, args ...any)
}

// DefaultBootstrapOptions returns the standard adaptive-sampling
// parameters: 100 initial samples, budget 1000, step 100, eps 0.1.
func DefaultBootstrapOptions() BootstrapOptions {
	return BootstrapOptions{
		InitialBootstrap: 100,
		MaxBootstrap:     1000,
		StepBootstrap:    100,
		ConvergenceEps:   0.1,
	}
}

// normalize fills zero-valued fields with defaults and validates the
// result.
func (o BootstrapOptions) normalize() (BootstrapOptions, error) {
	def := DefaultBootstrapOptions()
	if o.InitialBootstrap == 0 {
		o.InitialBootstrap = def.InitialBootstrap
	}
	if o.MaxBootstrap == 0 {
		o.MaxBootstrap = def.MaxBootstrap
	}
	if o.StepBootstrap == 0 {
		o.StepBootstrap = def.StepBootstrap
	}
	if o.ConvergenceEps == 0 {
		o.ConvergenceEps = def.ConvergenceEps
	}
	if o.InitialBootstrap < 0 || o.StepBootstrap < 0 || o.ConvergenceEps < 0 ||
		o.MaxBootstrap < o.InitialBootstrap {
		return o, ErrBadBootstrapConfig
	}
	return o, nil
}

// GridOptions configures the rectangular (Δy,Δx) binning entry point.
type GridOptions struct {
	// Edges supplies bin edges per plane axis; both axes of the
	// dataset's plane must be present with at least two edges each.
	Edges map[field.Axis][]float64

	Bootstrap BootstrapOptions
}

// IsoOptions configures the isotropic (r,θ) binning entry point.
type IsoOptions struct {
	// REdges are the radial bin edges (≥ 2, strictly increasing).
	REdges []float64
	// NTheta is the angular bin count over the full circle; 0 means 36.
	NTheta int
	// WindowTheta and WindowR size the sliding windows of the isotropy
	// and homogeneity diagnostics; 0 means a third of the bin count.
	WindowTheta int
	WindowR     int

	Bootstrap BootstrapOptions
}

// Meta describes a finished run: what was computed and how sampling was
// configured.
type Meta struct {
	Kernel             kernel.Kind
	Order              kernel.Order
	Roles              field.Roles
	Plane              field.Plane
	BootstrappableAxes []field.Axis
	Spacings           []int
}
