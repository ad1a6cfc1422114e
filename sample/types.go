// Package sample - configuration, window selection and sentinel errors
// for structure-function dispatch and Monte Carlo sampling.
package sample

import (
	"errors"

	"github.com/katalvlaran/turbsf/boot"
	"github.com/katalvlaran/turbsf/field"
	"github.com/katalvlaran/turbsf/kernel"
)

// Sentinel errors for sampling operations.
var (
	// ErrNilDataset indicates a sampler configured without a dataset.
	ErrNilDataset = errors.New("sample: dataset must not be nil")
	// ErrNoSamples indicates a non-positive bootstrap count.
	ErrNoSamples = errors.New("sample: bootstrap count must be positive")
	// ErrDrawRange indicates a window draw index outside the available columns.
	ErrDrawRange = errors.New("sample: draw index out of range for spacing")
)

// Window selects one bootstrap sub-window: a spacing value plus, for
// each bootstrappable axis, the index of one column of the bootstrap
// index table.
type Window struct {
	Spacing int
	Draw    map[field.Axis]int
}

// Config assembles everything one Monte Carlo sampler needs. The
// dataset and index table are shared read-only across all draws.
type Config struct {
	Dataset *field.Dataset
	Kind    kernel.Kind
	Roles   field.Roles
	Order   kernel.Order

	// Table and Axes come from the boot layer; an empty Axes slice means
	// nothing is bootstrappable and every run degenerates to one
	// deterministic full-dataset evaluation.
	Table *boot.Table
	Axes  []field.Axis

	// Workers bounds the concurrent draws; non-positive means GOMAXPROCS.
	Workers int

	// Seed fixes the random stream; 0 selects the package default so
	// repeated runs stay reproducible.
	Seed int64

	// Progress, when non-nil, receives human-readable diagnostics such
	// as degraded-spacing notices. The sampler never logs on its own.
	Progress func(format string, args ...any)
}

// defaultSeed is the fixed seed used when Config.Seed is zero. The
// value is arbitrary but stable so that default runs are reproducible.
const defaultSeed int64 = 10000000
