// Package kernel - kinds, orders and sentinel errors for the
// structure-function kernel library.
package kernel

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for kernel validation.
var (
	// ErrUnknownKind indicates a kernel name outside the closed variant set.
	ErrUnknownKind = errors.New("kernel: unknown kernel kind")
	// ErrRoleArity indicates a role manifest that does not match the
	// kernel's required variable roles.
	ErrRoleArity = errors.New("kernel: role manifest does not match kernel arity")
	// ErrCrossOrder indicates a single order supplied where a cross
	// statistic requires an (n,k) pair.
	ErrCrossOrder = errors.New("kernel: order must be an (n,k) pair for a cross statistic")
	// ErrSingleOrder indicates an (n,k) pair supplied to a kernel that
	// takes a single order.
	ErrSingleOrder = errors.New("kernel: order must be a single exponent for this kernel")
)

// Kind enumerates the closed set of structure-function kernels.
type Kind int

const (
	// Longitudinal projects the velocity difference onto the separation
	// direction: (du·x̂ + dv·ŷ)ⁿ.
	Longitudinal Kind = iota
	// Transverse projects perpendicular to the separation: (du·ŷ − dv·x̂)ⁿ.
	Transverse
	// DefaultVel sums the raw component powers: duⁿ + dvⁿ.
	DefaultVel
	// Scalar is the plain scalar difference power: dsⁿ.
	Scalar
	// ScalarScalar is the scalar cross statistic: ds₁ⁿ · ds₂ᵏ.
	ScalarScalar
	// LongitudinalTransverse is the velocity cross statistic:
	// parallelⁿ · perpᵏ.
	LongitudinalTransverse
	// LongitudinalScalar crosses the parallel projection with a scalar:
	// parallelⁿ · dsᵏ.
	LongitudinalScalar
	// TransverseScalar crosses the perpendicular projection with a
	// scalar: perpⁿ · dsᵏ.
	TransverseScalar
	// Advective contracts velocity and advecting-velocity differences:
	// (du·dadv_u + dv·dadv_v)ⁿ.
	Advective

	numKinds // sentinel for table sizing; keep last
)

// kindNames holds the canonical names, indexed by Kind.
var kindNames = [numKinds]string{
	"longitudinal",
	"transverse",
	"default_vel",
	"scalar",
	"scalar_scalar",
	"longitudinal_transverse",
	"longitudinal_scalar",
	"transverse_scalar",
	"advective",
}

// String returns the canonical kernel name.
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kindNames[k]
}

// Valid reports whether k is a member of the closed variant set.
func (k Kind) Valid() bool { return k >= 0 && k < numKinds }

// ParseKind maps a canonical kernel name back to its Kind.
// Returns ErrUnknownKind for anything outside the closed set.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("kernel: %q: %w", name, ErrUnknownKind)
}

// Order carries the exponent(s) of a structure function: a single n, or
// an (n,k) pair for cross statistics.
//
// Power policy: exponents are applied with math.Pow, so a fractional
// order of a negative difference yields NaN and the point is dropped by
// the NaN-aware domain mean, exactly like the floating-point convention
// of array libraries. Integer orders behave as ordinary real powers.
type Order struct {
	n, k  float64
	cross bool
}

// Single builds a single-exponent order.
func Single(n float64) Order { return Order{n: n} }

// Cross builds an (n,k) pair order for cross statistics.
func Cross(n, k float64) Order { return Order{n: n, k: k, cross: true} }

// N returns the first (or only) exponent.
func (o Order) N() float64 { return o.n }

// K returns the second exponent of a pair; zero for single orders.
func (o Order) K() float64 { return o.k }

// IsCross reports whether the order is an (n,k) pair.
func (o Order) IsCross() bool { return o.cross }

// String renders the order as "n" or "(n,k)".
func (o Order) String() string {
	if o.cross {
		return "(" + strconv.FormatFloat(o.n, 'g', -1, 64) + "," + strconv.FormatFloat(o.k, 'g', -1, 64) + ")"
	}
	return strconv.FormatFloat(o.n, 'g', -1, 64)
}

// Batch is the result of one kernel evaluation: flat arrays with one
// entry per discrete offset (rows×cols of the evaluated window). Values
// holds the domain-mean statistic, DX and DY the mean physical
// separation components for that offset. A Batch is ephemeral — it is
// consumed immediately by a binning engine.
type Batch struct {
	Values []float64
	DX     []float64
	DY     []float64
}
