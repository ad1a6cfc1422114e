package sample

import (
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/turbsf/field"
	"github.com/katalvlaran/turbsf/kernel"
)

// Sampler produces independent bootstrap batches for one spacing value
// at a time. All draws of one Run share the read-only dataset and index
// table and write only to their own output slot, so they execute on a
// bounded worker pool; result order matches draw order but carries no
// statistical meaning.
//
// math/rand.Rand is not goroutine-safe: draws are generated up front on
// a single deterministic stream before the pool fans out, which keeps
// results bit-identical across runs regardless of the worker count.
type Sampler struct {
	cfg Config
}

// New validates the configuration and builds a sampler.
// Returns ErrNilDataset for a missing dataset and kernel.ErrUnknownKind
// for a kind outside the closed set.
func New(cfg Config) (*Sampler, error) {
	if cfg.Dataset == nil {
		return nil, ErrNilDataset
	}
	if !cfg.Kind.Valid() {
		return nil, kernel.ErrUnknownKind
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Seed == 0 {
		cfg.Seed = defaultSeed
	}
	return &Sampler{cfg: cfg}, nil
}

// Axes returns the bootstrappable axes the sampler draws over.
func (s *Sampler) Axes() []field.Axis { return s.cfg.Axes }

// Run draws n independent bootstrap windows for one spacing and
// evaluates the kernel on each. With zero bootstrappable axes it
// returns exactly one deterministic full-dataset batch. When the index
// table has no usable columns for the spacing on some bootstrappable
// axis, it degrades to the same single deterministic batch and reports
// a diagnostic through the Progress hook instead of failing.
// Complexity: n kernel evaluations, at most Workers in flight.
func (s *Sampler) Run(spacing, n int) ([]kernel.Batch, error) {
	if n <= 0 {
		return nil, ErrNoSamples
	}
	if len(s.cfg.Axes) == 0 {
		return s.single()
	}

	entries := s.cfg.Table.For(spacing)
	for _, a := range s.cfg.Axes {
		if len(entries[a]) == 0 {
			s.progress("no valid bootstrap windows for axis %q at spacing %d; evaluating the full dataset once", a, spacing)
			return s.single()
		}
	}

	// Deterministic draw generation: one fixed-seed stream, axis-major
	// order, before any concurrency.
	rng := rand.New(rand.NewSource(s.cfg.Seed))
	windows := make([]Window, n)
	for j := range windows {
		windows[j] = Window{Spacing: spacing, Draw: make(map[field.Axis]int, len(s.cfg.Axes))}
	}
	for _, a := range s.cfg.Axes {
		total := len(entries[a])
		for j := 0; j < n; j++ {
			windows[j].Draw[a] = rng.Intn(total)
		}
	}

	out := make([]kernel.Batch, n)
	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for j := 0; j < n; j++ {
		j := j
		g.Go(func() error {
			b, err := Compute(s.cfg.Dataset, s.cfg.Kind, s.cfg.Roles, s.cfg.Order,
				s.cfg.Table, s.cfg.Axes, &windows[j])
			if err != nil {
				return err
			}
			out[j] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// single evaluates the full dataset once, the degenerate batch used
// when nothing can be resampled.
func (s *Sampler) single() ([]kernel.Batch, error) {
	b, err := Compute(s.cfg.Dataset, s.cfg.Kind, s.cfg.Roles, s.cfg.Order, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	return []kernel.Batch{b}, nil
}

// progress forwards a diagnostic to the configured hook, if any.
func (s *Sampler) progress(format string, args ...any) {
	if s.cfg.Progress != nil {
		s.cfg.Progress(format, args...)
	}
}
