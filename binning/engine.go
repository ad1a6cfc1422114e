package binning

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/turbsf/kernel"
	"github.com/katalvlaran/turbsf/sample"
)

// binner maps kernel batches onto a flat bin space. The grid engine
// works over nRows·nCols rectangular bins, the isotropic engine over
// radial annuli; both own their accumulators and expose them to the
// shared adaptive loop through this interface.
type binner interface {
	// bins returns the flat bin count.
	bins() int
	// areas returns the per-bin geometric area used by the density
	// heuristic.
	areas() []float64
	// ingest routes one slice of bootstrap batches into the bins and
	// returns raw points added per bin. counting distinguishes the
	// initial census phase (points feed the density estimate) from
	// refinement draws, which accumulate statistics only.
	ingest(batches []kernel.Batch, counting bool) []int
	// acc exposes the accumulator of one bin.
	acc(i int) *accumulator
}

// engine drives the shared adaptive convergence loop: an initial census
// split across the spacing ladder, a density snapshot, immediate
// convergence marking, then density-ordered refinement rounds until
// every populated bin converges or exhausts its budget.
type engine struct {
	smp      *sample.Sampler
	spacings []int
	opts     BootstrapOptions
	b        binner

	state   []BinState
	boots   []int
	density []float64
	steps   []int

	// eff tracks, per spacing, the points each bin gained per bootstrap
	// during the census. Refinement splits a bin's budget across
	// spacings in proportion to these rates.
	eff map[int][]float64
}

func newEngine(smp *sample.Sampler, spacings []int, opts BootstrapOptions, b binner) *engine {
	n := b.bins()
	e := &engine{
		smp:      smp,
		spacings: spacings,
		opts:     opts,
		b:        b,
		state:    make([]BinState, n),
		boots:    make([]int, n),
		density:  make([]float64, n),
		steps:    make([]int, n),
		eff:      make(map[int][]float64, len(spacings)),
	}
	for _, sp := range spacings {
		e.eff[sp] = make([]float64, n)
	}
	for i := range e.boots {
		e.boots[i] = opts.InitialBootstrap
	}
	return e
}

// run executes census, density snapshot, marking and refinement.
func (e *engine) run() error {
	if err := e.census(); err != nil {
		return err
	}
	total := e.snapshotDensity()
	if total == 0 {
		return ErrNoValidSamples
	}
	e.markInitial()
	return e.refine()
}

// runSpacing draws n batches at one spacing and feeds them to the
// binner. Census draws also refresh the spacing effectiveness rates.
func (e *engine) runSpacing(sp, n int, counting bool) error {
	if n <= 0 {
		return nil
	}
	e.progress("spacing %d: drawing %d bootstrap samples", sp, n)
	batches, err := e.smp.Run(sp, n)
	if err != nil {
		return fmt.Errorf("binning: sampling at spacing %d: %w", sp, err)
	}
	added := e.b.ingest(batches, counting)
	if counting {
		rate := e.eff[sp]
		for i, a := range added {
			if a > 0 {
				rate[i] = float64(a) / float64(n)
			}
		}
	}
	return nil
}

// census spreads the initial budget evenly across the spacing ladder,
// at least 5 draws per spacing.
func (e *engine) census() error {
	per := e.opts.InitialBootstrap / len(e.spacings)
	if per < 5 {
		per = 5
	}
	e.progress("initial phase: %d samples per spacing over %v", per, e.spacings)
	for _, sp := range e.spacings {
		if err := e.runSpacing(sp, per, true); err != nil {
			return err
		}
	}
	return nil
}

// snapshotDensity computes points/(area·total) per bin, normalized so
// the densest bin sits at 1, and derives the per-bin refinement step
// max(step, ⌊step·(1+2·density)⌋). Returns the total point count.
func (e *engine) snapshotDensity() int {
	total := 0
	for i := 0; i < e.b.bins(); i++ {
		total += e.b.acc(i).points()
	}
	if total == 0 {
		return 0
	}
	areas := e.b.areas()
	maxD := 0.0
	for i := range e.density {
		if areas[i] > 0 {
			e.density[i] = float64(e.b.acc(i).points()) / (areas[i] * float64(total))
		}
		if e.density[i] > maxD {
			maxD = e.density[i]
		}
	}
	if maxD > 0 {
		for i := range e.density {
			e.density[i] /= maxD
		}
	}
	for i := range e.steps {
		scaled := int(float64(e.opts.StepBootstrap) * (1 + 2*e.density[i]))
		if scaled < e.opts.StepBootstrap {
			scaled = e.opts.StepBootstrap
		}
		e.steps[i] = scaled
	}
	return total
}

// markInitial settles the post-census state of every bin: empty bins
// stay unseen, thin (≤10 points) or already-tight bins converge
// immediately, everything else keeps accumulating.
func (e *engine) markInitial() {
	for i := range e.state {
		a := e.b.acc(i)
		if a.points() == 0 {
			e.state[i] = StateUnseen
			continue
		}
		s := a.std()
		if a.points() <= 10 || math.IsNaN(s) || s <= e.opts.ConvergenceEps {
			e.state[i] = StateConverged
			continue
		}
		e.state[i] = StateAccumulating
	}
}

// refine runs convergence rounds. Each round visits the accumulating
// bins in decreasing density order and spends the bin's step budget
// across spacings in proportion to their census effectiveness. Integer
// truncation can starve the whole allocation; that case escalates the
// full step to the most effective spacing, so a visited bin's budget
// strictly increases and the loop terminates at MaxBootstrap.
func (e *engine) refine() error {
	for round := 1; ; round++ {
		order := e.pending()
		if len(order) == 0 {
			e.progress("all bins converged or reached max bootstraps")
			return nil
		}
		e.progress("refinement round %d: %d unconverged bins", round, len(order))

		for _, i := range order {
			if e.state[i].Terminal() {
				continue
			}
			// clamp to the remaining budget so the consumed count never
			// exceeds MaxBootstrap; pending guarantees at least 1 left
			step := e.steps[i]
			if rem := e.opts.MaxBootstrap - e.boots[i]; step > rem {
				step = rem
			}
			added, err := e.spend(i, step)
			if err != nil {
				return err
			}
			e.boots[i] += added

			// Draws for one bin land everywhere, so only the visited
			// bin is re-judged; siblings are re-filtered next round.
			s := e.b.acc(i).std()
			if !math.IsNaN(s) && s <= e.opts.ConvergenceEps {
				e.state[i] = StateConverged
				e.progress("bin %d converged with std %.6f", i, s)
			} else if e.boots[i] >= e.opts.MaxBootstrap {
				e.state[i] = StateMaxBudget
				e.progress("bin %d reached max bootstraps %d", i, e.opts.MaxBootstrap)
			}
		}
	}
}

// pending lists accumulating bins with remaining budget, densest first;
// ties break on bin index for determinism.
func (e *engine) pending() []int {
	var order []int
	for i := range e.state {
		if e.state[i] == StateAccumulating && e.boots[i] < e.opts.MaxBootstrap {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		if e.density[order[a]] != e.density[order[b]] {
			return e.density[order[a]] > e.density[order[b]]
		}
		return order[a] < order[b]
	})
	return order
}

// spend distributes step draws for bin i across the spacing ladder in
// proportion to effectiveness and returns how many were actually drawn.
func (e *engine) spend(i, step int) (int, error) {
	type spEff struct {
		sp  int
		eff float64
	}
	ranked := make([]spEff, 0, len(e.spacings))
	total := 0.0
	for _, sp := range e.spacings {
		r := spEff{sp: sp, eff: e.eff[sp][i]}
		ranked = append(ranked, r)
		if r.eff > 0 {
			total += r.eff
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].eff > ranked[b].eff })

	added := 0
	remaining := step
	if total > 0 {
		for _, r := range ranked {
			if r.eff <= 0 || remaining <= 0 {
				break
			}
			n := int(float64(step) * r.eff / total)
			if n > remaining {
				n = remaining
			}
			if err := e.runSpacing(r.sp, n, false); err != nil {
				return added, err
			}
			added += n
			remaining -= n
		}
	}
	if added == 0 {
		// Every proportional share truncated to zero (or no spacing was
		// ever effective): escalate the whole step to the best spacing.
		if err := e.runSpacing(ranked[0].sp, step, false); err != nil {
			return added, err
		}
		added = step
	}
	return added, nil
}

func (e *engine) progress(format string, args ...any) {
	if e.opts.Progress != nil {
		e.opts.Progress(format, args...)
	}
}
