package binning

import "math"

// accumulator keeps the running statistics for one bin. Each call to
// add contributes one bootstrap batch: v is the batch's weighted bin
// mean, v2 the batch's weighted mean of squares, w the batch weight.
// The bin mean is therefore a mean of batch means, and the variance
// sumV2/sumW − mean² blends within-batch and between-batch spread.
// Raw point counts are tracked separately so convergence decisions can
// distinguish a thin bin from a noisy one.
type accumulator struct {
	sumV  float64 // Σ v·w over batches
	sumV2 float64 // Σ v2·w over batches
	sumW  float64 // Σ w over batches
	n     int     // batch count
	pts   int     // raw point count across ingested batches
}

// add records one batch contribution; NaN means are skipped but the
// raw point count still grows so emptiness stays observable.
func (a *accumulator) add(v, v2, w float64, points int) {
	a.pts += points
	if math.IsNaN(v) || w <= 0 {
		return
	}
	a.sumV += v * w
	a.sumV2 += v2 * w
	a.sumW += w
	a.n++
}

// mean returns the weighted mean of batch means, NaN when nothing
// contributed.
func (a *accumulator) mean() float64 {
	if a.sumW == 0 {
		return math.NaN()
	}
	return a.sumV / a.sumW
}

// std returns the weighted standard deviation. A single batch carries
// no spread information, so it yields NaN.
func (a *accumulator) std() float64 {
	if a.n < 2 || a.sumW == 0 {
		return math.NaN()
	}
	m := a.sumV / a.sumW
	v := a.sumV2/a.sumW - m*m
	if v < 0 {
		v = 0
	}
	return math.Sqrt(v)
}

// points returns the raw point count seen by the bin.
func (a *accumulator) points() int { return a.pts }

// batches returns how many batches contributed a finite mean.
func (a *accumulator) batches() int { return a.n }
