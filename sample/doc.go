// Package sample connects the kernel library to the bootstrap layer: a
// dispatcher that restricts the dataset to one bootstrap window before
// evaluating a kernel, and a Monte Carlo sampler that fans independent
// draws out over a bounded worker pool.
//
// What:
//
//   - Compute: window restriction (index column per bootstrappable axis,
//     whole-axis fallback) followed by one kernel evaluation.
//   - Sampler.Run: n independent uniform-with-replacement window draws
//     for one spacing, evaluated in parallel; zero bootstrappable axes
//     or an unusable spacing degrade to a single deterministic
//     full-dataset batch with a diagnostic, never a failure.
//
// Determinism:
//
//   - Draws come from one fixed-seed math/rand stream generated before
//     the pool starts; each draw writes only its own slot. Identical
//     inputs produce bit-identical batches for any worker count.
//
// Errors:
//
//   - ErrNilDataset, ErrNoSamples, ErrDrawRange, plus validation errors
//     propagated from the field and kernel packages.
package sample
