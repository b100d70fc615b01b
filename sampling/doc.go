// SPDX-License-Identifier: MIT

// Package sampling holds the per-rank random stream and the draws the contact
// sampler makes from it: stochastic rounding, Poisson counts with optional
// Normal uncertainty on their mean, and partner selection.
//
// Determinism:
//   - Same seed ⇒ identical stream across platforms (PCG from math/rand/v2).
//   - One RNG per rank, seeded once. The RNG is NOT goroutine-safe.
//   - Seed 0 maps to a fixed default seed, never to a time-based source.
package sampling
