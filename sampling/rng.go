// SPDX-License-Identifier: MIT

package sampling

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultSeed is used when callers pass seed==0.
const DefaultSeed uint64 = 1

// RNG is a deterministic random stream with the draws used by the sampler.
type RNG struct {
	src rand.Source
	r   *rand.Rand
}

// NewRNG returns a PCG-backed stream. Policy: seed==0 ⇒ DefaultSeed.
//
// Complexity: O(1).
func NewRNG(seed uint64) *RNG {
	if seed == 0 {
		seed = DefaultSeed
	}
	src := rand.NewPCG(seed, DeriveSeed(seed, 0))
	return &RNG{src: src, r: rand.New(src)}
}

// DeriveSeed mixes a parent seed and a stream identifier into a new 64-bit
// seed with the SplitMix64 finalizer. Used to give every rank its own stream
// from one run seed.
//
// Complexity: O(1).
func DeriveSeed(parent, stream uint64) uint64 {
	x := parent ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Source exposes the underlying source for gonum distributions.
func (r *RNG) Source() rand.Source { return r.src }

// Float64 returns a uniform draw in [0,1).
func (r *RNG) Float64() float64 { return r.r.Float64() }

// IntN returns a uniform draw in [0,n). It panics if n <= 0.
func (r *RNG) IntN(n int) int { return r.r.IntN(n) }

// RoundStochastic rounds x to floor(x) with probability 1-frac(x) and to
// ceil(x) with probability frac(x), so E[RoundStochastic(x)] = x.
// Non-positive and non-finite inputs return 0.
//
// Complexity: O(1).
func (r *RNG) RoundStochastic(x float64) int {
	if !(x > 0) || math.IsInf(x, 1) {
		return 0
	}
	fl := math.Floor(x)
	n := int(fl)
	if r.r.Float64() < x-fl {
		n++
	}
	return n
}

// Poisson draws from Poisson(lambda). lambda ≤ 0 returns 0.
func (r *RNG) Poisson(lambda float64) float64 {
	if !(lambda > 0) {
		return 0
	}
	return distuv.Poisson{Lambda: lambda, Src: r.src}.Rand()
}

// Normal draws from Normal(mu, sigma). sigma ≤ 0 returns mu.
func (r *RNG) Normal(mu, sigma float64) float64 {
	if !(sigma > 0) {
		return mu
	}
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: r.src}.Rand()
}

// Contacts draws a realized contact count around mean:
//   - meanErr == 0: RoundStochastic(Poisson(mean));
//   - otherwise λ = max(0, Normal(mean, meanErr)), then RoundStochastic(Poisson(λ)).
//
// The result is always ≥ 0.
//
// Complexity: O(λ) expected for small λ (gonum Poisson).
func (r *RNG) Contacts(mean, meanErr float64) int {
	lambda := mean
	if meanErr > 0 {
		lambda = math.Max(0, r.Normal(mean, meanErr))
	}
	return r.RoundStochastic(r.Poisson(lambda))
}

// Deterministic is the non-probabilistic variant: the mean itself, rounded
// stochastically.
func (r *RNG) Deterministic(mean float64) int { return r.RoundStochastic(mean) }

// ChooseWithReplacement returns k uniform indices in [0,n). n == 0 or k ≤ 0
// returns nil.
//
// Complexity: O(k).
func (r *RNG) ChooseWithReplacement(n, k int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}
	out := make([]int, k)
	for i := range out {
		out[i] = r.r.IntN(n)
	}
	return out
}

// Shuffle performs an in-place Fisher–Yates shuffle of a.
//
// Complexity: O(n) time, O(1) extra space.
func (r *RNG) Shuffle(a []int) {
	for i := len(a) - 1; i > 0; i-- {
		j := r.r.IntN(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}

// Permutation returns a shuffled 0..n-1.
//
// Complexity: O(n).
func (r *RNG) Permutation(n int) ([]int, error) {
	if n < 0 {
		return nil, ErrNegativeSize
	}
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	r.Shuffle(p)
	return p, nil
}

// SampleWithoutReplacement returns k distinct indices in [0,n), in draw order.
//
// Complexity: O(n).
func (r *RNG) SampleWithoutReplacement(n, k int) ([]int, error) {
	if n < 0 || k < 0 {
		return nil, ErrNegativeSize
	}
	if k > n {
		return nil, ErrSampleTooLarge
	}
	p, _ := r.Permutation(n)
	return p[:k], nil
}
