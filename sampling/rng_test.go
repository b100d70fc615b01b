// SPDX-License-Identifier: MIT

package sampling_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/contactsim/sampling"
)

func TestRoundStochasticUnbiased(t *testing.T) {
	const n = 100000
	rng := sampling.NewRNG(42)

	var sum float64
	for i := 0; i < n; i++ {
		v := rng.RoundStochastic(10.3)
		require.True(t, v == 10 || v == 11, "only floor or ceil: got %d", v)
		sum += float64(v)
	}
	// Bernoulli(0.3) spread is sqrt(0.21) ≈ 0.46; allow 5σ/√N.
	tol := 5 * math.Sqrt(0.21) / math.Sqrt(n)
	assert.InDelta(t, 10.3, sum/n, tol)
}

func TestRoundStochasticEdges(t *testing.T) {
	rng := sampling.NewRNG(1)
	assert.Equal(t, 0, rng.RoundStochastic(0))
	assert.Equal(t, 0, rng.RoundStochastic(-3.2))
	assert.Equal(t, 0, rng.RoundStochastic(math.NaN()))
	assert.Equal(t, 7, rng.RoundStochastic(7), "integers are exact")
}

func TestContactsMean(t *testing.T) {
	const n = 50000
	rng := sampling.NewRNG(7)

	cases := []struct {
		name      string
		mean, err float64
	}{
		{"poisson", 2.5, 0},
		{"small", 1.0 / 24, 0},
		{"with error", 3, 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var sum float64
			for i := 0; i < n; i++ {
				c := rng.Contacts(tc.mean, tc.err)
				require.GreaterOrEqual(t, c, 0)
				sum += float64(c)
			}
			sd := math.Sqrt(tc.mean + tc.err*tc.err)
			assert.InDelta(t, tc.mean, sum/n, 5*sd/math.Sqrt(n))
		})
	}

	assert.Equal(t, 0, rng.Contacts(0, 0))
	assert.Equal(t, 0, rng.Contacts(-1, 0))
}

func TestDeterminism(t *testing.T) {
	a, b := sampling.NewRNG(99), sampling.NewRNG(99)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Contacts(4, 1), b.Contacts(4, 1))
	}
	assert.Equal(t, sampling.NewRNG(0).Float64(), sampling.NewRNG(sampling.DefaultSeed).Float64())
	assert.NotEqual(t, sampling.DeriveSeed(5, 1), sampling.DeriveSeed(5, 2))
}

func TestDeterministicContacts(t *testing.T) {
	rng := sampling.NewRNG(8)
	assert.Equal(t, 3, rng.Deterministic(3))
	assert.Equal(t, 0, rng.Deterministic(-2))

	var sum int
	for i := 0; i < 10000; i++ {
		n := rng.Deterministic(2.25)
		require.True(t, n == 2 || n == 3, "got %d", n)
		sum += n
	}
	assert.InDelta(t, 2.25, float64(sum)/10000, 0.03)
}

func TestChoose(t *testing.T) {
	rng := sampling.NewRNG(3)

	idx := rng.ChooseWithReplacement(3, 1000)
	require.Len(t, idx, 1000)
	for _, i := range idx {
		require.True(t, i >= 0 && i < 3)
	}
	assert.Nil(t, rng.ChooseWithReplacement(0, 5))

	s, err := rng.SampleWithoutReplacement(10, 10)
	require.NoError(t, err)
	seen := map[int]bool{}
	for _, v := range s {
		seen[v] = true
	}
	assert.Len(t, seen, 10)

	_, err = rng.SampleWithoutReplacement(3, 4)
	assert.ErrorIs(t, err, sampling.ErrSampleTooLarge)
	_, err = rng.Permutation(-1)
	assert.ErrorIs(t, err, sampling.ErrNegativeSize)
}
