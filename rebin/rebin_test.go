// SPDX-License-Identifier: MIT

package rebin_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/contactsim/agebin"
	"github.com/katalvlaran/contactsim/interaction"
	"github.com/katalvlaran/contactsim/rebin"
)

func ones(n int) *mat.Dense {
	d := make([]float64, n*n)
	for i := range d {
		d[i] = 1
	}
	return mat.NewDense(n, n, d)
}

func TestContractOnes(t *testing.T) {
	syoa := agebin.SYOA()
	m := ones(syoa.Len())

	got, err := rebin.Contract(m, syoa, agebin.AdultChild(), rebin.Sum)
	require.NoError(t, err)
	assert.Equal(t, []float64{324, 1476, 1476, 6724}, got.RawMatrix().Data)

	got, err = rebin.Contract(m, syoa, agebin.AdultChild(), rebin.Mean)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1}, got.RawMatrix().Data)

	all := agebin.MustScheme("all", []int{0, 100})
	got, err = rebin.Contract(m, syoa, all, rebin.Sum)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, got.At(0, 0))

	mid := agebin.MustScheme("mid", []int{10, 90})
	got, err = rebin.Contract(m, syoa, mid, rebin.Sum)
	require.NoError(t, err)
	assert.Equal(t, 6400.0, got.At(0, 0))
}

func TestContractConservesSum(t *testing.T) {
	syoa := agebin.SYOA()
	n := syoa.Len()
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m.Set(i, j, float64((i*7+j*3)%11))
		}
	}
	want := mat.Sum(m)

	for _, target := range []agebin.Scheme{agebin.FiveYear(), agebin.AdultChild(), agebin.MustScheme("ten", []int{0, 10, 20, 40, 60, 80, 100})} {
		got, err := rebin.Contract(m, syoa, target, rebin.Sum)
		require.NoError(t, err)
		assert.Equal(t, want, mat.Sum(got), target.Name())
	}

	// Chained contraction 5yr → AC also conserves.
	five, err := rebin.Contract(m, syoa, agebin.FiveYear(), rebin.Sum)
	require.NoError(t, err)
	ac, err := rebin.Contract(five, agebin.FiveYear(), agebin.AdultChild(), rebin.Sum)
	require.ErrorIs(t, err, rebin.ErrIncompatibleEdges, "18 is not a 5-year edge")
	assert.Nil(t, ac)
}

func TestContractVector(t *testing.T) {
	syoa := agebin.SYOA()
	v := make([]float64, syoa.Len())
	for i := range v {
		v[i] = float64(i)
	}
	got, err := rebin.ContractVector(v, syoa, agebin.AdultChild(), rebin.Sum)
	require.NoError(t, err)
	assert.Equal(t, floats.Sum(v), floats.Sum(got))
	assert.Equal(t, 153.0, got[0])
}

func TestContractErrors(t *testing.T) {
	_, err := rebin.NewContractor(agebin.FiveYear(), agebin.MustScheme("odd", []int{0, 7, 100}))
	assert.ErrorIs(t, err, rebin.ErrIncompatibleEdges)

	_, err = rebin.Contract(ones(3), agebin.SYOA(), agebin.AdultChild(), rebin.Sum)
	assert.ErrorIs(t, err, rebin.ErrDimensionMismatch)
}

func TestExpand(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	full, err := rebin.Expand(m, []int{0, 18, 100}, agebin.SYOA())
	require.NoError(t, err)
	assert.Equal(t, 1.0, full.At(5, 17))
	assert.Equal(t, 2.0, full.At(17, 18))
	assert.Equal(t, 3.0, full.At(40, 2))
	assert.Equal(t, 4.0, full.At(99, 99))

	back, err := rebin.Contract(full, agebin.SYOA(), agebin.AdultChild(), rebin.Mean)
	require.NoError(t, err)
	assert.Equal(t, m.RawMatrix().Data, back.RawMatrix().Data)
}

func TestProportionPhysical(t *testing.T) {
	store, err := interaction.Load(strings.NewReader(`
contact_matrices:
  school:
    contacts: [[1, 1], [1, 1]]
    proportion_physical: [[0.2, 0.4], [0.4, 0.6]]
    characteristic_time: 8
    type: Discrete
    bins: [teachers, students]
  household:
    contacts: [[1, 1, 1, 1], [1, 1, 1, 1], [1, 1, 1, 1], [1, 1, 1, 1]]
    proportion_physical: [[0.1, 0.2, 0.3, 0.4], [0.1, 0.2, 0.3, 0.4], [0.1, 0.2, 0.3, 0.4], [0.1, 0.2, 0.3, 0.4]]
    characteristic_time: 24
  pub:
    contacts: [[1]]
    proportion_physical: [[0.3]]
    characteristic_time: 3
`))
	require.NoError(t, err)

	school, _ := store.Entry("school")
	got, err := rebin.ProportionPhysical(school, agebin.AdultChild())
	require.NoError(t, err)
	assert.Equal(t, []float64{0.2, 0.4, 0.4, 0.6}, got.RawMatrix().Data)

	hh, _ := store.Entry("household")
	got, err = rebin.ProportionPhysical(hh, agebin.AdultChild())
	require.NoError(t, err)
	assert.Equal(t, hh.ProportionPhysical.RawMatrix().Data, got.RawMatrix().Data, "4 Discrete bins cannot be read as under/over 18")

	pub, _ := store.Entry("pub")
	got, err = rebin.ProportionPhysical(pub, agebin.FiveYear())
	require.NoError(t, err)
	r, c := got.Dims()
	assert.Equal(t, 20, r)
	assert.Equal(t, 20, c)
	assert.InDelta(t, 0.3, got.At(7, 13), 1e-12)
}
