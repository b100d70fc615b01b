// SPDX-License-Identifier: MIT

package rebin

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/contactsim/agebin"
	"github.com/katalvlaran/contactsim/interaction"
)

// adultChildLabels mark Discrete bins that are read as under/over 18.
var adultChildLabels = map[string]bool{
	"adults": true, "children": true, "teachers": true, "students": true,
}

// Expand broadcasts m, defined on the bins given by coarseEdges, onto fine.
// Fine bins outside [coarseEdges[0], coarseEdges[last]) are zero.
//
// Complexity: O(F²).
func Expand(m mat.Matrix, coarseEdges []int, fine agebin.Scheme) (*mat.Dense, error) {
	r, c := m.Dims()
	if len(coarseEdges) < 2 || r != len(coarseEdges)-1 || c != r {
		return nil, fmt.Errorf("%dx%d on %d edges: %w", r, c, len(coarseEdges), ErrDimensionMismatch)
	}
	n := fine.Len()
	owner := make([]int, n)
	for i := 0; i < n; i++ {
		owner[i] = -1
		lo := fine.Lo(i)
		for a := 0; a+1 < len(coarseEdges); a++ {
			if coarseEdges[a] <= lo && lo < coarseEdges[a+1] {
				owner[i] = a
				break
			}
		}
	}
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		if owner[i] < 0 {
			continue
		}
		for j := 0; j < n; j++ {
			if owner[j] < 0 {
				continue
			}
			out.Set(i, j, m.At(owner[i], owner[j]))
		}
	}
	return out, nil
}

// ProportionPhysical moves an entry's proportion-physical matrix onto target
// by expanding it to single-year bins and Mean-contracting.
//
// Edge selection:
//   - Age bins use their own edges;
//   - Discrete bins naming adults/children/teachers/students read as
//     [0, 18, 100];
//   - any 1×1 matrix reads as [0, 100];
//   - other Discrete matrices are returned unchanged.
func ProportionPhysical(e *interaction.Entry, target agebin.Scheme) (*mat.Dense, error) {
	pm := e.ProportionPhysical
	edges := e.Edges
	if e.BinType != interaction.Age {
		ac := false
		for _, l := range e.Labels {
			if adultChildLabels[l] {
				ac = true
				break
			}
		}
		if !ac {
			if r, _ := pm.Dims(); r != 1 {
				return mat.DenseCopyOf(pm), nil
			}
		}
		edges = []int{0, agebin.YoungAdultAge, agebin.MaxAge}
	}
	if r, _ := pm.Dims(); r == 1 {
		edges = []int{0, agebin.MaxAge}
	}

	fine := agebin.SYOA()
	if r, _ := pm.Dims(); r != len(edges)-1 {
		return mat.DenseCopyOf(pm), nil
	}
	full, err := Expand(pm, edges, fine)
	if err != nil {
		return nil, err
	}
	return Contract(full, fine, target, Mean)
}
