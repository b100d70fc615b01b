// SPDX-License-Identifier: MIT

package rebin

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/contactsim/agebin"
)

// Reducer folds a block of fine cells into one target cell.
type Reducer int

const (
	// Sum adds the block, for additive quantities.
	Sum Reducer = iota
	// Mean averages the block, for intensive quantities.
	Mean
)

func (r Reducer) String() string {
	if r == Mean {
		return "mean"
	}
	return "sum"
}

// span is the half-open range of fine indices covered by one target bin.
type span struct{ lo, hi int }

// Contractor maps matrices on a fine scheme onto a target scheme.
// Build once with NewContractor, then reuse.
type Contractor struct {
	fine, target agebin.Scheme
	spans        []span
}

// NewContractor validates that every target edge coincides with a fine edge.
//
// Complexity: O(T log F) for T target and F fine edges.
func NewContractor(fine, target agebin.Scheme) (*Contractor, error) {
	fe := fine.Edges()
	te := target.Edges()
	idx := make([]int, len(te))
	for k, e := range te {
		i := sort.SearchInts(fe, e)
		if i == len(fe) || fe[i] != e {
			return nil, fmt.Errorf("%s→%s: edge %d: %w", fine.Name(), target.Name(), e, ErrIncompatibleEdges)
		}
		idx[k] = i
	}
	spans := make([]span, len(te)-1)
	for k := range spans {
		spans[k] = span{lo: idx[k], hi: idx[k+1]}
	}
	return &Contractor{fine: fine, target: target, spans: spans}, nil
}

// Fine returns the source scheme.
func (c *Contractor) Fine() agebin.Scheme { return c.fine }

// Target returns the destination scheme.
func (c *Contractor) Target() agebin.Scheme { return c.target }

// Matrix contracts m (fine×fine) to target×target.
// Cell (a,b) = red(m[a_lo:a_hi, b_lo:b_hi]).
//
// Complexity: O(F²).
func (c *Contractor) Matrix(m mat.Matrix, red Reducer) (*mat.Dense, error) {
	r, cc := m.Dims()
	n := c.fine.Len()
	if r != n || cc != n {
		return nil, fmt.Errorf("%dx%d on %s (%d bins): %w", r, cc, c.fine.Name(), n, ErrDimensionMismatch)
	}
	t := len(c.spans)
	out := mat.NewDense(t, t, nil)
	for a, sa := range c.spans {
		for b, sb := range c.spans {
			var acc float64
			for i := sa.lo; i < sa.hi; i++ {
				for j := sb.lo; j < sb.hi; j++ {
					acc += m.At(i, j)
				}
			}
			if red == Mean {
				acc /= float64((sa.hi - sa.lo) * (sb.hi - sb.lo))
			}
			out.Set(a, b, acc)
		}
	}
	return out, nil
}

// Vector contracts a per-bin vector.
//
// Complexity: O(F).
func (c *Contractor) Vector(v []float64, red Reducer) ([]float64, error) {
	if len(v) != c.fine.Len() {
		return nil, fmt.Errorf("len %d on %s (%d bins): %w", len(v), c.fine.Name(), c.fine.Len(), ErrDimensionMismatch)
	}
	out := make([]float64, len(c.spans))
	for a, s := range c.spans {
		var acc float64
		for i := s.lo; i < s.hi; i++ {
			acc += v[i]
		}
		if red == Mean {
			acc /= float64(s.hi - s.lo)
		}
		out[a] = acc
	}
	return out, nil
}

// Contract is a one-shot NewContractor + Matrix.
func Contract(m mat.Matrix, fine, target agebin.Scheme, red Reducer) (*mat.Dense, error) {
	c, err := NewContractor(fine, target)
	if err != nil {
		return nil, err
	}
	return c.Matrix(m, red)
}

// ContractVector is a one-shot NewContractor + Vector.
func ContractVector(v []float64, fine, target agebin.Scheme, red Reducer) ([]float64, error) {
	c, err := NewContractor(fine, target)
	if err != nil {
		return nil, err
	}
	return c.Vector(v, red)
}

// Contractors returns one contractor from the set's fine scheme onto every
// scheme of set, in set order. The fine scheme maps onto itself. It fails on
// the first scheme whose edges are not fine edges.
func Contractors(set *agebin.Set) ([]*Contractor, error) {
	fine := set.Fine()
	out := make([]*Contractor, 0, set.Len())
	for _, sc := range set.Schemes() {
		c, err := NewContractor(fine, sc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
