// SPDX-License-Identifier: MIT

package normalize

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sanitize replaces non-finite cells of m in place:
//   - NaN → 0;
//   - +Inf → the largest finite value of m (0 if none);
//   - −Inf → the smallest finite value of m (0 if none).
//
// Time: O(r*c). Space: O(1).
func Sanitize(m *mat.Dense) {
	r, c := m.Dims()
	lo, hi := math.Inf(1), math.Inf(-1)
	bad := false
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				bad = true
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if !bad {
		return
	}
	if math.IsInf(hi, -1) {
		lo, hi = 0, 0
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			switch {
			case math.IsNaN(v):
				m.Set(i, j, 0)
			case math.IsInf(v, 1):
				m.Set(i, j, hi)
			case math.IsInf(v, -1):
				m.Set(i, j, lo)
			}
		}
	}
}
