// SPDX-License-Identifier: MIT

package normalize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Factor returns C·Σp / T, or 0 when T is not positive.
//
// Complexity: O(n).
func Factor(pop []float64, charDays, cumTime float64) float64 {
	if !(cumTime > 0) {
		return 0
	}
	return charDays * floats.Sum(pop) / cumTime
}

// weights returns (F_i, F_j) for the duplicate policy.
func weights(duplicate bool) (float64, float64) {
	if duplicate {
		return 1, 1
	}
	return 2, 0
}

// Normalize returns the rate matrix of raw and its error.
//
// Stage 1 (Validate): raw square with side len(pop).
// Stage 2 (Compute): per-cell formula of the package doc with zero-denominator
// terms dropped.
// Stage 3 (Finalize): Sanitize both outputs.
//
// Time: O(n²). Space: O(n²).
func Normalize(raw mat.Matrix, pop []float64, charDays, cumTime float64, duplicate bool) (norm, nerr *mat.Dense, err error) {
	if raw == nil {
		return nil, nil, ErrNilMatrix
	}
	r, c := raw.Dims()
	if r != c || r != len(pop) {
		return nil, nil, fmt.Errorf("raw %dx%d, pop %d: %w", r, c, len(pop), ErrDimensionMismatch)
	}

	norm = mat.NewDense(r, c, nil)
	nerr = mat.NewDense(r, c, nil)
	factor := Factor(pop, charDays, cumTime)
	if factor == 0 {
		return norm, nerr, nil
	}

	fi, fj := weights(duplicate)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			pi, pj := pop[i], pop[j]
			if pj == 0 {
				continue
			}
			w := pi / pj
			rij, rji := raw.At(i, j), raw.At(j, i)

			a := fi * rij / pj
			ea := fi * math.Sqrt(rij*pi) / pj
			var b, eb float64
			if pi != 0 {
				b = fj * rji / pi * w
				eb = fj * math.Sqrt(rji*pj) / pi * w
			}
			norm.Set(i, j, 0.5*(a+b)*factor)
			nerr.Set(i, j, 0.5*math.Sqrt(ea*ea+eb*eb)*factor)
		}
	}
	Sanitize(norm)
	Sanitize(nerr)
	return norm, nerr, nil
}

// PoissonError returns √raw elementwise; negative cells yield 0.
//
// Time: O(r*c).
func PoissonError(raw mat.Matrix) *mat.Dense {
	r, c := raw.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, _ int, v float64) float64 {
		if v <= 0 {
			return 0
		}
		return math.Sqrt(v)
	}, raw)
	return out
}

// Ratio returns a/b elementwise, sanitized. Used to compare simulated rates
// against the interaction-matrix input.
func Ratio(a, b mat.Matrix) (*mat.Dense, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return nil, fmt.Errorf("%dx%d / %dx%d: %w", ar, ac, br, bc, ErrDimensionMismatch)
	}
	out := mat.NewDense(ar, ac, nil)
	out.DivElem(a, b)
	Sanitize(out)
	return out, nil
}
