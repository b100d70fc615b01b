// SPDX-License-Identifier: MIT

package normalize

import "errors"

var (
	// ErrDimensionMismatch indicates raw counts that are not square or whose
	// side differs from the population vector.
	ErrDimensionMismatch = errors.New("normalize: dimension mismatch")

	// ErrNilMatrix indicates a nil input matrix.
	ErrNilMatrix = errors.New("normalize: nil matrix")
)
