// SPDX-License-Identifier: MIT

package rebin

import "errors"

var (
	// ErrIncompatibleEdges indicates a target edge that is not a fine edge.
	ErrIncompatibleEdges = errors.New("rebin: target edge does not coincide with a fine bin boundary")

	// ErrDimensionMismatch indicates a matrix whose shape differs from its scheme.
	ErrDimensionMismatch = errors.New("rebin: matrix shape does not match scheme")
)
