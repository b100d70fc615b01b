// SPDX-License-Identifier: MIT

package agebin

import "errors"

// Sentinel errors for scheme construction. Match with errors.Is.
var (
	// ErrEmptyName indicates a scheme was created without a name.
	ErrEmptyName = errors.New("agebin: scheme name is empty")

	// ErrTooFewEdges indicates fewer than two edges (no bins) were supplied.
	ErrTooFewEdges = errors.New("agebin: scheme needs at least two edges")

	// ErrNotIncreasing indicates edges are not strictly increasing.
	ErrNotIncreasing = errors.New("agebin: edges must be strictly increasing")

	// ErrDuplicateScheme indicates two schemes in a Set share a name.
	ErrDuplicateScheme = errors.New("agebin: duplicate scheme name")

	// ErrUnknownScheme indicates a lookup for a scheme that is not in the Set.
	ErrUnknownScheme = errors.New("agebin: unknown scheme")
)
