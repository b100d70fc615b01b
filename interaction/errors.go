// SPDX-License-Identifier: MIT

package interaction

import "errors"

// Configuration errors. All of them abort initialization.
var (
	// ErrNoMatrices indicates the document has no contact_matrices section.
	ErrNoMatrices = errors.New("interaction: no contact_matrices in document")

	// ErrMissingContacts indicates an entry without a contacts matrix.
	ErrMissingContacts = errors.New("interaction: contacts matrix is missing")

	// ErrRagged indicates a matrix whose rows differ in length.
	ErrRagged = errors.New("interaction: ragged matrix")

	// ErrShapeMismatch indicates a matrix whose shape disagrees with the bins
	// or with the contacts matrix.
	ErrShapeMismatch = errors.New("interaction: matrix shape mismatch")

	// ErrBadBinType indicates a type other than Age or Discrete.
	ErrBadBinType = errors.New("interaction: bin type must be Age or Discrete")

	// ErrBadBins indicates bins that cannot be read for the declared type.
	ErrBadBins = errors.New("interaction: malformed bins")

	// ErrBadValue indicates a negative contact count, a proportion outside
	// [0,1] or a non-finite number.
	ErrBadValue = errors.New("interaction: value out of range")

	// ErrBadCharacteristicTime indicates a characteristic time ≤ 0.
	ErrBadCharacteristicTime = errors.New("interaction: characteristic_time must be > 0")

	// ErrUnknownLocation indicates a lookup for a location with no entry.
	ErrUnknownLocation = errors.New("interaction: unknown location")
)
