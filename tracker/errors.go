// SPDX-License-Identifier: MIT

package tracker

import "errors"

var (
	// ErrNilWorld indicates New was called without a world.
	ErrNilWorld = errors.New("tracker: nil world")

	// ErrNilStore indicates New was called without interaction matrices.
	ErrNilStore = errors.New("tracker: nil interaction store")

	// ErrUnknownLocation indicates a tracked location with no interaction entry.
	ErrUnknownLocation = errors.New("tracker: location has no interaction matrix")

	// ErrNoStep indicates ObserveGroup before the first BeginStep.
	ErrNoStep = errors.New("tracker: ObserveGroup before BeginStep")

	// ErrBadDelta indicates a non-positive step duration.
	ErrBadDelta = errors.New("tracker: step duration must be > 0")

	// ErrMissingKey indicates a snapshot lacking a matrix its layout implies.
	ErrMissingKey = errors.New("tracker: snapshot is missing a key")
)
