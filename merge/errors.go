// SPDX-License-Identifier: MIT

package merge

import "errors"

var (
	// ErrBadRankCount is returned when the expected rank count is not positive.
	ErrBadRankCount = errors.New("merge: expected rank count must be positive")

	// ErrMissingRank indicates an expected rank without a completed artifact.
	ErrMissingRank = errors.New("merge: rank artifact missing")

	// ErrUnexpectedRank indicates an artifact for a rank beyond the expected count.
	ErrUnexpectedRank = errors.New("merge: unexpected rank artifact")

	// ErrRunMismatch indicates ranks from different runs.
	ErrRunMismatch = errors.New("merge: ranks belong to different runs")

	// ErrSchemeMismatch indicates ranks with different bins, sexes, locations
	// or interaction inputs.
	ErrSchemeMismatch = errors.New("merge: ranks disagree on layout")
)
