// SPDX-License-Identifier: MIT

package attendance

import "errors"

var (
	// ErrBinMismatch indicates histograms with different binning.
	ErrBinMismatch = errors.New("attendance: histogram bins differ")

	// ErrStepMismatch indicates records built on different timelines.
	ErrStepMismatch = errors.New("attendance: step timelines differ")

	// ErrNoRecords indicates a merge over zero records.
	ErrNoRecords = errors.New("attendance: nothing to merge")
)
