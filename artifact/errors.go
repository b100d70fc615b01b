// SPDX-License-Identifier: MIT

package artifact

import "errors"

var (
	// ErrIncomplete indicates a rank without its params document.
	ErrIncomplete = errors.New("artifact: rank artifact is incomplete")

	// ErrCorrupt indicates an artifact that does not decode into a valid run.
	ErrCorrupt = errors.New("artifact: corrupt artifact")
)
