// SPDX-License-Identifier: MIT

package tracker

import (
	"fmt"

	"github.com/katalvlaran/contactsim/interaction"
	"github.com/katalvlaran/contactsim/population"
)

// InteractionScheme names the view kept in interaction-matrix subgroup space.
const InteractionScheme = "Interaction"

// Global is the pseudo-location aggregating every tracked location.
const Global = interaction.Global

// Key addresses one matrix or vector of the stores.
type Key struct {
	Scheme   string
	Location string
	Sex      population.SexView
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Scheme, k.Location, k.Sex)
}
