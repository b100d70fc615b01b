// SPDX-License-Identifier: MIT

package interaction

import (
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Entry is the validated configuration of one location type.
// Contacts[i][j] is the expected number of contacts a member of subgroup i
// has with subgroup j over CharacteristicTime hours.
type Entry struct {
	Location           string
	Contacts           *mat.Dense
	ContactsErr        *mat.Dense
	ProportionPhysical *mat.Dense
	CharacteristicTime float64 // hours
	BinType            BinType
	Edges              []int    // Age only
	Labels             []string // Discrete only
	HasErr             bool     // contacts_err was supplied
}

// Subgroups returns the number of subgroups implied by the bins.
func (e *Entry) Subgroups() int {
	if e.BinType == Age {
		return len(e.Edges) - 1
	}
	return len(e.Labels)
}

// CharacteristicDays returns CharacteristicTime in days.
func (e *Entry) CharacteristicDays() float64 {
	return e.CharacteristicTime / 24
}

// Row returns the expected-contact row of subgroup s and its error row, both
// multiplied by factor (the fraction of the characteristic period covered).
// Columns beyond the matrix are not returned.
func (e *Entry) Row(s int, factor float64) (mean, sigma []float64) {
	_, c := e.Contacts.Dims()
	mean = make([]float64, c)
	sigma = make([]float64, c)
	for j := 0; j < c; j++ {
		mean[j] = e.Contacts.At(s, j) * factor
		sigma[j] = e.ContactsErr.At(s, j) * factor
	}
	return mean, sigma
}

// BinLabels returns display labels for the subgroups: the Discrete labels, or
// "lo-hi" ranges for Age edges.
func (e *Entry) BinLabels() []string {
	if e.BinType == Discrete {
		return slices.Clone(e.Labels)
	}
	out := make([]string, 0, len(e.Edges)-1)
	for i := 0; i+1 < len(e.Edges); i++ {
		out = append(out, rangeLabel(e.Edges[i], e.Edges[i+1]-1))
	}
	return out
}
