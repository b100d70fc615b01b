// SPDX-License-Identifier: MIT

package population

import "github.com/golang/geo/s2"

// Sex of a person as tracked by the contact matrices.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

// SexView selects which sex slice of a contact matrix is addressed.
type SexView string

const (
	Unisex     SexView = "unisex"
	MaleView   SexView = SexView(Male)
	FemaleView SexView = SexView(Female)
)

// SexViews lists the views in the order they are stored and reported.
func SexViews() []SexView { return []SexView{Unisex, MaleView, FemaleView} }

// View returns the sex-specific view of s.
func (s Sex) View() SexView { return SexView(s) }

// Person is one simulated individual.
type Person struct {
	ID   int
	Age  int
	Sex  Sex
	Home s2.LatLng
}
