// SPDX-License-Identifier: MIT

package population

import "github.com/golang/geo/s2"

// Group is one concrete venue with its current occupants.
type Group interface {
	// Spec is the location type, e.g. "household" or "school".
	Spec() string
	// ID identifies the venue within its location type.
	ID() int
	// People returns every occupant.
	People() []*Person
	// Subgroups returns occupants split by the venue's subgroup rule.
	Subgroups() [][]*Person
	// Location is where the venue sits.
	Location() s2.LatLng
}

// World is the population as seen by the tracker.
type World interface {
	// People returns the full roster, including people not currently placed.
	People() []*Person
	// Groups returns every venue of location type spec.
	Groups(spec string) []Group
}

// Venue is a generic group whose subgroups are used as-is.
type Venue struct {
	Kind   string
	Index  int
	Subs   [][]*Person
	LatLng s2.LatLng
}

func (v *Venue) Spec() string           { return v.Kind }
func (v *Venue) ID() int                { return v.Index }
func (v *Venue) Subgroups() [][]*Person { return v.Subs }
func (v *Venue) Location() s2.LatLng    { return v.LatLng }

// People flattens the subgroups.
func (v *Venue) People() []*Person { return flatten(v.Subs) }

// School keeps teachers in subgroup 0 and one subgroup per year group after it.
type School struct {
	Venue
}

// NewSchool builds a school at ll from teachers and year groups.
func NewSchool(id int, ll s2.LatLng, teachers []*Person, years ...[]*Person) *School {
	subs := make([][]*Person, 0, len(years)+1)
	subs = append(subs, teachers)
	subs = append(subs, years...)
	return &School{Venue: Venue{Kind: "school", Index: id, Subs: subs, LatLng: ll}}
}

// Teachers returns subgroup 0.
func (s *School) Teachers() []*Person {
	if len(s.Subs) == 0 {
		return nil
	}
	return s.Subs[0]
}

// Students returns every year group.
func (s *School) Students() []*Person {
	if len(s.Subs) < 2 {
		return nil
	}
	return flatten(s.Subs[1:])
}

// Shelter is a venue that also knows which occupants form a family.
type Shelter struct {
	Venue
	Fams [][]*Person
}

// Families returns the family units sharing the shelter.
func (s *Shelter) Families() [][]*Person { return s.Fams }

// Household is a Venue of kind "household".
func Household(id int, ll s2.LatLng, subs ...[]*Person) *Venue {
	return &Venue{Kind: "household", Index: id, Subs: subs, LatLng: ll}
}

func flatten(subs [][]*Person) []*Person {
	n := 0
	for _, s := range subs {
		n += len(s)
	}
	out := make([]*Person, 0, n)
	for _, s := range subs {
		out = append(out, s...)
	}
	return out
}

// NewShelter builds a shelter whose subgroups are the venue's own split and
// whose families group the occupants by kinship.
func NewShelter(id int, ll s2.LatLng, subs [][]*Person, families [][]*Person) *Shelter {
	return &Shelter{Venue: Venue{Kind: "shelter", Index: id, Subs: subs, LatLng: ll}, Fams: families}
}
