// SPDX-License-Identifier: MIT

package contactsim

import (
	"time"

	"github.com/golang/geo/s2"

	"github.com/katalvlaran/contactsim/population"
	"github.com/katalvlaran/contactsim/sampling"
)

// Day phases of the synthetic schedule.
const (
	StepsPerDay = 3
	StepLength  = 8 * time.Hour

	schoolStart = 8
	eveningHour = 16

	pubShare      = 0.3
	householdsPer = 40 // households per school
	teacherEvery  = 12 // one teacher per this many working-age adults
	minSchoolAge  = 5
	maxSchoolAge  = 17
	idStride      = 1_000_000
)

type home struct {
	id      int
	ll      s2.LatLng
	members []*population.Person
}

// World is a small deterministic population of one rank: households, one
// shelter of families, schools and pubs.
type World struct {
	rank    int
	rng     *sampling.RNG
	people  []*population.Person
	homes   []home
	shelter *population.Shelter
	schools []*population.School
	pubs    []*population.Venue

	pupilOf   map[int]int // person → school
	teacherOf map[int]int
}

// BuildWorld creates the population of rank with the given household count.
// The same rank and seed always build the same world.
func BuildWorld(rank, households int, seed uint64) *World {
	w := &World{
		rank:      rank,
		rng:       sampling.NewRNG(sampling.DeriveSeed(seed, uint64(rank)+1)),
		pupilOf:   make(map[int]int),
		teacherOf: make(map[int]int),
	}
	center := s2.LatLngFromDegrees(51.5+0.05*float64(rank), -0.1)
	next := rank * idStride
	newPerson := func(age int, ll s2.LatLng) *population.Person {
		next++
		sex := population.Female
		if w.rng.IntN(2) == 0 {
			sex = population.Male
		}
		p := &population.Person{ID: next, Age: age, Sex: sex, Home: ll}
		w.people = append(w.people, p)
		return p
	}
	jitter := func() s2.LatLng {
		return s2.LatLngFromDegrees(
			center.Lat.Degrees()+(w.rng.Float64()-0.5)*0.3,
			center.Lng.Degrees()+(w.rng.Float64()-0.5)*0.3)
	}

	nSchools := max(1, households/householdsPer)
	for i := 0; i < nSchools; i++ {
		years := make([][]*population.Person, maxSchoolAge-minSchoolAge+1)
		w.schools = append(w.schools, population.NewSchool(i, jitter(), nil, years...))
	}
	w.pubs = []*population.Venue{
		{Kind: "pub", Index: 0, LatLng: jitter()},
		{Kind: "pub", Index: 1, LatLng: jitter()},
	}

	adults := 0
	for h := 0; h < households; h++ {
		ll := jitter()
		hm := home{id: h, ll: ll}
		for i, n := 0, 1+w.rng.IntN(2); i < n; i++ {
			p := newPerson(20+w.rng.IntN(70), ll)
			hm.members = append(hm.members, p)
			if p.Age >= 25 && p.Age < 65 {
				if adults%teacherEvery == 0 {
					w.teacherOf[p.ID] = (adults / teacherEvery) % nSchools
				}
				adults++
			}
		}
		for i, n := 0, w.rng.IntN(4); i < n; i++ {
			p := newPerson(w.rng.IntN(18), ll)
			hm.members = append(hm.members, p)
			if p.Age >= minSchoolAge && p.Age <= maxSchoolAge {
				w.pupilOf[p.ID] = h % nSchools
			}
		}
		w.homes = append(w.homes, hm)
	}

	ll := jitter()
	var fams [][]*population.Person
	for f := 0; f < 3; f++ {
		fam := []*population.Person{newPerson(25+w.rng.IntN(40), ll)}
		for i, n := 0, 1+w.rng.IntN(3); i < n; i++ {
			fam = append(fam, newPerson(w.rng.IntN(18), ll))
		}
		fams = append(fams, fam)
	}
	var all []*population.Person
	for _, f := range fams {
		all = append(all, f...)
	}
	w.shelter = population.NewShelter(0, ll, [][]*population.Person{all}, fams)
	return w
}

// People returns the rank's roster.
func (w *World) People() []*population.Person { return w.people }

// Groups returns the full-occupancy venues of spec.
func (w *World) Groups(spec string) []population.Group {
	var out []population.Group
	switch spec {
	case "household":
		for _, h := range w.homes {
			out = append(out, householdOf(h, h.members))
		}
	case "shelter":
		out = append(out, w.shelter)
	case "school":
		for _, s := range w.schools {
			out = append(out, s)
		}
	case "pub":
		for _, p := range w.pubs {
			out = append(out, p)
		}
	}
	return out
}

// Step returns the occupied venues for the step starting at ts. Pupils and
// teachers are at school on weekday daytime steps; a share of adults goes to
// a pub in the evening; everyone else stays home.
func (w *World) Step(ts time.Time) []population.Group {
	weekday := ts.Weekday() != time.Saturday && ts.Weekday() != time.Sunday
	daytime := weekday && ts.Hour() == schoolStart
	evening := ts.Hour() == eveningHour

	schools := make([]*population.School, len(w.schools))
	for i, s := range w.schools {
		schools[i] = population.NewSchool(s.ID(), s.Location(), nil,
			make([][]*population.Person, maxSchoolAge-minSchoolAge+1)...)
	}
	pubs := make([]*population.Venue, len(w.pubs))
	for i, p := range w.pubs {
		pubs[i] = &population.Venue{Kind: p.Kind, Index: p.Index, LatLng: p.LatLng,
			Subs: [][]*population.Person{nil}}
	}

	away := func(p *population.Person) bool {
		if daytime {
			if s, ok := w.teacherOf[p.ID]; ok {
				schools[s].Subs[0] = append(schools[s].Subs[0], p)
				return true
			}
			if s, ok := w.pupilOf[p.ID]; ok {
				y := p.Age - minSchoolAge + 1
				schools[s].Subs[y] = append(schools[s].Subs[y], p)
				return true
			}
		}
		if evening && p.Age >= 18 && w.rng.Float64() < pubShare {
			v := pubs[w.rng.IntN(len(pubs))]
			v.Subs[0] = append(v.Subs[0], p)
			return true
		}
		return false
	}

	var out []population.Group
	for _, h := range w.homes {
		var in []*population.Person
		for _, p := range h.members {
			if !away(p) {
				in = append(in, p)
			}
		}
		out = append(out, householdOf(h, in))
	}
	var shelterIn []*population.Person
	for _, p := range w.shelter.People() {
		if !away(p) {
			shelterIn = append(shelterIn, p)
		}
	}
	out = append(out, population.NewShelter(w.shelter.ID(), w.shelter.Location(),
		[][]*population.Person{shelterIn}, w.shelter.Families()))
	if daytime {
		for _, s := range schools {
			out = append(out, s)
		}
	}
	for _, p := range pubs {
		out = append(out, p)
	}
	return out
}

// householdOf splits present members into kids, young adults, adults and
// old people.
func householdOf(h home, present []*population.Person) *population.Venue {
	subs := make([][]*population.Person, 4)
	for _, p := range present {
		switch {
		case p.Age < 18:
			subs[0] = append(subs[0], p)
		case p.Age < 26:
			subs[1] = append(subs[1], p)
		case p.Age < 65:
			subs[2] = append(subs[2], p)
		default:
			subs[3] = append(subs[3], p)
		}
	}
	return population.Household(h.id, h.ll, subs...)
}
