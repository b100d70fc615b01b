// SPDX-License-Identifier: MIT

package tracker

import (
	"fmt"
	"maps"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/contactsim/agebin"
	"github.com/katalvlaran/contactsim/attendance"
	"github.com/katalvlaran/contactsim/population"
	"github.com/katalvlaran/contactsim/rebin"
)

// Snapshot is a deep copy of a tracker's raw accumulators plus the per-rank
// derived profiles. It is what a rank persists and what the merger combines.
type Snapshot struct {
	Rank      int
	Schemes   *agebin.Set
	Sexes     []population.SexView
	Locations []string // tracked, derived included, global excluded
	Venues    map[string]int
	People    int
	TotalDays float64

	Contacts       map[Key]*mat.Dense
	Population     map[Key][]float64
	CumTime        map[string]float64
	Interaction    map[string]*mat.Dense
	InteractionPop map[string][]float64

	// AgeProfiles counts people with at least one contact, per bin.
	AgeProfiles map[Key][]float64
	// AverageContacts is the mean number of contacts per person per day,
	// per bin. Unisex only.
	AverageContacts map[Key][]float64

	Attendance attendance.Record
}

// AllLocations returns Locations followed by the global pseudo-location.
func (s *Snapshot) AllLocations() []string {
	return append(slices.Clone(s.Locations), Global)
}

// Keys returns every (scheme, location, sex) key of the layout in a stable
// order: scheme, then location, then sex view.
func (s *Snapshot) Keys() []Key {
	var out []Key
	for _, sc := range s.Schemes.Schemes() {
		for _, loc := range s.AllLocations() {
			for _, v := range s.Sexes {
				out = append(out, Key{Scheme: sc.Name(), Location: loc, Sex: v})
			}
		}
	}
	return out
}

// BaseLocations returns the tracked locations that carry an Interaction view.
func (s *Snapshot) BaseLocations() []string {
	out := make([]string, 0, len(s.Interaction))
	for _, loc := range s.Locations {
		if _, ok := s.Interaction[loc]; ok {
			out = append(out, loc)
		}
	}
	return out
}

// Snapshot copies the current single-year accumulators, derives the age
// profiles and average contacts from the per-person counters, and contracts
// everything onto the reporting schemes.
//
// Complexity: O(L·S·(B² + P)).
func (t *Tracker) Snapshot() *Snapshot {
	s := &Snapshot{
		Rank:            t.cfg.rank,
		Schemes:         t.cfg.schemes,
		Sexes:           slices.Clone(t.views),
		Locations:       slices.Clone(t.locations),
		Venues:          maps.Clone(t.venues),
		People:          len(t.roster),
		TotalDays:       t.elapsed.Hours() / 24,
		Contacts:        make(map[Key]*mat.Dense, len(t.contacts)),
		Population:      make(map[Key][]float64, len(t.population)),
		CumTime:         maps.Clone(t.cumTime),
		Interaction:     make(map[string]*mat.Dense, len(t.interaction)),
		InteractionPop:  make(map[string][]float64, len(t.interactionPop)),
		AgeProfiles:     make(map[Key][]float64),
		AverageContacts: make(map[Key][]float64),
		Attendance:      t.attend.Record(),
	}
	for k, m := range t.contacts {
		s.Contacts[k] = mat.DenseCopyOf(m)
	}
	for k, v := range t.population {
		s.Population[k] = slices.Clone(v)
	}
	for k, m := range t.interaction {
		s.Interaction[k] = mat.DenseCopyOf(m)
	}
	for k, v := range t.interactionPop {
		s.InteractionPop[k] = slices.Clone(v)
	}

	n := t.fine.Len()
	for _, loc := range s.AllLocations() {
		counts := t.perPerson[loc]
		for _, v := range t.views {
			prof := make([]float64, n)
			for pi, p := range t.roster {
				b := t.bins[pi]
				if b < 0 || counts[pi] == 0 {
					continue
				}
				if v == population.Unisex || v == p.Sex.View() {
					prof[b]++
				}
			}
			s.AgeProfiles[t.key(loc, v)] = prof
		}

		sum := make([]float64, n)
		num := make([]float64, n)
		for pi := range t.roster {
			b := t.bins[pi]
			if b < 0 {
				continue
			}
			num[b]++
			if s.TotalDays > 0 {
				sum[b] += counts[pi] / s.TotalDays
			}
		}
		// Vector lengths are fixed at New, so contraction cannot fail here.
		for _, c := range t.rebin {
			cs, _ := c.Vector(sum, rebin.Sum)
			cn, _ := c.Vector(num, rebin.Sum)
			for b := range cs {
				if cn[b] > 0 {
					cs[b] /= cn[b]
				}
			}
			s.AverageContacts[Key{Scheme: c.Target().Name(), Location: loc, Sex: population.Unisex}] = cs
		}
	}
	// Every single-year key is allocated at New.
	_ = s.rebinWith(t.rebin)
	return s
}

// Rebin derives the contacts, population-time and age profiles of every
// reporting scheme from the single-year stores by summing. Stores of the
// reporting schemes are replaced.
func (s *Snapshot) Rebin() error {
	cs, err := rebin.Contractors(s.Schemes)
	if err != nil {
		return fmt.Errorf("tracker: rebin snapshot: %w", err)
	}
	return s.rebinWith(cs)
}

func (s *Snapshot) rebinWith(cs []*rebin.Contractor) error {
	fine := s.Schemes.Fine().Name()
	for _, c := range cs {
		name := c.Target().Name()
		if name == fine {
			continue
		}
		for _, loc := range s.AllLocations() {
			for _, v := range s.Sexes {
				src := Key{Scheme: fine, Location: loc, Sex: v}
				dst := Key{Scheme: name, Location: loc, Sex: v}
				m, ok := s.Contacts[src]
				if !ok {
					return fmt.Errorf("contacts %s: %w", src, ErrMissingKey)
				}
				cm, err := c.Matrix(m, rebin.Sum)
				if err != nil {
					return fmt.Errorf("contacts %s: %w", dst, err)
				}
				s.Contacts[dst] = cm
				for _, vs := range []map[Key][]float64{s.Population, s.AgeProfiles} {
					vec, ok := vs[src]
					if !ok {
						return fmt.Errorf("%s: %w", src, ErrMissingKey)
					}
					out, err := c.Vector(vec, rebin.Sum)
					if err != nil {
						return fmt.Errorf("%s: %w", dst, err)
					}
					vs[dst] = out
				}
			}
		}
	}
	return nil
}
