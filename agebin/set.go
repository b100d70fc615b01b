// SPDX-License-Identifier: MIT

package agebin

import "fmt"

// Set is an ordered collection of schemes with unique names.
// The fine syoa scheme is always present and always first.
type Set struct {
	schemes []Scheme
	byName  map[string]int
}

// NewSet builds a Set from schemes. SYOA is prepended when absent.
// Returns ErrDuplicateScheme if a name repeats.
func NewSet(schemes ...Scheme) (*Set, error) {
	set := &Set{byName: make(map[string]int, len(schemes)+1)}
	hasFine := false
	for _, s := range schemes {
		if s.name == SYOAName {
			hasFine = true
		}
	}
	if !hasFine {
		set.add(SYOA())
	}
	for _, s := range schemes {
		if s.Len() == 0 {
			return nil, fmt.Errorf("scheme %q: %w", s.name, ErrTooFewEdges)
		}
		if _, dup := set.byName[s.name]; dup {
			return nil, fmt.Errorf("%q: %w", s.name, ErrDuplicateScheme)
		}
		set.add(s)
	}
	return set, nil
}

// DefaultSet returns syoa, 5yr and AC.
func DefaultSet() *Set {
	set, _ := NewSet(SYOA(), FiveYear(), AdultChild())
	return set
}

func (s *Set) add(sc Scheme) {
	s.byName[sc.name] = len(s.schemes)
	s.schemes = append(s.schemes, sc)
}

// Schemes returns the schemes in insertion order (syoa first when implied).
func (s *Set) Schemes() []Scheme {
	out := make([]Scheme, len(s.schemes))
	copy(out, s.schemes)
	return out
}

// Names returns scheme names in order.
func (s *Set) Names() []string {
	out := make([]string, len(s.schemes))
	for i, sc := range s.schemes {
		out[i] = sc.name
	}
	return out
}

// Fine returns the syoa scheme.
func (s *Set) Fine() Scheme {
	return s.schemes[s.byName[SYOAName]]
}

// Lookup returns the scheme called name.
func (s *Set) Lookup(name string) (Scheme, error) {
	i, ok := s.byName[name]
	if !ok {
		return Scheme{}, fmt.Errorf("%q: %w", name, ErrUnknownScheme)
	}
	return s.schemes[i], nil
}

// Len returns the number of schemes.
func (s *Set) Len() int { return len(s.schemes) }

// Equal reports whether both sets hold identical schemes in the same order.
func (s *Set) Equal(o *Set) bool {
	if s == nil || o == nil {
		return s == o
	}
	if len(s.schemes) != len(o.schemes) {
		return false
	}
	for i := range s.schemes {
		if !s.schemes[i].Equal(o.schemes[i]) {
			return false
		}
	}
	return true
}

// Map returns name → edges, the form written into artifacts.
func (s *Set) Map() map[string][]int {
	out := make(map[string][]int, len(s.schemes))
	for _, sc := range s.schemes {
		out[sc.name] = sc.Edges()
	}
	return out
}
