// SPDX-License-Identifier: MIT

package agebin

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Well-known scheme names.
const (
	// SYOAName is the single-year-of-age scheme every matrix is defined on first.
	SYOAName = "syoa"

	// FiveYearName is the five-year band scheme used by survey matrices.
	FiveYearName = "5yr"

	// AdultChildName is the two-bin adult/child split.
	AdultChildName = "AC"

	// MaxAge is the exclusive upper edge of the default schemes.
	MaxAge = 100

	// YoungAdultAge is the first age counted as an adult.
	YoungAdultAge = 18
)

// Scheme is a named partition of integer ages into contiguous bins.
// The zero value is not usable; construct with NewScheme.
type Scheme struct {
	name  string
	edges []int
}

// NewScheme validates edges and returns a Scheme.
// Stage 1 (Validate): non-empty name, ≥2 edges, strictly increasing.
// Stage 2 (Finalize): copy edges so the caller may reuse its slice.
func NewScheme(name string, edges []int) (Scheme, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Scheme{}, ErrEmptyName
	}
	if len(edges) < 2 {
		return Scheme{}, fmt.Errorf("scheme %q: %w", name, ErrTooFewEdges)
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return Scheme{}, fmt.Errorf("scheme %q: edge %d (%d) after %d: %w",
				name, i, edges[i], edges[i-1], ErrNotIncreasing)
		}
	}

	return Scheme{name: name, edges: slices.Clone(edges)}, nil
}

// MustScheme is NewScheme for package-level literals; it panics on error.
func MustScheme(name string, edges []int) Scheme {
	s, err := NewScheme(name, edges)
	if err != nil {
		panic(err)
	}
	return s
}

// SYOA returns the single-year-of-age scheme [0, 1, ..., 100].
func SYOA() Scheme {
	edges := make([]int, MaxAge+1)
	for i := range edges {
		edges[i] = i
	}
	return Scheme{name: SYOAName, edges: edges}
}

// FiveYear returns [0, 5, 10, ..., 100].
func FiveYear() Scheme {
	edges := make([]int, 0, MaxAge/5+1)
	for a := 0; a <= MaxAge; a += 5 {
		edges = append(edges, a)
	}
	return Scheme{name: FiveYearName, edges: edges}
}

// AdultChild returns [0, 18, 100].
func AdultChild() Scheme {
	return Scheme{name: AdultChildName, edges: []int{0, YoungAdultAge, MaxAge}}
}

// Name returns the scheme name.
func (s Scheme) Name() string { return s.name }

// Edges returns a copy of the bin edges.
func (s Scheme) Edges() []int { return slices.Clone(s.edges) }

// Len returns the number of bins, len(edges)-1.
func (s Scheme) Len() int {
	if len(s.edges) < 2 {
		return 0
	}
	return len(s.edges) - 1
}

// Lo returns the inclusive lower edge of bin i.
func (s Scheme) Lo(i int) int { return s.edges[i] }

// Hi returns the exclusive upper edge of bin i.
func (s Scheme) Hi(i int) int { return s.edges[i+1] }

// Index returns the bin holding age. ok is false when age lies outside
// [edges[0], edges[last]).
// Complexity: O(log B).
func (s Scheme) Index(age int) (int, bool) {
	n := len(s.edges)
	if n < 2 || age < s.edges[0] || age >= s.edges[n-1] {
		return 0, false
	}
	// First edge strictly greater than age; the bin is the one before it.
	i := sort.SearchInts(s.edges, age+1)
	return i - 1, true
}

// Labels renders bins as "lo-hi" with an inclusive upper age, or a bare
// age for single-year bins.
func (s Scheme) Labels() []string {
	out := make([]string, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		lo, hi := s.edges[i], s.edges[i+1]-1
		if lo == hi {
			out = append(out, strconv.Itoa(lo))
			continue
		}
		out = append(out, fmt.Sprintf("%d-%d", lo, hi))
	}
	return out
}

// Equal reports whether both schemes share a name and identical edges.
func (s Scheme) Equal(o Scheme) bool {
	return s.name == o.name && slices.Equal(s.edges, o.edges)
}

// String implements fmt.Stringer.
func (s Scheme) String() string {
	return fmt.Sprintf("%s%v", s.name, s.edges)
}
