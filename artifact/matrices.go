// SPDX-License-Identifier: MIT

package artifact

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/contactsim/agebin"
	"github.com/katalvlaran/contactsim/interaction"
	"github.com/katalvlaran/contactsim/normalize"
	"github.com/katalvlaran/contactsim/population"
	"github.com/katalvlaran/contactsim/tracker"
)

// MatrixEntry is one matrix with its bin labels.
type MatrixEntry struct {
	Bins        []string    `yaml:"bins"`
	Contacts    [][]float64 `yaml:"contacts"`
	ContactsErr [][]float64 `yaml:"contacts_err"`
}

// MatrixDocument nests matrices as scheme → location → sex.
// The Interaction view is stored under scheme "Interaction", sex "unisex".
type MatrixDocument map[string]map[string]map[string]MatrixEntry

func (d MatrixDocument) put(k tracker.Key, e MatrixEntry) {
	byLoc, ok := d[k.Scheme]
	if !ok {
		byLoc = make(map[string]map[string]MatrixEntry)
		d[k.Scheme] = byLoc
	}
	bySex, ok := byLoc[k.Location]
	if !ok {
		bySex = make(map[string]MatrixEntry)
		byLoc[k.Location] = bySex
	}
	bySex[string(k.Sex)] = e
}

// Get returns the entry of k.
func (d MatrixDocument) Get(k tracker.Key) (MatrixEntry, bool) {
	e, ok := d[k.Scheme][k.Location][string(k.Sex)]
	return e, ok
}

// RawDocument holds the raw counts of snap with their Poisson errors.
func RawDocument(snap *tracker.Snapshot, store *interaction.Store) (MatrixDocument, error) {
	doc := MatrixDocument{}
	for _, k := range snap.Keys() {
		m, ok := snap.Contacts[k]
		if !ok {
			return nil, fmt.Errorf("%s: %w", k, tracker.ErrMissingKey)
		}
		labels, err := binLabels(snap.Schemes, store, k)
		if err != nil {
			return nil, err
		}
		doc.put(k, entryOf(labels, m, normalize.PoissonError(m)))
	}
	for _, loc := range snap.BaseLocations() {
		k := tracker.InteractionKey(loc)
		labels, err := binLabels(snap.Schemes, store, k)
		if err != nil {
			return nil, err
		}
		m := snap.Interaction[loc]
		doc.put(k, entryOf(labels, m, normalize.PoissonError(m)))
	}
	return doc, nil
}

// NormalizedDocument holds the normalized rates of res.
func NormalizedDocument(res *tracker.Result, schemes *agebin.Set, store *interaction.Store) (MatrixDocument, error) {
	doc := MatrixDocument{}
	for k, m := range res.Normalized {
		labels, err := binLabels(schemes, store, k)
		if err != nil {
			return nil, err
		}
		doc.put(k, entryOf(labels, m, res.NormalizedErr[k]))
	}
	return doc, nil
}

// restoreCounts fills snap.Contacts and snap.Interaction from a raw document.
func restoreCounts(doc MatrixDocument, snap *tracker.Snapshot) error {
	snap.Contacts = make(map[tracker.Key]*mat.Dense)
	snap.Interaction = make(map[string]*mat.Dense)
	for _, k := range snap.Keys() {
		e, ok := doc.Get(k)
		if !ok {
			return fmt.Errorf("%s: %w", k, ErrCorrupt)
		}
		m, err := denseOf(e.Contacts)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		n := snapSchemeLen(snap, k.Scheme)
		if r, c := m.Dims(); r != n || c != n {
			return fmt.Errorf("%s is %dx%d, want %d: %w", k, r, c, n, ErrCorrupt)
		}
		snap.Contacts[k] = m
	}
	for loc := range doc[tracker.InteractionScheme] {
		e, ok := doc.Get(tracker.InteractionKey(loc))
		if !ok {
			return fmt.Errorf("interaction %q: %w", loc, ErrCorrupt)
		}
		m, err := denseOf(e.Contacts)
		if err != nil {
			return fmt.Errorf("interaction %q: %w", loc, err)
		}
		snap.Interaction[loc] = m
	}
	return nil
}

func snapSchemeLen(snap *tracker.Snapshot, name string) int {
	s, err := snap.Schemes.Lookup(name)
	if err != nil {
		return -1
	}
	return s.Len()
}

func binLabels(schemes *agebin.Set, store *interaction.Store, k tracker.Key) ([]string, error) {
	if k.Scheme == tracker.InteractionScheme {
		e, err := store.Entry(k.Location)
		if err != nil {
			return nil, err
		}
		return e.BinLabels(), nil
	}
	s, err := schemes.Lookup(k.Scheme)
	if err != nil {
		return nil, err
	}
	return s.Labels(), nil
}

func entryOf(labels []string, m, merr mat.Matrix) MatrixEntry {
	return MatrixEntry{Bins: labels, Contacts: rowsOf(m), ContactsErr: rowsOf(merr)}
}

func rowsOf(m mat.Matrix) [][]float64 {
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

func denseOf(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty matrix: %w", ErrCorrupt)
	}
	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for _, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("ragged matrix: %w", ErrCorrupt)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), c, data), nil
}

// unisexOf is a shorthand for reports that only show the unisex view.
func unisexOf(scheme, loc string) tracker.Key {
	return tracker.Key{Scheme: scheme, Location: loc, Sex: population.Unisex}
}
