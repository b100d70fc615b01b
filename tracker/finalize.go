// SPDX-License-Identifier: MIT

package tracker

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/contactsim/interaction"
	"github.com/katalvlaran/contactsim/normalize"
	"github.com/katalvlaran/contactsim/population"
)

// Result holds the derived matrices of one post-processing pass. Interaction
// views use Key{Scheme: InteractionScheme, Location: loc, Sex: Unisex}.
type Result struct {
	Duplicate     bool
	Raw           map[Key]*mat.Dense
	RawErr        map[Key]*mat.Dense
	Normalized    map[Key]*mat.Dense
	NormalizedErr map[Key]*mat.Dense
}

// InteractionKey addresses the Interaction view of loc.
func InteractionKey(loc string) Key {
	return Key{Scheme: InteractionScheme, Location: loc, Sex: population.Unisex}
}

// Finalize normalizes the tracker's current accumulators.
func (t *Tracker) Finalize(duplicate bool) (*Result, error) {
	res, err := Compute(t.Snapshot(), t.store, duplicate)
	if err != nil {
		return nil, err
	}
	t.log.Debug("tracker finalized",
		slog.Int("rank", t.cfg.rank),
		slog.Bool("duplicate", duplicate),
		slog.Int("matrices", len(res.Normalized)))
	return res, nil
}

// Compute runs the normalization pipeline over a snapshot. It serves both a
// live tracker and merged rank totals.
//
// Complexity: O(K·B²) for K keys of B bins.
func Compute(s *Snapshot, store *interaction.Store, duplicate bool) (*Result, error) {
	res := &Result{
		Duplicate:     duplicate,
		Raw:           make(map[Key]*mat.Dense),
		RawErr:        make(map[Key]*mat.Dense),
		Normalized:    make(map[Key]*mat.Dense),
		NormalizedErr: make(map[Key]*mat.Dense),
	}

	for _, k := range s.Keys() {
		raw, ok := s.Contacts[k]
		if !ok {
			return nil, fmt.Errorf("contacts %s: %w", k, ErrMissingKey)
		}
		pop, ok := s.Population[k]
		if !ok {
			return nil, fmt.Errorf("population %s: %w", k, ErrMissingKey)
		}
		if err := res.add(k, raw, pop, s.CumTime[k.Location], store); err != nil {
			return nil, err
		}
	}

	for _, loc := range s.BaseLocations() {
		k := InteractionKey(loc)
		if err := res.add(k, s.Interaction[loc], s.InteractionPop[loc], s.CumTime[loc], store); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (r *Result) add(k Key, raw *mat.Dense, pop []float64, cumTime float64, store *interaction.Store) error {
	charDays, err := store.CharacteristicDays(k.Location)
	if err != nil {
		return fmt.Errorf("%s: %w", k, err)
	}
	norm, nerr, err := normalize.Normalize(raw, pop, charDays, cumTime, r.Duplicate)
	if err != nil {
		return fmt.Errorf("%s: %w", k, err)
	}
	r.Raw[k] = mat.DenseCopyOf(raw)
	r.RawErr[k] = normalize.PoissonError(raw)
	r.Normalized[k] = norm
	r.NormalizedErr[k] = nerr
	return nil
}
