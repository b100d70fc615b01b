// SPDX-License-Identifier: MIT

package artifact

import (
	"fmt"

	"github.com/katalvlaran/contactsim/agebin"
	"github.com/katalvlaran/contactsim/interaction"
	"github.com/katalvlaran/contactsim/normalize"
	"github.com/katalvlaran/contactsim/rebin"
	"github.com/katalvlaran/contactsim/tracker"
)

// SummaryEntry reports one location under one bin scheme.
type SummaryEntry struct {
	Contacts           [][]float64 `yaml:"contacts"`
	ContactsErr        [][]float64 `yaml:"contacts_err"`
	ProportionPhysical [][]float64 `yaml:"proportion_physical"`
	CharacteristicTime float64     `yaml:"characteristic_time"`
	Type               string      `yaml:"type"`
	Bins               []int       `yaml:"bins"`
}

// InputEntry compares the simulated Interaction view with the input matrix.
type InputEntry struct {
	Bins       []string    `yaml:"bins"`
	Input      [][]float64 `yaml:"input"`
	Normalized [][]float64 `yaml:"normalized"`
	Ratio      [][]float64 `yaml:"ratio"`
}

// Summary is the tracker log document: scheme → location → entry, plus the
// Interaction comparison per location.
type Summary struct {
	Rank        string                             `yaml:"rank"`
	Duplicate   bool                               `yaml:"duplicate"`
	Schemes     map[string]map[string]SummaryEntry `yaml:"schemes"`
	Interaction map[string]InputEntry              `yaml:"interaction"`
}

// NewSummary reports res for every scheme other than single-year bins, per
// base location and for global. Only the unisex view is shown.
func NewSummary(rank string, snap *tracker.Snapshot, res *tracker.Result, store *interaction.Store) (*Summary, error) {
	sum := &Summary{
		Rank:        rank,
		Duplicate:   res.Duplicate,
		Schemes:     make(map[string]map[string]SummaryEntry),
		Interaction: make(map[string]InputEntry),
	}
	for _, sc := range snap.Schemes.Schemes() {
		if sc.Name() == agebin.SYOAName {
			continue
		}
		byLoc := make(map[string]SummaryEntry)
		for _, loc := range snap.BaseLocations() {
			e, err := store.Entry(loc)
			if err != nil {
				return nil, fmt.Errorf("summary %s: %w", loc, err)
			}
			k := unisexOf(sc.Name(), loc)
			norm, ok := res.Normalized[k]
			if !ok {
				return nil, fmt.Errorf("summary %s: %w", k, tracker.ErrMissingKey)
			}
			pp, err := rebin.ProportionPhysical(e, sc)
			if err != nil {
				return nil, fmt.Errorf("summary %s: %w", k, err)
			}
			byLoc[loc] = SummaryEntry{
				Contacts:           rowsOf(norm),
				ContactsErr:        rowsOf(res.NormalizedErr[k]),
				ProportionPhysical: rowsOf(pp),
				CharacteristicTime: e.CharacteristicTime,
				Type:               string(e.BinType),
				Bins:               sc.Edges(),
			}
		}
		k := unisexOf(sc.Name(), tracker.Global)
		norm, ok := res.Normalized[k]
		if !ok {
			return nil, fmt.Errorf("summary %s: %w", k, tracker.ErrMissingKey)
		}
		pp, err := store.ProportionPhysical(tracker.Global)
		if err != nil {
			return nil, fmt.Errorf("summary %s: %w", k, err)
		}
		byLoc[tracker.Global] = SummaryEntry{
			Contacts:           rowsOf(norm),
			ContactsErr:        rowsOf(res.NormalizedErr[k]),
			ProportionPhysical: rowsOf(pp),
			CharacteristicTime: interaction.GlobalCharacteristicDays * 24,
			Type:               string(interaction.Age),
			Bins:               sc.Edges(),
		}
		sum.Schemes[sc.Name()] = byLoc
	}

	for _, loc := range snap.BaseLocations() {
		e, err := store.Entry(loc)
		if err != nil {
			return nil, fmt.Errorf("summary %s: %w", loc, err)
		}
		norm, ok := res.Normalized[tracker.InteractionKey(loc)]
		if !ok {
			continue
		}
		ratio, err := normalize.Ratio(norm, e.Contacts)
		if err != nil {
			return nil, fmt.Errorf("summary interaction %s: %w", loc, err)
		}
		sum.Interaction[loc] = InputEntry{
			Bins:       e.BinLabels(),
			Input:      rowsOf(e.Contacts),
			Normalized: rowsOf(norm),
			Ratio:      rowsOf(ratio),
		}
	}
	return sum, nil
}
