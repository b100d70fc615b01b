// SPDX-License-Identifier: MIT

package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/contactsim/agebin"
	"github.com/katalvlaran/contactsim/interaction"
	"github.com/katalvlaran/contactsim/population"
	"github.com/katalvlaran/contactsim/tracker"
)

// CombinedTag names merged artifacts.
const CombinedTag = "Combined"

// SchemeDoc is one bin scheme in a params document.
type SchemeDoc struct {
	Name  string `yaml:"name"`
	Edges []int  `yaml:"edges"`
}

// Params is the run parameter document of one rank or of a merge.
type Params struct {
	Rank        string               `yaml:"rank"`
	RunID       string               `yaml:"run_id"`
	Venues      map[string]int       `yaml:"venues"`
	People      int                  `yaml:"people"`
	TotalDays   float64              `yaml:"total_days"`
	Weekday     []string             `yaml:"weekday_names"`
	Weekend     []string             `yaml:"weekend_names"`
	Schemes     []SchemeDoc          `yaml:"bin_schemes"`
	Sexes       []string             `yaml:"sexes"`
	Locations   []string             `yaml:"locations"`
	Interaction interaction.Document `yaml:"interaction"`
}

// DefaultWeekdays and DefaultWeekend are the day-name lists of a standard week.
var (
	DefaultWeekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
	DefaultWeekend  = []string{"Saturday", "Sunday"}
)

// RankTag returns the artifact tag of a rank.
func RankTag(rank int) string { return "r" + strconv.Itoa(rank) }

// NewParams describes snap for run runID.
func NewParams(rank string, runID uuid.UUID, snap *tracker.Snapshot, store *interaction.Store) Params {
	p := Params{
		Rank:        rank,
		RunID:       runID.String(),
		Venues:      snap.Venues,
		People:      snap.People,
		TotalDays:   snap.TotalDays,
		Weekday:     DefaultWeekdays,
		Weekend:     DefaultWeekend,
		Locations:   snap.Locations,
		Interaction: store.Document(),
	}
	for _, s := range snap.Schemes.Schemes() {
		p.Schemes = append(p.Schemes, SchemeDoc{Name: s.Name(), Edges: s.Edges()})
	}
	for _, v := range snap.Sexes {
		p.Sexes = append(p.Sexes, string(v))
	}
	return p
}

// ParsedRunID returns the run identifier.
func (p Params) ParsedRunID() (uuid.UUID, error) {
	id, err := uuid.Parse(p.RunID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("run_id %q: %w: %w", p.RunID, ErrCorrupt, err)
	}
	return id, nil
}

// SchemeSet rebuilds the bin schemes.
func (p Params) SchemeSet() (*agebin.Set, error) {
	schemes := make([]agebin.Scheme, 0, len(p.Schemes))
	for _, d := range p.Schemes {
		s, err := agebin.NewScheme(d.Name, d.Edges)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		schemes = append(schemes, s)
	}
	set, err := agebin.NewSet(schemes...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return set, nil
}

// SexViews rebuilds the tracked sex views.
func (p Params) SexViews() []population.SexView {
	out := make([]population.SexView, len(p.Sexes))
	for i, s := range p.Sexes {
		out[i] = population.SexView(s)
	}
	return out
}

// Store rebuilds the interaction matrices the run was configured with.
func (p Params) Store() (*interaction.Store, error) {
	s, err := interaction.FromDocument(p.Interaction)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return s, nil
}

// writeYAML writes v to path through a temporary file and a rename, so a
// reader never observes a partial document.
func writeYAML(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("artifact: mkdir %q: %w", filepath.Dir(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("artifact: create %q: %w", path, err)
	}
	enc := yaml.NewEncoder(tmp)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("artifact: encode %q: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("artifact: encode %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("artifact: close %q: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("artifact: rename %q: %w", path, err)
	}
	return nil
}

func readYAML(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("artifact: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("artifact: decode %q: %w: %w", path, ErrCorrupt, err)
	}
	return nil
}

func unixMilli(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
