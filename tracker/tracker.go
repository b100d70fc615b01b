// SPDX-License-Identifier: MIT

package tracker

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/contactsim/agebin"
	"github.com/katalvlaran/contactsim/attendance"
	"github.com/katalvlaran/contactsim/interaction"
	"github.com/katalvlaran/contactsim/population"
	"github.com/katalvlaran/contactsim/rebin"
	"github.com/katalvlaran/contactsim/sampling"
)

const secondsPerDay = 24 * 3600

// Tracker is the per-rank contact sampler and accumulator.
type Tracker struct {
	cfg     config
	store   *interaction.Store
	fine    agebin.Scheme
	rebin   []*rebin.Contractor // fine → each reporting scheme
	views   []population.SexView
	log     *slog.Logger
	rng     *sampling.RNG

	base      []string            // tracked configured locations
	derived   map[string][]string // base → derived keys
	locations []string            // base and derived, tracking order
	venues    map[string]int

	roster []*population.Person
	index  map[int]int // person ID → roster slot
	bins   []int       // [slot] single-year bin

	contacts       map[Key]*mat.Dense
	population     map[Key][]float64
	cumTime        map[string]float64
	interaction    map[string]*mat.Dense
	interactionPop map[string][]float64
	perPerson      map[string][]float64 // location → contacts made, per roster slot

	attend  *attendance.Log
	step    attendance.Step
	started bool
	elapsed time.Duration
}

// New builds a tracker over world with every store allocated at its final
// shape.
//
// Counts are kept on the single-year scheme only; Snapshot derives the
// reporting schemes through the rebin contractors.
//
// Stage 1 (Validate): world, store, every reporting scheme against the
// single-year edges and every tracked location.
// Stage 2 (Layout): derived keys of tagging venues, venue counts.
// Stage 3 (Cache): per-person single-year bin.
// Stage 4 (Allocate): contact, population-time and Interaction stores.
//
// Complexity: O(P + L·B²) for P people, L locations, B single-year bins.
func New(world population.World, store *interaction.Store, opts ...Option) (*Tracker, error) {
	if world == nil {
		return nil, ErrNilWorld
	}
	if store == nil {
		return nil, ErrNilStore
	}
	cfg := newConfig(opts...)
	contractors, err := rebin.Contractors(cfg.schemes)
	if err != nil {
		return nil, fmt.Errorf("tracker: reporting schemes: %w", err)
	}

	t := &Tracker{
		cfg:            cfg,
		store:          store,
		fine:           cfg.schemes.Fine(),
		rebin:          contractors,
		views:          cfg.views(),
		log:            cfg.logger,
		rng:            cfg.rng,
		derived:        make(map[string][]string),
		venues:         make(map[string]int),
		index:          make(map[int]int),
		contacts:       make(map[Key]*mat.Dense),
		population:     make(map[Key][]float64),
		cumTime:        make(map[string]float64),
		interaction:    make(map[string]*mat.Dense),
		interactionPop: make(map[string][]float64),
		perPerson:      make(map[string][]float64),
		attend:         attendance.NewLog(cfg.rank, cfg.logOpts...),
	}

	t.base = cfg.locations
	if len(t.base) == 0 {
		t.base = store.Locations()
	}
	for _, loc := range t.base {
		if !store.Has(loc) {
			return nil, fmt.Errorf("%q: %w", loc, ErrUnknownLocation)
		}
		groups := world.Groups(loc)
		t.venues[loc] = len(groups)
		t.locations = append(t.locations, loc)
		for _, g := range groups {
			if tg, ok := g.(population.Tagger); ok {
				for _, sfx := range tg.Suffixes() {
					t.derived[loc] = append(t.derived[loc], loc+sfx)
				}
				break
			}
		}
		t.locations = append(t.locations, t.derived[loc]...)
	}

	for _, p := range world.People() {
		t.slot(p)
	}

	all := append(slices.Clone(t.locations), Global)
	n := t.fine.Len()
	for _, loc := range all {
		for _, v := range t.views {
			k := t.key(loc, v)
			t.contacts[k] = mat.NewDense(n, n, nil)
			t.population[k] = make([]float64, n)
		}
	}
	for _, loc := range all {
		t.cumTime[loc] = 0
		t.perPerson[loc] = make([]float64, len(t.roster))
	}
	for _, loc := range t.base {
		e, _ := store.Entry(loc)
		r, c := e.Contacts.Dims()
		t.interaction[loc] = mat.NewDense(r, c, nil)
		t.interactionPop[loc] = make([]float64, r)
	}

	t.log.Debug("tracker ready",
		slog.Int("rank", cfg.rank),
		slog.Int("people", len(t.roster)),
		slog.Any("locations", t.locations),
		slog.Any("schemes", cfg.schemes.Names()),
		slog.Bool("contact_all", cfg.contactAll),
		slog.Bool("deterministic", cfg.exact))
	return t, nil
}

// slot returns p's roster slot, registering p on first sight.
func (t *Tracker) slot(p *population.Person) int {
	if i, ok := t.index[p.ID]; ok {
		return i
	}
	i := len(t.roster)
	t.index[p.ID] = i
	t.roster = append(t.roster, p)
	b, ok := t.fine.Index(min(p.Age, agebin.MaxAge-1))
	if !ok {
		b = -1
	}
	t.bins = append(t.bins, b)
	for loc, v := range t.perPerson {
		t.perPerson[loc] = append(v, 0)
	}
	return i
}

// Locations returns the tracked locations including derived keys, without
// the global pseudo-location.
func (t *Tracker) Locations() []string { return slices.Clone(t.locations) }

// DaysElapsed returns the number of completed simulated days.
func (t *Tracker) DaysElapsed() int { return t.attend.DaysElapsed() }

// BeginStep opens a simulated step of duration delta starting at ts.
func (t *Tracker) BeginStep(ts time.Time, delta time.Duration) error {
	if delta <= 0 {
		return fmt.Errorf("%v: %w", delta, ErrBadDelta)
	}
	t.step = attendance.Step{Time: ts, Delta: delta}
	t.started = true
	t.elapsed += delta
	t.attend.BeginStep(ts, delta)
	return nil
}

// ObserveGroup samples and accumulates the contacts of one venue for the
// current step. Untracked location types are ignored. Venues with fewer than
// two occupants are logged for attendance only.
//
// Complexity: O(N·(T + C)) for N occupants, T targets, C contacts drawn.
func (t *Tracker) ObserveGroup(g population.Group) error {
	if !t.started {
		return ErrNoStep
	}
	spec := g.Spec()
	if _, ok := t.interaction[spec]; !ok {
		return nil
	}
	t.attend.Observe(g)

	people := g.People()
	if len(people) < 2 {
		return nil
	}
	e, err := t.store.Entry(spec)
	if err != nil {
		return err
	}
	days := t.step.Delta.Seconds() / secondsPerDay
	factor := days / e.CharacteristicDays()

	t.sample(g, e, spec, people, factor)
	t.accumulate(g, spec, people, days)
	return nil
}

// sample draws the contacts of every occupant of g.
func (t *Tracker) sample(g population.Group, e *interaction.Entry, spec string, people []*population.Person, factor float64) {
	subs := g.Subgroups()
	tagger, _ := g.(population.Tagger)
	rows, cols := e.Contacts.Dims()
	im := t.interaction[spec]

	for _, p := range people {
		s := population.SubgroupOf(subs, p)
		if s < 0 {
			continue
		}
		part := population.PartitionOf(g, s)
		if part.Row < 0 || part.Row >= rows {
			continue
		}
		mean, sigma := e.Row(part.Row, factor)
		pi := t.slot(p)

		made := 0
		for _, tg := range part.Targets {
			if tg.Column < 0 || tg.Column >= cols {
				continue
			}
			self := slices.Index(tg.People, p)
			n := len(tg.People)
			if self >= 0 {
				n--
			}
			if n <= 0 {
				continue
			}

			var picks []int
			if t.cfg.contactAll {
				picks = make([]int, n)
				for i := range picks {
					picks[i] = i
				}
			} else {
				var k int
				if t.cfg.exact {
					k = t.rng.Deterministic(mean[tg.Column])
				} else {
					k = t.rng.Contacts(mean[tg.Column], sigma[tg.Column])
				}
				picks = t.rng.ChooseWithReplacement(n, k)
			}
			im.Set(part.Row, tg.Column, im.At(part.Row, tg.Column)+float64(len(picks)))

			for _, i := range picks {
				if self >= 0 && i >= self {
					i++
				}
				q := tg.People[i]
				tag := ""
				if tagger != nil {
					tag = tagger.Tag(p, q)
				}
				t.record(spec, tag, p, pi, t.slot(q))
				made++
			}
		}

		t.perPerson[spec][pi] += float64(made)
		t.perPerson[Global][pi] += float64(made)
		for _, d := range t.derived[spec] {
			t.perPerson[d][pi] += float64(made)
		}
	}
}

// key addresses a single-year store.
func (t *Tracker) key(loc string, v population.SexView) Key {
	return Key{Scheme: t.fine.Name(), Location: loc, Sex: v}
}

// record adds one initiator→partner contact to the single-year stores.
func (t *Tracker) record(spec, tag string, p *population.Person, pi, qi int) {
	locs := [3]string{spec, Global, ""}
	if tag != "" {
		locs[2] = spec + tag
		if _, ok := t.cumTime[locs[2]]; !ok {
			locs[2] = ""
		}
	}
	bi, bj := t.bins[pi], t.bins[qi]
	if bi < 0 || bj < 0 {
		return
	}
	for _, loc := range locs {
		if loc == "" {
			continue
		}
		for _, v := range t.views {
			if v != population.Unisex && v != p.Sex.View() {
				continue
			}
			m := t.contacts[t.key(loc, v)]
			m.Set(bi, bj, m.At(bi, bj)+1)
		}
	}
}

// accumulate adds the population-time and person-time of g's occupants.
func (t *Tracker) accumulate(g population.Group, spec string, people []*population.Person, days float64) {
	rows := population.InteractionRows(g)
	ip := t.interactionPop[spec]
	for r, n := range rows {
		if r < len(ip) {
			ip[r] += float64(n)
		}
	}

	locs := append([]string{spec, Global}, t.derived[spec]...)
	for _, p := range people {
		b := t.bins[t.slot(p)]
		if b < 0 {
			continue
		}
		for _, loc := range locs {
			for _, v := range t.views {
				if v != population.Unisex && v != p.Sex.View() {
					continue
				}
				t.population[t.key(loc, v)][b]++
			}
		}
	}

	occ := float64(len(people)) * days
	for _, loc := range locs {
		t.cumTime[loc] += occ
	}
}
