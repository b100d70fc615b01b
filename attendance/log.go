// SPDX-License-Identifier: MIT

package attendance

import (
	"sort"
	"time"

	"github.com/golang/geo/s2"

	"github.com/katalvlaran/contactsim/population"
)

// Counts is one head count split by sex.
type Counts struct {
	Unisex int `yaml:"unisex"`
	Male   int `yaml:"male"`
	Female int `yaml:"female"`
}

// View returns the count of one sex view.
func (c Counts) View(v population.SexView) int {
	switch v {
	case population.MaleView:
		return c.Male
	case population.FemaleView:
		return c.Female
	}
	return c.Unisex
}

// Step is one simulated time step.
type Step struct {
	Time  time.Time
	Delta time.Duration
}

// VenueRef identifies a venue across ranks.
type VenueRef struct {
	Rank int
	ID   int
}

// Series holds the per-venue occupancy of one location type.
// ByStep[v] has one entry per step, ByDay[v] one per day.
type Series struct {
	Venues []VenueRef
	ByStep [][]Counts
	ByDay  [][]Counts
}

// Record is the finished, immutable content of a Log.
type Record struct {
	Steps  []Step
	Days   []time.Time
	Series map[string]*Series
	Travel map[string]*Histogram
}

// Locations returns the location types with series, sorted.
func (r Record) Locations() []string {
	out := make([]string, 0, len(r.Series))
	for k := range r.Series {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type venueState struct {
	series  *Series
	index   map[int]int
	where   map[int]s2.LatLng
	current []map[int]*population.Person // per venue, today's attendees
}

// Log accumulates occupancy step by step. It is not safe for concurrent use.
type Log struct {
	rank      int
	binKm     float64
	maxKm     float64
	steps     []Step
	days      []time.Time
	locs      map[string]*venueState
	travel    map[string]*Histogram
	travelDay bool
	travelled bool
}

// Option configures a Log.
type Option func(*Log)

// WithTravelBins overrides the travel histogram binning. It panics on
// non-positive widths.
func WithTravelBins(binKm, maxKm float64) Option {
	if !(binKm > 0) || maxKm < binKm {
		panic("attendance: WithTravelBins(binKm<=0 or maxKm<binKm)")
	}
	return func(l *Log) { l.binKm, l.maxKm = binKm, maxKm }
}

// NewLog returns an empty log for rank.
func NewLog(rank int, opts ...Option) *Log {
	l := &Log{
		rank:   rank,
		binKm:  DefaultBinKm,
		maxKm:  DefaultMaxKm,
		locs:   make(map[string]*venueState),
		travel: make(map[string]*Histogram),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// BeginStep opens a step. A step whose clock time equals the first step's
// clock time starts a new day. The day that starts on a Monday, one to seven
// days into the run, is the travel-distance day.
func (l *Log) BeginStep(ts time.Time, delta time.Duration) {
	first := len(l.steps) == 0
	l.steps = append(l.steps, Step{Time: ts, Delta: delta})
	if !first && !sameClock(ts, l.steps[0].Time) {
		return
	}
	if !first {
		l.closeDay()
	}
	l.days = append(l.days, ts)
	elapsed := len(l.days) - 1
	l.travelDay = !l.travelled && ts.Weekday() == time.Monday && elapsed >= 1 && elapsed <= 7
}

// DaysElapsed returns the number of completed days.
func (l *Log) DaysElapsed() int { return max(len(l.days)-1, 0) }

// Observe records the occupants of g for the current step. It must follow
// BeginStep.
func (l *Log) Observe(g population.Group) {
	if len(l.steps) == 0 {
		return
	}
	st := l.state(g.Spec())
	v, ok := st.index[g.ID()]
	if !ok {
		v = len(st.series.Venues)
		st.index[g.ID()] = v
		st.where[v] = g.Location()
		st.series.Venues = append(st.series.Venues, VenueRef{Rank: l.rank, ID: g.ID()})
		st.series.ByStep = append(st.series.ByStep, nil)
		st.series.ByDay = append(st.series.ByDay, nil)
		st.current = append(st.current, make(map[int]*population.Person))
	}

	var c Counts
	today := st.current[v]
	for _, p := range g.People() {
		c.add(p.Sex)
		today[p.ID] = p
	}
	l.setStep(st.series, v, c)

	var d Counts
	for _, p := range today {
		d.add(p.Sex)
	}
	l.setDay(st.series, v, d)
}

func (c *Counts) add(s population.Sex) {
	c.Unisex++
	switch s {
	case population.Male:
		c.Male++
	case population.Female:
		c.Female++
	}
}

func (l *Log) setStep(s *Series, v int, c Counts) {
	row := s.ByStep[v]
	for len(row) < len(l.steps) {
		row = append(row, Counts{})
	}
	row[len(l.steps)-1] = c
	s.ByStep[v] = row
}

func (l *Log) setDay(s *Series, v int, c Counts) {
	row := s.ByDay[v]
	for len(row) < len(l.days) {
		row = append(row, Counts{})
	}
	row[len(l.days)-1] = c
	s.ByDay[v] = row
}

func (l *Log) state(loc string) *venueState {
	st, ok := l.locs[loc]
	if !ok {
		st = &venueState{
			series: &Series{},
			index:  make(map[int]int),
			where:  make(map[int]s2.LatLng),
		}
		l.locs[loc] = st
	}
	return st
}

// closeDay captures travel distances if due and empties the daily sets.
func (l *Log) closeDay() {
	if l.travelDay {
		l.travel = l.travelHistograms()
		l.travelDay = false
		l.travelled = true
	}
	for _, st := range l.locs {
		for v := range st.current {
			st.current[v] = make(map[int]*population.Person)
		}
	}
}

// travelHistograms bins the home-to-venue distance of today's attendees.
func (l *Log) travelHistograms() map[string]*Histogram {
	out := make(map[string]*Histogram, len(l.locs))
	for loc, st := range l.locs {
		var kms []float64
		for v, today := range st.current {
			for _, p := range today {
				kms = append(kms, DistanceKm(p.Home, st.where[v]))
			}
		}
		h := NewHistogram(l.binKm, l.maxKm)
		h.AddAll(kms)
		out[loc] = h
	}
	return out
}

// Record returns the series padded to the current step and day count. A
// travel day still in progress is captured as observed so far. The returned
// record shares no state with the log.
func (l *Log) Record() Record {
	travel := l.travel
	if l.travelDay {
		travel = l.travelHistograms()
	}
	rec := Record{
		Steps:  append([]Step(nil), l.steps...),
		Days:   append([]time.Time(nil), l.days...),
		Series: make(map[string]*Series, len(l.locs)),
		Travel: make(map[string]*Histogram, len(l.locs)),
	}
	for loc, st := range l.locs {
		s := &Series{Venues: append([]VenueRef(nil), st.series.Venues...)}
		for v := range st.series.Venues {
			s.ByStep = append(s.ByStep, padded(st.series.ByStep[v], len(l.steps)))
			s.ByDay = append(s.ByDay, padded(st.series.ByDay[v], len(l.days)))
		}
		rec.Series[loc] = s
		if h, ok := travel[loc]; ok {
			rec.Travel[loc] = h.Clone()
		} else {
			rec.Travel[loc] = NewHistogram(l.binKm, l.maxKm)
		}
	}
	return rec
}

func padded(row []Counts, n int) []Counts {
	out := make([]Counts, n)
	copy(out, row)
	return out
}

func sameClock(a, b time.Time) bool {
	return a.Hour() == b.Hour() && a.Minute() == b.Minute() && a.Second() == b.Second()
}
