// SPDX-License-Identifier: MIT

package tracker_test

import (
	"maps"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/contactsim/agebin"
	"github.com/katalvlaran/contactsim/interaction"
	"github.com/katalvlaran/contactsim/population"
	"github.com/katalvlaran/contactsim/rebin"
	"github.com/katalvlaran/contactsim/tracker"
)

const matricesYAML = `
contact_matrices:
  household:
    contacts: [[1, 1], [1, 1]]
    proportion_physical: [[0.5, 0.5], [0.5, 0.5]]
    characteristic_time: 24
    type: Age
    bins: [0, 18, 100]
  school:
    contacts: [[2, 4], [1, 3]]
    proportion_physical: [[0.1, 0.1], [0.1, 0.2]]
    characteristic_time: 8
    type: Discrete
    bins: [teachers, students]
  shelter:
    contacts: [[6]]
    contacts_err: [[1]]
    proportion_physical: [[0.3]]
    characteristic_time: 24
`

type world struct {
	people []*population.Person
	groups map[string][]population.Group
}

func (w *world) People() []*population.Person          { return w.people }
func (w *world) Groups(spec string) []population.Group { return w.groups[spec] }

func newPerson(id, age int, sex population.Sex) *population.Person {
	return &population.Person{ID: id, Age: age, Sex: sex}
}

func loadStore(t *testing.T) *interaction.Store {
	t.Helper()
	s, err := interaction.Load(strings.NewReader(matricesYAML))
	require.NoError(t, err)
	return s
}

var t0 = time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC)

// household fixture: two children, two adults.
func household() (*world, *population.Venue) {
	kids := []*population.Person{newPerson(1, 10, population.Female), newPerson(2, 12, population.Male)}
	adults := []*population.Person{newPerson(3, 40, population.Female), newPerson(4, 42, population.Male)}
	hh := population.Household(0, s2.LatLng{}, kids, adults)
	w := &world{
		people: append(append([]*population.Person{}, kids...), adults...),
		groups: map[string][]population.Group{"household": {hh}},
	}
	return w, hh
}

func run(t *testing.T, tr *tracker.Tracker, g population.Group, steps int, delta time.Duration) {
	t.Helper()
	for i := 0; i < steps; i++ {
		require.NoError(t, tr.BeginStep(t0.Add(time.Duration(i)*delta), delta))
		require.NoError(t, tr.ObserveGroup(g))
	}
}

func acKey(loc string, sex population.SexView) tracker.Key {
	return tracker.Key{Scheme: agebin.AdultChildName, Location: loc, Sex: sex}
}

func TestHouseholdOneDay(t *testing.T) {
	w, hh := household()
	tr, err := tracker.New(w, loadStore(t), tracker.WithLocations("household"), tracker.WithSeed(11))
	require.NoError(t, err)

	run(t, tr, hh, 24, time.Hour)
	snap := tr.Snapshot()

	assert.InDelta(t, 4.0, snap.CumTime["household"], 1e-12, "4 people × 1 day")
	assert.InDelta(t, 4.0, snap.CumTime[tracker.Global], 1e-12)
	assert.InDelta(t, 1.0, snap.TotalDays, 1e-12)
	assert.Equal(t, []float64{48, 48}, snap.Population[acKey("household", population.Unisex)], "2 people × 24 visits per bin")
	assert.Equal(t, []float64{24, 24}, snap.Population[acKey("household", population.MaleView)])
	assert.Equal(t, []float64{48, 48}, snap.InteractionPop["household"])

	raw := snap.Contacts[acKey("household", population.Unisex)]
	for _, v := range raw.RawMatrix().Data {
		assert.GreaterOrEqual(t, v, 0.0)
	}
	// Expected 8 contacts in the day (4 people × 2 targets × 24 × 1/24).
	assert.InDelta(t, 8, mat.Sum(raw), 5*math.Sqrt(8))
	assert.Equal(t, mat.Sum(raw), mat.Sum(snap.Contacts[acKey(tracker.Global, population.Unisex)]))
	assert.Equal(t, mat.Sum(raw), mat.Sum(snap.Interaction["household"]))
	male := mat.Sum(snap.Contacts[acKey("household", population.MaleView)])
	female := mat.Sum(snap.Contacts[acKey("household", population.FemaleView)])
	assert.Equal(t, mat.Sum(raw), male+female)
	syoa := snap.Contacts[tracker.Key{Scheme: agebin.SYOAName, Location: "household", Sex: population.Unisex}]
	assert.Equal(t, mat.Sum(raw), mat.Sum(syoa))
}

func TestHouseholdPoissonConsistency(t *testing.T) {
	const days = 200
	w, hh := household()
	tr, err := tracker.New(w, loadStore(t), tracker.WithLocations("household"), tracker.WithSeed(5))
	require.NoError(t, err)
	run(t, tr, hh, 24*days, time.Hour)

	raw := tr.Snapshot().Contacts[acKey("household", population.Unisex)]
	// Each cell: 2 initiators × 1 contact per day with the target bin.
	want := 2.0 * days
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, want, raw.At(i, j), 5*math.Sqrt(want), "cell %d,%d", i, j)
		}
	}

	res, err := tr.Finalize(false)
	require.NoError(t, err)
	norm := res.Normalized[acKey("household", population.Unisex)]
	for _, v := range norm.RawMatrix().Data {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.False(t, math.IsNaN(v))
	}
	// factor = 1·19200/800 = 24, so N[0,1] = raw[0,1]/9600·24 ≈ 1.
	assert.InDelta(t, 1.0, norm.At(0, 1), 0.25)
}

func TestDegenerateVenue(t *testing.T) {
	solo := newPerson(1, 30, population.Female)
	v := &population.Venue{Kind: "household", Subs: [][]*population.Person{{solo}}}
	w := &world{people: []*population.Person{solo}, groups: map[string][]population.Group{"household": {v}}}
	tr, err := tracker.New(w, loadStore(t), tracker.WithLocations("household"))
	require.NoError(t, err)

	before := tr.Snapshot()
	run(t, tr, v, 10, time.Hour)
	empty := &population.Venue{Kind: "household"}
	require.NoError(t, tr.ObserveGroup(empty))
	after := tr.Snapshot()

	for k, m := range after.Contacts {
		assert.True(t, mat.Equal(before.Contacts[k], m), k.String())
	}
	for k, p := range after.Population {
		assert.Equal(t, before.Population[k], p, k.String())
	}
	assert.Equal(t, before.CumTime, after.CumTime)
	assert.Len(t, after.Attendance.Series["household"].Venues, 1, "attendance still recorded")
}

func TestObserveErrors(t *testing.T) {
	w, hh := household()
	tr, err := tracker.New(w, loadStore(t), tracker.WithLocations("household"))
	require.NoError(t, err)

	assert.ErrorIs(t, tr.ObserveGroup(hh), tracker.ErrNoStep)
	assert.ErrorIs(t, tr.BeginStep(t0, 0), tracker.ErrBadDelta)

	require.NoError(t, tr.BeginStep(t0, time.Hour))
	assert.NoError(t, tr.ObserveGroup(&population.Venue{Kind: "casino"}), "untracked types are ignored")

	_, err = tracker.New(w, loadStore(t), tracker.WithLocations("casino"))
	assert.ErrorIs(t, err, tracker.ErrUnknownLocation)
	_, err = tracker.New(nil, loadStore(t))
	assert.ErrorIs(t, err, tracker.ErrNilWorld)
	assert.Panics(t, func() { tracker.WithLogger(nil) })
}

type contactAllSuite struct {
	suite.Suite
	tr *tracker.Tracker
}

func (s *contactAllSuite) SetupTest() {
	w, hh := household()
	tr, err := tracker.New(w, loadStore(s.T()), tracker.WithLocations("household"), tracker.WithContactAll())
	s.Require().NoError(err)
	s.tr = tr
	run(s.T(), tr, hh, 24, time.Hour)
}

func (s *contactAllSuite) TestCountsAreExact() {
	snap := s.tr.Snapshot()
	raw := snap.Contacts[acKey("household", population.Unisex)]
	// Each of 4 people contacts the 3 others every step.
	s.Equal([]float64{2 * 24, 4 * 24, 4 * 24, 2 * 24}, raw.RawMatrix().Data)
	s.Equal(12.0*24, mat.Sum(snap.Interaction["household"]))
}

func (s *contactAllSuite) TestProfiles() {
	snap := s.tr.Snapshot()
	avg := snap.AverageContacts[acKey("household", population.Unisex)]
	s.Equal([]float64{72, 72}, avg, "3 contacts × 24 steps in one day")
	s.Equal([]float64{2, 2}, snap.AgeProfiles[acKey("household", population.Unisex)])
	s.Equal([]float64{1, 1}, snap.AgeProfiles[acKey(tracker.Global, population.FemaleView)])
}

func (s *contactAllSuite) TestFinalizeIncludesInteractionView() {
	res, err := s.tr.Finalize(true)
	s.Require().NoError(err)
	k := tracker.InteractionKey("household")
	s.Contains(res.Normalized, k)
	s.Equal(math.Sqrt(48), res.RawErr[k].At(0, 0))
}

func TestContactAll(t *testing.T) { suite.Run(t, new(contactAllSuite)) }

func TestSchoolPartition(t *testing.T) {
	teacher := newPerson(1, 45, population.Female)
	y1 := []*population.Person{newPerson(2, 10, population.Male), newPerson(3, 10, population.Female)}
	y2 := []*population.Person{newPerson(4, 11, population.Male), newPerson(5, 11, population.Female)}
	school := population.NewSchool(0, teacher.Home, []*population.Person{teacher}, y1, y2)
	w := &world{
		people: []*population.Person{teacher, y1[0], y1[1], y2[0], y2[1]},
		groups: map[string][]population.Group{"school": {school}},
	}
	tr, err := tracker.New(w, loadStore(t), tracker.WithLocations("school"), tracker.WithContactAll())
	require.NoError(t, err)
	run(t, tr, school, 1, time.Hour)

	snap := tr.Snapshot()
	im := snap.Interaction["school"]
	// Teacher: 0 other teachers, 4 students. Each student: 1 teacher, 1 classmate.
	assert.Equal(t, []float64{0, 4, 4, 4}, im.RawMatrix().Data)
	assert.Equal(t, []float64{1, 4}, snap.InteractionPop["school"])

	// Students never reach the other year group.
	syoa := snap.Contacts[tracker.Key{Scheme: agebin.SYOAName, Location: "school", Sex: population.Unisex}]
	assert.Equal(t, 2.0, syoa.At(10, 10))
	assert.Equal(t, 0.0, syoa.At(10, 11))
}

func TestShelterDerivedKeys(t *testing.T) {
	f1 := []*population.Person{newPerson(1, 30, population.Female), newPerson(2, 5, population.Male)}
	f2 := []*population.Person{newPerson(3, 60, population.Male)}
	all := append(append([]*population.Person{}, f1...), f2...)
	sh := population.NewShelter(0, f1[0].Home, [][]*population.Person{all}, [][]*population.Person{f1, f2})
	w := &world{people: all, groups: map[string][]population.Group{"shelter": {sh}}}

	tr, err := tracker.New(w, loadStore(t), tracker.WithLocations("shelter"), tracker.WithSeed(3))
	require.NoError(t, err)
	assert.Equal(t, []string{"shelter", "shelter_intra", "shelter_inter"}, tr.Locations())
	run(t, tr, sh, 48, time.Hour)

	snap := tr.Snapshot()
	k := func(loc string) tracker.Key {
		return tracker.Key{Scheme: agebin.SYOAName, Location: loc, Sex: population.Unisex}
	}
	total := mat.Sum(snap.Contacts[k("shelter")])
	intra := mat.Sum(snap.Contacts[k("shelter_intra")])
	inter := mat.Sum(snap.Contacts[k("shelter_inter")])
	assert.Greater(t, total, 0.0)
	assert.Equal(t, total, intra+inter)
	assert.Equal(t, 0.0, snap.Contacts[k("shelter_intra")].At(30, 60), "different families are never intra")
	assert.Equal(t, snap.CumTime["shelter"], snap.CumTime["shelter_intra"])
	assert.Equal(t, snap.Population[k("shelter")], snap.Population[k("shelter_inter")])

	res, err := tr.Finalize(false)
	require.NoError(t, err)
	assert.Contains(t, res.Normalized, k("shelter_intra"))
}

func TestIncompatibleSchemeRejectedAtNew(t *testing.T) {
	w, _ := household()
	wide := agebin.MustScheme("wide", []int{0, 18, 150})
	set, err := agebin.NewSet(wide)
	require.NoError(t, err)

	_, err = tracker.New(w, loadStore(t), tracker.WithSchemes(set))
	assert.ErrorIs(t, err, rebin.ErrIncompatibleEdges)
}

func TestReportingSchemesDerivedFromSingleYear(t *testing.T) {
	w, hh := household()
	tr, err := tracker.New(w, loadStore(t), tracker.WithLocations("household"), tracker.WithSeed(3))
	require.NoError(t, err)
	run(t, tr, hh, 48, time.Hour)
	snap := tr.Snapshot()

	fine := agebin.SYOA()
	for _, sc := range []agebin.Scheme{agebin.AdultChild(), agebin.FiveYear()} {
		for _, loc := range snap.AllLocations() {
			for _, v := range snap.Sexes {
				src := tracker.Key{Scheme: agebin.SYOAName, Location: loc, Sex: v}
				dst := tracker.Key{Scheme: sc.Name(), Location: loc, Sex: v}
				want, err := rebin.Contract(snap.Contacts[src], fine, sc, rebin.Sum)
				require.NoError(t, err)
				assert.True(t, mat.Equal(want, snap.Contacts[dst]), dst.String())
				pop, err := rebin.ContractVector(snap.Population[src], fine, sc, rebin.Sum)
				require.NoError(t, err)
				assert.Equal(t, pop, snap.Population[dst], dst.String())
			}
		}
	}

	// Both children sit in AC bin 0, both adults in bin 1.
	avg := snap.AverageContacts[acKey("household", population.Unisex)]
	fineAvg := snap.AverageContacts[tracker.Key{Scheme: agebin.SYOAName, Location: "household", Sex: population.Unisex}]
	assert.InDelta(t, (fineAvg[10]+fineAvg[12])/2, avg[0], 1e-12)
	assert.InDelta(t, (fineAvg[40]+fineAvg[42])/2, avg[1], 1e-12)

	// A snapshot rebinned again is unchanged.
	again := *snap
	again.Contacts = maps.Clone(snap.Contacts)
	again.Population = maps.Clone(snap.Population)
	again.AgeProfiles = maps.Clone(snap.AgeProfiles)
	require.NoError(t, again.Rebin())
	for k, m := range snap.Contacts {
		assert.True(t, mat.Equal(m, again.Contacts[k]), k.String())
	}
}

func TestDeterministicCounts(t *testing.T) {
	w, hh := household()
	tr, err := tracker.New(w, loadStore(t), tracker.WithLocations("household"), tracker.WithDeterministic())
	require.NoError(t, err)
	run(t, tr, hh, 3, 24*time.Hour)
	snap := tr.Snapshot()

	// One expected contact per person and target bin per day, drawn exactly.
	assert.Equal(t, []float64{6, 6, 6, 6}, snap.Interaction["household"].RawMatrix().Data)
	assert.Equal(t, 24.0, mat.Sum(snap.Contacts[acKey("household", population.Unisex)]))
	assert.Equal(t, 2, tr.DaysElapsed(), "the third day is still open")
}
