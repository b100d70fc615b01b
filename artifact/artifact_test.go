// SPDX-License-Identifier: MIT

package artifact_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang/geo/s2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/contactsim/agebin"
	"github.com/katalvlaran/contactsim/artifact"
	"github.com/katalvlaran/contactsim/interaction"
	"github.com/katalvlaran/contactsim/population"
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
  pub:
    contacts: [[2, 1], [1, 3]]
    proportion_physical: [[0.1, 0.1], [0.1, 0.2]]
    characteristic_time: 3
    type: Age
    bins: [0, 18, 100]
`

type world struct {
	people []*population.Person
	groups map[string][]population.Group
}

func (w *world) People() []*population.Person          { return w.people }
func (w *world) Groups(spec string) []population.Group { return w.groups[spec] }

var t0 = time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC)

func output(t *testing.T) artifact.Output {
	t.Helper()
	store, err := interaction.Load(strings.NewReader(matricesYAML))
	require.NoError(t, err)

	home := s2.LatLngFromDegrees(51.5, -0.1)
	p := func(id, age int, sex population.Sex) *population.Person {
		return &population.Person{ID: id, Age: age, Sex: sex, Home: home}
	}
	kids := []*population.Person{p(1, 8, population.Female), p(2, 15, population.Male)}
	adults := []*population.Person{p(3, 35, population.Female), p(4, 61, population.Male)}
	hh := population.Household(0, home, kids, adults)
	pub := &population.Venue{Kind: "pub", Index: 3, Subs: [][]*population.Person{adults}, LatLng: s2.LatLngFromDegrees(51.52, -0.1)}
	w := &world{
		people: append(append([]*population.Person{}, kids...), adults...),
		groups: map[string][]population.Group{"household": {hh}, "pub": {pub}},
	}

	tr, err := tracker.New(w, store, tracker.WithSeed(5), tracker.WithRank(2))
	require.NoError(t, err)
	const delta = 6 * time.Hour
	for i := 0; i < 12; i++ {
		require.NoError(t, tr.BeginStep(t0.Add(time.Duration(i)*delta), delta))
		require.NoError(t, tr.ObserveGroup(hh))
		if i%4 == 3 {
			require.NoError(t, tr.ObserveGroup(pub))
		}
	}
	res, err := tr.Finalize(false)
	require.NoError(t, err)
	dup, err := tr.Finalize(true)
	require.NoError(t, err)
	return artifact.Output{
		RunID:     uuid.New(),
		Snapshot:  tr.Snapshot(),
		Store:     store,
		Result:    res,
		Duplicate: dup,
	}
}

func TestRankRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	out := output(t)
	require.NoError(t, artifact.WriteRank(ctx, dir, 2, out))
	assert.True(t, artifact.HasRank(dir, 2))
	assert.False(t, artifact.HasRank(dir, 0))

	params, snap, err := artifact.ReadRank(ctx, dir, 2)
	require.NoError(t, err)
	id, err := params.ParsedRunID()
	require.NoError(t, err)
	assert.Equal(t, out.RunID, id)
	assert.Equal(t, "r2", params.Rank)

	want := out.Snapshot
	assert.Equal(t, want.Locations, snap.Locations)
	assert.Equal(t, want.Sexes, snap.Sexes)
	assert.True(t, want.Schemes.Equal(snap.Schemes))
	assert.Equal(t, want.People, snap.People)
	assert.InDelta(t, want.TotalDays, snap.TotalDays, 1e-12)
	assert.Equal(t, want.CumTime, snap.CumTime)
	assert.Equal(t, want.Population, snap.Population)
	assert.Equal(t, want.InteractionPop, snap.InteractionPop)
	assert.Equal(t, want.AgeProfiles, snap.AgeProfiles)
	assert.Equal(t, want.AverageContacts, snap.AverageContacts)
	for _, k := range want.Keys() {
		assert.True(t, mat.Equal(want.Contacts[k], snap.Contacts[k]), k.String())
	}
	for loc, m := range want.Interaction {
		assert.True(t, mat.Equal(m, snap.Interaction[loc]), loc)
	}

	rec, got := want.Attendance, snap.Attendance
	require.Len(t, got.Steps, len(rec.Steps))
	for i := range rec.Steps {
		assert.True(t, rec.Steps[i].Time.Equal(got.Steps[i].Time))
		assert.Equal(t, rec.Steps[i].Delta, got.Steps[i].Delta)
	}
	require.Len(t, got.Days, len(rec.Days))
	assert.Equal(t, len(rec.Series), len(got.Series))
	for loc, s := range rec.Series {
		require.Contains(t, got.Series, loc)
		assert.Equal(t, s.Venues, got.Series[loc].Venues)
		assert.Equal(t, s.ByStep, got.Series[loc].ByStep)
		assert.Equal(t, s.ByDay, got.Series[loc].ByDay)
	}
	for loc, h := range rec.Travel {
		require.Contains(t, got.Travel, loc)
		assert.Equal(t, h.Counts, got.Travel[loc].Counts)
	}

	store, err := params.Store()
	require.NoError(t, err)
	again, err := tracker.Compute(snap, store, false)
	require.NoError(t, err)
	for k, m := range out.Result.Normalized {
		assert.True(t, mat.EqualApprox(m, again.Normalized[k], 1e-12), k.String())
	}
}

func TestWriteAllFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, artifact.WriteRank(context.Background(), dir, 0, output(t)))
	p := artifact.RankPaths(dir, artifact.RankTag(0))
	for _, f := range []string{p.Params, p.Raw, p.Sheets, p.Normalized, p.Duplicate, p.Summary} {
		_, err := os.Stat(f)
		assert.NoError(t, err, f)
	}
}

func TestReadIncomplete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, artifact.WriteRank(ctx, dir, 1, output(t)))
	require.NoError(t, os.Remove(artifact.RankPaths(dir, artifact.RankTag(1)).Params))

	_, _, err := artifact.ReadRank(ctx, dir, 1)
	assert.ErrorIs(t, err, artifact.ErrIncomplete)
	_, _, err = artifact.ReadRank(ctx, dir, 7)
	assert.ErrorIs(t, err, artifact.ErrIncomplete)
}

func TestSummary(t *testing.T) {
	out := output(t)
	sum, err := artifact.NewSummary("r0", out.Snapshot, out.Result, out.Store)
	require.NoError(t, err)

	assert.NotContains(t, sum.Schemes, agebin.SYOAName)
	require.Contains(t, sum.Schemes, agebin.AdultChildName)
	hh := sum.Schemes[agebin.AdultChildName]["household"]
	assert.Equal(t, []int{0, 18, 100}, hh.Bins)
	assert.Equal(t, "Age", hh.Type)
	assert.InDelta(t, 24.0, hh.CharacteristicTime, 1e-12)
	assert.Equal(t, [][]float64{{0.5, 0.5}, {0.5, 0.5}}, hh.ProportionPhysical)

	global := sum.Schemes[agebin.AdultChildName][tracker.Global]
	assert.Equal(t, [][]float64{{interaction.GlobalProportionPhysical}}, global.ProportionPhysical)
	assert.InDelta(t, 24.0, global.CharacteristicTime, 1e-12)
	assert.Len(t, global.Contacts, 2)

	in := sum.Interaction["household"]
	assert.Equal(t, [][]float64{{1, 1}, {1, 1}}, in.Input)
	for i := range in.Ratio {
		for j := range in.Ratio[i] {
			assert.InDelta(t, in.Normalized[i][j], in.Ratio[i][j], 1e-12, "input is all ones")
		}
	}
}
