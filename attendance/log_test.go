// SPDX-License-Identifier: MIT

package attendance_test

import (
	"math"
	"testing"
	"time"

	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/contactsim/attendance"
	"github.com/katalvlaran/contactsim/population"
	"github.com/katalvlaran/contactsim/sampling"
)

var (
	pubLL  = s2.LatLngFromDegrees(51.5000, -0.1000)
	homeLL = s2.LatLngFromDegrees(51.5000, -0.0350) // ≈4.5 km east
)

func person(id int, sex population.Sex) *population.Person {
	return &population.Person{ID: id, Age: 30, Sex: sex, Home: homeLL}
}

func pub(people ...*population.Person) *population.Venue {
	return &population.Venue{Kind: "pub", Index: 3, Subs: [][]*population.Person{people}, LatLng: pubLL}
}

func TestDailyUnion(t *testing.T) {
	a, b, c := person(1, population.Male), person(2, population.Female), person(3, population.Female)
	l := attendance.NewLog(0)

	// Sunday 2020-03-01 08:00, 12h steps: two steps per day.
	start := time.Date(2020, 3, 1, 8, 0, 0, 0, time.UTC)
	l.BeginStep(start, 12*time.Hour)
	l.Observe(pub(a, b))
	l.BeginStep(start.Add(12*time.Hour), 12*time.Hour)
	l.Observe(pub(a, c))
	l.BeginStep(start.Add(24*time.Hour), 12*time.Hour)
	l.Observe(pub())

	rec := l.Record()
	require.Len(t, rec.Steps, 3)
	require.Len(t, rec.Days, 2)
	assert.Equal(t, 1, l.DaysElapsed())

	s := rec.Series["pub"]
	require.Len(t, s.Venues, 1)
	assert.Equal(t, attendance.VenueRef{Rank: 0, ID: 3}, s.Venues[0])
	assert.Equal(t, attendance.Counts{Unisex: 2, Male: 1, Female: 1}, s.ByStep[0][0])
	assert.Equal(t, attendance.Counts{}, s.ByStep[0][2])
	assert.Equal(t, attendance.Counts{Unisex: 3, Male: 1, Female: 2}, s.ByDay[0][0], "union over the day")
	assert.Equal(t, attendance.Counts{}, s.ByDay[0][1])
}

func TestTravelOnFirstMonday(t *testing.T) {
	a := person(1, population.Male)
	l := attendance.NewLog(0)

	// Sunday start at midnight, daily steps: day 1 is Monday.
	start := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 9; d++ {
		l.BeginStep(start.AddDate(0, 0, d), 24*time.Hour)
		l.Observe(pub(a))
	}
	rec := l.Record()
	h := rec.Travel["pub"]
	require.NotNil(t, h)
	assert.Equal(t, 1.0, h.Total(), "captured once, on Monday only")
	assert.Equal(t, 1.0, h.Counts[4], "≈4.5 km lands in the 4–5 km bin")
}

func TestHistogram(t *testing.T) {
	h := attendance.NewHistogram(1, 50)
	require.Len(t, h.Counts, 51)
	h.Add(0)
	h.Add(49.99)
	h.Add(50)
	h.Add(1200)
	h.Add(-1)
	assert.Equal(t, 1.0, h.Counts[0])
	assert.Equal(t, 1.0, h.Counts[49])
	assert.Equal(t, 2.0, h.Counts[50], "overflow bin")
	assert.Equal(t, 4.0, h.Total())

	o := attendance.NewHistogram(1, 50)
	o.Add(0.5)
	require.NoError(t, h.Merge(o))
	assert.Equal(t, 2.0, h.Counts[0])

	batch := attendance.NewHistogram(2, 5)
	require.Len(t, batch.Counts, 4)
	batch.AddAll([]float64{4.5, 0, 3, math.NaN(), 1.99, 5, math.Inf(1), 2})
	assert.Equal(t, []float64{2, 2, 1, 2}, batch.Counts)
	assert.Equal(t, []float64{0, 2, 4, 5}, batch.Edges())
	assert.Equal(t, 7.0, batch.Total())

	assert.ErrorIs(t, h.Merge(attendance.NewHistogram(2, 50)), attendance.ErrBinMismatch)
	assert.Panics(t, func() { attendance.NewHistogram(0, 50) })
}

func TestMergeCapsProportionally(t *testing.T) {
	build := func(rank, venues int) attendance.Record {
		l := attendance.NewLog(rank)
		l.BeginStep(time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC), time.Hour)
		for v := 0; v < venues; v++ {
			l.Observe(&population.Venue{Kind: "pub", Index: v, Subs: [][]*population.Person{{person(v, population.Male)}}})
		}
		return l.Record()
	}
	recs := []attendance.Record{build(0, 30), build(1, 10)}

	all, err := attendance.Merge(recs, 0, sampling.NewRNG(1234))
	require.NoError(t, err)
	assert.Len(t, all.Series["pub"].Venues, 40, "no cap: concatenation")

	capped, err := attendance.Merge(recs, 8, sampling.NewRNG(1234))
	require.NoError(t, err)
	venues := capped.Series["pub"].Venues
	require.Len(t, venues, 8)
	perRank := map[int]int{}
	for _, v := range venues {
		perRank[v.Rank]++
	}
	assert.Equal(t, map[int]int{0: 6, 1: 2}, perRank)

	again, err := attendance.Merge(recs, 8, sampling.NewRNG(1234))
	require.NoError(t, err)
	assert.Equal(t, venues, again.Series["pub"].Venues, "seeded subsampling is reproducible")

	short := attendance.NewLog(2).Record()
	_, err = attendance.Merge([]attendance.Record{recs[0], short}, 0, sampling.NewRNG(1))
	assert.ErrorIs(t, err, attendance.ErrStepMismatch)
}
