// SPDX-License-Identifier: MIT

package contactsim

import (
	"bytes"
	"context"
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/contactsim/artifact"
	"github.com/katalvlaran/contactsim/population"
)

func TestBuildWorldDeterministic(t *testing.T) {
	a, b := BuildWorld(1, 30, 7), BuildWorld(1, 30, 7)
	require.Equal(t, len(a.People()), len(b.People()))
	for i, p := range a.People() {
		assert.Equal(t, *p, *b.People()[i])
	}
	c := BuildWorld(2, 30, 7)
	assert.Greater(t, c.People()[0].ID, a.People()[len(a.People())-1].ID, "ids are unique across ranks")
	assert.Len(t, a.Groups("shelter"), 1)
	assert.Len(t, a.Groups("household"), 30)
}

func TestStepPlacesEveryoneOnce(t *testing.T) {
	w := BuildWorld(0, 60, 3)
	monday := time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC)
	for _, ts := range []time.Time{monday, monday.Add(8 * time.Hour), monday.Add(16 * time.Hour), monday.Add(5*24*time.Hour + 8*time.Hour)} {
		seen := map[int]int{}
		schools := 0
		for _, g := range w.Step(ts) {
			if g.Spec() == "school" {
				schools++
				s := g.(*population.School)
				for _, p := range s.Students() {
					assert.GreaterOrEqual(t, p.Age, minSchoolAge)
				}
			}
			for _, p := range g.People() {
				seen[p.ID]++
			}
		}
		assert.Len(t, seen, len(w.People()), ts.String())
		for id, n := range seen {
			assert.Equal(t, 1, n, "person %d at %s", id, ts)
		}
		if ts.Hour() == schoolStart && ts.Weekday() == time.Monday {
			assert.Equal(t, len(w.schools), schools)
		} else {
			assert.Zero(t, schools)
		}
	}
}

func TestRunWritesRanksAndMerge(t *testing.T) {
	dir := t.TempDir()
	fs := flag.NewFlagSet("contactsim", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-dir", dir, "-ranks", "2", "-days", "3", "-households", "20", "-log-level", "debug", "-deterministic"})
	require.NoError(t, err)
	assert.True(t, cfg.Exact)

	var logs bytes.Buffer
	require.NoError(t, Run(context.Background(), cfg, &logs))
	assert.True(t, artifact.HasRank(dir, 0))
	assert.True(t, artifact.HasRank(dir, 1))

	params, snap, err := artifact.Read(context.Background(), dir, artifact.CombinedTag, -1)
	require.NoError(t, err)
	assert.Equal(t, artifact.CombinedTag, params.Rank)
	assert.Contains(t, snap.Locations, "shelter_intra")
	assert.InDelta(t, 3.0, snap.TotalDays, 1e-9)
	assert.Contains(t, logs.String(), "rank written")
	assert.Contains(t, logs.String(), "days=2")
	assert.Contains(t, logs.String(), "deterministic=true")
}

func TestRunRejectsBadConfig(t *testing.T) {
	base := Config{Dir: t.TempDir(), Ranks: 1, Days: 1, Households: 1, Start: "2020-03-02", LogLevel: "info"}
	for name, mut := range map[string]func(*Config){
		"ranks":  func(c *Config) { c.Ranks = 0 },
		"days":   func(c *Config) { c.Days = 0 },
		"start":  func(c *Config) { c.Start = "March" },
		"run id": func(c *Config) { c.RunID = "not-a-uuid" },
		"level":  func(c *Config) { c.LogLevel = "chatty" },
	} {
		cfg := base
		mut(&cfg)
		assert.Error(t, Run(context.Background(), cfg, nil), name)
	}
}
