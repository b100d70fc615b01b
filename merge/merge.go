// SPDX-License-Identifier: MIT

// Package merge combines per-rank artifacts into run totals.
//
// Stage 1: discover the completed ranks and check them against the expected
// count. Stage 2: load every rank concurrently. Stage 3: check that all ranks
// share one run and one layout, sum the single-year accumulators in rank
// order, contract the totals onto the reporting schemes, and run the
// normalization pipeline over them.
package merge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/contactsim/artifact"
	"github.com/katalvlaran/contactsim/attendance"
	"github.com/katalvlaran/contactsim/population"
	"github.com/katalvlaran/contactsim/sampling"
	"github.com/katalvlaran/contactsim/tracker"
)

// Rank is one loaded rank artifact.
type Rank struct {
	Params   artifact.Params
	Snapshot *tracker.Snapshot
}

// Run merges the ranks under opts.Dir and writes the Combined artifact.
func Run(ctx context.Context, opts Options) (artifact.Output, error) {
	opts = opts.withDefaults()
	ranks, err := Load(ctx, opts)
	if err != nil {
		return artifact.Output{}, err
	}
	out, err := Combine(ranks, opts)
	if err != nil {
		return artifact.Output{}, err
	}
	if err := artifact.WriteMerged(ctx, opts.Dir, out); err != nil {
		return artifact.Output{}, fmt.Errorf("merge: %w", err)
	}
	opts.Logger.Info("merge written",
		slog.String("dir", opts.Dir),
		slog.Int("ranks", len(ranks)),
		slog.String("run_id", out.RunID.String()))
	return out, nil
}

// Discover returns the ranks with a completed artifact under dir, sorted.
func Discover(dir string) ([]int, error) {
	rawDir := filepath.Dir(artifact.RankPaths(dir, artifact.RankTag(0)).Params)
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("merge: read %q: %w", rawDir, err)
	}
	var out []int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "params_r") || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "params_r"), ".yaml"))
		if err != nil || n < 0 {
			continue
		}
		out = append(out, n)
	}
	slices.Sort(out)
	return out, nil
}

// Load checks the completed ranks against opts.ExpectedRanks and reads them.
func Load(ctx context.Context, opts Options) ([]Rank, error) {
	opts = opts.withDefaults()
	if opts.ExpectedRanks <= 0 {
		return nil, ErrBadRankCount
	}
	found, err := Discover(opts.Dir)
	if err != nil {
		return nil, err
	}
	for _, r := range found {
		if r >= opts.ExpectedRanks {
			return nil, fmt.Errorf("merge: rank %d of %d: %w", r, opts.ExpectedRanks, ErrUnexpectedRank)
		}
	}
	for r := 0; r < opts.ExpectedRanks; r++ {
		if !slices.Contains(found, r) {
			return nil, fmt.Errorf("merge: rank %d of %d: %w", r, opts.ExpectedRanks, ErrMissingRank)
		}
	}

	ranks := make([]Rank, opts.ExpectedRanks)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for r := range ranks {
		g.Go(func() error {
			params, snap, err := artifact.ReadRank(gctx, opts.Dir, r)
			if err != nil {
				return fmt.Errorf("merge: rank %d: %w", r, err)
			}
			ranks[r] = Rank{Params: params, Snapshot: snap}
			opts.Logger.Debug("rank loaded", slog.Int("rank", r), slog.Int("people", snap.People))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ranks, nil
}

// Combine sums ranks in order and normalizes the totals.
//
// Complexity: O(R·K·B²) for R ranks, K keys of B bins.
func Combine(ranks []Rank, opts Options) (artifact.Output, error) {
	opts = opts.withDefaults()
	if len(ranks) == 0 {
		return artifact.Output{}, ErrBadRankCount
	}
	runID, err := checkRanks(ranks)
	if err != nil {
		return artifact.Output{}, err
	}
	store, err := ranks[0].Params.Store()
	if err != nil {
		return artifact.Output{}, fmt.Errorf("merge: %w", err)
	}

	total := emptyLike(ranks[0].Snapshot)
	recs := make([]attendance.Record, len(ranks))
	for i, r := range ranks {
		if err := add(total, r.Snapshot); err != nil {
			return artifact.Output{}, fmt.Errorf("merge: rank %d: %w", i, err)
		}
		recs[i] = r.Snapshot.Attendance
	}
	if err := total.Rebin(); err != nil {
		return artifact.Output{}, fmt.Errorf("merge: %w", err)
	}
	reweightAverages(total, ranks)

	total.Attendance, err = attendance.Merge(recs, opts.AttendanceCap, sampling.NewRNG(opts.Seed))
	if err != nil {
		return artifact.Output{}, fmt.Errorf("merge: attendance: %w", err)
	}

	res, err := tracker.Compute(total, store, false)
	if err != nil {
		return artifact.Output{}, fmt.Errorf("merge: %w", err)
	}
	dup, err := tracker.Compute(total, store, true)
	if err != nil {
		return artifact.Output{}, fmt.Errorf("merge: %w", err)
	}
	opts.Logger.Debug("ranks combined",
		slog.Int("ranks", len(ranks)),
		slog.Int("people", total.People),
		slog.Int("matrices", len(res.Normalized)))
	return artifact.Output{
		Tag:       artifact.CombinedTag,
		RunID:     runID,
		Snapshot:  total,
		Store:     store,
		Result:    res,
		Duplicate: dup,
	}, nil
}

// checkRanks verifies every rank shares the run ID and layout of rank 0.
func checkRanks(ranks []Rank) (uuid.UUID, error) {
	first := ranks[0]
	runID, err := first.Params.ParsedRunID()
	if err != nil {
		return uuid.Nil, fmt.Errorf("merge: rank 0: %w", err)
	}
	for i, r := range ranks[1:] {
		id, err := r.Params.ParsedRunID()
		if err != nil {
			return uuid.Nil, fmt.Errorf("merge: rank %d: %w", i+1, err)
		}
		if id != runID {
			return uuid.Nil, fmt.Errorf("merge: rank %d run %s, rank 0 run %s: %w", i+1, id, runID, ErrRunMismatch)
		}
		a, b := first.Snapshot, r.Snapshot
		switch {
		case !a.Schemes.Equal(b.Schemes):
			return uuid.Nil, fmt.Errorf("merge: rank %d bin schemes: %w", i+1, ErrSchemeMismatch)
		case !slices.Equal(a.Sexes, b.Sexes):
			return uuid.Nil, fmt.Errorf("merge: rank %d sexes: %w", i+1, ErrSchemeMismatch)
		case !slices.Equal(a.Locations, b.Locations):
			return uuid.Nil, fmt.Errorf("merge: rank %d locations: %w", i+1, ErrSchemeMismatch)
		case !reflect.DeepEqual(first.Params.Interaction, r.Params.Interaction):
			return uuid.Nil, fmt.Errorf("merge: rank %d interaction input: %w", i+1, ErrSchemeMismatch)
		}
	}
	return runID, nil
}

// emptyLike returns a zeroed snapshot with the layout of s. TotalDays is
// shared by all ranks, which step through the same clock.
func emptyLike(s *tracker.Snapshot) *tracker.Snapshot {
	out := &tracker.Snapshot{
		Rank:            -1,
		Schemes:         s.Schemes,
		Sexes:           slices.Clone(s.Sexes),
		Locations:       slices.Clone(s.Locations),
		Venues:          make(map[string]int),
		TotalDays:       s.TotalDays,
		Contacts:        make(map[tracker.Key]*mat.Dense, len(s.Contacts)),
		Population:      make(map[tracker.Key][]float64, len(s.Population)),
		CumTime:         make(map[string]float64, len(s.CumTime)),
		Interaction:     make(map[string]*mat.Dense, len(s.Interaction)),
		InteractionPop:  make(map[string][]float64, len(s.InteractionPop)),
		AgeProfiles:     make(map[tracker.Key][]float64, len(s.AgeProfiles)),
		AverageContacts: make(map[tracker.Key][]float64, len(s.AverageContacts)),
	}
	for k, m := range s.Contacts {
		r, c := m.Dims()
		out.Contacts[k] = mat.NewDense(r, c, nil)
	}
	for loc, m := range s.Interaction {
		r, c := m.Dims()
		out.Interaction[loc] = mat.NewDense(r, c, nil)
	}
	zeros := func(dst, src map[tracker.Key][]float64) {
		for k, v := range src {
			dst[k] = make([]float64, len(v))
		}
	}
	zeros(out.Population, s.Population)
	zeros(out.AgeProfiles, s.AgeProfiles)
	zeros(out.AverageContacts, s.AverageContacts)
	for loc, v := range s.InteractionPop {
		out.InteractionPop[loc] = make([]float64, len(v))
	}
	return out
}

// add sums the additive single-year accumulators of s into total. The
// reporting schemes are contracted from the sums afterwards.
func add(total, s *tracker.Snapshot) error {
	fine := total.Schemes.Fine().Name()
	for k, m := range total.Contacts {
		if k.Scheme != fine {
			continue
		}
		o, ok := s.Contacts[k]
		if !ok {
			return fmt.Errorf("contacts %s: %w", k, tracker.ErrMissingKey)
		}
		if !sameDims(m, o) {
			return fmt.Errorf("contacts %s: %w", k, ErrSchemeMismatch)
		}
		m.Add(m, o)
	}
	for loc, m := range total.Interaction {
		o, ok := s.Interaction[loc]
		if !ok || !sameDims(m, o) {
			return fmt.Errorf("interaction %q: %w", loc, ErrSchemeMismatch)
		}
		m.Add(m, o)
	}
	if err := addVectors(total.Population, s.Population, fine); err != nil {
		return fmt.Errorf("population: %w", err)
	}
	if err := addVectors(total.AgeProfiles, s.AgeProfiles, fine); err != nil {
		return fmt.Errorf("age profiles: %w", err)
	}
	for loc, v := range total.InteractionPop {
		o := s.InteractionPop[loc]
		if len(o) != len(v) {
			return fmt.Errorf("interaction population %q: %w", loc, ErrSchemeMismatch)
		}
		floats.Add(v, o)
	}
	for loc, v := range s.CumTime {
		total.CumTime[loc] += v
	}
	for loc, n := range s.Venues {
		total.Venues[loc] += n
	}
	total.People += s.People
	return nil
}

func addVectors(dst, src map[tracker.Key][]float64, scheme string) error {
	for k, v := range dst {
		if k.Scheme != scheme {
			continue
		}
		o, ok := src[k]
		if !ok {
			return fmt.Errorf("%s: %w", k, tracker.ErrMissingKey)
		}
		if len(o) != len(v) {
			return fmt.Errorf("%s: %w", k, ErrSchemeMismatch)
		}
		floats.Add(v, o)
	}
	return nil
}

// reweightAverages sets each merged average-contacts bin to the mean of the
// rank averages weighted by each rank's share of the global unisex
// population-time in that bin. The global share holds for every location
// since a rank's average is taken over all of its people.
func reweightAverages(total *tracker.Snapshot, ranks []Rank) {
	for k, avg := range total.AverageContacts {
		popKey := tracker.Key{Scheme: k.Scheme, Location: tracker.Global, Sex: population.Unisex}
		denom := total.Population[popKey]
		for _, r := range ranks {
			ra := r.Snapshot.AverageContacts[k]
			rp := r.Snapshot.Population[popKey]
			for b := range avg {
				if b < len(ra) && b < len(rp) && b < len(denom) && denom[b] > 0 {
					avg[b] += ra[b] * rp[b] / denom[b]
				}
			}
		}
	}
}

func sameDims(a, b mat.Matrix) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return ar == br && ac == bc
}
