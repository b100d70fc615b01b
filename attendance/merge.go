// SPDX-License-Identifier: MIT

package attendance

import (
	"fmt"
	"slices"

	"github.com/katalvlaran/contactsim/sampling"
)

// DefaultCap bounds the venue series kept per location type after a merge.
const DefaultCap = 600

// Merge combines per-rank records. Steps and days come from the first record
// and every record must share them. Venue series are concatenated in record
// order; when a location type holds more than limit venues, each record keeps
// a share of limit proportional to its venue count, drawn with rng.
// limit ≤ 0 disables subsampling. Travel histograms are summed.
func Merge(recs []Record, limit int, rng *sampling.RNG) (Record, error) {
	if len(recs) == 0 {
		return Record{}, ErrNoRecords
	}
	base := recs[0]
	for i, r := range recs[1:] {
		if len(r.Steps) != len(base.Steps) || len(r.Days) != len(base.Days) {
			return Record{}, fmt.Errorf("record %d: %d steps/%d days vs %d/%d: %w",
				i+1, len(r.Steps), len(r.Days), len(base.Steps), len(base.Days), ErrStepMismatch)
		}
	}

	out := Record{
		Steps:  slices.Clone(base.Steps),
		Days:   slices.Clone(base.Days),
		Series: make(map[string]*Series),
		Travel: make(map[string]*Histogram),
	}

	locs := map[string]bool{}
	for _, r := range recs {
		for loc := range r.Series {
			locs[loc] = true
		}
		for loc, h := range r.Travel {
			if acc, ok := out.Travel[loc]; ok {
				if err := acc.Merge(h); err != nil {
					return Record{}, fmt.Errorf("travel %q: %w", loc, err)
				}
			} else {
				out.Travel[loc] = h.Clone()
			}
		}
	}

	names := make([]string, 0, len(locs))
	for loc := range locs {
		names = append(names, loc)
	}
	slices.Sort(names)

	for _, loc := range names {
		parts := make([]*Series, len(recs))
		total := 0
		for i, r := range recs {
			if s, ok := r.Series[loc]; ok {
				parts[i] = s
				total += len(s.Venues)
			}
		}
		quota := quotas(parts, total, limit)
		merged := &Series{}
		for i, s := range parts {
			if s == nil {
				continue
			}
			keep, err := pick(len(s.Venues), quota[i], rng)
			if err != nil {
				return Record{}, fmt.Errorf("series %q: %w", loc, err)
			}
			for _, v := range keep {
				merged.Venues = append(merged.Venues, s.Venues[v])
				merged.ByStep = append(merged.ByStep, padded(s.ByStep[v], len(out.Steps)))
				merged.ByDay = append(merged.ByDay, padded(s.ByDay[v], len(out.Days)))
			}
		}
		out.Series[loc] = merged
	}
	return out, nil
}

// quotas splits limit across parts proportionally to their venue counts by
// largest remainder.
func quotas(parts []*Series, total, limit int) []int {
	q := make([]int, len(parts))
	if limit <= 0 || total <= limit {
		for i, s := range parts {
			if s != nil {
				q[i] = len(s.Venues)
			}
		}
		return q
	}
	type rem struct {
		i int
		f float64
	}
	rems := make([]rem, 0, len(parts))
	used := 0
	for i, s := range parts {
		if s == nil {
			continue
		}
		exact := float64(limit) * float64(len(s.Venues)) / float64(total)
		q[i] = int(exact)
		used += q[i]
		rems = append(rems, rem{i: i, f: exact - float64(q[i])})
	}
	slices.SortStableFunc(rems, func(a, b rem) int {
		switch {
		case a.f > b.f:
			return -1
		case a.f < b.f:
			return 1
		}
		return 0
	})
	for k := 0; used < limit && k < len(rems); k++ {
		q[rems[k].i]++
		used++
	}
	return q
}

// pick returns k of n indices in ascending order; all of them when k ≥ n.
func pick(n, k int, rng *sampling.RNG) ([]int, error) {
	if k >= n {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	idx, err := rng.SampleWithoutReplacement(n, k)
	if err != nil {
		return nil, err
	}
	slices.Sort(idx)
	return idx, nil
}
