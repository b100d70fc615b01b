// SPDX-License-Identifier: MIT

package tracker

import (
	"log/slog"

	"github.com/katalvlaran/contactsim/agebin"
	"github.com/katalvlaran/contactsim/attendance"
	"github.com/katalvlaran/contactsim/population"
	"github.com/katalvlaran/contactsim/sampling"
)

// Option customizes a Tracker before its stores are allocated.
// Option constructors panic on meaningless inputs; the tracker itself never
// panics on user data.
type Option func(*config)

type config struct {
	schemes    *agebin.Set
	sexes      bool
	locations  []string
	rng        *sampling.RNG
	seed       uint64
	contactAll bool
	exact      bool
	rank       int
	logger     *slog.Logger
	logOpts    []attendance.Option
}

func newConfig(opts ...Option) config {
	c := config{sexes: true, seed: sampling.DefaultSeed}
	for _, o := range opts {
		o(&c)
	}
	if c.schemes == nil {
		c.schemes = agebin.DefaultSet()
	}
	if c.rng == nil {
		c.rng = sampling.NewRNG(c.seed)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// WithSchemes sets the reporting bin schemes. The single-year scheme is
// always present. Panics on nil.
func WithSchemes(s *agebin.Set) Option {
	if s == nil {
		panic("tracker: WithSchemes(nil)")
	}
	return func(c *config) { c.schemes = s }
}

// WithSexes toggles the male/female mirrors of every matrix. Unisex is
// always kept.
func WithSexes(on bool) Option {
	return func(c *config) { c.sexes = on }
}

// WithLocations restricts tracking to the given location types. By default
// every configured location type is tracked. Panics on an empty name.
func WithLocations(locs ...string) Option {
	for _, l := range locs {
		if l == "" {
			panic("tracker: WithLocations(\"\")")
		}
	}
	return func(c *config) { c.locations = append([]string(nil), locs...) }
}

// WithSeed seeds the rank's RNG. Seed 0 maps to sampling.DefaultSeed.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.seed = seed }
}

// WithRNG supplies the rank's RNG directly. Panics on nil.
func WithRNG(r *sampling.RNG) Option {
	if r == nil {
		panic("tracker: WithRNG(nil)")
	}
	return func(c *config) { c.rng = r }
}

// WithContactAll makes every occupant contact every eligible partner exactly
// once per step instead of sampling.
func WithContactAll() Option {
	return func(c *config) { c.contactAll = true }
}

// WithDeterministic draws each contact count as the expected count rounded
// stochastically, with no Poisson or error-bar noise.
func WithDeterministic() Option {
	return func(c *config) { c.exact = true }
}

// WithRank tags the attendance log with the rank index. Panics if rank < 0.
func WithRank(rank int) Option {
	if rank < 0 {
		panic("tracker: WithRank(rank<0)")
	}
	return func(c *config) { c.rank = rank }
}

// WithLogger directs debug output to l. Panics on nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("tracker: WithLogger(nil)")
	}
	return func(c *config) { c.logger = l }
}

// WithAttendance forwards options to the attendance log.
func WithAttendance(opts ...attendance.Option) Option {
	return func(c *config) { c.logOpts = append(c.logOpts, opts...) }
}

func (c config) views() []population.SexView {
	if c.sexes {
		return population.SexViews()
	}
	return []population.SexView{population.Unisex}
}
