// SPDX-License-Identifier: MIT

package merge

import (
	"log/slog"
	"runtime"

	"github.com/katalvlaran/contactsim/attendance"
)

// DefaultSeed drives attendance subsampling when Options.Seed is zero.
const DefaultSeed uint64 = 1234

// Options configures a merge.
type Options struct {
	// Dir is the run directory holding the rank artifacts.
	Dir string
	// ExpectedRanks is the number of ranks the run was started with.
	ExpectedRanks int
	// AttendanceCap bounds the venue series kept per location type.
	// Zero means attendance.DefaultCap; negative disables subsampling.
	AttendanceCap int
	// Seed drives attendance subsampling. Zero means DefaultSeed.
	Seed uint64
	// Concurrency bounds parallel rank loads. Zero means GOMAXPROCS.
	Concurrency int
	// Logger receives progress records. Nil discards them.
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.AttendanceCap == 0 {
		o.AttendanceCap = attendance.DefaultCap
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}
