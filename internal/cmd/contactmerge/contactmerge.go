// SPDX-License-Identifier: MIT

// Package contactmerge merges the rank artifacts of a completed run.
package contactmerge

import (
	"context"
	"flag"
	"io"
	"log/slog"

	"github.com/katalvlaran/contactsim/attendance"
	"github.com/katalvlaran/contactsim/internal/config"
	"github.com/katalvlaran/contactsim/merge"
)

// Config holds contactmerge command configuration.
type Config struct {
	Dir         string `env:"CONTACTSIM_DIR"                envDefault:"contactsim-out"`
	Ranks       int    `env:"CONTACTSIM_RANKS"`
	Cap         int    `env:"CONTACTSIM_ATTENDANCE_CAP"`
	Seed        uint64 `env:"CONTACTSIM_MERGE_SEED"`
	Concurrency int    `env:"CONTACTSIM_MERGE_CONCURRENCY"`
	LogLevel    string `env:"CONTACTSIM_LOG_LEVEL"          envDefault:"info"`
}

func bind(fs *flag.FlagSet, c *Config) {
	fs.StringVar(&c.Dir, "dir", c.Dir, "run directory")
	fs.IntVar(&c.Ranks, "ranks", c.Ranks, "number of ranks the run was started with")
	fs.IntVar(&c.Cap, "cap", c.Cap, "venue series kept per location type (0 = default, <0 = all)")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "attendance subsampling seed (0 = default)")
	fs.IntVar(&c.Concurrency, "concurrency", c.Concurrency, "parallel rank loads (0 = GOMAXPROCS)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
}

// ParseConfig loads env defaults and then flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseConfigFromArgs(&cfg, fs, args, bind); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run merges the ranks under cfg.Dir.
func Run(ctx context.Context, cfg Config, errOut io.Writer) error {
	if errOut == nil {
		errOut = io.Discard
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := config.NewLogger(errOut, level, "contactmerge")
	capacity := cfg.Cap
	if capacity == 0 {
		capacity = attendance.DefaultCap
	}
	out, err := merge.Run(ctx, merge.Options{
		Dir:           cfg.Dir,
		ExpectedRanks: cfg.Ranks,
		AttendanceCap: capacity,
		Seed:          cfg.Seed,
		Concurrency:   cfg.Concurrency,
		Logger:        log,
	})
	if err != nil {
		return err
	}
	log.Info("merged",
		slog.Int("people", out.Snapshot.People),
		slog.Int("matrices", len(out.Result.Normalized)))
	return nil
}
