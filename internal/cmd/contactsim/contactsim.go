// SPDX-License-Identifier: MIT

// Package contactsim runs the synthetic per-rank driver: it builds a small
// world per rank, tracks contacts for a number of days and writes the rank
// artifacts, optionally merging them afterwards.
package contactsim

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/contactsim/artifact"
	"github.com/katalvlaran/contactsim/interaction"
	"github.com/katalvlaran/contactsim/internal/config"
	"github.com/katalvlaran/contactsim/merge"
	"github.com/katalvlaran/contactsim/sampling"
	"github.com/katalvlaran/contactsim/tracker"
)

//go:embed matrices.yaml
var defaultMatrices []byte

// Config holds contactsim command configuration.
type Config struct {
	Dir        string `env:"CONTACTSIM_DIR"         envDefault:"contactsim-out"`
	Ranks      int    `env:"CONTACTSIM_RANKS"       envDefault:"2"`
	Days       int    `env:"CONTACTSIM_DAYS"        envDefault:"14"`
	Households int    `env:"CONTACTSIM_HOUSEHOLDS"  envDefault:"200"`
	Seed       uint64 `env:"CONTACTSIM_SEED"        envDefault:"1"`
	RunID      string `env:"CONTACTSIM_RUN_ID"`
	Matrices   string `env:"CONTACTSIM_MATRICES"`
	Start      string `env:"CONTACTSIM_START"       envDefault:"2020-03-02"`
	ContactAll bool   `env:"CONTACTSIM_CONTACT_ALL"`
	Exact      bool   `env:"CONTACTSIM_DETERMINISTIC"`
	Sexes      bool   `env:"CONTACTSIM_SEXES"       envDefault:"true"`
	Merge      bool   `env:"CONTACTSIM_MERGE"       envDefault:"true"`
	LogLevel   string `env:"CONTACTSIM_LOG_LEVEL"   envDefault:"info"`
}

func bind(fs *flag.FlagSet, c *Config) {
	fs.StringVar(&c.Dir, "dir", c.Dir, "run output directory")
	fs.IntVar(&c.Ranks, "ranks", c.Ranks, "number of ranks")
	fs.IntVar(&c.Days, "days", c.Days, "simulated days")
	fs.IntVar(&c.Households, "households", c.Households, "households per rank")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "run seed")
	fs.StringVar(&c.RunID, "run-id", c.RunID, "run identifier (uuid); generated when empty")
	fs.StringVar(&c.Matrices, "matrices", c.Matrices, "interaction matrix YAML; built-in when empty")
	fs.StringVar(&c.Start, "start", c.Start, "first simulated day (YYYY-MM-DD)")
	fs.BoolVar(&c.ContactAll, "contact-all", c.ContactAll, "contact every eligible partner once per step")
	fs.BoolVar(&c.Exact, "deterministic", c.Exact, "draw expected contact counts without Poisson noise")
	fs.BoolVar(&c.Sexes, "sexes", c.Sexes, "track male and female views")
	fs.BoolVar(&c.Merge, "merge", c.Merge, "merge the ranks after the run")
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

// Run executes every rank concurrently and writes their artifacts.
func Run(ctx context.Context, cfg Config, errOut io.Writer) error {
	if errOut == nil {
		errOut = io.Discard
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := config.NewLogger(errOut, level, "contactsim")

	switch {
	case cfg.Ranks <= 0:
		return errors.New("ranks must be positive")
	case cfg.Days <= 0:
		return errors.New("days must be positive")
	case cfg.Households <= 0:
		return errors.New("households must be positive")
	}
	start, err := time.Parse(time.DateOnly, cfg.Start)
	if err != nil {
		return fmt.Errorf("start %q: %w", cfg.Start, err)
	}
	runID := uuid.New()
	if cfg.RunID != "" {
		if runID, err = uuid.Parse(cfg.RunID); err != nil {
			return fmt.Errorf("run id %q: %w", cfg.RunID, err)
		}
	}
	store, err := loadStore(cfg.Matrices)
	if err != nil {
		return err
	}

	log.Info("run starting",
		slog.String("run_id", runID.String()),
		slog.Int("ranks", cfg.Ranks),
		slog.Int("days", cfg.Days),
		slog.String("dir", cfg.Dir))

	g, gctx := errgroup.WithContext(ctx)
	for rank := 0; rank < cfg.Ranks; rank++ {
		g.Go(func() error {
			return runRank(gctx, cfg, store, rank, runID, start, log.With(slog.Int("rank", rank)))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if !cfg.Merge {
		return nil
	}
	_, err = merge.Run(ctx, merge.Options{Dir: cfg.Dir, ExpectedRanks: cfg.Ranks, Logger: log})
	return err
}

func loadStore(path string) (*interaction.Store, error) {
	if path == "" {
		return interaction.Load(bytes.NewReader(defaultMatrices))
	}
	return interaction.LoadFile(path)
}

func runRank(ctx context.Context, cfg Config, store *interaction.Store, rank int, runID uuid.UUID, start time.Time, log *slog.Logger) error {
	w := BuildWorld(rank, cfg.Households, cfg.Seed)
	opts := []tracker.Option{
		tracker.WithRank(rank),
		tracker.WithSeed(sampling.DeriveSeed(cfg.Seed, uint64(rank)+101)),
		tracker.WithSexes(cfg.Sexes),
		tracker.WithLogger(log),
	}
	if cfg.ContactAll {
		opts = append(opts, tracker.WithContactAll())
	}
	if cfg.Exact {
		opts = append(opts, tracker.WithDeterministic())
	}
	tr, err := tracker.New(w, store, opts...)
	if err != nil {
		return fmt.Errorf("rank %d: %w", rank, err)
	}

	for step := 0; step < cfg.Days*StepsPerDay; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		ts := start.Add(time.Duration(step) * StepLength)
		if err := tr.BeginStep(ts, StepLength); err != nil {
			return fmt.Errorf("rank %d step %d: %w", rank, step, err)
		}
		for _, g := range w.Step(ts) {
			if err := tr.ObserveGroup(g); err != nil {
				return fmt.Errorf("rank %d step %d: %w", rank, step, err)
			}
		}
	}

	res, err := tr.Finalize(false)
	if err != nil {
		return fmt.Errorf("rank %d: %w", rank, err)
	}
	dup, err := tr.Finalize(true)
	if err != nil {
		return fmt.Errorf("rank %d: %w", rank, err)
	}
	out := artifact.Output{RunID: runID, Snapshot: tr.Snapshot(), Store: store, Result: res, Duplicate: dup}
	if err := artifact.WriteRank(ctx, cfg.Dir, rank, out); err != nil {
		return fmt.Errorf("rank %d: %w", rank, err)
	}
	log.Info("rank written",
		slog.Int("people", out.Snapshot.People),
		slog.Int("days", tr.DaysElapsed()))
	return nil
}
