// SPDX-License-Identifier: MIT

package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/katalvlaran/contactsim/interaction"
	"github.com/katalvlaran/contactsim/population"
	"github.com/katalvlaran/contactsim/tracker"
)

// Paths locates the files of one tag under a run directory.
type Paths struct {
	Params     string
	Raw        string
	Sheets     string
	Normalized string
	Duplicate  string
	Summary    string
}

// RankPaths returns the file layout of tag under dir.
func RankPaths(dir, tag string) Paths {
	root := dir
	if tag == CombinedTag {
		root = filepath.Join(dir, "merged")
	}
	return Paths{
		Params:     filepath.Join(root, "raw", "params_"+tag+".yaml"),
		Raw:        filepath.Join(root, "raw", "matrices_"+tag+".yaml"),
		Sheets:     filepath.Join(root, "raw", "sheets_"+tag+".sqlite"),
		Normalized: filepath.Join(root, "normalized", "matrices_"+tag+".yaml"),
		Duplicate:  filepath.Join(root, "normalized", "matrices_"+tag+"_dup.yaml"),
		Summary:    filepath.Join(root, "tracker_log_"+tag+".yaml"),
	}
}

// Output bundles what a rank or a merge writes.
type Output struct {
	Tag       string
	RunID     uuid.UUID
	Snapshot  *tracker.Snapshot
	Store     *interaction.Store
	Result    *tracker.Result // duplicate=false
	Duplicate *tracker.Result // duplicate=true
}

// Write persists out under dir. The params document is written last so its
// presence marks a completed artifact.
func Write(ctx context.Context, dir string, out Output) error {
	if out.Snapshot == nil || out.Store == nil || out.Result == nil || out.Duplicate == nil {
		return fmt.Errorf("artifact: write %s: %w", out.Tag, ErrIncomplete)
	}
	p := RankPaths(dir, out.Tag)
	if err := os.MkdirAll(filepath.Dir(p.Sheets), 0o755); err != nil {
		return fmt.Errorf("artifact: mkdir: %w", err)
	}
	// A stale params file would mark a half-written rerun as complete.
	if err := os.Remove(p.Params); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("artifact: remove %q: %w", p.Params, err)
	}

	sh, err := CreateSheets(ctx, p.Sheets)
	if err != nil {
		return err
	}
	if err := sh.Write(ctx, out.Snapshot); err != nil {
		_ = sh.Close()
		return err
	}
	if err := sh.Close(); err != nil {
		return fmt.Errorf("artifact: close %q: %w", p.Sheets, err)
	}

	raw, err := RawDocument(out.Snapshot, out.Store)
	if err != nil {
		return fmt.Errorf("artifact: raw %s: %w", out.Tag, err)
	}
	if err := writeYAML(p.Raw, raw); err != nil {
		return err
	}
	for path, res := range map[string]*tracker.Result{p.Normalized: out.Result, p.Duplicate: out.Duplicate} {
		doc, err := NormalizedDocument(res, out.Snapshot.Schemes, out.Store)
		if err != nil {
			return fmt.Errorf("artifact: normalized %s: %w", out.Tag, err)
		}
		if err := writeYAML(path, doc); err != nil {
			return err
		}
	}
	sum, err := NewSummary(out.Tag, out.Snapshot, out.Result, out.Store)
	if err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	if err := writeYAML(p.Summary, sum); err != nil {
		return err
	}
	return writeYAML(p.Params, NewParams(out.Tag, out.RunID, out.Snapshot, out.Store))
}

// WriteRank persists one rank.
func WriteRank(ctx context.Context, dir string, rank int, out Output) error {
	out.Tag = RankTag(rank)
	return Write(ctx, dir, out)
}

// WriteMerged persists merged totals with the Combined tag.
func WriteMerged(ctx context.Context, dir string, out Output) error {
	out.Tag = CombinedTag
	return Write(ctx, dir, out)
}

// HasRank reports whether a completed artifact of rank exists under dir.
func HasRank(dir string, rank int) bool {
	_, err := os.Stat(RankPaths(dir, RankTag(rank)).Params)
	return err == nil
}

// ReadRank loads the params and raw accumulators of a completed rank.
func ReadRank(ctx context.Context, dir string, rank int) (Params, *tracker.Snapshot, error) {
	return Read(ctx, dir, RankTag(rank), rank)
}

// Read loads the params and raw accumulators stored under tag.
func Read(ctx context.Context, dir, tag string, rank int) (Params, *tracker.Snapshot, error) {
	p := RankPaths(dir, tag)
	if _, err := os.Stat(p.Params); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Params{}, nil, fmt.Errorf("artifact: %s: %w", tag, ErrIncomplete)
		}
		return Params{}, nil, fmt.Errorf("artifact: stat %q: %w", p.Params, err)
	}
	var params Params
	if err := readYAML(p.Params, &params); err != nil {
		return Params{}, nil, err
	}
	schemes, err := params.SchemeSet()
	if err != nil {
		return Params{}, nil, fmt.Errorf("artifact: %s: %w", tag, err)
	}

	snap := &tracker.Snapshot{
		Rank:      rank,
		Schemes:   schemes,
		Sexes:     params.SexViews(),
		Locations: params.Locations,
		Venues:    params.Venues,
		People:    params.People,
		TotalDays: params.TotalDays,
	}
	if snap.Venues == nil {
		snap.Venues = map[string]int{}
	}
	if len(snap.Sexes) == 0 {
		snap.Sexes = []population.SexView{population.Unisex}
	}

	var raw MatrixDocument
	if err := readYAML(p.Raw, &raw); err != nil {
		return Params{}, nil, err
	}
	if err := restoreCounts(raw, snap); err != nil {
		return Params{}, nil, fmt.Errorf("artifact: %s: %w", tag, err)
	}

	sh, err := OpenSheets(ctx, p.Sheets)
	if err != nil {
		return Params{}, nil, err
	}
	defer sh.Close()
	if err := sh.Read(ctx, snap); err != nil {
		return Params{}, nil, err
	}
	return params, snap, nil
}
