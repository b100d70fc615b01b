// SPDX-License-Identifier: MIT

package artifact

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/katalvlaran/contactsim/artifact/migrations"
	"github.com/katalvlaran/contactsim/attendance"
	"github.com/katalvlaran/contactsim/population"
	"github.com/katalvlaran/contactsim/tracker"
)

// Sheets is the tabular part of an artifact, kept in one SQLite file.
type Sheets struct {
	path string
	db   *sql.DB
}

// CreateSheets replaces any database at path with an empty, migrated one.
func CreateSheets(ctx context.Context, path string) (*Sheets, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("artifact: remove %q: %w", path, err)
	}
	return openSheets(ctx, path)
}

// OpenSheets opens an existing sheets database.
func OpenSheets(ctx context.Context, path string) (*Sheets, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("artifact: stat %q: %w", path, err)
	}
	return openSheets(ctx, path)
}

func openSheets(ctx context.Context, path string) (*Sheets, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("artifact: open %q: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("artifact: ping %q: %w", path, err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("artifact: migrate %q: %w", path, err)
	}
	return &Sheets{path: path, db: db}, nil
}

// Close closes the database handle.
func (s *Sheets) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Write stores the tabular accumulators of snap in one transaction.
func (s *Sheets) Write(ctx context.Context, snap *tracker.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("artifact: begin %q: %w", s.path, err)
	}
	if err := writeAll(ctx, tx, snap); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("artifact: write %q: %w", s.path, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("artifact: commit %q: %w", s.path, err)
	}
	return nil
}

func writeAll(ctx context.Context, tx *sql.Tx, snap *tracker.Snapshot) error {
	rec := snap.Attendance
	for i, st := range rec.Steps {
		if _, err := tx.ExecContext(ctx, `INSERT INTO steps (idx, at_ms, delta_ns) VALUES (?, ?, ?)`,
			i, st.Time.UnixMilli(), int64(st.Delta)); err != nil {
			return fmt.Errorf("steps: %w", err)
		}
	}
	for i, d := range rec.Days {
		if _, err := tx.ExecContext(ctx, `INSERT INTO days (idx, at_ms) VALUES (?, ?)`, i, d.UnixMilli()); err != nil {
			return fmt.Errorf("days: %w", err)
		}
	}
	for loc, v := range snap.CumTime {
		if _, err := tx.ExecContext(ctx, `INSERT INTO cum_time (location, days) VALUES (?, ?)`, loc, v); err != nil {
			return fmt.Errorf("cum_time: %w", err)
		}
	}
	if err := writeBinned(ctx, tx, "cum_population", snap.Population, true); err != nil {
		return err
	}
	if err := writeBinned(ctx, tx, "age_profiles", snap.AgeProfiles, true); err != nil {
		return err
	}
	if err := writeBinned(ctx, tx, "average_contacts", snap.AverageContacts, false); err != nil {
		return err
	}
	for loc, v := range snap.InteractionPop {
		for r, x := range v {
			if _, err := tx.ExecContext(ctx, `INSERT INTO interaction_population (location, row_idx, value) VALUES (?, ?, ?)`,
				loc, r, x); err != nil {
				return fmt.Errorf("interaction_population: %w", err)
			}
		}
	}

	for loc, ser := range rec.Series {
		for col, ref := range ser.Venues {
			if _, err := tx.ExecContext(ctx, `INSERT INTO venues (location, col, rank, venue) VALUES (?, ?, ?, ?)`,
				loc, col, ref.Rank, ref.ID); err != nil {
				return fmt.Errorf("venues: %w", err)
			}
			for i, c := range ser.ByStep[col] {
				if _, err := tx.ExecContext(ctx, `INSERT INTO attendance_step (location, col, step, unisex, male, female) VALUES (?, ?, ?, ?, ?, ?)`,
					loc, col, i, c.Unisex, c.Male, c.Female); err != nil {
					return fmt.Errorf("attendance_step: %w", err)
				}
			}
			for i, c := range ser.ByDay[col] {
				if _, err := tx.ExecContext(ctx, `INSERT INTO attendance_day (location, col, day, unisex, male, female) VALUES (?, ?, ?, ?, ?, ?)`,
					loc, col, i, c.Unisex, c.Male, c.Female); err != nil {
					return fmt.Errorf("attendance_day: %w", err)
				}
			}
		}
	}
	for loc, h := range rec.Travel {
		if _, err := tx.ExecContext(ctx, `INSERT INTO travel_binning (location, bin_km, max_km) VALUES (?, ?, ?)`,
			loc, h.BinKm, h.MaxKm); err != nil {
			return fmt.Errorf("travel_binning: %w", err)
		}
		edges := h.Edges()
		for i, c := range h.Counts {
			if _, err := tx.ExecContext(ctx, `INSERT INTO travel_distance (location, bin, lower_km, count) VALUES (?, ?, ?, ?)`,
				loc, i, edges[i], c); err != nil {
				return fmt.Errorf("travel_distance: %w", err)
			}
		}
	}
	return nil
}

func writeBinned(ctx context.Context, tx *sql.Tx, table string, vs map[tracker.Key][]float64, withSex bool) error {
	q := `INSERT INTO ` + table + ` (scheme, location, sex, bin, value) VALUES (?, ?, ?, ?, ?)`
	if !withSex {
		q = `INSERT INTO ` + table + ` (scheme, location, bin, value) VALUES (?, ?, ?, ?)`
	}
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("%s: %w", table, err)
	}
	defer stmt.Close()
	for k, v := range vs {
		for b, x := range v {
			args := []any{k.Scheme, k.Location, string(k.Sex), b, x}
			if !withSex {
				args = []any{k.Scheme, k.Location, b, x}
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("%s %s: %w", table, k, err)
			}
		}
	}
	return nil
}

// Read fills the tabular fields of snap. The layout fields (schemes, sexes,
// locations) and the Interaction matrices must already be set.
func (s *Sheets) Read(ctx context.Context, snap *tracker.Snapshot) error {
	if err := s.read(ctx, snap); err != nil {
		return fmt.Errorf("artifact: read %q: %w", s.path, err)
	}
	return nil
}

func (s *Sheets) read(ctx context.Context, snap *tracker.Snapshot) error {
	rec := attendance.Record{
		Series: make(map[string]*attendance.Series),
		Travel: make(map[string]*attendance.Histogram),
	}

	err := s.each(ctx, `SELECT at_ms, delta_ns FROM steps ORDER BY idx`, func(rows *sql.Rows) error {
		var ms, ns int64
		if err := rows.Scan(&ms, &ns); err != nil {
			return err
		}
		rec.Steps = append(rec.Steps, attendance.Step{Time: unixMilli(ms), Delta: time.Duration(ns)})
		return nil
	})
	if err != nil {
		return fmt.Errorf("steps: %w", err)
	}
	err = s.each(ctx, `SELECT at_ms FROM days ORDER BY idx`, func(rows *sql.Rows) error {
		var ms int64
		if err := rows.Scan(&ms); err != nil {
			return err
		}
		rec.Days = append(rec.Days, unixMilli(ms))
		return nil
	})
	if err != nil {
		return fmt.Errorf("days: %w", err)
	}

	snap.CumTime = make(map[string]float64)
	err = s.each(ctx, `SELECT location, days FROM cum_time`, func(rows *sql.Rows) error {
		var loc string
		var v float64
		if err := rows.Scan(&loc, &v); err != nil {
			return err
		}
		snap.CumTime[loc] = v
		return nil
	})
	if err != nil {
		return fmt.Errorf("cum_time: %w", err)
	}

	if snap.Population, err = s.readBinned(ctx, snap, "cum_population", true); err != nil {
		return err
	}
	if snap.AgeProfiles, err = s.readBinned(ctx, snap, "age_profiles", true); err != nil {
		return err
	}
	if snap.AverageContacts, err = s.readBinned(ctx, snap, "average_contacts", false); err != nil {
		return err
	}

	snap.InteractionPop = make(map[string][]float64)
	for loc, m := range snap.Interaction {
		r, _ := m.Dims()
		snap.InteractionPop[loc] = make([]float64, r)
	}
	err = s.each(ctx, `SELECT location, row_idx, value FROM interaction_population`, func(rows *sql.Rows) error {
		var loc string
		var r int
		var v float64
		if err := rows.Scan(&loc, &r, &v); err != nil {
			return err
		}
		vec, ok := snap.InteractionPop[loc]
		if !ok || r < 0 || r >= len(vec) {
			return fmt.Errorf("row %s/%d: %w", loc, r, ErrCorrupt)
		}
		vec[r] = v
		return nil
	})
	if err != nil {
		return fmt.Errorf("interaction_population: %w", err)
	}

	series := func(loc string) *attendance.Series {
		ser, ok := rec.Series[loc]
		if !ok {
			ser = &attendance.Series{}
			rec.Series[loc] = ser
		}
		return ser
	}
	err = s.each(ctx, `SELECT location, rank, venue FROM venues ORDER BY location, col`, func(rows *sql.Rows) error {
		var loc string
		var ref attendance.VenueRef
		if err := rows.Scan(&loc, &ref.Rank, &ref.ID); err != nil {
			return err
		}
		ser := series(loc)
		ser.Venues = append(ser.Venues, ref)
		ser.ByStep = append(ser.ByStep, make([]attendance.Counts, len(rec.Steps)))
		ser.ByDay = append(ser.ByDay, make([]attendance.Counts, len(rec.Days)))
		return nil
	})
	if err != nil {
		return fmt.Errorf("venues: %w", err)
	}
	for _, t := range []struct {
		table, col string
		pick       func(*attendance.Series) [][]attendance.Counts
	}{
		{"attendance_step", "step", func(s *attendance.Series) [][]attendance.Counts { return s.ByStep }},
		{"attendance_day", "day", func(s *attendance.Series) [][]attendance.Counts { return s.ByDay }},
	} {
		q := `SELECT location, col, ` + t.col + `, unisex, male, female FROM ` + t.table
		err = s.each(ctx, q, func(rows *sql.Rows) error {
			var loc string
			var col, i int
			var c attendance.Counts
			if err := rows.Scan(&loc, &col, &i, &c.Unisex, &c.Male, &c.Female); err != nil {
				return err
			}
			ser, ok := rec.Series[loc]
			if !ok || col >= len(ser.Venues) {
				return fmt.Errorf("venue %s/%d: %w", loc, col, ErrCorrupt)
			}
			grid := t.pick(ser)
			if i < 0 || i >= len(grid[col]) {
				return fmt.Errorf("%s %s/%d index %d: %w", t.col, loc, col, i, ErrCorrupt)
			}
			grid[col][i] = c
			return nil
		})
		if err != nil {
			return fmt.Errorf("%s: %w", t.table, err)
		}
	}

	err = s.each(ctx, `SELECT location, bin_km, max_km FROM travel_binning`, func(rows *sql.Rows) error {
		var loc string
		var bin, maxKm float64
		if err := rows.Scan(&loc, &bin, &maxKm); err != nil {
			return err
		}
		if !(bin > 0) || maxKm < bin {
			return fmt.Errorf("travel binning %s: %w", loc, ErrCorrupt)
		}
		rec.Travel[loc] = attendance.NewHistogram(bin, maxKm)
		return nil
	})
	if err != nil {
		return fmt.Errorf("travel_binning: %w", err)
	}
	err = s.each(ctx, `SELECT location, bin, count FROM travel_distance`, func(rows *sql.Rows) error {
		var loc string
		var b int
		var c float64
		if err := rows.Scan(&loc, &b, &c); err != nil {
			return err
		}
		h, ok := rec.Travel[loc]
		if !ok || b < 0 || b >= len(h.Counts) {
			return fmt.Errorf("travel bin %s/%d: %w", loc, b, ErrCorrupt)
		}
		h.Counts[b] = c
		return nil
	})
	if err != nil {
		return fmt.Errorf("travel_distance: %w", err)
	}

	snap.Attendance = rec
	return nil
}

func (s *Sheets) readBinned(ctx context.Context, snap *tracker.Snapshot, table string, withSex bool) (map[tracker.Key][]float64, error) {
	out := make(map[tracker.Key][]float64)
	q := `SELECT scheme, location, sex, bin, value FROM ` + table
	if !withSex {
		q = `SELECT scheme, location, bin, value FROM ` + table
	}
	err := s.each(ctx, q, func(rows *sql.Rows) error {
		var k tracker.Key
		var sex string
		var b int
		var v float64
		dest := []any{&k.Scheme, &k.Location, &sex, &b, &v}
		if !withSex {
			dest = []any{&k.Scheme, &k.Location, &b, &v}
			sex = string(population.Unisex)
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		k.Sex = population.SexView(sex)
		vec, ok := out[k]
		if !ok {
			n := snapSchemeLen(snap, k.Scheme)
			if n < 0 {
				return fmt.Errorf("scheme %q: %w", k.Scheme, ErrCorrupt)
			}
			vec = make([]float64, n)
			out[k] = vec
		}
		if b < 0 || b >= len(vec) {
			return fmt.Errorf("%s bin %d: %w", k, b, ErrCorrupt)
		}
		vec[b] = v
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", table, err)
	}
	return out, nil
}

func (s *Sheets) each(ctx context.Context, q string, fn func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
