// SPDX-License-Identifier: MIT

package interaction

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk YAML layout.
type Document struct {
	ContactMatrices map[string]EntryDocument `yaml:"contact_matrices"`
}

// EntryDocument is one location block of the YAML layout. It is also the
// echo written back into run artifacts.
type EntryDocument struct {
	Contacts           [][]float64 `yaml:"contacts"`
	ContactsErr        [][]float64 `yaml:"contacts_err,omitempty"`
	ProportionPhysical [][]float64 `yaml:"proportion_physical"`
	CharacteristicTime float64     `yaml:"characteristic_time"`
	Type               string      `yaml:"type,omitempty"`
	Bins               []any       `yaml:"bins,omitempty"`
}

// Store holds one validated Entry per location type.
type Store struct {
	entries map[string]*Entry
}

// LoadFile reads and validates a YAML interaction document.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("interaction: open %q: %w", path, err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return s, nil
}

// Load decodes a YAML interaction document from r.
func Load(r io.Reader) (*Store, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoMatrices
		}
		return nil, fmt.Errorf("interaction: decode: %w", err)
	}
	return FromDocument(doc)
}

// FromDocument validates doc and builds a Store.
func FromDocument(doc Document) (*Store, error) {
	if len(doc.ContactMatrices) == 0 {
		return nil, ErrNoMatrices
	}
	s := &Store{entries: make(map[string]*Entry, len(doc.ContactMatrices))}
	for loc, ed := range doc.ContactMatrices {
		e, err := buildEntry(loc, ed)
		if err != nil {
			return nil, fmt.Errorf("location %q: %w", loc, err)
		}
		s.entries[loc] = e
	}
	return s, nil
}

func buildEntry(loc string, ed EntryDocument) (*Entry, error) {
	e := &Entry{Location: loc, CharacteristicTime: ed.CharacteristicTime}
	if !(ed.CharacteristicTime > 0) || math.IsInf(ed.CharacteristicTime, 0) {
		return nil, ErrBadCharacteristicTime
	}

	// Stage 1: bins (explicit or defaulted).
	def := defaultsFor(loc)
	e.BinType = BinType(ed.Type)
	if ed.Type == "" {
		e.BinType = def.binType
	}
	switch e.BinType {
	case Age, Discrete:
	default:
		return nil, fmt.Errorf("%q: %w", ed.Type, ErrBadBinType)
	}
	if len(ed.Bins) == 0 {
		if e.BinType != def.binType {
			// Defaults of the other kind cannot be reused.
			def = fallbackFor(e.BinType)
		}
		e.Edges = append([]int(nil), def.edges...)
		e.Labels = append([]string(nil), def.labels...)
	} else if err := readBins(e, ed.Bins); err != nil {
		return nil, err
	}

	// Stage 2: matrices.
	if len(ed.Contacts) == 0 {
		return nil, ErrMissingContacts
	}
	n := e.Subgroups()
	contacts, err := denseFrom(ed.Contacts)
	if err != nil {
		return nil, fmt.Errorf("contacts: %w", err)
	}
	if r, c := contacts.Dims(); r != n || c != n {
		return nil, fmt.Errorf("contacts is %dx%d, bins imply %d subgroups: %w", r, c, n, ErrShapeMismatch)
	}
	if err := checkRange(contacts, 0, math.Inf(1)); err != nil {
		return nil, fmt.Errorf("contacts: %w", err)
	}
	e.Contacts = contacts

	if len(ed.ContactsErr) > 0 {
		ce, err := denseFrom(ed.ContactsErr)
		if err != nil {
			return nil, fmt.Errorf("contacts_err: %w", err)
		}
		if !sameShape(ce, contacts) {
			return nil, fmt.Errorf("contacts_err: %w", ErrShapeMismatch)
		}
		if err := checkRange(ce, 0, math.Inf(1)); err != nil {
			return nil, fmt.Errorf("contacts_err: %w", err)
		}
		e.ContactsErr = ce
		e.HasErr = true
	} else {
		e.ContactsErr = mat.NewDense(n, n, nil)
	}

	if len(ed.ProportionPhysical) == 0 {
		return nil, fmt.Errorf("proportion_physical: %w", ErrMissingContacts)
	}
	pp, err := denseFrom(ed.ProportionPhysical)
	if err != nil {
		return nil, fmt.Errorf("proportion_physical: %w", err)
	}
	if !sameShape(pp, contacts) {
		return nil, fmt.Errorf("proportion_physical: %w", ErrShapeMismatch)
	}
	if err := checkRange(pp, 0, 1); err != nil {
		return nil, fmt.Errorf("proportion_physical: %w", err)
	}
	e.ProportionPhysical = pp

	return e, nil
}

func fallbackFor(t BinType) defaultBins {
	if t == Discrete {
		return defaultBins{binType: Discrete, labels: []string{"all"}}
	}
	return fallbackBins
}

func readBins(e *Entry, raw []any) error {
	if e.BinType == Discrete {
		e.Labels = make([]string, len(raw))
		for i, v := range raw {
			switch x := v.(type) {
			case string:
				e.Labels[i] = x
			case int:
				e.Labels[i] = strconv.Itoa(x)
			default:
				return fmt.Errorf("label %d (%v): %w", i, v, ErrBadBins)
			}
		}
		return nil
	}

	e.Edges = make([]int, len(raw))
	for i, v := range raw {
		switch x := v.(type) {
		case int:
			e.Edges[i] = x
		case float64:
			if x != math.Trunc(x) {
				return fmt.Errorf("edge %d (%v) is not an integer: %w", i, v, ErrBadBins)
			}
			e.Edges[i] = int(x)
		default:
			return fmt.Errorf("edge %d (%v): %w", i, v, ErrBadBins)
		}
		if i > 0 && e.Edges[i] <= e.Edges[i-1] {
			return fmt.Errorf("edges not increasing at %d: %w", i, ErrBadBins)
		}
	}
	if len(e.Edges) < 2 {
		return fmt.Errorf("age bins need two edges: %w", ErrBadBins)
	}
	return nil
}

func denseFrom(rows [][]float64) (*mat.Dense, error) {
	r := len(rows)
	c := len(rows[0])
	if c == 0 {
		return nil, ErrRagged
	}
	data := make([]float64, 0, r*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), c, ErrRagged)
		}
		data = append(data, row...)
	}
	return mat.NewDense(r, c, data), nil
}

func sameShape(a, b mat.Matrix) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return ar == br && ac == bc
}

func checkRange(m *mat.Dense, lo, hi float64) error {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || v < lo || v > hi {
				return fmt.Errorf("[%d,%d]=%g: %w", i, j, v, ErrBadValue)
			}
		}
	}
	return nil
}

// BaseLocation strips the derived _intra/_inter suffix.
func BaseLocation(location string) string {
	if b, ok := strings.CutSuffix(location, IntraSuffix); ok {
		return b
	}
	if b, ok := strings.CutSuffix(location, InterSuffix); ok {
		return b
	}
	return location
}

// Entry returns the configuration of location. Derived keys resolve to their
// base location.
func (s *Store) Entry(location string) (*Entry, error) {
	e, ok := s.entries[BaseLocation(location)]
	if !ok {
		return nil, fmt.Errorf("%q: %w", location, ErrUnknownLocation)
	}
	return e, nil
}

// Has reports whether location (or its base) is configured.
func (s *Store) Has(location string) bool {
	_, ok := s.entries[BaseLocation(location)]
	return ok
}

// Locations returns configured location names, sorted.
func (s *Store) Locations() []string {
	out := make([]string, 0, len(s.entries))
	for k := range s.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CharacteristicDays returns the reference period of location in days.
// The global view uses GlobalCharacteristicDays.
func (s *Store) CharacteristicDays(location string) (float64, error) {
	if location == Global {
		return GlobalCharacteristicDays, nil
	}
	e, err := s.Entry(location)
	if err != nil {
		return 0, err
	}
	return e.CharacteristicDays(), nil
}

// Document re-exports the store in its YAML layout.
func (s *Store) Document() Document {
	doc := Document{ContactMatrices: make(map[string]EntryDocument, len(s.entries))}
	for loc, e := range s.entries {
		ed := EntryDocument{
			Contacts:           rowsOf(e.Contacts),
			ProportionPhysical: rowsOf(e.ProportionPhysical),
			CharacteristicTime: e.CharacteristicTime,
			Type:               string(e.BinType),
		}
		if e.HasErr {
			ed.ContactsErr = rowsOf(e.ContactsErr)
		}
		if e.BinType == Age {
			for _, v := range e.Edges {
				ed.Bins = append(ed.Bins, v)
			}
		} else {
			for _, v := range e.Labels {
				ed.Bins = append(ed.Bins, v)
			}
		}
		doc.ContactMatrices[loc] = ed
	}
	return doc
}

func rowsOf(m *mat.Dense) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		out[i] = make([]float64, c)
		mat.Row(out[i], i, m)
	}
	return out
}

func rangeLabel(lo, hi int) string {
	if lo == hi {
		return strconv.Itoa(lo)
	}
	return strconv.Itoa(lo) + "-" + strconv.Itoa(hi)
}

// ProportionPhysical returns the proportion-physical matrix of location. The
// global view is a 1×1 matrix holding GlobalProportionPhysical.
func (s *Store) ProportionPhysical(location string) (*mat.Dense, error) {
	if location == Global {
		return mat.NewDense(1, 1, []float64{GlobalProportionPhysical}), nil
	}
	e, err := s.Entry(location)
	if err != nil {
		return nil, err
	}
	return mat.DenseCopyOf(e.ProportionPhysical), nil
}
