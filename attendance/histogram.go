// SPDX-License-Identifier: MIT

package attendance

import (
	"fmt"
	"math"
	"slices"

	"github.com/golang/geo/s2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// EarthRadiusKm converts s2 angles to kilometres.
const EarthRadiusKm = 6371.01

// Default travel binning: 1 km bins up to 50 km, then one overflow bin.
const (
	DefaultBinKm = 1.0
	DefaultMaxKm = 50.0
)

// Histogram counts distances in fixed-width bins. The last bin collects
// everything ≥ MaxKm.
type Histogram struct {
	BinKm  float64   `yaml:"bin_km"`
	MaxKm  float64   `yaml:"max_km"`
	Counts []float64 `yaml:"counts"`
}

// NewHistogram returns an empty histogram. It panics on non-positive widths
// or a max below one bin.
func NewHistogram(binKm, maxKm float64) *Histogram {
	if !(binKm > 0) || maxKm < binKm {
		panic("attendance: NewHistogram(binKm<=0 or maxKm<binKm)")
	}
	n := int(math.Ceil(maxKm/binKm)) + 1
	return &Histogram{BinKm: binKm, MaxKm: maxKm, Counts: make([]float64, n)}
}

// Add counts one distance. Negative or NaN distances are ignored.
func (h *Histogram) Add(km float64) { h.AddAll([]float64{km}) }

// AddAll counts every distance in kms. Negative or NaN distances are
// ignored; kms is not modified.
//
// Complexity: O(n log n + B).
func (h *Histogram) AddAll(kms []float64) {
	xs := make([]float64, 0, len(kms))
	for _, km := range kms {
		switch {
		case !(km >= 0):
		case math.IsInf(km, 1):
			h.Counts[len(h.Counts)-1]++
		default:
			xs = append(xs, km)
		}
	}
	if len(xs) == 0 {
		return
	}
	slices.Sort(xs)
	floats.Add(h.Counts, stat.Histogram(nil, h.dividers(), xs, nil))
}

// dividers returns the bin boundaries: fixed-width edges, MaxKm, then +Inf
// for the overflow bin.
func (h *Histogram) dividers() []float64 {
	n := len(h.Counts)
	d := make([]float64, n+1)
	for i := 0; i < n-1; i++ {
		d[i] = float64(i) * h.BinKm
	}
	d[n-1] = h.MaxKm
	d[n] = math.Inf(1)
	return d
}

// Edges returns the lower edge of every bin in km.
func (h *Histogram) Edges() []float64 {
	return h.dividers()[:len(h.Counts)]
}

// Total returns the number of distances counted.
func (h *Histogram) Total() float64 { return floats.Sum(h.Counts) }

// Merge adds o into h.
func (h *Histogram) Merge(o *Histogram) error {
	if h.BinKm != o.BinKm || h.MaxKm != o.MaxKm || len(h.Counts) != len(o.Counts) {
		return fmt.Errorf("%g/%g km vs %g/%g km: %w", h.BinKm, h.MaxKm, o.BinKm, o.MaxKm, ErrBinMismatch)
	}
	floats.Add(h.Counts, o.Counts)
	return nil
}

// Clone returns a deep copy.
func (h *Histogram) Clone() *Histogram {
	return &Histogram{BinKm: h.BinKm, MaxKm: h.MaxKm, Counts: slices.Clone(h.Counts)}
}

// DistanceKm is the great-circle distance between a and b.
func DistanceKm(a, b s2.LatLng) float64 {
	return a.Distance(b).Radians() * EarthRadiusKm
}
