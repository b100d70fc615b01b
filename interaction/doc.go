// SPDX-License-Identifier: MIT

// Package interaction loads the survey-derived expected-contact matrices that
// drive contact sampling, one entry per location type.
//
// Each entry carries the expected contacts between subgroups over a
// characteristic period (hours), an optional 1σ error matrix, the proportion
// of contacts that are physical, and the demographic binning of its rows and
// columns: either Age edges or Discrete labels. Entries that omit type/bins
// inherit them from a per-location default table.
//
// The store is loaded once at start and is immutable afterwards.
package interaction
