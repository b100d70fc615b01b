// SPDX-License-Identifier: MIT

// Package rebin re-expresses matrices defined on one age-bin scheme in
// another.
//
// Contraction maps a fine scheme onto a coarser one whose every edge is also
// a fine edge. Each target cell reduces the fine block it spans: Sum for
// additive quantities (counts, population-time), Mean for intensive ones
// (proportion physical). Incompatible edges are rejected when the Contractor
// is built, never approximated.
//
// Expansion broadcasts a coarse matrix up to a fine scheme; every fine bin
// inherits the value of the coarse bin containing it. Expand followed by a
// Mean contraction moves an interaction-matrix quantity onto a reporting
// scheme that is not nested with the interaction bins.
package rebin
