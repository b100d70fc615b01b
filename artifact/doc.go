// SPDX-License-Identifier: MIT

// Package artifact persists rank and merged outputs and reads them back.
//
// Layout under a run directory:
//
//	raw/params_r{N}.yaml          run parameters, written last (completion marker)
//	raw/matrices_r{N}.yaml        raw counts and Poisson errors per scheme/location/sex
//	raw/sheets_r{N}.sqlite        population-time, cumulative time, attendance, travel
//	normalized/matrices_r{N}.yaml normalized rates (duplicate=false)
//	normalized/matrices_r{N}_dup.yaml
//	tracker_log_r{N}.yaml         per-scheme summary against the interaction input
//
// Merged outputs use the same shapes under merged/ with the tag "Combined".
//
// A rank whose params document is absent is incomplete and is never read.
package artifact
