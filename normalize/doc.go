// SPDX-License-Identifier: MIT

// Package normalize turns accumulated raw contact counts into
// contacts-per-person-per-characteristic-period rate matrices with
// propagated Poisson uncertainty.
//
// The same stateless functions serve the online tracker and the offline
// rank merger.
//
// Given raw counts R (initiator bin i → contacted bin j), bin population-time
// totals p, characteristic time C (days) and cumulative person-time T:
//
//	factor   = C·Σp / T
//	w        = p_i / p_j
//	N[i,j]   = ½·(F_i·R[i,j]/p_j + F_j·R[j,i]/p_i·w)·factor
//	E[i,j]   = ½·√((F_i·√(R[i,j]·p_i)/p_j)² + (F_j·√(R[j,i]·p_j)/p_i·w)²)·factor
//
// with (F_i,F_j) = (1,1) when duplicate is set and (2,0) otherwise.
//
// Zero denominators produce zero terms, T == 0 produces an all-zero matrix,
// and every output is sanitized so NaN/Inf never reach a report.
package normalize
