// SPDX-License-Identifier: MIT

// Package agebin maps raw ages onto named binning schemes.
//
// A Scheme is an ordered list of integer edges; edges[i] ≤ age < edges[i+1]
// places an age in bin i. Several schemes are usually active at once: the
// single-year-of-age scheme ("syoa", 0..100) that every other matrix can be
// contracted from, plus coarse reporting schemes such as five-year bands or the
// adult/child split.
//
// Usage:
//
//	s, err := agebin.NewScheme("AC", []int{0, 18, 100})
//	if err != nil { ... }
//	idx, ok := s.Index(42) // idx == 1, ok == true
//
// Complexity:
//   - Index is O(log B) for B bins (binary search over edges).
//   - Labels is O(B).
package agebin
