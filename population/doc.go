// SPDX-License-Identifier: MIT

// Package population defines the narrow world-facing surface the contact
// engine consumes: people with age, sex and home location; groups (venues)
// with their occupants split into subgroups; and the per-venue partition
// rules that decide which interaction-matrix row a person samples from and
// which pools of partners each column draws on.
//
// World construction itself lives elsewhere. The concrete Venue, School and
// Shelter types here are plain containers a driver fills in.
package population
