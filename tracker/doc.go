// SPDX-License-Identifier: MIT

// Package tracker samples realized contacts inside occupied venues and
// accumulates them into age/sex-structured matrices.
//
// One Tracker serves one rank. The driver calls BeginStep once per simulated
// step and ObserveGroup once per occupied venue; Finalize (or Compute over a
// Snapshot) turns the accumulated counts into normalized rate matrices.
//
// Storage:
//   - every matrix and vector is addressed by Key{Scheme, Location, Sex} and
//     allocated in New with its final shape;
//   - tracked locations are the configured location types, the derived keys
//     of family-tagged venues (shelter_intra, shelter_inter) and "global";
//   - the "Interaction" view holds realized counts in the interaction
//     matrix's own subgroup space, one unisex matrix per base location.
//
// Concurrency: a Tracker is single-threaded. It holds the one RNG of its
// rank; determinism requires seeding it once.
package tracker
