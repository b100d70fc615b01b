// SPDX-License-Identifier: MIT

// Package contactsim tracks who-meets-whom inside a running agent-based
// epidemic simulation and turns the tallies into age-stratified contact
// matrices.
//
// What it covers:
//
//	• Contact sampling per venue from configured interaction matrices
//	• Raw contact, population-time and cumulative-time accumulators
//	• Normalization into per-person-per-day rates with Poisson errors
//	• Age re-binning between single-year, five-year and adult/child schemes
//	• Venue attendance series and travel-distance histograms
//	• Per-rank artifacts and a merger that recombines them
//
// Under the hood, everything is organized under these subpackages:
//
//	agebin/      age bin schemes and scheme sets
//	interaction/ interaction-matrix configuration store
//	population/  world-facing person/venue interfaces and subgroup partitions
//	sampling/    seeded random draws (Poisson, Normal, stochastic rounding)
//	tracker/     per-step sampler and accumulators, online finalize
//	attendance/  per-venue occupancy and travel distances
//	rebin/       contraction and expansion between bin schemes
//	normalize/   rate normalization and numeric sanitizing
//	artifact/    YAML documents and SQLite sheets per rank or merge
//	merge/       rank merger
//
// Typical flow:
//
//	store, _ := interaction.LoadFile("interaction.yaml")
//	tr, _ := tracker.New(world, store, tracker.WithSeed(1), tracker.WithRank(r))
//	for each step: tr.BeginStep(ts, dt); tr.ObserveGroup(g) for every venue
//	res, _ := tr.Finalize(false)
//
// Commands: cmd/contactsim runs a synthetic world, cmd/contactmerge merges
// the rank artifacts of a run.
package contactsim
