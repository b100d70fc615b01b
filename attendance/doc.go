// SPDX-License-Identifier: MIT

// Package attendance records venue occupancy for diagnostics: per step and
// per venue head counts split by sex, a daily series of unique attendees
// built by set union over the steps of a day, and a histogram of the
// home-to-venue distance travelled by each unique attendee on the first
// Monday of the run.
//
// None of this feeds the contact matrices.
package attendance
