// Package schedule implements the availability resolution engine that turns
// per-attendee free/busy data into a ranked list of candidate meeting slots.
//
// The resolver is a pure function: it has no clock, no randomness, and no
// dependency on the authentication subsystem. For identical inputs the output
// is exactly reproducible.
//
// # Algorithm
//
// The search window is partitioned into 30-minute ticks starting at the
// window's start instant. A tick becomes a candidate slot when:
//
//   - the slot (tick + duration) still fits inside the window
//   - the tick starts within business hours (09:00-17:00, end-exclusive)
//     on a weekday; the filter applies to the slot start only
//   - at least ceil(n/2) of the n attendees are free for the full slot
//
// Attendees without any schedule data are treated as free (fail-open).
// Candidate slots are ranked by descending free-attendee count with ties
// broken by ascending start time, truncated to the 10 best.
//
// Input validation (non-negative duration, end after start) is the caller's
// responsibility; the resolver never returns an error.
package schedule
