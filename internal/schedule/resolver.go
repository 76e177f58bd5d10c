package schedule

import (
	"sort"
	"time"
)

// SlotStep is the tick interval the search window is partitioned into.
const SlotStep = 30 * time.Minute

// MaxSlots is the maximum number of candidate slots returned.
const MaxSlots = 10

// Business-hours band applied to a slot's start instant, end-exclusive.
// Times are interpreted in the location of the input timestamps.
const (
	businessHoursStart = 9
	businessHoursEnd   = 17
)

// BusyInterval is a half-open [Start, End) interval during which an attendee
// is committed elsewhere.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AttendeeSchedule is the free/busy data for a single attendee as fetched
// from the calendar backend. It is read-only input to the resolver.
type AttendeeSchedule struct {
	Attendee string         `json:"attendeeIdentifier"`
	Busy     []BusyInterval `json:"busyIntervals"`
}

// CandidateSlot is a proposed meeting time annotated with how many attendees
// are free during it.
type CandidateSlot struct {
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	AvailableAttendees int       `json:"availableAttendeeCount"`
}

// FindSlots resolves common meeting times for the given attendee schedules
// within [windowStart, windowEnd) for a meeting of the given duration.
//
// A slot is retained when at least ceil(n/2) of the n attendees are free;
// full availability is deliberately not required. The result is ranked by
// descending free-attendee count, ties broken by ascending start, and
// truncated to MaxSlots.
func FindSlots(schedules []AttendeeSchedule, windowStart, windowEnd time.Time, duration time.Duration) []CandidateSlot {
	required := majorityThreshold(len(schedules))

	var slots []CandidateSlot
	for t := windowStart; t.Before(windowEnd); t = t.Add(SlotStep) {
		slotEnd := t.Add(duration)
		if slotEnd.After(windowEnd) {
			continue
		}
		if !withinBusinessHours(t) {
			continue
		}

		free := 0
		for _, s := range schedules {
			if attendeeFree(s, t, slotEnd) {
				free++
			}
		}
		if free < required {
			continue
		}

		slots = append(slots, CandidateSlot{
			Start:              t,
			End:                slotEnd,
			AvailableAttendees: free,
		})
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].AvailableAttendees != slots[j].AvailableAttendees {
			return slots[i].AvailableAttendees > slots[j].AvailableAttendees
		}
		return slots[i].Start.Before(slots[j].Start)
	})

	if len(slots) > MaxSlots {
		slots = slots[:MaxSlots]
	}
	return slots
}

// majorityThreshold returns ceil(n/2). Zero attendees yields zero, so every
// structurally valid slot qualifies.
func majorityThreshold(n int) int {
	return (n + 1) / 2
}

// withinBusinessHours reports whether the slot start falls on a weekday
// inside the business-hours band. The slot end is intentionally not checked:
// a slot starting at 16:45 is retained even when it runs past 17:00.
func withinBusinessHours(start time.Time) bool {
	switch start.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	hour := start.Hour()
	return hour >= businessHoursStart && hour < businessHoursEnd
}

// attendeeFree reports whether the attendee has no busy interval overlapping
// the half-open slot [start, end). An attendee with no schedule data is
// unconditionally free.
func attendeeFree(s AttendeeSchedule, start, end time.Time) bool {
	for _, b := range s.Busy {
		if start.Before(b.End) && end.After(b.Start) {
			return false
		}
	}
	return true
}
