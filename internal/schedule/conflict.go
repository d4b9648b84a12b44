// Package schedule holds the pure scheduling engine: overlap detection against
// existing bookings and generation of a day's bookable slots. Nothing here
// touches storage; callers supply the bookings to compare against.
package schedule

import "time"

// BookedInterval is an occupied half-open interval [Start, End) in UTC for a
// single barber. End is derived from the duration captured on the appointment
// when it was booked.
type BookedInterval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Adjacent intervals (e1 == s2) do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// HasConflict reports whether the candidate interval [start, end) overlaps any
// existing booking. Callers must exclude cancelled bookings and reject
// non-positive durations before calling; the predicate itself is order-
// insensitive over existing.
func HasConflict(existing []BookedInterval, start, end time.Time) bool {
	for _, b := range existing {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}
