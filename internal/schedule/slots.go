package schedule

import (
	"time"

	"github.com/barberops/booking-platform/internal/civiltime"
)

// TimeSlot is one candidate booking start within the business-hours window.
// LocalStart is shop wall-clock time; slots are derived per query and never
// persisted.
type TimeSlot struct {
	LocalStart time.Time `json:"start"`
	Available  bool      `json:"available"`
}

// Window describes the shop's bookable hours [StartHour, EndHour) and the
// spacing between candidate slot starts.
type Window struct {
	StartHour       int
	EndHour         int
	IntervalMinutes int
}

// DaySlots generates the full ascending slot list for one civil day.
//
// Every candidate in the window is returned; a slot is merely marked
// unavailable when its start is not strictly in the future (for queries about
// the current day) or when [start, start+duration) overlaps a booked interval.
// Accept/reject policy stays with the caller.
func DaySlots(conv civiltime.Converter, civilDay time.Time, serviceDuration time.Duration, win Window, booked []BookedInterval) []TimeSlot {
	day := civiltime.StartOfDay(civilDay)
	localNow := conv.Now()
	today := civiltime.SameCivilDay(day, localNow)

	interval := time.Duration(win.IntervalMinutes) * time.Minute
	windowStart := day.Add(time.Duration(win.StartHour) * time.Hour)
	windowEnd := day.Add(time.Duration(win.EndHour) * time.Hour)

	var slots []TimeSlot
	for local := windowStart; local.Before(windowEnd); local = local.Add(interval) {
		startUTC := conv.ToUniversal(local)
		endUTC := startUTC.Add(serviceDuration)

		past := today && !local.After(localNow)
		conflict := HasConflict(booked, startUTC, endUTC)

		slots = append(slots, TimeSlot{
			LocalStart: local,
			Available:  !past && !conflict,
		})
	}
	return slots
}
