// Package civiltime converts between the shop's wall clock and UTC.
//
// The shop runs on a fixed whole-hour offset from UTC (Bolivia, UTC-4, in the
// original deployment). No timezone database is consulted: a civil timestamp
// combined with the offset fully determines the instant, and the conversion is
// plain arithmetic, so there are no error cases.
package civiltime

import "time"

// Converter maps wall-clock timestamps to universal instants and back using a
// fixed hour offset. The zero value is a UTC shop (offset 0).
type Converter struct {
	offset time.Duration
	now    func() time.Time
}

// New returns a Converter for the given whole-hour offset from UTC.
// Negative offsets are west of Greenwich (Bolivia is -4).
func New(offsetHours int) Converter {
	return Converter{
		offset: time.Duration(offsetHours) * time.Hour,
		now:    time.Now,
	}
}

// NewWithClock returns a Converter whose notion of "now" is supplied by clock.
// Tests use this to pin the current instant.
func NewWithClock(offsetHours int, clock func() time.Time) Converter {
	c := New(offsetHours)
	c.now = clock
	return c
}

// ToUniversal interprets civil as wall-clock time in the shop's offset and
// returns the corresponding UTC instant.
func (c Converter) ToUniversal(civil time.Time) time.Time {
	return civil.Add(-c.offset).UTC()
}

// ToCivil renders a universal instant as the shop's wall-clock time.
// ToCivil(ToUniversal(t)) == t for every representable t.
func (c Converter) ToCivil(instant time.Time) time.Time {
	return instant.UTC().Add(c.offset)
}

// Now returns the current wall-clock time at the shop.
func (c Converter) Now() time.Time {
	return c.ToCivil(c.nowUTC())
}

// StartOfDay returns midnight of the civil calendar day containing civil.
func StartOfDay(civil time.Time) time.Time {
	y, m, d := civil.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayBoundsUTC returns the half-open UTC range [start, end) covering the civil
// calendar day that contains civil.
func (c Converter) DayBoundsUTC(civil time.Time) (time.Time, time.Time) {
	start := c.ToUniversal(StartOfDay(civil))
	return start, start.AddDate(0, 0, 1)
}

// SameCivilDay reports whether the two civil timestamps fall on the same
// calendar day.
func SameCivilDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (c Converter) nowUTC() time.Time {
	if c.now == nil {
		return time.Now().UTC()
	}
	return c.now().UTC()
}
