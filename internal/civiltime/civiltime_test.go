package civiltime

import (
	"testing"
	"time"
)

func civil(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestToUniversal(t *testing.T) {
	conv := New(-4)

	// 14:00 on the shop wall clock is 18:00 UTC.
	got := conv.ToUniversal(civil(2025, time.March, 10, 14, 0))
	want := time.Date(2025, time.March, 10, 18, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ToUniversal = %v, want %v", got, want)
	}
}

func TestToCivil(t *testing.T) {
	conv := New(-4)

	got := conv.ToCivil(time.Date(2025, time.March, 10, 18, 0, 0, 0, time.UTC))
	want := civil(2025, time.March, 10, 14, 0)
	if !got.Equal(want) {
		t.Errorf("ToCivil = %v, want %v", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	offsets := []int{-4, -5, -3, 0, 2}
	stamps := []time.Time{
		civil(2025, time.January, 1, 0, 0),
		civil(2025, time.June, 15, 23, 30),
		civil(2024, time.February, 29, 12, 45),
		civil(2025, time.December, 31, 21, 59),
	}
	for _, off := range offsets {
		conv := New(off)
		for _, stamp := range stamps {
			back := conv.ToCivil(conv.ToUniversal(stamp))
			if !back.Equal(stamp) {
				t.Errorf("offset %d: round trip of %v gave %v", off, stamp, back)
			}
		}
	}
}

func TestDayBoundsUTC(t *testing.T) {
	conv := New(-4)

	// Any time within the civil day maps to the same bounds.
	for _, stamp := range []time.Time{
		civil(2025, time.March, 10, 0, 0),
		civil(2025, time.March, 10, 14, 30),
		civil(2025, time.March, 10, 23, 59),
	} {
		start, end := conv.DayBoundsUTC(stamp)
		wantStart := time.Date(2025, time.March, 10, 4, 0, 0, 0, time.UTC)
		wantEnd := time.Date(2025, time.March, 11, 4, 0, 0, 0, time.UTC)
		if !start.Equal(wantStart) || !end.Equal(wantEnd) {
			t.Errorf("DayBoundsUTC(%v) = [%v, %v), want [%v, %v)", stamp, start, end, wantStart, wantEnd)
		}
	}
}

func TestNowUsesInjectedClock(t *testing.T) {
	instant := time.Date(2025, time.March, 10, 18, 15, 0, 0, time.UTC)
	conv := NewWithClock(-4, func() time.Time { return instant })

	got := conv.Now()
	want := civil(2025, time.March, 10, 14, 15)
	if !got.Equal(want) {
		t.Errorf("Now = %v, want %v", got, want)
	}
}

func TestSameCivilDay(t *testing.T) {
	a := civil(2025, time.March, 10, 0, 1)
	b := civil(2025, time.March, 10, 23, 59)
	c := civil(2025, time.March, 11, 0, 0)

	if !SameCivilDay(a, b) {
		t.Error("expected a and b on the same day")
	}
	if SameCivilDay(b, c) {
		t.Error("expected b and c on different days")
	}
}
