package schedule

import (
	"testing"
	"time"
)

func utc(h, m int) time.Time {
	return time.Date(2025, time.March, 10, h, m, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical", utc(14, 0), utc(14, 45), utc(14, 0), utc(14, 45), true},
		{"partial overlap", utc(14, 0), utc(14, 45), utc(14, 30), utc(15, 15), true},
		{"contained", utc(14, 0), utc(15, 0), utc(14, 15), utc(14, 30), true},
		{"adjacent after", utc(14, 0), utc(14, 45), utc(14, 45), utc(15, 30), false},
		{"adjacent before", utc(14, 45), utc(15, 30), utc(14, 0), utc(14, 45), false},
		{"disjoint", utc(9, 0), utc(9, 30), utc(14, 0), utc(14, 45), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			// The overlap relation is symmetric.
			if got := Overlaps(tt.s2, tt.e2, tt.s1, tt.e1); got != tt.want {
				t.Errorf("Overlaps (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasConflict(t *testing.T) {
	existing := []BookedInterval{
		{Start: utc(14, 0), End: utc(14, 45)},
		{Start: utc(16, 0), End: utc(16, 30)},
	}

	if !HasConflict(existing, utc(14, 30), utc(15, 15)) {
		t.Error("expected conflict with [14:00,14:45)")
	}
	if HasConflict(existing, utc(14, 45), utc(15, 30)) {
		t.Error("adjacent interval must not conflict")
	}
	if HasConflict(existing, utc(15, 0), utc(15, 45)) {
		t.Error("free interval must not conflict")
	}
	if HasConflict(nil, utc(14, 0), utc(14, 45)) {
		t.Error("no bookings means no conflict")
	}
}

func TestHasConflictOrderInsensitive(t *testing.T) {
	a := BookedInterval{Start: utc(10, 0), End: utc(10, 30)}
	b := BookedInterval{Start: utc(12, 0), End: utc(12, 30)}

	start, end := utc(12, 15), utc(13, 0)
	if HasConflict([]BookedInterval{a, b}, start, end) != HasConflict([]BookedInterval{b, a}, start, end) {
		t.Error("result depends on ordering of existing bookings")
	}
}
