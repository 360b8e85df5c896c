package booking

import (
	"testing"
	"time"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	hour := time.Hour

	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical", base, base.Add(hour), base, base.Add(hour), true},
		{"partial overlap", base, base.Add(hour), base.Add(30 * time.Minute), base.Add(90 * time.Minute), true},
		{"contained", base, base.Add(2 * hour), base.Add(30 * time.Minute), base.Add(hour), true},
		{"touching at boundary", base, base.Add(hour), base.Add(hour), base.Add(2 * hour), false},
		{"touching at boundary reversed", base.Add(hour), base.Add(2 * hour), base, base.Add(hour), false},
		{"disjoint", base, base.Add(hour), base.Add(3 * hour), base.Add(4 * hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Fatalf("Overlaps(%v, %v, %v, %v) = %v, want %v", tt.s1, tt.e1, tt.s2, tt.e2, got, tt.want)
			}
		})
	}
}

func TestSlotTimesAroundExistingBooking(t *testing.T) {
	// Monday 09:00-17:00, 60-minute service, one existing 10:00-11:00 booking.
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	windowStart := day.Add(9 * time.Hour)
	windowEnd := day.Add(17 * time.Hour)
	busy := []Interval{{Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour)}}

	slots := SlotTimes(windowStart, windowEnd, time.Hour, busy, day)

	want := []string{
		"09:00",
		"11:00", "11:30", "12:00", "12:30", "13:00", "13:30",
		"14:00", "14:30", "15:00", "15:30", "16:00",
	}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots, want %d: %v", len(slots), len(want), slots)
	}
	for i, w := range want {
		if got := slots[i].Format("15:04"); got != w {
			t.Fatalf("slot %d = %s, want %s", i, got, w)
		}
	}
}

func TestSlotTimesEndBoundaryInclusive(t *testing.T) {
	// A slot may finish exactly at the window end.
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	windowStart := day.Add(16 * time.Hour)
	windowEnd := day.Add(17 * time.Hour)

	slots := SlotTimes(windowStart, windowEnd, time.Hour, nil, day)
	if len(slots) != 1 {
		t.Fatalf("got %d slots, want 1: %v", len(slots), slots)
	}
	if !slots[0].Equal(windowStart) {
		t.Fatalf("slot = %v, want %v", slots[0], windowStart)
	}

	// A 90-minute service no longer fits in the final hour.
	slots = SlotTimes(windowStart, windowEnd, 90*time.Minute, nil, day)
	if len(slots) != 0 {
		t.Fatalf("got %d slots, want 0: %v", len(slots), slots)
	}
}

func TestSlotTimesSkipsPast(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	windowStart := day.Add(9 * time.Hour)
	windowEnd := day.Add(11 * time.Hour)
	now := day.Add(9*time.Hour + 45*time.Minute)

	slots := SlotTimes(windowStart, windowEnd, 30*time.Minute, nil, now)

	want := []string{"10:00", "10:30"}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots, want %d: %v", len(slots), len(want), slots)
	}
	for i, w := range want {
		if got := slots[i].Format("15:04"); got != w {
			t.Fatalf("slot %d = %s, want %s", i, got, w)
		}
	}
}

func TestSlotTimesFullyBooked(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	windowStart := day.Add(9 * time.Hour)
	windowEnd := day.Add(12 * time.Hour)
	busy := []Interval{{Start: windowStart, End: windowEnd}}

	slots := SlotTimes(windowStart, windowEnd, 30*time.Minute, busy, day)
	if len(slots) != 0 {
		t.Fatalf("got %d slots, want 0: %v", len(slots), slots)
	}
}

func TestSlotTimesNonPositiveDuration(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if slots := SlotTimes(day, day.Add(8*time.Hour), 0, nil, day); slots != nil {
		t.Fatalf("got %v, want nil", slots)
	}
}

func TestParseTimeOnDate(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)

	got, err := ParseTimeOnDate(date, "09:30")
	if err != nil {
		t.Fatalf("ParseTimeOnDate: %v", err)
	}
	want := time.Date(2026, 3, 2, 9, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	for _, bad := range []string{"", "9", "25:00", "09:60", "ab:cd"} {
		if _, err := ParseTimeOnDate(date, bad); err == nil {
			t.Fatalf("ParseTimeOnDate(%q) succeeded, want error", bad)
		}
	}
}
