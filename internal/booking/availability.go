package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SlotStep is the fixed stepping between candidate start times.
const SlotStep = 30 * time.Minute

// Interval is a busy time range held by an existing appointment.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Two intervals that only touch at a boundary do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

// SlotTimes returns candidate start times within [windowStart, windowEnd]
// where a booking of length duration fits without overlapping any busy
// interval. The window end is inclusive: a slot may finish exactly at
// windowEnd. Candidates strictly before now are skipped.
func SlotTimes(windowStart, windowEnd time.Time, duration time.Duration, busy []Interval, now time.Time) []time.Time {
	if duration <= 0 {
		return nil
	}

	var slots []time.Time
	for t := windowStart; !t.Add(duration).After(windowEnd); t = t.Add(SlotStep) {
		if t.Before(now) {
			continue
		}
		if overlapsAny(t, t.Add(duration), busy) {
			continue
		}
		slots = append(slots, t)
	}
	return slots
}

// ParseTimeOnDate resolves an "HH:MM" string onto the given calendar date,
// in the date's location.
func ParseTimeOnDate(date time.Time, timeStr string) (time.Time, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("invalid time format: %s", timeStr)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid hour: %w", err)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid minute: %w", err)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("time out of range: %s", timeStr)
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}
