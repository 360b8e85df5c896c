package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseClockTime splits an "HH:MM" string into hour and minute.
func ParseClockTime(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("invalid time format: %s", s)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hour: %w", err)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minute: %w", err)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time out of range: %s", s)
	}

	return hour, minute, nil
}

// Next advances an occurrence by one period of the template's frequency.
// The preferred time of day is re-applied on every step so a DST change
// never drifts the appointment time.
//
// Monthly templates advance to the next calendar month and re-pin the
// anchor day, clamped to the last day of months too short for it. A day-31
// anchor lands on Apr 30 and comes back to May 31.
func Next(t time.Time, freq Frequency, dayOfMonth, hour, minute int) time.Time {
	loc := t.Location()

	switch freq {
	case FrequencyWeekly:
		d := t.AddDate(0, 0, 7)
		return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
	case FrequencyBiweekly:
		d := t.AddDate(0, 0, 14)
		return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
	case FrequencyMonthly:
		year, month := t.Year(), t.Month()+1
		day := dayOfMonth
		if last := daysInMonth(year, month); day > last {
			day = last
		}
		return time.Date(year, month, day, hour, minute, 0, 0, loc)
	default:
		return t
	}
}

// FirstOccurrence computes the initial cursor for a freshly created
// template: the first instant on or after the start date that matches the
// template's anchor, at the preferred time of day.
func FirstOccurrence(tmpl Template, loc *time.Location) (time.Time, error) {
	hour, minute, err := ParseClockTime(tmpl.PreferredTime)
	if err != nil {
		return time.Time{}, err
	}

	start := tmpl.StartDate.In(loc)
	base := time.Date(start.Year(), start.Month(), start.Day(), hour, minute, 0, 0, loc)

	switch tmpl.Frequency {
	case FrequencyWeekly, FrequencyBiweekly:
		offset := (*tmpl.DayOfWeek - int(base.Weekday()) + 7) % 7
		d := base.AddDate(0, 0, offset)
		return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc), nil
	case FrequencyMonthly:
		year, month := base.Year(), base.Month()
		day := *tmpl.DayOfMonth
		if last := daysInMonth(year, month); day > last {
			day = last
		}
		candidate := time.Date(year, month, day, hour, minute, 0, 0, loc)
		if candidate.Before(base) {
			return Next(candidate, FrequencyMonthly, *tmpl.DayOfMonth, hour, minute), nil
		}
		return candidate, nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFrequency, tmpl.Frequency)
	}
}

// daysInMonth exploits the day-zero normalization of time.Date: day 0 of
// the following month is the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
