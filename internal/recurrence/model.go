package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

var (
	ErrInvalidTemplate  = errors.New("invalid template")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrMissingAnchor    = errors.New("frequency requires its anchor field")
)

// Template is a standing rule describing a repeating appointment pattern.
// It is distinct from the concrete appointments it generates: generated
// appointments never back-reference the template, duplicate suppression is
// by (client, technician, service, day) instead.
type Template struct {
	ID           uuid.UUID
	ClientID     uuid.UUID
	TechnicianID uuid.UUID
	ServiceID    uuid.UUID
	Frequency    Frequency

	// DayOfWeek anchors weekly and biweekly templates (0 = Sunday).
	// DayOfMonth anchors monthly templates (1-31).
	DayOfWeek  *int
	DayOfMonth *int

	PreferredTime string // "HH:MM"
	StartDate     time.Time
	EndDate       *time.Time

	// NextOccurrence is the generation cursor. It only ever moves forward.
	NextOccurrence time.Time

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate enforces the frequency/anchor invariant. It runs at template
// creation; the generator assumes validated templates and skips any it
// cannot interpret.
func (t *Template) Validate() error {
	switch t.Frequency {
	case FrequencyWeekly, FrequencyBiweekly:
		if t.DayOfWeek == nil {
			return fmt.Errorf("%w: %s needs day_of_week", ErrMissingAnchor, t.Frequency)
		}
		if *t.DayOfWeek < 0 || *t.DayOfWeek > 6 {
			return fmt.Errorf("day_of_week out of range: %d", *t.DayOfWeek)
		}
	case FrequencyMonthly:
		if t.DayOfMonth == nil {
			return fmt.Errorf("%w: monthly needs day_of_month", ErrMissingAnchor)
		}
		if *t.DayOfMonth < 1 || *t.DayOfMonth > 31 {
			return fmt.Errorf("day_of_month out of range: %d", *t.DayOfMonth)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, t.Frequency)
	}

	if _, _, err := ParseClockTime(t.PreferredTime); err != nil {
		return fmt.Errorf("invalid preferred_time: %w", err)
	}

	if t.StartDate.IsZero() {
		return errors.New("start_date is required")
	}
	if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
		return errors.New("end_date precedes start_date")
	}

	return nil
}
