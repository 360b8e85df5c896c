package recurrence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultHorizonDays bounds generation when the caller does not say
	// how far ahead to look.
	DefaultHorizonDays = 30

	// MaxHorizonDays keeps a single run bounded; longer horizons should be
	// chunked by the caller.
	MaxHorizonDays = 365
)

// GeneratedAppointment is one appointment materialized by a generation run.
type GeneratedAppointment struct {
	ID        uuid.UUID
	StartTime time.Time
	ClientID  uuid.UUID
}

// GenerateResult summarizes one generation run.
type GenerateResult struct {
	Generated    int
	Appointments []GeneratedAppointment
}

type Service struct {
	repo     Repository
	location *time.Location

	now func() time.Time
}

func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:     repo,
		location: loc,
		now:      time.Now,
	}
}

// CreateTemplate validates and stores a new recurrence template, seeding
// its cursor at the first matching occurrence on or after the start date.
func (s *Service) CreateTemplate(ctx context.Context, tmpl Template) (*Template, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	first, err := FirstOccurrence(tmpl, s.location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	tmpl.NextOccurrence = first
	tmpl.Active = true

	if _, err := s.repo.GetServiceDuration(ctx, tmpl.ServiceID); err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load service: %w", err)
	}

	created, err := s.repo.CreateTemplate(ctx, tmpl)
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return created, nil
}

// ListTemplates returns templates, optionally only active ones.
func (s *Service) ListTemplates(ctx context.Context, activeOnly bool) ([]Template, error) {
	templates, err := s.repo.ListTemplates(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

// DeactivateTemplate stops future generation for a template. Appointments
// already materialized are untouched.
func (s *Service) DeactivateTemplate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeactivateTemplate(ctx, id); err != nil {
		return err
	}
	return nil
}

// Generate materializes concrete appointments for every active template up
// to now + horizonDays. Each template is processed in isolation: one
// template's failure is logged and the run proceeds to the next. Re-running
// with unchanged inputs creates nothing new (the same-day duplicate check
// skips materialized occurrences) but leaves every cursor at the same final
// value.
func (s *Service) Generate(ctx context.Context, horizonDays int) (*GenerateResult, error) {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	if horizonDays > MaxHorizonDays {
		horizonDays = MaxHorizonDays
	}

	horizon := s.now().In(s.location).AddDate(0, 0, horizonDays)

	templates, err := s.repo.ListTemplates(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list active templates: %w", err)
	}

	result := &GenerateResult{Appointments: []GeneratedAppointment{}}

	for _, tmpl := range templates {
		generated, err := s.generateForTemplate(ctx, tmpl, horizon)
		if err != nil {
			// Keep whatever this template managed to materialize before
			// failing; the next run resumes from its persisted cursor.
			log.Printf("recurrence template %s: generation error: %v", tmpl.ID, err)
		}
		result.Appointments = append(result.Appointments, generated...)
	}

	result.Generated = len(result.Appointments)
	return result, nil
}

func (s *Service) generateForTemplate(ctx context.Context, tmpl Template, horizon time.Time) ([]GeneratedAppointment, error) {
	if err := tmpl.Validate(); err != nil {
		// Malformed templates are a configuration problem caught at
		// creation; skip rather than abort the batch.
		log.Printf("recurrence template %s: skipping malformed template: %v", tmpl.ID, err)
		return nil, nil
	}

	hour, minute, err := ParseClockTime(tmpl.PreferredTime)
	if err != nil {
		return nil, err
	}

	durationMinutes, err := s.repo.GetServiceDuration(ctx, tmpl.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("load service duration: %w", err)
	}
	duration := time.Duration(durationMinutes) * time.Minute

	dayOfMonth := 0
	if tmpl.DayOfMonth != nil {
		dayOfMonth = *tmpl.DayOfMonth
	}

	var generated []GeneratedAppointment
	cursor := tmpl.NextOccurrence.In(s.location)

	var loopErr error
	for cursor.Before(horizon) {
		if tmpl.EndDate != nil && tmpl.EndDate.Before(cursor) {
			break
		}

		dayStart := time.Date(cursor.Year(), cursor.Month(), cursor.Day(), 0, 0, 0, 0, cursor.Location())
		dayEnd := dayStart.AddDate(0, 0, 1)

		exists, err := s.repo.HasAppointmentOnDay(ctx, tmpl.ClientID, tmpl.TechnicianID, tmpl.ServiceID, dayStart, dayEnd)
		if err != nil {
			loopErr = fmt.Errorf("duplicate check: %w", err)
			break
		}

		if !exists {
			id, err := s.repo.CreateAppointment(ctx, tmpl.TechnicianID, tmpl.ClientID, tmpl.ServiceID, cursor, cursor.Add(duration))
			if err != nil {
				loopErr = fmt.Errorf("materialize occurrence at %s: %w", cursor, err)
				break
			}
			generated = append(generated, GeneratedAppointment{
				ID:        id,
				StartTime: cursor,
				ClientID:  tmpl.ClientID,
			})
		}

		cursor = Next(cursor, tmpl.Frequency, dayOfMonth, hour, minute)
	}

	// Persist the cursor once per template, not per occurrence. A crash
	// mid-loop just redoes some work next run; the duplicate check keeps
	// that safe.
	if cursor.After(tmpl.NextOccurrence) {
		if err := s.repo.UpdateTemplateCursor(ctx, tmpl.ID, cursor); err != nil {
			if loopErr != nil {
				return generated, fmt.Errorf("%v; persist cursor: %w", loopErr, err)
			}
			return generated, fmt.Errorf("persist cursor: %w", err)
		}
	}

	return generated, loopErr
}
