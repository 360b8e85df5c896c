package recurrence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTemplateNotFound = errors.New("recurrence template not found")
	ErrServiceNotFound  = errors.New("service not found")
)

// Repository contains all DB interactions needed by the recurrence engine.
// It owns its own narrow view of the appointment store so the engine stays
// decoupled from the booking package.
type Repository interface {
	CreateTemplate(ctx context.Context, t Template) (*Template, error)
	GetTemplateByID(ctx context.Context, id uuid.UUID) (*Template, error)
	ListTemplates(ctx context.Context, activeOnly bool) ([]Template, error)
	DeactivateTemplate(ctx context.Context, id uuid.UUID) error

	// UpdateTemplateCursor persists an advanced next_occurrence. The cursor
	// never moves backwards; callers only pass values ahead of the stored one.
	UpdateTemplateCursor(ctx context.Context, id uuid.UUID, next time.Time) error

	GetServiceDuration(ctx context.Context, serviceID uuid.UUID) (int, error)

	// HasAppointmentOnDay reports whether an occupying appointment for the
	// (client, technician, service) triple already exists within [dayStart,
	// dayEnd). This is the idempotence check that makes redundant generation
	// runs safe.
	HasAppointmentOnDay(ctx context.Context, clientID, technicianID, serviceID uuid.UUID, dayStart, dayEnd time.Time) (bool, error)

	// CreateAppointment materializes one occurrence with status booked and
	// returns the new appointment's id.
	CreateAppointment(ctx context.Context, technicianID, clientID, serviceID uuid.UUID, start, end time.Time) (uuid.UUID, error)
}
