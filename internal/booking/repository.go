package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTechnicianNotFound  = errors.New("technician not found")
	ErrClientNotFound      = errors.New("client not found")
	ErrServiceNotFound     = errors.New("service not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the booking service.
type Repository interface {
	GetTechnicianByID(ctx context.Context, id uuid.UUID) (*Technician, error)
	ListTechniciansByIDs(ctx context.Context, ids []uuid.UUID) ([]Technician, error)
	GetClientByID(ctx context.Context, id uuid.UUID) (*Client, error)
	GetServiceByID(ctx context.Context, id uuid.UUID) (*ServiceOffering, error)

	// FindWorkingHours returns entries for a day of week, optionally limited
	// to a single technician when technicianID is non-nil.
	FindWorkingHours(ctx context.Context, technicianID *uuid.UUID, dayOfWeek int) ([]WorkingHours, error)

	// FindAppointments returns appointments for the given technicians whose
	// interval intersects [from, to), limited to the given statuses.
	FindAppointments(ctx context.Context, technicianIDs []uuid.UUID, from, to time.Time, statuses []AppointmentStatus) ([]Appointment, error)

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListAppointmentsByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]Appointment, error)

	CreateAppointment(ctx context.Context, technicianID, clientID, serviceID uuid.UUID, start, end time.Time) (*Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
