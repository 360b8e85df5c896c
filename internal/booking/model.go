package booking

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusBooked    AppointmentStatus = "booked"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// OccupyingStatuses are the statuses that count as holding a technician's
// time for conflict and availability purposes.
var OccupyingStatuses = []AppointmentStatus{StatusBooked, StatusConfirmed}

type Technician struct {
	ID        uuid.UUID
	Name      string
	Specialty *string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Client struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ServiceOffering is a bookable salon service (haircut, colour, etc.).
type ServiceOffering struct {
	ID              uuid.UUID
	Name            string
	DurationMinutes int
	PriceCents      int64
	DepositCents    int64
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// WorkingHours is a technician's configured window for one day of the week.
// StartTime and EndTime are "HH:MM" in the salon's local time.
type WorkingHours struct {
	ID           uuid.UUID
	TechnicianID uuid.UUID
	DayOfWeek    int // 0 = Sunday ... 6 = Saturday
	StartTime    string
	EndTime      string
	IsWorking    bool
}

type Appointment struct {
	ID           uuid.UUID
	TechnicianID uuid.UUID
	ClientID     uuid.UUID
	ServiceID    uuid.UUID
	StartTime    time.Time
	EndTime      time.Time
	Status       AppointmentStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// Slot is one bookable start time produced by the availability calculator.
type Slot struct {
	Time           string // "HH:MM"
	Start          time.Time
	TechnicianID   uuid.UUID
	TechnicianName string
}
