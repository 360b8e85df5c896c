package api

import (
	"time"

	"github.com/google/uuid"
)

type SlotResponse struct {
	Time           string    `json:"time"`
	TechnicianID   uuid.UUID `json:"technician_id"`
	TechnicianName string    `json:"technician_name"`
}

type AvailabilityResponse struct {
	Slots []SlotResponse `json:"slots"`
}

type CreateAppointmentRequest struct {
	TechnicianID string `json:"technician_id"`
	ClientID     string `json:"client_id"`
	ServiceID    string `json:"service_id"`
	StartTime    string `json:"start_time"` // RFC 3339
}

type AppointmentResponse struct {
	ID           uuid.UUID `json:"id"`
	TechnicianID uuid.UUID `json:"technician_id"`
	ClientID     uuid.UUID `json:"client_id"`
	ServiceID    uuid.UUID `json:"service_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status"`
}

type CreateTemplateRequest struct {
	ClientID      string  `json:"client_id"`
	TechnicianID  string  `json:"technician_id"`
	ServiceID     string  `json:"service_id"`
	Frequency     string  `json:"frequency"` // weekly, biweekly, monthly
	DayOfWeek     *int    `json:"day_of_week,omitempty"`
	DayOfMonth    *int    `json:"day_of_month,omitempty"`
	PreferredTime string  `json:"preferred_time"` // "HH:MM"
	StartDate     string  `json:"start_date"`     // "YYYY-MM-DD"
	EndDate       *string `json:"end_date,omitempty"`
}

type TemplateResponse struct {
	ID             uuid.UUID  `json:"id"`
	ClientID       uuid.UUID  `json:"client_id"`
	TechnicianID   uuid.UUID  `json:"technician_id"`
	ServiceID      uuid.UUID  `json:"service_id"`
	Frequency      string     `json:"frequency"`
	DayOfWeek      *int       `json:"day_of_week,omitempty"`
	DayOfMonth     *int       `json:"day_of_month,omitempty"`
	PreferredTime  string     `json:"preferred_time"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	NextOccurrence time.Time  `json:"next_occurrence"`
	Active         bool       `json:"active"`
}

type GenerateRequest struct {
	DaysAhead int `json:"days_ahead"`
}

type GeneratedAppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	StartTime time.Time `json:"start_time"`
	ClientID  uuid.UUID `json:"client_id"`
}

type GenerateResponse struct {
	Generated    int                            `json:"generated"`
	Appointments []GeneratedAppointmentResponse `json:"appointments"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
