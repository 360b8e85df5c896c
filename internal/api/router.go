package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shearbook/salon-scheduling/internal/booking"
	"github.com/shearbook/salon-scheduling/internal/recurrence"
)

type RouterConfig struct {
	Booking    *booking.Service
	Recurrence *recurrence.Service
	Location   *time.Location
	PgPool     *pgxpool.Pool
	Redis      *redis.Client
	Env        string
	Version    string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Availability
	r.Get("/availability", availabilityHandler(cfg.Booking, cfg.Location))

	// Appointments
	r.Post("/appointments", createAppointmentHandler(cfg.Booking))
	r.Get("/appointments", listAppointmentsHandler(cfg.Booking, cfg.Location))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Booking))
	r.Post("/appointments/{id}/confirm", transitionHandler(func(r *http.Request, id uuid.UUID) (*booking.Appointment, error) {
		return cfg.Booking.ConfirmAppointment(r.Context(), id)
	}))
	r.Post("/appointments/{id}/cancel", transitionHandler(func(r *http.Request, id uuid.UUID) (*booking.Appointment, error) {
		return cfg.Booking.CancelAppointment(r.Context(), id)
	}))
	r.Post("/appointments/{id}/complete", transitionHandler(func(r *http.Request, id uuid.UUID) (*booking.Appointment, error) {
		return cfg.Booking.CompleteAppointment(r.Context(), id)
	}))
	r.Post("/appointments/{id}/no-show", transitionHandler(func(r *http.Request, id uuid.UUID) (*booking.Appointment, error) {
		return cfg.Booking.MarkNoShow(r.Context(), id)
	}))

	// Recurrence templates
	r.Post("/recurrences", createTemplateHandler(cfg.Recurrence, cfg.Location))
	r.Get("/recurrences", listTemplatesHandler(cfg.Recurrence))
	r.Delete("/recurrences/{id}", deactivateTemplateHandler(cfg.Recurrence))
	r.Post("/recurrences/generate", generateHandler(cfg.Recurrence))

	return r
}
