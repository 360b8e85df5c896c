package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/shearbook/salon-scheduling/internal/config"
	"github.com/shearbook/salon-scheduling/internal/notify"
	"github.com/shearbook/salon-scheduling/internal/payment"
	redisclient "github.com/shearbook/salon-scheduling/internal/redis"
)

const (
	EventAppointmentBooked    = "APPOINTMENT_BOOKED"
	EventAppointmentConfirmed = "APPOINTMENT_CONFIRMED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
	EventAppointmentCompleted = "APPOINTMENT_COMPLETED"
	EventAppointmentNoShow    = "APPOINTMENT_NO_SHOW"
)

var (
	ErrTimeSlotConflict        = errors.New("time slot overlaps an existing appointment")
	ErrTechnicianBeingBooked   = errors.New("technician is currently being booked, please retry")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrTechnicianInactive      = errors.New("technician is not active")
)

type Service struct {
	repo     Repository
	locker   redisclient.Locker
	notifier notify.Notifier
	charger  payment.DepositCharger
	cfg      config.Config

	now func() time.Time
}

func NewService(repo Repository, locker redisclient.Locker, notifier notify.Notifier, charger payment.DepositCharger, cfg config.Config) *Service {
	return &Service{
		repo:     repo,
		locker:   locker,
		notifier: notifier,
		charger:  charger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// AvailableSlots computes bookable start times for a service on a calendar
// date, optionally limited to a single technician. The date is interpreted
// in its own location; candidate starts step in 30-minute increments across
// each working technician's hours, and a slot is emitted only when the full
// service duration fits without overlapping a booked or confirmed
// appointment. An empty result is not an error.
func (s *Service) AvailableSlots(ctx context.Context, technicianID *uuid.UUID, serviceID uuid.UUID, date time.Time) ([]Slot, error) {
	svc, err := s.repo.GetServiceByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load service: %w", err)
	}
	duration := time.Duration(svc.DurationMinutes) * time.Minute

	hours, err := s.repo.FindWorkingHours(ctx, technicianID, int(date.Weekday()))
	if err != nil {
		return nil, fmt.Errorf("load working hours: %w", err)
	}

	working := hours[:0]
	techIDs := make([]uuid.UUID, 0, len(hours))
	for _, wh := range hours {
		if !wh.IsWorking {
			continue
		}
		working = append(working, wh)
		techIDs = append(techIDs, wh.TechnicianID)
	}
	if len(working) == 0 {
		return []Slot{}, nil
	}

	techs, err := s.repo.ListTechniciansByIDs(ctx, techIDs)
	if err != nil {
		return nil, fmt.Errorf("load technicians: %w", err)
	}
	names := make(map[uuid.UUID]string, len(techs))
	for _, t := range techs {
		names[t.ID] = t.Name
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	appts, err := s.repo.FindAppointments(ctx, techIDs, dayStart, dayEnd, OccupyingStatuses)
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	busyByTech := make(map[uuid.UUID][]Interval)
	for _, a := range appts {
		busyByTech[a.TechnicianID] = append(busyByTech[a.TechnicianID], Interval{Start: a.StartTime, End: a.EndTime})
	}

	now := s.now()

	var slots []Slot
	for _, wh := range working {
		windowStart, err := ParseTimeOnDate(date, wh.StartTime)
		if err != nil {
			log.Printf("skipping working hours %s: %v", wh.ID, err)
			continue
		}
		windowEnd, err := ParseTimeOnDate(date, wh.EndTime)
		if err != nil {
			log.Printf("skipping working hours %s: %v", wh.ID, err)
			continue
		}

		for _, start := range SlotTimes(windowStart, windowEnd, duration, busyByTech[wh.TechnicianID], now) {
			slots = append(slots, Slot{
				Time:           start.Format("15:04"),
				Start:          start,
				TechnicianID:   wh.TechnicianID,
				TechnicianName: names[wh.TechnicianID],
			})
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Start.Equal(slots[j].Start) {
			return slots[i].Start.Before(slots[j].Start)
		}
		return slots[i].TechnicianID.String() < slots[j].TechnicianID.String()
	})

	return slots, nil
}

// CreateAppointment books a service with a technician at a start time.
// The write-time conflict check runs inside a per-technician lock so that
// two concurrent requests for overlapping intervals cannot both insert;
// availability reads are advisory and are never trusted here.
func (s *Service) CreateAppointment(ctx context.Context, technicianID, clientID, serviceID uuid.UUID, start time.Time) (*Appointment, error) {
	client, err := s.repo.GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, ErrClientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load client: %w", err)
	}

	tech, err := s.repo.GetTechnicianByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, ErrTechnicianNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load technician: %w", err)
	}
	if !tech.Active {
		return nil, ErrTechnicianInactive
	}

	svc, err := s.repo.GetServiceByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load service: %w", err)
	}

	end := start.Add(time.Duration(svc.DurationMinutes) * time.Minute)

	var created *Appointment

	err = s.locker.WithTechnicianLock(ctx, technicianID, start, func(lockCtx context.Context) error {
		// Inside the critical section re-check for overlapping appointments.
		existing, err := s.repo.FindAppointments(lockCtx, []uuid.UUID{technicianID}, start, end, OccupyingStatuses)
		if err != nil {
			return fmt.Errorf("check overlapping appointments: %w", err)
		}
		if len(existing) > 0 {
			return ErrTimeSlotConflict
		}

		appt, err := s.repo.CreateAppointment(lockCtx, technicianID, clientID, serviceID, start, end)
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		created = appt

		s.logEvent(lockCtx, appt.ID, EventAppointmentBooked, map[string]any{
			"technician_id": technicianID.String(),
			"client_id":     clientID.String(),
			"service_id":    serviceID.String(),
			"start_time":    start,
		})

		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrTechnicianBeingBooked
		}
		return nil, err
	}

	s.chargeDeposit(ctx, created, client, svc)
	s.notifyClient(ctx, client, fmt.Sprintf("Your %s appointment with %s on %s is booked.",
		svc.Name, tech.Name, created.StartTime.Format("Mon Jan 2 15:04")))

	return created, nil
}

// ConfirmAppointment moves a booked appointment to confirmed.
func (s *Service) ConfirmAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusConfirmed, EventAppointmentConfirmed, []AppointmentStatus{StatusBooked})
}

// CancelAppointment cancels a booked or confirmed appointment. The row is
// kept; only the status changes, which releases the technician's time.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.transition(ctx, id, StatusCancelled, EventAppointmentCancelled, OccupyingStatuses)
	if err != nil {
		return nil, err
	}

	if client, cerr := s.repo.GetClientByID(ctx, appt.ClientID); cerr == nil {
		s.notifyClient(ctx, client, fmt.Sprintf("Your appointment on %s was cancelled.",
			appt.StartTime.Format("Mon Jan 2 15:04")))
	}

	return appt, nil
}

// CompleteAppointment marks a booked or confirmed appointment completed.
func (s *Service) CompleteAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusCompleted, EventAppointmentCompleted, OccupyingStatuses)
}

// MarkNoShow marks a booked or confirmed appointment as a no-show.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusNoShow, EventAppointmentNoShow, OccupyingStatuses)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to AppointmentStatus, eventType string, allowedFrom []AppointmentStatus) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	allowed := false
	for _, from := range allowedFrom {
		if appt.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, appt.Status, to)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Status changed concurrently between the read and the update.
			return nil, ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	s.logEvent(ctx, updated.ID, eventType, map[string]any{})

	return updated, nil
}

// GetAppointment retrieves an appointment by ID.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// ListAppointmentsByClient retrieves appointments for one client.
func (s *Service) ListAppointmentsByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 20 // default
	}
	if limit > 100 {
		limit = 100 // max
	}
	if offset < 0 {
		offset = 0
	}

	appts, err := s.repo.ListAppointmentsByClient(ctx, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by client: %w", err)
	}
	return appts, nil
}

// ListAppointmentsForTechnicianDay retrieves a technician's occupying
// appointments on one calendar date.
func (s *Service) ListAppointmentsForTechnicianDay(ctx context.Context, technicianID uuid.UUID, date time.Time) ([]Appointment, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	appts, err := s.repo.FindAppointments(ctx, []uuid.UUID{technicianID}, dayStart, dayStart.AddDate(0, 0, 1), OccupyingStatuses)
	if err != nil {
		return nil, fmt.Errorf("list appointments for technician day: %w", err)
	}
	return appts, nil
}

// chargeDeposit collects the service's deposit when one is configured.
// A failed charge never rolls back the booking; staff follow up manually.
func (s *Service) chargeDeposit(ctx context.Context, appt *Appointment, client *Client, svc *ServiceOffering) {
	if s.charger == nil || svc.DepositCents <= 0 {
		return
	}

	ref, err := s.charger.ChargeDeposit(ctx, payment.DepositRequest{
		AppointmentID: appt.ID.String(),
		ClientID:      client.ID.String(),
		AmountCents:   svc.DepositCents,
		Description:   fmt.Sprintf("Deposit for %s on %s", svc.Name, appt.StartTime.Format("2006-01-02 15:04")),
	})
	if err != nil {
		log.Printf("failed to charge deposit for appointment %s: %v", appt.ID, err)
		return
	}

	log.Printf("deposit charged for appointment %s ref=%s", appt.ID, ref)
}

func (s *Service) notifyClient(ctx context.Context, client *Client, body string) {
	if s.notifier == nil {
		return
	}

	msg := notify.Message{Body: body}
	if client.Email != nil {
		msg.Email = *client.Email
	}
	if client.Phone != nil {
		msg.Phone = *client.Phone
	}
	if msg.Email == "" && msg.Phone == "" {
		return
	}

	if err := s.notifier.Send(ctx, msg); err != nil {
		log.Printf("failed to notify client %s: %v", client.ID, err)
	}
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal event payload for %s: %v", eventType, err)
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     s.now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		log.Printf("failed to insert event log %s for appointment %s: %v", eventType, appointmentID, err)
	}
}
