package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanTechnician(row pgx.Row) (*Technician, error) {
	var t Technician
	var specialty *string

	err := row.Scan(
		&t.ID,
		&t.Name,
		&specialty,
		&t.Active,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTechnicianNotFound
		}
		return nil, err
	}

	t.Specialty = specialty
	return &t, nil
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	var email, phone *string

	err := row.Scan(
		&c.ID,
		&c.Name,
		&email,
		&phone,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	c.Email = email
	c.Phone = phone
	return &c, nil
}

func scanServiceOffering(row pgx.Row) (*ServiceOffering, error) {
	var s ServiceOffering

	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.DurationMinutes,
		&s.PriceCents,
		&s.DepositCents,
		&s.Active,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	return &s, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.TechnicianID,
		&a.ClientID,
		&a.ServiceID,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

// Interface methods

func (r *PgRepository) GetTechnicianByID(ctx context.Context, id uuid.UUID) (*Technician, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialty, active, created_at, updated_at
		FROM technicians
		WHERE id = $1
	`, id)
	return scanTechnician(row)
}

func (r *PgRepository) ListTechniciansByIDs(ctx context.Context, ids []uuid.UUID) ([]Technician, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, specialty, active, created_at, updated_at
		FROM technicians
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Technician
	for rows.Next() {
		t, err := scanTechnician(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetClientByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM clients
		WHERE id = $1
	`, id)
	return scanClient(row)
}

func (r *PgRepository) GetServiceByID(ctx context.Context, id uuid.UUID) (*ServiceOffering, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, duration_minutes, price_cents, deposit_cents, active, created_at, updated_at
		FROM services
		WHERE id = $1
	`, id)
	return scanServiceOffering(row)
}

func (r *PgRepository) FindWorkingHours(ctx context.Context, technicianID *uuid.UUID, dayOfWeek int) ([]WorkingHours, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, technician_id, day_of_week, start_time, end_time, is_working
		FROM working_hours
		WHERE day_of_week = $1
		  AND ($2::uuid IS NULL OR technician_id = $2)
		ORDER BY technician_id
	`, dayOfWeek, technicianID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []WorkingHours
	for rows.Next() {
		var wh WorkingHours
		if err := rows.Scan(&wh.ID, &wh.TechnicianID, &wh.DayOfWeek, &wh.StartTime, &wh.EndTime, &wh.IsWorking); err != nil {
			return nil, err
		}
		result = append(result, wh)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) FindAppointments(ctx context.Context, technicianIDs []uuid.UUID, from, to time.Time, statuses []AppointmentStatus) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, technician_id, client_id, service_id, start_time, end_time, status, created_at, updated_at
		FROM appointments
		WHERE technician_id = ANY($1)
		  AND start_time < $3
		  AND end_time > $2
		  AND status = ANY($4)
		ORDER BY start_time
	`, technicianIDs, from, to, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, technician_id, client_id, service_id, start_time, end_time, status, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListAppointmentsByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, technician_id, client_id, service_id, start_time, end_time, status, created_at, updated_at
		FROM appointments
		WHERE client_id = $1
		ORDER BY start_time DESC
		LIMIT $2 OFFSET $3
	`, clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CreateAppointment(ctx context.Context, technicianID, clientID, serviceID uuid.UUID, start, end time.Time) (*Appointment, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, technician_id, client_id, service_id, start_time, end_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'booked', now(), now())
		RETURNING id, technician_id, client_id, service_id, start_time, end_time, status, created_at, updated_at
	`, id, technicianID, clientID, serviceID, start, end)

	return scanAppointment(row)
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING id, technician_id, client_id, service_id, start_time, end_time, status, created_at, updated_at
	`, id, to, from)

	return scanAppointment(row)
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	var apptID *uuid.UUID
	if ev.AppointmentID != nil {
		apptID = ev.AppointmentID
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, apptID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
