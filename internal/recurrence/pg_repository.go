package recurrence

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

func scanTemplate(row pgx.Row) (*Template, error) {
	var t Template
	var dayOfWeek, dayOfMonth *int
	var endDate *time.Time

	err := row.Scan(
		&t.ID,
		&t.ClientID,
		&t.TechnicianID,
		&t.ServiceID,
		&t.Frequency,
		&dayOfWeek,
		&dayOfMonth,
		&t.PreferredTime,
		&t.StartDate,
		&endDate,
		&t.NextOccurrence,
		&t.Active,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	t.DayOfWeek = dayOfWeek
	t.DayOfMonth = dayOfMonth
	t.EndDate = endDate
	return &t, nil
}

const templateColumns = `id, client_id, technician_id, service_id, frequency, day_of_week, day_of_month,
		preferred_time, start_date, end_date, next_occurrence, active, created_at, updated_at`

func (r *PgRepository) CreateTemplate(ctx context.Context, t Template) (*Template, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO recurrence_templates
			(id, client_id, technician_id, service_id, frequency, day_of_week, day_of_month,
			 preferred_time, start_date, end_date, next_occurrence, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, true, now(), now())
		RETURNING `+templateColumns+`
	`, id, t.ClientID, t.TechnicianID, t.ServiceID, t.Frequency, t.DayOfWeek, t.DayOfMonth,
		t.PreferredTime, t.StartDate, t.EndDate, t.NextOccurrence)

	return scanTemplate(row)
}

func (r *PgRepository) GetTemplateByID(ctx context.Context, id uuid.UUID) (*Template, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+templateColumns+`
		FROM recurrence_templates
		WHERE id = $1
	`, id)
	return scanTemplate(row)
}

func (r *PgRepository) ListTemplates(ctx context.Context, activeOnly bool) ([]Template, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+templateColumns+`
		FROM recurrence_templates
		WHERE ($1 = false OR active = true)
		ORDER BY created_at
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Template
	for rows.Next() {
		t, err := scanTemplate(rows)
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

func (r *PgRepository) DeactivateTemplate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE recurrence_templates
		SET active = false,
		    updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("deactivate template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (r *PgRepository) UpdateTemplateCursor(ctx context.Context, id uuid.UUID, next time.Time) error {
	// The cursor is monotonic: a stale writer can never move it backwards.
	// Zero rows affected means the template is gone or another run already
	// advanced past this point; both are fine.
	_, err := r.pool.Exec(ctx, `
		UPDATE recurrence_templates
		SET next_occurrence = $2,
		    updated_at = now()
		WHERE id = $1
		  AND next_occurrence < $2
	`, id, next)
	if err != nil {
		return fmt.Errorf("update template cursor: %w", err)
	}
	return nil
}

func (r *PgRepository) GetServiceDuration(ctx context.Context, serviceID uuid.UUID) (int, error) {
	var minutes int
	err := r.pool.QueryRow(ctx, `
		SELECT duration_minutes
		FROM services
		WHERE id = $1
	`, serviceID).Scan(&minutes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrServiceNotFound
		}
		return 0, err
	}
	return minutes, nil
}

func (r *PgRepository) HasAppointmentOnDay(ctx context.Context, clientID, technicianID, serviceID uuid.UUID, dayStart, dayEnd time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM appointments
			WHERE client_id = $1
			  AND technician_id = $2
			  AND service_id = $3
			  AND start_time >= $4
			  AND start_time < $5
			  AND status IN ('booked', 'confirmed')
		)
	`, clientID, technicianID, serviceID, dayStart, dayEnd).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PgRepository) CreateAppointment(ctx context.Context, technicianID, clientID, serviceID uuid.UUID, start, end time.Time) (uuid.UUID, error) {
	id := uuid.New()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, technician_id, client_id, service_id, start_time, end_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'booked', now(), now())
	`, id, technicianID, clientID, serviceID, start, end)
	if err != nil {
		return uuid.Nil, err
	}

	return id, nil
}
