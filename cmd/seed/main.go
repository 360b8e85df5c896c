package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shearbook/salon-scheduling/internal/db"
	"github.com/shearbook/salon-scheduling/internal/recurrence"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	techIDs, err := seedTechnicians(context.Background(), pool, 12)
	if err != nil {
		log.Fatalf("seed technicians: %v", err)
	}
	if err := seedWorkingHours(context.Background(), pool, techIDs); err != nil {
		log.Fatalf("seed working hours: %v", err)
	}
	svcIDs, err := seedServices(context.Background(), pool)
	if err != nil {
		log.Fatalf("seed services: %v", err)
	}
	clientIDs, err := seedClients(context.Background(), pool, 2000)
	if err != nil {
		log.Fatalf("seed clients: %v", err)
	}
	if err := seedTemplates(context.Background(), pool, clientIDs, techIDs, svcIDs, 40); err != nil {
		log.Fatalf("seed recurrence templates: %v", err)
	}

	log.Println("seed complete")
}

func seedTechnicians(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d technicians", count)

	specialties := []string{
		"Hair Stylist",
		"Colorist",
		"Nail Technician",
		"Esthetician",
		"Barber",
		"Massage Therapist",
		"Lash Technician",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		specialty := specialties[gofakeit.Number(0, len(specialties)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO technicians (id, name, specialty, active, created_at, updated_at)
			VALUES ($1, $2, $3, true, now(), now())
		`, id, name, specialty)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("technicians seeded")
	return ids, nil
}

func seedWorkingHours(ctx context.Context, pool *pgxpool.Pool, techIDs []uuid.UUID) error {
	log.Printf("seeding working hours for %d technicians", len(techIDs))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, techID := range techIDs {
		// Closed Sunday, shorter Saturday, one weekday off.
		dayOff := gofakeit.Number(1, 5)
		for dow := 0; dow <= 6; dow++ {
			start, end := "09:00", "17:00"
			working := true
			switch {
			case dow == 0 || dow == dayOff:
				working = false
			case dow == 6:
				start, end = "10:00", "15:00"
			}

			_, err := tx.Exec(ctx, `
				INSERT INTO working_hours (id, technician_id, day_of_week, start_time, end_time, is_working)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, uuid.New(), techID, dow, start, end, working)
			if err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("working hours seeded")
	return nil
}

func seedServices(ctx context.Context, pool *pgxpool.Pool) ([]uuid.UUID, error) {
	services := []struct {
		name     string
		minutes  int
		cents    int64
		deposit  int64
	}{
		{"Haircut", 30, 4500, 0},
		{"Haircut & Style", 60, 7500, 0},
		{"Full Color", 120, 16000, 5000},
		{"Highlights", 90, 14000, 5000},
		{"Manicure", 30, 3500, 0},
		{"Pedicure", 45, 5000, 0},
		{"Facial", 60, 9000, 2500},
		{"Lash Extensions", 90, 12000, 4000},
	}

	log.Printf("seeding %d services", len(services))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, len(services))
	for _, s := range services {
		id := uuid.New()
		_, err := tx.Exec(ctx, `
			INSERT INTO services (id, name, duration_minutes, price_cents, deposit_cents, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, true, now(), now())
		`, id, s.name, s.minutes, s.cents, s.deposit)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("services seeded")
	return ids, nil
}

func seedClients(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d clients", count)

	const batchSize = 500

	ids := make([]uuid.UUID, 0, count)
	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return nil, err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			name := gofakeit.Name()
			email := gofakeit.Email()
			phone := gofakeit.Phone()

			_, err := tx.Exec(ctx, `
				INSERT INTO clients (id, name, email, phone, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())
			`, id, name, email, phone)
			if err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}
			ids = append(ids, id)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}

		log.Printf("clients seeded: %d/%d", end, count)
	}

	log.Println("clients seeded")
	return ids, nil
}

func seedTemplates(ctx context.Context, pool *pgxpool.Pool, clientIDs, techIDs, svcIDs []uuid.UUID, count int) error {
	log.Printf("seeding %d recurrence templates", count)

	frequencies := []recurrence.Frequency{
		recurrence.FrequencyWeekly,
		recurrence.FrequencyBiweekly,
		recurrence.FrequencyMonthly,
	}
	times := []string{"09:00", "10:30", "13:00", "14:00", "15:30"}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		tmpl := recurrence.Template{
			ClientID:      clientIDs[gofakeit.Number(0, len(clientIDs)-1)],
			TechnicianID:  techIDs[gofakeit.Number(0, len(techIDs)-1)],
			ServiceID:     svcIDs[gofakeit.Number(0, len(svcIDs)-1)],
			Frequency:     frequencies[gofakeit.Number(0, len(frequencies)-1)],
			PreferredTime: times[gofakeit.Number(0, len(times)-1)],
			StartDate:     time.Now().AddDate(0, 0, gofakeit.Number(0, 6)),
		}

		if tmpl.Frequency == recurrence.FrequencyMonthly {
			dom := gofakeit.Number(1, 28)
			tmpl.DayOfMonth = &dom
		} else {
			dow := gofakeit.Number(1, 6)
			tmpl.DayOfWeek = &dow
		}

		first, err := recurrence.FirstOccurrence(tmpl, time.Local)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO recurrence_templates
				(id, client_id, technician_id, service_id, frequency, day_of_week, day_of_month,
				 preferred_time, start_date, end_date, next_occurrence, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULL, $10, true, now(), now())
		`, uuid.New(), tmpl.ClientID, tmpl.TechnicianID, tmpl.ServiceID, tmpl.Frequency,
			tmpl.DayOfWeek, tmpl.DayOfMonth, tmpl.PreferredTime, tmpl.StartDate, first)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("recurrence templates seeded")
	return nil
}
