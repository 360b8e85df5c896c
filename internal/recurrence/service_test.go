package recurrence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeAppt struct {
	clientID     uuid.UUID
	technicianID uuid.UUID
	serviceID    uuid.UUID
	start        time.Time
	end          time.Time
}

type fakeRecRepo struct {
	templates     map[uuid.UUID]*Template
	durations     map[uuid.UUID]int
	appointments  []fakeAppt
	cursorUpdates map[uuid.UUID]time.Time

	createApptErr error
}

func newFakeRecRepo() *fakeRecRepo {
	return &fakeRecRepo{
		templates:     make(map[uuid.UUID]*Template),
		durations:     make(map[uuid.UUID]int),
		cursorUpdates: make(map[uuid.UUID]time.Time),
	}
}

func (f *fakeRecRepo) CreateTemplate(_ context.Context, t Template) (*Template, error) {
	t.ID = uuid.New()
	f.templates[t.ID] = &t
	cp := t
	return &cp, nil
}

func (f *fakeRecRepo) GetTemplateByID(_ context.Context, id uuid.UUID) (*Template, error) {
	t, ok := f.templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeRecRepo) ListTemplates(_ context.Context, activeOnly bool) ([]Template, error) {
	var out []Template
	for _, t := range f.templates {
		if activeOnly && !t.Active {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeRecRepo) DeactivateTemplate(_ context.Context, id uuid.UUID) error {
	t, ok := f.templates[id]
	if !ok {
		return ErrTemplateNotFound
	}
	t.Active = false
	return nil
}

func (f *fakeRecRepo) UpdateTemplateCursor(_ context.Context, id uuid.UUID, next time.Time) error {
	t, ok := f.templates[id]
	if !ok {
		return ErrTemplateNotFound
	}
	if next.After(t.NextOccurrence) {
		t.NextOccurrence = next
	}
	f.cursorUpdates[id] = next
	return nil
}

func (f *fakeRecRepo) GetServiceDuration(_ context.Context, serviceID uuid.UUID) (int, error) {
	d, ok := f.durations[serviceID]
	if !ok {
		return 0, ErrServiceNotFound
	}
	return d, nil
}

func (f *fakeRecRepo) HasAppointmentOnDay(_ context.Context, clientID, technicianID, serviceID uuid.UUID, dayStart, dayEnd time.Time) (bool, error) {
	for _, a := range f.appointments {
		if a.clientID != clientID || a.technicianID != technicianID || a.serviceID != serviceID {
			continue
		}
		if !a.start.Before(dayStart) && a.start.Before(dayEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRecRepo) CreateAppointment(_ context.Context, technicianID, clientID, serviceID uuid.UUID, start, end time.Time) (uuid.UUID, error) {
	if f.createApptErr != nil {
		return uuid.Nil, f.createApptErr
	}
	f.appointments = append(f.appointments, fakeAppt{
		clientID:     clientID,
		technicianID: technicianID,
		serviceID:    serviceID,
		start:        start,
		end:          end,
	})
	return uuid.New(), nil
}

// newWeeklyTemplate seeds a weekly Wednesday 14:00 template starting
// Monday 2024-01-01 with its cursor on the first Wednesday.
func newWeeklyTemplate(repo *fakeRecRepo) *Template {
	wed := 3
	serviceID := uuid.New()
	repo.durations[serviceID] = 60

	tmpl := &Template{
		ID:             uuid.New(),
		ClientID:       uuid.New(),
		TechnicianID:   uuid.New(),
		ServiceID:      serviceID,
		Frequency:      FrequencyWeekly,
		DayOfWeek:      &wed,
		PreferredTime:  "14:00",
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		NextOccurrence: time.Date(2024, 1, 3, 14, 0, 0, 0, time.UTC),
		Active:         true,
	}
	repo.templates[tmpl.ID] = tmpl
	return tmpl
}

func newTestService(repo *fakeRecRepo) *Service {
	svc := NewService(repo, time.UTC)
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestGenerateWeekly(t *testing.T) {
	repo := newFakeRecRepo()
	tmpl := newWeeklyTemplate(repo)
	svc := newTestService(repo)

	result, err := svc.Generate(context.Background(), 21)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Horizon is Jan 22: occurrences on Jan 3, 10 and 17.
	if result.Generated != 3 {
		t.Fatalf("generated = %d, want 3", result.Generated)
	}
	wantStarts := []time.Time{
		time.Date(2024, 1, 3, 14, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 14, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 17, 14, 0, 0, 0, time.UTC),
	}
	for i, want := range wantStarts {
		if !repo.appointments[i].start.Equal(want) {
			t.Fatalf("appointment %d start = %v, want %v", i, repo.appointments[i].start, want)
		}
		if !repo.appointments[i].end.Equal(want.Add(time.Hour)) {
			t.Fatalf("appointment %d end = %v, want %v", i, repo.appointments[i].end, want.Add(time.Hour))
		}
	}

	// Cursor advances to the first occurrence past the horizon.
	wantCursor := time.Date(2024, 1, 24, 14, 0, 0, 0, time.UTC)
	if got := repo.templates[tmpl.ID].NextOccurrence; !got.Equal(wantCursor) {
		t.Fatalf("cursor = %v, want %v", got, wantCursor)
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	repo := newFakeRecRepo()
	tmpl := newWeeklyTemplate(repo)
	svc := newTestService(repo)

	if _, err := svc.Generate(context.Background(), 21); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	cursorAfterFirst := repo.templates[tmpl.ID].NextOccurrence

	result, err := svc.Generate(context.Background(), 21)
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if result.Generated != 0 {
		t.Fatalf("second run generated = %d, want 0", result.Generated)
	}
	if len(repo.appointments) != 3 {
		t.Fatalf("appointments = %d, want 3", len(repo.appointments))
	}
	if got := repo.templates[tmpl.ID].NextOccurrence; !got.Equal(cursorAfterFirst) {
		t.Fatalf("cursor moved on redundant run: %v -> %v", cursorAfterFirst, got)
	}
}

func TestGenerateSkipsExistingDays(t *testing.T) {
	repo := newFakeRecRepo()
	tmpl := newWeeklyTemplate(repo)
	svc := newTestService(repo)

	// The Jan 10 occurrence was already booked by hand, at a different time.
	repo.appointments = append(repo.appointments, fakeAppt{
		clientID:     tmpl.ClientID,
		technicianID: tmpl.TechnicianID,
		serviceID:    tmpl.ServiceID,
		start:        time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		end:          time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC),
	})

	result, err := svc.Generate(context.Background(), 21)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Generated != 2 {
		t.Fatalf("generated = %d, want 2", result.Generated)
	}
	for _, a := range result.Appointments {
		if a.StartTime.Day() == 10 {
			t.Fatalf("duplicate occurrence generated on Jan 10")
		}
	}
}

func TestGenerateRespectsEndDate(t *testing.T) {
	repo := newFakeRecRepo()
	tmpl := newWeeklyTemplate(repo)
	end := time.Date(2024, 1, 10, 23, 59, 59, 0, time.UTC)
	tmpl.EndDate = &end
	svc := newTestService(repo)

	result, err := svc.Generate(context.Background(), 21)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Generated != 2 {
		t.Fatalf("generated = %d, want 2 (Jan 3 and Jan 10)", result.Generated)
	}
}

func TestGenerateIsolatesTemplateFailures(t *testing.T) {
	repo := newFakeRecRepo()
	healthy := newWeeklyTemplate(repo)

	// Second template references a service the repo does not know, so its
	// generation fails up front.
	broken := newWeeklyTemplate(repo)
	broken.ServiceID = uuid.New()

	svc := newTestService(repo)

	result, err := svc.Generate(context.Background(), 21)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Generated != 3 {
		t.Fatalf("generated = %d, want 3 from the healthy template", result.Generated)
	}
	for _, a := range result.Appointments {
		if a.ClientID != healthy.ClientID {
			t.Fatalf("appointment generated for broken template")
		}
	}
}

func TestGenerateSkipsMalformedTemplate(t *testing.T) {
	repo := newFakeRecRepo()
	tmpl := newWeeklyTemplate(repo)
	tmpl.DayOfWeek = nil // anchor lost, e.g. bad manual edit

	svc := newTestService(repo)

	result, err := svc.Generate(context.Background(), 21)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Generated != 0 {
		t.Fatalf("generated = %d, want 0", result.Generated)
	}
}

func TestGenerateInactiveTemplatesIgnored(t *testing.T) {
	repo := newFakeRecRepo()
	tmpl := newWeeklyTemplate(repo)
	tmpl.Active = false

	svc := newTestService(repo)

	result, err := svc.Generate(context.Background(), 21)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Generated != 0 {
		t.Fatalf("generated = %d, want 0", result.Generated)
	}
}

func TestGenerateMonthlyClampAndRepin(t *testing.T) {
	repo := newFakeRecRepo()
	dom := 31
	serviceID := uuid.New()
	repo.durations[serviceID] = 30

	tmpl := &Template{
		ID:             uuid.New(),
		ClientID:       uuid.New(),
		TechnicianID:   uuid.New(),
		ServiceID:      serviceID,
		Frequency:      FrequencyMonthly,
		DayOfMonth:     &dom,
		PreferredTime:  "10:00",
		StartDate:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		NextOccurrence: time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC),
		Active:         true,
	}
	repo.templates[tmpl.ID] = tmpl

	svc := NewService(repo, time.UTC)
	svc.now = func() time.Time { return time.Date(2024, 3, 25, 8, 0, 0, 0, time.UTC) }

	result, err := svc.Generate(context.Background(), 70)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Horizon is Jun 3: Mar 31, the clamped Apr 30, and May 31.
	wantStarts := []time.Time{
		time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 30, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 31, 10, 0, 0, 0, time.UTC),
	}
	if result.Generated != len(wantStarts) {
		t.Fatalf("generated = %d, want %d", result.Generated, len(wantStarts))
	}
	for i, want := range wantStarts {
		if !repo.appointments[i].start.Equal(want) {
			t.Fatalf("appointment %d start = %v, want %v", i, repo.appointments[i].start, want)
		}
	}
}

func TestGenerateHorizonBounds(t *testing.T) {
	repo := newFakeRecRepo()
	newWeeklyTemplate(repo)
	svc := newTestService(repo)

	// Non-positive horizon falls back to the default.
	result, err := svc.Generate(context.Background(), 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// Default 30 days from Jan 1 08:00 ends before the Jan 31 14:00
	// occurrence: Wednesdays Jan 3, 10, 17 and 24.
	if result.Generated != 4 {
		t.Fatalf("generated = %d, want 4", result.Generated)
	}
}

func TestCreateTemplate(t *testing.T) {
	repo := newFakeRecRepo()
	svc := newTestService(repo)

	wed := 3
	serviceID := uuid.New()
	repo.durations[serviceID] = 60

	created, err := svc.CreateTemplate(context.Background(), Template{
		ClientID:      uuid.New(),
		TechnicianID:  uuid.New(),
		ServiceID:     serviceID,
		Frequency:     FrequencyWeekly,
		DayOfWeek:     &wed,
		PreferredTime: "14:00",
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	if !created.Active {
		t.Fatalf("created template not active")
	}
	if want := time.Date(2024, 1, 3, 14, 0, 0, 0, time.UTC); !created.NextOccurrence.Equal(want) {
		t.Fatalf("cursor = %v, want %v", created.NextOccurrence, want)
	}
}

func TestCreateTemplateUnknownService(t *testing.T) {
	repo := newFakeRecRepo()
	svc := newTestService(repo)

	wed := 3
	_, err := svc.CreateTemplate(context.Background(), Template{
		ClientID:      uuid.New(),
		TechnicianID:  uuid.New(),
		ServiceID:     uuid.New(),
		Frequency:     FrequencyWeekly,
		DayOfWeek:     &wed,
		PreferredTime: "14:00",
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("got %v, want ErrServiceNotFound", err)
	}
}

func TestCreateTemplateInvalid(t *testing.T) {
	repo := newFakeRecRepo()
	svc := newTestService(repo)

	_, err := svc.CreateTemplate(context.Background(), Template{
		ClientID:      uuid.New(),
		TechnicianID:  uuid.New(),
		ServiceID:     uuid.New(),
		Frequency:     FrequencyWeekly, // missing day_of_week
		PreferredTime: "14:00",
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("got %v, want ErrInvalidTemplate", err)
	}
}
