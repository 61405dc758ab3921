package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	appts map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.appts[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *a
	return &out, nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.appts[a.ID]; !ok {
		return ErrNotFound
	}
	m.appts[a.ID] = a
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.appts[id]; !ok {
		return ErrNotFound
	}
	delete(m.appts, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, filter ListFilter, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appts {
		if filter.PatientID != uuid.Nil && a.PatientID != filter.PatientID {
			continue
		}
		if filter.ClinicianID != uuid.Nil && a.ClinicianID != filter.ClinicianID {
			continue
		}
		if filter.Day != nil {
			day := filter.Day.UTC().Truncate(24 * time.Hour)
			if a.StartsAt.Before(day) || !a.StartsAt.Before(day.Add(24*time.Hour)) {
				continue
			}
		}
		out := *a
		result = append(result, &out)
	}
	return result, len(result), nil
}

func validAppointment() *Appointment {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return &Appointment{
		PatientID:   uuid.New(),
		ClinicianID: uuid.New(),
		StartsAt:    start,
		EndsAt:      start.Add(30 * time.Minute),
	}
}

func TestCreateAppointment(t *testing.T) {
	svc := NewService(newMockRepo())

	a := validAppointment()
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("expected scheduled, got %s", a.Status)
	}
	if a.ID == uuid.Nil {
		t.Error("expected ID to be assigned")
	}
}

func TestCreateAppointment_EndBeforeStart(t *testing.T) {
	svc := NewService(newMockRepo())

	a := validAppointment()
	a.EndsAt = a.StartsAt.Add(-time.Minute)
	if err := svc.Create(context.Background(), a); err == nil {
		t.Fatal("expected error when end precedes start")
	}

	a = validAppointment()
	a.EndsAt = a.StartsAt
	if err := svc.Create(context.Background(), a); err == nil {
		t.Fatal("expected error for zero-length window")
	}
}

func TestCreateAppointment_MissingParties(t *testing.T) {
	svc := NewService(newMockRepo())

	a := validAppointment()
	a.PatientID = uuid.Nil
	if err := svc.Create(context.Background(), a); err == nil {
		t.Error("expected error for missing patient")
	}

	a = validAppointment()
	a.ClinicianID = uuid.Nil
	if err := svc.Create(context.Background(), a); err == nil {
		t.Error("expected error for missing clinician")
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusScheduled, StatusConfirmed, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusCompleted, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusScheduled, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusScheduled, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			repo := newMockRepo()
			svc := NewService(repo)

			a := validAppointment()
			if err := svc.Create(context.Background(), a); err != nil {
				t.Fatalf("create: %v", err)
			}
			a.Status = tc.from
			if err := repo.Update(context.Background(), a); err != nil {
				t.Fatalf("seed status: %v", err)
			}

			updated, err := svc.UpdateStatus(context.Background(), a.ID, tc.to)
			if tc.allowed {
				if err != nil {
					t.Fatalf("expected transition to succeed: %v", err)
				}
				if updated.Status != tc.to {
					t.Errorf("expected %s, got %s", tc.to, updated.Status)
				}
			} else {
				if err == nil {
					t.Fatal("expected transition to be rejected")
				}
			}
		})
	}
}

func TestReschedule_TerminalRejected(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	a := validAppointment()
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), a.ID, StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	moved := validAppointment()
	if _, err := svc.Reschedule(context.Background(), a.ID, moved); err == nil {
		t.Fatal("expected reschedule of cancelled appointment to fail")
	}
}

func TestListAppointments_Filters(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	patientA := uuid.New()
	clinician := uuid.New()
	day1 := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)

	for _, a := range []*Appointment{
		{PatientID: patientA, ClinicianID: clinician, StartsAt: day1, EndsAt: day1.Add(time.Hour)},
		{PatientID: patientA, ClinicianID: uuid.New(), StartsAt: day2, EndsAt: day2.Add(time.Hour)},
		{PatientID: uuid.New(), ClinicianID: clinician, StartsAt: day1.Add(2 * time.Hour), EndsAt: day1.Add(3 * time.Hour)},
	} {
		if err := svc.Create(context.Background(), a); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	_, total, err := svc.List(context.Background(), ListFilter{PatientID: patientA}, 20, 0)
	if err != nil {
		t.Fatalf("list by patient: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 for patient, got %d", total)
	}

	_, total, err = svc.List(context.Background(), ListFilter{ClinicianID: clinician}, 20, 0)
	if err != nil {
		t.Fatalf("list by clinician: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 for clinician, got %d", total)
	}

	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, total, err = svc.List(context.Background(), ListFilter{Day: &day}, 20, 0)
	if err != nil {
		t.Fatalf("list by day: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 on day, got %d", total)
	}
}
