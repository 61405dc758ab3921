package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.ClinicianID == uuid.Nil {
		return fmt.Errorf("clinician_id is required")
	}
	if a.StartsAt.IsZero() || a.EndsAt.IsZero() {
		return fmt.Errorf("starts_at and ends_at are required")
	}
	if !a.EndsAt.After(a.StartsAt) {
		return fmt.Errorf("ends_at must be after starts_at")
	}
	a.Status = StatusScheduled
	return s.repo.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// UpdateStatus applies a lifecycle transition. Terminal states reject
// every further transition.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, next Status) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, next)
	}
	a.Status = next
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Reschedule moves the time window of a non-terminal appointment.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, a *Appointment) (*Appointment, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == StatusCancelled || current.Status == StatusCompleted {
		return nil, fmt.Errorf("%w: appointment is %s", ErrInvalidTransition, current.Status)
	}
	if a.StartsAt.IsZero() || a.EndsAt.IsZero() {
		return nil, fmt.Errorf("starts_at and ends_at are required")
	}
	if !a.EndsAt.After(a.StartsAt) {
		return nil, fmt.Errorf("ends_at must be after starts_at")
	}
	current.StartsAt = a.StartsAt
	current.EndsAt = a.EndsAt
	current.Reason = a.Reason
	current.Notes = a.Notes
	if err := s.repo.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
