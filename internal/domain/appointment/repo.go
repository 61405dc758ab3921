package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// ListFilter narrows appointment listings. Zero values are ignored.
type ListFilter struct {
	PatientID   uuid.UUID
	ClinicianID uuid.UUID
	Day         *time.Time // matches appointments starting on this calendar day (UTC)
}

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Appointment, int, error)
}
