package staff

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("staff account not found")
	ErrDuplicateUsername = errors.New("username already registered")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateLicense  = errors.New("license number already registered")
)

type Repository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	GetByUsername(ctx context.Context, username string) (*Staff, error)
	Update(ctx context.Context, s *Staff) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, limit, offset int) ([]*Staff, int, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
