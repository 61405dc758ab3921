package staff

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/platform/auth"
)

// CreateInput carries the fields accepted when registering an account.
// The plaintext password never reaches the repository.
type CreateInput struct {
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	FullName      string  `json:"full_name"`
	LicenseNumber *string `json:"license_number,omitempty"`
	Role          string  `json:"role"`
	Password      string  `json:"password"`
}

type Service struct {
	repo       Repository
	bcryptCost int
}

func NewService(repo Repository, bcryptCost int) *Service {
	return &Service{repo: repo, bcryptCost: bcryptCost}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Staff, error) {
	if in.Username == "" || in.Email == "" || in.FullName == "" {
		return nil, fmt.Errorf("username, email and full_name are required")
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	role, err := auth.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	acct := &Staff{
		Username:      in.Username,
		Email:         in.Email,
		FullName:      in.FullName,
		LicenseNumber: in.LicenseNumber,
		PasswordHash:  hash,
		Role:          role,
		Active:        true,
	}
	if err := s.repo.Create(ctx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*Staff, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *Service) Update(ctx context.Context, acct *Staff) error {
	if acct.Email == "" || acct.FullName == "" {
		return fmt.Errorf("email and full_name are required")
	}
	if !acct.Role.Valid() {
		return fmt.Errorf("unknown role %q", acct.Role)
	}
	return s.repo.Update(ctx, acct)
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActive(ctx, id, false)
}

func (s *Service) Activate(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActive(ctx, id, true)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Staff, int, error) {
	return s.repo.List(ctx, limit, offset)
}
