package staff

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/platform/auth"
)

// Staff maps to the staff_account table.
type Staff struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Username      string     `db:"username" json:"username"`
	Email         string     `db:"email" json:"email"`
	FullName      string     `db:"full_name" json:"full_name"`
	LicenseNumber *string    `db:"license_number" json:"license_number,omitempty"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	Role          auth.Role  `db:"role" json:"role"`
	Active        bool       `db:"active" json:"active"`
	LastLoginAt   *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Summary is the subset of account fields returned by the login endpoint.
type Summary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
	Role     auth.Role `json:"role"`
}

func (s *Staff) Summary() Summary {
	return Summary{ID: s.ID, Username: s.Username, FullName: s.FullName, Role: s.Role}
}
