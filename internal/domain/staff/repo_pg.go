package staff

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const staffCols = `id, username, email, full_name, license_number, password_hash, role, active,
	last_login_at, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, s *Staff) error {
	s.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff_account (id, username, email, full_name, license_number, password_hash, role, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		s.ID, s.Username, s.Email, s.FullName, s.LicenseNumber, s.PasswordHash, s.Role, s.Active,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return scanStaff(r.pool.QueryRow(ctx, `SELECT `+staffCols+` FROM staff_account WHERE id = $1`, id))
}

func (r *repoPG) GetByUsername(ctx context.Context, username string) (*Staff, error) {
	return scanStaff(r.pool.QueryRow(ctx, `SELECT `+staffCols+` FROM staff_account WHERE username = $1`, username))
}

func (r *repoPG) Update(ctx context.Context, s *Staff) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE staff_account SET
			email=$2, full_name=$3, license_number=$4, role=$5, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Email, s.FullName, s.LicenseNumber, s.Role,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE staff_account SET active=$2, updated_at=NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Staff, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM staff_account`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+staffCols+` FROM staff_account ORDER BY username LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []*Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, s)
	}
	return accounts, total, rows.Err()
}

func (r *repoPG) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE staff_account SET last_login_at=$2 WHERE id = $1`, id, at)
	return err
}

// mapUniqueViolation translates Postgres unique violations into the
// per-field sentinel errors by constraint name.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "username"):
		return ErrDuplicateUsername
	case strings.Contains(pgErr.ConstraintName, "email"):
		return ErrDuplicateEmail
	case strings.Contains(pgErr.ConstraintName, "license"):
		return ErrDuplicateLicense
	default:
		return ErrDuplicateUsername
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStaff(row rowScanner) (*Staff, error) {
	var s Staff
	err := row.Scan(
		&s.ID, &s.Username, &s.Email, &s.FullName, &s.LicenseNumber, &s.PasswordHash, &s.Role, &s.Active,
		&s.LastLoginAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
