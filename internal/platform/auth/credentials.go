package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is the single outward signal for unknown user,
// inactive account and wrong password. The three causes are deliberately not
// distinguished so a caller cannot enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Account is the read-only view of a credential record that the verifier
// needs. The password hash never leaves this subsystem.
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	Active       bool
}

// AccountStore is implemented by the staff repository. FindByUsername returns
// any error for a missing account; the verifier collapses it.
type AccountStore interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	TouchLastLogin(ctx context.Context, accountID string, at time.Time) error
}

// HashPassword hashes a plaintext secret with bcrypt at the given cost.
// Cost 0 (or anything below bcrypt's minimum) falls back to the default cost.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verifier checks username/password pairs against stored credentials.
type Verifier struct {
	store  AccountStore
	logger zerolog.Logger
	now    func() time.Time
}

func NewVerifier(store AccountStore, logger zerolog.Logger) *Verifier {
	return &Verifier{store: store, logger: logger, now: time.Now}
}

// Verify returns the matching account iff the username exists, the account is
// active and the password matches the stored bcrypt hash. Every failure mode
// yields ErrInvalidCredentials. On success the last-login timestamp is updated
// in the background; that write never blocks or fails the decision.
func (v *Verifier) Verify(ctx context.Context, username, password string) (*Account, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	acct, err := v.store.FindByUsername(ctx, username)
	if err != nil || acct == nil {
		return nil, ErrInvalidCredentials
	}
	if !acct.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	go func(id string, at time.Time) {
		touchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := v.store.TouchLastLogin(touchCtx, id, at); err != nil {
			v.logger.Warn().Err(err).Str("account_id", id).Msg("last-login update failed")
		}
	}(acct.ID, v.now())

	return acct, nil
}
