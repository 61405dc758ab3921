package staff

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/platform/auth"
)

// AccountStoreAdapter presents the staff repository as an auth.AccountStore
// so the credential verifier stays decoupled from this package's model.
type AccountStoreAdapter struct {
	Repo Repository
}

func (a AccountStoreAdapter) FindByUsername(ctx context.Context, username string) (*auth.Account, error) {
	member, err := a.Repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &auth.Account{
		ID:           member.ID.String(),
		Username:     member.Username,
		PasswordHash: member.PasswordHash,
		Role:         member.Role,
		Active:       member.Active,
	}, nil
}

func (a AccountStoreAdapter) TouchLastLogin(ctx context.Context, accountID string, at time.Time) error {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return err
	}
	return a.Repo.TouchLastLogin(ctx, id, at)
}
