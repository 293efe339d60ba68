package repository

import (
	"context"

	"github.com/amirasaad/accounts/pkg/domain/account"
)

// AccountRepository fetches and saves account records.
//
// Get returns domain.ErrAccountNotFound (wrapped with the number) when no
// record exists. Create returns domain.ErrAlreadyExists when the number is
// taken. Update persists balance and closed flag of an existing record.
type AccountRepository interface {
	Get(ctx context.Context, number string) (*account.Account, error)
	Create(ctx context.Context, a *account.Account) error
	Update(ctx context.Context, a *account.Account) error
}
