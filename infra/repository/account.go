package repository

import (
	"context"
	"errors"
	"time"

	"github.com/amirasaad/accounts/pkg/domain"
	"github.com/amirasaad/accounts/pkg/domain/account"
	"github.com/amirasaad/accounts/pkg/repository"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a gorm backed AccountRepository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// Get loads the account with the given number.
func (r *accountRepository) Get(ctx context.Context, number string) (*account.Account, error) {
	var m Account
	err := WrapError(func() error {
		return r.db.WithContext(ctx).Where("number = ?", number).First(&m).Error
	})
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, domain.NotFound(number)
	}
	if err != nil {
		return nil, err
	}
	return mapAccountToDomain(&m), nil
}

// Create inserts a new account. A taken number yields domain.ErrAlreadyExists.
func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	m := mapAccountFromDomain(a)
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Create(m).Error
	}); err != nil {
		return err
	}
	a.CreatedAt = m.CreatedAt
	a.UpdatedAt = m.UpdatedAt
	return nil
}

// Update writes the balance and closed flag of an existing account.
func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("number = ?", a.Number).
		Updates(map[string]any{
			"balance":    a.Balance,
			"closed":     a.Closed,
			"updated_at": now,
		})
	if err := MapGormErrorToDomain(res.Error); err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return domain.NotFound(a.Number)
	}
	a.UpdatedAt = now
	return nil
}
