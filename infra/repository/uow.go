package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/amirasaad/accounts/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides a transaction boundary and repository access in one abstraction.
// Repositories handed out inside Do share the transaction session.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{
		db: db,
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			repository.AccountRepositoryType: func(db *gorm.DB) any { return NewAccountRepository(db) },
		},
	}
}

// Do runs fn in a transaction. Nested calls join the outer transaction.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txnUow := &UoW{db: u.db, tx: tx, repoRegistry: u.repoRegistry}
		return fn(txnUow)
	})
}

// GetRepository returns the repository registered for repoType, bound to the
// transaction when called inside Do.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	constructor, ok := u.repoRegistry[repoType]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
	return constructor(u.session()), nil
}

// AccountRepository returns the account repository for the current session.
func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	repoAny, err := u.GetRepository(repository.AccountRepositoryType)
	if err != nil {
		return nil, err
	}
	return repoAny.(repository.AccountRepository), nil
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}
