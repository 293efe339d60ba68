package repository

import (
	"context"
	"reflect"
)

// UnitOfWork defines the contract for transactional work and repository access.
//
// Repositories obtained from the UnitOfWork passed into Do share the
// transaction; repositories obtained outside Do run each call on its own.
type UnitOfWork interface {
	// Do executes fn within one transaction. Returning an error rolls it back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// GetRepository returns a repository of the requested interface type bound
	// to the current session.
	GetRepository(repoType reflect.Type) (any, error)

	// AccountRepository is the typed form of GetRepository.
	AccountRepository() (AccountRepository, error)
}

// AccountRepositoryType is the reflect.Type key for AccountRepository.
var AccountRepositoryType = reflect.TypeOf((*AccountRepository)(nil)).Elem()
