// Package memory provides an in-process account store used when no database
// is configured and in tests.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/amirasaad/accounts/pkg/domain"
	"github.com/amirasaad/accounts/pkg/domain/account"
	"github.com/amirasaad/accounts/pkg/repository"
)

// Store holds committed account records.
type Store struct {
	mu      sync.RWMutex
	records map[string]account.Account
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{records: make(map[string]account.Account)}
}

// Len returns the number of stored accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// UoW implements repository.UnitOfWork over a Store. Writes made inside Do are
// staged and applied together when fn returns nil.
type UoW struct {
	store *Store
	tx    *txn
}

type txn struct {
	creates map[string]account.Account
	updates map[string]account.Account
	order   []string
}

// NewUoW creates a UnitOfWork over store.
func NewUoW(store *Store) *UoW {
	return &UoW{store: store}
}

// Do runs fn against a staged transaction and commits it atomically.
// Nested calls join the outer transaction.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t := &txn{
		creates: make(map[string]account.Account),
		updates: make(map[string]account.Account),
	}
	if err := fn(&UoW{store: u.store, tx: t}); err != nil {
		return err
	}
	return u.store.commit(t)
}

// GetRepository returns the repository registered for repoType.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	if repoType != repository.AccountRepositoryType {
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
	return &accountRepository{store: u.store, tx: u.tx}, nil
}

// AccountRepository returns the account repository for the current session.
func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return &accountRepository{store: u.store, tx: u.tx}, nil
}

func (s *Store) commit(t *txn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for number := range t.creates {
		if _, ok := s.records[number]; ok {
			return domain.ErrAlreadyExists
		}
	}
	for number := range t.updates {
		if _, ok := s.records[number]; !ok {
			if _, staged := t.creates[number]; !staged {
				return domain.NotFound(number)
			}
		}
	}
	for _, number := range t.order {
		if rec, ok := t.creates[number]; ok {
			s.records[number] = rec
		}
		if rec, ok := t.updates[number]; ok {
			s.records[number] = rec
		}
	}
	return nil
}

type accountRepository struct {
	store *Store
	tx    *txn
}

func (r *accountRepository) Get(ctx context.Context, number string) (*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.tx != nil {
		if rec, ok := r.tx.updates[number]; ok {
			return &rec, nil
		}
		if rec, ok := r.tx.creates[number]; ok {
			return &rec, nil
		}
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rec, ok := r.store.records[number]
	if !ok {
		return nil, domain.NotFound(number)
	}
	return &rec, nil
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := time.Now().UTC()
	rec := *a
	rec.CreatedAt, rec.UpdatedAt = now, now

	if r.tx != nil {
		if _, ok := r.tx.creates[a.Number]; ok {
			return domain.ErrAlreadyExists
		}
		if r.exists(a.Number) {
			return domain.ErrAlreadyExists
		}
		r.tx.creates[a.Number] = rec
		r.tx.order = append(r.tx.order, a.Number)
	} else {
		r.store.mu.Lock()
		if _, ok := r.store.records[a.Number]; ok {
			r.store.mu.Unlock()
			return domain.ErrAlreadyExists
		}
		r.store.records[a.Number] = rec
		r.store.mu.Unlock()
	}
	a.CreatedAt, a.UpdatedAt = now, now
	return nil
}

func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	current, err := r.Get(ctx, a.Number)
	if err != nil {
		return err
	}
	rec := *current
	rec.Balance = a.Balance
	rec.Closed = a.Closed
	rec.UpdatedAt = time.Now().UTC()

	if r.tx != nil {
		if _, ok := r.tx.updates[a.Number]; !ok {
			r.tx.order = append(r.tx.order, a.Number)
		}
		r.tx.updates[a.Number] = rec
	} else {
		r.store.mu.Lock()
		r.store.records[a.Number] = rec
		r.store.mu.Unlock()
	}
	a.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *accountRepository) exists(number string) bool {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.records[number]
	return ok
}
