package account

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/amirasaad/accounts/pkg/domain"
	"github.com/amirasaad/accounts/pkg/domain/account"
	"github.com/amirasaad/accounts/pkg/lock"
	"github.com/amirasaad/accounts/pkg/repository"
)

// Locker acquires and releases per-key locks. *lock.Manager implements it.
type Locker interface {
	Acquire(ctx context.Context, key string, wait time.Duration) (*lock.Handle, error)
	Release(h *lock.Handle)
}

// Mutation is the work done inside a critical section. It receives the loaded
// records in ascending key order and returns the records to persist. It must
// not block on anything other than its arguments.
type Mutation func(accounts []*account.Account) ([]*account.Account, error)

// Executor runs mutations over a set of account keys under their locks.
//
// Locks are always taken in ascending lexicographic key order and released in
// reverse order on every exit path. The store transaction is opened only after
// all locks are held.
type Executor struct {
	locker   Locker
	uow      repository.UnitOfWork
	logger   *slog.Logger
	onCommit func(ctx context.Context, accounts []*account.Account)
}

// NewExecutor creates an Executor.
func NewExecutor(locker Locker, uow repository.UnitOfWork, logger *slog.Logger) *Executor {
	return &Executor{locker: locker, uow: uow, logger: logger}
}

// OnCommit registers fn to run after a successful save, before the locks are released.
func (e *Executor) OnCommit(fn func(ctx context.Context, accounts []*account.Account)) {
	e.onCommit = fn
}

// WithLocks locks keys, loads their records, applies mutate and saves the
// returned records in one transaction. It returns the saved records.
func (e *Executor) WithLocks(
	ctx context.Context,
	keys []string,
	wait time.Duration,
	mutate Mutation,
) ([]*account.Account, error) {
	sorted, err := sortKeys(keys)
	if err != nil {
		return nil, err
	}
	handles, err := e.acquireAll(ctx, sorted, wait)
	if err != nil {
		return nil, err
	}
	defer e.releaseAll(handles)

	loaded, err := e.loadAll(ctx, sorted)
	if err != nil {
		return nil, err
	}
	changed, err := mutate(loaded)
	if err != nil {
		return nil, err
	}
	if err := e.saveAll(ctx, sorted, changed); err != nil {
		return nil, err
	}
	if e.onCommit != nil && len(changed) > 0 {
		e.onCommit(ctx, changed)
	}
	return changed, nil
}

// Claim creates the record built by build under key, provided no record for
// key exists. The existence probe and the insert happen while key's lock is
// held. An existing record yields a KeyTaken error.
func (e *Executor) Claim(
	ctx context.Context,
	key string,
	wait time.Duration,
	build func() (*account.Account, error),
) (*account.Account, error) {
	h, err := e.locker.Acquire(ctx, key, wait)
	if err != nil {
		return nil, err
	}
	defer e.locker.Release(h)

	repo, err := e.uow.AccountRepository()
	if err != nil {
		return nil, domain.StoreFailure(err)
	}
	_, err = repo.Get(ctx, key)
	switch {
	case err == nil:
		return nil, domain.KeyTaken(key)
	case !errors.Is(err, domain.ErrAccountNotFound):
		return nil, err
	}

	a, err := build()
	if err != nil {
		return nil, err
	}
	if a.Number != key {
		return nil, domain.ErrInvalidKeySet
	}
	err = e.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, a)
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, domain.KeyTaken(key)
	}
	if err != nil {
		return nil, domain.StoreFailure(err)
	}
	if e.onCommit != nil {
		e.onCommit(ctx, []*account.Account{a})
	}
	return a, nil
}

func sortKeys(keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, domain.ErrInvalidKeySet
	}
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, domain.ErrInvalidKeySet
		}
	}
	return sorted, nil
}

func (e *Executor) acquireAll(ctx context.Context, keys []string, wait time.Duration) ([]*lock.Handle, error) {
	handles := make([]*lock.Handle, 0, len(keys))
	for _, key := range keys {
		h, err := e.locker.Acquire(ctx, key, wait)
		if err != nil {
			e.logger.Debug("lock acquisition failed", "key", key, "held", len(handles), "error", err)
			e.releaseAll(handles)
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, nil
}

func (e *Executor) releaseAll(handles []*lock.Handle) {
	for i := len(handles) - 1; i >= 0; i-- {
		e.locker.Release(handles[i])
	}
}

func (e *Executor) loadAll(ctx context.Context, keys []string) ([]*account.Account, error) {
	repo, err := e.uow.AccountRepository()
	if err != nil {
		return nil, domain.StoreFailure(err)
	}
	loaded := make([]*account.Account, 0, len(keys))
	for _, key := range keys {
		a, err := repo.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, a)
	}
	return loaded, nil
}

// saveAll persists records in one transaction. Only records whose keys are
// locked may be saved.
func (e *Executor) saveAll(ctx context.Context, locked []string, records []*account.Account) error {
	if len(records) == 0 {
		return nil
	}
	for _, a := range records {
		i := sort.SearchStrings(locked, a.Number)
		if i == len(locked) || locked[i] != a.Number {
			return domain.ErrInvalidKeySet
		}
	}
	err := e.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		for _, a := range records {
			if err := repo.Update(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	return domain.StoreFailure(err)
}
