package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/amirasaad/accounts/pkg/domain"
	"github.com/amirasaad/accounts/pkg/domain/account"
	"github.com/amirasaad/accounts/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccount(t *testing.T, number string, balance int64) *account.Account {
	t.Helper()
	a, err := account.New().WithNumber(number).WithBalance(balance).Build()
	require.NoError(t, err)
	return a
}

func TestStore_CreateGetUpdate(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	uow := NewUoW(NewStore())
	repo, err := uow.AccountRepository()
	require.NoError(err)

	require.NoError(repo.Create(ctx, newAccount(t, "1", 100)))
	assert.ErrorIs(t, repo.Create(ctx, newAccount(t, "1", 5)), domain.ErrAlreadyExists)

	got, err := repo.Get(ctx, "1")
	require.NoError(err)
	assert.Equal(t, int64(100), got.Balance)

	got.Balance = 40
	got.Closed = true
	require.NoError(repo.Update(ctx, got))
	again, err := repo.Get(ctx, "1")
	require.NoError(err)
	assert.Equal(t, int64(40), again.Balance)
	assert.True(t, again.Closed)

	_, err = repo.Get(ctx, "2")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.ErrorIs(t, repo.Update(ctx, newAccount(t, "2", 0)), domain.ErrAccountNotFound)
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	uow := NewUoW(NewStore())
	repo, _ := uow.AccountRepository()
	require.NoError(t, repo.Create(ctx, newAccount(t, "1", 100)))

	got, _ := repo.Get(ctx, "1")
	got.Balance = 0
	again, _ := repo.Get(ctx, "1")
	assert.Equal(t, int64(100), again.Balance)
}

func TestUoW_DoCommitsAtomically(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := NewStore()
	uow := NewUoW(store)
	repo, _ := uow.AccountRepository()
	require.NoError(repo.Create(ctx, newAccount(t, "a", 100)))
	require.NoError(repo.Create(ctx, newAccount(t, "b", 200)))

	err := uow.Do(ctx, func(tx repository.UnitOfWork) error {
		txRepo, _ := tx.AccountRepository()
		a, _ := txRepo.Get(ctx, "a")
		b, _ := txRepo.Get(ctx, "b")
		a.Balance -= 50
		b.Balance += 50
		if err := txRepo.Update(ctx, a); err != nil {
			return err
		}
		// staged writes are visible inside the transaction only
		staged, _ := txRepo.Get(ctx, "a")
		assert.Equal(t, int64(50), staged.Balance)
		committed, _ := repo.Get(ctx, "a")
		assert.Equal(t, int64(100), committed.Balance)
		return txRepo.Update(ctx, b)
	})
	require.NoError(err)

	a, _ := repo.Get(ctx, "a")
	b, _ := repo.Get(ctx, "b")
	assert.Equal(t, int64(50), a.Balance)
	assert.Equal(t, int64(250), b.Balance)
}

func TestUoW_DoRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	uow := NewUoW(store)
	repo, _ := uow.AccountRepository()
	require.NoError(t, repo.Create(ctx, newAccount(t, "a", 100)))

	boom := errors.New("boom")
	err := uow.Do(ctx, func(tx repository.UnitOfWork) error {
		txRepo, _ := tx.AccountRepository()
		a, _ := txRepo.Get(ctx, "a")
		a.Balance = 0
		_ = txRepo.Update(ctx, a)
		_ = txRepo.Create(ctx, newAccount(t, "b", 1))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	a, _ := repo.Get(ctx, "a")
	assert.Equal(t, int64(100), a.Balance)
	assert.Equal(t, 1, store.Len())
}

func TestUoW_CreateInsideTransaction(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	uow := NewUoW(store)

	err := uow.Do(ctx, func(tx repository.UnitOfWork) error {
		txRepo, _ := tx.AccountRepository()
		if err := txRepo.Create(ctx, newAccount(t, "n", 7)); err != nil {
			return err
		}
		assert.ErrorIs(t, txRepo.Create(ctx, newAccount(t, "n", 7)), domain.ErrAlreadyExists)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestUoW_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewUoW(NewStore()).Do(ctx, func(repository.UnitOfWork) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
