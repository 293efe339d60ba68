package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirasaad/accounts/infra/repository/memory"
	"github.com/amirasaad/accounts/pkg/domain/account"
	"github.com/amirasaad/accounts/pkg/lock"
	"github.com/amirasaad/accounts/pkg/repository"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingLocker records the order in which keys are acquired and released.
type recordingLocker struct {
	*lock.Manager
	mu       sync.Mutex
	acquired []string
	released []string
}

func newRecordingLocker() *recordingLocker {
	return &recordingLocker{Manager: lock.NewManager()}
}

func (r *recordingLocker) Acquire(ctx context.Context, key string, wait time.Duration) (*lock.Handle, error) {
	h, err := r.Manager.Acquire(ctx, key, wait)
	if err == nil {
		r.mu.Lock()
		r.acquired = append(r.acquired, key)
		r.mu.Unlock()
	}
	return h, err
}

func (r *recordingLocker) Release(h *lock.Handle) {
	r.mu.Lock()
	r.released = append(r.released, h.Key())
	r.mu.Unlock()
	r.Manager.Release(h)
}

func (r *recordingLocker) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acquired, r.released = nil, nil
}

// failingUoW fails every transaction with err.
type failingUoW struct {
	repository.UnitOfWork
	err error
}

func (f *failingUoW) Do(context.Context, func(repository.UnitOfWork) error) error {
	return f.err
}

// sequenceGenerator hands out the queued numbers first, then unique ones.
type sequenceGenerator struct {
	mu    sync.Mutex
	queue []string
	next  int
}

func (g *sequenceGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queue) > 0 {
		n := g.queue[0]
		g.queue = g.queue[1:]
		return n, nil
	}
	g.next++
	return fmt.Sprintf("9%019d", g.next), nil
}

// constantGenerator always returns the same number.
type constantGenerator string

func (g constantGenerator) Generate() (string, error) { return string(g), nil }

func seed(t *testing.T, uow repository.UnitOfWork, number string, balance int64, closed bool) {
	t.Helper()
	a, err := account.New().WithNumber(number).WithBalance(balance).WithClosed(closed).Build()
	require.NoError(t, err)
	repo, err := uow.AccountRepository()
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), a))
}

func balanceOf(t *testing.T, uow repository.UnitOfWork, number string) int64 {
	t.Helper()
	repo, err := uow.AccountRepository()
	require.NoError(t, err)
	a, err := repo.Get(context.Background(), number)
	require.NoError(t, err)
	return a.Balance
}

func newMemoryUoW() *memory.UoW {
	return memory.NewUoW(memory.NewStore())
}

// slowUoW delays and counts repository reads.
type slowUoW struct {
	*memory.UoW
	delay time.Duration
	gets  atomic.Int32
}

func (u *slowUoW) AccountRepository() (repository.AccountRepository, error) {
	repo, err := u.UoW.AccountRepository()
	if err != nil {
		return nil, err
	}
	return &slowRepo{AccountRepository: repo, uow: u}, nil
}

type slowRepo struct {
	repository.AccountRepository
	uow *slowUoW
}

func (r *slowRepo) Get(ctx context.Context, number string) (*account.Account, error) {
	r.uow.gets.Add(1)
	time.Sleep(r.uow.delay)
	return r.AccountRepository.Get(ctx, number)
}

// gatedUoW parks the first read of number until release is closed, after
// loading the record or, with beforeLoad, before touching the store. loaded is
// closed once the read is parked.
type gatedUoW struct {
	*memory.UoW
	number     string
	beforeLoad bool
	loaded  chan struct{}
	release chan struct{}
	parked  atomic.Bool
}

func newGatedUoW(number string) *gatedUoW {
	return &gatedUoW{
		UoW:     newMemoryUoW(),
		number:  number,
		loaded:  make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (u *gatedUoW) AccountRepository() (repository.AccountRepository, error) {
	repo, err := u.UoW.AccountRepository()
	if err != nil {
		return nil, err
	}
	return &gatedRepo{AccountRepository: repo, uow: u}, nil
}

type gatedRepo struct {
	repository.AccountRepository
	uow *gatedUoW
}

func (r *gatedRepo) Get(ctx context.Context, number string) (*account.Account, error) {
	if r.uow.beforeLoad {
		r.park(number)
		return r.AccountRepository.Get(ctx, number)
	}
	a, err := r.AccountRepository.Get(ctx, number)
	r.park(number)
	return a, err
}

func (r *gatedRepo) park(number string) {
	if number == r.uow.number && r.uow.parked.CompareAndSwap(false, true) {
		close(r.uow.loaded)
		<-r.uow.release
	}
}

// failingCache fails every Set and records evictions.
type failingCache struct {
	mu      sync.Mutex
	evicted []string
}

func (c *failingCache) Get(context.Context, string) (*account.Account, error) { return nil, nil }

func (c *failingCache) Set(context.Context, *account.Account, time.Duration) error {
	return errors.New("cache unavailable")
}

func (c *failingCache) Delete(_ context.Context, number string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evicted = append(c.evicted, number)
	return nil
}
