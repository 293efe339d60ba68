// Package account provides the account operations: lookup, creation, closure
// and transfers between two accounts.
//
// Every mutation runs through an Executor, which serializes work per account
// number and persists each operation's changes in a single store transaction.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/accounts/pkg/cache"
	"github.com/amirasaad/accounts/pkg/domain"
	"github.com/amirasaad/accounts/pkg/domain/account"
	"github.com/amirasaad/accounts/pkg/repository"
	"github.com/amirasaad/accounts/pkg/utils"
	"golang.org/x/sync/singleflight"
)

// Config holds the timing and retry knobs of the service.
type Config struct {
	// LockWait bounds lock acquisition for close and transfer.
	LockWait time.Duration
	// ProbeWait bounds lock acquisition for a creation candidate.
	ProbeWait time.Duration
	// CacheTTL is the lifetime of cached account snapshots.
	CacheTTL time.Duration
	// MaxCreateAttempts caps candidate numbers tried by CreateAccount. Zero means unbounded.
	MaxCreateAttempts int
}

// DefaultConfig returns the defaults used when a Config field is zero.
func DefaultConfig() Config {
	return Config{
		LockWait:  time.Second,
		ProbeWait: time.Millisecond,
		CacheTTL:  30 * time.Second,
	}
}

// TransferResult holds both sides of a completed transfer.
type TransferResult struct {
	Source      *account.Account `json:"source"`
	Destination *account.Account `json:"destination"`
}

// Service provides account lookup, creation, closure and transfers.
type Service struct {
	uow       repository.UnitOfWork
	locker    Locker
	executor  *Executor
	generator utils.NumberGenerator
	cache     cache.AccountCache
	cfg       Config
	logger    *slog.Logger
	// loads coalesces concurrent store reads of one number on a cache miss.
	loads singleflight.Group
}

// New creates a Service. accountCache may be nil.
func New(
	uow repository.UnitOfWork,
	locker Locker,
	generator utils.NumberGenerator,
	accountCache cache.AccountCache,
	cfg Config,
	logger *slog.Logger,
) *Service {
	def := DefaultConfig()
	if cfg.LockWait <= 0 {
		cfg.LockWait = def.LockWait
	}
	if cfg.ProbeWait < 0 {
		cfg.ProbeWait = def.ProbeWait
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		uow:       uow,
		locker:    locker,
		executor:  NewExecutor(locker, uow, logger),
		generator: generator,
		cache:     accountCache,
		cfg:       cfg,
		logger:    logger,
	}
	s.executor.OnCommit(s.refreshCache)
	return s
}

// GetAccount returns the committed state of the account.
func (s *Service) GetAccount(ctx context.Context, number string) (*account.Account, error) {
	logger := s.logger.With("operation", "GetAccount", "number", number)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, number)
		if err != nil {
			logger.Warn("cache lookup failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}
	// The load is shared; detach it from the first caller's cancellation.
	v, err, shared := s.loads.Do(number, func() (any, error) {
		return s.load(context.WithoutCancel(ctx), number)
	})
	if err != nil {
		return nil, err
	}
	a := v.(*account.Account)
	if shared {
		a = a.Clone()
	}
	return a, nil
}

// CreateAccount opens an account with initialAmount under a freshly generated
// number. Candidates that are taken or being created concurrently are skipped.
func (s *Service) CreateAccount(ctx context.Context, initialAmount int64) (*account.Account, error) {
	logger := s.logger.With("operation", "CreateAccount", "initial_amount", initialAmount)
	if initialAmount < 0 {
		return nil, domain.InvalidAmount(initialAmount)
	}
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.cfg.MaxCreateAttempts > 0 && attempt > s.cfg.MaxCreateAttempts {
			logger.Error("no free account number found", "attempts", s.cfg.MaxCreateAttempts)
			return nil, fmt.Errorf("create account after %d attempts: %w", s.cfg.MaxCreateAttempts, domain.ErrKeyTaken)
		}
		candidate, err := s.generator.Generate()
		if err != nil {
			return nil, err
		}
		a, err := s.executor.Claim(ctx, candidate, s.cfg.ProbeWait, func() (*account.Account, error) {
			return account.New().WithNumber(candidate).WithBalance(initialAmount).Build()
		})
		if errors.Is(err, domain.ErrKeyTaken) || errors.Is(err, domain.ErrLocked) {
			logger.Debug("candidate number unavailable", "candidate", candidate, "attempt", attempt)
			continue
		}
		if err != nil {
			logger.Error("create failed", "candidate", candidate, "error", err)
			return nil, err
		}
		logger.Info("account created", "number", a.Number, "attempts", attempt)
		return a, nil
	}
}

// CloseAccount marks the account closed.
func (s *Service) CloseAccount(ctx context.Context, number string) (*account.Account, error) {
	logger := s.logger.With("operation", "CloseAccount", "number", number)
	saved, err := s.executor.WithLocks(ctx, []string{number}, s.cfg.LockWait,
		func(accounts []*account.Account) ([]*account.Account, error) {
			a := accounts[0]
			if err := a.Close(); err != nil {
				return nil, err
			}
			return accounts, nil
		})
	if err != nil {
		logger.Info("close rejected", "error", err)
		return nil, err
	}
	logger.Info("account closed")
	return saved[0], nil
}

// Transfer moves amount from source to dest. Both records are saved in one
// transaction or neither is.
func (s *Service) Transfer(ctx context.Context, source, dest string, amount int64) (*TransferResult, error) {
	logger := s.logger.With("operation", "Transfer", "source", source, "dest", dest, "amount", amount)
	if amount < 1 {
		return nil, domain.InvalidAmount(amount)
	}
	if source == dest {
		return nil, domain.SameAccount(source)
	}

	var result TransferResult
	_, err := s.executor.WithLocks(ctx, []string{source, dest}, s.cfg.LockWait,
		func(accounts []*account.Account) ([]*account.Account, error) {
			for _, a := range accounts {
				switch a.Number {
				case source:
					result.Source = a
				case dest:
					result.Destination = a
				}
			}
			if result.Source.Closed {
				return nil, domain.Closed(source)
			}
			if result.Destination.Closed {
				return nil, domain.Closed(dest)
			}
			if err := result.Source.Debit(amount); err != nil {
				return nil, err
			}
			if err := result.Destination.Credit(amount); err != nil {
				return nil, err
			}
			return accounts, nil
		})
	if err != nil {
		logger.Info("transfer rejected", "error", err)
		return nil, err
	}
	logger.Info("transfer completed",
		"source_balance", result.Source.Balance,
		"dest_balance", result.Destination.Balance,
	)
	return &result, nil
}

// load reads number from the store. The snapshot is cached only while the
// key's lock is held, so no commit can land between the read and the cache
// write. When a writer holds the lock the committed record is returned uncached.
func (s *Service) load(ctx context.Context, number string) (*account.Account, error) {
	h, lockErr := s.locker.Acquire(ctx, number, s.cfg.ProbeWait)
	if lockErr == nil {
		defer s.locker.Release(h)
	}
	repo, err := s.uow.AccountRepository()
	if err != nil {
		return nil, domain.StoreFailure(err)
	}
	a, err := repo.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	if lockErr == nil {
		s.refreshCache(ctx, []*account.Account{a})
	}
	return a, nil
}

func (s *Service) refreshCache(ctx context.Context, accounts []*account.Account) {
	if s.cache == nil {
		return
	}
	for _, a := range accounts {
		if err := s.cache.Set(ctx, a, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("cache refresh failed", "number", a.Number, "error", err)
			// A snapshot older than this commit must not outlive a failed refresh.
			if err := s.cache.Delete(ctx, a.Number); err != nil {
				s.logger.Warn("cache evict failed", "number", a.Number, "error", err)
			}
		}
	}
}
