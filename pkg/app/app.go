package app

import (
	"log/slog"

	"github.com/amirasaad/accounts/pkg/cache"
	"github.com/amirasaad/accounts/pkg/config"
	"github.com/amirasaad/accounts/pkg/lock"
	"github.com/amirasaad/accounts/pkg/repository"
	"github.com/amirasaad/accounts/pkg/service/account"
	"github.com/amirasaad/accounts/pkg/utils"
)

// Deps contains all the dependencies needed to build the services
type Deps struct {
	Uow       repository.UnitOfWork
	Locks     *lock.Manager
	Generator utils.NumberGenerator
	Cache     cache.AccountCache
	Logger    *slog.Logger
	// Closers release backing resources on shutdown, in order.
	Closers []func() error
}

// Close runs every registered closer and returns the first error.
func (d *Deps) Close() error {
	var first error
	for _, c := range d.Closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type App struct {
	Deps           *Deps
	Config         *config.App
	AccountService *account.Service
}

func New(deps *Deps, cfg *config.App) *App {
	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	app.AccountService = account.New(
		deps.Uow,
		deps.Locks,
		deps.Generator,
		deps.Cache,
		serviceConfig(cfg),
		deps.Logger,
	)
	return app
}

func serviceConfig(cfg *config.App) account.Config {
	sc := account.DefaultConfig()
	if cfg == nil {
		return sc
	}
	if cfg.Lock != nil {
		sc.LockWait = cfg.Lock.Wait
		sc.ProbeWait = cfg.Lock.ProbeWait
	}
	if cfg.Cache != nil {
		sc.CacheTTL = cfg.Cache.TTL
	}
	if cfg.Account != nil {
		sc.MaxCreateAttempts = cfg.Account.MaxCreateAttempts
	}
	return sc
}
