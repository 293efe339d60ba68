package initializer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/accounts/infra"
	infra_cache "github.com/amirasaad/accounts/infra/cache"
	infra_repository "github.com/amirasaad/accounts/infra/repository"
	"github.com/amirasaad/accounts/infra/repository/memory"
	"github.com/amirasaad/accounts/pkg/app"
	"github.com/amirasaad/accounts/pkg/cache"
	"github.com/amirasaad/accounts/pkg/config"
	"github.com/amirasaad/accounts/pkg/lock"
	"github.com/amirasaad/accounts/pkg/repository"
	"github.com/amirasaad/accounts/pkg/utils"
)

// InitializeDependencies initializes all the application dependencies
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	err error,
) {
	deps = &app.Deps{}
	logger := setupLogger(cfg.Log)
	deps.Logger = logger

	deps.Uow, err = initializeStore(cfg, deps, logger)
	if err != nil {
		return nil, err
	}

	deps.Cache, err = initializeCache(cfg, deps, logger)
	if err != nil {
		_ = deps.Close()
		return nil, err
	}

	deps.Locks = lock.NewManager()

	length := utils.DefaultAccountNumberLength
	if cfg.Account != nil && cfg.Account.NumberLength > 0 {
		length = cfg.Account.NumberLength
	}
	deps.Generator = utils.NewAccountNumberGenerator(length)

	return deps, nil
}

func initializeStore(
	cfg *config.App,
	deps *app.Deps,
	logger *slog.Logger,
) (repository.UnitOfWork, error) {
	if cfg.DB == nil || cfg.DB.Url == "" {
		logger.Warn("DATABASE_URL is not set, using in-memory account store")
		return memory.NewUoW(memory.NewStore()), nil
	}

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}
	deps.Closers = append(deps.Closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	if cfg.DB.AutoMigrate {
		if err := infra.Migrate(db); err != nil {
			_ = deps.Close()
			return nil, fmt.Errorf("failed to migrate accounts table: %w", err)
		}
		logger.Info("Accounts table migrated")
	}
	return infra_repository.NewUoW(db), nil
}

func initializeCache(
	cfg *config.App,
	deps *app.Deps,
	logger *slog.Logger,
) (cache.AccountCache, error) {
	var interval time.Duration
	if cfg.Cache != nil {
		interval = cfg.Cache.CleanupInterval
	}
	if cfg.Redis == nil || cfg.Redis.URL == "" {
		mc := infra_cache.NewMemoryCache(interval)
		deps.Closers = append(deps.Closers, func() error {
			mc.Close()
			return nil
		})
		return mc, nil
	}

	rc, err := infra_cache.NewRedisAccountCacheFromURL(cfg.Redis.URL, cfg.Redis.KeyPrefix, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis account cache: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to reach Redis: %w", err)
	}
	deps.Closers = append(deps.Closers, rc.Close)
	logger.Info("Using Redis account cache")
	return rc, nil
}
