package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mexyapp-accounts/config"
	"github.com/oksasatya/mexyapp-accounts/internal/domain/repository"
	"github.com/oksasatya/mexyapp-accounts/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/mexyapp-accounts/internal/infrastructure/postgres"
)

// openUserRepo builds the configured user store. The returned func
// releases it.
func openUserRepo(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repository.UserRepository, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("using in-memory user storage; data is lost on restart")
		return memory.NewUserRepository(), func() {}, nil
	case config.StoragePostgres:
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	pool, err := pginfra.NewPool(ctx, pginfra.PoolOptions{
		DSN:              cfg.PostgresDSN(),
		MaxConns:         cfg.DBMaxConns,
		MinConns:         cfg.DBMinConns,
		MaxConnLifetime:  cfg.DBMaxConnLife,
		StatementTimeout: cfg.DBStatementTimeout,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	repo := pginfra.NewRetryingUserRepository(pginfra.NewUserRepository(pool), cfg.DBRetryAttempts, cfg.DBRetryMaxDelay, logger)
	return repo, pool.Close, nil
}
