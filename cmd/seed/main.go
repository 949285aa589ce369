package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mexyapp-accounts/config"
	"github.com/oksasatya/mexyapp-accounts/internal/application"
	"github.com/oksasatya/mexyapp-accounts/internal/domain/entity"
	pginfra "github.com/oksasatya/mexyapp-accounts/internal/infrastructure/postgres"
	"github.com/oksasatya/mexyapp-accounts/pkg/helpers"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Seeds one administrator through the same services the API uses, so the
// row passes every domain rule. Re-running it only re-asserts the role.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	username := getenv("SEED_ADMIN_USERNAME", "admin")
	email := getenv("SEED_ADMIN_EMAIL", "admin@mexyapp.local")
	password := getenv("SEED_ADMIN_PASSWORD", "password123")

	pool, err := pginfra.NewPool(ctx, pginfra.PoolOptions{DSN: cfg.PostgresDSN(), MaxConns: 2}, logger)
	if err != nil {
		logger.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migrate: %v", err)
	}

	repo := pginfra.NewUserRepository(pool)
	hasher := helpers.NewBcryptHasher(cfg.BcryptCost)
	reg := application.NewRegistrationService(repo, hasher, application.Projections{}, logger)
	members := application.NewMembershipService(repo, hasher, application.Projections{}, logger)

	var id string
	view, err := reg.Register(ctx, application.RegisterInput{Username: username, Email: email, Password: password})
	switch {
	case err == nil:
		id = view.ID
	case errors.Is(err, application.ErrDuplicateEmail):
		existing, ferr := repo.FindByEmail(ctx, entity.NormalizeEmail(email))
		if ferr != nil {
			logger.Fatalf("load existing admin: %v", ferr)
		}
		id = existing.ID()
		logger.WithField("user_id", id).Info("admin already registered")
	default:
		logger.Fatalf("register admin: %v", err)
	}

	view, err = members.AssignRole(ctx, id, entity.RoleAdministrator)
	if err != nil {
		logger.Fatalf("assign administrator role: %v", err)
	}
	logger.WithFields(logrus.Fields{
		"user_id": view.ID,
		"email":   view.Email,
		"roles":   view.Roles,
	}).Info("seeded administrator")
}
