package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sessionsdev/user-auth-microservice/internal/config"
	"github.com/sessionsdev/user-auth-microservice/internal/platform/migrations"
	"github.com/sessionsdev/user-auth-microservice/internal/platform/postgres"
	"github.com/sessionsdev/user-auth-microservice/internal/platform/sqlite"
	"github.com/sessionsdev/user-auth-microservice/internal/service"
	"github.com/sessionsdev/user-auth-microservice/internal/service/auth"
	"github.com/sessionsdev/user-auth-microservice/internal/store"
)

// application holds the shared dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore   store.UserStore
	hasher      auth.PasswordHasher
	tokens      auth.TokenService
	userService service.UserService

	registry *prometheus.Registry
}

// newApplication creates the stores and services on top of an open,
// migrated database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	switch cfg.Database.Driver {
	case migrations.DriverSQLite:
		app.userStore = sqlite.NewSQLiteUserStore(db, logger)
	case migrations.DriverPostgres:
		app.userStore = postgres.NewPostgresUserStore(db, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}
	app.hasher = hasher

	app.tokens, err = auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	logger.Info("token service initialized",
		"access_token_lifetime_minutes", cfg.Auth.AccessTokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	app.userService, err = service.NewUserService(app.userStore, app.hasher, app.tokens, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, cfg.Database.Driver),
	)

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
