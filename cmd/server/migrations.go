package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/sessionsdev/user-auth-microservice/internal/platform/migrations"
)

// handleMigrations runs one migration command against db.
func handleMigrations(ctx context.Context, db *sql.DB, driver, command string, logger *slog.Logger) error {
	m, err := migrations.New(db, driver, logger.With("component", "migrations"))
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	logger.Info("executing migrations", "command", command, "driver", driver)
	if err := m.Run(ctx, command); err != nil {
		return fmt.Errorf("migration %q failed: %w", command, err)
	}

	version, err := m.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info("migrations finished", "command", command, "version", version)
	return nil
}
