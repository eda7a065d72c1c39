package main

import (
	"fmt"
	"log/slog"

	"github.com/sessionsdev/user-auth-microservice/internal/config"
	"github.com/sessionsdev/user-auth-microservice/internal/platform/logger"
)

// setupAppLogger configures the process-wide logger from config and logs the
// loaded configuration with it.
func setupAppLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	logConfig(cfg, l)
	return l, nil
}
