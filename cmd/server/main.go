// Package main implements the entry point for the user account service:
// it loads configuration, connects to the database, applies migrations and
// serves the users and auth HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// cliFlags holds the command line flags of the server binary.
type cliFlags struct {
	migrate string
	seed    bool
}

func parseFlags(args []string) (cliFlags, error) {
	var f cliFlags
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&f.migrate, "migrate", "",
		"run a migration command (up, down, status, reset, recreate) and exit")
	fs.BoolVar(&f.seed, "seed", false, "insert the seed accounts and exit")
	if err := fs.Parse(args); err != nil {
		return cliFlags{}, err
	}
	return f, nil
}

func main() {
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flags); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// run wires the process together. A migration command or -seed performs
// that single task and returns; otherwise the HTTP server runs until ctx is
// canceled.
func run(ctx context.Context, flags cliFlags) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database connection", "error", err)
		}
	}()

	if flags.migrate != "" {
		return handleMigrations(ctx, db, cfg.Database.Driver, flags.migrate, logger)
	}

	// The schema is brought up to date on every start.
	if err := handleMigrations(ctx, db, cfg.Database.Driver, "up", logger); err != nil {
		return err
	}

	app, err := newApplication(cfg, logger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if flags.seed {
		return seedDatabase(ctx, db, app.userStore, app.hasher, logger)
	}

	return app.Run(ctx)
}
