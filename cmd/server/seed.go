package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sessionsdev/user-auth-microservice/internal/domain"
	"github.com/sessionsdev/user-auth-microservice/internal/service/auth"
	"github.com/sessionsdev/user-auth-microservice/internal/store"
)

// seedAccount is one account inserted by -seed.
type seedAccount struct {
	username string
	email    string
	password string
}

var seedAccounts = []seedAccount{
	{username: "jonny", email: "jon@sessionsdev.com", password: "password"},
	{username: "kristen", email: "kristen@test.com", password: "password"},
}

// seedDatabase inserts the seed accounts in one transaction. Accounts whose
// email already exists are skipped, so seeding twice is harmless.
func seedDatabase(
	ctx context.Context,
	db *sql.DB,
	users store.UserStore,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) error {
	now := time.Now()

	// Digests are computed before the transaction opens.
	prepared := make([]*domain.User, 0, len(seedAccounts))
	for _, acc := range seedAccounts {
		digest, err := hasher.Hash(acc.password)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		user, err := domain.NewUser(acc.username, acc.email, digest, now)
		if err != nil {
			return fmt.Errorf("invalid seed account %q: %w", acc.username, err)
		}
		prepared = append(prepared, user)
	}

	var inserted int
	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := users.WithTx(tx)
		for _, user := range prepared {
			_, err := txUsers.GetByEmail(ctx, user.Email)
			if err == nil {
				logger.Info("seed account already present", "username", user.Username)
				continue
			}
			if !errors.Is(err, store.ErrUserNotFound) {
				return err
			}
			if _, err := txUsers.Create(ctx, user); err != nil {
				return fmt.Errorf("failed to insert seed account %q: %w", user.Username, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	logger.Info("database seeded", "inserted", inserted)
	return nil
}
