package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sessionsdev/user-auth-microservice/internal/domain"
	"github.com/sessionsdev/user-auth-microservice/internal/platform/logger"
	"github.com/sessionsdev/user-auth-microservice/internal/store"
)

const userColumns = `id, username, email, password_hash, active, created_at`

// SQLiteUserStore implements store.UserStore on SQLite.
type SQLiteUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteUserStore creates a user store over db, which may be a *sql.DB or
// a *sql.Tx. If logger is nil, slog.Default() is used.
func NewSQLiteUserStore(db store.DBTX, logger *slog.Logger) *SQLiteUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store"), slog.String("engine", "sqlite")),
	}
}

var _ store.UserStore = (*SQLiteUserStore)(nil)

// Create implements store.UserStore.Create.
// The UNIQUE constraint on email decides races between concurrent creates.
func (s *SQLiteUserStore) Create(ctx context.Context, user *domain.User) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO users (username, email, password_hash, active, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`
	var id int64
	err := s.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Active,
		toMillis(user.CreatedAt),
	).Scan(&id)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("email already exists", slog.String("email", user.Email))
			return 0, store.ErrEmailExists
		}
		log.Error("failed to create user", slog.String("error", err.Error()))
		return 0, store.NewStoreError("user", "create", "insert failed", MapError(err))
	}

	log.Debug("user created", slog.Int64("user_id", id))
	return id, nil
}

// GetByID implements store.UserStore.GetByID.
func (s *SQLiteUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return s.getOne(ctx, row, "get", slog.Int64("user_id", id))
}

// GetByEmail implements store.UserStore.GetByEmail. Matching is exact.
func (s *SQLiteUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return s.getOne(ctx, row, "get_by_email", slog.String("email", email))
}

// List implements store.UserStore.List.
func (s *SQLiteUserStore) List(ctx context.Context) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		log.Error("failed to list users", slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, store.NewStoreError("user", "list", "scan failed", MapError(err))
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("user", "list", "iteration failed", MapError(err))
	}
	return users, nil
}

// Update implements store.UserStore.Update.
// Absent fields keep their stored value through COALESCE, so the read and
// the write happen in one statement.
func (s *SQLiteUserStore) Update(ctx context.Context, id int64, upd store.UserUpdate) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE users
		SET username = COALESCE(?, username),
		    email = COALESCE(?, email),
		    password_hash = COALESCE(?, password_hash)
		WHERE id = ?
		RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRowContext(ctx, query, upd.Username, upd.Email, upd.PasswordHash, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			log.Debug("user not found for update", slog.Int64("user_id", id))
			return nil, store.ErrUserNotFound
		case IsUniqueViolation(err):
			log.Debug("email already exists", slog.Int64("user_id", id))
			return nil, store.ErrEmailExists
		}
		log.Error("failed to update user", slog.Int64("user_id", id), slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "update", "update failed", MapError(err))
	}

	log.Debug("user updated", slog.Int64("user_id", id))
	return u, nil
}

// Delete implements store.UserStore.Delete.
func (s *SQLiteUserStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete user", slog.Int64("user_id", id), slog.String("error", err.Error()))
		return store.NewStoreError("user", "delete", "delete failed", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("user", "delete", "rows affected unavailable", err)
	}
	if n == 0 {
		log.Debug("user not found for delete", slog.Int64("user_id", id))
		return store.ErrUserNotFound
	}

	log.Debug("user deleted", slog.Int64("user_id", id))
	return nil
}

// WithTx implements store.UserStore.WithTx.
func (s *SQLiteUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &SQLiteUserStore{db: tx, logger: s.logger}
}

func (s *SQLiteUserStore) getOne(ctx context.Context, row *sql.Row, op string, key slog.Attr) (*domain.User, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to fetch user",
			key, slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", op, "query failed", MapError(err))
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u         domain.User
		createdAt int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Active, &createdAt); err != nil {
		return nil, err
	}
	u.CreatedAt = fromMillis(createdAt)
	return &u, nil
}
