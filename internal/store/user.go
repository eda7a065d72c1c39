package store

import (
	"context"
	"database/sql"

	"github.com/sessionsdev/user-auth-microservice/internal/domain"
)

// UserUpdate carries the fields of a partial user update.
// A nil field leaves the stored value unchanged.
type UserUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
}

// IsEmpty reports whether the update would change nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.PasswordHash == nil
}

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user and returns the id the store assigned to it.
	// Ids are never reused, even after the user is deleted.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) (int64, error)

	// GetByID retrieves a user by their id.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by their exact email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns every stored user ordered by id.
	List(ctx context.Context) ([]*domain.User, error)

	// Update applies the non-nil fields of upd to the user in one statement
	// and returns the stored result.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists if the new email belongs to another user.
	Update(ctx context.Context, id int64, upd UserUpdate) (*domain.User, error)

	// Delete removes a user from the store by their id.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	WithTx(tx *sql.Tx) UserStore
}
