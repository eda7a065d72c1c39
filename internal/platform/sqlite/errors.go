package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sessionsdev/user-auth-microservice/internal/store"
)

// IsUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func IsUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// MapError translates driver errors into store errors. The original driver
// error text is dropped so SQL details do not leak past the store.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if IsUniqueViolation(err) {
		return store.ErrDuplicate
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return fmt.Errorf("database error (code %d)", sqliteErr.Code())
	}
	return err
}
