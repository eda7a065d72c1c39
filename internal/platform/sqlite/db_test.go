package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sessionsdev/user-auth-microservice/internal/store"
)

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "users.db")

	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
	assert.FileExists(t, path)
}

func TestOpenInMemory(t *testing.T) {
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("CREATE TABLE t (x INTEGER)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO t (x) VALUES (1)")
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM t").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	assert.Error(t, err)
}

func TestMillisRoundTrip(t *testing.T) {
	in := time.Date(2025, 3, 4, 5, 6, 7, 891_000_000, time.FixedZone("X", -7200))
	out := fromMillis(toMillis(in))

	assert.True(t, in.Equal(out))
	assert.Equal(t, time.UTC, out.Location())
}

func TestMapError(t *testing.T) {
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("CREATE TABLE t (email TEXT NOT NULL UNIQUE)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO t (email) VALUES ('a@b.co')")
	require.NoError(t, err)

	_, dupErr := db.Exec("INSERT INTO t (email) VALUES ('a@b.co')")
	require.Error(t, dupErr)
	assert.True(t, IsUniqueViolation(dupErr))
	assert.ErrorIs(t, MapError(dupErr), store.ErrDuplicate)

	_, nullErr := db.Exec("INSERT INTO t (email) VALUES (NULL)")
	require.Error(t, nullErr)
	assert.False(t, IsUniqueViolation(nullErr))
	mapped := MapError(nullErr)
	assert.NotContains(t, mapped.Error(), "INSERT")

	assert.ErrorIs(t, MapError(sql.ErrNoRows), store.ErrNotFound)
	assert.Nil(t, MapError(nil))

	plain := errors.New("plain")
	assert.Equal(t, plain, MapError(plain))
}
