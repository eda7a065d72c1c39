package testutils

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/stretchr/testify/require"

	"github.com/sessionsdev/user-auth-microservice/internal/platform/logger"
	"github.com/sessionsdev/user-auth-microservice/internal/platform/migrations"
	"github.com/sessionsdev/user-auth-microservice/internal/platform/sqlite"
)

// NewSQLiteDB opens a fresh file-backed SQLite database in a temp directory,
// applies all migrations and closes it when the test finishes.
func NewSQLiteDB(t testing.TB) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err, "failed to open sqlite test database")
	t.Cleanup(func() { _ = db.Close() })

	log, _ := logger.GetTestLogger(t)
	m, err := migrations.New(db, migrations.DriverSQLite, log)
	require.NoError(t, err)
	require.NoError(t, m.Up(ctx), "failed to migrate sqlite test database")

	return db
}

// NewPostgresDB connects to DATABASE_URL, recreates the schema and closes the
// connection when the test finishes. Tests using it must not run in parallel.
func NewPostgresDB(t testing.TB) *sql.DB {
	t.Helper()
	dbURL := GetTestDatabaseURL(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open postgres test database")
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(ctx), "failed to ping postgres test database")

	log, _ := logger.GetTestLogger(t)
	m, err := migrations.New(db, migrations.DriverPostgres, log)
	require.NoError(t, err)
	require.NoError(t, m.Recreate(ctx), "failed to recreate postgres schema")

	return db
}
