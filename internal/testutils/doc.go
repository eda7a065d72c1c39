// Package testutils provides database fixtures shared by the package tests.
//
// SQLite fixtures are always available:
//
//	db := testutils.NewSQLiteDB(t) // migrated, closed on cleanup
//	users := sqlite.NewSQLiteUserStore(db, nil)
//
// PostgreSQL fixtures need DATABASE_URL and skip the test otherwise:
//
//	db := testutils.NewPostgresDB(t) // schema recreated, closed on cleanup
package testutils
