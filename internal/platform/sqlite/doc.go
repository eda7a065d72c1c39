// Package sqlite provides the SQLite (modernc.org/sqlite, pure Go) backed
// implementation of store.UserStore. It is the default storage engine for
// local runs and the engine used by the integration tests.
package sqlite
