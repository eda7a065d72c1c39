// Package postgres provides the PostgreSQL implementation of store.UserStore
// over database/sql with the pgx stdlib driver. Driver errors are translated
// into store errors by MapError so callers never see SQLSTATE details.
package postgres
