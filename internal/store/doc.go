// Package store defines the persistence contract for user accounts.
// The UserStore interface hides the storage engine from the account
// service; implementations live under internal/platform (postgres, sqlite).
// Every UserStore method is a single atomic statement, so email uniqueness
// is enforced by the database constraint rather than by a read-then-write
// check in the caller.
package store
