// Package service contains the account use cases of the identity service.
//
// UserService coordinates the user store, the password hasher and the token
// service. It enforces the account invariants (unique email, existing id,
// valid fields), never returns password digests (only domain.UserView), and
// reports failures as the sentinel errors in errors.go wrapped with context.
// It knows nothing about HTTP.
package service
