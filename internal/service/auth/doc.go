// Package auth holds the credential primitives of the identity service:
// password hashing (PasswordHasher, bcrypt) and signed, time-bound bearer
// tokens (TokenService, HMAC-SHA256 JWT). Both are stateless once built and
// safe for concurrent use.
package auth
