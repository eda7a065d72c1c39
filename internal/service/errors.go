package service

import "errors"

// Service errors returned by UserService. Callers compare with errors.Is;
// the API layer maps each to a status code.
var (
	// ErrUserNotFound indicates no account exists with the requested id.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail indicates another account already uses the email.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrInvalidCredentials indicates a login with an unknown email, a wrong
	// password or an inactive account. The cases are deliberately not told apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
