package api

import (
	"errors"
	"net/http"

	"github.com/sessionsdev/user-auth-microservice/internal/api/shared"
	"github.com/sessionsdev/user-auth-microservice/internal/domain"
	"github.com/sessionsdev/user-auth-microservice/internal/service"
	"github.com/sessionsdev/user-auth-microservice/internal/service/auth"
	"github.com/sessionsdev/user-auth-microservice/internal/store"
)

// Client-facing messages.
const (
	MsgValidationFailed   = "Input payload validation failed"
	MsgDuplicateEmail     = "Sorry. That email already exists."
	MsgInvalidCredentials = "Invalid credentials"
	MsgInvalidToken       = "Invalid token"
	MsgTokenExpired       = "Token expired"
	MsgUserNotFound       = "User not found"
	MsgUnexpected         = "An unexpected error occurred"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients. Duplicate emails are a 400, not a
// 409, to keep the established contract of the users API.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for err.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return MsgUnexpected

	case errors.Is(err, auth.ErrExpiredToken):
		return MsgTokenExpired

	case errors.Is(err, auth.ErrInvalidToken):
		return MsgInvalidToken

	case errors.Is(err, service.ErrInvalidCredentials):
		return MsgInvalidCredentials

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, store.ErrNotFound):
		return MsgUserNotFound

	case errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, store.ErrDuplicate):
		return MsgDuplicateEmail

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return MsgValidationFailed

	default:
		return MsgUnexpected
	}
}

// HandleAPIError writes the mapped status and message for err and logs the
// redacted error. A non-empty message overrides the default safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
