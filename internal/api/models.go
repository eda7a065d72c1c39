package api

import (
	"time"

	"github.com/sessionsdev/user-auth-microservice/internal/service"
)

// CreateUserRequest is the payload of POST /users.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,max=128"`
	Email    string `json:"email"    validate:"required,email,max=128"`
	Password string `json:"password" validate:"required,max=72"`
}

// UpdateUserRequest is the payload of PUT /users/{id}.
// Username and email are always replaced; a missing password keeps the
// current one.
type UpdateUserRequest struct {
	Username string  `json:"username"           validate:"required,max=128"`
	Email    string  `json:"email"              validate:"required,email,max=128"`
	Password *string `json:"password,omitempty" validate:"omitempty,max=72"`
}

// LoginRequest is the payload of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the payload of POST /auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is returned by the login and refresh endpoints.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`

	// ExpiresAt is the RFC 3339 expiry of the access token
	ExpiresAt string `json:"expires_at"`
}

// PingResponse is the body of GET /ping.
type PingResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func tokenResponse(pair *service.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresAt:    pair.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
