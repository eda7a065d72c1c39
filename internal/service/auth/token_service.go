package auth

import (
	"context"
	"time"
)

// TokenType distinguishes what a token may be used for.
type TokenType string

const (
	// TokenTypeAccess authenticates API requests. Short-lived.
	TokenTypeAccess TokenType = "access"
	// TokenTypeRefresh is exchanged for a new token pair. Long-lived.
	TokenTypeRefresh TokenType = "refresh"
)

// Valid reports whether t is a known token type.
func (t TokenType) Valid() bool {
	return t == TokenTypeAccess || t == TokenTypeRefresh
}

// TokenService issues and verifies signed bearer tokens.
type TokenService interface {
	// Encode issues a token of tokenType for userID. The token expires at
	// issuedAt plus the lifetime of its type.
	// Returns ErrUnknownTokenType for a type other than access or refresh.
	Encode(ctx context.Context, userID int64, tokenType TokenType, issuedAt time.Time) (string, error)

	// Decode verifies the token's signature and expiry and returns its claims.
	// Returns ErrExpiredToken once the expiry time is reached and
	// ErrInvalidToken for anything else that fails verification.
	Decode(ctx context.Context, token string) (*Claims, error)

	// Lifetime returns how long tokens of tokenType stay valid.
	Lifetime(tokenType TokenType) (time.Duration, error)
}

// Claims is the verified content of a token.
type Claims struct {
	UserID    int64
	TokenType TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
