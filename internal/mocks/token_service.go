package mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/sessionsdev/user-auth-microservice/internal/service/auth"
)

// MockTokenService implements auth.TokenService for testing.
type MockTokenService struct {
	// EncodeFn allows test cases to mock the Encode behavior
	EncodeFn func(ctx context.Context, userID int64, tokenType auth.TokenType, issuedAt time.Time) (string, error)

	// DecodeFn allows test cases to mock the Decode behavior
	DecodeFn func(ctx context.Context, token string) (*auth.Claims, error)

	// Default values used when functions aren't explicitly defined
	Claims    *auth.Claims
	EncodeErr error
	DecodeErr error
}

var _ auth.TokenService = (*MockTokenService)(nil)

// Encode implements auth.TokenService. The default token is
// "<type>-token-<userID>".
func (m *MockTokenService) Encode(
	ctx context.Context,
	userID int64,
	tokenType auth.TokenType,
	issuedAt time.Time,
) (string, error) {
	if m.EncodeFn != nil {
		return m.EncodeFn(ctx, userID, tokenType, issuedAt)
	}
	if m.EncodeErr != nil {
		return "", m.EncodeErr
	}
	return fmt.Sprintf("%s-token-%d", tokenType, userID), nil
}

// Decode implements auth.TokenService.
func (m *MockTokenService) Decode(ctx context.Context, token string) (*auth.Claims, error) {
	if m.DecodeFn != nil {
		return m.DecodeFn(ctx, token)
	}
	return m.Claims, m.DecodeErr
}

// Lifetime implements auth.TokenService with fixed lifetimes.
func (m *MockTokenService) Lifetime(tokenType auth.TokenType) (time.Duration, error) {
	switch tokenType {
	case auth.TokenTypeAccess:
		return 15 * time.Minute, nil
	case auth.TokenTypeRefresh:
		return 30 * 24 * time.Hour, nil
	default:
		return 0, auth.ErrUnknownTokenType
	}
}
