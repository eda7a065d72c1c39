package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestSecret is a signing secret long enough for NewTokenService.
const TestSecret = "test-jwt-secret-that-is-32-chars-long"

// NewTestTokenService creates a TokenService with the given lifetimes whose
// clock is now. Pass a closure over a variable to move time in a test.
func NewTestTokenService(
	t testing.TB,
	accessLifetime, refreshLifetime time.Duration,
	now func() time.Time,
) TokenService {
	t.Helper()
	svc, err := newHMACTokenService(TestSecret, accessLifetime, refreshLifetime, now)
	require.NoError(t, err, "failed to create test token service")
	return svc
}

// NewTestHasher returns a bcrypt hasher at the minimum cost so tests stay fast.
func NewTestHasher(t testing.TB) *BcryptHasher {
	t.Helper()
	h, err := NewBcryptHasher(4)
	require.NoError(t, err)
	return h
}
