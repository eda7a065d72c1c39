package mocks

import (
	"strings"

	"github.com/sessionsdev/user-auth-microservice/internal/service/auth"
)

// mockDigestPrefix marks digests produced by MockPasswordHasher's default Hash.
const mockDigestPrefix = "mock-digest:"

// MockPasswordHasher implements auth.PasswordHasher for testing.
// By default Hash is reversible ("mock-digest:" + password) and Verify checks
// against that form, which keeps service tests fast and deterministic.
type MockPasswordHasher struct {
	HashFn   func(password string) (string, error)
	VerifyFn func(password, digest string) bool

	// HashCalls records every password passed to Hash.
	HashCalls []string
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	m.HashCalls = append(m.HashCalls, password)
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	return mockDigestPrefix + password, nil
}

// Verify implements auth.PasswordHasher.
func (m *MockPasswordHasher) Verify(password, digest string) bool {
	if m.VerifyFn != nil {
		return m.VerifyFn(password, digest)
	}
	return strings.HasPrefix(digest, mockDigestPrefix) && digest == mockDigestPrefix+password
}
