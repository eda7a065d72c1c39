// Package mocks provides shared test doubles for the interfaces the account
// service depends on.
//
// TestifyMockUserStore is a testify/mock double for expectation-style tests:
//
//	users := new(mocks.TestifyMockUserStore)
//	users.On("GetByID", mock.Anything, int64(1)).Return(nil, store.ErrUserNotFound)
//
// MockUserService does the same for the HTTP handlers.
//
// MockTokenService and MockPasswordHasher use function fields with simple
// defaults, for tests that only care about one method.
package mocks
