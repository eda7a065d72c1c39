package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sessionsdev/user-auth-microservice/internal/domain"
	"github.com/sessionsdev/user-auth-microservice/internal/mocks"
	"github.com/sessionsdev/user-auth-microservice/internal/platform/logger"
	"github.com/sessionsdev/user-auth-microservice/internal/service"
	"github.com/sessionsdev/user-auth-microservice/internal/service/auth"
	"github.com/sessionsdev/user-auth-microservice/internal/store"
)

var testNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	users  *mocks.TestifyMockUserStore
	hasher *mocks.MockPasswordHasher
	tokens *mocks.MockTokenService
	svc    *service.UserServiceImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:  new(mocks.TestifyMockUserStore),
		hasher: &mocks.MockPasswordHasher{},
		tokens: &mocks.MockTokenService{},
	}
	log, _ := logger.GetTestLogger(t)
	svc, err := service.NewUserService(f.users, f.hasher, f.tokens, log,
		service.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	f.svc = svc
	t.Cleanup(func() { f.users.AssertExpectations(t) })
	return f
}

func storedUser(id int64, username, email, digest string) *domain.User {
	return &domain.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: digest,
		Active:       true,
		CreatedAt:    testNow,
	}
}

func ptr[T any](v T) *T { return &v }

func TestNewUserServiceRequiresDependencies(t *testing.T) {
	users := new(mocks.TestifyMockUserStore)
	hasher := &mocks.MockPasswordHasher{}
	tokens := &mocks.MockTokenService{}

	_, err := service.NewUserService(nil, hasher, tokens, nil)
	assert.Error(t, err)
	_, err = service.NewUserService(users, nil, tokens, nil)
	assert.Error(t, err)
	_, err = service.NewUserService(users, hasher, nil, nil)
	assert.Error(t, err)

	svc, err := service.NewUserService(users, hasher, tokens, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestAddUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with hashed password", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByEmail", mock.Anything, "jon@example.com").Return(nil, store.ErrUserNotFound)
		f.users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Username == "jonny" &&
				u.Email == "jon@example.com" &&
				u.PasswordHash == "mock-digest:password" &&
				u.Active &&
				u.CreatedAt.Equal(testNow)
		})).Return(int64(1), nil)

		id, err := f.svc.AddUser(ctx, "jonny", "jon@example.com", "password")

		require.NoError(t, err)
		assert.Equal(t, int64(1), id)
		assert.Equal(t, []string{"password"}, f.hasher.HashCalls)
	})

	t.Run("existing email is rejected before hashing", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByEmail", mock.Anything, "jon@example.com").
			Return(storedUser(1, "jonny", "jon@example.com", "d"), nil)

		_, err := f.svc.AddUser(ctx, "other", "jon@example.com", "password")

		assert.ErrorIs(t, err, service.ErrDuplicateEmail)
		assert.Empty(t, f.hasher.HashCalls)
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lost insert race is a duplicate", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByEmail", mock.Anything, "jon@example.com").Return(nil, store.ErrUserNotFound)
		f.users.On("Create", mock.Anything, mock.Anything).Return(int64(0), store.ErrEmailExists)

		_, err := f.svc.AddUser(ctx, "jonny", "jon@example.com", "password")

		assert.ErrorIs(t, err, service.ErrDuplicateEmail)
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name     string
			username string
			email    string
			password string
			wantErr  error
		}{
			{"empty username", "", "jon@example.com", "password", domain.ErrEmptyUsername},
			{"empty email", "jonny", "", "password", domain.ErrEmptyEmail},
			{"bad email", "jonny", "jon", "password", domain.ErrInvalidEmail},
			{"empty password", "jonny", "jon@example.com", "", domain.ErrEmptyPassword},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)

				_, err := f.svc.AddUser(ctx, tt.username, tt.email, tt.password)

				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, domain.ErrValidation)
			})
		}
	})

	t.Run("hasher validation error passes through", func(t *testing.T) {
		f := newFixture(t)
		f.hasher.HashFn = func(string) (string, error) { return "", domain.ErrPasswordTooLong }
		f.users.On("GetByEmail", mock.Anything, "jon@example.com").Return(nil, store.ErrUserNotFound)

		_, err := f.svc.AddUser(ctx, "jonny", "jon@example.com", "x")

		assert.ErrorIs(t, err, domain.ErrPasswordTooLong)
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		f := newFixture(t)
		dbErr := errors.New("connection refused")
		f.users.On("GetByEmail", mock.Anything, "jon@example.com").Return(nil, dbErr)

		_, err := f.svc.AddUser(ctx, "jonny", "jon@example.com", "password")

		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, service.ErrDuplicateEmail)
	})
}

func TestGetUserByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns view", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByID", mock.Anything, int64(3)).
			Return(storedUser(3, "kristen", "kristen@test.com", "secret-digest"), nil)

		view, err := f.svc.GetUserByID(ctx, 3)

		require.NoError(t, err)
		assert.Equal(t, domain.UserView{ID: 3, Username: "kristen", Email: "kristen@test.com", CreatedAt: testNow}, *view)
	})

	t.Run("missing user", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByID", mock.Anything, int64(99)).Return(nil, store.ErrUserNotFound)

		view, err := f.svc.GetUserByID(ctx, 99)

		assert.ErrorIs(t, err, service.ErrUserNotFound)
		assert.Nil(t, view)
	})
}

func TestGetAllUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("returns views in store order", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("List", mock.Anything).Return([]*domain.User{
			storedUser(1, "jonny", "jon@sessionsdev.com", "d1"),
			storedUser(2, "kristen", "kristen@test.com", "d2"),
		}, nil)

		views, err := f.svc.GetAllUsers(ctx)

		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, int64(1), views[0].ID)
		assert.Equal(t, int64(2), views[1].ID)
	})

	t.Run("empty store gives empty slice", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("List", mock.Anything).Return([]*domain.User{}, nil)

		views, err := f.svc.GetAllUsers(ctx)

		require.NoError(t, err)
		assert.NotNil(t, views)
		assert.Empty(t, views)
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("List", mock.Anything).Return(nil, errors.New("disk I/O error"))

		_, err := f.svc.GetAllUsers(ctx)

		assert.Error(t, err)
	})
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("without password keeps digest", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("Update", mock.Anything, int64(1), store.UserUpdate{
			Username: ptr("jonathan"),
			Email:    ptr("jonathan@example.com"),
		}).Return(storedUser(1, "jonathan", "jonathan@example.com", "d"), nil)

		err := f.svc.UpdateUser(ctx, 1, service.UpdateUserInput{
			Username: ptr("jonathan"),
			Email:    ptr("jonathan@example.com"),
		})

		require.NoError(t, err)
		assert.Empty(t, f.hasher.HashCalls)
	})

	t.Run("with password rehashes", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("Update", mock.Anything, int64(1), store.UserUpdate{
			PasswordHash: ptr("mock-digest:new-password"),
		}).Return(storedUser(1, "jonny", "jon@example.com", "mock-digest:new-password"), nil)

		err := f.svc.UpdateUser(ctx, 1, service.UpdateUserInput{Password: ptr("new-password")})

		require.NoError(t, err)
		assert.Equal(t, []string{"new-password"}, f.hasher.HashCalls)
	})

	t.Run("missing user", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("Update", mock.Anything, int64(9), mock.Anything).Return(nil, store.ErrUserNotFound)

		err := f.svc.UpdateUser(ctx, 9, service.UpdateUserInput{Username: ptr("x")})

		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("email of another user", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("Update", mock.Anything, int64(2), mock.Anything).Return(nil, store.ErrEmailExists)

		err := f.svc.UpdateUser(ctx, 2, service.UpdateUserInput{Email: ptr("jon@example.com")})

		assert.ErrorIs(t, err, service.ErrDuplicateEmail)
	})

	t.Run("invalid fields are rejected before storage", func(t *testing.T) {
		f := newFixture(t)

		assert.ErrorIs(t, f.svc.UpdateUser(ctx, 1, service.UpdateUserInput{Username: ptr(" ")}), domain.ErrEmptyUsername)
		assert.ErrorIs(t, f.svc.UpdateUser(ctx, 1, service.UpdateUserInput{Email: ptr("nope")}), domain.ErrInvalidEmail)
		assert.ErrorIs(t, f.svc.UpdateUser(ctx, 1, service.UpdateUserInput{Password: ptr("")}), domain.ErrEmptyPassword)
		f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("Delete", mock.Anything, int64(1)).Return(nil)

		assert.NoError(t, f.svc.DeleteUser(ctx, 1))
	})

	t.Run("missing user", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("Delete", mock.Anything, int64(1)).Return(store.ErrUserNotFound)

		assert.ErrorIs(t, f.svc.DeleteUser(ctx, 1), service.ErrUserNotFound)
	})
}

func TestIssueToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var gotIssuedAt time.Time
	f.tokens.EncodeFn = func(_ context.Context, userID int64, tokenType auth.TokenType, issuedAt time.Time) (string, error) {
		gotIssuedAt = issuedAt
		return "signed", nil
	}

	token, err := f.svc.IssueToken(ctx, 5, auth.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "signed", token)
	assert.Equal(t, testNow, gotIssuedAt)

	f.tokens.EncodeFn = nil
	f.tokens.EncodeErr = auth.ErrUnknownTokenType
	_, err = f.svc.IssueToken(ctx, 5, "session")
	assert.ErrorIs(t, err, auth.ErrUnknownTokenType)
}

func TestAuthenticateToken(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		claims  *auth.Claims
		decErr  error
		wantID  int64
		wantErr error
	}{
		{"access token", &auth.Claims{UserID: 4, TokenType: auth.TokenTypeAccess}, nil, 4, nil},
		{"refresh token", &auth.Claims{UserID: 4, TokenType: auth.TokenTypeRefresh}, nil, 0, auth.ErrWrongTokenType},
		{"expired", nil, auth.ErrExpiredToken, 0, auth.ErrExpiredToken},
		{"invalid", nil, auth.ErrInvalidToken, 0, auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.tokens.Claims = tt.claims
			f.tokens.DecodeErr = tt.decErr

			id, err := f.svc.AuthenticateToken(ctx, "token")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues token pair", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByEmail", mock.Anything, "jon@example.com").
			Return(storedUser(1, "jonny", "jon@example.com", "mock-digest:password"), nil)

		pair, err := f.svc.Login(ctx, "jon@example.com", "password")

		require.NoError(t, err)
		assert.Equal(t, "access-token-1", pair.AccessToken)
		assert.Equal(t, "refresh-token-1", pair.RefreshToken)
		assert.Equal(t, "Bearer", pair.TokenType)
		assert.Equal(t, testNow.Add(15*time.Minute), pair.ExpiresAt)
	})

	t.Run("failures are indistinguishable", func(t *testing.T) {
		inactive := storedUser(1, "jonny", "jon@example.com", "mock-digest:password")
		inactive.Active = false

		tests := []struct {
			name     string
			user     *domain.User
			storeErr error
			password string
		}{
			{"unknown email", nil, store.ErrUserNotFound, "password"},
			{"wrong password", storedUser(1, "jonny", "jon@example.com", "mock-digest:password"), nil, "wrong"},
			{"inactive account", inactive, nil, "password"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)
				f.users.On("GetByEmail", mock.Anything, "jon@example.com").Return(tt.user, tt.storeErr)

				pair, err := f.svc.Login(ctx, "jon@example.com", tt.password)

				assert.Equal(t, service.ErrInvalidCredentials, err)
				assert.Nil(t, pair)
			})
		}
	})
}

func TestRefreshTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("exchanges refresh token", func(t *testing.T) {
		f := newFixture(t)
		f.tokens.Claims = &auth.Claims{UserID: 2, TokenType: auth.TokenTypeRefresh}
		f.users.On("GetByID", mock.Anything, int64(2)).
			Return(storedUser(2, "kristen", "kristen@test.com", "d"), nil)

		pair, err := f.svc.RefreshTokens(ctx, "refresh")

		require.NoError(t, err)
		assert.Equal(t, "access-token-2", pair.AccessToken)
		assert.Equal(t, "refresh-token-2", pair.RefreshToken)
	})

	t.Run("access token is refused", func(t *testing.T) {
		f := newFixture(t)
		f.tokens.Claims = &auth.Claims{UserID: 2, TokenType: auth.TokenTypeAccess}

		_, err := f.svc.RefreshTokens(ctx, "access")

		assert.ErrorIs(t, err, auth.ErrWrongTokenType)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("deleted user", func(t *testing.T) {
		f := newFixture(t)
		f.tokens.Claims = &auth.Claims{UserID: 2, TokenType: auth.TokenTypeRefresh}
		f.users.On("GetByID", mock.Anything, int64(2)).Return(nil, store.ErrUserNotFound)

		_, err := f.svc.RefreshTokens(ctx, "refresh")

		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newFixture(t)
		f.tokens.DecodeErr = auth.ErrExpiredToken

		_, err := f.svc.RefreshTokens(ctx, "refresh")

		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})
}
