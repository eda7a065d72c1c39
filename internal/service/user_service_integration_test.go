package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sessionsdev/user-auth-microservice/internal/platform/logger"
	"github.com/sessionsdev/user-auth-microservice/internal/platform/sqlite"
	"github.com/sessionsdev/user-auth-microservice/internal/service"
	"github.com/sessionsdev/user-auth-microservice/internal/service/auth"
	"github.com/sessionsdev/user-auth-microservice/internal/testutils"
)

type integration struct {
	svc    *service.UserServiceImpl
	hasher *auth.BcryptHasher
	store  *sqlite.SQLiteUserStore
	clock  *time.Time
}

func newIntegration(t *testing.T) *integration {
	t.Helper()
	db := testutils.NewSQLiteDB(t)
	log, _ := logger.GetTestLogger(t)

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	it := &integration{clock: &now}
	clock := func() time.Time { return *it.clock }

	it.store = sqlite.NewSQLiteUserStore(db, log)
	it.hasher = auth.NewTestHasher(t)
	tokens := auth.NewTestTokenService(t, 15*time.Minute, 30*24*time.Hour, clock)

	svc, err := service.NewUserService(it.store, it.hasher, tokens, log, service.WithClock(clock))
	require.NoError(t, err)
	it.svc = svc
	return it
}

func (it *integration) advance(d time.Duration) { *it.clock = it.clock.Add(d) }

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	it := newIntegration(t)

	id, err := it.svc.AddUser(ctx, "jonny", "jon@example.com", "password")
	require.NoError(t, err)
	assert.Positive(t, id)

	view, err := it.svc.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "jonny", view.Username)
	assert.Equal(t, "jon@example.com", view.Email)

	stored, err := it.store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, "password", stored.PasswordHash)
	assert.True(t, it.hasher.Verify("password", stored.PasswordHash))

	_, err = it.svc.AddUser(ctx, "jonny2", "jon@example.com", "other")
	assert.ErrorIs(t, err, service.ErrDuplicateEmail)

	all, err := it.svc.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, it.svc.DeleteUser(ctx, id))
	_, err = it.svc.GetUserByID(ctx, id)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
	assert.ErrorIs(t, it.svc.DeleteUser(ctx, id), service.ErrUserNotFound)
}

func TestUpdatePasswordHandling(t *testing.T) {
	ctx := context.Background()
	it := newIntegration(t)

	id, err := it.svc.AddUser(ctx, "kristen", "kristen@test.com", "password")
	require.NoError(t, err)
	before, err := it.store.GetByID(ctx, id)
	require.NoError(t, err)

	newName := "kris"
	require.NoError(t, it.svc.UpdateUser(ctx, id, service.UpdateUserInput{Username: &newName}))

	after, err := it.store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "kris", after.Username)
	assert.Equal(t, before.PasswordHash, after.PasswordHash, "digest must survive an update without password")

	newPassword := "correct horse"
	require.NoError(t, it.svc.UpdateUser(ctx, id, service.UpdateUserInput{Password: &newPassword}))

	after, err = it.store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, before.PasswordHash, after.PasswordHash)
	assert.True(t, it.hasher.Verify(newPassword, after.PasswordHash))
	assert.False(t, it.hasher.Verify("password", after.PasswordHash))

	_, err = it.svc.Login(ctx, "kristen@test.com", "password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = it.svc.Login(ctx, "kristen@test.com", newPassword)
	assert.NoError(t, err)
}

func TestUpdateEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	it := newIntegration(t)

	first, err := it.svc.AddUser(ctx, "jonny", "jon@example.com", "password")
	require.NoError(t, err)
	second, err := it.svc.AddUser(ctx, "kristen", "kristen@test.com", "password")
	require.NoError(t, err)

	taken := "jon@example.com"
	err = it.svc.UpdateUser(ctx, second, service.UpdateUserInput{Email: &taken})
	assert.ErrorIs(t, err, service.ErrDuplicateEmail)

	own := "jon@example.com"
	assert.NoError(t, it.svc.UpdateUser(ctx, first, service.UpdateUserInput{Email: &own}))
}

func TestConcurrentRegistrationWithSameEmail(t *testing.T) {
	ctx := context.Background()
	it := newIntegration(t)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := it.svc.AddUser(ctx, "racer", "race@example.com", "password"); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	all, err := it.svc.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTokenFlow(t *testing.T) {
	ctx := context.Background()
	it := newIntegration(t)

	id, err := it.svc.AddUser(ctx, "jonny", "jon@example.com", "password")
	require.NoError(t, err)

	pair, err := it.svc.Login(ctx, "jon@example.com", "password")
	require.NoError(t, err)

	got, err := it.svc.AuthenticateToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = it.svc.AuthenticateToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrWrongTokenType)

	it.advance(16 * time.Minute)
	_, err = it.svc.AuthenticateToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)

	refreshed, err := it.svc.RefreshTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)
	got, err = it.svc.AuthenticateToken(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	require.NoError(t, it.svc.DeleteUser(ctx, id))
	_, err = it.svc.RefreshTokens(ctx, refreshed.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestIssueTokenForUnknownType(t *testing.T) {
	it := newIntegration(t)

	_, err := it.svc.IssueToken(context.Background(), 1, auth.TokenType("session"))
	assert.ErrorIs(t, err, auth.ErrUnknownTokenType)
}
