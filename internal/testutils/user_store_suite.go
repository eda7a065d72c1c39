package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sessionsdev/user-auth-microservice/internal/domain"
	"github.com/sessionsdev/user-auth-microservice/internal/store"
)

// NewTestUser builds a valid, unsaved user with a placeholder digest.
func NewTestUser(t testing.TB, username, email string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(username, email, "$2a$04$placeholderdigestplaceholderdigestplaceholderdig", time.Now())
	require.NoError(t, err)
	return u
}

// StoreFactory returns a fresh, empty user store and the database behind it.
type StoreFactory func(t *testing.T) (store.UserStore, *sql.DB)

// RunUserStoreSuite exercises the store.UserStore contract against the stores
// returned by factory. Each subtest gets a fresh, empty store.
func RunUserStoreSuite(t *testing.T, factory StoreFactory) {
	ctx := context.Background()
	newStore := func(t *testing.T) store.UserStore {
		s, _ := factory(t)
		return s
	}

	t.Run("create assigns ids and get round trips", func(t *testing.T) {
		s := newStore(t)
		u := NewTestUser(t, "jonny", "jon@sessionsdev.com")

		id, err := s.Create(ctx, u)
		require.NoError(t, err)
		assert.Positive(t, id)

		got, err := s.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "jonny", got.Username)
		assert.Equal(t, "jon@sessionsdev.com", got.Email)
		assert.Equal(t, u.PasswordHash, got.PasswordHash)
		assert.True(t, got.Active)
		assert.WithinDuration(t, u.CreatedAt, got.CreatedAt, time.Second)

		byEmail, err := s.GetByEmail(ctx, "jon@sessionsdev.com")
		require.NoError(t, err)
		assert.Equal(t, id, byEmail.ID)
	})

	t.Run("create rejects duplicate email", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Create(ctx, NewTestUser(t, "jonny", "jon@sessionsdev.com"))
		require.NoError(t, err)

		_, err = s.Create(ctx, NewTestUser(t, "other", "jon@sessionsdev.com"))
		assert.ErrorIs(t, err, store.ErrEmailExists)

		all, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("create rejects invalid user", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Create(ctx, &domain.User{Username: "x", Email: "bad"})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("missing user is not found", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetByID(ctx, 4242)
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		_, err = s.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		_, err = s.Update(ctx, 4242, store.UserUpdate{})
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		assert.ErrorIs(t, s.Delete(ctx, 4242), store.ErrUserNotFound)
	})

	t.Run("email lookup is exact", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Create(ctx, NewTestUser(t, "kristen", "kristen@test.com"))
		require.NoError(t, err)

		_, err = s.GetByEmail(ctx, "Kristen@Test.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("list is ordered by id", func(t *testing.T) {
		s := newStore(t)

		empty, err := s.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)

		var ids []int64
		for i := range 3 {
			id, err := s.Create(ctx, NewTestUser(t, fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@example.com", i)))
			require.NoError(t, err)
			ids = append(ids, id)
		}

		all, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		for i, u := range all {
			assert.Equal(t, ids[i], u.ID)
		}
	})

	t.Run("update applies only given fields", func(t *testing.T) {
		s := newStore(t)
		u := NewTestUser(t, "jonny", "jon@sessionsdev.com")
		id, err := s.Create(ctx, u)
		require.NoError(t, err)

		name := "jonathan"
		updated, err := s.Update(ctx, id, store.UserUpdate{Username: &name})
		require.NoError(t, err)
		assert.Equal(t, "jonathan", updated.Username)
		assert.Equal(t, "jon@sessionsdev.com", updated.Email)
		assert.Equal(t, u.PasswordHash, updated.PasswordHash)

		digest := "$2a$04$anotherdigest"
		email := "jonathan@sessionsdev.com"
		updated, err = s.Update(ctx, id, store.UserUpdate{Email: &email, PasswordHash: &digest})
		require.NoError(t, err)
		assert.Equal(t, "jonathan", updated.Username)
		assert.Equal(t, email, updated.Email)
		assert.Equal(t, digest, updated.PasswordHash)

		unchanged, err := s.Update(ctx, id, store.UserUpdate{})
		require.NoError(t, err)
		assert.Equal(t, updated, unchanged)
	})

	t.Run("update rejects email of another user", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Create(ctx, NewTestUser(t, "jonny", "jon@sessionsdev.com"))
		require.NoError(t, err)
		id, err := s.Create(ctx, NewTestUser(t, "kristen", "kristen@test.com"))
		require.NoError(t, err)

		taken := "jon@sessionsdev.com"
		_, err = s.Update(ctx, id, store.UserUpdate{Email: &taken})
		assert.ErrorIs(t, err, store.ErrEmailExists)

		got, err := s.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "kristen@test.com", got.Email)
	})

	t.Run("update to own email succeeds", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Create(ctx, NewTestUser(t, "jonny", "jon@sessionsdev.com"))
		require.NoError(t, err)

		same := "jon@sessionsdev.com"
		_, err = s.Update(ctx, id, store.UserUpdate{Email: &same})
		assert.NoError(t, err)
	})

	t.Run("deleted ids are not reused", func(t *testing.T) {
		s := newStore(t)
		first, err := s.Create(ctx, NewTestUser(t, "jonny", "jon@sessionsdev.com"))
		require.NoError(t, err)
		require.NoError(t, s.Delete(ctx, first))

		_, err = s.GetByID(ctx, first)
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		second, err := s.Create(ctx, NewTestUser(t, "jonny", "jon@sessionsdev.com"))
		require.NoError(t, err)
		assert.Greater(t, second, first)
	})

	t.Run("concurrent creates with one email keep exactly one", func(t *testing.T) {
		s := newStore(t)
		const workers = 8

		racers := make([]*domain.User, workers)
		for i := range racers {
			racers[i] = NewTestUser(t, fmt.Sprintf("racer%d", i), "race@example.com")
		}

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			created   int
			duplicate int
		)
		for _, u := range racers {
			wg.Add(1)
			go func(u *domain.User) {
				defer wg.Done()
				_, err := s.Create(ctx, u)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case store.IsDuplicateError(err):
					duplicate++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(u)
		}
		wg.Wait()

		assert.Equal(t, 1, created)
		assert.Equal(t, workers-1, duplicate)
	})

	t.Run("WithTx runs inside the transaction", func(t *testing.T) {
		s, db := factory(t)
		sqlTx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)

		txStore := s.WithTx(sqlTx)
		_, err = txStore.Create(ctx, NewTestUser(t, "ghost", "ghost@example.com"))
		require.NoError(t, err)
		require.NoError(t, sqlTx.Rollback())

		_, err = s.GetByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}
