package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sessionsdev/user-auth-microservice/internal/domain"
	"github.com/sessionsdev/user-auth-microservice/internal/platform/logger"
	"github.com/sessionsdev/user-auth-microservice/internal/redact"
	"github.com/sessionsdev/user-auth-microservice/internal/service/auth"
	"github.com/sessionsdev/user-auth-microservice/internal/store"
)

// UpdateUserInput carries the fields of an account update. A nil field is
// left unchanged; in particular a nil Password keeps the current password.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// UserService provides the account operations of the identity service.
type UserService interface {
	// AddUser registers a new account and returns its id.
	AddUser(ctx context.Context, username, email, password string) (int64, error)

	// GetUserByID returns the view of one account.
	GetUserByID(ctx context.Context, id int64) (*domain.UserView, error)

	// GetAllUsers returns views of every account ordered by id.
	GetAllUsers(ctx context.Context) ([]domain.UserView, error)

	// UpdateUser changes the given fields of an account.
	UpdateUser(ctx context.Context, id int64, input UpdateUserInput) error

	// DeleteUser removes an account.
	DeleteUser(ctx context.Context, id int64) error

	// IssueToken signs a token of tokenType for userID, issued now.
	IssueToken(ctx context.Context, userID int64, tokenType auth.TokenType) (string, error)

	// AuthenticateToken verifies an access token and returns its user id.
	AuthenticateToken(ctx context.Context, token string) (int64, error)

	// Login checks an email and password and issues a token pair.
	Login(ctx context.Context, email, password string) (*TokenPair, error)

	// RefreshTokens exchanges a valid refresh token for a new token pair.
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// Option configures a UserServiceImpl.
type Option func(*UserServiceImpl)

// WithClock overrides the time source used for creation and issue times.
func WithClock(now func() time.Time) Option {
	return func(s *UserServiceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	tokens auth.TokenService
	logger *slog.Logger
	now    func() time.Time
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	tokens auth.TokenService,
	logger *slog.Logger,
	opts ...Option,
) (*UserServiceImpl, error) {
	if users == nil {
		return nil, fmt.Errorf("user store cannot be nil")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher cannot be nil")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &UserServiceImpl{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger.With("component", "user_service"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AddUser implements UserService.
// The email pre-check gives a clean error in the common case; the store's
// unique constraint still decides concurrent registrations.
func (s *UserServiceImpl) AddUser(ctx context.Context, username, email, password string) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateUsername(username); err != nil {
		return 0, err
	}
	if err := domain.ValidateEmail(email); err != nil {
		return 0, err
	}
	if password == "" {
		return 0, domain.ErrEmptyPassword
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		log.Debug("attempted to create user with existing email", "email", redact.Email(email))
		return 0, ErrDuplicateEmail
	case !errors.Is(err, store.ErrUserNotFound):
		log.Error("failed to check email availability", "error", err)
		return 0, fmt.Errorf("failed to check email availability: %w", err)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return 0, err
		}
		log.Error("failed to hash password", "error", err)
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := domain.NewUser(username, email, digest, s.now())
	if err != nil {
		return 0, err
	}

	id, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("lost race creating user with existing email", "email", redact.Email(email))
			return 0, fmt.Errorf("%w: %w", ErrDuplicateEmail, err)
		}
		log.Error("failed to save user", "error", err)
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user created", "user_id", id)
	return id, nil
}

// GetUserByID implements UserService.
func (s *UserServiceImpl) GetUserByID(ctx context.Context, id int64) (*domain.UserView, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	view := user.View()
	return &view, nil
}

// GetAllUsers implements UserService.
func (s *UserServiceImpl) GetAllUsers(ctx context.Context) ([]domain.UserView, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return domain.Views(users), nil
}

// UpdateUser implements UserService.
// The password is re-hashed only when a new one is supplied.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if input.Username != nil {
		if err := domain.ValidateUsername(*input.Username); err != nil {
			return err
		}
	}
	if input.Email != nil {
		if err := domain.ValidateEmail(*input.Email); err != nil {
			return err
		}
	}

	upd := store.UserUpdate{Username: input.Username, Email: input.Email}
	if input.Password != nil {
		if *input.Password == "" {
			return domain.ErrEmptyPassword
		}
		digest, err := s.hasher.Hash(*input.Password)
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				return err
			}
			log.Error("failed to hash password", "error", err, "user_id", id)
			return fmt.Errorf("failed to hash password: %w", err)
		}
		upd.PasswordHash = &digest
	}

	if _, err := s.users.Update(ctx, id, upd); err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			log.Debug("user not found for update", "user_id", id)
			return fmt.Errorf("%w: %w", ErrUserNotFound, err)
		case errors.Is(err, store.ErrEmailExists):
			log.Debug("attempted to update user to existing email", "user_id", id)
			return fmt.Errorf("%w: %w", ErrDuplicateEmail, err)
		}
		log.Error("failed to update user", "error", err, "user_id", id)
		return fmt.Errorf("failed to update user: %w", err)
	}

	log.Info("user updated", "user_id", id, "password_changed", upd.PasswordHash != nil)
	return nil
}

// DeleteUser implements UserService.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("user not found for delete", "user_id", id)
			return fmt.Errorf("%w: %w", ErrUserNotFound, err)
		}
		log.Error("failed to delete user", "error", err, "user_id", id)
		return fmt.Errorf("failed to delete user: %w", err)
	}

	log.Info("user deleted", "user_id", id)
	return nil
}

// IssueToken implements UserService.
func (s *UserServiceImpl) IssueToken(ctx context.Context, userID int64, tokenType auth.TokenType) (string, error) {
	token, err := s.tokens.Encode(ctx, userID, tokenType, s.now())
	if err != nil {
		return "", fmt.Errorf("failed to issue %s token: %w", tokenType, err)
	}
	return token, nil
}

// AuthenticateToken implements UserService.
// Only access tokens authenticate; a refresh token yields auth.ErrWrongTokenType.
func (s *UserServiceImpl) AuthenticateToken(ctx context.Context, token string) (int64, error) {
	claims, err := s.tokens.Decode(ctx, token)
	if err != nil {
		return 0, err
	}
	if claims.TokenType != auth.TokenTypeAccess {
		logger.FromContextOrDefault(ctx, s.logger).Debug("rejected non-access token for authentication",
			"token_type", string(claims.TokenType))
		return 0, auth.ErrWrongTokenType
	}
	return claims.UserID, nil
}

// Login implements UserService.
func (s *UserServiceImpl) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to load user for login", "error", err)
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		log.Debug("login with wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		log.Debug("login for inactive user", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	log.Info("user logged in", "user_id", user.ID)
	return pair, nil
}

// RefreshTokens implements UserService.
// The account must still exist and be active.
func (s *UserServiceImpl) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	claims, err := s.tokens.Decode(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != auth.TokenTypeRefresh {
		log.Debug("rejected non-refresh token for refresh", "token_type", string(claims.TokenType))
		return nil, auth.ErrWrongTokenType
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("refresh token for deleted user", "user_id", claims.UserID)
			return nil, auth.ErrInvalidToken
		}
		log.Error("failed to load user for refresh", "error", err, "user_id", claims.UserID)
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.Active {
		log.Debug("refresh token for inactive user", "user_id", user.ID)
		return nil, auth.ErrInvalidToken
	}

	return s.issuePair(ctx, user.ID)
}

func (s *UserServiceImpl) getUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		log := logger.FromContextOrDefault(ctx, s.logger)
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("user not found", "user_id", id)
			return nil, fmt.Errorf("%w: %w", ErrUserNotFound, err)
		}
		log.Error("failed to retrieve user", "error", err, "user_id", id)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

func (s *UserServiceImpl) issuePair(ctx context.Context, userID int64) (*TokenPair, error) {
	now := s.now()

	access, err := s.tokens.Encode(ctx, userID, auth.TokenTypeAccess, now)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, err := s.tokens.Encode(ctx, userID, auth.TokenTypeRefresh, now)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	lifetime, err := s.tokens.Lifetime(auth.TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("failed to read access token lifetime: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresAt:    now.Add(lifetime).UTC(),
	}, nil
}
