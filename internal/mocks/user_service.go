package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sessionsdev/user-auth-microservice/internal/domain"
	"github.com/sessionsdev/user-auth-microservice/internal/service"
	"github.com/sessionsdev/user-auth-microservice/internal/service/auth"
)

// MockUserService is a testify mock of service.UserService for handler tests.
type MockUserService struct {
	mock.Mock
}

var _ service.UserService = (*MockUserService)(nil)

// AddUser is a mock implementation of service.UserService.AddUser
func (m *MockUserService) AddUser(ctx context.Context, username, email, password string) (int64, error) {
	args := m.Called(ctx, username, email, password)
	return args.Get(0).(int64), args.Error(1)
}

// GetUserByID is a mock implementation of service.UserService.GetUserByID
func (m *MockUserService) GetUserByID(ctx context.Context, id int64) (*domain.UserView, error) {
	args := m.Called(ctx, id)
	view, _ := args.Get(0).(*domain.UserView)
	return view, args.Error(1)
}

// GetAllUsers is a mock implementation of service.UserService.GetAllUsers
func (m *MockUserService) GetAllUsers(ctx context.Context) ([]domain.UserView, error) {
	args := m.Called(ctx)
	views, _ := args.Get(0).([]domain.UserView)
	return views, args.Error(1)
}

// UpdateUser is a mock implementation of service.UserService.UpdateUser
func (m *MockUserService) UpdateUser(ctx context.Context, id int64, input service.UpdateUserInput) error {
	args := m.Called(ctx, id, input)
	return args.Error(0)
}

// DeleteUser is a mock implementation of service.UserService.DeleteUser
func (m *MockUserService) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// IssueToken is a mock implementation of service.UserService.IssueToken
func (m *MockUserService) IssueToken(ctx context.Context, userID int64, tokenType auth.TokenType) (string, error) {
	args := m.Called(ctx, userID, tokenType)
	return args.String(0), args.Error(1)
}

// AuthenticateToken is a mock implementation of service.UserService.AuthenticateToken
func (m *MockUserService) AuthenticateToken(ctx context.Context, token string) (int64, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(int64), args.Error(1)
}

// Login is a mock implementation of service.UserService.Login
func (m *MockUserService) Login(ctx context.Context, email, password string) (*service.TokenPair, error) {
	args := m.Called(ctx, email, password)
	pair, _ := args.Get(0).(*service.TokenPair)
	return pair, args.Error(1)
}

// RefreshTokens is a mock implementation of service.UserService.RefreshTokens
func (m *MockUserService) RefreshTokens(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	pair, _ := args.Get(0).(*service.TokenPair)
	return pair, args.Error(1)
}
