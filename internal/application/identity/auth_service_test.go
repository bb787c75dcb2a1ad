package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-access-secret",
		RefreshSecret:          "test-refresh-secret",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "storefront-test",
		MaxRefreshCount:        10,
	})
}

func newTestAuthService(repo *MockUserRepository) (*AuthService, *auth.InMemoryTokenBlacklist) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	return NewAuthService(repo, newTestJWTService(), blacklist, zap.NewNop()), blacklist
}

func newTestUser(t *testing.T) *identity.User {
	t.Helper()
	user, err := identity.NewUser("shopper@example.com", "Test Shopper", "s3cret-pass")
	require.NoError(t, err)
	return user
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account and issues tokens", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestAuthService(repo)

		repo.On("ExistsByEmail", ctx, "shopper@example.com").Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		result, err := service.Register(ctx, RegisterRequest{
			Email:    "shopper@example.com",
			Name:     "Test Shopper",
			Password: "s3cret-pass",
		})

		require.NoError(t, err)
		assert.Equal(t, "shopper@example.com", result.User.Email)
		assert.Equal(t, "customer", result.User.Role)
		assert.NotEmpty(t, result.Token.AccessToken)
		assert.NotEmpty(t, result.Token.RefreshToken)
		assert.Equal(t, "Bearer", result.Token.TokenType)
		repo.AssertExpectations(t)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestAuthService(repo)

		repo.On("ExistsByEmail", ctx, "shopper@example.com").Return(true, nil)

		_, err := service.Register(ctx, RegisterRequest{
			Email:    "shopper@example.com",
			Name:     "Test Shopper",
			Password: "s3cret-pass",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects weak password", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestAuthService(repo)

		repo.On("ExistsByEmail", ctx, "shopper@example.com").Return(false, nil)

		_, err := service.Register(ctx, RegisterRequest{
			Email:    "shopper@example.com",
			Name:     "Test Shopper",
			Password: "short",
		})

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Create")
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("returns tokens for valid credentials", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestAuthService(repo)
		user := newTestUser(t)

		repo.On("FindByEmail", ctx, "shopper@example.com").Return(user, nil)
		repo.On("Update", ctx, user).Return(nil)

		result, err := service.Login(ctx, LoginRequest{
			Email:    "shopper@example.com",
			Password: "s3cret-pass",
		})

		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)
		assert.NotEmpty(t, result.Token.AccessToken)
		assert.NotNil(t, user.LastLoginAt)
		repo.AssertExpectations(t)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestAuthService(repo)
		user := newTestUser(t)

		repo.On("FindByEmail", ctx, "shopper@example.com").Return(user, nil)

		_, err := service.Login(ctx, LoginRequest{
			Email:    "shopper@example.com",
			Password: "wrong-password",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})

	t.Run("returns same error for unknown email", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestAuthService(repo)

		repo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, shared.ErrNotFound)

		_, err := service.Login(ctx, LoginRequest{
			Email:    "nobody@example.com",
			Password: "s3cret-pass",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})

	t.Run("rejects deactivated account", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestAuthService(repo)
		user := newTestUser(t)
		require.NoError(t, user.Deactivate())

		repo.On("FindByEmail", ctx, "shopper@example.com").Return(user, nil)

		_, err := service.Login(ctx, LoginRequest{
			Email:    "shopper@example.com",
			Password: "s3cret-pass",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_INACTIVE", domainErr.Code)
	})

	t.Run("succeeds even when login timestamp update fails", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestAuthService(repo)
		user := newTestUser(t)

		repo.On("FindByEmail", ctx, "shopper@example.com").Return(user, nil)
		repo.On("Update", ctx, user).Return(errors.New("db unavailable"))

		result, err := service.Login(ctx, LoginRequest{
			Email:    "shopper@example.com",
			Password: "s3cret-pass",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, result.Token.AccessToken)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()

	login := func(t *testing.T, service *AuthService, repo *MockUserRepository, user *identity.User) *AuthResponse {
		t.Helper()
		repo.On("FindByEmail", ctx, user.Email).Return(user, nil).Once()
		repo.On("Update", ctx, user).Return(nil).Once()
		result, err := service.Login(ctx, LoginRequest{Email: user.Email, Password: "s3cret-pass"})
		require.NoError(t, err)
		return result
	}

	t.Run("issues new pair for valid refresh token", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestAuthService(repo)
		user := newTestUser(t)
		session := login(t, service, repo, user)

		repo.On("FindByID", ctx, user.ID).Return(user, nil)

		refreshed, err := service.RefreshToken(ctx, RefreshTokenRequest{
			RefreshToken: session.Token.RefreshToken,
		})

		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.AccessToken)
		assert.NotEmpty(t, refreshed.RefreshToken)
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestAuthService(repo)

		_, err := service.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: "not-a-jwt"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TOKEN_INVALID", domainErr.Code)
	})

	t.Run("rejects access token used as refresh token", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestAuthService(repo)
		user := newTestUser(t)
		session := login(t, service, repo, user)

		_, err := service.RefreshToken(ctx, RefreshTokenRequest{
			RefreshToken: session.Token.AccessToken,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TOKEN_INVALID", domainErr.Code)
	})

	t.Run("rejects refresh after all sessions revoked", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestAuthService(repo)
		user := newTestUser(t)
		session := login(t, service, repo, user)

		// revocation timestamps have second granularity
		time.Sleep(1100 * time.Millisecond)
		require.NoError(t, service.LogoutAll(ctx, user.ID))

		_, err := service.RefreshToken(ctx, RefreshTokenRequest{
			RefreshToken: session.Token.RefreshToken,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TOKEN_REVOKED", domainErr.Code)
	})

	t.Run("rejects refresh for deactivated account", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestAuthService(repo)
		user := newTestUser(t)
		session := login(t, service, repo, user)

		require.NoError(t, user.Deactivate())
		repo.On("FindByID", ctx, user.ID).Return(user, nil)

		_, err := service.RefreshToken(ctx, RefreshTokenRequest{
			RefreshToken: session.Token.RefreshToken,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_INACTIVE", domainErr.Code)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("blacklists the access token", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, blacklist := newTestAuthService(repo)
		user := newTestUser(t)

		repo.On("FindByEmail", ctx, user.Email).Return(user, nil)
		repo.On("Update", ctx, user).Return(nil)
		session, err := service.Login(ctx, LoginRequest{Email: user.Email, Password: "s3cret-pass"})
		require.NoError(t, err)

		claims, err := newTestJWTService().ValidateAccessToken(session.Token.AccessToken)
		require.NoError(t, err)

		require.NoError(t, service.Logout(ctx, claims))

		blacklisted, err := blacklist.IsBlacklisted(ctx, claims.ID)
		require.NoError(t, err)
		assert.True(t, blacklisted)
	})
}
