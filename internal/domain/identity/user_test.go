package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates customer with valid fields", func(t *testing.T) {
		user, err := NewUser("shopper@example.com", "Jane Shopper", "Password123")

		require.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "shopper@example.com", user.Email)
		assert.Equal(t, "Jane Shopper", user.Name)
		assert.NotEmpty(t, user.PasswordHash)
		assert.Equal(t, RoleCustomer, user.Role)
		assert.Equal(t, UserStatusActive, user.Status)

		events := user.GetDomainEvents()
		assert.Len(t, events, 1)
		_, ok := events[0].(*UserRegisteredEvent)
		assert.True(t, ok)
	})

	t.Run("normalizes email to lowercase", func(t *testing.T) {
		user, err := NewUser("Shopper@Example.COM", "Jane", "Password123")

		require.NoError(t, err)
		assert.Equal(t, "shopper@example.com", user.Email)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		user, err := NewUser("  shopper@example.com  ", "  Jane  ", "Password123")

		require.NoError(t, err)
		assert.Equal(t, "shopper@example.com", user.Email)
		assert.Equal(t, "Jane", user.Name)
	})

	t.Run("fails with empty email", func(t *testing.T) {
		_, err := NewUser("", "Jane", "Password123")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("fails with malformed email", func(t *testing.T) {
		_, err := NewUser("not-an-email", "Jane", "Password123")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "format is invalid")
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewUser("shopper@example.com", "", "Password123")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Name cannot be empty")
	})

	t.Run("fails with short password", func(t *testing.T) {
		_, err := NewUser("shopper@example.com", "Jane", "short")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least 8 characters")
	})

	t.Run("fails with overlong password", func(t *testing.T) {
		_, err := NewUser("shopper@example.com", "Jane", strings.Repeat("p", 73))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed 72 characters")
	})

	t.Run("password is not stored in clear", func(t *testing.T) {
		user, err := NewUser("shopper@example.com", "Jane", "Password123")

		require.NoError(t, err)
		assert.NotContains(t, user.PasswordHash, "Password123")
	})
}

func TestNewAdminUser(t *testing.T) {
	user, err := NewAdminUser("admin@example.com", "Admin", "Password123")

	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, user.Role)
	assert.True(t, user.IsAdmin())
}

func TestUser_VerifyPassword(t *testing.T) {
	user, err := NewUser("shopper@example.com", "Jane", "Password123")
	require.NoError(t, err)

	assert.True(t, user.VerifyPassword("Password123"))
	assert.False(t, user.VerifyPassword("WrongPassword"))
}

func TestUser_ChangePassword(t *testing.T) {
	t.Run("changes password with correct old password", func(t *testing.T) {
		user, err := NewUser("shopper@example.com", "Jane", "Password123")
		require.NoError(t, err)

		err = user.ChangePassword("Password123", "NewPassword456")

		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("NewPassword456"))
		assert.False(t, user.VerifyPassword("Password123"))
	})

	t.Run("rejects wrong old password", func(t *testing.T) {
		user, err := NewUser("shopper@example.com", "Jane", "Password123")
		require.NoError(t, err)

		err = user.ChangePassword("WrongPassword", "NewPassword456")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Current password is incorrect")
	})
}

func TestUser_SetEmail(t *testing.T) {
	user, err := NewUser("shopper@example.com", "Jane", "Password123")
	require.NoError(t, err)
	initialVersion := user.GetVersion()

	require.NoError(t, user.SetEmail("New@Example.com"))

	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, initialVersion+1, user.GetVersion())
}

func TestUser_PromoteToAdmin(t *testing.T) {
	user, err := NewUser("shopper@example.com", "Jane", "Password123")
	require.NoError(t, err)

	require.NoError(t, user.PromoteToAdmin())
	assert.True(t, user.IsAdmin())

	err = user.PromoteToAdmin()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already an administrator")
}

func TestUser_Deactivate(t *testing.T) {
	user, err := NewUser("shopper@example.com", "Jane", "Password123")
	require.NoError(t, err)
	user.ClearDomainEvents()

	require.NoError(t, user.Deactivate())
	assert.False(t, user.IsActive())

	events := user.GetDomainEvents()
	assert.Len(t, events, 1)
	_, ok := events[0].(*UserDeactivatedEvent)
	assert.True(t, ok)

	err = user.Deactivate()
	assert.Error(t, err)
}

func TestUser_RecordLogin(t *testing.T) {
	user, err := NewUser("shopper@example.com", "Jane", "Password123")
	require.NoError(t, err)
	assert.Nil(t, user.LastLoginAt)

	user.RecordLogin()

	assert.NotNil(t, user.LastLoginAt)
}
