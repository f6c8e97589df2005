package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yatube/backend/internal/domain/identity"
	"github.com/yatube/backend/internal/domain/shared"
	"github.com/yatube/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates named user", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("ExistsByUsername", ctx, "leo").Return(false, nil)
		userRepo.On("Create", ctx, mock.MatchedBy(func(u *identity.User) bool {
			return u.Username == "leo" && u.IsActive && u.VerifyPassword("Password123")
		})).Return(nil)
		service := NewUserService(userRepo, nil, time.Hour, zap.NewNop())

		info, err := service.Create(ctx, CreateUserInput{
			Username:  "leo",
			Password:  "Password123",
			FirstName: "Лев",
			LastName:  "Толстой",
		})

		require.NoError(t, err)
		assert.Equal(t, "Лев Толстой", info.FullName)
		userRepo.AssertExpectations(t)
	})

	t.Run("rejects taken username", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("ExistsByUsername", ctx, "leo").Return(true, nil)
		service := NewUserService(userRepo, nil, time.Hour, zap.NewNop())

		_, err := service.Create(ctx, CreateUserInput{Username: "leo", Password: "Password123"})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects short password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("ExistsByUsername", ctx, "leo").Return(false, nil)
		service := NewUserService(userRepo, nil, time.Hour, zap.NewNop())

		_, err := service.Create(ctx, CreateUserInput{Username: "leo", Password: "short"})

		assert.Error(t, err)
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes user and revokes sessions", func(t *testing.T) {
		user := createTestUser(t)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByUsername", ctx, "Test").Return(user, nil)
		userRepo.On("Delete", ctx, user.ID).Return(nil)
		blacklist := auth.NewInMemoryTokenBlacklist()
		service := NewUserService(userRepo, blacklist, time.Hour, zap.NewNop())

		require.NoError(t, service.Delete(ctx, "Test"))

		invalidated, err := blacklist.IsUserTokenInvalidated(ctx, user.ID.String(), time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.True(t, invalidated)
		userRepo.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("FindByUsername", ctx, "nobody").Return(nil, shared.ErrNotFound)
		service := NewUserService(userRepo, nil, time.Hour, zap.NewNop())

		assert.ErrorIs(t, service.Delete(ctx, "nobody"), shared.ErrNotFound)
		userRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestUserService_GetByUsername(t *testing.T) {
	ctx := context.Background()
	user := createTestUser(t)
	userRepo := new(MockUserRepository)
	userRepo.On("FindByUsername", ctx, "Test").Return(user, nil)
	service := NewUserService(userRepo, nil, time.Hour, zap.NewNop())

	info, err := service.GetByUsername(ctx, "Test")

	require.NoError(t, err)
	assert.Equal(t, user.ID, info.ID)
	assert.Equal(t, "Test", info.FullName)
}

func TestUserService_SetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces password and revokes sessions", func(t *testing.T) {
		user := createTestUser(t)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByUsername", ctx, "Test").Return(user, nil)
		userRepo.On("Update", ctx, mock.MatchedBy(func(u *identity.User) bool {
			return u.VerifyPassword("NewPassword456") && !u.VerifyPassword("Password123")
		})).Return(nil)
		blacklist := auth.NewInMemoryTokenBlacklist()
		service := NewUserService(userRepo, blacklist, time.Hour, zap.NewNop())

		require.NoError(t, service.SetPassword(ctx, "Test", "NewPassword456"))

		invalidated, err := blacklist.IsUserTokenInvalidated(ctx, user.ID.String(), time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.True(t, invalidated)
		userRepo.AssertExpectations(t)
	})

	t.Run("rejects short password", func(t *testing.T) {
		user := createTestUser(t)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByUsername", ctx, "Test").Return(user, nil)
		service := NewUserService(userRepo, nil, time.Hour, zap.NewNop())

		assert.Error(t, service.SetPassword(ctx, "Test", "short"))
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("FindByUsername", ctx, "nobody").Return(nil, shared.ErrNotFound)
		service := NewUserService(userRepo, nil, time.Hour, zap.NewNop())

		assert.ErrorIs(t, service.SetPassword(ctx, "nobody", "NewPassword456"), shared.ErrNotFound)
	})
}

func TestUserService_SetActive(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivation blocks login and revokes sessions", func(t *testing.T) {
		user := createTestUser(t)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByUsername", ctx, "Test").Return(user, nil)
		userRepo.On("Update", ctx, mock.MatchedBy(func(u *identity.User) bool {
			return !u.IsActive
		})).Return(nil)
		blacklist := auth.NewInMemoryTokenBlacklist()
		service := NewUserService(userRepo, blacklist, time.Hour, zap.NewNop())

		require.NoError(t, service.SetActive(ctx, "Test", false))

		invalidated, err := blacklist.IsUserTokenInvalidated(ctx, user.ID.String(), time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.True(t, invalidated)
		userRepo.AssertExpectations(t)
	})

	t.Run("activation keeps sessions", func(t *testing.T) {
		user := createTestUser(t)
		user.Deactivate()
		userRepo := new(MockUserRepository)
		userRepo.On("FindByUsername", ctx, "Test").Return(user, nil)
		userRepo.On("Update", ctx, mock.MatchedBy(func(u *identity.User) bool {
			return u.IsActive
		})).Return(nil)
		blacklist := auth.NewInMemoryTokenBlacklist()
		service := NewUserService(userRepo, blacklist, time.Hour, zap.NewNop())

		require.NoError(t, service.SetActive(ctx, "Test", true))

		invalidated, err := blacklist.IsUserTokenInvalidated(ctx, user.ID.String(), time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.False(t, invalidated)
		userRepo.AssertExpectations(t)
	})
}
