package usecase

import (
	"context"
	"testing"
	"time"

	"workspace-hub/internal/data/entity"
	"workspace-hub/internal/dto/request"
	"workspace-hub/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestChangePasswordSetsFirstPasswordForOAuthAccount(t *testing.T) {
	repo, users, _, _, _, _, _ := newTestRepository()
	svc := NewUserService(repo, zap.NewNop())
	ctx := context.Background()

	now := time.Now()
	user := &entity.User{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Username:      "oauthonly",
		Email:         "oauthonly@example.com",
		EmailVerified: true,
		IsActive:      true,
	}
	require.NoError(t, users.Create(ctx, user))
	require.False(t, user.HasPassword())

	require.NoError(t, svc.ChangePassword(ctx, user.ID, &request.ChangePasswordRequest{
		Password:  "Brand1New!",
		Password2: "Brand1New!",
	}))

	stored, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, stored.HasPassword())
	assert.True(t, utils.CheckPasswordHash("Brand1New!", *stored.PasswordHash))
}

func TestDeactivateRevokesTokenAndFlipsFlag(t *testing.T) {
	repo, users, _, blacklist, _, _, _ := newTestRepository()
	svc := NewUserService(repo, zap.NewNop())
	ctx := context.Background()

	now := time.Now()
	user := &entity.User{
		Base:     entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Username: "leaver",
		Email:    "leaver@example.com",
		IsActive: true,
	}
	require.NoError(t, users.Create(ctx, user))

	require.NoError(t, svc.Deactivate(ctx, user.ID, "the-access-token"))

	stored, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	revoked, err := blacklist.IsRevoked(ctx, "the-access-token")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestDeleteAccountRemovesUser(t *testing.T) {
	repo, users, _, blacklist, _, _, _ := newTestRepository()
	svc := NewUserService(repo, zap.NewNop())
	ctx := context.Background()

	now := time.Now()
	user := &entity.User{
		Base:     entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Username: "gone",
		Email:    "gone@example.com",
		IsActive: true,
	}
	require.NoError(t, users.Create(ctx, user))

	require.NoError(t, svc.DeleteAccount(ctx, user.ID, "their-token"))

	stored, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	revoked, err := blacklist.IsRevoked(ctx, "their-token")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Deleting again reports not found
	err = svc.DeleteAccount(ctx, user.ID, "their-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not found")
}

func TestGetProfile(t *testing.T) {
	repo, users, _, _, _, _, _ := newTestRepository()
	svc := NewUserService(repo, zap.NewNop())
	ctx := context.Background()

	_, err := svc.GetProfile(ctx, uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not found")

	now := time.Now()
	user := &entity.User{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Username:      "profiled",
		Email:         "profiled@example.com",
		EmailVerified: true,
		IsActive:      true,
	}
	require.NoError(t, users.Create(ctx, user))

	profile, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "profiled", profile.Username)
	assert.True(t, profile.IsVerified)
}
