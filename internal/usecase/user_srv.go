package usecase

import (
	"context"
	"fmt"
	"time"

	"workspace-hub/internal/data/entity"
	"workspace-hub/internal/data/repository"
	"workspace-hub/internal/dto/request"
	"workspace-hub/internal/dto/response"
	"workspace-hub/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req *request.ChangePasswordRequest) error
	Deactivate(ctx context.Context, userID uuid.UUID, token string) error
	DeleteAccount(ctx context.Context, userID uuid.UUID, token string) error
}

type userService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewUserService(repo *repository.Repository, log *zap.Logger) UserService {
	return &userService{
		repo: repo,
		log:  log,
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.repo.User.FindByID(ctx, userID)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to get profile")
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	return response.UserToResponse(user), nil
}

// ChangePassword sets a new password for a logged-in user. It also gives
// OAuth-only accounts their first password.
func (us *userService) ChangePassword(ctx context.Context, userID uuid.UUID, req *request.ChangePasswordRequest) error {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		us.log.Warn("Change password validation failed", zap.Any("errors", errs))
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Load user
	user, err := us.repo.User.FindByID(ctx, userID)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return fmt.Errorf("failed to change password")
	}
	if user == nil {
		return fmt.Errorf("user not found")
	}

	// 3. Hash and store
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		us.log.Error("Failed to hash password", zap.Error(err))
		return fmt.Errorf("failed to process password")
	}
	user.PasswordHash = &hashedPassword
	user.UpdatedAt = time.Now()
	if err := us.repo.User.Update(ctx, user); err != nil {
		us.log.Error("Failed to update password", zap.Error(err), zap.String("user_id", userID.String()))
		return fmt.Errorf("failed to change password")
	}

	us.log.Info("Password changed", zap.String("user_id", userID.String()))
	return nil
}

// Deactivate flips the account inactive and revokes the presented token.
// The next successful login reactivates the account.
func (us *userService) Deactivate(ctx context.Context, userID uuid.UUID, token string) error {
	user, err := us.repo.User.FindByID(ctx, userID)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return fmt.Errorf("failed to deactivate account")
	}
	if user == nil {
		return fmt.Errorf("user not found")
	}

	user.IsActive = false
	user.UpdatedAt = time.Now()
	if err := us.repo.User.Update(ctx, user); err != nil {
		us.log.Error("Failed to deactivate account", zap.Error(err), zap.String("user_id", userID.String()))
		return fmt.Errorf("failed to deactivate account")
	}

	us.revokeToken(ctx, token, userID)

	us.log.Info("Account deactivated", zap.String("user_id", userID.String()))
	return nil
}

func (us *userService) DeleteAccount(ctx context.Context, userID uuid.UUID, token string) error {
	user, err := us.repo.User.FindByID(ctx, userID)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return fmt.Errorf("failed to delete account")
	}
	if user == nil {
		return fmt.Errorf("user not found")
	}

	if err := us.repo.User.Delete(ctx, userID); err != nil {
		us.log.Error("Failed to delete user", zap.Error(err), zap.String("user_id", userID.String()))
		return fmt.Errorf("failed to delete account")
	}

	us.revokeToken(ctx, token, userID)

	us.log.Info("Account deleted",
		zap.String("user_id", userID.String()),
		zap.String("email", user.Email))
	return nil
}

func (us *userService) revokeToken(ctx context.Context, token string, userID uuid.UUID) {
	if token == "" {
		return
	}
	err := us.repo.Blacklist.Add(ctx, &entity.RevokedToken{
		Token:     token,
		RevokedAt: time.Now(),
	})
	if err != nil {
		us.log.Warn("Failed to revoke token", zap.Error(err), zap.String("user_id", userID.String()))
	}
}
