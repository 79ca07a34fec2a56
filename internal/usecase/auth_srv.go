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

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error)
	VerifyRegistration(ctx context.Context, req *request.VerifyRegistrationRequest) error
	ResendOTP(ctx context.Context, req *request.ResendOTPRequest) error
	Login(ctx context.Context, req *request.LoginRequest) (*response.TokenResponse, error)
	Refresh(ctx context.Context, req *request.RefreshRequest) (*response.TokenResponse, error)
	Logout(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error
	VerifyResetOTP(ctx context.Context, req *request.VerifyResetOTPRequest) (*response.ResetTokenResponse, error)
	CompleteReset(ctx context.Context, req *request.CompleteResetRequest) error
}

type authService struct {
	repo   *repository.Repository
	otp    OTPService
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	otp OTPService,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		otp:    otp,
		config: config,
		log:    log,
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Check email is unused
	existingUser, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to check email", zap.Error(err), zap.String("email", req.Email))
		return nil, fmt.Errorf("failed to check email")
	}
	if existingUser != nil {
		return nil, fmt.Errorf("email already registered")
	}

	// 3. Check username is unused
	existingUser, err = s.repo.User.FindByUsername(ctx, req.Username)
	if err != nil {
		s.log.Error("Failed to check username", zap.Error(err), zap.String("username", req.Username))
		return nil, fmt.Errorf("failed to check username")
	}
	if existingUser != nil {
		return nil, fmt.Errorf("username already taken")
	}

	// 4. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to process password")
	}

	// 5. Create user, unverified until the OTP round trip completes
	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:      req.Username,
		Email:         req.Email,
		PasswordHash:  &hashedPassword,
		EmailVerified: false,
		IsActive:      true,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.log.Error("Failed to create user", zap.Error(err), zap.String("email", req.Email))
		return nil, fmt.Errorf("failed to create account")
	}

	// 6. Issue verification OTP. A lockout on the pair blocks registration
	// from completing; the unverified account stays behind for ResendOTP.
	if err := s.otp.Issue(ctx, user.Email, entity.OTPPurposeRegistration); err != nil {
		return nil, err
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))
	return response.UserToResponse(user), nil
}

func (s *authService) VerifyRegistration(ctx context.Context, req *request.VerifyRegistrationRequest) error {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Verify registration validation failed", zap.Any("errors", errs))
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Check the code
	if err := s.otp.Verify(ctx, req.Email, req.OTP, entity.OTPPurposeRegistration); err != nil {
		return err
	}

	// 3. Mark the account verified
	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to find user for verification", zap.Error(err), zap.String("email", req.Email))
		return fmt.Errorf("failed to verify email")
	}
	if user == nil {
		return fmt.Errorf("user not found")
	}

	user.EmailVerified = true
	user.UpdatedAt = time.Now()
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to update user verification", zap.Error(err), zap.String("user_id", user.ID.String()))
		return fmt.Errorf("failed to verify email")
	}

	s.log.Info("Email verified",
		zap.String("email", req.Email),
		zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) ResendOTP(ctx context.Context, req *request.ResendOTPRequest) error {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Resend OTP validation failed", zap.Any("errors", errs))
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Silently succeed for unknown emails
	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to find user for OTP resend", zap.Error(err), zap.String("email", req.Email))
		return fmt.Errorf("failed to resend OTP")
	}
	if user == nil {
		s.log.Info("OTP resend requested for unknown email", zap.String("email", req.Email))
		return nil
	}

	purpose := entity.OTPPurpose(req.Purpose)
	if purpose == entity.OTPPurposeRegistration && user.EmailVerified {
		return fmt.Errorf("email already verified")
	}

	// 3. Reissue, invalidating the previous code
	return s.otp.Issue(ctx, user.Email, purpose)
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.TokenResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Find user by email, then by username
	user, err := s.repo.User.FindByEmail(ctx, req.Username)
	if err != nil {
		s.log.Error("Failed to find user by email", zap.Error(err), zap.String("identifier", req.Username))
		return nil, fmt.Errorf("failed to find user")
	}
	if user == nil {
		user, err = s.repo.User.FindByUsername(ctx, req.Username)
		if err != nil {
			s.log.Error("Failed to find user by username", zap.Error(err), zap.String("identifier", req.Username))
			return nil, fmt.Errorf("failed to find user")
		}
	}
	if user == nil {
		s.log.Warn("User not found for login", zap.String("identifier", req.Username))
		return nil, fmt.Errorf("invalid credentials")
	}

	// 3. Accounts created through OAuth have no password to check
	if !user.HasPassword() || !utils.CheckPasswordHash(req.Password, *user.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("invalid credentials")
	}

	// 4. Unverified accounts cannot log in
	if !user.EmailVerified {
		s.log.Warn("Unverified user tried to login", zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("email not verified")
	}

	// 5. A successful login reactivates a deactivated account
	if !user.IsActive {
		user.IsActive = true
		user.UpdatedAt = time.Now()
		if err := s.repo.User.Update(ctx, user); err != nil {
			s.log.Error("Failed to reactivate account", zap.Error(err), zap.String("user_id", user.ID.String()))
			return nil, fmt.Errorf("failed to login")
		}
		s.log.Info("Account reactivated on login", zap.String("user_id", user.ID.String()))
	}

	// 6. Issue token pair
	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))
	return tokens, nil
}

func (s *authService) Refresh(ctx context.Context, req *request.RefreshRequest) (*response.TokenResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Decode and check the token is a refresh token
	claims, err := utils.DecodeToken(s.config.JWT, req.RefreshToken)
	if err != nil || claims.Type != utils.TokenTypeRefresh {
		s.log.Warn("Invalid refresh token", zap.Error(err))
		return nil, fmt.Errorf("invalid refresh token")
	}

	// 3. Revoked tokens stay dead
	revoked, err := s.repo.Blacklist.IsRevoked(ctx, req.RefreshToken)
	if err != nil {
		s.log.Error("Failed to check token revocation", zap.Error(err))
		return nil, fmt.Errorf("failed to refresh token")
	}
	if revoked {
		return nil, fmt.Errorf("invalid refresh token")
	}

	// 4. The subject must still be a live account
	userID, err := utils.ParseUUID(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to find user for refresh", zap.Error(err), zap.String("user_id", claims.UserID))
		return nil, fmt.Errorf("failed to refresh token")
	}
	if user == nil || !user.IsActive {
		return nil, fmt.Errorf("invalid refresh token")
	}

	// 5. Rotate: revoke the used refresh token, issue a new pair
	if err := s.revoke(ctx, req.RefreshToken); err != nil {
		s.log.Error("Failed to rotate refresh token", zap.Error(err), zap.String("user_id", claims.UserID))
		return nil, fmt.Errorf("failed to refresh token")
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	s.log.Info("Tokens refreshed", zap.String("user_id", user.ID.String()))
	return tokens, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.revoke(ctx, token); err != nil {
		s.log.Error("Failed to revoke token on logout", zap.Error(err))
		return fmt.Errorf("failed to logout")
	}
	s.log.Info("User logged out")
	return nil
}

func (s *authService) ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Unknown emails get the same success the known ones do
	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to find user for password reset", zap.Error(err), zap.String("email", req.Email))
		return fmt.Errorf("failed to process request")
	}
	if user == nil {
		s.log.Info("Password reset requested for unknown email", zap.String("email", req.Email))
		return nil
	}

	// 3. Issue the reset code
	return s.otp.Issue(ctx, user.Email, entity.OTPPurposePasswordReset)
}

func (s *authService) VerifyResetOTP(ctx context.Context, req *request.VerifyResetOTPRequest) (*response.ResetTokenResponse, error) {
	// 1. Only the token flow trades an OTP for a reset token
	if s.config.App.ResetFlow != utils.ResetFlowToken {
		return nil, fmt.Errorf("password reset does not use reset tokens")
	}

	// 2. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 3. Consume the code
	if err := s.otp.Verify(ctx, req.Email, req.OTP, entity.OTPPurposePasswordReset); err != nil {
		return nil, err
	}

	// 4. Mint a short-lived reset token
	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil || user == nil {
		s.log.Error("Failed to find user after reset OTP", zap.Error(err), zap.String("email", req.Email))
		return nil, fmt.Errorf("user not found")
	}

	resetToken, err := utils.GenerateResetToken(s.config.JWT, user.ID, user.Email)
	if err != nil {
		s.log.Error("Failed to generate reset token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("failed to generate reset token")
	}

	s.log.Info("Reset token issued", zap.String("user_id", user.ID.String()))
	return &response.ResetTokenResponse{
		ResetToken: resetToken,
		ExpiresIn:  s.config.JWT.ResetExpirySeconds,
	}, nil
}

func (s *authService) CompleteReset(ctx context.Context, req *request.CompleteResetRequest) error {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	var user *entity.User
	switch s.config.App.ResetFlow {
	case utils.ResetFlowToken:
		u, err := s.userFromResetToken(ctx, req.ResetToken)
		if err != nil {
			return err
		}
		user = u
	default:
		// Direct flow verifies email and code in the same request
		if req.Email == "" || req.OTP == "" {
			return fmt.Errorf("validation failed: email and otp_code are required")
		}
		if err := s.otp.Verify(ctx, req.Email, req.OTP, entity.OTPPurposePasswordReset); err != nil {
			return err
		}
		u, err := s.repo.User.FindByEmail(ctx, req.Email)
		if err != nil || u == nil {
			s.log.Error("Failed to find user for reset", zap.Error(err), zap.String("email", req.Email))
			return fmt.Errorf("user not found")
		}
		user = u
	}

	// 2. Store the new password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return fmt.Errorf("failed to process password")
	}
	user.PasswordHash = &hashedPassword
	user.UpdatedAt = time.Now()
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to update password", zap.Error(err), zap.String("user_id", user.ID.String()))
		return fmt.Errorf("failed to reset password")
	}

	// 3. Burn the reset token so it cannot be replayed
	if s.config.App.ResetFlow == utils.ResetFlowToken {
		if err := s.revoke(ctx, req.ResetToken); err != nil {
			s.log.Warn("Failed to revoke reset token", zap.Error(err), zap.String("user_id", user.ID.String()))
		}
	}

	s.log.Info("Password reset completed", zap.String("user_id", user.ID.String()))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *authService) issueTokens(user *entity.User) (*response.TokenResponse, error) {
	accessToken, err := utils.GenerateAccessToken(s.config.JWT, user.ID, user.Email)
	if err != nil {
		s.log.Error("Failed to generate access token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("failed to generate tokens")
	}
	refreshToken, err := utils.GenerateRefreshToken(s.config.JWT, user.ID, user.Email)
	if err != nil {
		s.log.Error("Failed to generate refresh token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("failed to generate tokens")
	}
	return response.TokensToResponse(accessToken, refreshToken, user), nil
}

func (s *authService) userFromResetToken(ctx context.Context, resetToken string) (*entity.User, error) {
	if resetToken == "" {
		return nil, fmt.Errorf("validation failed: reset_token is required")
	}

	claims, err := utils.DecodeToken(s.config.JWT, resetToken)
	if err != nil || claims.Type != utils.TokenTypeReset {
		s.log.Warn("Invalid reset token", zap.Error(err))
		return nil, fmt.Errorf("invalid or expired reset token")
	}

	revoked, err := s.repo.Blacklist.IsRevoked(ctx, resetToken)
	if err != nil {
		s.log.Error("Failed to check reset token revocation", zap.Error(err))
		return nil, fmt.Errorf("failed to reset password")
	}
	if revoked {
		return nil, fmt.Errorf("invalid or expired reset token")
	}

	userID, err := utils.ParseUUID(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired reset token")
	}
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to find user for reset", zap.Error(err), zap.String("user_id", claims.UserID))
		return nil, fmt.Errorf("failed to reset password")
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}
	return user, nil
}

func (s *authService) revoke(ctx context.Context, token string) error {
	return s.repo.Blacklist.Add(ctx, &entity.RevokedToken{
		Token:     token,
		RevokedAt: time.Now(),
	})
}
