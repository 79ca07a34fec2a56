package usecase

import (
	"context"
	"fmt"
	"time"

	"workspace-hub/internal/data/entity"
	"workspace-hub/internal/data/repository"
	"workspace-hub/pkg/mail"
	"workspace-hub/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OTPService interface {
	Issue(ctx context.Context, email string, purpose entity.OTPPurpose) error
	Verify(ctx context.Context, email, code string, purpose entity.OTPPurpose) error
	LockedUntil(ctx context.Context, email string, purpose entity.OTPPurpose) (int, error)
	SweepExpired(ctx context.Context) (int64, error)
}

type otpService struct {
	otpRepo repository.OTPRepository
	mailer  mail.Mailer
	config  *utils.Config
	log     *zap.Logger
}

func NewOTPService(
	otpRepo repository.OTPRepository,
	mailer mail.Mailer,
	config *utils.Config,
	log *zap.Logger,
) OTPService {
	return &otpService{
		otpRepo: otpRepo,
		mailer:  mailer,
		config:  config,
		log:     log,
	}
}

// Issue generates a fresh code for the (email, purpose) pair. Any previous
// code for the pair is invalidated, so only one code is ever live at a time.
func (s *otpService) Issue(ctx context.Context, email string, purpose entity.OTPPurpose) error {
	now := time.Now()

	// 1. Refuse while the pair is locked out
	latest, err := s.otpRepo.FindLatest(ctx, email, purpose)
	if err != nil {
		s.log.Error("Failed to check OTP lockout", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("failed to generate OTP")
	}
	if latest != nil && latest.Locked(now) {
		return fmt.Errorf("too many failed attempts, try again in %d minutes", latest.LockRemaining(now))
	}

	// 2. Generate and persist, replacing any prior code
	otp := &entity.OTP{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		Email:       email,
		Code:        utils.GenerateOTP(s.config.OTP.Length),
		Purpose:     purpose,
		ExpiresAt:   now.Add(time.Duration(s.config.OTP.ExpiryMinutes) * time.Minute),
		MaxAttempts: s.config.OTP.MaxAttempts,
	}
	if err := s.otpRepo.Replace(ctx, otp); err != nil {
		s.log.Error("Failed to save OTP", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("failed to generate OTP")
	}

	// 3. Deliver (async, delivery failure must not fail the request)
	go s.deliver(email, otp.Code, purpose)

	s.log.Info("OTP issued",
		zap.String("email", email),
		zap.String("purpose", string(purpose)),
		zap.Time("expires_at", otp.ExpiresAt))
	return nil
}

// Verify checks the submitted code against the live one for the pair. A
// correct, unexpired code is consumed. Every wrong or expired submission
// counts toward the lockout threshold.
func (s *otpService) Verify(ctx context.Context, email, code string, purpose entity.OTPPurpose) error {
	now := time.Now()

	// 1. Load the latest code for the pair
	latest, err := s.otpRepo.FindLatest(ctx, email, purpose)
	if err != nil {
		s.log.Error("Failed to load OTP", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("failed to verify OTP")
	}
	if latest == nil {
		return fmt.Errorf("invalid or expired OTP")
	}

	// 2. Locked pairs reject everything, even the right code
	if latest.Locked(now) {
		return fmt.Errorf("too many failed attempts, try again in %d minutes", latest.LockRemaining(now))
	}

	// 3. Expired or wrong code counts as a failed attempt
	if latest.Expired(now) || latest.Code != code {
		updated, ferr := s.otpRepo.RegisterFailure(ctx, latest.ID, s.config.OTP.LockoutMinutes)
		if ferr != nil {
			s.log.Error("Failed to record OTP attempt", zap.Error(ferr), zap.String("otp_id", latest.ID.String()))
			return fmt.Errorf("failed to verify OTP")
		}
		if updated == nil {
			return fmt.Errorf("invalid or expired OTP")
		}
		if updated.Locked(now) {
			s.log.Warn("OTP locked out",
				zap.String("email", email),
				zap.String("purpose", string(purpose)))
			return fmt.Errorf("too many failed attempts, try again in %d minutes", updated.LockRemaining(now))
		}
		if latest.Expired(now) {
			return fmt.Errorf("invalid or expired OTP")
		}
		remaining := latest.MaxAttempts - updated.FailedAttempts
		return fmt.Errorf("invalid OTP, %d attempts remaining", remaining)
	}

	// 4. Correct code is single use
	if err := s.otpRepo.Delete(ctx, latest.ID); err != nil {
		s.log.Error("Failed to consume OTP", zap.Error(err), zap.String("otp_id", latest.ID.String()))
		return fmt.Errorf("failed to verify OTP")
	}

	s.log.Info("OTP verified",
		zap.String("email", email),
		zap.String("purpose", string(purpose)))
	return nil
}

// LockedUntil reports remaining lockout minutes for the pair, 0 when open.
func (s *otpService) LockedUntil(ctx context.Context, email string, purpose entity.OTPPurpose) (int, error) {
	latest, err := s.otpRepo.FindLatest(ctx, email, purpose)
	if err != nil {
		return 0, fmt.Errorf("failed to check OTP lockout")
	}
	now := time.Now()
	if latest == nil || !latest.Locked(now) {
		return 0, nil
	}
	return latest.LockRemaining(now), nil
}

// SweepExpired purges dead codes. Rows still inside a lockout window are
// kept so the lockout survives until it elapses.
func (s *otpService) SweepExpired(ctx context.Context) (int64, error) {
	deleted, err := s.otpRepo.DeleteExpired(ctx)
	if err != nil {
		s.log.Error("Failed to sweep expired OTPs", zap.Error(err))
		return 0, fmt.Errorf("failed to sweep expired OTPs")
	}
	if deleted > 0 {
		s.log.Info("Expired OTPs swept", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

func (s *otpService) deliver(email, code string, purpose entity.OTPPurpose) {
	if err := s.mailer.SendOTP(email, code, purpose, ""); err != nil {
		s.log.Error("Failed to send OTP email",
			zap.Error(err),
			zap.String("email", email),
			zap.String("purpose", string(purpose)))
	}
}
