package usecase

import (
	"context"
	"time"

	"workspace-hub/internal/data/repository"
	"workspace-hub/pkg/utils"

	"go.uber.org/zap"
)

// Sweeper periodically purges expired OTP rows and revoked tokens that
// have outlived every token they could match.
type Sweeper struct {
	otp       OTPService
	blacklist repository.BlacklistRepository
	config    utils.SweepConfig
	log       *zap.Logger
}

func NewSweeper(
	otp OTPService,
	blacklist repository.BlacklistRepository,
	config utils.SweepConfig,
	log *zap.Logger,
) *Sweeper {
	return &Sweeper{
		otp:       otp,
		blacklist: blacklist,
		config:    config,
		log:       log.With(zap.String("component", "sweeper")),
	}
}

// Start runs the sweep loop until ctx is cancelled. It returns
// immediately when sweeping is disabled.
func (s *Sweeper) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.log.Info("Sweeper disabled")
		return
	}

	interval := time.Duration(s.config.IntervalMinutes) * time.Minute
	s.log.Info("Sweeper started", zap.Duration("interval", interval))

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.log.Info("Sweeper stopped")
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *Sweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.otp.SweepExpired(sweepCtx); err != nil {
		s.log.Error("OTP sweep failed", zap.Error(err))
	}

	deleted, err := s.blacklist.DeleteOlderThan(sweepCtx, s.config.TokenRetentionDays)
	if err != nil {
		s.log.Error("Token blacklist sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.log.Info("Stale revoked tokens swept", zap.Int64("deleted", deleted))
	}
}
