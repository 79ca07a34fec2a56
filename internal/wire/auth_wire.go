package wire

import (
	"workspace-hub/internal/adaptor"
	"workspace-hub/internal/data/repository"
	"workspace-hub/pkg/middleware"
	"workspace-hub/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Post("/api/register", authHandler.Register)
	r.Post("/api/verify-registration", authHandler.VerifyRegistration)
	r.Post("/api/resend-otp", authHandler.ResendOTP)
	r.Post("/api/login", authHandler.Login)
	r.Post("/api/refresh", authHandler.Refresh)
	r.Post("/api/forgot-password", authHandler.ForgotPassword)
	r.Post("/api/verify-reset-otp", authHandler.VerifyResetOTP)
	r.Put("/api/complete-reset", authHandler.CompleteReset)

	// ==================== PROTECTED ROUTES ====================
	r.With(middleware.Auth(config.JWT, repo, log)).Post("/api/logout", authHandler.Logout)
}
