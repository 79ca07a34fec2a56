package wire

import (
	"workspace-hub/internal/adaptor"
	"workspace-hub/internal/data/repository"
	"workspace-hub/pkg/middleware"
	"workspace-hub/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireUser configures account management routes, all authenticated
func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	auth := middleware.Auth(config.JWT, repo, log)

	r.With(auth).Get("/api/me", userHandler.Me)
	r.With(auth).Put("/api/reset-password", userHandler.ChangePassword)
	r.With(auth).Delete("/api/deactivate", userHandler.Deactivate)
	r.With(auth).Delete("/api/delete", userHandler.DeleteAccount)
}
