package wire

import (
	"workspace-hub/internal/adaptor"
	"workspace-hub/internal/data/repository"
	"workspace-hub/pkg/middleware"
	"workspace-hub/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireOAuth(
	r chi.Router,
	oauthHandler *adaptor.OAuthHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	auth := middleware.Auth(config.JWT, repo, log)

	// ==================== PUBLIC ROUTES ====================
	// The linked-accounts route is registered before the {provider}
	// wildcards so "accounts" is never treated as a provider name.
	r.With(auth).Get("/api/oauth/accounts", oauthHandler.Accounts)

	r.Get("/api/oauth/{provider}/login", oauthHandler.Authorize)
	r.Get("/api/oauth/{provider}/callback", oauthHandler.Callback)
	r.Post("/api/oauth/{provider}/callback", oauthHandler.Callback)

	// ==================== PROTECTED ROUTES ====================
	r.With(auth).Post("/api/oauth/{provider}/link", oauthHandler.Link)
	r.With(auth).Delete("/api/oauth/{provider}/unlink", oauthHandler.Unlink)
}
