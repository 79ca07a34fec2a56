package wire

import (
	"workspace-hub/internal/adaptor"
	"workspace-hub/internal/data/repository"
	"workspace-hub/pkg/middleware"
	"workspace-hub/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireWorkspace configures workspace routes, all authenticated
func wireWorkspace(
	r chi.Router,
	workspaceHandler *adaptor.WorkspaceHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.With(middleware.Auth(config.JWT, repo, log)).Route("/api/workspaces", func(r chi.Router) {
		r.Post("/", workspaceHandler.Create)
		r.Get("/", workspaceHandler.ListMine)
		r.Post("/join", workspaceHandler.Join)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", workspaceHandler.Get)
			r.Patch("/", workspaceHandler.Update)
			r.Delete("/", workspaceHandler.Delete)
			r.Get("/members", workspaceHandler.Members)
			r.Delete("/members/{userId}", workspaceHandler.RemoveMember)
			r.Post("/invite", workspaceHandler.Invite)
		})
	})
}
