package adaptor

import (
	"workspace-hub/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth      *AuthHandler
	OAuth     *OAuthHandler
	User      *UserHandler
	Workspace *WorkspaceHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(service.Auth, log),
		OAuth:     NewOAuthHandler(service.OAuth, log),
		User:      NewUserHandler(service.User, log),
		Workspace: NewWorkspaceHandler(service.Workspace, log),
	}
}
