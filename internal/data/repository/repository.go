package repository

import (
	"workspace-hub/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User            UserRepository
	OTP             OTPRepository
	OAuth           OAuthRepository
	Blacklist       BlacklistRepository
	Workspace       WorkspaceRepository
	WorkspaceMember WorkspaceMemberRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:            NewUserRepository(db, log),
		OTP:             NewOTPRepository(db, log),
		OAuth:           NewOAuthRepository(db, log),
		Blacklist:       NewBlacklistRepository(db, log),
		Workspace:       NewWorkspaceRepository(db, log),
		WorkspaceMember: NewWorkspaceMemberRepository(db, log),
	}
}
