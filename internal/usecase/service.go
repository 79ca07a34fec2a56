package usecase

import (
	"workspace-hub/internal/data/repository"
	"workspace-hub/pkg/cache"
	"workspace-hub/pkg/mail"
	"workspace-hub/pkg/oauth"
	"workspace-hub/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth      AuthService
	OTP       OTPService
	OAuth     OAuthService
	User      UserService
	Workspace WorkspaceService
}

func NewService(
	repo *repository.Repository,
	providers oauth.Providers,
	kv cache.KVStore,
	mailer mail.Mailer,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	otp := NewOTPService(repo.OTP, mailer, config, log)

	return &Service{
		Auth:      NewAuthService(repo, otp, config, log),
		OTP:       otp,
		OAuth:     NewOAuthService(repo, providers, kv, config, log),
		User:      NewUserService(repo, log),
		Workspace: NewWorkspaceService(repo, mailer, log),
	}
}
