package usecase

import (
	"context"
	"fmt"
	"time"

	"workspace-hub/internal/data/entity"
	"workspace-hub/internal/data/repository"
	"workspace-hub/internal/dto/request"
	"workspace-hub/internal/dto/response"
	"workspace-hub/pkg/cache"
	"workspace-hub/pkg/oauth"
	"workspace-hub/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const oauthStatePrefix = "oauth_state:"

type OAuthService interface {
	AuthorizationURL(ctx context.Context, providerName string) (*response.AuthorizationURLResponse, error)
	HandleCallback(ctx context.Context, providerName string, req *request.OAuthCallbackRequest) (*response.TokenResponse, error)
	Link(ctx context.Context, userID uuid.UUID, providerName string, req *request.OAuthLinkRequest) error
	Unlink(ctx context.Context, userID uuid.UUID, providerName string) error
	LinkedAccounts(ctx context.Context, userID uuid.UUID) (*response.LinkedAccountsResponse, error)
}

type oauthService struct {
	repo      *repository.Repository
	providers oauth.Providers
	kv        cache.KVStore
	config    *utils.Config
	log       *zap.Logger
}

func NewOAuthService(
	repo *repository.Repository,
	providers oauth.Providers,
	kv cache.KVStore,
	config *utils.Config,
	log *zap.Logger,
) OAuthService {
	return &oauthService{
		repo:      repo,
		providers: providers,
		kv:        kv,
		config:    config,
		log:       log,
	}
}

// AuthorizationURL starts the flow: mints a CSRF state, parks it in the
// KV store with a TTL, and returns the provider redirect URL.
func (s *oauthService) AuthorizationURL(ctx context.Context, providerName string) (*response.AuthorizationURLResponse, error) {
	provider, ok := s.providers.Get(providerName)
	if !ok {
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}

	state, err := utils.GenerateStateToken()
	if err != nil {
		s.log.Error("Failed to generate state token", zap.Error(err))
		return nil, fmt.Errorf("failed to start authorization")
	}

	ttl := time.Duration(s.config.OAuth.StateTTLSeconds) * time.Second
	if err := s.kv.SetWithExpiry(ctx, oauthStatePrefix+state, providerName, ttl); err != nil {
		s.log.Error("Failed to store state token", zap.Error(err))
		return nil, fmt.Errorf("failed to start authorization")
	}

	authURL, err := provider.AuthorizationURL(state)
	if err != nil {
		s.log.Error("Failed to build authorization URL", zap.Error(err), zap.String("provider", providerName))
		return nil, fmt.Errorf("failed to start authorization")
	}

	return &response.AuthorizationURLResponse{
		AuthorizationURL: authURL,
		Provider:         providerName,
	}, nil
}

// HandleCallback finishes the flow: checks the state, exchanges the
// code, fetches the profile, reconciles it against local users and logs
// the result in.
func (s *oauthService) HandleCallback(ctx context.Context, providerName string, req *request.OAuthCallbackRequest) (*response.TokenResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	provider, ok := s.providers.Get(providerName)
	if !ok {
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}

	// 2. State must exist and is single use
	storedProvider, found, err := s.kv.Get(ctx, oauthStatePrefix+req.State)
	if err != nil {
		s.log.Error("Failed to check state token", zap.Error(err))
		return nil, fmt.Errorf("failed to complete authorization")
	}
	if !found || storedProvider != providerName {
		s.log.Warn("OAuth callback with bad state", zap.String("provider", providerName))
		return nil, fmt.Errorf("invalid or expired state")
	}
	if err := s.kv.Delete(ctx, oauthStatePrefix+req.State); err != nil {
		s.log.Warn("Failed to delete state token", zap.Error(err))
	}

	// 3. Exchange the code and fetch the profile
	profile, err := s.fetchProfile(ctx, provider, req.Code)
	if err != nil {
		return nil, err
	}

	// 4. Reconcile into a local user
	user, err := s.reconcile(ctx, providerName, profile)
	if err != nil {
		return nil, err
	}

	// 5. A provider login reactivates a deactivated account, same as a
	// password login
	if !user.IsActive {
		user.IsActive = true
		user.UpdatedAt = time.Now()
		if err := s.repo.User.Update(ctx, user); err != nil {
			s.log.Error("Failed to reactivate account", zap.Error(err), zap.String("user_id", user.ID.String()))
			return nil, fmt.Errorf("failed to login")
		}
	}

	// 6. Issue token pair
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

	s.log.Info("OAuth login",
		zap.String("provider", providerName),
		zap.String("user_id", user.ID.String()))
	return response.TokensToResponse(accessToken, refreshToken, user), nil
}

// Link attaches a provider identity to an already-authenticated user.
func (s *oauthService) Link(ctx context.Context, userID uuid.UUID, providerName string, req *request.OAuthLinkRequest) error {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	provider, ok := s.providers.Get(providerName)
	if !ok {
		return fmt.Errorf("unsupported provider: %s", providerName)
	}

	profile, err := s.fetchProfile(ctx, provider, req.Code)
	if err != nil {
		return err
	}

	// 2. An identity claimed by a different user cannot be relinked
	existing, err := s.repo.OAuth.FindByProviderID(ctx, providerName, profile.ProviderUserID)
	if err != nil {
		s.log.Error("Failed to check identity", zap.Error(err), zap.String("provider", providerName))
		return fmt.Errorf("failed to link account")
	}
	if existing != nil {
		if existing.UserID == userID {
			return nil
		}
		return fmt.Errorf("%s account already linked to another user", providerName)
	}

	// 3. Persist the link
	now := time.Now()
	account := &entity.OAuthAccount{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:         userID,
		Provider:       providerName,
		ProviderUserID: profile.ProviderUserID,
	}
	if err := s.repo.OAuth.Link(ctx, account); err != nil {
		s.log.Error("Failed to link identity", zap.Error(err),
			zap.String("provider", providerName),
			zap.String("user_id", userID.String()))
		return fmt.Errorf("failed to link account")
	}

	s.log.Info("OAuth account linked",
		zap.String("provider", providerName),
		zap.String("user_id", userID.String()))
	return nil
}

// Unlink removes a provider identity, refusing when it is the last way
// into the account.
func (s *oauthService) Unlink(ctx context.Context, userID uuid.UUID, providerName string) error {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to find user for unlink", zap.Error(err), zap.String("user_id", userID.String()))
		return fmt.Errorf("failed to unlink account")
	}
	if user == nil {
		return fmt.Errorf("user not found")
	}

	accounts, err := s.repo.OAuth.FindByUser(ctx, userID)
	if err != nil {
		s.log.Error("Failed to list identities", zap.Error(err), zap.String("user_id", userID.String()))
		return fmt.Errorf("failed to unlink account")
	}
	if !user.HasPassword() && len(accounts) <= 1 {
		return fmt.Errorf("cannot unlink the only authentication method")
	}

	removed, err := s.repo.OAuth.Unlink(ctx, userID, providerName)
	if err != nil {
		s.log.Error("Failed to unlink identity", zap.Error(err),
			zap.String("provider", providerName),
			zap.String("user_id", userID.String()))
		return fmt.Errorf("failed to unlink account")
	}
	if !removed {
		return fmt.Errorf("%s account not linked", providerName)
	}

	s.log.Info("OAuth account unlinked",
		zap.String("provider", providerName),
		zap.String("user_id", userID.String()))
	return nil
}

func (s *oauthService) LinkedAccounts(ctx context.Context, userID uuid.UUID) (*response.LinkedAccountsResponse, error) {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list linked accounts")
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	accounts, err := s.repo.OAuth.FindByUser(ctx, userID)
	if err != nil {
		s.log.Error("Failed to list identities", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list linked accounts")
	}

	return response.LinkedAccountsToResponse(accounts, user.HasPassword()), nil
}

// ==================== HELPER METHODS ====================

func (s *oauthService) fetchProfile(ctx context.Context, provider oauth.Provider, code string) (*oauth.Profile, error) {
	accessToken, err := provider.ExchangeCode(ctx, code)
	if err != nil {
		s.log.Warn("Code exchange failed", zap.Error(err), zap.String("provider", provider.Name()))
		return nil, fmt.Errorf("failed to exchange authorization code")
	}

	profile, err := provider.FetchProfile(ctx, accessToken)
	if err != nil {
		s.log.Warn("Profile fetch failed", zap.Error(err), zap.String("provider", provider.Name()))
		return nil, fmt.Errorf("failed to fetch user profile")
	}
	return profile, nil
}

// reconcile maps a provider profile onto a local user: an already-linked
// identity logs in, a matching email auto-links, anything else creates a
// verified account with no password.
func (s *oauthService) reconcile(ctx context.Context, providerName string, profile *oauth.Profile) (*entity.User, error) {
	// 1. Known identity
	identity, err := s.repo.OAuth.FindByProviderID(ctx, providerName, profile.ProviderUserID)
	if err != nil {
		s.log.Error("Failed to check identity", zap.Error(err), zap.String("provider", providerName))
		return nil, fmt.Errorf("failed to login")
	}
	if identity != nil {
		user, err := s.repo.User.FindByID(ctx, identity.UserID)
		if err != nil || user == nil {
			s.log.Error("Identity without user", zap.Error(err), zap.String("user_id", identity.UserID.String()))
			return nil, fmt.Errorf("failed to login")
		}
		return user, nil
	}

	now := time.Now()

	// 2. Email match auto-links the identity to the existing account
	user, err := s.repo.User.FindByEmail(ctx, profile.Email)
	if err != nil {
		s.log.Error("Failed to find user by email", zap.Error(err), zap.String("email", profile.Email))
		return nil, fmt.Errorf("failed to login")
	}
	if user != nil {
		account := &entity.OAuthAccount{
			BaseNoDelete: entity.BaseNoDelete{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			UserID:         user.ID,
			Provider:       providerName,
			ProviderUserID: profile.ProviderUserID,
		}
		if err := s.repo.OAuth.Link(ctx, account); err != nil {
			s.log.Error("Failed to auto-link identity", zap.Error(err), zap.String("user_id", user.ID.String()))
			return nil, fmt.Errorf("failed to login")
		}
		s.log.Info("OAuth identity auto-linked by email",
			zap.String("provider", providerName),
			zap.String("user_id", user.ID.String()))
		return user, nil
	}

	// 3. New user. The provider vouched for the email, so it starts
	// verified, with no password until the user sets one.
	username, err := s.availableUsername(ctx, profile.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to login")
	}

	user = &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:      username,
		Email:         profile.Email,
		PasswordHash:  nil,
		EmailVerified: true,
		IsActive:      true,
	}
	account := &entity.OAuthAccount{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:         user.ID,
		Provider:       providerName,
		ProviderUserID: profile.ProviderUserID,
	}
	if err := s.repo.OAuth.CreateUserWithIdentity(ctx, user, account); err != nil {
		s.log.Error("Failed to create user from identity", zap.Error(err), zap.String("email", profile.Email))
		return nil, fmt.Errorf("failed to login")
	}

	s.log.Info("User created from OAuth identity",
		zap.String("provider", providerName),
		zap.String("user_id", user.ID.String()),
		zap.String("username", username))
	return user, nil
}

// availableUsername returns base, or base1, base2, ... until one is free.
func (s *oauthService) availableUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		existing, err := s.repo.User.FindByUsername(ctx, candidate)
		if err != nil {
			s.log.Error("Failed to check username", zap.Error(err), zap.String("username", candidate))
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}
