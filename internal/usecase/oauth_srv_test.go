package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"workspace-hub/internal/data/entity"
	"workspace-hub/internal/dto/request"
	"workspace-hub/pkg/oauth"
	"workspace-hub/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type oauthFixture struct {
	svc      OAuthService
	users    *fakeUserRepo
	accounts *fakeOAuthRepo
	kv       *fakeKVStore
	provider *fakeProvider
}

func newOAuthFixture(t *testing.T, profile oauth.Profile) *oauthFixture {
	t.Helper()
	repo, users, _, _, accounts, _, _ := newTestRepository()
	kv := newFakeKVStore()
	provider := &fakeProvider{name: entity.ProviderGitHub, profile: profile}
	providers := oauth.Providers{entity.ProviderGitHub: provider}

	svc := NewOAuthService(repo, providers, kv, testConfig(), zap.NewNop())
	return &oauthFixture{
		svc:      svc,
		users:    users,
		accounts: accounts,
		kv:       kv,
		provider: provider,
	}
}

// beginFlow runs the authorize step and returns the minted state.
func (f *oauthFixture) beginFlow(t *testing.T, ctx context.Context) string {
	t.Helper()
	resp, err := f.svc.AuthorizationURL(ctx, entity.ProviderGitHub)
	require.NoError(t, err)
	require.Contains(t, resp.AuthorizationURL, "state=")

	parts := strings.SplitN(resp.AuthorizationURL, "state=", 2)
	return parts[1]
}

func TestCallbackCreatesVerifiedUser(t *testing.T) {
	f := newOAuthFixture(t, oauth.Profile{
		ProviderUserID: "gh-42",
		Email:          "newbie@example.com",
		Username:       "newbie",
		DisplayName:    "New Bie",
	})
	ctx := context.Background()

	state := f.beginFlow(t, ctx)
	tokens, err := f.svc.HandleCallback(ctx, entity.ProviderGitHub, &request.OAuthCallbackRequest{
		State: state,
		Code:  "auth-code",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)

	user, err := f.users.FindByEmail(ctx, "newbie@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.EmailVerified)
	assert.False(t, user.HasPassword())
	assert.Equal(t, "newbie", user.Username)

	// A second login with the same identity reuses the account
	state = f.beginFlow(t, ctx)
	_, err = f.svc.HandleCallback(ctx, entity.ProviderGitHub, &request.OAuthCallbackRequest{
		State: state,
		Code:  "auth-code",
	})
	require.NoError(t, err)

	again, err := f.users.FindByEmail(ctx, "newbie@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestCallbackAutoLinksByEmail(t *testing.T) {
	f := newOAuthFixture(t, oauth.Profile{
		ProviderUserID: "gh-7",
		Email:          "kate@example.com",
		Username:       "kate",
	})
	ctx := context.Background()

	hash, err := utils.HashPassword("Passw0rd!")
	require.NoError(t, err)
	now := time.Now()
	existing := &entity.User{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Username:      "kate",
		Email:         "kate@example.com",
		PasswordHash:  &hash,
		EmailVerified: true,
		IsActive:      true,
	}
	require.NoError(t, f.users.Create(ctx, existing))

	state := f.beginFlow(t, ctx)
	_, err = f.svc.HandleCallback(ctx, entity.ProviderGitHub, &request.OAuthCallbackRequest{
		State: state,
		Code:  "auth-code",
	})
	require.NoError(t, err)

	account, err := f.accounts.FindByProviderID(ctx, entity.ProviderGitHub, "gh-7")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, existing.ID, account.UserID)
}

func TestUsernameCollisionGetsSuffix(t *testing.T) {
	f := newOAuthFixture(t, oauth.Profile{
		ProviderUserID: "gh-9",
		Email:          "bob@provider.example",
		Username:       "bob",
	})
	ctx := context.Background()

	now := time.Now()
	for _, name := range []string{"bob", "bob1"} {
		require.NoError(t, f.users.Create(ctx, &entity.User{
			Base:     entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			Username: name,
			Email:    name + "@example.com",
			IsActive: true,
		}))
	}

	state := f.beginFlow(t, ctx)
	_, err := f.svc.HandleCallback(ctx, entity.ProviderGitHub, &request.OAuthCallbackRequest{
		State: state,
		Code:  "auth-code",
	})
	require.NoError(t, err)

	user, err := f.users.FindByEmail(ctx, "bob@provider.example")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "bob2", user.Username)
}

func TestCallbackRejectsBadState(t *testing.T) {
	f := newOAuthFixture(t, oauth.Profile{ProviderUserID: "gh-1", Email: "x@example.com", Username: "x"})
	ctx := context.Background()

	_, err := f.svc.HandleCallback(ctx, entity.ProviderGitHub, &request.OAuthCallbackRequest{
		State: "forged",
		Code:  "auth-code",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid or expired state")

	// A state is single use
	state := f.beginFlow(t, ctx)
	_, err = f.svc.HandleCallback(ctx, entity.ProviderGitHub, &request.OAuthCallbackRequest{
		State: state,
		Code:  "auth-code",
	})
	require.NoError(t, err)

	_, err = f.svc.HandleCallback(ctx, entity.ProviderGitHub, &request.OAuthCallbackRequest{
		State: state,
		Code:  "auth-code",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid or expired state")
}

func TestUnlinkGuardsLastAuthMethod(t *testing.T) {
	f := newOAuthFixture(t, oauth.Profile{
		ProviderUserID: "gh-11",
		Email:          "solo@example.com",
		Username:       "solo",
	})
	ctx := context.Background()

	state := f.beginFlow(t, ctx)
	_, err := f.svc.HandleCallback(ctx, entity.ProviderGitHub, &request.OAuthCallbackRequest{
		State: state,
		Code:  "auth-code",
	})
	require.NoError(t, err)

	user, err := f.users.FindByEmail(ctx, "solo@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)

	// The only identity on a passwordless account cannot be removed
	err = f.svc.Unlink(ctx, user.ID, entity.ProviderGitHub)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot unlink the only authentication method")

	// With a password set the identity can go
	hash, err := utils.HashPassword("Passw0rd!")
	require.NoError(t, err)
	user.PasswordHash = &hash
	require.NoError(t, f.users.Update(ctx, user))

	require.NoError(t, f.svc.Unlink(ctx, user.ID, entity.ProviderGitHub))

	// Unlinking again reports not linked
	err = f.svc.Unlink(ctx, user.ID, entity.ProviderGitHub)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not linked")
}

func TestLinkRejectsClaimedIdentity(t *testing.T) {
	f := newOAuthFixture(t, oauth.Profile{
		ProviderUserID: "gh-55",
		Email:          "owner@example.com",
		Username:       "owner",
	})
	ctx := context.Background()

	// First user claims the identity through a normal login
	state := f.beginFlow(t, ctx)
	_, err := f.svc.HandleCallback(ctx, entity.ProviderGitHub, &request.OAuthCallbackRequest{
		State: state,
		Code:  "auth-code",
	})
	require.NoError(t, err)

	owner, err := f.users.FindByEmail(ctx, "owner@example.com")
	require.NoError(t, err)

	// A different user tries to link the same identity
	now := time.Now()
	other := &entity.User{
		Base:     entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Username: "other",
		Email:    "other@example.com",
		IsActive: true,
	}
	require.NoError(t, f.users.Create(ctx, other))

	err = f.svc.Link(ctx, other.ID, entity.ProviderGitHub, &request.OAuthLinkRequest{Code: "auth-code"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already linked")

	// Relinking by the owner is a no-op
	require.NoError(t, f.svc.Link(ctx, owner.ID, entity.ProviderGitHub, &request.OAuthLinkRequest{Code: "auth-code"}))
}

func TestLinkedAccountsListing(t *testing.T) {
	f := newOAuthFixture(t, oauth.Profile{
		ProviderUserID: "gh-77",
		Email:          "lister@example.com",
		Username:       "lister",
	})
	ctx := context.Background()

	state := f.beginFlow(t, ctx)
	_, err := f.svc.HandleCallback(ctx, entity.ProviderGitHub, &request.OAuthCallbackRequest{
		State: state,
		Code:  "auth-code",
	})
	require.NoError(t, err)

	user, err := f.users.FindByEmail(ctx, "lister@example.com")
	require.NoError(t, err)

	listed, err := f.svc.LinkedAccounts(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, listed.LinkedAccounts, 1)
	assert.Equal(t, entity.ProviderGitHub, listed.LinkedAccounts[0].Provider)
	assert.False(t, listed.HasPassword)
}

func TestCallbackUnsupportedProvider(t *testing.T) {
	f := newOAuthFixture(t, oauth.Profile{ProviderUserID: "gh-1", Email: "y@example.com", Username: "y"})

	_, err := f.svc.AuthorizationURL(context.Background(), "gitlab")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
}
