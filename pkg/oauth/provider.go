package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"workspace-hub/internal/data/entity"
	"workspace-hub/pkg/utils"

	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
	"go.uber.org/zap"
)

// Profile is the provider-neutral identity returned after a successful
// code exchange.
type Profile struct {
	ProviderUserID string
	Email          string
	Username       string
	DisplayName    string
}

// Provider is the identity-provider collaborator. Exchange and fetch
// are bounded by the underlying HTTP client timeout; failures surface
// to the caller and are never retried server-side, since replaying an
// authorization code would fail anyway.
type Provider interface {
	Name() string
	AuthorizationURL(state string) (string, error)
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}

// Providers indexes configured providers by name.
type Providers map[string]Provider

func (p Providers) Get(name string) (Provider, bool) {
	provider, ok := p[name]
	return provider, ok
}

// NewProviders builds the provider registry from config. Providers
// without credentials are left out.
func NewProviders(config utils.OAuthConfig, log *zap.Logger) Providers {
	client := &http.Client{Timeout: 10 * time.Second}
	providers := Providers{}

	if config.GitHub.ClientID != "" {
		gh := github.New(config.GitHub.ClientID, config.GitHub.ClientSecret,
			config.GitHub.RedirectURL, "user:email")
		gh.HTTPClient = client
		providers[entity.ProviderGitHub] = &gothProvider{
			name:     entity.ProviderGitHub,
			provider: gh,
			log:      log.With(zap.String("provider", entity.ProviderGitHub)),
		}
	}

	if config.Google.ClientID != "" {
		gl := google.New(config.Google.ClientID, config.Google.ClientSecret,
			config.Google.RedirectURL, "email", "profile")
		gl.HTTPClient = client
		providers[entity.ProviderGoogle] = &gothProvider{
			name:     entity.ProviderGoogle,
			provider: gl,
			log:      log.With(zap.String("provider", entity.ProviderGoogle)),
		}
	}

	return providers
}

// gothProvider adapts a goth.Provider to the collaborator interface.
type gothProvider struct {
	name     string
	provider goth.Provider
	log      *zap.Logger
}

func (g *gothProvider) Name() string {
	return g.name
}

func (g *gothProvider) AuthorizationURL(state string) (string, error) {
	sess, err := g.provider.BeginAuth(state)
	if err != nil {
		g.log.Error("Failed to begin auth", zap.Error(err))
		return "", fmt.Errorf("begin auth with %s: %w", g.name, err)
	}

	authURL, err := sess.GetAuthURL()
	if err != nil {
		return "", fmt.Errorf("auth url for %s: %w", g.name, err)
	}

	return authURL, nil
}

func (g *gothProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// BeginAuth only builds the authorization URL locally; the session it
	// returns is what carries the token exchange.
	sess, err := g.provider.BeginAuth("")
	if err != nil {
		return "", fmt.Errorf("begin auth with %s: %w", g.name, err)
	}

	params := url.Values{}
	params.Set("code", code)

	token, err := sess.Authorize(g.provider, params)
	if err != nil {
		g.log.Warn("Code exchange failed", zap.Error(err))
		return "", fmt.Errorf("exchange code with %s: %w", g.name, err)
	}
	if token == "" {
		return "", fmt.Errorf("no access token from %s", g.name)
	}

	return token, nil
}

func (g *gothProvider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess, err := g.provider.UnmarshalSession(fmt.Sprintf(`{"AccessToken":%q}`, accessToken))
	if err != nil {
		return nil, fmt.Errorf("session for %s: %w", g.name, err)
	}

	user, err := g.provider.FetchUser(sess)
	if err != nil {
		g.log.Warn("Profile fetch failed", zap.Error(err))
		return nil, fmt.Errorf("fetch profile from %s: %w", g.name, err)
	}
	if user.UserID == "" || user.Email == "" {
		return nil, fmt.Errorf("incomplete profile from %s", g.name)
	}

	return &Profile{
		ProviderUserID: user.UserID,
		Email:          user.Email,
		Username:       usernameFor(user),
		DisplayName:    firstNonEmpty(user.Name, user.NickName, user.Email),
	}, nil
}

// usernameFor picks a proposed username: the provider login name when
// present, otherwise the local part of the email.
func usernameFor(user goth.User) string {
	if user.NickName != "" {
		return user.NickName
	}
	if at := strings.Index(user.Email, "@"); at > 0 {
		return user.Email[:at]
	}
	return user.Email
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
