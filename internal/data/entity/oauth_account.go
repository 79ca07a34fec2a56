package entity

import (
	"github.com/google/uuid"
)

const (
	ProviderGitHub = "github"
	ProviderGoogle = "google"
)

// OAuthAccount links an external identity (provider + provider user id)
// to a local user. Unique on (provider, provider_user_id) and on
// (user_id, provider).
type OAuthAccount struct {
	BaseNoDelete
	UserID         uuid.UUID `db:"user_id"`
	Provider       string    `db:"provider"`
	ProviderUserID string    `db:"provider_user_id"`
}
