package response

import (
	"time"

	"workspace-hub/internal/data/entity"
)

type AuthorizationURLResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	Provider         string `json:"provider"`
}

type LinkedAccount struct {
	Provider string    `json:"provider"`
	LinkedAt time.Time `json:"linked_at"`
}

type LinkedAccountsResponse struct {
	LinkedAccounts []LinkedAccount `json:"linked_accounts"`
	HasPassword    bool            `json:"has_password"`
}

func LinkedAccountsToResponse(accounts []*entity.OAuthAccount, hasPassword bool) *LinkedAccountsResponse {
	linked := make([]LinkedAccount, len(accounts))
	for i, account := range accounts {
		linked[i] = LinkedAccount{
			Provider: account.Provider,
			LinkedAt: account.CreatedAt,
		}
	}

	return &LinkedAccountsResponse{
		LinkedAccounts: linked,
		HasPassword:    hasPassword,
	}
}
