package adaptor

import (
	"encoding/json"
	"net/http"

	"workspace-hub/internal/dto/request"
	"workspace-hub/internal/usecase"
	"workspace-hub/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OAuthHandler struct {
	service usecase.OAuthService
	log     *zap.Logger
}

func NewOAuthHandler(service usecase.OAuthService, log *zap.Logger) *OAuthHandler {
	return &OAuthHandler{
		service: service,
		log:     log,
	}
}

// Authorize handles GET /api/oauth/{provider}/login
func (h *OAuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	response, err := h.service.AuthorizationURL(r.Context(), provider)
	if err != nil {
		handleServiceError(h.log, w, err, "start authorization")
		return
	}

	utils.ResponseSuccess(w, "Authorization URL generated", response)
}

// Callback handles POST and GET /api/oauth/{provider}/callback.
// Providers that redirect the browser deliver code and state as query
// parameters, SPA clients relay them in a JSON body.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	var req request.OAuthCallbackRequest
	if r.Method == http.MethodGet {
		req.Code = r.URL.Query().Get("code")
		req.State = r.URL.Query().Get("state")
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	response, err := h.service.HandleCallback(r.Context(), provider, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "complete authorization")
		return
	}

	utils.ResponseSuccess(w, "Login successful", response)
}

// Link handles POST /api/oauth/{provider}/link
func (h *OAuthHandler) Link(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	provider := chi.URLParam(r, "provider")

	var req request.OAuthLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	if err := h.service.Link(r.Context(), userID, provider, &req); err != nil {
		handleServiceError(h.log, w, err, "link account")
		return
	}

	utils.ResponseSuccess(w, "Account linked", nil)
}

// Unlink handles DELETE /api/oauth/{provider}/unlink
func (h *OAuthHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	provider := chi.URLParam(r, "provider")

	if err := h.service.Unlink(r.Context(), userID, provider); err != nil {
		handleServiceError(h.log, w, err, "unlink account")
		return
	}

	utils.ResponseSuccess(w, "Account unlinked", nil)
}

// Accounts handles GET /api/oauth/accounts
func (h *OAuthHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	response, err := h.service.LinkedAccounts(r.Context(), userID)
	if err != nil {
		handleServiceError(h.log, w, err, "list linked accounts")
		return
	}

	utils.ResponseSuccess(w, "Linked accounts retrieved", response)
}
