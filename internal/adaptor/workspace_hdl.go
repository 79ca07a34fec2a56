package adaptor

import (
	"encoding/json"
	"net/http"

	"workspace-hub/internal/dto/request"
	"workspace-hub/internal/usecase"
	"workspace-hub/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WorkspaceHandler struct {
	service usecase.WorkspaceService
	log     *zap.Logger
}

func NewWorkspaceHandler(service usecase.WorkspaceService, log *zap.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		service: service,
		log:     log,
	}
}

// Create handles POST /api/workspaces
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	response, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create workspace")
		return
	}

	utils.ResponseCreated(w, "Workspace created", response)
}

// ListMine handles GET /api/workspaces?search=
func (h *WorkspaceHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	search := r.URL.Query().Get("search")

	response, err := h.service.ListMine(r.Context(), userID, search)
	if err != nil {
		handleServiceError(h.log, w, err, "list workspaces")
		return
	}

	utils.ResponseSuccess(w, "Workspaces retrieved", response)
}

// Get handles GET /api/workspaces/{id}
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	response, err := h.service.Get(r.Context(), userID, workspaceID)
	if err != nil {
		handleServiceError(h.log, w, err, "get workspace")
		return
	}

	utils.ResponseSuccess(w, "Workspace retrieved", response)
}

// Members handles GET /api/workspaces/{id}/members
func (h *WorkspaceHandler) Members(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	response, err := h.service.Members(r.Context(), userID, workspaceID)
	if err != nil {
		handleServiceError(h.log, w, err, "list members")
		return
	}

	utils.ResponseSuccess(w, "Members retrieved", response)
}

// Update handles PATCH /api/workspaces/{id}
func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	var req request.UpdateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	response, err := h.service.Update(r.Context(), userID, workspaceID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update workspace")
		return
	}

	utils.ResponseSuccess(w, "Workspace updated", response)
}

// Delete handles DELETE /api/workspaces/{id}
func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, workspaceID); err != nil {
		handleServiceError(h.log, w, err, "delete workspace")
		return
	}

	utils.ResponseSuccess(w, "Workspace deleted", nil)
}

// Join handles POST /api/workspaces/join
func (h *WorkspaceHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.JoinWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	response, err := h.service.Join(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "join workspace")
		return
	}

	utils.ResponseSuccess(w, "Joined workspace", response)
}

// Invite handles POST /api/workspaces/{id}/invite
func (h *WorkspaceHandler) Invite(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	var req request.InviteMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	response, err := h.service.Invite(r.Context(), userID, workspaceID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "invite members")
		return
	}

	utils.ResponseSuccess(w, "Invites processed", response)
}

// RemoveMember handles DELETE /api/workspaces/{id}/members/{userId}
func (h *WorkspaceHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	memberID, err := utils.ParseUUID(chi.URLParam(r, "userId"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid member ID", nil)
		return
	}

	if err := h.service.RemoveMember(r.Context(), userID, workspaceID, memberID); err != nil {
		handleServiceError(h.log, w, err, "remove member")
		return
	}

	utils.ResponseSuccess(w, "Member removed", nil)
}

// pathIDs pulls the authenticated user and the {id} path parameter.
func (h *WorkspaceHandler) pathIDs(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}

	workspaceID, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid workspace ID", nil)
		return uuid.Nil, uuid.Nil, false
	}

	return userID, workspaceID, true
}
