package response

import (
	"time"

	"workspace-hub/internal/data/entity"
	"workspace-hub/internal/data/repository"
)

type WorkspaceResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Code        string    `json:"code"`
	AdminID     string    `json:"admin_id"`
	IsActive    bool      `json:"is_active"`
	MemberCount int64     `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type MemberResponse struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// InviteResultResponse reports the per-email outcome of a bulk invite.
type InviteResultResponse struct {
	Invited        []string `json:"invited"`
	AlreadyMembers []string `json:"already_members"`
	NotFound       []string `json:"not_found"`
}

func WorkspaceToResponse(workspace *entity.Workspace, memberCount int64) *WorkspaceResponse {
	return &WorkspaceResponse{
		ID:          workspace.ID.String(),
		Name:        workspace.Name,
		Description: workspace.Description,
		Code:        workspace.Code,
		AdminID:     workspace.AdminID.String(),
		IsActive:    workspace.IsActive,
		MemberCount: memberCount,
		CreatedAt:   workspace.CreatedAt,
	}
}

func MembersToResponse(details []*repository.MemberDetail) []MemberResponse {
	members := make([]MemberResponse, len(details))
	for i, detail := range details {
		members[i] = MemberResponse{
			UserID:   detail.UserID.String(),
			Email:    detail.Email,
			Username: detail.Username,
			Role:     string(detail.Role),
			JoinedAt: detail.JoinedAt,
		}
	}
	return members
}
