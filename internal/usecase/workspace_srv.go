package usecase

import (
	"context"
	"fmt"
	"time"

	"workspace-hub/internal/data/entity"
	"workspace-hub/internal/data/repository"
	"workspace-hub/internal/dto/request"
	"workspace-hub/internal/dto/response"
	"workspace-hub/pkg/mail"
	"workspace-hub/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WorkspaceService interface {
	Create(ctx context.Context, userID uuid.UUID, req *request.CreateWorkspaceRequest) (*response.WorkspaceResponse, error)
	ListMine(ctx context.Context, userID uuid.UUID, search string) ([]*response.WorkspaceResponse, error)
	Get(ctx context.Context, userID, workspaceID uuid.UUID) (*response.WorkspaceResponse, error)
	Members(ctx context.Context, userID, workspaceID uuid.UUID) ([]response.MemberResponse, error)
	Update(ctx context.Context, userID, workspaceID uuid.UUID, req *request.UpdateWorkspaceRequest) (*response.WorkspaceResponse, error)
	Delete(ctx context.Context, userID, workspaceID uuid.UUID) error
	Join(ctx context.Context, userID uuid.UUID, req *request.JoinWorkspaceRequest) (*response.WorkspaceResponse, error)
	Invite(ctx context.Context, userID, workspaceID uuid.UUID, req *request.InviteMembersRequest) (*response.InviteResultResponse, error)
	RemoveMember(ctx context.Context, userID, workspaceID, memberID uuid.UUID) error
}

type workspaceService struct {
	repo   *repository.Repository
	mailer mail.Mailer
	log    *zap.Logger
}

func NewWorkspaceService(repo *repository.Repository, mailer mail.Mailer, log *zap.Logger) WorkspaceService {
	return &workspaceService{
		repo:   repo,
		mailer: mailer,
		log:    log,
	}
}

func (ws *workspaceService) Create(ctx context.Context, userID uuid.UUID, req *request.CreateWorkspaceRequest) (*response.WorkspaceResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		ws.log.Warn("Create workspace validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. The join code is globally unique
	existing, err := ws.repo.Workspace.FindByCode(ctx, req.Code)
	if err != nil {
		ws.log.Error("Failed to check workspace code", zap.Error(err), zap.String("code", req.Code))
		return nil, fmt.Errorf("failed to create workspace")
	}
	if existing != nil {
		return nil, fmt.Errorf("workspace code already in use")
	}

	// 3. Create workspace with the creator as admin and first member
	now := time.Now()
	workspace := &entity.Workspace{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        req.Name,
		Description: req.Description,
		Code:        req.Code,
		AdminID:     userID,
		IsActive:    true,
	}
	if err := ws.repo.Workspace.Create(ctx, workspace); err != nil {
		ws.log.Error("Failed to create workspace", zap.Error(err), zap.String("name", req.Name))
		return nil, fmt.Errorf("failed to create workspace")
	}

	member := &entity.WorkspaceMember{
		ID:          uuid.New(),
		WorkspaceID: workspace.ID,
		UserID:      userID,
		Role:        entity.MemberRoleAdmin,
		JoinedAt:    now,
	}
	if err := ws.repo.WorkspaceMember.Add(ctx, member); err != nil {
		ws.log.Error("Failed to add admin member", zap.Error(err), zap.String("workspace_id", workspace.ID.String()))
		return nil, fmt.Errorf("failed to create workspace")
	}

	ws.log.Info("Workspace created",
		zap.String("workspace_id", workspace.ID.String()),
		zap.String("admin_id", userID.String()),
		zap.String("code", workspace.Code))
	return response.WorkspaceToResponse(workspace, 1), nil
}

func (ws *workspaceService) ListMine(ctx context.Context, userID uuid.UUID, search string) ([]*response.WorkspaceResponse, error) {
	workspaces, err := ws.repo.Workspace.FindByMember(ctx, userID, search)
	if err != nil {
		ws.log.Error("Failed to list workspaces", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list workspaces")
	}

	results := make([]*response.WorkspaceResponse, len(workspaces))
	for i, workspace := range workspaces {
		count, err := ws.repo.WorkspaceMember.Count(ctx, workspace.ID)
		if err != nil {
			ws.log.Warn("Failed to count members", zap.Error(err), zap.String("workspace_id", workspace.ID.String()))
		}
		results[i] = response.WorkspaceToResponse(workspace, count)
	}
	return results, nil
}

func (ws *workspaceService) Get(ctx context.Context, userID, workspaceID uuid.UUID) (*response.WorkspaceResponse, error) {
	workspace, _, err := ws.requireMember(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}

	count, err := ws.repo.WorkspaceMember.Count(ctx, workspaceID)
	if err != nil {
		ws.log.Warn("Failed to count members", zap.Error(err), zap.String("workspace_id", workspaceID.String()))
	}
	return response.WorkspaceToResponse(workspace, count), nil
}

func (ws *workspaceService) Members(ctx context.Context, userID, workspaceID uuid.UUID) ([]response.MemberResponse, error) {
	if _, _, err := ws.requireMember(ctx, userID, workspaceID); err != nil {
		return nil, err
	}

	details, err := ws.repo.WorkspaceMember.ListDetails(ctx, workspaceID)
	if err != nil {
		ws.log.Error("Failed to list members", zap.Error(err), zap.String("workspace_id", workspaceID.String()))
		return nil, fmt.Errorf("failed to list members")
	}
	return response.MembersToResponse(details), nil
}

func (ws *workspaceService) Update(ctx context.Context, userID, workspaceID uuid.UUID, req *request.UpdateWorkspaceRequest) (*response.WorkspaceResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Only the admin updates a workspace
	workspace, err := ws.requireAdmin(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}

	// 3. Apply the provided fields
	if req.Name != nil {
		workspace.Name = *req.Name
	}
	if req.Description != nil {
		workspace.Description = req.Description
	}
	if req.IsActive != nil {
		workspace.IsActive = *req.IsActive
	}
	workspace.UpdatedAt = time.Now()

	if err := ws.repo.Workspace.Update(ctx, workspace); err != nil {
		ws.log.Error("Failed to update workspace", zap.Error(err), zap.String("workspace_id", workspaceID.String()))
		return nil, fmt.Errorf("failed to update workspace")
	}

	count, err := ws.repo.WorkspaceMember.Count(ctx, workspaceID)
	if err != nil {
		ws.log.Warn("Failed to count members", zap.Error(err), zap.String("workspace_id", workspaceID.String()))
	}

	ws.log.Info("Workspace updated", zap.String("workspace_id", workspaceID.String()))
	return response.WorkspaceToResponse(workspace, count), nil
}

func (ws *workspaceService) Delete(ctx context.Context, userID, workspaceID uuid.UUID) error {
	if _, err := ws.requireAdmin(ctx, userID, workspaceID); err != nil {
		return err
	}

	if err := ws.repo.Workspace.Delete(ctx, workspaceID); err != nil {
		ws.log.Error("Failed to delete workspace", zap.Error(err), zap.String("workspace_id", workspaceID.String()))
		return fmt.Errorf("failed to delete workspace")
	}

	ws.log.Info("Workspace deleted",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("admin_id", userID.String()))
	return nil
}

func (ws *workspaceService) Join(ctx context.Context, userID uuid.UUID, req *request.JoinWorkspaceRequest) (*response.WorkspaceResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Resolve the code
	workspace, err := ws.repo.Workspace.FindByCode(ctx, req.Code)
	if err != nil {
		ws.log.Error("Failed to find workspace by code", zap.Error(err), zap.String("code", req.Code))
		return nil, fmt.Errorf("failed to join workspace")
	}
	if workspace == nil {
		return nil, fmt.Errorf("workspace not found")
	}
	if !workspace.IsActive {
		return nil, fmt.Errorf("workspace is not active")
	}

	// 3. Joining twice is a no-op at the storage level, but report it
	existing, err := ws.repo.WorkspaceMember.Find(ctx, workspace.ID, userID)
	if err != nil {
		ws.log.Error("Failed to check membership", zap.Error(err), zap.String("workspace_id", workspace.ID.String()))
		return nil, fmt.Errorf("failed to join workspace")
	}
	if existing != nil {
		return nil, fmt.Errorf("already a member of this workspace")
	}

	member := &entity.WorkspaceMember{
		ID:          uuid.New(),
		WorkspaceID: workspace.ID,
		UserID:      userID,
		Role:        entity.MemberRoleMember,
		JoinedAt:    time.Now(),
	}
	if err := ws.repo.WorkspaceMember.Add(ctx, member); err != nil {
		ws.log.Error("Failed to add member", zap.Error(err), zap.String("workspace_id", workspace.ID.String()))
		return nil, fmt.Errorf("failed to join workspace")
	}

	count, err := ws.repo.WorkspaceMember.Count(ctx, workspace.ID)
	if err != nil {
		ws.log.Warn("Failed to count members", zap.Error(err), zap.String("workspace_id", workspace.ID.String()))
	}

	ws.log.Info("Member joined workspace",
		zap.String("workspace_id", workspace.ID.String()),
		zap.String("user_id", userID.String()))
	return response.WorkspaceToResponse(workspace, count), nil
}

// Invite mails the join code to existing users. Unknown emails and
// current members are reported back rather than failing the batch.
func (ws *workspaceService) Invite(ctx context.Context, userID, workspaceID uuid.UUID, req *request.InviteMembersRequest) (*response.InviteResultResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Only the admin invites
	workspace, err := ws.requireAdmin(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}

	inviter, err := ws.repo.User.FindByID(ctx, userID)
	if err != nil || inviter == nil {
		ws.log.Error("Failed to find inviter", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to invite members")
	}

	result := &response.InviteResultResponse{
		Invited:        []string{},
		AlreadyMembers: []string{},
		NotFound:       []string{},
	}
	for _, email := range req.Emails {
		invitee, err := ws.repo.User.FindByEmail(ctx, email)
		if err != nil {
			ws.log.Error("Failed to find invitee", zap.Error(err), zap.String("email", email))
			return nil, fmt.Errorf("failed to invite members")
		}
		if invitee == nil {
			result.NotFound = append(result.NotFound, email)
			continue
		}

		member, err := ws.repo.WorkspaceMember.Find(ctx, workspaceID, invitee.ID)
		if err != nil {
			ws.log.Error("Failed to check membership", zap.Error(err), zap.String("email", email))
			return nil, fmt.Errorf("failed to invite members")
		}
		if member != nil {
			result.AlreadyMembers = append(result.AlreadyMembers, email)
			continue
		}

		go ws.sendInvite(email, workspace, inviter.Username)
		result.Invited = append(result.Invited, email)
	}

	ws.log.Info("Workspace invites sent",
		zap.String("workspace_id", workspaceID.String()),
		zap.Int("invited", len(result.Invited)),
		zap.Int("already_members", len(result.AlreadyMembers)),
		zap.Int("not_found", len(result.NotFound)))
	return result, nil
}

func (ws *workspaceService) RemoveMember(ctx context.Context, userID, workspaceID, memberID uuid.UUID) error {
	// 1. Only the admin removes members
	workspace, err := ws.requireAdmin(ctx, userID, workspaceID)
	if err != nil {
		return err
	}

	// 2. The admin cannot be removed
	if memberID == workspace.AdminID {
		return fmt.Errorf("cannot remove workspace admin")
	}

	removed, err := ws.repo.WorkspaceMember.Remove(ctx, workspaceID, memberID)
	if err != nil {
		ws.log.Error("Failed to remove member", zap.Error(err),
			zap.String("workspace_id", workspaceID.String()),
			zap.String("member_id", memberID.String()))
		return fmt.Errorf("failed to remove member")
	}
	if !removed {
		return fmt.Errorf("member not found in this workspace")
	}

	ws.log.Info("Member removed",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("member_id", memberID.String()))
	return nil
}

// ==================== HELPER METHODS ====================

func (ws *workspaceService) requireMember(ctx context.Context, userID, workspaceID uuid.UUID) (*entity.Workspace, *entity.WorkspaceMember, error) {
	workspace, err := ws.repo.Workspace.FindByID(ctx, workspaceID)
	if err != nil {
		ws.log.Error("Failed to find workspace", zap.Error(err), zap.String("workspace_id", workspaceID.String()))
		return nil, nil, fmt.Errorf("failed to get workspace")
	}
	if workspace == nil {
		return nil, nil, fmt.Errorf("workspace not found")
	}

	member, err := ws.repo.WorkspaceMember.Find(ctx, workspaceID, userID)
	if err != nil {
		ws.log.Error("Failed to check membership", zap.Error(err), zap.String("workspace_id", workspaceID.String()))
		return nil, nil, fmt.Errorf("failed to get workspace")
	}
	if member == nil {
		return nil, nil, fmt.Errorf("you are not a member of this workspace")
	}
	return workspace, member, nil
}

func (ws *workspaceService) requireAdmin(ctx context.Context, userID, workspaceID uuid.UUID) (*entity.Workspace, error) {
	workspace, member, err := ws.requireMember(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	if member.Role != entity.MemberRoleAdmin || workspace.AdminID != userID {
		return nil, fmt.Errorf("only the workspace admin can do this")
	}
	return workspace, nil
}

func (ws *workspaceService) sendInvite(email string, workspace *entity.Workspace, invitedBy string) {
	if err := ws.mailer.SendWorkspaceInvite(email, workspace.Name, workspace.Code, invitedBy); err != nil {
		ws.log.Error("Failed to send invite email",
			zap.Error(err),
			zap.String("email", email),
			zap.String("workspace_id", workspace.ID.String()))
	}
}
