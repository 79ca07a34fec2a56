package repository

import (
	"context"
	"fmt"
	"time"

	"workspace-hub/internal/data/entity"
	"workspace-hub/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// MemberDetail joins a membership row with the member's user record for
// listing endpoints.
type MemberDetail struct {
	UserID   uuid.UUID
	Email    string
	Username string
	Role     entity.MemberRole
	JoinedAt time.Time
}

type WorkspaceMemberRepository interface {
	Add(ctx context.Context, member *entity.WorkspaceMember) error
	Remove(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error)
	Find(ctx context.Context, workspaceID, userID uuid.UUID) (*entity.WorkspaceMember, error)
	ListDetails(ctx context.Context, workspaceID uuid.UUID) ([]*MemberDetail, error)
	Count(ctx context.Context, workspaceID uuid.UUID) (int64, error)
}

type workspaceMemberRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewWorkspaceMemberRepository(db database.PgxIface, log *zap.Logger) WorkspaceMemberRepository {
	return &workspaceMemberRepository{
		db:  db,
		log: log.With(zap.String("repository", "workspace_member")),
	}
}

func (r *workspaceMemberRepository) Add(ctx context.Context, member *entity.WorkspaceMember) error {
	query := `
		INSERT INTO workspace_members (id, workspace_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (workspace_id, user_id) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query,
		member.ID,
		member.WorkspaceID,
		member.UserID,
		member.Role,
		member.JoinedAt,
	)

	if err != nil {
		r.log.Error("Failed to add workspace member",
			zap.Error(err),
			zap.String("workspace_id", member.WorkspaceID.String()),
			zap.String("user_id", member.UserID.String()),
		)
		return fmt.Errorf("add member to workspace %s: %w", member.WorkspaceID.String(), err)
	}

	return nil
}

func (r *workspaceMemberRepository) Remove(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	query := `DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`

	result, err := r.db.Exec(ctx, query, workspaceID, userID)
	if err != nil {
		r.log.Error("Failed to remove workspace member",
			zap.Error(err),
			zap.String("workspace_id", workspaceID.String()),
			zap.String("user_id", userID.String()),
		)
		return false, fmt.Errorf("remove member from workspace %s: %w", workspaceID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *workspaceMemberRepository) Find(ctx context.Context, workspaceID, userID uuid.UUID) (*entity.WorkspaceMember, error) {
	query := `
		SELECT id, workspace_id, user_id, role, joined_at
		FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2
	`

	var member entity.WorkspaceMember
	err := r.db.QueryRow(ctx, query, workspaceID, userID).Scan(
		&member.ID,
		&member.WorkspaceID,
		&member.UserID,
		&member.Role,
		&member.JoinedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find workspace member", zap.Error(err))
		return nil, fmt.Errorf("find member of workspace %s: %w", workspaceID.String(), err)
	}

	return &member, nil
}

func (r *workspaceMemberRepository) ListDetails(ctx context.Context, workspaceID uuid.UUID) ([]*MemberDetail, error) {
	query := `
		SELECT u.id, u.email, u.username, m.role, m.joined_at
		FROM workspace_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = $1 AND u.deleted_at IS NULL
		ORDER BY m.joined_at
	`

	rows, err := r.db.Query(ctx, query, workspaceID)
	if err != nil {
		r.log.Error("Failed to list workspace members",
			zap.Error(err),
			zap.String("workspace_id", workspaceID.String()),
		)
		return nil, fmt.Errorf("list members of workspace %s: %w", workspaceID.String(), err)
	}
	defer rows.Close()

	var members []*MemberDetail
	for rows.Next() {
		var detail MemberDetail
		err := rows.Scan(
			&detail.UserID,
			&detail.Email,
			&detail.Username,
			&detail.Role,
			&detail.JoinedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan member row: %w", err)
		}
		members = append(members, &detail)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member rows: %w", err)
	}

	return members, nil
}

func (r *workspaceMemberRepository) Count(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM workspace_members WHERE workspace_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, workspaceID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count workspace members", zap.Error(err))
		return 0, fmt.Errorf("count members of workspace %s: %w", workspaceID.String(), err)
	}

	return count, nil
}
