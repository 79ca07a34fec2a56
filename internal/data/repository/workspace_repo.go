package repository

import (
	"context"
	"fmt"

	"workspace-hub/internal/data/entity"
	"workspace-hub/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *entity.Workspace) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Workspace, error)
	FindByCode(ctx context.Context, code string) (*entity.Workspace, error)
	FindByMember(ctx context.Context, userID uuid.UUID, search string) ([]*entity.Workspace, error)
	Update(ctx context.Context, workspace *entity.Workspace) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type workspaceRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewWorkspaceRepository(db database.PgxIface, log *zap.Logger) WorkspaceRepository {
	return &workspaceRepository{
		db:  db,
		log: log.With(zap.String("repository", "workspace")),
	}
}

func (r *workspaceRepository) Create(ctx context.Context, workspace *entity.Workspace) error {
	query := `
		INSERT INTO workspaces (id, name, description, code, admin_id,
		                        is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		workspace.ID,
		workspace.Name,
		workspace.Description,
		workspace.Code,
		workspace.AdminID,
		workspace.IsActive,
		workspace.CreatedAt,
		workspace.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create workspace",
			zap.Error(err),
			zap.String("name", workspace.Name),
			zap.String("code", workspace.Code),
		)
		return fmt.Errorf("create workspace %s: %w", workspace.Name, err)
	}

	return nil
}

const workspaceSelect = `
	SELECT id, name, description, code, admin_id,
	       is_active, created_at, updated_at, deleted_at
	FROM workspaces
`

func (r *workspaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Workspace, error) {
	query := workspaceSelect + ` WHERE id = $1 AND deleted_at IS NULL`

	return r.findOne(ctx, query, id)
}

func (r *workspaceRepository) FindByCode(ctx context.Context, code string) (*entity.Workspace, error) {
	query := workspaceSelect + ` WHERE code = $1 AND deleted_at IS NULL`

	return r.findOne(ctx, query, code)
}

func (r *workspaceRepository) findOne(ctx context.Context, query string, arg any) (*entity.Workspace, error) {
	var workspace entity.Workspace
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&workspace.ID,
		&workspace.Name,
		&workspace.Description,
		&workspace.Code,
		&workspace.AdminID,
		&workspace.IsActive,
		&workspace.CreatedAt,
		&workspace.UpdatedAt,
		&workspace.DeletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find workspace", zap.Error(err))
		return nil, fmt.Errorf("find workspace: %w", err)
	}

	return &workspace, nil
}

// FindByMember lists workspaces the user belongs to, optionally
// filtered by case-insensitive name match.
func (r *workspaceRepository) FindByMember(ctx context.Context, userID uuid.UUID, search string) ([]*entity.Workspace, error) {
	query := `
		SELECT w.id, w.name, w.description, w.code, w.admin_id,
		       w.is_active, w.created_at, w.updated_at, w.deleted_at
		FROM workspaces w
		JOIN workspace_members m ON m.workspace_id = w.id
		WHERE m.user_id = $1 AND w.deleted_at IS NULL
	`
	args := []any{userID}

	if search != "" {
		query += ` AND LOWER(w.name) = LOWER($2)`
		args = append(args, search)
	}

	query += ` ORDER BY w.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list member workspaces",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("list workspaces for %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var workspaces []*entity.Workspace
	for rows.Next() {
		var workspace entity.Workspace
		err := rows.Scan(
			&workspace.ID,
			&workspace.Name,
			&workspace.Description,
			&workspace.Code,
			&workspace.AdminID,
			&workspace.IsActive,
			&workspace.CreatedAt,
			&workspace.UpdatedAt,
			&workspace.DeletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan workspace row: %w", err)
		}
		workspaces = append(workspaces, &workspace)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspace rows: %w", err)
	}

	return workspaces, nil
}

func (r *workspaceRepository) Update(ctx context.Context, workspace *entity.Workspace) error {
	query := `
		UPDATE workspaces
		SET name = $2, description = $3, is_active = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		workspace.ID,
		workspace.Name,
		workspace.Description,
		workspace.IsActive,
		workspace.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update workspace",
			zap.Error(err),
			zap.String("workspace_id", workspace.ID.String()),
		)
		return fmt.Errorf("update workspace %s: %w", workspace.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("workspace %s not found", workspace.ID.String())
	}

	return nil
}

func (r *workspaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE workspaces SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete workspace",
			zap.Error(err),
			zap.String("workspace_id", id.String()),
		)
		return fmt.Errorf("delete workspace %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("workspace %s not found", id.String())
	}

	return nil
}
