package repository

import (
	"context"
	"fmt"

	"workspace-hub/internal/data/entity"
	"workspace-hub/pkg/database"

	"go.uber.org/zap"
)

type BlacklistRepository interface {
	Add(ctx context.Context, token *entity.RevokedToken) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	DeleteOlderThan(ctx context.Context, retentionDays int) (int64, error)
}

type blacklistRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBlacklistRepository(db database.PgxIface, log *zap.Logger) BlacklistRepository {
	return &blacklistRepository{
		db:  db,
		log: log.With(zap.String("repository", "blacklist")),
	}
}

func (r *blacklistRepository) Add(ctx context.Context, token *entity.RevokedToken) error {
	query := `
		INSERT INTO revoked_tokens (token, revoked_at)
		VALUES ($1, $2)
		ON CONFLICT (token) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query, token.Token, token.RevokedAt)
	if err != nil {
		r.log.Error("Failed to blacklist token", zap.Error(err))
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (r *blacklistRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token = $1)`

	var revoked bool
	err := r.db.QueryRow(ctx, query, token).Scan(&revoked)
	if err != nil {
		r.log.Error("Failed to check token blacklist", zap.Error(err))
		return false, fmt.Errorf("check token blacklist: %w", err)
	}

	return revoked, nil
}

// DeleteOlderThan sweeps entries past the retention window; they are
// expired by then anyway.
func (r *blacklistRepository) DeleteOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	query := `
		DELETE FROM revoked_tokens
		WHERE revoked_at < NOW() - make_interval(days => $1)
	`

	result, err := r.db.Exec(ctx, query, retentionDays)
	if err != nil {
		r.log.Error("Failed to sweep revoked tokens", zap.Error(err))
		return 0, fmt.Errorf("sweep revoked tokens: %w", err)
	}

	return result.RowsAffected(), nil
}
