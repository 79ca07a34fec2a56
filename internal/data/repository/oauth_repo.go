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

type OAuthRepository interface {
	FindByProviderID(ctx context.Context, provider, providerUserID string) (*entity.OAuthAccount, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.OAuthAccount, error)
	Link(ctx context.Context, account *entity.OAuthAccount) error
	Unlink(ctx context.Context, userID uuid.UUID, provider string) (bool, error)
	CreateUserWithIdentity(ctx context.Context, user *entity.User, account *entity.OAuthAccount) error
}

type oauthRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOAuthRepository(db database.PgxIface, log *zap.Logger) OAuthRepository {
	return &oauthRepository{
		db:  db,
		log: log.With(zap.String("repository", "oauth")),
	}
}

const oauthSelect = `
	SELECT id, user_id, provider, provider_user_id, created_at, updated_at
	FROM oauth_accounts
`

func (r *oauthRepository) FindByProviderID(ctx context.Context, provider, providerUserID string) (*entity.OAuthAccount, error) {
	query := oauthSelect + ` WHERE provider = $1 AND provider_user_id = $2`

	var account entity.OAuthAccount
	err := r.db.QueryRow(ctx, query, provider, providerUserID).Scan(
		&account.ID,
		&account.UserID,
		&account.Provider,
		&account.ProviderUserID,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find OAuth account",
			zap.Error(err),
			zap.String("provider", provider),
		)
		return nil, fmt.Errorf("find OAuth account %s/%s: %w", provider, providerUserID, err)
	}

	return &account, nil
}

func (r *oauthRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.OAuthAccount, error) {
	query := oauthSelect + ` WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list OAuth accounts",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("list OAuth accounts for %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var accounts []*entity.OAuthAccount
	for rows.Next() {
		var account entity.OAuthAccount
		err := rows.Scan(
			&account.ID,
			&account.UserID,
			&account.Provider,
			&account.ProviderUserID,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan OAuth account row: %w", err)
		}
		accounts = append(accounts, &account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate OAuth account rows: %w", err)
	}

	return accounts, nil
}

func (r *oauthRepository) Link(ctx context.Context, account *entity.OAuthAccount) error {
	query := `
		INSERT INTO oauth_accounts (id, user_id, provider, provider_user_id,
		                            created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, provider) DO UPDATE
		SET provider_user_id = EXCLUDED.provider_user_id,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query,
		account.ID,
		account.UserID,
		account.Provider,
		account.ProviderUserID,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to link OAuth account",
			zap.Error(err),
			zap.String("provider", account.Provider),
			zap.String("user_id", account.UserID.String()),
		)
		return fmt.Errorf("link %s account for %s: %w", account.Provider, account.UserID.String(), err)
	}

	return nil
}

func (r *oauthRepository) Unlink(ctx context.Context, userID uuid.UUID, provider string) (bool, error) {
	query := `DELETE FROM oauth_accounts WHERE user_id = $1 AND provider = $2`

	result, err := r.db.Exec(ctx, query, userID, provider)
	if err != nil {
		r.log.Error("Failed to unlink OAuth account",
			zap.Error(err),
			zap.String("provider", provider),
			zap.String("user_id", userID.String()),
		)
		return false, fmt.Errorf("unlink %s account for %s: %w", provider, userID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

// CreateUserWithIdentity inserts the account and its first identity in
// one transaction, so a failed identity insert never leaves an orphaned
// password-less user.
func (r *oauthRepository) CreateUserWithIdentity(ctx context.Context, user *entity.User, account *entity.OAuthAccount) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create OAuth user tx: %w", err)
	}
	defer tx.Rollback(ctx)

	userQuery := `
		INSERT INTO users (id, username, email, password,
		                  email_verified, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.Exec(ctx, userQuery,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.EmailVerified,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create OAuth user",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("create OAuth user %s: %w", user.Email, err)
	}

	accountQuery := `
		INSERT INTO oauth_accounts (id, user_id, provider, provider_user_id,
		                            created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = tx.Exec(ctx, accountQuery,
		account.ID,
		account.UserID,
		account.Provider,
		account.ProviderUserID,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create OAuth identity",
			zap.Error(err),
			zap.String("provider", account.Provider),
		)
		return fmt.Errorf("create %s identity for %s: %w", account.Provider, user.Email, err)
	}

	return tx.Commit(ctx)
}
