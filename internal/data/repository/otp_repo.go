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

type OTPRepository interface {
	Replace(ctx context.Context, otp *entity.OTP) error
	FindLatest(ctx context.Context, email string, purpose entity.OTPPurpose) (*entity.OTP, error)
	RegisterFailure(ctx context.Context, otpID uuid.UUID, lockoutMinutes int) (*entity.OTP, error)
	Delete(ctx context.Context, otpID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type otpRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOTPRepository(db database.PgxIface, log *zap.Logger) OTPRepository {
	return &otpRepository{
		db:  db,
		log: log.With(zap.String("repository", "otp")),
	}
}

// Replace removes any prior code for the (email, purpose) pair and
// inserts the new one in a single transaction, keeping at most one
// active code per pair.
func (r *otpRepository) Replace(ctx context.Context, otp *entity.OTP) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace OTP tx: %w", err)
	}
	defer tx.Rollback(ctx)

	deleteQuery := `
		DELETE FROM otps
		WHERE email = $1 AND purpose = $2
	`

	if _, err := tx.Exec(ctx, deleteQuery, otp.Email, otp.Purpose); err != nil {
		r.log.Error("Failed to delete prior OTPs",
			zap.Error(err),
			zap.String("email", otp.Email),
			zap.String("purpose", string(otp.Purpose)),
		)
		return fmt.Errorf("delete prior OTPs for %s: %w", otp.Email, err)
	}

	insertQuery := `
		INSERT INTO otps (id, email, otp_code, purpose, expires_at,
		                  failed_attempts, max_attempts, locked_until, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = tx.Exec(ctx, insertQuery,
		otp.ID,
		otp.Email,
		otp.Code,
		otp.Purpose,
		otp.ExpiresAt,
		otp.FailedAttempts,
		otp.MaxAttempts,
		otp.LockedUntil,
		otp.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to insert OTP",
			zap.Error(err),
			zap.String("email", otp.Email),
			zap.String("purpose", string(otp.Purpose)),
		)
		return fmt.Errorf("insert OTP for %s: %w", otp.Email, err)
	}

	return tx.Commit(ctx)
}

// FindLatest returns the newest code for the pair regardless of expiry.
// The code value is deliberately not part of the predicate; the caller
// compares it so wrong guesses can be counted, and expired codes stay
// visible for lockout checks.
func (r *otpRepository) FindLatest(ctx context.Context, email string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	query := `
		SELECT id, email, otp_code, purpose, expires_at,
		       failed_attempts, max_attempts, locked_until, created_at
		FROM otps
		WHERE email = $1
		  AND purpose = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	return r.findOne(ctx, query, email, purpose)
}

func (r *otpRepository) findOne(ctx context.Context, query, email string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	var otp entity.OTP
	err := r.db.QueryRow(ctx, query, email, purpose).Scan(
		&otp.ID,
		&otp.Email,
		&otp.Code,
		&otp.Purpose,
		&otp.ExpiresAt,
		&otp.FailedAttempts,
		&otp.MaxAttempts,
		&otp.LockedUntil,
		&otp.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find OTP",
			zap.Error(err),
			zap.String("email", email),
			zap.String("purpose", string(purpose)),
		)
		return nil, fmt.Errorf("find OTP for %s purpose %s: %w", email, purpose, err)
	}

	return &otp, nil
}

// RegisterFailure increments the failure counter and arms the lockout in
// one atomic statement, so two concurrent wrong guesses cannot both slip
// under the limit.
func (r *otpRepository) RegisterFailure(ctx context.Context, otpID uuid.UUID, lockoutMinutes int) (*entity.OTP, error) {
	query := `
		UPDATE otps
		SET failed_attempts = failed_attempts + 1,
		    locked_until = CASE
		        WHEN failed_attempts + 1 >= max_attempts
		        THEN NOW() + make_interval(mins => $2)
		        ELSE locked_until
		    END
		WHERE id = $1
		RETURNING id, email, otp_code, purpose, expires_at,
		          failed_attempts, max_attempts, locked_until, created_at
	`

	var otp entity.OTP
	err := r.db.QueryRow(ctx, query, otpID, lockoutMinutes).Scan(
		&otp.ID,
		&otp.Email,
		&otp.Code,
		&otp.Purpose,
		&otp.ExpiresAt,
		&otp.FailedAttempts,
		&otp.MaxAttempts,
		&otp.LockedUntil,
		&otp.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("OTP %s not found", otpID.String())
	}
	if err != nil {
		r.log.Error("Failed to register OTP failure",
			zap.Error(err),
			zap.String("otp_id", otpID.String()),
		)
		return nil, fmt.Errorf("register failure for OTP %s: %w", otpID.String(), err)
	}

	return &otp, nil
}

func (r *otpRepository) Delete(ctx context.Context, otpID uuid.UUID) error {
	query := `DELETE FROM otps WHERE id = $1`

	result, err := r.db.Exec(ctx, query, otpID)
	if err != nil {
		r.log.Error("Failed to delete OTP",
			zap.Error(err),
			zap.String("otp_id", otpID.String()),
		)
		return fmt.Errorf("delete OTP %s: %w", otpID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("OTP %s not found", otpID.String())
	}

	return nil
}

// DeleteExpired sweeps expired codes. Rows still inside their lockout
// window are kept, otherwise the sweep would erase an active lockout.
func (r *otpRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM otps
		WHERE expires_at < NOW()
		  AND (locked_until IS NULL OR locked_until < NOW())
	`

	result, err := r.db.Exec(ctx, query)
	if err != nil {
		r.log.Error("Failed to sweep expired OTPs", zap.Error(err))
		return 0, fmt.Errorf("sweep expired OTPs: %w", err)
	}

	return result.RowsAffected(), nil
}
