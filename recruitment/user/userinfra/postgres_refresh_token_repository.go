package userinfra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/user"
)

// PostgresRefreshTokenRepository implements user.RefreshTokenRepository
// using PostgreSQL. Rows are keyed by the SHA-256 hash of the opaque token.
type PostgresRefreshTokenRepository struct {
	db *sqlx.DB
}

// NewPostgresRefreshTokenRepository creates a new PostgreSQL refresh token repository
func NewPostgresRefreshTokenRepository(db *sqlx.DB) *PostgresRefreshTokenRepository {
	return &PostgresRefreshTokenRepository{
		db: db,
	}
}

// ============================================================================
// Database Model
// ============================================================================

type refreshTokenModel struct {
	TokenHash string     `db:"token_hash"`
	UserID    string     `db:"user_id"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// toEntity converts database model to domain entity
func (m *refreshTokenModel) toEntity() *user.RefreshToken {
	return &user.RefreshToken{
		TokenHash: m.TokenHash,
		UserID:    kernel.UserID(m.UserID),
		ExpiresAt: m.ExpiresAt,
		RevokedAt: m.RevokedAt,
		CreatedAt: m.CreatedAt,
	}
}

// fromRefreshTokenEntity converts domain entity to database model
func fromRefreshTokenEntity(t *user.RefreshToken) *refreshTokenModel {
	return &refreshTokenModel{
		TokenHash: t.TokenHash,
		UserID:    string(t.UserID),
		ExpiresAt: t.ExpiresAt,
		RevokedAt: t.RevokedAt,
		CreatedAt: t.CreatedAt,
	}
}

// ============================================================================
// Repository Implementation
// ============================================================================

// Create stores a new refresh token hash
func (r *PostgresRefreshTokenRepository) Create(ctx context.Context, t *user.RefreshToken) error {
	model := fromRefreshTokenEntity(t)

	query := `
		INSERT INTO refresh_tokens (
			token_hash, user_id, expires_at, revoked_at, created_at
		) VALUES (
			:token_hash, :user_id, :expires_at, :revoked_at, :created_at
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, model)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}

	return nil
}

// GetByHash retrieves a refresh token by its hash
func (r *PostgresRefreshTokenRepository) GetByHash(ctx context.Context, hash string) (*user.RefreshToken, error) {
	query := `
		SELECT token_hash, user_id, expires_at, revoked_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`

	var model refreshTokenModel
	err := r.db.GetContext(ctx, &model, query, hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, auth.ErrTokenInvalid()
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return model.toEntity(), nil
}

// Revoke marks a single token as revoked. Tokens already revoked are left
// untouched so reuse shows up as a zero-row update.
func (r *PostgresRefreshTokenRepository) Revoke(ctx context.Context, hash string) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $1
		WHERE token_hash = $2 AND revoked_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), hash)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return auth.ErrTokenInvalid()
	}

	return nil
}

// RevokeAllForUser invalidates every live token of a user
func (r *PostgresRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID kernel.UserID) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $1
		WHERE user_id = $2 AND revoked_at IS NULL
	`

	_, err := r.db.ExecContext(ctx, query, time.Now(), string(userID))
	if err != nil {
		return fmt.Errorf("failed to revoke user refresh tokens: %w", err)
	}

	return nil
}
