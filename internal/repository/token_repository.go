package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/aarwitz/fitlink-backend/internal/model"
)

// TokenRepo persists and validates refresh tokens.  Only the SHA-256 hash
// of a token ever reaches this layer.  Rows are revoked, never deleted:
// revoked_at doubles as the audit trail.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token hash row.  token_hash carries a unique
// index, so the astronomically unlikely collision fails the insert instead
// of silently overwriting another session.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, expiresAt)
	return err
}

// Consume atomically spends a refresh token for rotation and returns the
// owning user id.  The conditional UPDATE is the rotation gate: of two
// concurrent calls presenting the same token, exactly one observes
// RowsAffected()==1, so a one-time-use token can never be double-spent.
//
// ErrNotFound means no such token was ever issued; ErrTokenSpent means it
// exists but is already revoked or past its expiry.
func (r *TokenRepo) Consume(ctx context.Context, tokenHash string) (uint64, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE id=? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()",
		t.ID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrTokenSpent
	}
	return t.UserID, nil
}

// Revoke marks a token as revoked.  Revoking an unknown or already-revoked
// token is a no-op success, which makes logout idempotent.
func (r *TokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllForUser revokes all of a user's active tokens.  Used on account
// deletion and, when the policy is enabled, on password change.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}

// DeleteAllForUser physically removes a user's token rows.  Only account
// deletion calls this: the audit trail of spent tokens goes with the
// account, and no child row is left to block the users DELETE.
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}

// ActiveCountForUser reports how many usable tokens a user currently has.
// Surfaced as activeSessions on the account endpoint.
func (r *TokenRepo) ActiveCountForUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM refresh_tokens WHERE user_id=? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()",
		userID).Scan(&n)
	return n, err
}
