package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/parkwise/auth-service/internal/application/auth"
	"github.com/parkwise/auth-service/internal/domain"
)

// TokenRepo persists the opaque verification/reset tokens.
//
// Single-use semantics rest on the database, not on application code:
// Consume is one conditional UPDATE keyed on `used_at IS NULL`, so of any
// number of concurrent redemption attempts exactly one wins the row.
type TokenRepo struct {
	db *sql.DB
}

func NewTokenRepo(db *sql.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// Issue stores a new token and burns every outstanding unconsumed token
// of the same purpose for the user, so repeated requests do not
// accumulate redeemable tokens.
func (r *TokenRepo) Issue(ctx context.Context, userID string, purpose auth.TokenPurpose, token string, expiresAt time.Time) error {
	userID = strings.TrimSpace(userID)
	token = strings.TrimSpace(token)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if token == "" {
		return domain.ErrMissingField("token")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	defer func() { _ = tx.Rollback() }()

	const supersede = `
UPDATE one_time_tokens
SET used_at = NOW()
WHERE user_id = $1 AND purpose = $2 AND used_at IS NULL;
`
	if _, err := tx.ExecContext(ctx, supersede, userID, string(purpose)); err != nil {
		return domain.ErrDBUnavailable(err)
	}

	const insert = `
INSERT INTO one_time_tokens (token, user_id, purpose, expires_at)
VALUES ($1,$2,$3,$4);
`
	if _, err := tx.ExecContext(ctx, insert, token, userID, string(purpose), expiresAt); err != nil {
		return domain.ErrDBUnavailable(err)
	}

	if err := tx.Commit(); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

// Consume atomically marks the token used and returns the bound user id.
// The row is claimed unconditionally on presentation (the UPDATE fires
// before the purpose/expiry checks), so an expired or misdirected token
// is burned and cannot be retried later.
func (r *TokenRepo) Consume(ctx context.Context, token string, purpose auth.TokenPurpose, now time.Time) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrMissingField("token")
	}

	const q = `
UPDATE one_time_tokens
SET used_at = $2
WHERE token = $1 AND used_at IS NULL
RETURNING user_id, purpose, expires_at;
`
	var (
		userID    string
		rowPurp   string
		expiresAt time.Time
	)
	err := r.db.QueryRowContext(ctx, q, token, now).Scan(&userID, &rowPurp, &expiresAt)
	if err != nil {
		if isNoRows(err) {
			// unknown, already consumed, or superseded
			return "", domain.ErrOneTimeTokenNotFound()
		}
		return "", domain.ErrDBUnavailable(err)
	}

	if rowPurp != string(purpose) {
		return "", domain.ErrOneTimeTokenPurposeMismatch()
	}
	if !now.Before(expiresAt) {
		return "", domain.ErrTokenExpired()
	}
	return userID, nil
}

// Peek reports whether the token is currently redeemable for the given
// purpose, without consuming it.
func (r *TokenRepo) Peek(ctx context.Context, token string, purpose auth.TokenPurpose, now time.Time) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrMissingField("token")
	}

	const q = `
SELECT user_id, expires_at
FROM one_time_tokens
WHERE token = $1 AND purpose = $2 AND used_at IS NULL
LIMIT 1;
`
	var (
		userID    string
		expiresAt time.Time
	)
	err := r.db.QueryRowContext(ctx, q, token, string(purpose)).Scan(&userID, &expiresAt)
	if err != nil {
		if isNoRows(err) {
			return "", domain.ErrOneTimeTokenNotFound()
		}
		return "", domain.ErrDBUnavailable(err)
	}

	if !now.Before(expiresAt) {
		return "", domain.ErrTokenExpired()
	}
	return userID, nil
}
