package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkwise/auth-service/internal/application/auth"
	"github.com/parkwise/auth-service/internal/domain"
)

func setupTokenRepo(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *TokenRepo) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err, "failed to create mock database")
	return db, mock, NewTokenRepo(db)
}

func TestTokenRepo_Issue_SupersedesThenInserts(t *testing.T) {
	db, mock, repo := setupTokenRepo(t)
	defer db.Close()

	expiresAt := time.Now().Add(24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE one_time_tokens\s+SET used_at = NOW\(\)\s+WHERE user_id = \$1 AND purpose = \$2 AND used_at IS NULL`).
		WithArgs("u1", "email_verify").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO one_time_tokens \(token, user_id, purpose, expires_at\)`).
		WithArgs("tok123", "u1", "email_verify", expiresAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Issue(context.Background(), "u1", auth.PurposeVerifyEmail, "tok123", expiresAt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_Issue_InsertErrorRollsBack(t *testing.T) {
	db, mock, repo := setupTokenRepo(t)
	defer db.Close()

	expiresAt := time.Now().Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE one_time_tokens`).
		WithArgs("u1", "password_reset").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO one_time_tokens`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Issue(context.Background(), "u1", auth.PurposePasswordReset, "tok", expiresAt)
	assert.True(t, domain.Is(err, "db_unavailable"), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_Issue_MissingArgs(t *testing.T) {
	db, _, repo := setupTokenRepo(t)
	defer db.Close()

	err := repo.Issue(context.Background(), "", auth.PurposeVerifyEmail, "tok", time.Now())
	assert.True(t, domain.Is(err, "missing_field"), "got %v", err)

	err = repo.Issue(context.Background(), "u1", auth.PurposeVerifyEmail, "", time.Now())
	assert.True(t, domain.Is(err, "missing_field"), "got %v", err)
}

func TestTokenRepo_Consume_Success(t *testing.T) {
	db, mock, repo := setupTokenRepo(t)
	defer db.Close()

	now := time.Now()
	expiresAt := now.Add(time.Hour)

	mock.ExpectQuery(`UPDATE one_time_tokens\s+SET used_at = \$2\s+WHERE token = \$1 AND used_at IS NULL\s+RETURNING user_id, purpose, expires_at`).
		WithArgs("tok123", now).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "purpose", "expires_at"}).
			AddRow("u1", "email_verify", expiresAt))

	userID, err := repo.Consume(context.Background(), "tok123", auth.PurposeVerifyEmail, now)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_Consume_AlreadyUsedOrUnknown(t *testing.T) {
	db, mock, repo := setupTokenRepo(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`UPDATE one_time_tokens`).
		WithArgs("tok123", now).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Consume(context.Background(), "tok123", auth.PurposeVerifyEmail, now)
	assert.True(t, domain.Is(err, "one_time_token_not_found"), "got %v", err)
}

func TestTokenRepo_Consume_PurposeMismatchBurnsToken(t *testing.T) {
	db, mock, repo := setupTokenRepo(t)
	defer db.Close()

	now := time.Now()
	// The UPDATE claims the row before the purpose check, so the token
	// is spent even though the call fails.
	mock.ExpectQuery(`UPDATE one_time_tokens`).
		WithArgs("tok123", now).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "purpose", "expires_at"}).
			AddRow("u1", "password_reset", now.Add(time.Hour)))

	_, err := repo.Consume(context.Background(), "tok123", auth.PurposeVerifyEmail, now)
	assert.True(t, domain.Is(err, "one_time_token_purpose_mismatch"), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_Consume_Expired(t *testing.T) {
	db, mock, repo := setupTokenRepo(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`UPDATE one_time_tokens`).
		WithArgs("tok123", now).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "purpose", "expires_at"}).
			AddRow("u1", "email_verify", now.Add(-time.Second)))

	_, err := repo.Consume(context.Background(), "tok123", auth.PurposeVerifyEmail, now)
	assert.True(t, domain.Is(err, "token_expired"), "got %v", err)
}

func TestTokenRepo_Consume_ExpiryBoundary(t *testing.T) {
	db, mock, repo := setupTokenRepo(t)
	defer db.Close()

	// expires_at == now is expired.
	now := time.Now()
	mock.ExpectQuery(`UPDATE one_time_tokens`).
		WithArgs("tok123", now).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "purpose", "expires_at"}).
			AddRow("u1", "email_verify", now))

	_, err := repo.Consume(context.Background(), "tok123", auth.PurposeVerifyEmail, now)
	assert.True(t, domain.Is(err, "token_expired"), "got %v", err)
}

func TestTokenRepo_Peek_Success(t *testing.T) {
	db, mock, repo := setupTokenRepo(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT user_id, expires_at\s+FROM one_time_tokens\s+WHERE token = \$1 AND purpose = \$2 AND used_at IS NULL`).
		WithArgs("tok123", "password_reset").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).
			AddRow("u1", now.Add(time.Hour)))

	userID, err := repo.Peek(context.Background(), "tok123", auth.PurposePasswordReset, now)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestTokenRepo_Peek_NotFound(t *testing.T) {
	db, mock, repo := setupTokenRepo(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WithArgs("tok123", "password_reset").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Peek(context.Background(), "tok123", auth.PurposePasswordReset, now)
	assert.True(t, domain.Is(err, "one_time_token_not_found"), "got %v", err)
}

func TestTokenRepo_Peek_Expired(t *testing.T) {
	db, mock, repo := setupTokenRepo(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WithArgs("tok123", "password_reset").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).
			AddRow("u1", now.Add(-time.Minute)))

	_, err := repo.Peek(context.Background(), "tok123", auth.PurposePasswordReset, now)
	assert.True(t, domain.Is(err, "token_expired"), "got %v", err)
}
