package auth

import (
	"context"
	"time"

	"github.com/parkwise/auth-service/internal/domain"
)

/*
UserRepo
--------
Persistence port for users.
Only describes WHAT the auth service needs, not HOW it's stored.
Email uniqueness is enforced by the store (unique constraint), so
concurrent registrations with the same email yield one success and one
ErrEmailAlreadyExists.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// Updates needed by business flows
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
	SetVerified(ctx context.Context, userID string) error
	Deactivate(ctx context.Context, userID string) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenCodec
----------
Issues and validates the signed access/refresh token pair. Tokens are
self-contained claims; nothing is persisted. Validate fails when the
embedded type does not match want — type is checked explicitly on every
validation, never inferred from expiry.
*/
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

type TokenCodec interface {
	Issue(userID string, typ TokenType) (string, error)
	Validate(token string, want TokenType) (userID string, err error)
}

/*
OneTimeTokenStore
-----------------
Opaque single-use tokens for email verification and password reset,
persisted by the credential store. Issue invalidates any prior unused
token of the same purpose for the user. Consume is an atomic
mark-used-if-unused update: of any number of concurrent redemption
attempts, exactly one succeeds.
*/
type TokenPurpose string

const (
	PurposeVerifyEmail   TokenPurpose = "email_verify"
	PurposePasswordReset TokenPurpose = "password_reset"
)

type OneTimeTokenStore interface {
	Issue(ctx context.Context, userID string, purpose TokenPurpose, token string, expiresAt time.Time) error
	Consume(ctx context.Context, token string, purpose TokenPurpose, now time.Time) (userID string, err error)
	Peek(ctx context.Context, token string, purpose TokenPurpose, now time.Time) (userID string, err error)
}

/*
EventPublisher
--------------
Publishes email events to the broker. The email service consumes these
and sends the actual mail; the auth service never talks SMTP. Publish
failures on the register / forgot-password paths are logged, never
surfaced to the client.
*/
type EventPublisher interface {
	PublishEmailVerification(ctx context.Context, evt EmailVerificationEvent) error
	PublishWelcome(ctx context.Context, evt WelcomeEvent) error
	PublishPasswordReset(ctx context.Context, evt PasswordResetEvent) error
	PublishPasswordChanged(ctx context.Context, evt PasswordChangedEvent) error
}

/*
Event payloads
--------------
Strongly typed messages for MQ. The email service only needs the link,
not the token semantics.
*/
type EmailVerificationEvent struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	VerifyURL string `json:"verify_url"`
}

type WelcomeEvent struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type PasswordResetEvent struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	ResetURL string `json:"reset_url"`
}

type PasswordChangedEvent struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}
