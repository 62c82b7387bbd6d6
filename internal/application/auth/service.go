package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

type Service struct {
	users  UserRepo
	hasher PasswordHasher
	codec  TokenCodec
	tokens OneTimeTokenStore
	pub    EventPublisher

	accessTTL time.Duration

	// URLs used to build links sent via the email service
	verifyEmailBaseURL   string // e.g. https://frontend/verify-email?token=
	passwordResetBaseURL string // e.g. https://frontend/reset-password?token=
	verifyEmailTTL       time.Duration
	passwordResetTTL     time.Duration

	now func() time.Time
}

type Config struct {
	AccessTTL             time.Duration
	VerifyEmailBaseURL    string
	PasswordResetBaseURL  string
	VerifyEmailTokenTTL   time.Duration
	PasswordResetTokenTTL time.Duration

	// Now overrides the clock, for deterministic expiry in tests.
	Now func() time.Time
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	codec TokenCodec,
	tokens OneTimeTokenStore,
	pub EventPublisher,
	cfg Config,
) *Service {
	verifyTTL := cfg.VerifyEmailTokenTTL
	if verifyTTL <= 0 {
		verifyTTL = 24 * time.Hour
	}
	resetTTL := cfg.PasswordResetTokenTTL
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		users:  users,
		hasher: hasher,
		codec:  codec,
		tokens: tokens,
		pub:    pub,

		accessTTL: cfg.AccessTTL,

		verifyEmailBaseURL:   cfg.VerifyEmailBaseURL,
		passwordResetBaseURL: cfg.PasswordResetBaseURL,
		verifyEmailTTL:       verifyTTL,
		passwordResetTTL:     resetTTL,

		now: now,
	}
}

// TokenPair is the common token output for handlers/DTO mapping.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string // "Bearer"
	ExpiresIn    int64  // access token lifetime, seconds
}

// issueTokenPair issues one access token and one refresh token.
func (s *Service) issueTokenPair(userID string) (TokenPair, error) {
	access, err := s.codec.Issue(userID, TokenAccess)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := s.codec.Issue(userID, TokenRefresh)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// newOpaqueToken returns a URL-safe opaque token.
func newOpaqueToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		return "", errors.New("invalid token length")
	}
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
