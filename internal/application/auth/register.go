package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/parkwise/auth-service/internal/domain"
	"github.com/parkwise/auth-service/internal/logger"
)

// Register creates an unverified, active account and requests delivery of
// a verification email. It never logs the user in and never returns
// tokens; the account cannot authenticate until the email is verified.
func (s *Service) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if password == "" {
		return domain.User{}, domain.ErrMissingField("password")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, domain.ErrHashFailed(err)
	}

	u := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsVerified:   false,
		IsActive:     true,
	}

	// The unique constraint on email decides races; a duplicate surfaces
	// as ErrEmailAlreadyExists from the store.
	created, err := s.users.Create(ctx, u)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.sendVerification(ctx, created); err != nil {
		// Delivery is best-effort: the account and token exist either
		// way, and the client must not see a registration failure.
		logger.WithCtx(ctx).Warn().Err(err).
			Str("user_id", created.ID).
			Msg("verification email not dispatched")
	}

	return created, nil
}

// ResendVerification re-issues the verification token for an unverified
// account. Always acknowledges: whether the email exists, and whether it
// is already verified, must not be observable.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if storeFault(err) {
			return err
		}
		// Unknown email: ack without acting.
		return nil
	}
	if u.IsVerified {
		return nil
	}

	if err := s.sendVerification(ctx, u); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).
			Str("user_id", u.ID).
			Msg("verification email not dispatched")
	}
	return nil
}

// sendVerification issues a fresh verification token (superseding any
// outstanding one) and publishes the email event.
func (s *Service) sendVerification(ctx context.Context, u domain.User) error {
	token, err := newOpaqueToken(32)
	if err != nil {
		return domain.ErrRandomFailed(err)
	}

	expiresAt := s.now().Add(s.verifyEmailTTL)
	if err := s.tokens.Issue(ctx, u.ID, PurposeVerifyEmail, token, expiresAt); err != nil {
		return err
	}

	return s.pub.PublishEmailVerification(ctx, EmailVerificationEvent{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		VerifyURL: s.verifyEmailBaseURL + token,
	})
}
