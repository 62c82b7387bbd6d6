package auth

import (
	"context"
	"strings"

	"github.com/parkwise/auth-service/internal/domain"
	"github.com/parkwise/auth-service/internal/logger"
)

// PasswordResetRequest issues a reset token and requests delivery.
// IMPORTANT: non-enumerating — the caller always gets the same
// acknowledgment whether or not the email exists.
func (s *Service) PasswordResetRequest(ctx context.Context, email string) error {
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

	token, err := newOpaqueToken(32)
	if err != nil {
		return domain.ErrRandomFailed(err)
	}

	// Issuing supersedes any outstanding reset token for this user.
	expiresAt := s.now().Add(s.passwordResetTTL)
	if err := s.tokens.Issue(ctx, u.ID, PurposePasswordReset, token, expiresAt); err != nil {
		return err
	}

	if perr := s.pub.PublishPasswordReset(ctx, PasswordResetEvent{
		UserID:   u.ID,
		Email:    u.Email,
		Name:     u.Name,
		ResetURL: s.passwordResetBaseURL + token,
	}); perr != nil {
		logger.WithCtx(ctx).Warn().Err(perr).
			Str("user_id", u.ID).
			Msg("password reset email not dispatched")
	}
	return nil
}

// PasswordResetValidate checks whether a reset token is currently
// redeemable, without consuming it.
func (s *Service) PasswordResetValidate(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrMissingField("token")
	}
	_, err := s.tokens.Peek(ctx, token, PurposePasswordReset, s.now())
	if err != nil {
		return collapseTokenErr(err)
	}
	return nil
}

// PasswordResetConfirm consumes the reset token and replaces the
// password hash. Outstanding refresh tokens are NOT revoked: they are
// stateless claims and expire on their own.
func (s *Service) PasswordResetConfirm(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if newPassword == "" {
		return domain.ErrMissingField("new_password")
	}

	userID, err := s.tokens.Consume(ctx, token, PurposePasswordReset, s.now())
	if err != nil {
		return collapseTokenErr(err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return domain.ErrHashFailed(err)
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	s.notifyPasswordChanged(ctx, userID)
	return nil
}

// PasswordChange changes the password for an authenticated user.
func (s *Service) PasswordChange(ctx context.Context, userID, oldPassword, newPassword string) error {
	if userID == "" {
		return domain.ErrTokenMissing()
	}
	if oldPassword == "" || newPassword == "" {
		return domain.ErrInvalidField("password", "empty")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(u.PasswordHash, oldPassword); err != nil {
		return domain.ErrInvalidCredentials()
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return domain.ErrHashFailed(err)
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, newHash); err != nil {
		return err
	}

	s.notifyPasswordChanged(ctx, userID)
	return nil
}

func (s *Service) notifyPasswordChanged(ctx context.Context, userID string) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return
	}
	if perr := s.pub.PublishPasswordChanged(ctx, PasswordChangedEvent{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
	}); perr != nil {
		logger.WithCtx(ctx).Warn().Err(perr).
			Str("user_id", u.ID).
			Msg("password changed email not dispatched")
	}
}
