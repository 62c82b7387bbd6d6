package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/parkwise/auth-service/internal/domain"
	"github.com/parkwise/auth-service/internal/logger"
)

// VerifyEmail consumes a verification token and flips the account to
// verified. A consumed token always fails on re-presentation; there is no
// silent success.
//
// Consume and SetVerified hit different stores, so they are not atomic.
// If SetVerified fails after the token is burned, the error surfaces to
// the client and the account stays unverified; recovery is the resend
// endpoint, which issues a fresh token for any unverified account.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrMissingField("token")
	}

	userID, err := s.tokens.Consume(ctx, token, PurposeVerifyEmail, s.now())
	if err != nil {
		return collapseTokenErr(err)
	}

	if err := s.users.SetVerified(ctx, userID); err != nil {
		return err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err == nil {
		if perr := s.pub.PublishWelcome(ctx, WelcomeEvent{
			UserID: u.ID,
			Email:  u.Email,
			Name:   u.Name,
		}); perr != nil {
			logger.WithCtx(ctx).Warn().Err(perr).
				Str("user_id", u.ID).
				Msg("welcome email not dispatched")
		}
	}

	return nil
}

// collapseTokenErr maps every store-level token failure (not found,
// expired, consumed, purpose mismatch) onto the single client-visible
// invalid-or-expired error. Infrastructure failures pass through.
func collapseTokenErr(err error) error {
	if storeFault(err) {
		return err
	}
	return domain.ErrOneTimeTokenInvalid(err)
}

// storeFault reports whether err is an infrastructure or internal
// failure. Such errors must reach the caller as-is: folding a DB outage
// into an auth response (or an enumeration-resistant ack) would hide
// the outage from both the client and the operator.
func storeFault(err error) bool {
	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case domain.KindInfrastructure, domain.KindInternal:
			return true
		}
	}
	return false
}
