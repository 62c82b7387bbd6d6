package auth

import (
	"context"

	"github.com/parkwise/auth-service/internal/domain"
)

type RefreshResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
}

// Refresh validates a refresh token and mints a new access token.
// The refresh token is not rotated: it stays valid until its own expiry.
// Any codec failure, a vanished subject, or an inactive account all map
// to the same ErrRefreshTokenInvalid.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (RefreshResult, error) {
	if refreshToken == "" {
		return RefreshResult{}, domain.ErrRefreshTokenInvalid()
	}

	// TokenRefresh is required; an access token presented here fails
	// the type check inside Validate.
	userID, err := s.codec.Validate(refreshToken, TokenRefresh)
	if err != nil {
		return RefreshResult{}, domain.ErrRefreshTokenInvalid()
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if storeFault(err) {
			return RefreshResult{}, err
		}
		// If the user is gone, treat the token as invalid.
		return RefreshResult{}, domain.ErrRefreshTokenInvalid()
	}
	if !u.IsActive {
		return RefreshResult{}, domain.ErrRefreshTokenInvalid()
	}

	access, err := s.codec.Issue(u.ID, TokenAccess)
	if err != nil {
		return RefreshResult{}, err
	}

	return RefreshResult{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTTL.Seconds()),
	}, nil
}
