package auth

import (
	"context"
	"strings"

	"github.com/parkwise/auth-service/internal/domain"
)

// GetUserByID loads the current user for the /me endpoint.
func (s *Service) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.User{}, domain.ErrMissingField("user_id")
	}
	return s.users.GetByID(ctx, userID)
}

// DeactivateAccount flips the account inactive. Login rejects inactive
// accounts regardless of verification; the record itself is kept.
func (s *Service) DeactivateAccount(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	return s.users.Deactivate(ctx, userID)
}
