package auth

import (
	"context"
	"strings"

	"github.com/parkwise/auth-service/internal/domain"
)

type LoginResult struct {
	User   domain.User
	Tokens TokenPair
}

// Login authenticates a user and issues an access + refresh token pair.
// IMPORTANT: unknown email and wrong password both return
// ErrInvalidCredentials (avoid user enumeration). Verification and
// active-state gates only apply after the password checks out, so their
// errors never leak account existence to an unauthenticated caller.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" || password == "" {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if storeFault(err) {
			return LoginResult{}, err
		}
		// Hide not-found behind invalid credentials
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	if !u.IsVerified {
		return LoginResult{}, domain.ErrEmailNotVerified()
	}
	if !u.IsActive {
		return LoginResult{}, domain.ErrAccountInactive()
	}

	toks, err := s.issueTokenPair(u.ID)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{User: u, Tokens: toks}, nil
}
