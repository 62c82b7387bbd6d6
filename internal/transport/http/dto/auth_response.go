package dto

import (
	"time"

	"github.com/parkwise/auth-service/internal/application/auth"
	"github.com/parkwise/auth-service/internal/domain"
)

// UserView is the standard user payload for auth responses.
// Password hashes never leave the service.
type UserView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	IsActive   bool      `json:"is_active"`
	IsAdmin    bool      `json:"is_admin"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		IsActive:   u.IsActive,
		IsAdmin:    u.IsAdmin,
		CreatedAt:  u.CreatedAt,
	}
}

// TokensView is the token payload returned by login.
type TokensView struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // "Bearer"
	ExpiresIn    int64  `json:"expires_in"` // seconds
}

func NewTokensView(t auth.TokenPair) TokensView {
	return TokensView{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		ExpiresIn:    t.ExpiresIn,
	}
}

// RegisterData is returned by register. No tokens until the email is
// verified.
type RegisterData struct {
	User UserView `json:"user"`
}

// AuthData is returned by login.
type AuthData struct {
	User   UserView   `json:"user"`
	Tokens TokensView `json:"tokens"`
}

// RefreshData is returned by refresh. Only a new access token; the
// refresh token is not rotated.
type RefreshData struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// MeData is returned by /me.
type MeData struct {
	User UserView `json:"user"`
}

// StatusData is the generic acknowledgement body.
type StatusData struct {
	Status string `json:"status"`
}

// PasswordResetValidateData reports whether a reset token is redeemable.
type PasswordResetValidateData struct {
	Valid bool `json:"valid"`
}
