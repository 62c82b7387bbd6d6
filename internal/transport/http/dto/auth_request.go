package dto

import (
	"strings"

	"github.com/parkwise/auth-service/internal/domain"
)

// -------- Core auth --------

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=100,password_strength"`
}

func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	return validateStruct(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	return validateStruct(r)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (r *RefreshRequest) Validate() error {
	return validateStruct(r)
}

// -------- Email verification --------

// Resend; always acked regardless of whether the email exists.
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *VerifyEmailRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	return validateStruct(r)
}

type VerifyEmailConfirmRequest struct {
	Token string `json:"token" validate:"required"`
}

func (r *VerifyEmailConfirmRequest) Validate() error {
	return validateStruct(r)
}

// -------- Password reset --------

// Step A: request reset (always 200 to avoid enumeration).
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *PasswordResetRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	return validateStruct(r)
}

// Step B: confirm reset.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=100,password_strength"`
}

func (r *PasswordResetConfirmRequest) Validate() error {
	return validateStruct(r)
}

// Validate reset token before showing the reset form.
type PasswordResetValidateQuery struct {
	Token string `json:"-"` // filled from query param, not JSON
}

func (q *PasswordResetValidateQuery) Validate() error {
	if q.Token == "" {
		return domain.ErrMissingField("token")
	}
	return nil
}

// -------- Password change (authenticated) --------

type PasswordChangeRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=100,password_strength"`
}

func (r *PasswordChangeRequest) Validate() error {
	return validateStruct(r)
}
