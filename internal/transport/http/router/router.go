package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parkwise/auth-service/internal/metrics"
	"github.com/parkwise/auth-service/internal/transport/http/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	// Core auth
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	Deactivate(w http.ResponseWriter, r *http.Request)

	// Email verification
	VerifyEmailRequest(w http.ResponseWriter, r *http.Request)
	VerifyEmailConfirmGET(w http.ResponseWriter, r *http.Request)
	VerifyEmailConfirmPOST(w http.ResponseWriter, r *http.Request)

	// Password reset / change
	PasswordResetRequest(w http.ResponseWriter, r *http.Request)
	PasswordResetValidate(w http.ResponseWriter, r *http.Request)
	PasswordResetConfirm(w http.ResponseWriter, r *http.Request)
	PasswordChange(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health HealthHandler
	Auth   AuthHandler

	AuthMW func(http.Handler) http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", metrics.MetricsHandler())

	r.Route("/auth/v1", func(r chi.Router) {
		// --- Core auth ---
		r.Post("/register", deps.Auth.Register)
		r.Post("/login", deps.Auth.Login)
		r.Post("/refresh", deps.Auth.Refresh)
		r.With(deps.AuthMW).Get("/me", deps.Auth.Me)
		r.With(deps.AuthMW).Post("/me/deactivate", deps.Auth.Deactivate)

		// --- Email verification ---
		r.Post("/verify-email/request", deps.Auth.VerifyEmailRequest)
		r.Get("/verify-email/confirm", deps.Auth.VerifyEmailConfirmGET) // ?token=...
		r.Post("/verify-email/confirm", deps.Auth.VerifyEmailConfirmPOST)

		// --- Password reset ---
		r.Post("/password/reset/request", deps.Auth.PasswordResetRequest)
		r.Get("/password/reset/validate", deps.Auth.PasswordResetValidate) // ?token=...
		r.Post("/password/reset/confirm", deps.Auth.PasswordResetConfirm)

		// --- Password change (authenticated) ---
		r.With(deps.AuthMW).Post("/password/change", deps.Auth.PasswordChange)
	})

	return r, nil
}
