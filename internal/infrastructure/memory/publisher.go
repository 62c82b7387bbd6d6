package memory

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/parkwise/auth-service/internal/application/auth"
)

// NoopPublisher logs events instead of sending them. Used for local
// development when no broker is configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) PublishEmailVerification(ctx context.Context, evt auth.EmailVerificationEvent) error {
	log.Info().Str("user_id", evt.UserID).Str("email", evt.Email).Str("url", evt.VerifyURL).
		Msg("noop-pub: email verification")
	return nil
}

func (p *NoopPublisher) PublishWelcome(ctx context.Context, evt auth.WelcomeEvent) error {
	log.Info().Str("user_id", evt.UserID).Str("email", evt.Email).
		Msg("noop-pub: welcome")
	return nil
}

func (p *NoopPublisher) PublishPasswordReset(ctx context.Context, evt auth.PasswordResetEvent) error {
	log.Info().Str("user_id", evt.UserID).Str("email", evt.Email).Str("url", evt.ResetURL).
		Msg("noop-pub: password reset")
	return nil
}

func (p *NoopPublisher) PublishPasswordChanged(ctx context.Context, evt auth.PasswordChangedEvent) error {
	log.Info().Str("user_id", evt.UserID).Str("email", evt.Email).
		Msg("noop-pub: password changed")
	return nil
}

// RecordingPublisher captures events for inspection in tests.
type RecordingPublisher struct {
	mu sync.Mutex

	Verifications   []auth.EmailVerificationEvent
	Welcomes        []auth.WelcomeEvent
	Resets          []auth.PasswordResetEvent
	PasswordChanges []auth.PasswordChangedEvent
}

func NewRecordingPublisher() *RecordingPublisher { return &RecordingPublisher{} }

func (p *RecordingPublisher) PublishEmailVerification(ctx context.Context, evt auth.EmailVerificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Verifications = append(p.Verifications, evt)
	return nil
}

func (p *RecordingPublisher) PublishWelcome(ctx context.Context, evt auth.WelcomeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Welcomes = append(p.Welcomes, evt)
	return nil
}

func (p *RecordingPublisher) PublishPasswordReset(ctx context.Context, evt auth.PasswordResetEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Resets = append(p.Resets, evt)
	return nil
}

func (p *RecordingPublisher) PublishPasswordChanged(ctx context.Context, evt auth.PasswordChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.PasswordChanges = append(p.PasswordChanges, evt)
	return nil
}
