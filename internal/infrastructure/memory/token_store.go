package memory

import (
	"context"
	"sync"
	"time"

	"github.com/parkwise/auth-service/internal/application/auth"
	"github.com/parkwise/auth-service/internal/domain"
)

// TokenStore keeps one-time tokens in memory with the same semantics as
// the postgres store: issuing supersedes prior unused tokens of the
// same purpose, and Consume marks a token used exactly once.
type TokenStore struct {
	mu   sync.Mutex
	data map[string]tokenEntry // token -> entry
}

type tokenEntry struct {
	userID    string
	purpose   auth.TokenPurpose
	expiresAt time.Time
	used      bool
}

func NewTokenStore() *TokenStore {
	return &TokenStore{data: make(map[string]tokenEntry)}
}

func (s *TokenStore) Issue(ctx context.Context, userID string, purpose auth.TokenPurpose, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Supersede prior unused tokens for this user+purpose.
	for k, e := range s.data {
		if e.userID == userID && e.purpose == purpose && !e.used {
			e.used = true
			s.data[k] = e
		}
	}

	s.data[token] = tokenEntry{
		userID:    userID,
		purpose:   purpose,
		expiresAt: expiresAt,
	}
	return nil
}

func (s *TokenStore) Consume(ctx context.Context, token string, purpose auth.TokenPurpose, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[token]
	if !ok || e.used {
		return "", domain.ErrOneTimeTokenNotFound()
	}

	// Burn first, check after: a presented token is done either way.
	e.used = true
	s.data[token] = e

	if e.purpose != purpose {
		return "", domain.ErrOneTimeTokenPurposeMismatch()
	}
	if !now.Before(e.expiresAt) {
		return "", domain.ErrTokenExpired()
	}
	return e.userID, nil
}

func (s *TokenStore) Peek(ctx context.Context, token string, purpose auth.TokenPurpose, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[token]
	if !ok || e.used || e.purpose != purpose {
		return "", domain.ErrOneTimeTokenNotFound()
	}
	if !now.Before(e.expiresAt) {
		return "", domain.ErrTokenExpired()
	}
	return e.userID, nil
}
