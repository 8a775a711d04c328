// Package session tracks the signed-in user and gates gateway calls behind it.
package session

import (
	"fmt"
	"sync"
	"time"

	"metrodoc/internal/auth"
	"metrodoc/internal/model"
)

// Session holds the bearer token of the signed-in user. The zero value is not usable; call New.
type Session struct {
	clock func() time.Time

	mu      sync.RWMutex
	token   string
	user    model.User
	expires time.Time
}

// New returns an empty session. A nil clock defaults to time.Now.
func New(clock func() time.Time) *Session {
	if clock == nil {
		clock = time.Now
	}
	return &Session{clock: clock}
}

// Start records a successful login. The expiry is read from the token's exp claim without
// verifying the signature; a token without exp never expires client-side.
func (s *Session) Start(res model.AuthResult) error {
	if res.Token == "" {
		return fmt.Errorf("start session: %w", model.ErrUnauthenticated)
	}
	exp, err := auth.ExpiryUnverified(res.Token)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	s.mu.Lock()
	s.token = res.Token
	s.user = res.User
	s.expires = exp
	s.mu.Unlock()
	return nil
}

// End discards the session.
func (s *Session) End() {
	s.mu.Lock()
	s.token = ""
	s.user = model.User{}
	s.expires = time.Time{}
	s.mu.Unlock()
}

// Token returns the bearer token, or ErrUnauthenticated when there is none or it has expired.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", model.ErrUnauthenticated
	}
	if !s.expires.IsZero() && !s.clock().Before(s.expires) {
		return "", fmt.Errorf("session expired at %s: %w", s.expires.Format(time.RFC3339), model.ErrUnauthenticated)
	}
	return s.token, nil
}

// Authenticated reports whether Token would succeed.
func (s *Session) Authenticated() bool {
	_, err := s.Token()
	return err == nil
}

// User returns the signed-in user.
func (s *Session) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.token != ""
}

// ExpiresAt returns the token expiry, zero if unknown.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expires
}
