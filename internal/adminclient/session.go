// Package adminclient is a Go client for the admin back-office API. It keeps
// the login session, exposes typed calls for every endpoint and maintains a
// local board of documents and quote requests with optimistic updates.
package adminclient

import (
	"errors"
	"sync"
	"time"
)

// ErrSessionExpired means there is no usable token and the caller has to log in again
var ErrSessionExpired = errors.New("session expired")

// Session holds the admin token between calls. It is safe for concurrent use.
type Session struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// NewSession returns an empty session
func NewSession() *Session {
	return &Session{now: time.Now}
}

// Set stores the token issued at login
func (s *Session) Set(token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiresAt = expiresAt
}

// Token returns the current token, or ErrSessionExpired when there is none or
// it has run out. An expired token is dropped.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	token, expiresAt := s.token, s.expiresAt
	s.mu.RUnlock()

	if token == "" {
		return "", ErrSessionExpired
	}
	if !expiresAt.IsZero() && !s.now().Before(expiresAt) {
		s.Clear()
		return "", ErrSessionExpired
	}
	return token, nil
}

// Valid reports whether an authenticated call can be made
func (s *Session) Valid() bool {
	_, err := s.Token()
	return err == nil
}

// ExpiresAt is the expiry of the current token; zero when logged out
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Clear forgets the token
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
}
