// Package session holds the bearer token shared by every API call. It is an
// explicit object injected into the HTTP client rather than process-wide
// state, and it tells its owner when the backend rejects the token.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/model"
)

// ErrNoToken is returned by a Store when nobody is signed in
var ErrNoToken = errors.New("no stored token")

// Store persists the token between runs
type Store interface {
	LoadToken(ctx context.Context) (string, *model.User, error)
	SaveToken(ctx context.Context, token string, user *model.User) error
	ClearToken(ctx context.Context) error
}

// Session is safe for concurrent use
type Session struct {
	mu             sync.RWMutex
	token          string
	user           *model.User
	store          Store
	onUnauthorized func()
}

// New creates a session backed by store, which may be nil for an in-memory
// session. onUnauthorized runs after a 401 cleared the token.
func New(store Store, onUnauthorized func()) *Session {
	return &Session{store: store, onUnauthorized: onUnauthorized}
}

// Restore loads a previously saved token. A missing token is not an error.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	token, user, err := s.store.LoadToken(ctx)
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return nil
		}
		return err
	}
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return nil
}

// Token returns the current bearer token, empty when signed out
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the signed-in user when known
func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Authenticated reports whether a token is held
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Set stores a fresh token after login
func (s *Session) Set(ctx context.Context, token string, user *model.User) error {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.SaveToken(ctx, token, user)
}

// SetUser records the user returned by a verify call without touching the token
func (s *Session) SetUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	s.user = user
	token := s.token
	s.mu.Unlock()

	if s.store == nil || token == "" {
		return nil
	}
	return s.store.SaveToken(ctx, token, user)
}

// Clear forgets the token locally and in the store
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.ClearToken(ctx)
}

// Unauthorized handles a 401: the token is cleared and the owner notified.
// Repeated 401s from requests already in flight notify only once.
func (s *Session) Unauthorized(ctx context.Context) {
	s.mu.Lock()
	had := s.token != ""
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.ClearToken(ctx); err != nil {
			log.Warn("Failed to clear stored token", "error", err)
		}
	}
	if had && s.onUnauthorized != nil {
		s.onUnauthorized()
	}
}

// Claims are the token fields shown to the user. They are read without
// verifying the signature; the backend decides whether a token is valid.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Claims decodes the held token. ok is false for opaque or missing tokens.
func (s *Session) Claims() (Claims, bool) {
	token := s.Token()
	if token == "" {
		return Claims{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, false
	}

	var c Claims
	if sub, err := claims.GetSubject(); err == nil {
		c.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, true
}
