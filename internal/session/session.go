// Package session keeps the bearer token of the signed-in user and tells
// subscribers when the session ends.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rogerio-castellano/finance-tracker/internal/apperrors"
	"github.com/rogerio-castellano/finance-tracker/internal/models"
)

type EndReason string

const (
	ReasonLogout       EndReason = "logout"
	ReasonExpired      EndReason = "expired"
	ReasonUnauthorized EndReason = "unauthorized"
	ReasonInvalid      EndReason = "invalid"
)

// Claims is the identity carried by a token.
type Claims struct {
	UserID    int
	ExpiresAt time.Time
}

// DecodeClaims reads the id and exp claims without verifying the signature.
// The client cannot verify it; the server does so on every request.
func DecodeClaims(token string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("malformed token: %w", err)
	}

	id, ok := claims["id"].(float64)
	if !ok || id <= 0 {
		return Claims{}, errors.New("token has no user id claim")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{}, errors.New("token has no expiry")
	}
	return Claims{UserID: int(id), ExpiresAt: exp.Time}, nil
}

// TokenStore persists the token between process runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

type Session struct {
	mu        sync.RWMutex
	token     string
	claims    Claims
	user      *models.User
	store     TokenStore
	listeners map[int]func(EndReason)
	nextID    int
	now       func() time.Time
}

// New creates an empty session. store may be nil for a session that lives
// only in memory.
func New(store TokenStore) *Session {
	return &Session{
		store:     store,
		listeners: map[int]func(EndReason){},
		now:       time.Now,
	}
}

// Begin starts a session with token. user may be nil when the identity is
// resolved later, for example after Restore.
func (s *Session) Begin(token string, user *models.User) error {
	const op = "session.Begin"

	claims, err := DecodeClaims(token)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUnauthorized, op, err)
	}
	if !s.now().Before(claims.ExpiresAt) {
		return apperrors.New(apperrors.KindUnauthorized, op, "token expired")
	}

	// Switching users must not leak the previous user's cache.
	if current, ok := s.Claims(); ok && current.UserID != claims.UserID {
		s.End(ReasonLogout)
	}

	s.mu.Lock()
	s.token = token
	s.claims = claims
	if user != nil {
		u := *user
		s.user = &u
	} else {
		s.user = nil
	}
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
	}
	return nil
}

// Restore resumes a session from the token store. It reports false when no
// usable token was stored, and forgets stale tokens.
func (s *Session) Restore() (bool, error) {
	if s.store == nil {
		return false, nil
	}
	token, err := s.store.Load()
	if err != nil {
		return false, fmt.Errorf("load token: %w", err)
	}
	if token == "" {
		return false, nil
	}
	if err := s.Begin(token, nil); err != nil {
		if apperrors.IsKind(err, apperrors.KindUnauthorized) {
			_ = s.store.Clear()
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Token returns the bearer token while the session is active. An expired
// token ends the session.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	token, exp := s.token, s.claims.ExpiresAt
	s.mu.RUnlock()

	if token == "" {
		return "", false
	}
	if !s.now().Before(exp) {
		s.End(ReasonExpired)
		return "", false
	}
	return token, true
}

func (s *Session) Active() bool {
	_, ok := s.Token()
	return ok
}

func (s *Session) Claims() (Claims, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims, s.token != ""
}

func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// SetUser records the resolved identity. It is ignored without an active session.
func (s *Session) SetUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return
	}
	s.user = &u
}

// End clears the session and the stored token. Listeners run after the
// session lock is released, and only when a session was actually active.
func (s *Session) End(reason EndReason) {
	s.mu.Lock()
	wasActive := s.token != ""
	s.token = ""
	s.claims = Claims{}
	s.user = nil
	listeners := make([]func(EndReason), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	if s.store != nil {
		_ = s.store.Clear()
	}
	if !wasActive {
		return
	}
	for _, fn := range listeners {
		fn(reason)
	}
}

// OnEnd registers fn to run whenever the session ends. The returned func
// removes the subscription.
func (s *Session) OnEnd(fn func(EndReason)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
