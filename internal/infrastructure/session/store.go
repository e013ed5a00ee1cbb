// Package session holds the authenticated principal for the running
// process. The bearer token is the only state persisted on disk; the
// decoded principal lives in memory and is rebuilt on every start.
package session

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clinadm/internal/shared/authorization"
	"clinadm/internal/shared/errors"
	"clinadm/internal/shared/logger"
)

// Principal is the authenticated actor as established by the current session.
type Principal struct {
	Username    string
	Role        authorization.UserRole
	TokenExpiry time.Time
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Store persists the bearer token and tracks the decoded principal.
// All protected views receive the principal from here instead of
// re-interpreting the token themselves.
type Store struct {
	path string

	mu        sync.RWMutex
	token     string
	principal *Principal
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Open reads the persisted token, if any. An expired or undecodable token
// is treated identically to no session and purged from disk.
func (s *Store) Open() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	token := string(data)
	principal, err := decodePrincipal(token)
	if err != nil {
		logger.Debug("purging unusable session token", "error", err)
		return s.Clear()
	}

	s.mu.Lock()
	s.token = token
	s.principal = principal
	s.mu.Unlock()
	return nil
}

// SetToken decodes the token, stores it on disk, and installs the principal.
func (s *Store) SetToken(token string) error {
	principal, err := decodePrincipal(token)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.principal = principal
	s.mu.Unlock()
	return nil
}

// Clear removes the persisted token and the in-memory principal. It is
// synchronous: when it returns, no trace of the session remains.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.principal = nil
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Token returns the bearer token, or "" when no session is open.
// A token that expired since Open is purged on first use.
func (s *Store) Token() string {
	s.mu.RLock()
	token := s.token
	principal := s.principal
	s.mu.RUnlock()

	if principal != nil && time.Now().After(principal.TokenExpiry) {
		_ = s.Clear()
		return ""
	}
	return token
}

// Current returns the decoded principal, or nil when no session is open.
func (s *Store) Current() *Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return nil
	}
	if time.Now().After(s.principal.TokenExpiry) {
		return nil
	}
	clone := *s.principal
	return &clone
}

// SetRole records the role resolved from the server for tokens that do not
// carry a role claim. In-memory only; the token on disk is untouched.
func (s *Store) SetRole(role authorization.UserRole) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal != nil {
		s.principal.Role = role
	}
}

// decodePrincipal extracts the claims without verifying the signature.
// The client has no signing secret; the server re-validates every request,
// so the claims are only trusted for display and UI gating.
func decodePrincipal(token string) (*Principal, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return nil, errors.NewUnauthorizedError("session token could not be decoded", err.Error())
	}
	if c.Subject == "" {
		return nil, errors.NewUnauthorizedError("session token carries no subject")
	}
	if c.ExpiresAt == nil {
		return nil, errors.NewUnauthorizedError("session token carries no expiry")
	}
	if time.Now().After(c.ExpiresAt.Time) {
		return nil, errors.NewUnauthorizedError("session token is expired")
	}

	principal := &Principal{
		Username:    c.Subject,
		TokenExpiry: c.ExpiresAt.Time,
	}
	if c.Role != "" {
		principal.Role = authorization.ParseUserRole(c.Role)
	}
	return principal, nil
}
