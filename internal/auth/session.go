// Package auth holds the signed-in identity for one run of the client.
//
// A Session is created once at startup, hydrated from the OS keyring, and
// passed to everything that needs it. The persisted record is the only
// signal of being signed in.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/julianstephens/pibble/internal/api"
	"github.com/julianstephens/pibble/internal/constants"
	"github.com/julianstephens/pibble/internal/keyring"
	"github.com/julianstephens/pibble/internal/logger"
	"github.com/julianstephens/pibble/internal/models"
)

// Identity is who the client acts as
type Identity struct {
	ID          string
	Email       string
	DisplayName string
	Demo        bool
}

// Store persists session records
type Store interface {
	GetToken() (keyring.TokenRecord, error)
	SetToken(keyring.TokenRecord) error
	GetDemo() (keyring.DemoRecord, error)
	SetDemo(keyring.DemoRecord) error
	ClearSession() error
}

type keyringStore struct{}

func (keyringStore) GetToken() (keyring.TokenRecord, error) { return keyring.GetToken() }
func (keyringStore) SetToken(rec keyring.TokenRecord) error { return keyring.SetToken(rec) }
func (keyringStore) GetDemo() (keyring.DemoRecord, error)   { return keyring.GetDemo() }
func (keyringStore) SetDemo(rec keyring.DemoRecord) error   { return keyring.SetDemo(rec) }
func (keyringStore) ClearSession() error                    { return keyring.ClearSession() }

// KeyringStore persists sessions in the OS keyring
func KeyringStore() Store {
	return keyringStore{}
}

type Session struct {
	mu       sync.RWMutex
	store    Store
	now      func() time.Time
	token    string
	expires  time.Time
	identity *Identity
}

type Option func(*Session)

func WithStore(store Store) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithClock overrides the time source used for expiry checks
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		store: KeyringStore(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TokenExpiry reads the exp claim without verifying the signature
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("decoding token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("reading exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, errors.New("token has no exp claim")
	}
	return exp.Time, nil
}

// usable reports whether a token expiring at exp is still good at now
func usable(exp, now time.Time) bool {
	return exp.After(now.Add(constants.TokenExpiryLeeway))
}

// Hydrate loads the persisted session. An expired or unreadable token is
// cleared and leaves the session signed out; it is not an error.
func (s *Session) Hydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()

	rec, err := s.store.GetToken()
	switch {
	case err == nil:
		exp, expErr := TokenExpiry(rec.AccessToken)
		if expErr != nil || !usable(exp, s.now()) {
			logger.Info("Discarding stored session", "reason", expiryReason(expErr))
			return s.store.ClearSession()
		}
		s.token = rec.AccessToken
		s.expires = exp
		s.identity = &Identity{ID: rec.User.ID, Email: rec.User.Email, DisplayName: rec.User.DisplayName}
		return nil
	case !errors.Is(err, keyring.ErrNotFound):
		return err
	}

	demo, err := s.store.GetDemo()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return err
	}
	name := demo.Name
	if name == "" {
		name = models.DefaultDemoName(demo.Email)
	}
	s.identity = &Identity{Email: demo.Email, DisplayName: name, Demo: true}
	return nil
}

func expiryReason(err error) string {
	if err != nil {
		return err.Error()
	}
	return "token expired"
}

// Login persists a token session and replaces any demo identity.
func (s *Session) Login(resp models.AuthResponse) error {
	if resp.AccessToken == "" {
		return errors.New("server returned an empty access token")
	}
	exp, _ := TokenExpiry(resp.AccessToken)

	rec := keyring.TokenRecord{
		AccessToken: resp.AccessToken,
		User: keyring.TokenUser{
			ID:          resp.User.ID,
			Email:       resp.User.Email,
			DisplayName: resp.User.DisplayName,
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SetToken(rec); err != nil {
		return err
	}
	s.token = resp.AccessToken
	s.expires = exp
	s.identity = &Identity{ID: resp.User.ID, Email: resp.User.Email, DisplayName: resp.User.DisplayName}
	logger.Info("Signed in", "email", resp.User.Email)
	return nil
}

// LoginDemo persists a demo identity. name defaults to the email's local part.
func (s *Session) LoginDemo(email, name string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid demo email %q", email)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = models.DefaultDemoName(email)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SetDemo(keyring.DemoRecord{Email: email, Name: name}); err != nil {
		return err
	}
	s.reset()
	s.identity = &Identity{Email: email, DisplayName: name, Demo: true}
	logger.Info("Signed in with demo identity", "email", email)
	return nil
}

// Logout clears the in-memory identity and every persisted record.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return s.store.ClearSession()
}

// Invalidate drops the credential after the server rejected it
func (s *Session) Invalidate() {
	logger.Warn("Server rejected credentials; signing out")
	if err := s.Logout(); err != nil {
		logger.Error("Failed to clear session", "error", err)
	}
}

// Validate re-checks token expiry and signs out if the token is no longer
// usable. It reports whether the session is still signed in.
func (s *Session) Validate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return false
	}
	if s.token == "" {
		return true
	}
	if usable(s.expires, s.now()) {
		return true
	}
	s.reset()
	if err := s.store.ClearSession(); err != nil {
		logger.Error("Failed to clear expired session", "error", err)
	}
	return false
}

// Identity returns a copy of the signed-in identity, or nil
func (s *Session) Identity() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

func (s *Session) SignedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// ExpiresAt reports when the token expires; ok is false for demo sessions
func (s *Session) ExpiresAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expires, s.token != "" && !s.expires.IsZero()
}

// Credentials implements api.CredentialSource
func (s *Session) Credentials() api.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.token != "":
		return api.Credentials{Token: s.token}
	case s.identity != nil && s.identity.Demo:
		return api.Credentials{DemoEmail: s.identity.Email, DemoName: s.identity.DisplayName}
	}
	return api.Credentials{}
}

func (s *Session) reset() {
	s.token = ""
	s.expires = time.Time{}
	s.identity = nil
}
