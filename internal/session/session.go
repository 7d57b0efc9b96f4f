// Package session holds the signed-in user and admin identities and their
// tokens, persisted in a key/value store.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/menjava/internal/auth"
	"github.com/erazemk/menjava/internal/model"
)

// Persisted keys.
const (
	KeyToken      = "token"
	KeyUser       = "user"
	KeyAdminToken = "adminToken"
	KeyAdmin      = "admin"
)

// Store persists session values.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type slot struct {
	token    string
	identity *model.Identity
}

func (s slot) active() bool {
	return s.token != "" && s.identity != nil
}

// Session is the client's authentication state. It is safe for concurrent use.
type Session struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	user  slot
	admin slot
}

// Load restores the session from store. Expired tokens and unreadable
// identities are discarded and removed from the store.
func Load(ctx context.Context, store Store, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{store: store, logger: logger, now: time.Now}

	var err error
	if s.user, err = s.loadSlot(ctx, KeyToken, KeyUser); err != nil {
		return nil, err
	}
	if s.admin, err = s.loadSlot(ctx, KeyAdminToken, KeyAdmin); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) loadSlot(ctx context.Context, tokenKey, identityKey string) (slot, error) {
	token, ok, err := s.store.Get(ctx, tokenKey)
	if err != nil {
		return slot{}, fmt.Errorf("loading %s: %w", tokenKey, err)
	}
	raw, hasIdentity, err := s.store.Get(ctx, identityKey)
	if err != nil {
		return slot{}, fmt.Errorf("loading %s: %w", identityKey, err)
	}
	if !ok && !hasIdentity {
		return slot{}, nil
	}

	var identity model.Identity
	switch {
	case !ok || token == "" || !hasIdentity:
		s.logger.Warn("discarding incomplete session", "slot", identityKey)
	case auth.Expired(token, s.now()):
		s.logger.Info("discarding expired session", "slot", identityKey)
	case json.Unmarshal([]byte(raw), &identity) != nil || (identity.ID == "" && identity.Email == ""):
		s.logger.Warn("discarding unreadable identity", "slot", identityKey)
	default:
		return slot{token: token, identity: &identity}, nil
	}

	if err := s.deleteSlot(ctx, tokenKey, identityKey); err != nil {
		return slot{}, err
	}
	return slot{}, nil
}

// CurrentIdentity returns the signed-in user, else the signed-in admin, else nil.
func (s *Session) CurrentIdentity() *model.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user.active() {
		return s.user.identity
	}
	if s.admin.active() {
		return s.admin.identity
	}
	return nil
}

// User returns the signed-in user or nil.
func (s *Session) User() *model.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.user.active() {
		return nil
	}
	return s.user.identity
}

// Admin returns the signed-in admin or nil.
func (s *Session) Admin() *model.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.admin.active() {
		return nil
	}
	return s.admin.identity
}

// TokenFor returns the bearer token to send with a request to path:
// the admin token under /admin, none under /auth, the user token otherwise.
func (s *Session) TokenFor(path string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case hasPrefix(path, "/admin"):
		return s.admin.token
	case hasPrefix(path, "/auth"):
		return ""
	default:
		return s.user.token
	}
}

func hasPrefix(path, prefix string) bool {
	path = "/" + strings.TrimLeft(path, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/") || strings.HasPrefix(path, prefix+"?")
}

// SignIn replaces the user slot.
func (s *Session) SignIn(ctx context.Context, token string, identity *model.Identity) error {
	return s.signIn(ctx, &s.user, KeyToken, KeyUser, token, identity)
}

// SignInAdmin replaces the admin slot.
func (s *Session) SignInAdmin(ctx context.Context, token string, identity *model.Identity) error {
	return s.signIn(ctx, &s.admin, KeyAdminToken, KeyAdmin, token, identity)
}

func (s *Session) signIn(ctx context.Context, dst *slot, tokenKey, identityKey, token string, identity *model.Identity) error {
	if token == "" || identity == nil {
		return fmt.Errorf("signing in: token and identity are required")
	}
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encoding identity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(ctx, tokenKey, token); err != nil {
		return fmt.Errorf("storing %s: %w", tokenKey, err)
	}
	if err := s.store.Set(ctx, identityKey, string(raw)); err != nil {
		return fmt.Errorf("storing %s: %w", identityKey, err)
	}

	copied := *identity
	*dst = slot{token: token, identity: &copied}
	return nil
}

// SignOut removes the user slot.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = slot{}
	return s.deleteSlot(ctx, KeyToken, KeyUser)
}

// SignOutAdmin removes the admin slot.
func (s *Session) SignOutAdmin(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = slot{}
	return s.deleteSlot(ctx, KeyAdminToken, KeyAdmin)
}

// Clear removes both slots. It runs when the backend rejects the credentials.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = slot{}
	s.admin = slot{}
	if err := s.deleteSlot(ctx, KeyToken, KeyUser); err != nil {
		return err
	}
	return s.deleteSlot(ctx, KeyAdminToken, KeyAdmin)
}

func (s *Session) deleteSlot(ctx context.Context, tokenKey, identityKey string) error {
	if err := s.store.Delete(ctx, tokenKey); err != nil {
		return fmt.Errorf("removing %s: %w", tokenKey, err)
	}
	if err := s.store.Delete(ctx, identityKey); err != nil {
		return fmt.Errorf("removing %s: %w", identityKey, err)
	}
	return nil
}
