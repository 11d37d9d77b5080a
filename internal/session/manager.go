// Package session owns the authenticated session: it is the only reader and
// writer of the persisted token and user projection.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"appointment-booking-client/internal/models"
	"appointment-booking-client/internal/navigation"
)

var ErrNoSession = errors.New("no active session")

// Authenticator performs the credential exchange with the backend.
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	Register(ctx context.Context, reg models.Registration) (*models.AuthResponse, error)
}

// Manager holds the current session and its lifecycle.
type Manager struct {
	store Store
	auth  Authenticator
	nav   navigation.Navigator
	log   *zap.Logger

	mu      sync.RWMutex
	current *models.Session
}

// NewManager builds a Manager with no session loaded; call Restore at startup.
func NewManager(store Store, auth Authenticator, nav navigation.Navigator, log *zap.Logger) *Manager {
	return &Manager{store: store, auth: auth, nav: nav, log: log}
}

var errEmptyUser = errors.New("persisted user has no id or role")

// Restore loads the persisted session. A session is valid only when both the
// token and a decodable user record with an id and role are present; a
// corrupt or empty record clears both.
func (m *Manager) Restore(ctx context.Context) (*models.Session, error) {
	token, hasToken, err := m.store.Get(ctx, keyToken)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	raw, hasUser, err := m.store.Get(ctx, keyUser)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	if !hasToken || !hasUser || token == "" || raw == "" {
		m.set(nil)
		return nil, nil
	}

	var user models.UserProjection
	err = json.Unmarshal([]byte(raw), &user)
	if err == nil && (user.UserID <= 0 || user.Role == "") {
		err = errEmptyUser
	}
	if err != nil {
		m.log.Warn("discarding corrupt persisted session", zap.Error(err))
		if err := m.store.Delete(ctx, keyToken, keyUser); err != nil {
			return nil, fmt.Errorf("clear corrupt session: %w", err)
		}
		m.set(nil)
		return nil, nil
	}

	s := &models.Session{Token: token, User: user}
	m.set(s)
	return s, nil
}

// Login exchanges credentials for a session and persists it.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	resp, err := m.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return m.establish(ctx, resp)
}

// Register creates an account and starts its session.
func (m *Manager) Register(ctx context.Context, reg models.Registration) (*models.Session, error) {
	resp, err := m.auth.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return m.establish(ctx, resp)
}

func (m *Manager) establish(ctx context.Context, resp *models.AuthResponse) (*models.Session, error) {
	user := resp.Projection()
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}
	if err := m.store.Set(ctx, keyToken, resp.Token); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	if err := m.store.Set(ctx, keyUser, string(raw)); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s := &models.Session{Token: resp.Token, User: user}
	m.set(s)
	m.log.Info("session started", zap.Int64("user_id", user.UserID), zap.String("role", string(user.Role)))
	return s, nil
}

// Logout clears the persisted and in-memory session.
func (m *Manager) Logout(ctx context.Context) error {
	m.set(nil)
	if err := m.store.Delete(ctx, keyToken, keyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Teardown is the global reaction to an authentication failure: the session
// is dropped regardless of which request failed and the user is sent to login.
func (m *Manager) Teardown(ctx context.Context) {
	if err := m.Logout(ctx); err != nil {
		m.log.Error("session teardown", zap.Error(err))
	}
	m.log.Warn("authentication rejected, session cleared")
	m.nav.Navigate(navigation.RouteLogin)
}

// Authorize attaches the bearer credential when a session exists.
func (m *Manager) Authorize(req *http.Request) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current != nil && m.current.Token != "" {
		req.Header.Set("Authorization", "Bearer "+m.current.Token)
	}
}

// Current returns a copy of the active session.
func (m *Manager) Current() (models.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return models.Session{}, false
	}
	return *m.current, true
}

// Require returns the active session or ErrNoSession.
func (m *Manager) Require() (models.Session, error) {
	s, ok := m.Current()
	if !ok {
		return models.Session{}, ErrNoSession
	}
	return s, nil
}

// IsAdmin reports whether the active session belongs to an administrator.
func (m *Manager) IsAdmin() bool {
	s, ok := m.Current()
	return ok && s.User.Role.IsAdmin()
}

func (m *Manager) set(s *models.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
}
