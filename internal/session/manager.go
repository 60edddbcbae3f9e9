package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 24 * time.Hour

// Manager issues, restores and clears the session held in a [Store].
//
// A Manager is owned by one front end (a CLI invocation, a TUI program, a single HTTP request) and is not safe for
// concurrent use.
type Manager struct {
	store       Store
	credentials []models.Credential
	ttl         time.Duration
	now         func() time.Time
	logger      *log.Logger
	current     *models.Session
}

// Option configures a [Manager].
type Option func(*Manager)

// WithCredentials replaces the credential table.
func WithCredentials(table []models.Credential) Option {
	return func(m *Manager) { m.credentials = table }
}

// WithTTL sets the lifetime of issued tokens.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock sets the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger used to report storage failures.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a Manager over store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:       store,
		credentials: DefaultCredentials(),
		ttl:         DefaultTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = shared.NewLogger(nil)
	}
	return m
}

// IssueToken checks username and password against the credential table and, on a match, persists a new token.
//
// A mismatch returns [shared.ErrInvalidCredentials] and changes nothing.
func (m *Manager) IssueToken(username, password string) (*models.User, string, error) {
	cred, ok := lookup(m.credentials, username, password)
	if !ok {
		return nil, "", shared.ErrInvalidCredentials
	}

	session := models.Session{
		User:      models.User{ID: cred.ID, Username: cred.Username, Role: cred.Role},
		ExpiresAt: m.now().Add(m.ttl).Truncate(time.Second),
	}

	token, err := Encode(session)
	if err != nil {
		return nil, "", err
	}

	if err := m.store.Save(token); err != nil {
		return nil, "", fmt.Errorf("failed to persist token: %w", err)
	}

	m.current = &session
	user := session.User
	return &user, token, nil
}

// RestoreSession reconstructs the session from the stored token.
//
// It returns nil when no token is stored or the stored token is malformed or expired; in the latter cases the
// slot is cleared.
func (m *Manager) RestoreSession() *models.Session {
	raw, ok, err := m.store.Load()
	if err != nil {
		m.logger.Warn("failed to read session token", "error", err)
		m.current = nil
		return nil
	}
	if !ok {
		m.current = nil
		return nil
	}

	session, err := Decode(raw, m.now())
	if err != nil {
		if errors.Is(err, shared.ErrTokenExpired) {
			m.logger.Debug("stored session expired")
		} else {
			m.logger.Debug("discarding malformed session token", "error", err)
		}
		if err := m.store.Clear(); err != nil {
			m.logger.Warn("failed to clear session token", "error", err)
		}
		m.current = nil
		return nil
	}

	m.current = session
	return session
}

// Logout clears the stored token and the in-memory session. It is safe to call repeatedly.
func (m *Manager) Logout() error {
	m.current = nil
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// Current returns the in-memory session, or nil.
//
// A session held in memory is reported only while it is unexpired.
func (m *Manager) Current() *models.Session {
	if m.current == nil || !m.current.Valid(m.now()) {
		return nil
	}
	return m.current
}

func (m *Manager) IsAuthenticated() bool { return m.Current() != nil }

func (m *Manager) IsAdmin() bool {
	s := m.Current()
	return s != nil && s.IsAdmin()
}
