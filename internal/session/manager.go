// Package session tracks the single authenticated account. At most one
// session is live at a time: issuing a new token revokes whatever session
// preceded it.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNoSession indicates the presented token does not match the live
// session, either because it was revoked, replaced or expired.
var ErrNoSession = errors.New("no active session")

// DefaultTTL bounds how long an idle session stays valid.
const DefaultTTL = 30 * time.Minute

// Manager holds at most one live session at a time.
type Manager struct {
	mu        sync.Mutex
	token     string
	phone     string
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewManager builds a manager with the given idle TTL; a non-positive TTL
// falls back to DefaultTTL.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{ttl: ttl, now: time.Now}
}

// Begin starts a session for the phone number and returns its bearer token.
// Any previous session is replaced.
func (m *Manager) Begin(phone string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = uuid.NewString()
	m.phone = phone
	m.expiresAt = m.now().Add(m.ttl)
	return m.token
}

// Resolve maps a bearer token to the session's phone number and slides the
// expiry forward.
func (m *Manager) Resolve(token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" || token != m.token {
		return "", ErrNoSession
	}
	if m.now().After(m.expiresAt) {
		m.clear()
		return "", ErrNoSession
	}
	m.expiresAt = m.now().Add(m.ttl)
	return m.phone, nil
}

// End revokes the session holding the token. Ending an already-revoked
// session is a no-op.
func (m *Manager) End(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token == m.token {
		m.clear()
	}
}

// Revoke drops whatever session is live, regardless of token. Used when the
// session's account is deleted.
func (m *Manager) Revoke() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
}

func (m *Manager) clear() {
	m.token = ""
	m.phone = ""
	m.expiresAt = time.Time{}
}
