// Package session implements session id issuance, touch/expiry, and the
// concurrent-user cap. Session ids double as bearer credentials, so ids
// are drawn from crypto/rand rather than math/rand.
package session

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Session is one logged-in client.
type Session struct {
	ID            uint32
	RemoteAddr    string
	Username      string // empty if anonymous
	LastActionAt  time.Time
}

// ErrTooManyUsers is returned by Login when the configured max-user cap
// is already reached.
var ErrTooManyUsers = errors.New("session: too many users")

// Manager is a mutex-guarded session table.
type Manager struct {
	mu       sync.Mutex
	sessions map[uint32]*Session
	timeout  time.Duration
	maxUsers int
}

// New creates a Manager. maxUsers of 0 means unlimited; timeout of 0
// falls back to a default of 30 minutes.
func New(maxUsers int, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Manager{
		sessions: make(map[uint32]*Session),
		timeout:  timeout,
		maxUsers: maxUsers,
	}
}

// Login issues a new session for remoteAddr/username, rejecting with
// ErrTooManyUsers if the manager is already at its configured cap.
func (m *Manager) Login(remoteAddr, username string, now time.Time) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxUsers > 0 && len(m.sessions) >= m.maxUsers {
		return 0, ErrTooManyUsers
	}

	id, err := m.freeID()
	if err != nil {
		return 0, err
	}
	m.sessions[id] = &Session{ID: id, RemoteAddr: remoteAddr, Username: username, LastActionAt: now}
	return id, nil
}

// freeID draws random positive 31-bit ids until it finds one not
// already in use. Caller must hold m.mu.
func (m *Manager) freeID() (uint32, error) {
	for {
		var b [4]byte
		if _, err := rand.Read(b[:]); err != nil {
			return 0, errors.Wrap(err, "session: generating id")
		}
		id := binary.BigEndian.Uint32(b[:]) & 0x7fffffff
		if id == 0 {
			continue
		}
		if _, exists := m.sessions[id]; !exists {
			return id, nil
		}
	}
}

// Touch refreshes a session's last-action timestamp. No-op if absent.
func (m *Manager) Touch(id uint32, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.LastActionAt = now
	}
}

// Logout removes a session.
func (m *Manager) Logout(id uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// ExpireIdle removes every session whose last action is older than the
// configured timeout relative to now, returning the ids removed.
func (m *Manager) ExpireIdle(now time.Time) []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []uint32
	for id, s := range m.sessions {
		if now.Sub(s.LastActionAt) > m.timeout {
			expired = append(expired, id)
			delete(m.sessions, id)
		}
	}
	return expired
}

// Exists reports whether id names a live session. Reads take the same
// lock as writes.
func (m *Manager) Exists(id uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
