package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/project-board/internal/domain/repository"
)

type sessionEntry struct {
	s         repository.Session
	expiresAt time.Time
}

// SessionStore keeps one session per user with a TTL, like the redis store.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]sessionEntry
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]sessionEntry{}, now: time.Now}
}

func (m *SessionStore) Save(_ context.Context, s repository.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = sessionEntry{s: s, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *SessionStore) Get(_ context.Context, userID string) (*repository.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.sessions, userID)
		return nil, repository.ErrNotFound
	}
	s := e.s
	return &s, nil
}

func (m *SessionStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

var _ repository.SessionRepository = (*SessionStore)(nil)
