package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-memory Store for tests and examples.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	seq      int64
	order    map[string]int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		order:    make(map[string]int64),
	}
}

func (m *MemoryStore) clone(s *Session) *Session {
	cp := *s
	cp.Current = false
	return &cp
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.order[s.ID] = m.seq
	m.sessions[s.ID] = m.clone(s)
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return m.clone(s), nil
}

// ListActive implements Store.
func (m *MemoryStore) ListActive(_ context.Context, userID string) ([]*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Session
	for _, s := range m.sessions {
		if s.UserID == userID && s.RevokedAt.IsZero() {
			out = append(out, m.clone(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return m.order[out[i].ID] > m.order[out[j].ID]
	})
	return out, nil
}

// ListRevoked implements Store.
func (m *MemoryStore) ListRevoked(_ context.Context, userID string) ([]*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Session
	for _, s := range m.sessions {
		if s.UserID == userID && !s.RevokedAt.IsZero() {
			out = append(out, m.clone(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RevokedAt.After(out[j].RevokedAt)
	})
	return out, nil
}

// Revoke implements Store.
func (m *MemoryStore) Revoke(_ context.Context, userID, sessionID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.UserID != userID {
		return ErrNotFound
	}
	if s.RevokedAt.IsZero() {
		s.RevokedAt = at
	}
	return nil
}

// RevokeAllExcept implements Store.
func (m *MemoryStore) RevokeAllExcept(_ context.Context, userID, keepID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.UserID == userID && s.ID != keepID && s.RevokedAt.IsZero() {
			s.RevokedAt = at
		}
	}
	return nil
}

// Extend implements Store. The revocation check and the expiry write happen
// under one lock, which is the whole atomicity contract here.
func (m *MemoryStore) Extend(_ context.Context, sessionID string, expiresAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || !s.RevokedAt.IsZero() {
		return false, nil
	}
	s.ExpiresAt = expiresAt
	return true, nil
}

// DeleteRevoked implements Store.
func (m *MemoryStore) DeleteRevoked(_ context.Context, userID, exceptID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.UserID == userID && !s.RevokedAt.IsZero() && id != exceptID {
			delete(m.sessions, id)
			delete(m.order, id)
		}
	}
	return nil
}
