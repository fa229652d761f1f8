package database

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemorySessionStore keeps session records in process memory. It serves
// single-instance deployments; sessions are lost on restart.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

type memorySession struct {
	fields    map[string]string
	expiresAt time.Time
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

// SetSession stores a copy of fields under sessionID until expiry elapses.
// Expired records are swept on every write.
func (m *MemorySessionStore) SetSession(_ context.Context, sessionID string, fields map[string]string, expiry time.Duration) error {
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, s := range m.sessions {
		if !now.Before(s.expiresAt) {
			delete(m.sessions, id)
		}
	}

	m.sessions[sessionID] = memorySession{fields: copied, expiresAt: now.Add(expiry)}
	return nil
}

// GetSession returns a copy of the stored fields, or ErrNotFound when the
// session is missing or expired.
func (m *MemorySessionStore) GetSession(_ context.Context, sessionID string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if !m.now().Before(s.expiresAt) {
		delete(m.sessions, sessionID)
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}

	out := make(map[string]string, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out, nil
}

// DeleteSession removes a session if present.
func (m *MemorySessionStore) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	return nil
}

// Ping always succeeds; it lets the memory store stand in for Redis in
// readiness checks.
func (m *MemorySessionStore) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored records, expired or not.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
