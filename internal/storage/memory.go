package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/storyloom/storyloom/pkg/chat"
)

// MemorySessionStore keeps session history in process memory. It is the
// fallback when no Redis address is configured, and is handy in tests.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID][]chat.ChatMessage
}

var _ SessionStore = (*MemorySessionStore)(nil)

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[uuid.UUID][]chat.ChatMessage),
	}
}

func (m *MemorySessionStore) Ping(ctx context.Context) error { return nil }

func (m *MemorySessionStore) Close() error { return nil }

func (m *MemorySessionStore) Append(ctx context.Context, sessionID uuid.UUID, msgs ...chat.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append(m.sessions[sessionID], msgs...)
	return nil
}

func (m *MemorySessionStore) Messages(ctx context.Context, sessionID uuid.UUID) ([]chat.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.sessions[sessionID]
	out := make([]chat.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (m *MemorySessionStore) Clear(ctx context.Context, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
