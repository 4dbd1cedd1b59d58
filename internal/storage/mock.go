package storage

import (
	"context"
	"sync"

	"github.com/storyloom/storyloom/pkg/chat"
	"github.com/storyloom/storyloom/pkg/world"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	graph     *world.KnowledgeGraph
	world     *world.DynamicWorld
	records   []chat.SessionRecord
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail world saves with the given error
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// SetKnowledgeGraph seeds the static graph (for testing)
func (m *MockStorage) SetKnowledgeGraph(kg *world.KnowledgeGraph) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.graph = kg
}

// SetWorld seeds the dynamic world document (for testing)
func (m *MockStorage) SetWorld(w *world.DynamicWorld) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.world = w
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// LoadKnowledgeGraph mocks loading the static graph
func (m *MockStorage) LoadKnowledgeGraph(ctx context.Context) (*world.KnowledgeGraph, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.graph, nil
}

// LoadWorld mocks loading the dynamic world document
func (m *MockStorage) LoadWorld(ctx context.Context) (*world.DynamicWorld, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.world, nil
}

// SaveWorld mocks saving the dynamic world document, enforcing the same
// version check as FileStorage
func (m *MockStorage) SaveWorld(ctx context.Context, w *world.DynamicWorld) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	if m.world != nil && m.world.Version != w.Version {
		return ErrVersionConflict
	}
	w.Version++
	m.world = w
	return nil
}

// DeleteWorld mocks deleting the dynamic world document
func (m *MockStorage) DeleteWorld(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.world = nil
	return nil
}

// LoadHistory mocks loading the archived session records
func (m *MockStorage) LoadHistory(ctx context.Context) ([]chat.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]chat.SessionRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

// UpsertSessionRecord mocks archiving a session record
func (m *MockStorage) UpsertSessionRecord(ctx context.Context, rec chat.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].SessionID == rec.SessionID {
			m.records[i] = rec
			return nil
		}
	}
	m.records = append(m.records, rec)
	return nil
}

// DeleteHistory mocks removing the history archive
func (m *MockStorage) DeleteHistory(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}
