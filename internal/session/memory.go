package session

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// MemoryStore is an in-process Store used in tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID, field string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	val, ok := fields[field]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, sessionID, field string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields, ok := s.sessions[sessionID]
	if !ok {
		fields = make(map[string][]byte)
		s.sessions[sessionID] = fields
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	fields[field] = stored
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fields, ok := s.sessions[sessionID]; ok {
		delete(fields, field)
		if len(fields) == 0 {
			delete(s.sessions, sessionID)
		}
	}
	return nil
}
