// Package idempotency implementa el puerto IdempotencyStore sobre Redis y en memoria.
package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/logistica-api/internal/application/ports"
)

var _ ports.IdempotencyStore = (*MemoryStore)(nil)

type memoryEntry struct {
	rec     *ports.IdempotencyRecord // nil mientras la petición está en curso
	expires time.Time
}

// MemoryStore variante de un solo proceso, usada cuando REDIS_ADDR está vacío.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore construye un almacén vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Acquire(_ context.Context, key string, ttl time.Duration) (*ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expires) {
		return e.rec, false, nil
	}
	s.entries[key] = memoryEntry{expires: now.Add(ttl)}
	return nil, true, nil
}

func (s *MemoryStore) Complete(_ context.Context, key string, rec ports.IdempotencyRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{rec: &rec, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
