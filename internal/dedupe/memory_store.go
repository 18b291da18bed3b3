package dedupe

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. Used in tests and in
// single-process local runs; redis is the production implementation.
type MemoryStore struct {
	mu           sync.Mutex
	reservations map[string]time.Time
	attempts     map[string]memoryCounter
	now          func() time.Time
}

type memoryCounter struct {
	count     int
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reservations: make(map[string]time.Time),
		attempts:     make(map[string]memoryCounter),
		now:          time.Now,
	}
}

// Reserve claims the key if it is absent or its previous claim expired.
func (s *MemoryStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiresAt, ok := s.reservations[key]; ok && now.Before(expiresAt) {
		return false, nil
	}
	s.reservations[key] = now.Add(ttl)
	return true, nil
}

// Release frees the claim.
func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.reservations, key)
	return nil
}

// IncrAttempts increments the attempt counter, restarting expired counters.
func (s *MemoryStore) IncrAttempts(_ context.Context, key string, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	counter := s.attempts[key]
	if !counter.expiresAt.IsZero() && now.After(counter.expiresAt) {
		counter = memoryCounter{}
	}
	counter.count++
	counter.expiresAt = now.Add(ttl)
	s.attempts[key] = counter
	return counter.count, nil
}
