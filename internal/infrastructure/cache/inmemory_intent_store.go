package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	appcheckout "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/identity"
)

// intentEntry represents a stored buy-now intent with expiration
type intentEntry struct {
	productID uuid.UUID
	expiresAt time.Time
}

// InMemoryIntentStore implements PendingIntentStore using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryIntentStore struct {
	mu        sync.Mutex
	entries   map[string]intentEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIntentStore creates a new in-memory intent store.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryIntentStore(ttl time.Duration) *InMemoryIntentStore {
	store := &InMemoryIntentStore{
		entries:  make(map[string]intentEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Remember stores the buy-now product for an identity, replacing any previous intent
func (s *InMemoryIntentStore) Remember(ctx context.Context, owner identity.Identity, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[owner.Key()] = intentEntry{
		productID: productID,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

// Take returns and removes the stored intent
func (s *InMemoryIntentStore) Take(ctx context.Context, owner identity.Identity) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := owner.Key()
	e, exists := s.entries[key]
	if !exists {
		return uuid.Nil, false, nil
	}

	delete(s.entries, key)

	if time.Now().After(e.expiresAt) {
		return uuid.Nil, false, nil
	}
	return e.productID, true, nil
}

// Clear drops the stored intent, if any
func (s *InMemoryIntentStore) Clear(ctx context.Context, owner identity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, owner.Key())
	return nil
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (s *InMemoryIntentStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (s *InMemoryIntentStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired entries from the store
func (s *InMemoryIntentStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Ensure InMemoryIntentStore implements PendingIntentStore
var _ appcheckout.PendingIntentStore = (*InMemoryIntentStore)(nil)
