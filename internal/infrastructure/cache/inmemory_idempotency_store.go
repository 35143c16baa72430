package cache

import (
	"context"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	gocache "github.com/patrickmn/go-cache"
)

// InMemoryIdempotencyStore keeps processed event IDs in process memory.
// It is only correct for a single server instance.
type InMemoryIdempotencyStore struct {
	entries *gocache.Cache
}

// NewInMemoryIdempotencyStore creates a store that purges expired IDs every
// cleanupInterval
func NewInMemoryIdempotencyStore(cleanupInterval time.Duration) *InMemoryIdempotencyStore {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}
	return &InMemoryIdempotencyStore{
		entries: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

// MarkProcessed returns true if eventID was not recorded yet. Add is atomic,
// so concurrent callers for the same ID see exactly one true.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	if err := s.entries.Add(eventID, struct{}{}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

// IsProcessed checks if an event has already been processed
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	_, found := s.entries.Get(eventID)
	return found, nil
}

// Close drops every entry
func (s *InMemoryIdempotencyStore) Close() error {
	s.entries.Flush()
	return nil
}

// Size returns the number of entries, expired ones included until purged
func (s *InMemoryIdempotencyStore) Size() int {
	return s.entries.ItemCount()
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
