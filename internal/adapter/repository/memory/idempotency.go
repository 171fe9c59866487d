package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// PendingMarker is stored under a key while its request is still being processed.
const PendingMarker = "processing"

// IdempotencyStore implements usecase.IdempotencyStore for a single process.
type IdempotencyStore struct {
	store *gocache.Cache
}

// NewIdempotencyStore creates a store whose expired keys are swept every cleanup interval.
func NewIdempotencyStore(cleanup time.Duration) *IdempotencyStore {
	return &IdempotencyStore{store: gocache.New(gocache.NoExpiration, cleanup)}
}

// CheckAndSet claims key. Add fails when a live value exists, which makes the claim atomic.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	value := response
	if value == nil {
		value = []byte(PendingMarker)
	}

	if err := s.store.Add(key, value, ttl); err == nil {
		return false, nil, nil
	}

	existing, ok := s.store.Get(key)
	if !ok {
		return true, nil, nil
	}
	b, _ := existing.([]byte)
	return true, b, nil
}

// Update stores the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.store.Set(key, response, ttl)
	return nil
}

// Release removes a key so a failed request can be retried with it.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	s.store.Delete(key)
	return nil
}
