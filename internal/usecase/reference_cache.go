package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/logging"
)

// CachedReferenceRepository serves operation types and currencies from a Cache,
// falling back to the wrapped repository on a miss. Cache failures never fail a lookup.
type CachedReferenceRepository struct {
	next   ReferenceRepository
	cache  Cache
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedReferenceRepository wraps next with cache. A non-positive ttl uses ReferenceCacheTTL.
func NewCachedReferenceRepository(next ReferenceRepository, cache Cache, ttl time.Duration, logger *logging.Logger) *CachedReferenceRepository {
	if ttl <= 0 {
		ttl = ReferenceCacheTTL
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &CachedReferenceRepository{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

type cachedOperationType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type cachedCurrency struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// GetOperationType returns a non-deleted operation type.
func (r *CachedReferenceRepository) GetOperationType(ctx context.Context, id string) (*domain.OperationType, error) {
	key := "operation_type:" + id

	var cached cachedOperationType
	if r.load(ctx, key, &cached) {
		return &domain.OperationType{ID: cached.ID, Name: cached.Name}, nil
	}

	t, err := r.next.GetOperationType(ctx, id)
	if err != nil {
		return nil, err
	}

	r.store(ctx, key, cachedOperationType{ID: t.ID, Name: t.Name})
	return t, nil
}

// GetCurrency returns a non-deleted currency.
func (r *CachedReferenceRepository) GetCurrency(ctx context.Context, id string) (*domain.Currency, error) {
	key := "currency:" + id

	var cached cachedCurrency
	if r.load(ctx, key, &cached) {
		return &domain.Currency{ID: cached.ID, Code: cached.Code, Name: cached.Name}, nil
	}

	c, err := r.next.GetCurrency(ctx, id)
	if err != nil {
		return nil, err
	}

	r.store(ctx, key, cachedCurrency{ID: c.ID, Code: c.Code, Name: c.Name})
	return c, nil
}

func (r *CachedReferenceRepository) load(ctx context.Context, key string, dst any) bool {
	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			r.logger.WarnCtx(ctx, "reference cache read failed", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		r.logger.WarnCtx(ctx, "reference cache entry is corrupt", "key", key, "error", err)
		_ = r.cache.Delete(ctx, key)
		return false
	}

	return true
}

func (r *CachedReferenceRepository) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, string(raw), r.ttl); err != nil {
		r.logger.WarnCtx(ctx, "reference cache write failed", "key", key, "error", err)
	}
}
