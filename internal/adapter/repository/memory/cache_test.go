package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletledger/internal/usecase"
)

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "type:transfer", "Перевод", 0))

	v, err := c.Get(ctx, "type:transfer")
	require.NoError(t, err)
	assert.Equal(t, "Перевод", v)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete(ctx, "type:transfer"))
	_, err = c.Get(ctx, "type:transfer")
	assert.ErrorIs(t, err, usecase.ErrCacheMiss)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, usecase.ErrCacheMiss)
}

func TestCacheSatisfiesInterface(t *testing.T) {
	var _ usecase.Cache = NewCache(time.Minute, time.Minute)
}
