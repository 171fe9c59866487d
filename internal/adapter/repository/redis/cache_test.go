package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/walletledger/internal/usecase"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "currency:usd", `{"code":"USD"}`, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "currency:usd")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if val != `{"code":"USD"}` {
		t.Fatalf("unexpected cached value %s", val)
	}

	if !mr.Exists(defaultCachePrefix + "currency:usd") {
		t.Fatalf("expected key to be namespaced with %q", defaultCachePrefix)
	}
}

func TestCacheMissAfterExpiry(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "k", "v", time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	if _, err := cache.Get(ctx, "k"); !errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected cache miss after expiry, got %v", err)
	}
}

func TestCacheDelete(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "foo", "bar", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "foo"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := cache.Get(ctx, "foo"); !errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected cache miss for deleted key, got %v", err)
	}
}

func TestCacheSurfacesConnectionErrors(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()
	mr.Close()

	if _, err := NewCache(client).Get(context.Background(), "k"); err == nil || errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected a connection error, got %v", err)
	}
}
