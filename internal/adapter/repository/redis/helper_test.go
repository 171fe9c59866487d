package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"

	infraredis "github.com/iho/walletledger/internal/infrastructure/redis"
)

// newTestRedisClient connects through the server's own client constructor
// so cache and idempotency tests run with production connection options.
func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := infraredis.NewClient(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("connect to miniredis: %v", err)
	}

	return client, mr
}
