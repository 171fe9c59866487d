package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ClientName identifies walletledger connections in CLIENT LIST.
const ClientName = "walletledger"

// NewClient connects to redisURL and verifies the server with PING.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := ParseOptions(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}

	return client, nil
}

// ParseOptions parses redisURL. Connections are tagged with ClientName
// unless the URL sets client_name itself.
func ParseOptions(redisURL string) (*redis.Options, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if opts.ClientName == "" {
		opts.ClientName = ClientName
	}

	return opts, nil
}
