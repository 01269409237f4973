package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// New - connects to redis and checks the connection.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return conn, nil
}
