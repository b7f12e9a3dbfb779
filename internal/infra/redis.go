// README: Redis client for the run summary cache and leaderboard.
package infra

import (
    "context"
    "fmt"

    "github.com/redis/go-redis/v9"
)

func NewRedis(ctx context.Context, addr string) (*redis.Client, error) {
    client := redis.NewClient(&redis.Options{Addr: addr})
    if err := client.Ping(ctx).Err(); err != nil {
        client.Close()
        return nil, fmt.Errorf("ping redis %s: %w", addr, err)
    }
    return client, nil
}
