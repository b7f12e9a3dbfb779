// README: Run summary cache and delivery-ratio leaderboard backed by Redis.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	headerKeyPrefix = "sharesim:run:%s"
	leaderboardKey  = "sharesim:leaderboard"
	// Headers expire; the leaderboard entry of an expired run is skipped and
	// pruned on read.
	headerTTL = 7 * 24 * time.Hour
)

type Cache struct {
	redis *redis.Client
}

func NewCache(redis *redis.Client) *Cache {
	return &Cache{redis: redis}
}

// Put caches the header of run and ranks it by delivery ratio.
func (c *Cache) Put(ctx context.Context, h Header) error {
	payload, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", h.ID, err)
	}
	pipe := c.redis.Pipeline()
	pipe.Set(ctx, headerKey(h.ID), payload, headerTTL)
	pipe.ZAdd(ctx, leaderboardKey, redis.Z{Score: h.Summary.DeliveryRatio, Member: h.ID.String()})
	_, err = pipe.Exec(ctx)
	return err
}

func (c *Cache) Get(ctx context.Context, id uuid.UUID) (*Header, error) {
	raw, err := c.redis.Get(ctx, headerKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var h Header
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &h, nil
}

// Top returns up to n cached runs with the highest delivery ratio.
func (c *Cache) Top(ctx context.Context, n int) ([]Header, error) {
	if n <= 0 {
		return nil, nil
	}
	ids, err := c.redis.ZRevRange(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = fmt.Sprintf(headerKeyPrefix, id)
	}
	vals, err := c.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Header, 0, len(vals))
	var expired []interface{}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		var h Header
		if err := json.Unmarshal([]byte(s), &h); err != nil {
			return nil, fmt.Errorf("decode run %s: %w", ids[i], err)
		}
		out = append(out, h)
	}
	if len(expired) > 0 {
		if err := c.redis.ZRem(ctx, leaderboardKey, expired...).Err(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func headerKey(id uuid.UUID) string {
	return fmt.Sprintf(headerKeyPrefix, id.String())
}
