package report

import (
    "context"
    "errors"
    "os"
    "testing"
    "time"

    "github.com/google/uuid"
    "github.com/redis/go-redis/v9"
)

func setupTestCache(t *testing.T) (*Cache, *redis.Client) {
    t.Helper()
    addr := os.Getenv("SHARESIM_REDIS_ADDR")
    if addr == "" {
        t.Skip("SHARESIM_REDIS_ADDR not set; skipping integration test")
    }
    rdb := redis.NewClient(&redis.Options{Addr: addr})
    t.Cleanup(func() { rdb.Close() })
    return NewCache(rdb), rdb
}

func testHeader(ratio float64) Header {
    return Header{
        ID:        uuid.New(),
        Label:     "cache-test",
        Ticks:     100,
        CreatedAt: time.Now().UTC().Truncate(time.Second),
        Summary:   Summary{Requests: 10, Delivered: int(ratio * 10), DeliveryRatio: ratio},
    }
}

func TestCache_PutGetTop(t *testing.T) {
    cache, rdb := setupTestCache(t)
    ctx := context.Background()

    high, low := testHeader(0.99), testHeader(0.01)
    t.Cleanup(func() {
        ctx := context.Background()
        rdb.Del(ctx, headerKey(high.ID), headerKey(low.ID))
        rdb.ZRem(ctx, leaderboardKey, high.ID.String(), low.ID.String())
    })

    for _, h := range []Header{low, high} {
        if err := cache.Put(ctx, h); err != nil {
            t.Fatalf("put: %v", err)
        }
    }

    got, err := cache.Get(ctx, high.ID)
    if err != nil {
        t.Fatalf("get: %v", err)
    }
    if got.ID != high.ID || got.Summary != high.Summary || !got.CreatedAt.Equal(high.CreatedAt) {
        t.Fatalf("unexpected header: %+v", got)
    }

    top, err := cache.Top(ctx, 1000)
    if err != nil {
        t.Fatalf("top: %v", err)
    }
    highAt, lowAt := -1, -1
    for i, h := range top {
        switch h.ID {
        case high.ID:
            highAt = i
        case low.ID:
            lowAt = i
        }
    }
    if highAt < 0 || lowAt < 0 || highAt > lowAt {
        t.Fatalf("expected high ratio run ranked first, positions %d and %d", highAt, lowAt)
    }
}

func TestCache_TopPrunesExpired(t *testing.T) {
    cache, rdb := setupTestCache(t)
    ctx := context.Background()

    h := testHeader(1.0)
    if err := cache.Put(ctx, h); err != nil {
        t.Fatalf("put: %v", err)
    }
    if err := rdb.Del(ctx, headerKey(h.ID)).Err(); err != nil {
        t.Fatalf("expire header: %v", err)
    }

    if _, err := cache.Top(ctx, 1000); err != nil {
        t.Fatalf("top: %v", err)
    }
    if _, err := rdb.ZScore(ctx, leaderboardKey, h.ID.String()).Result(); err != redis.Nil {
        t.Fatalf("expected expired run pruned from leaderboard, got %v", err)
    }
}

func TestCache_GetMissing(t *testing.T) {
    cache, _ := setupTestCache(t)
    if _, err := cache.Get(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
}
