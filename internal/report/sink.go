// README: Sink exports finished runs to the configured Postgres store and Redis cache.
package report

import (
    "context"
    "fmt"
)

// Sink exports finished runs to whichever backends are configured. A nil
// Store or Cache is skipped.
type Sink struct {
    Store *Store
    Cache *Cache
}

func (s Sink) Enabled() bool {
    return s.Store != nil || s.Cache != nil
}

func (s Sink) Save(ctx context.Context, run *Run) error {
    if s.Store != nil {
        if err := s.Store.SaveRun(ctx, run); err != nil {
            return fmt.Errorf("store run %s: %w", run.ID, err)
        }
    }
    if s.Cache != nil {
        if err := s.Cache.Put(ctx, run.Header); err != nil {
            return fmt.Errorf("cache run %s: %w", run.ID, err)
        }
    }
    return nil
}
