// README: Entry point; loads config, connects Postgres and Redis, serves the run report API.
package main

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "sharetaxi/internal/config"
    "sharetaxi/internal/experiment"
    httptransport "sharetaxi/internal/http"
    "sharetaxi/internal/http/handlers"
    "sharetaxi/internal/infra"
    "sharetaxi/internal/report"
)

func main() {
    cfg, err := config.Load()
    if err != nil {
        log.Fatal(err)
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    if cfg.DB.DSN == "" {
        log.Fatal("SHARESIM_DB_DSN is required")
    }
    dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
    if err != nil {
        log.Fatal(err)
    }
    defer dbPool.Close()

    deps := httptransport.ServerDeps{
        Store:  report.NewStore(dbPool),
        Runner: experiment.Run,
        Base:   cfg,
        Limits: handlers.Limits{
            MaxTicks:     1000,
            MaxRequests:  1000,
            MaxVehicles:  100,
            MaxNodeLimit: 8,
            MaxCapacity:  8,
            MaxList:      100,
        },
    }
    if cfg.Redis.Addr != "" {
        redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
        if err != nil {
            log.Fatal(err)
        }
        defer redisClient.Close()
        deps.Cache = report.NewCache(redisClient)
    } else {
        log.Printf("[API] SHARESIM_REDIS_ADDR not set; leaderboard disabled")
    }

    server := &http.Server{
        Addr:              cfg.HTTP.Addr,
        Handler:           httptransport.NewServer(deps).Routes(),
        ReadHeaderTimeout: 5 * time.Second,
    }

    go func() {
        <-ctx.Done()
        shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        if err := server.Shutdown(shutdownCtx); err != nil {
            log.Printf("[API] shutdown: %v", err)
        }
    }()

    log.Printf("[API] listening on %s", cfg.HTTP.Addr)
    if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
        log.Fatal(err)
    }
}
