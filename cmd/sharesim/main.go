// README: Simulation runner; runs one seeded scenario or a sweep, prints the reports and optionally exports them.
package main

import (
    "context"
    "errors"
    "flag"
    "fmt"
    "log"
    "os"
    "os/signal"
    "strconv"
    "strings"
    "syscall"

    "sharetaxi/internal/config"
    "sharetaxi/internal/experiment"
    "sharetaxi/internal/infra"
    "sharetaxi/internal/report"
)

type Options struct {
    Label      string
    Sharing    []bool
    Capacities []int
    Quiet      bool
}

func main() {
    cfg, opts, err := loadConfig()
    if err != nil {
        fmt.Fprintln(os.Stderr, err)
        os.Exit(2)
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    sink, closeSink, err := openSink(ctx, cfg)
    if err != nil {
        log.Fatal(err)
    }
    defer closeSink()

    cases := experiment.Grid(cfg, cfg.Sweep.Runs, opts.Sharing, opts.Capacities)
    if len(cases) == 1 && opts.Label != "" {
        cases[0].Label = opts.Label
    }

    runs, err := experiment.Sweep(ctx, cases, cfg.Sweep.Workers)
    if err != nil {
        log.Printf("[SIM] %v", err)
        os.Exit(1)
    }

    for _, run := range runs {
        if !opts.Quiet {
            report.PrintConsole(os.Stdout, run)
            fmt.Println()
        }
        if !sink.Enabled() {
            continue
        }
        if err := sink.Save(ctx, run); err != nil {
            log.Printf("[SIM] export: %v", err)
            os.Exit(1)
        }
    }
    if sink.Enabled() {
        log.Printf("[SIM] exported %d runs", len(runs))
    }
}

// loadConfig overlays command line flags on the environment config.
func loadConfig() (config.Config, Options, error) {
    cfg, err := config.Load()
    if err != nil && !errors.Is(err, config.ErrInvalid) {
        return cfg, Options{}, err
    }

    var opts Options
    var sharing, capacities string
    flag.IntVar(&cfg.Sim.Ticks, "ticks", cfg.Sim.Ticks, "Simulated ticks")
    flag.IntVar(&cfg.Sim.GridX, "grid-x", cfg.Sim.GridX, "Grid width")
    flag.IntVar(&cfg.Sim.GridY, "grid-y", cfg.Sim.GridY, "Grid height")
    flag.IntVar(&cfg.Sim.Vehicles, "vehicles", cfg.Sim.Vehicles, "Fleet size")
    flag.IntVar(&cfg.Sim.Requests, "requests", cfg.Sim.Requests, "Passenger requests")
    flag.IntVar(&cfg.Sim.Capacity, "capacity", cfg.Sim.Capacity, "Seats per vehicle")
    flag.BoolVar(&cfg.Sim.Sharing, "sharing", cfg.Sim.Sharing, "Allow ride sharing")
    flag.IntVar(&cfg.Sim.NodeLimit, "node-limit", cfg.Sim.NodeLimit, "Largest route searched for shared insertion")
    flag.IntVar(&cfg.Sim.TimeOut, "timeout", cfg.Sim.TimeOut, "Ticks between matching attempts")
    flag.IntVar(&cfg.Sim.RetryCap, "retry-cap", cfg.Sim.RetryCap, "Failed attempts before giving up (0 = never)")
    flag.Int64Var(&cfg.Sim.Seed, "seed", cfg.Sim.Seed, "Scenario seed")
    flag.BoolVar(&cfg.Sim.Shuffle, "shuffle", cfg.Sim.Shuffle, "Shuffle step order every tick")
    flag.BoolVar(&cfg.Sim.Strict, "strict", cfg.Sim.Strict, "Abort on invariant violations")
    flag.StringVar(&cfg.Sim.Idle, "idle", cfg.Sim.Idle, "Idle policy: hold or wander")
    flag.IntVar(&cfg.Sweep.Runs, "runs", cfg.Sweep.Runs, "Consecutive seeds to run")
    flag.IntVar(&cfg.Sweep.Workers, "workers", cfg.Sweep.Workers, "Parallel runs")
    flag.StringVar(&sharing, "sweep-sharing", "", "Comma separated sharing modes to sweep, e.g. true,false")
    flag.StringVar(&capacities, "sweep-capacity", "", "Comma separated capacities to sweep, e.g. 2,4")
    flag.StringVar(&opts.Label, "label", "", "Label of a single run")
    flag.BoolVar(&opts.Quiet, "quiet", false, "Do not print reports")
    flag.Parse()

    if opts.Sharing, err = parseList(sharing, strconv.ParseBool); err != nil {
        return cfg, opts, fmt.Errorf("sweep-sharing: %w", err)
    }
    if opts.Capacities, err = parseList(capacities, strconv.Atoi); err != nil {
        return cfg, opts, fmt.Errorf("sweep-capacity: %w", err)
    }
    return cfg, opts, cfg.Validate()
}

func parseList[T any](raw string, parse func(string) (T, error)) ([]T, error) {
    if raw == "" {
        return nil, nil
    }
    var out []T
    for _, part := range strings.Split(raw, ",") {
        v, err := parse(strings.TrimSpace(part))
        if err != nil {
            return nil, err
        }
        out = append(out, v)
    }
    return out, nil
}

func openSink(ctx context.Context, cfg config.Config) (report.Sink, func(), error) {
    var sink report.Sink
    var closers []func()
    closeAll := func() {
        for _, c := range closers {
            c()
        }
    }

    if cfg.DB.DSN != "" {
        db, err := infra.NewDB(ctx, cfg.DB.DSN)
        if err != nil {
            return sink, closeAll, err
        }
        closers = append(closers, db.Close)
        sink.Store = report.NewStore(db)
    }
    if cfg.Redis.Addr != "" {
        rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr)
        if err != nil {
            closeAll()
            return sink, func() {}, err
        }
        closers = append(closers, func() { _ = rdb.Close() })
        sink.Cache = report.NewCache(rdb)
    }
    return sink, closeAll, nil
}
