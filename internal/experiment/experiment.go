// README: Experiment runner: builds one world per case from config and runs independent cases in parallel.
package experiment

import (
    "context"
    "fmt"
    "log"
    "math/rand"
    "time"

    "golang.org/x/sync/errgroup"

    "sharetaxi/internal/config"
    "sharetaxi/internal/modules/location"
    "sharetaxi/internal/modules/pricing"
    "sharetaxi/internal/modules/request"
    "sharetaxi/internal/modules/vehicle"
    "sharetaxi/internal/report"
    "sharetaxi/internal/scenario"
    "sharetaxi/internal/sim"
)

// Case is one fully configured simulation instance.
type Case struct {
    Label  string
    Config config.Config
}

// Params maps a config onto scenario generation parameters.
func Params(cfg config.Config) scenario.Params {
    return scenario.Params{
        Bounds:       location.Bounds{MaxX: cfg.Sim.GridX, MaxY: cfg.Sim.GridY},
        Ticks:        cfg.Sim.Ticks,
        Requests:     cfg.Sim.Requests,
        Vehicles:     cfg.Sim.Vehicles,
        Capacity:     cfg.Sim.Capacity,
        Sharing:      cfg.Sim.Sharing,
        NodeLimit:    cfg.Sim.NodeLimit,
        Idle:         vehicle.IdlePolicy(cfg.Sim.Idle),
        Pricing:      pricing.OccupancyRule{Warmup: cfg.Pricing.Warmup, Interval: cfg.Pricing.Interval},
        RateMin:      cfg.Pricing.RateMin,
        RateMax:      cfg.Pricing.RateMax,
        PowerMin:     cfg.Tolerance.PowerMin,
        PowerMax:     cfg.Tolerance.PowerMax,
        BudgetBase:   cfg.Tolerance.BudgetBase,
        BudgetFactor: cfg.Tolerance.BudgetFactor,
    }
}

// Run generates the case's scenario from its seed, simulates it to the end
// and builds the report.
func Run(ctx context.Context, c Case) (*report.Run, error) {
    cfg := c.Config
    if err := cfg.Validate(); err != nil {
        return nil, fmt.Errorf("case %q: %w", c.Label, err)
    }

    s := scenario.Generate(rand.New(rand.NewSource(cfg.Sim.Seed)), Params(cfg))
    w := sim.NewWorld(s.Requests, s.Vehicles, sim.Options{
        Ticks:   cfg.Sim.Ticks,
        Shuffle: cfg.Sim.Shuffle,
        Strict:  cfg.Sim.Strict,
        Seed:    cfg.Sim.Seed,
        Policy:  request.Policy{TimeOut: cfg.Sim.TimeOut, RetryCap: cfg.Sim.RetryCap},
    })

    start := time.Now()
    if err := w.Run(ctx); err != nil {
        return nil, fmt.Errorf("case %q: %w", c.Label, err)
    }
    run := report.Build(w, report.Meta{
        Label:    c.Label,
        Seed:     cfg.Sim.Seed,
        Sharing:  cfg.Sim.Sharing,
        Capacity: cfg.Sim.Capacity,
    })
    log.Printf("[SWEEP] %s: delivered %d/%d in %s",
        c.Label, run.Summary.Delivered, run.Summary.Requests, time.Since(start).Round(time.Millisecond))
    return run, nil
}

// Sweep runs every case with at most workers in flight. Results keep the
// order of cases; the first failure cancels the rest.
func Sweep(ctx context.Context, cases []Case, workers int) ([]*report.Run, error) {
    g, ctx := errgroup.WithContext(ctx)
    if workers > 0 {
        g.SetLimit(workers)
    }

    runs := make([]*report.Run, len(cases))
    for i, c := range cases {
        g.Go(func() error {
            run, err := Run(ctx, c)
            if err != nil {
                return err
            }
            runs[i] = run
            return nil
        })
    }
    if err := g.Wait(); err != nil {
        return nil, err
    }
    return runs, nil
}

// Grid expands base into runs consecutive seeds for every sharing mode and
// capacity. Empty sharing or capacities keep the base value.
func Grid(base config.Config, runs int, sharing []bool, capacities []int) []Case {
    if len(sharing) == 0 {
        sharing = []bool{base.Sim.Sharing}
    }
    if len(capacities) == 0 {
        capacities = []int{base.Sim.Capacity}
    }

    cases := make([]Case, 0, runs*len(sharing)*len(capacities))
    for i := 0; i < runs; i++ {
        for _, share := range sharing {
            for _, capacity := range capacities {
                cfg := base
                cfg.Sim.Seed = base.Sim.Seed + int64(i)
                cfg.Sim.Sharing = share
                cfg.Sim.Capacity = capacity
                cases = append(cases, Case{
                    Label:  fmt.Sprintf("seed=%d sharing=%t capacity=%d", cfg.Sim.Seed, share, capacity),
                    Config: cfg,
                })
            }
        }
    }
    return cases
}
