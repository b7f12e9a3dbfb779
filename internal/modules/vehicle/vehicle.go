// README: Vehicle quoting, committing and per-tick movement.
package vehicle

import (
    "fmt"

    "sharetaxi/internal/modules/location"
    "sharetaxi/internal/modules/pricing"
    "sharetaxi/internal/modules/request"
    "sharetaxi/internal/modules/routing"
    "sharetaxi/internal/types"
)

func New(cfg Config) *Vehicle {
    rule := cfg.Pricing
    if rule == nil {
        rule = pricing.FixedRule{}
    }
    idle := cfg.Idle
    if idle == IdleWander && cfg.RNG == nil {
        idle = IdleHold
    }
    return &Vehicle{
        ID:       cfg.ID,
        Position: cfg.Position,
        Capacity: cfg.Capacity,
        Sharing:  cfg.Sharing,
        BaseRate: cfg.BaseRate,
        Rate:     cfg.BaseRate,
        Pending:  make(map[int]*request.Request),
        Onboard:  make(map[int]*request.Request),
        planner: routing.Planner{
            Sharing:   cfg.Sharing,
            NodeLimit: cfg.NodeLimit,
            Capacity:  cfg.Capacity,
        },
        pricing: rule,
        idle:    idle,
        bounds:  cfg.Bounds,
        rng:     cfg.RNG,
    }
}

// Quote plans the insertion of r without changing the vehicle. bound is the
// best competing quote; see routing.Planner.Plan.
func (v *Vehicle) Quote(r *request.Request, bound int) Quote {
    plan := v.planner.Plan(v.state(), r, bound)
    if !plan.Feasible() {
        return infeasibleQuote(v.ID)
    }
    return Quote{
        VehicleID: v.ID,
        Plan:      plan,
        Price:     pricing.Fare(location.Distance(r.Origin, r.Destination), v.Rate),
    }
}

// Commit adopts the quoted route for r and charges the quoted delays to the
// passengers already assigned to this vehicle.
func (v *Vehicle) Commit(r *request.Request, q Quote) error {
    if !q.Feasible() || q.VehicleID != v.ID {
        return fmt.Errorf("vehicle %d commit request %d: %w", v.ID, r.ID, ErrInfeasibleQuote)
    }
    if err := q.Plan.Route.Validate(); err != nil {
        return fmt.Errorf("vehicle %d commit request %d: %w", v.ID, r.ID, err)
    }
    v.Route = q.Plan.Route
    v.Pending[r.ID] = r
    for _, d := range q.Plan.Delays {
        d.Request.ApplyDelay(d.Extra)
    }
    v.Earnings += q.Price
    return nil
}

// Step advances the vehicle by one tick: update the rate, then either serve
// the stop it is standing on or move one unit toward it. An error means a
// stop could not be served; the stop is dropped from the route regardless.
func (v *Vehicle) Step(tick int) error {
    v.Rate = v.pricing.Rate(pricing.RateInput{
        Tick:           tick,
        OccupancyTicks: v.OccupancyTicks,
        BaseRate:       v.BaseRate,
        CurrentRate:    v.Rate,
    })
    v.OccupancyTicks += len(v.Onboard)

    if len(v.Route) == 0 {
        v.wander()
        return nil
    }
    v.target = nil

    next := v.Route[0]
    if v.Position != next.Location() {
        v.move(next.Location())
        return nil
    }
    v.Route = v.Route[1:]
    return v.serve(next)
}

func (v *Vehicle) serve(n routing.StopNode) error {
    r := n.Request
    switch n.Kind {
    case routing.Pickup:
        if err := r.Board(v.Position); err != nil {
            return fmt.Errorf("vehicle %d: %w", v.ID, err)
        }
        delete(v.Pending, r.ID)
        v.Onboard[r.ID] = r
    case routing.Dropoff:
        if err := r.Alight(v.Position); err != nil {
            return fmt.Errorf("vehicle %d: %w", v.ID, err)
        }
        delete(v.Onboard, r.ID)
    }
    return nil
}

func (v *Vehicle) move(dest types.Point) {
    next := location.StepToward(v.Position, dest)
    if next == v.Position {
        return
    }
    v.Position = next
    v.DistanceDriven++
}

func (v *Vehicle) wander() {
    if v.idle != IdleWander {
        return
    }
    if v.target == nil || *v.target == v.Position {
        p := location.RandomPoint(v.rng, v.bounds)
        v.target = &p
    }
    v.move(*v.target)
}

func (v *Vehicle) state() routing.State {
    return routing.State{Position: v.Position, Route: v.Route, Onboard: len(v.Onboard)}
}

func (v *Vehicle) Idle() bool {
    return len(v.Route) == 0
}
