// README: Vehicle aggregate, idle policies and route quotes.
package vehicle

import (
    "errors"
    "math"
    "math/rand"

    "sharetaxi/internal/modules/location"
    "sharetaxi/internal/modules/pricing"
    "sharetaxi/internal/modules/request"
    "sharetaxi/internal/modules/routing"
    "sharetaxi/internal/types"
)

type IdlePolicy string

const (
    IdleHold   IdlePolicy = "hold"
    IdleWander IdlePolicy = "wander"
)

var ErrInfeasibleQuote = errors.New("quote is not feasible")

// Vehicle is one shared taxi. Its route and request sets are only changed by
// its own Commit and Step.
type Vehicle struct {
    ID       int
    Position types.Point
    Capacity int
    Sharing  bool
    BaseRate float64
    Rate     float64

    Route   routing.Route
    Pending map[int]*request.Request
    Onboard map[int]*request.Request

    DistanceDriven int
    Earnings       float64
    OccupancyTicks int

    planner routing.Planner
    pricing pricing.Rule
    idle    IdlePolicy
    bounds  location.Bounds
    rng     *rand.Rand
    target  *types.Point
}

type Config struct {
    ID        int
    Position  types.Point
    Capacity  int
    Sharing   bool
    NodeLimit int
    BaseRate  float64
    Pricing   pricing.Rule
    Idle      IdlePolicy
    Bounds    location.Bounds
    // RNG drives idle wandering; required only for IdleWander.
    RNG *rand.Rand
}

// Quote is a tentative offer to serve a request; nothing is committed.
type Quote struct {
    VehicleID int
    Plan      routing.Plan
    Price     float64
}

func (q Quote) Feasible() bool {
    return q.Plan.Feasible()
}

func infeasibleQuote(id int) Quote {
    return Quote{VehicleID: id, Plan: routing.InfeasiblePlan(), Price: math.Inf(1)}
}
