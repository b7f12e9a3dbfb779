// README: Stop nodes, routes and insertion plans.
package routing

import (
    "errors"
    "fmt"
    "math"

    "sharetaxi/internal/modules/location"
    "sharetaxi/internal/modules/request"
    "sharetaxi/internal/types"
)

type StopKind uint8

const (
    Pickup StopKind = iota
    Dropoff
)

func (k StopKind) String() string {
    if k == Pickup {
        return "pickup"
    }
    return "dropoff"
}

// Infeasible is the quoted distance of a plan that cannot serve the request.
const Infeasible = math.MaxInt

var ErrPrecedence = errors.New("dropoff scheduled before pickup")

// StopNode is one pickup or dropoff of a request inside a vehicle route.
type StopNode struct {
    Request *request.Request
    Kind    StopKind
}

func PickupOf(r *request.Request) StopNode  { return StopNode{Request: r, Kind: Pickup} }
func DropoffOf(r *request.Request) StopNode { return StopNode{Request: r, Kind: Dropoff} }

func (n StopNode) Location() types.Point {
    if n.Kind == Pickup {
        return n.Request.Origin
    }
    return n.Request.Destination
}

func (n StopNode) String() string {
    return fmt.Sprintf("%s#%d@%v", n.Kind, n.Request.ID, n.Location())
}

// Route is the ordered stop queue of one vehicle.
type Route []StopNode

// Points returns from followed by every stop location in order.
func (rt Route) Points(from types.Point) []types.Point {
    pts := make([]types.Point, 0, len(rt)+1)
    pts = append(pts, from)
    for _, n := range rt {
        pts = append(pts, n.Location())
    }
    return pts
}

// Length is the travel distance from the given position through every stop.
func (rt Route) Length(from types.Point) int {
    return location.PathLength(rt.Points(from))
}

func (rt Route) Index(n StopNode) int {
    for i, m := range rt {
        if m == n {
            return i
        }
    }
    return -1
}

// Chains returns a pickup->dropoff chain for every request that still has both
// of its stops in the route. Requests already onboard only have a dropoff left
// and are unconstrained.
func (rt Route) Chains() [][]StopNode {
    var chains [][]StopNode
    for _, n := range rt {
        if n.Kind != Pickup {
            continue
        }
        if d := DropoffOf(n.Request); rt.Index(d) >= 0 {
            chains = append(chains, []StopNode{n, d})
        }
    }
    return chains
}

// Validate checks that every pickup precedes its request's dropoff.
func (rt Route) Validate() error {
    for i, n := range rt {
        if n.Kind != Pickup {
            continue
        }
        if j := rt.Index(DropoffOf(n.Request)); j >= 0 && j < i {
            return fmt.Errorf("request %d: %w", n.Request.ID, ErrPrecedence)
        }
    }
    return nil
}

func (rt Route) clone() Route {
    out := make(Route, len(rt))
    copy(out, rt)
    return out
}

// Delay is the extra time a committed request absorbs when a new request is
// inserted ahead of its dropoff.
type Delay struct {
    Request *request.Request
    Extra   int
}

// Plan is the outcome of an insertion attempt. An infeasible plan has
// Distance == Infeasible and no route.
type Plan struct {
    Distance int
    Route    Route
    Delays   []Delay
}

func InfeasiblePlan() Plan {
    return Plan{Distance: Infeasible}
}

func (p Plan) Feasible() bool {
    return p.Distance != Infeasible && p.Route != nil
}
