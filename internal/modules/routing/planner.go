// README: Route insertion planner: trivial, sequential and combinatorial insertion of a new request.
package routing

import (
    "sharetaxi/internal/modules/location"
    "sharetaxi/internal/modules/request"
    "sharetaxi/internal/types"
)

// Planner holds the vehicle-level settings that bound an insertion search.
// Capacity <= 0 disables the onboard-capacity check.
type Planner struct {
    Sharing   bool
    NodeLimit int
    Capacity  int
}

// State is the part of a vehicle the planner reads.
type State struct {
    Position types.Point
    Route    Route
    Onboard  int
}

// Plan finds the cheapest feasible way to add r to the vehicle's route. bound
// is the best quote found so far on other vehicles; shared insertions must
// beat it. The vehicle state is only read.
func (pl Planner) Plan(st State, r *request.Request, bound int) Plan {
    pickup, dropoff := PickupOf(r), DropoffOf(r)
    direct := location.PathLength([]types.Point{st.Position, r.Origin, r.Destination})

    switch {
    case len(st.Route) == 0:
        return Plan{Distance: direct, Route: Route{pickup, dropoff}}
    case !pl.Sharing && len(st.Route) <= 2:
        route := append(st.Route.clone(), pickup, dropoff)
        return Plan{Distance: route.Length(st.Position), Route: route}
    case pl.Sharing && len(st.Route) <= pl.NodeLimit && direct < bound:
        return pl.search(st, pickup, dropoff, bound)
    default:
        return InfeasiblePlan()
    }
}

// search enumerates every interleaving of the new stops into the current route
// and keeps the first strictly shortest one that passes the delay and capacity
// checks.
func (pl Planner) search(st State, pickup, dropoff StopNode, bound int) Plan {
    nodes := append(st.Route.clone(), pickup, dropoff)
    chains := append(st.Route.Chains(), []StopNode{pickup, dropoff})
    baseline := dropoffArrivals(st.Position, st.Route)

    best := Plan{Distance: bound}
    found := false
    for candidate := range Permute(nodes, chains) {
        dist := distanceTo(st.Position, candidate, dropoff)
        if dist >= best.Distance {
            continue
        }
        delays, ok := checkDelays(st.Position, candidate, baseline)
        if !ok || !pl.withinCapacity(st.Onboard, candidate) {
            continue
        }
        best = Plan{Distance: dist, Route: Route(candidate).clone(), Delays: delays}
        found = true
    }
    if !found {
        return InfeasiblePlan()
    }
    return best
}

// dropoffArrivals maps every dropoff in the current route to the distance at
// which the vehicle reaches it.
func dropoffArrivals(from types.Point, route Route) map[StopNode]int {
    arrivals := make(map[StopNode]int)
    dist, prev := 0, from
    for _, n := range route {
        dist += location.Distance(prev, n.Location())
        prev = n.Location()
        if n.Kind == Dropoff {
            arrivals[n] = dist
        }
    }
    return arrivals
}

func distanceTo(from types.Point, route []StopNode, target StopNode) int {
    dist, prev := 0, from
    for _, n := range route {
        dist += location.Distance(prev, n.Location())
        prev = n.Location()
        if n == target {
            break
        }
    }
    return dist
}

// checkDelays compares each committed dropoff's arrival in candidate against
// the current route. Any delay above the request's remaining tolerance rejects
// the whole candidate.
func checkDelays(from types.Point, candidate []StopNode, baseline map[StopNode]int) ([]Delay, bool) {
    delays := make([]Delay, 0, len(baseline))
    dist, prev := 0, from
    for _, n := range candidate {
        dist += location.Distance(prev, n.Location())
        prev = n.Location()
        before, ok := baseline[n]
        if !ok {
            continue
        }
        extra := dist - before
        if float64(extra) > n.Request.DelayTolerance {
            return nil, false
        }
        delays = append(delays, Delay{Request: n.Request, Extra: extra})
    }
    return delays, true
}

func (pl Planner) withinCapacity(onboard int, route []StopNode) bool {
    if pl.Capacity <= 0 {
        return true
    }
    load := onboard
    for _, n := range route {
        if n.Kind == Pickup {
            load++
        } else {
            load--
        }
        if load > pl.Capacity {
            return false
        }
    }
    return true
}
