// README: Matching service picks the cheapest feasible vehicle for a request and commits to it.
package matching

import (
    "log"

    "sharetaxi/internal/modules/request"
    "sharetaxi/internal/modules/routing"
    "sharetaxi/internal/modules/vehicle"
)

type Service struct {
    fleet []*vehicle.Vehicle
    stats Stats
}

// NewService matches against the given fleet. The slice is only read; the
// winning vehicle of each match is the only one mutated.
func NewService(fleet []*vehicle.Vehicle) *Service {
    return &Service{fleet: fleet}
}

// Best asks every vehicle for a quote, passing the best quoted time so far as
// the pruning bound, and keeps the fastest one within r's time and price
// budgets. Earlier vehicles win ties.
func (s *Service) Best(r *request.Request) (*vehicle.Vehicle, vehicle.Quote, bool) {
    var best *vehicle.Vehicle
    var bestQuote vehicle.Quote
    bound := routing.Infeasible
    for _, v := range s.fleet {
        q := v.Quote(r, bound)
        if !q.Feasible() || q.Plan.Distance >= bound {
            continue
        }
        if float64(q.Plan.Distance) >= r.DesiredTravelTime || q.Price >= r.DesiredPrice {
            continue
        }
        best, bestQuote, bound = v, q, q.Plan.Distance
    }
    return best, bestQuote, best != nil
}

// Match implements request.Matcher.
func (s *Service) Match(r *request.Request) (request.Assignment, bool) {
    s.stats.Attempts++
    v, q, ok := s.Best(r)
    if !ok {
        s.stats.Failures++
        return request.Assignment{}, false
    }
    if err := v.Commit(r, q); err != nil {
        log.Printf("[MATCH] request %d: %v", r.ID, err)
        s.stats.CommitErrors++
        s.stats.Failures++
        return request.Assignment{}, false
    }
    s.stats.Matches++
    return request.Assignment{
        VehicleID:  v.ID,
        QuotedTime: q.Plan.Distance,
        Price:      q.Price,
    }, true
}

func (s *Service) Stats() Stats {
    return s.stats
}
