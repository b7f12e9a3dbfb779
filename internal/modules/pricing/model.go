// README: Pricing rule definitions for per-vehicle price-per-distance rates.
package pricing

// Rule decides a vehicle's price per distance unit for the current tick.
type Rule interface {
    Rate(in RateInput) float64
}

type RateInput struct {
    Tick           int
    OccupancyTicks int
    BaseRate       float64
    CurrentRate    float64
}

// OccupancyRule lowers the rate of vehicles that have carried more than one
// passenger on average, re-evaluated every Interval ticks after Warmup.
type OccupancyRule struct {
    Warmup   int
    Interval int
}

// FixedRule keeps whatever rate the vehicle already has.
type FixedRule struct{}
