// README: Pricing computes fares and applies the occupancy rate rule.
package pricing

// Fare is the price of a trip of the given direct distance at rate.
func Fare(distance int, rate float64) float64 {
    return float64(distance) * rate
}

func (r OccupancyRule) Rate(in RateInput) float64 {
    if in.Tick <= r.Warmup || r.Interval <= 0 || in.Tick%r.Interval != 0 {
        return in.CurrentRate
    }
    avg := float64(in.OccupancyTicks) / float64(in.Tick)
    if avg > 1 {
        return in.BaseRate / avg
    }
    return in.BaseRate
}

func (FixedRule) Rate(in RateInput) float64 {
    return in.CurrentRate
}
