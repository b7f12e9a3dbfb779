// Package scenario generates random passenger requests and a fleet for one
// simulation run. All randomness comes from the caller's seeded source so a
// run is reproducible from its seed.
package scenario

import (
	"math/rand"

	"sharetaxi/internal/modules/location"
	"sharetaxi/internal/modules/pricing"
	"sharetaxi/internal/modules/request"
	"sharetaxi/internal/modules/vehicle"
)

// Params configures one generated scenario.
type Params struct {
	Bounds    location.Bounds
	Ticks     int
	Requests  int
	Vehicles  int
	Capacity  int
	Sharing   bool
	NodeLimit int
	Idle      vehicle.IdlePolicy
	Pricing   pricing.Rule

	// Base price per distance unit is drawn from [RateMin, RateMax].
	RateMin float64
	RateMax float64

	// Each passenger draws a power factor p from [PowerMin, PowerMax]. With
	// d the direct trip distance, the desired travel time is
	// BudgetBase/p + BudgetFactor*d/p and the desired price BudgetFactor*d*p.
	PowerMin     float64
	PowerMax     float64
	BudgetBase   float64
	BudgetFactor float64
}

// DefaultParams returns the reference setup: a 20x20 grid, 10 shared taxis of
// capacity 4 and 100 passengers over 100 ticks.
func DefaultParams() Params {
	return Params{
		Bounds:       location.Bounds{MaxX: 20, MaxY: 20},
		Ticks:        100,
		Requests:     100,
		Vehicles:     10,
		Capacity:     4,
		Sharing:      true,
		NodeLimit:    5,
		Idle:         vehicle.IdleHold,
		Pricing:      pricing.OccupancyRule{Warmup: 10, Interval: 10},
		RateMin:      0.8,
		RateMax:      1.2,
		PowerMin:     0.7,
		PowerMax:     1.1,
		BudgetBase:   10,
		BudgetFactor: 1.2,
	}
}

type Scenario struct {
	Requests []*request.Request
	Vehicles []*vehicle.Vehicle
}

func Generate(rng *rand.Rand, p Params) Scenario {
	s := Scenario{
		Requests: make([]*request.Request, 0, p.Requests),
		Vehicles: make([]*vehicle.Vehicle, 0, p.Vehicles),
	}
	for i := 0; i < p.Requests; i++ {
		s.Requests = append(s.Requests, newRequest(rng, p, i))
	}
	for i := 0; i < p.Vehicles; i++ {
		s.Vehicles = append(s.Vehicles, vehicle.New(vehicle.Config{
			ID:        i,
			Position:  location.RandomPoint(rng, p.Bounds),
			Capacity:  p.Capacity,
			Sharing:   p.Sharing,
			NodeLimit: p.NodeLimit,
			BaseRate:  uniform(rng, p.RateMin, p.RateMax),
			Pricing:   p.Pricing,
			Idle:      p.Idle,
			Bounds:    p.Bounds,
			RNG:       rand.New(rand.NewSource(rng.Int63())),
		}))
	}
	return s
}

func newRequest(rng *rand.Rand, p Params, id int) *request.Request {
	orig := location.RandomPoint(rng, p.Bounds)
	dest := location.RandomPoint(rng, p.Bounds)
	d := float64(location.Distance(orig, dest))
	power := uniform(rng, p.PowerMin, p.PowerMax)

	return request.New(
		id,
		orig,
		dest,
		rng.Intn(latestRequestTime(p)+1),
		p.BudgetBase/power+p.BudgetFactor*d/power,
		p.BudgetFactor*d*power,
	)
}

// latestRequestTime is the last tick a request may start on, inclusive. It
// leaves room for the longest possible trip, or falls back to the last tick of
// runs shorter than that.
func latestRequestTime(p Params) int {
	latest := p.Ticks - (p.Bounds.MaxX + p.Bounds.MaxY)
	if latest < 0 {
		latest = p.Ticks - 1
	}
	if latest < 0 {
		latest = 0
	}
	return latest
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}
