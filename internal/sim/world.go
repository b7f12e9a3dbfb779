// README: World aggregate owns every request and vehicle of one run and drives the tick loop.
package sim

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"

	"sharetaxi/internal/modules/matching"
	"sharetaxi/internal/modules/request"
	"sharetaxi/internal/modules/vehicle"
)

type Options struct {
	Ticks int
	// Shuffle randomizes the request and vehicle step order every tick.
	Shuffle bool
	// Strict makes Step return invariant violations instead of logging them.
	Strict bool
	Seed   int64
	Policy request.Policy
}

// World is a single simulation instance. Nothing is shared between worlds,
// so independent worlds may run on separate goroutines.
type World struct {
	Requests []*request.Request
	Vehicles []*vehicle.Vehicle
	Tick     int

	// Violations counts invariant violations that were logged and skipped.
	Violations int

	opts    Options
	matcher *matching.Service
	rng     *rand.Rand
}

// NewWorld takes ownership of the given requests and vehicles. Both are kept
// sorted by ID.
func NewWorld(requests []*request.Request, vehicles []*vehicle.Vehicle, opts Options) *World {
	reqs := append([]*request.Request(nil), requests...)
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID < reqs[j].ID })
	vehs := append([]*vehicle.Vehicle(nil), vehicles...)
	sort.Slice(vehs, func(i, j int) bool { return vehs[i].ID < vehs[j].ID })

	return &World{
		Requests: reqs,
		Vehicles: vehs,
		opts:     opts,
		matcher:  matching.NewService(vehs),
		rng:      rand.New(rand.NewSource(opts.Seed)),
	}
}

// Step runs one tick: every request, then every vehicle.
func (w *World) Step() error {
	reqs, vehs := w.Requests, w.Vehicles
	if w.opts.Shuffle {
		reqs = append([]*request.Request(nil), reqs...)
		vehs = append([]*vehicle.Vehicle(nil), vehs...)
		w.rng.Shuffle(len(reqs), func(i, j int) { reqs[i], reqs[j] = reqs[j], reqs[i] })
		w.rng.Shuffle(len(vehs), func(i, j int) { vehs[i], vehs[j] = vehs[j], vehs[i] })
	}

	for _, r := range reqs {
		r.Step(w.Tick, w.matcher, w.opts.Policy)
	}
	for _, v := range vehs {
		if err := v.Step(w.Tick); err != nil {
			if w.opts.Strict {
				return fmt.Errorf("tick %d: %w", w.Tick, err)
			}
			log.Printf("[SIM] tick %d: %v; stop skipped", w.Tick, err)
			w.Violations++
		}
	}
	w.Tick++
	return nil
}

// Run steps the world until the configured number of ticks has elapsed.
func (w *World) Run(ctx context.Context) error {
	for w.Tick < w.opts.Ticks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) MatchStats() matching.Stats {
	return w.matcher.Stats()
}

func (w *World) Options() Options {
	return w.opts
}
