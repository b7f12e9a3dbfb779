// README: Build turns a finished world into a Run; PrintConsole renders it for humans.
package report

import (
    "fmt"
    "io"
    "math"
    "time"

    "github.com/google/uuid"

    "sharetaxi/internal/modules/request"
    "sharetaxi/internal/sim"
)

func Build(w *sim.World, meta Meta) *Run {
    run := &Run{
        Header: Header{
            ID:        uuid.New(),
            Label:     meta.Label,
            Seed:      meta.Seed,
            Ticks:     w.Options().Ticks,
            Fleet:     len(w.Vehicles),
            Sharing:   meta.Sharing,
            Capacity:  meta.Capacity,
            CreatedAt: time.Now().UTC(),
        },
        Vehicles: make([]VehicleOutcome, 0, len(w.Vehicles)),
        Requests: make([]RequestOutcome, 0, len(w.Requests)),
    }

    for _, r := range w.Requests {
        o := RequestOutcome{
            RequestID:   r.ID,
            Status:      string(r.Status),
            RequestTime: r.RequestTime,
            Waiting:     r.WaitingTime,
            InVehicle:   r.InVehicleTime,
            QuotedTime:  r.QuotedTime,
            Price:       r.Price,
            Retries:     r.Retries,
            Delays:      append([]int{}, r.Delays...),
        }
        if r.VehicleID != nil {
            id := *r.VehicleID
            o.VehicleID = &id
        }
        run.Requests = append(run.Requests, o)
    }
    for _, v := range w.Vehicles {
        run.Vehicles = append(run.Vehicles, VehicleOutcome{
            VehicleID:      v.ID,
            DistanceDriven: v.DistanceDriven,
            OccupancyTicks: v.OccupancyTicks,
            Earnings:       v.Earnings,
            BaseRate:       v.BaseRate,
            FinalRate:      v.Rate,
        })
    }

    stats := w.MatchStats()
    run.Summary = Summarize(run.Requests, run.Vehicles, run.Ticks)
    run.Summary.MatchAttempts = stats.Attempts
    run.Summary.MatchFailures = stats.Failures
    run.Summary.Violations = w.Violations
    return run
}

// Summarize aggregates outcomes over a run of the given length.
func Summarize(requests []RequestOutcome, vehicles []VehicleOutcome, ticks int) Summary {
    s := Summary{Requests: len(requests)}

    var commutes []float64
    waiting, delays, delayCount := 0, 0, 0
    for _, o := range requests {
        switch request.Status(o.Status) {
        case request.StatusDelivered:
            s.Delivered++
            c := o.Commute()
            commutes = append(commutes, float64(c))
            waiting += o.Waiting
            if c > s.MaxCommute {
                s.MaxCommute = c
            }
        case request.StatusMatched, request.StatusInVehicle:
            s.InProgress++
        case request.StatusRequesting:
            s.Unmatched++
        case request.StatusIdle:
            s.NotStarted++
        }
        for _, d := range o.Delays {
            delays += d
            delayCount++
        }
    }
    if s.Requests > 0 {
        s.DeliveryRatio = float64(s.Delivered) / float64(s.Requests)
    }
    if s.Delivered > 0 {
        s.MeanWaiting = float64(waiting) / float64(s.Delivered)
    }
    if delayCount > 0 {
        s.MeanDelay = float64(delays) / float64(delayCount)
    }
    s.MeanCommute, s.StdevCommute = meanStdev(commutes)

    occupancy := 0.0
    for _, v := range vehicles {
        s.TotalDistance += v.DistanceDriven
        s.TotalEarnings += v.Earnings
        if ticks > 0 {
            occupancy += float64(v.OccupancyTicks) / float64(ticks)
        }
    }
    if len(vehicles) > 0 {
        s.MeanOccupancy = occupancy / float64(len(vehicles))
    }
    return s
}

// meanStdev returns the mean and the sample standard deviation; the deviation
// is 0 for fewer than two values.
func meanStdev(xs []float64) (float64, float64) {
    if len(xs) == 0 {
        return 0, 0
    }
    sum := 0.0
    for _, x := range xs {
        sum += x
    }
    mean := sum / float64(len(xs))
    if len(xs) < 2 {
        return mean, 0
    }
    sq := 0.0
    for _, x := range xs {
        sq += (x - mean) * (x - mean)
    }
    return mean, math.Sqrt(sq / float64(len(xs)-1))
}

// PrintConsole writes a human-readable summary of run.
func PrintConsole(out io.Writer, run *Run) {
    s := run.Summary
    fmt.Fprintf(out, "=== Run %s ===\n", run.ID)
    if run.Label != "" {
        fmt.Fprintf(out, "Label: %s\n", run.Label)
    }
    fmt.Fprintf(out, "Seed: %d, ticks: %d, fleet: %d, sharing: %t, capacity: %d\n",
        run.Seed, run.Ticks, run.Fleet, run.Sharing, run.Capacity)
    fmt.Fprintf(out, "Passengers delivered: %d / %d (in progress %d, unmatched %d, not started %d)\n",
        s.Delivered, s.Requests, s.InProgress, s.Unmatched, s.NotStarted)
    fmt.Fprintf(out, "Travel time: average %.2f, max %d, std %.2f\n", s.MeanCommute, s.MaxCommute, s.StdevCommute)
    fmt.Fprintf(out, "Average wait: %.2f, average delay: %.2f\n", s.MeanWaiting, s.MeanDelay)
    fmt.Fprintf(out, "Distance driven: %d, average taxi occupancy: %.2f, earnings: %.2f\n",
        s.TotalDistance, s.MeanOccupancy, s.TotalEarnings)
    fmt.Fprintf(out, "Match attempts: %d, failures: %d\n", s.MatchAttempts, s.MatchFailures)
    if s.Violations > 0 {
        fmt.Fprintf(out, "Invariant violations skipped: %d\n", s.Violations)
    }
}
