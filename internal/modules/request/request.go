// README: Request stepping: activation, matching attempts with timeout/retry, pickup and dropoff.
package request

import (
    "fmt"

    "sharetaxi/internal/types"
)

func New(id int, origin, destination types.Point, requestTime int, desiredTime, desiredPrice float64) *Request {
    return &Request{
        ID:                id,
        Origin:            origin,
        Destination:       destination,
        RequestTime:       requestTime,
        DesiredTravelTime: desiredTime,
        DesiredPrice:      desiredPrice,
        Status:            StatusIdle,
    }
}

// Step advances the request by one tick. Matching is attempted on the tick the
// request becomes active and afterwards whenever its timeout has run out.
func (r *Request) Step(tick int, m Matcher, p Policy) {
    switch r.Status {
    case StatusIdle:
        if tick != r.RequestTime {
            return
        }
        r.Status = StatusRequesting
        r.tryMatch(m, p)
    case StatusRequesting:
        switch {
        case r.Exhausted(p):
            // Stays requesting for the rest of the run.
        case r.TimeOut == 0:
            r.tryMatch(m, p)
        default:
            r.TimeOut--
        }
    }

    // Waiting runs from the request time until pickup, matched or not.
    switch r.Status {
    case StatusRequesting, StatusMatched:
        r.WaitingTime++
    case StatusInVehicle:
        r.InVehicleTime++
    }
}

// Exhausted reports whether the request has used up its retries.
func (r *Request) Exhausted(p Policy) bool {
    return p.RetryCap > 0 && r.Retries >= p.RetryCap
}

func (r *Request) tryMatch(m Matcher, p Policy) {
    a, ok := m.Match(r)
    if !ok {
        r.TimeOut = p.TimeOut
        r.Retries++
        return
    }
    r.assign(a)
}

func (r *Request) assign(a Assignment) {
    id := a.VehicleID
    r.Status = StatusMatched
    r.VehicleID = &id
    r.QuotedTime = a.QuotedTime
    r.Price = a.Price
    r.DelayTolerance = r.DesiredTravelTime - float64(a.QuotedTime)
    r.TimeOut = 0
}

// ApplyDelay deducts a later insertion's extra travel time from the remaining
// tolerance. Non-positive delays are ignored so the tolerance never grows.
func (r *Request) ApplyDelay(extra int) {
    if extra <= 0 {
        return
    }
    r.DelayTolerance -= float64(extra)
    r.Delays = append(r.Delays, extra)
}

// Board is called by the serving vehicle at the request's origin.
func (r *Request) Board(at types.Point) error {
    if !CanTransition(r.Status, StatusInVehicle) {
        return fmt.Errorf("request %d board from %s: %w", r.ID, r.Status, ErrInvalidState)
    }
    if at != r.Origin {
        return fmt.Errorf("request %d pickup at %v, origin %v: %w", r.ID, at, r.Origin, ErrPositionMismatch)
    }
    r.Status = StatusInVehicle
    return nil
}

// Alight is called by the serving vehicle at the request's destination.
func (r *Request) Alight(at types.Point) error {
    if !CanTransition(r.Status, StatusDelivered) {
        return fmt.Errorf("request %d alight from %s: %w", r.ID, r.Status, ErrInvalidState)
    }
    if at != r.Destination {
        return fmt.Errorf("request %d dropoff at %v, destination %v: %w", r.ID, at, r.Destination, ErrPositionMismatch)
    }
    r.Status = StatusDelivered
    return nil
}

func (r *Request) Delivered() bool {
    return r.Status == StatusDelivered
}
