// README: Request aggregate and lifecycle status definitions.
package request

import (
    "errors"

    "sharetaxi/internal/types"
)

type Status string

const (
    StatusIdle       Status = "idle"
    StatusRequesting Status = "requesting"
    StatusMatched    Status = "matched"
    StatusInVehicle  Status = "in_vehicle"
    StatusDelivered  Status = "delivered"
)

var (
    ErrInvalidState     = errors.New("invalid request state transition")
    ErrPositionMismatch = errors.New("vehicle not at request stop")
)

// Request is one passenger trip. Origin, Destination and RequestTime are fixed
// at creation; everything else is advanced by Step and by the serving vehicle.
type Request struct {
    ID                int
    Origin            types.Point
    Destination       types.Point
    RequestTime       int
    DesiredTravelTime float64
    DesiredPrice      float64

    Status         Status
    VehicleID      *int
    QuotedTime     int
    Price          float64
    DelayTolerance float64
    Delays         []int

    WaitingTime   int
    InVehicleTime int
    TimeOut       int
    Retries       int
}

// Policy controls the retry loop of an unmatched request. RetryCap <= 0 means
// the request retries for as long as the run lasts.
type Policy struct {
    TimeOut  int
    RetryCap int
}

// Assignment is what a successful match hands back to the request.
type Assignment struct {
    VehicleID  int
    QuotedTime int
    Price      float64
}

// Matcher commits the request to the best vehicle it can find, if any.
type Matcher interface {
    Match(r *Request) (Assignment, bool)
}

// AllowedTransitions represents the request state flow (diagram) as code.
var AllowedTransitions = map[Status][]Status{
    StatusIdle:       {StatusRequesting},
    StatusRequesting: {StatusRequesting, StatusMatched},
    StatusMatched:    {StatusInVehicle},
    StatusInVehicle:  {StatusDelivered},
}

func CanTransition(from, to Status) bool {
    next, ok := AllowedTransitions[from]
    if !ok {
        return false
    }
    for _, s := range next {
        if s == to {
            return true
        }
    }
    return false
}
