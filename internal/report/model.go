// README: Run report model: per-request and per-vehicle outcomes plus the run summary.
package report

import (
    "errors"
    "time"

    "github.com/google/uuid"
)

var ErrNotFound = errors.New("run not found")

type RequestOutcome struct {
    RequestID   int     `json:"request_id"`
    Status      string  `json:"status"`
    VehicleID   *int    `json:"vehicle_id,omitempty"`
    RequestTime int     `json:"request_time"`
    Waiting     int     `json:"waiting"`
    InVehicle   int     `json:"in_vehicle"`
    QuotedTime  int     `json:"quoted_time"`
    Price       float64 `json:"price"`
    Retries     int     `json:"retries"`
    Delays      []int   `json:"delays"`
}

// Commute is the total time from request to dropoff.
func (o RequestOutcome) Commute() int {
    return o.Waiting + o.InVehicle
}

type VehicleOutcome struct {
    VehicleID      int     `json:"vehicle_id"`
    DistanceDriven int     `json:"distance_driven"`
    OccupancyTicks int     `json:"occupancy_ticks"`
    Earnings       float64 `json:"earnings"`
    BaseRate       float64 `json:"base_rate"`
    FinalRate      float64 `json:"final_rate"`
}

// Summary aggregates one run. Commute statistics cover delivered requests
// only; StdevCommute is the sample standard deviation.
type Summary struct {
    Requests      int     `json:"requests"`
    Delivered     int     `json:"delivered"`
    InProgress    int     `json:"in_progress"`
    Unmatched     int     `json:"unmatched"`
    NotStarted    int     `json:"not_started"`
    DeliveryRatio float64 `json:"delivery_ratio"`

    MeanCommute  float64 `json:"mean_commute"`
    MaxCommute   int     `json:"max_commute"`
    StdevCommute float64 `json:"stdev_commute"`
    MeanWaiting  float64 `json:"mean_waiting"`
    MeanDelay    float64 `json:"mean_delay"`

    TotalDistance int     `json:"total_distance"`
    MeanOccupancy float64 `json:"mean_occupancy"`
    TotalEarnings float64 `json:"total_earnings"`

    MatchAttempts int `json:"match_attempts"`
    MatchFailures int `json:"match_failures"`
    Violations    int `json:"violations"`
}

// Header identifies a stored run and carries its summary. It is what list
// endpoints and the cache hold.
type Header struct {
    ID        uuid.UUID `json:"id"`
    Label     string    `json:"label"`
    Seed      int64     `json:"seed"`
    Ticks     int       `json:"ticks"`
    Fleet     int       `json:"fleet"`
    Sharing   bool      `json:"sharing"`
    Capacity  int       `json:"capacity"`
    CreatedAt time.Time `json:"created_at"`
    Summary   Summary   `json:"summary"`
}

type Run struct {
    Header
    Vehicles []VehicleOutcome `json:"vehicles"`
    Requests []RequestOutcome `json:"requests"`
}

// Meta is the run metadata the world itself does not know.
type Meta struct {
    Label    string
    Seed     int64
    Sharing  bool
    Capacity int
}
