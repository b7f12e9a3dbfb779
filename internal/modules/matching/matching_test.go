// README: Matching service tests: best-vehicle selection, budgets, tie-breaking and commit side effects.
package matching

import (
	"testing"

	"sharetaxi/internal/modules/location"
	"sharetaxi/internal/modules/request"
	"sharetaxi/internal/modules/vehicle"
	"sharetaxi/internal/types"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func makeVehicle(id int, pos types.Point, rate float64, sharing bool) *vehicle.Vehicle {
	return vehicle.New(vehicle.Config{
		ID:        id,
		Position:  pos,
		Capacity:  4,
		Sharing:   sharing,
		NodeLimit: 5,
		BaseRate:  rate,
		Bounds:    location.Bounds{MaxX: 20, MaxY: 20},
	})
}

func makeRequest(id int, orig, dest types.Point, desiredTime, desiredPrice float64) *request.Request {
	return request.New(id, orig, dest, 0, desiredTime, desiredPrice)
}

// ---------------------------------------------------------------------------
// Selection
// ---------------------------------------------------------------------------

func TestBest_PicksClosestVehicle(t *testing.T) {
	far := makeVehicle(1, types.Point{X: 20, Y: 20}, 1, true)
	near := makeVehicle(2, types.Point{X: 2, Y: 0}, 1, true)
	svc := NewService([]*vehicle.Vehicle{far, near})

	r := makeRequest(1, types.Point{X: 3, Y: 0}, types.Point{X: 3, Y: 4}, 100, 100)
	v, q, ok := svc.Best(r)
	if !ok {
		t.Fatal("expected a match")
	}
	if v != near {
		t.Fatalf("expected vehicle 2, got %d", v.ID)
	}
	if q.Plan.Distance != 5 {
		t.Fatalf("expected quoted time 5, got %d", q.Plan.Distance)
	}
}

func TestBest_TieKeepsFirstVehicle(t *testing.T) {
	a := makeVehicle(1, types.Point{X: 0, Y: 0}, 1, true)
	b := makeVehicle(2, types.Point{X: 6, Y: 0}, 1, true)
	svc := NewService([]*vehicle.Vehicle{a, b})

	r := makeRequest(1, types.Point{X: 3, Y: 0}, types.Point{X: 3, Y: 4}, 100, 100)
	v, _, ok := svc.Best(r)
	if !ok || v != a {
		t.Fatalf("expected first vehicle on tie, got %v", v)
	}
}

func TestBest_RespectsBudgets(t *testing.T) {
	cheapSlow := makeVehicle(1, types.Point{X: 15, Y: 0}, 0.5, true)
	fastPricey := makeVehicle(2, types.Point{X: 3, Y: 0}, 3, true)
	svc := NewService([]*vehicle.Vehicle{cheapSlow, fastPricey})

	// Trip distance 4: fastPricey charges 12, cheapSlow charges 2.
	r := makeRequest(1, types.Point{X: 3, Y: 0}, types.Point{X: 3, Y: 4}, 100, 10)
	v, q, ok := svc.Best(r)
	if !ok || v != cheapSlow {
		t.Fatalf("expected the affordable vehicle, got %v", v)
	}
	if q.Price != 2 {
		t.Fatalf("expected price 2, got %v", q.Price)
	}

	// Only 10 ticks allowed: cheapSlow needs 16.
	r2 := makeRequest(2, types.Point{X: 3, Y: 0}, types.Point{X: 3, Y: 4}, 10, 10)
	if _, _, ok := svc.Best(r2); ok {
		t.Fatal("expected no vehicle within both budgets")
	}
}

// ---------------------------------------------------------------------------
// Match
// ---------------------------------------------------------------------------

func TestMatch_CommitsWinner(t *testing.T) {
	a := makeVehicle(1, types.Point{X: 10, Y: 10}, 1, true)
	b := makeVehicle(2, types.Point{X: 0, Y: 0}, 1, true)
	svc := NewService([]*vehicle.Vehicle{a, b})

	r := makeRequest(1, types.Point{X: 3, Y: 0}, types.Point{X: 3, Y: 4}, 100, 100)
	r.Step(0, svc, request.Policy{TimeOut: 5})

	if r.Status != request.StatusMatched {
		t.Fatalf("expected matched, got %s", r.Status)
	}
	if r.VehicleID == nil || *r.VehicleID != 2 {
		t.Fatalf("expected vehicle 2, got %v", r.VehicleID)
	}
	if r.DelayTolerance != 93 {
		t.Fatalf("expected tolerance 100-7=93, got %v", r.DelayTolerance)
	}
	if len(b.Route) != 2 || len(a.Route) != 0 {
		t.Fatalf("expected only the winner to change: a=%v b=%v", a.Route, b.Route)
	}
	if b.Earnings != 4 {
		t.Fatalf("expected earnings 4, got %v", b.Earnings)
	}
	if st := svc.Stats(); st.Attempts != 1 || st.Matches != 1 || st.Failures != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

// TestMatch_ZeroPriceBudgetNeverMatches runs an unaffordable request against a
// free fleet for many ticks: it keeps retrying and never leaves requesting.
func TestMatch_ZeroPriceBudgetNeverMatches(t *testing.T) {
	fleet := []*vehicle.Vehicle{
		makeVehicle(1, types.Point{X: 0, Y: 0}, 1, true),
		makeVehicle(2, types.Point{X: 5, Y: 5}, 1, true),
	}
	svc := NewService(fleet)
	r := makeRequest(1, types.Point{X: 3, Y: 0}, types.Point{X: 3, Y: 4}, 100, 0)
	p := request.Policy{TimeOut: 2}

	for tick := 0; tick < 30; tick++ {
		r.Step(tick, svc, p)
		for _, v := range fleet {
			if err := v.Step(tick); err != nil {
				t.Fatalf("tick %d: %v", tick, err)
			}
		}
	}
	if r.Status != request.StatusRequesting {
		t.Fatalf("expected requesting, got %s", r.Status)
	}
	if r.Retries != 10 {
		t.Fatalf("expected 10 retries over 30 ticks with timeout 2, got %d", r.Retries)
	}
	if st := svc.Stats(); st.Failures != 10 || st.Matches != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestMatch_SharedInsertionAcrossRequests(t *testing.T) {
	v := makeVehicle(1, types.Point{X: 0, Y: 0}, 1, true)
	svc := NewService([]*vehicle.Vehicle{v})
	p := request.Policy{TimeOut: 5}

	a := makeRequest(1, types.Point{X: 1, Y: 0}, types.Point{X: 10, Y: 0}, 30, 100)
	b := makeRequest(2, types.Point{X: 2, Y: 0}, types.Point{X: 8, Y: 0}, 30, 100)
	a.Step(0, svc, p)
	b.Step(0, svc, p)

	if a.Status != request.StatusMatched || b.Status != request.StatusMatched {
		t.Fatalf("expected both matched, got %s and %s", a.Status, b.Status)
	}
	if len(v.Route) != 4 {
		t.Fatalf("expected both requests on one route, got %v", v.Route)
	}
	if err := v.Route.Validate(); err != nil {
		t.Fatalf("invalid route: %v", err)
	}
	// b rides along a's straight line: nobody is delayed.
	if a.DelayTolerance != 20 {
		t.Fatalf("expected a's tolerance untouched at 20, got %v", a.DelayTolerance)
	}
}
