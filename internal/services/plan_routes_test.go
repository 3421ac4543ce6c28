package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bus-route-service/internal/adapters/distance"
	"bus-route-service/internal/domain"
	"bus-route-service/internal/vrp"
)

func testSolver() vrp.Options {
	return vrp.Options{
		TimeBudget:    2 * time.Second,
		PenaltyFactor: vrp.DefaultPenaltyFactor,
		MaxEscapes:    50,
	}
}

func threeStops() []domain.Stop {
	return []domain.Stop{
		domain.NewStop(101, "Ava", coords(47.61, -122.33)),
		domain.NewStop(102, "Ben", coords(47.62, -122.32)),
		domain.NewStop(103, "Cleo", coords(47.63, -122.31)),
	}
}

func TestPlanRoutesSingleBus(t *testing.T) {
	provider := distance.NewMockMatrixProvider([][]float64{
		{0, 10, 15, 20},
		{5, 0, 9, 10},
		{6, 13, 0, 12},
		{8, 8, 9, 0},
	})

	res, err := PlanRoutes(context.Background(), PlanRoutesRequest{
		Depot:    coords(47.60, -122.34),
		Stops:    threeStops(),
		Vehicles: []domain.Vehicle{domain.NewVehicle(1, 3)},
		Profile:  "driving-car",
		Solver:   testSolver(),
	}, nil, provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Report.TotalDistanceMeters != 35 {
		t.Fatalf("expected total distance 35, got %d", res.Report.TotalDistanceMeters)
	}
	if len(res.Report.Routes) != 1 {
		t.Fatalf("expected one route, got %d", len(res.Report.Routes))
	}

	names := res.Report.Routes[0].StopNames()
	want := []string{"Ava", "Cleo", "Ben"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
	if res.Report.Routes[0].Load != 3 {
		t.Fatalf("expected load 3, got %d", res.Report.Routes[0].Load)
	}
}

func TestPlanRoutesCapacityInfeasibleSkipsMatrix(t *testing.T) {
	provider := distance.NewMockMatrixProvider(nil)

	stops := make([]domain.Stop, 5)
	for i := range stops {
		stops[i] = domain.NewStop(i+1, "s", coords(47.6, -122.3+float64(i)*0.01))
	}

	res, err := PlanRoutes(context.Background(), PlanRoutesRequest{
		Depot:    coords(47.6, -122.4),
		Stops:    stops,
		Vehicles: []domain.Vehicle{domain.NewVehicle(1, 3)},
		Profile:  "driving-car",
		Solver:   testSolver(),
	}, nil, provider)
	if !errors.Is(err, domain.ErrCapacityInfeasible) {
		t.Fatalf("expected ErrCapacityInfeasible, got %v", err)
	}
	if res != nil {
		t.Fatalf("expected no result")
	}
	if len(provider.Batches()) != 0 {
		t.Fatalf("expected no matrix requests, got %v", provider.Batches())
	}
}

func TestPlanRoutesReportsExcludedStops(t *testing.T) {
	stops := threeStops()
	stops = append(stops, domain.NewStop(104, "Dev", nil))

	res, err := PlanRoutes(context.Background(), PlanRoutesRequest{
		Depot:    coords(47.60, -122.34),
		Stops:    stops,
		Vehicles: []domain.Vehicle{domain.NewVehicle(1, 2), domain.NewVehicle(2, 2)},
		Profile:  "driving-car",
		Solver:   testSolver(),
	}, nil, distance.NewHaversineProvider(1.3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Excluded) != 1 || res.Excluded[0].Stop.ID != 104 {
		t.Fatalf("expected stop 104 excluded, got %+v", res.Excluded)
	}
	if len(res.Report.Excluded) != 1 || res.Report.Excluded[0].StopID != 104 {
		t.Fatalf("expected report to list stop 104, got %+v", res.Report.Excluded)
	}

	seen := map[int]bool{}
	for _, r := range res.Report.Routes {
		if r.Load > r.Capacity {
			t.Fatalf("bus %d overloaded: %d > %d", r.VehicleID, r.Load, r.Capacity)
		}
		for _, v := range r.Visits {
			if !v.Depot {
				seen[v.StopID] = true
			}
		}
	}
	for _, id := range []int{101, 102, 103} {
		if !seen[id] {
			t.Fatalf("stop %d not visited", id)
		}
	}
}

func TestPlanRoutesGeocodesDepot(t *testing.T) {
	geocoder := distance.NewMockGeocoder(map[string]domain.Coordinates{
		"1 School Rd": {Lat: 47.60, Lon: -122.34},
	})

	res, err := PlanRoutes(context.Background(), PlanRoutesRequest{
		DepotAddress: "1 School Rd",
		Stops:        threeStops(),
		Vehicles:     []domain.Vehicle{domain.NewVehicle(1, 5)},
		Profile:      "driving-car",
		Solver:       testSolver(),
	}, geocoder, distance.NewHaversineProvider(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Depot.Lat != 47.60 {
		t.Fatalf("unexpected depot %s", res.Depot)
	}
}

func TestPlanRoutesDepotGeocodeFailure(t *testing.T) {
	_, err := PlanRoutes(context.Background(), PlanRoutesRequest{
		DepotAddress: "unknown",
		Stops:        threeStops(),
		Vehicles:     []domain.Vehicle{domain.NewVehicle(1, 5)},
		Profile:      "driving-car",
		Solver:       testSolver(),
	}, distance.NewMockGeocoder(nil), distance.NewHaversineProvider(1))
	if !errors.Is(err, domain.ErrGeocodeFailure) {
		t.Fatalf("expected ErrGeocodeFailure, got %v", err)
	}
}

func TestPlanRoutesMatrixFailure(t *testing.T) {
	provider := distance.NewMockMatrixProvider(nil)
	provider.Err = errors.New("quota exceeded")

	_, err := PlanRoutes(context.Background(), PlanRoutesRequest{
		Depot:    coords(47.60, -122.34),
		Stops:    threeStops(),
		Vehicles: []domain.Vehicle{domain.NewVehicle(1, 5)},
		Profile:  "driving-car",
		Solver:   testSolver(),
	}, nil, provider)
	if !errors.Is(err, domain.ErrMatrixFailure) {
		t.Fatalf("expected ErrMatrixFailure, got %v", err)
	}
}

func TestPlanRoutesRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		req  PlanRoutesRequest
	}{
		{
			name: "negative capacity",
			req: PlanRoutesRequest{
				Depot:    coords(47.6, -122.3),
				Vehicles: []domain.Vehicle{domain.NewVehicle(1, -1)},
				Profile:  "driving-car",
				Solver:   testSolver(),
			},
		},
		{
			name: "no depot",
			req: PlanRoutesRequest{
				Vehicles: []domain.Vehicle{domain.NewVehicle(1, 1)},
				Profile:  "driving-car",
				Solver:   testSolver(),
			},
		},
		{
			name: "no profile",
			req: PlanRoutesRequest{
				Depot:    coords(47.6, -122.3),
				Vehicles: []domain.Vehicle{domain.NewVehicle(1, 1)},
				Solver:   testSolver(),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PlanRoutes(context.Background(), tc.req, nil, distance.NewHaversineProvider(1))
			if !errors.Is(err, domain.ErrInvalidModel) {
				t.Fatalf("expected ErrInvalidModel, got %v", err)
			}
		})
	}
}
