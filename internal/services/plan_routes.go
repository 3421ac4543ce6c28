package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"bus-route-service/internal/domain"
	"bus-route-service/internal/platform/obs"
	"bus-route-service/internal/ports"
	"bus-route-service/internal/report"
	"bus-route-service/internal/vrp"
)

type PlanRoutesRequest struct {
	// Depot is used when set; otherwise DepotAddress is geocoded.
	Depot        *domain.Coordinates
	DepotAddress string
	Stops        []domain.Stop
	Vehicles     []domain.Vehicle
	Profile      string
	Solver       vrp.Options
	Geocode      GeocodeOptions
	Matrix       MatrixOptions
}

type PlanRoutesResult struct {
	Depot    domain.Coordinates
	Stops    []domain.Stop
	Excluded []domain.ExcludedStop
	Matrix   *domain.DistanceMatrix
	Result   *vrp.Result
	Report   *report.Report
}

// PlanRoutes runs the whole pipeline: resolve the depot and stops, build the
// distance matrix, optimize, and report.
func PlanRoutes(
	ctx context.Context,
	req PlanRoutesRequest,
	geocoder ports.Geocoder,
	provider ports.DistanceMatrixProvider,
) (_ *PlanRoutesResult, err error) {
	defer obs.Time(ctx, "services.PlanRoutes")(&err)

	for _, v := range req.Vehicles {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("plan routes: %w: %v", domain.ErrInvalidModel, err)
		}
	}
	if req.Profile == "" {
		return nil, fmt.Errorf("plan routes: %w: profile is required", domain.ErrInvalidModel)
	}

	depot, err := resolveDepot(ctx, req, geocoder)
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}

	stops, excluded, err := ResolveStops(ctx, geocoder, req.Stops, req.Geocode)
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}
	if len(excluded) > 0 {
		log.Printf("warn: req_id=%s excluded=%d of %d stops", obs.RequestID(ctx), len(excluded), len(req.Stops))
	}

	locations := make([]domain.Coordinates, 0, len(stops)+1)
	locations = append(locations, depot)
	demands := make([]int, 0, len(stops)+1)
	demands = append(demands, 0)
	for _, s := range stops {
		locations = append(locations, *s.Coordinates)
		demands = append(demands, s.Demand)
	}

	// Capacity is checked before paying for the matrix.
	total := 0
	for _, d := range demands {
		total += d
	}
	capacity := 0
	for _, c := range domain.Capacities(req.Vehicles) {
		capacity += c
	}
	if total > capacity {
		return nil, fmt.Errorf(
			"plan routes: %w: total demand %d exceeds total capacity %d across %d vehicles",
			domain.ErrCapacityInfeasible, total, capacity, len(req.Vehicles),
		)
	}

	matrix, err := BuildDistanceMatrix(ctx, provider, locations, req.Profile, req.Matrix)
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}

	model, err := vrp.NewModel(matrix, demands, domain.Capacities(req.Vehicles))
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}

	res, err := vrp.Solve(ctx, model, req.Solver)
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}
	obs.SolverRuns.WithLabelValues(string(res.Termination)).Inc()
	obs.SolverDistance.Observe(float64(res.Solution.TotalDistance))

	rep, err := report.Build(res.Solution, matrix, depot, stops, req.Vehicles, excluded)
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}

	return &PlanRoutesResult{
		Depot:    depot,
		Stops:    stops,
		Excluded: excluded,
		Matrix:   matrix,
		Result:   res,
		Report:   rep,
	}, nil
}

func resolveDepot(ctx context.Context, req PlanRoutesRequest, geocoder ports.Geocoder) (domain.Coordinates, error) {
	if req.Depot != nil {
		if !req.Depot.Valid() {
			return domain.Coordinates{}, fmt.Errorf("%w: depot coordinates out of range: %s", domain.ErrInvalidModel, req.Depot)
		}
		return *req.Depot, nil
	}

	addr := strings.TrimSpace(req.DepotAddress)
	if addr == "" {
		return domain.Coordinates{}, fmt.Errorf("%w: depot coordinates or address required", domain.ErrInvalidModel)
	}
	if geocoder == nil {
		return domain.Coordinates{}, fmt.Errorf("%w: depot %q: no geocoder configured", domain.ErrGeocodeFailure, addr)
	}

	c, err := geocoder.Resolve(ctx, addr)
	if err != nil {
		if errors.Is(err, domain.ErrGeocodeFailure) {
			return domain.Coordinates{}, fmt.Errorf("depot: %w", err)
		}
		return domain.Coordinates{}, fmt.Errorf("depot: %w: %w", domain.ErrGeocodeFailure, err)
	}
	return c, nil
}
