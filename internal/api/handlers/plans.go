package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"bus-route-service/internal/api/dto"
	"bus-route-service/internal/domain"
	"bus-route-service/internal/ports"
	"bus-route-service/internal/services"
	"bus-route-service/internal/vrp"
)

// PlanDefaults are applied to every request that does not override them.
type PlanDefaults struct {
	Depot        *domain.Coordinates
	DepotAddress string
	Profile      string
	Solver       vrp.Options
	Geocode      services.GeocodeOptions
	Matrix       services.MatrixOptions
}

// maxTimeBudget caps per-request time budget overrides.
const maxTimeBudget = 2 * time.Minute

type PlanHandler struct {
	Stops    ports.StopSource
	Vehicles ports.VehicleSource
	Geocoder ports.Geocoder
	Provider ports.DistanceMatrixProvider
	Defaults PlanDefaults
}

// Plan runs the routing pipeline for the stored roster or for the stops and
// buses supplied in the request body.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	svcReq, err := h.buildRequest(r, req)
	if err != nil {
		writePlanError(w, r, err)
		return
	}

	res, err := services.PlanRoutes(r.Context(), svcReq, h.Geocoder, h.Provider)
	if err != nil {
		writePlanError(w, r, err)
		return
	}

	stats := res.Result.Stats
	writeJSON(w, r, http.StatusOK, dto.PlanResponse{
		Report: res.Report,
		Solver: dto.SolverStats{
			Termination:     string(res.Result.Termination),
			InitialDistance: stats.InitialDistance,
			Passes:          stats.Passes,
			Escapes:         stats.Escapes,
			Improvements:    stats.Improvements,
			DurationMillis:  stats.Duration.Milliseconds(),
		},
	})
}

// Client-side failures echo the error; anything else is logged and hidden.
func writePlanError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("plan routes failed: %v", err)
		writeError(w, r, status, "internal server error")
		return
	}
	writeError(w, r, status, err.Error())
}

func (h *PlanHandler) buildRequest(r *http.Request, req dto.PlanRequest) (services.PlanRoutesRequest, error) {
	out := services.PlanRoutesRequest{
		Depot:        h.Defaults.Depot,
		DepotAddress: h.Defaults.DepotAddress,
		Profile:      h.Defaults.Profile,
		Solver:       h.Defaults.Solver,
		Geocode:      h.Defaults.Geocode,
		Matrix:       h.Defaults.Matrix,
	}

	if req.Depot != nil {
		switch {
		case req.Depot.Lat != nil && req.Depot.Lon != nil:
			out.Depot = &domain.Coordinates{Lat: *req.Depot.Lat, Lon: *req.Depot.Lon}
		case req.Depot.Lat != nil || req.Depot.Lon != nil:
			return out, fmt.Errorf("%w: depot needs both lat and lon", domain.ErrInvalidModel)
		case strings.TrimSpace(req.Depot.Address) != "":
			out.Depot = nil
			out.DepotAddress = req.Depot.Address
		}
	}

	if p := strings.TrimSpace(req.Profile); p != "" {
		out.Profile = p
	}

	if req.TimeBudget != "" {
		d, err := time.ParseDuration(req.TimeBudget)
		if err != nil || d <= 0 || d > maxTimeBudget {
			return out, fmt.Errorf("%w: time_budget must be a duration in (0, %s]", domain.ErrInvalidModel, maxTimeBudget)
		}
		out.Solver.TimeBudget = d
	}

	if req.Stops != nil {
		stops, err := stopsFromRequest(req.Stops)
		if err != nil {
			return out, err
		}
		out.Stops = stops
	} else {
		stops, err := h.Stops.ListStops(r.Context())
		if err != nil {
			return out, fmt.Errorf("list stops: %w", err)
		}
		out.Stops = stops
	}

	if req.Vehicles != nil {
		out.Vehicles = make([]domain.Vehicle, 0, len(req.Vehicles))
		for _, v := range req.Vehicles {
			out.Vehicles = append(out.Vehicles, domain.NewVehicle(v.ID, v.Capacity))
		}
	} else {
		vehicles, err := h.Vehicles.ListVehicles(r.Context())
		if err != nil {
			return out, fmt.Errorf("list vehicles: %w", err)
		}
		out.Vehicles = vehicles
	}

	return out, nil
}

func stopsFromRequest(in []dto.StopRequest) ([]domain.Stop, error) {
	out := make([]domain.Stop, 0, len(in))
	seen := make(map[int]bool, len(in))
	for _, s := range in {
		if seen[s.ID] {
			return nil, fmt.Errorf("%w: duplicate stop id %d", domain.ErrInvalidModel, s.ID)
		}
		seen[s.ID] = true

		stop := domain.NewStop(s.ID, s.Name, nil)
		stop.Address = s.Address
		switch {
		case s.Lat != nil && s.Lon != nil:
			stop.Coordinates = &domain.Coordinates{Lat: *s.Lat, Lon: *s.Lon}
		case s.Lat != nil || s.Lon != nil:
			return nil, fmt.Errorf("%w: stop %d needs both lat and lon", domain.ErrInvalidModel, s.ID)
		}
		if s.Demand < 0 {
			return nil, fmt.Errorf("%w: stop %d has negative demand", domain.ErrInvalidModel, s.ID)
		}
		if s.Demand > 0 {
			stop.Demand = s.Demand
		}
		out = append(out, stop)
	}
	return out, nil
}
