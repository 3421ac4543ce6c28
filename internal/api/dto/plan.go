package dto

import "bus-route-service/internal/report"

// PlanRequest overrides the configured roster and defaults. Every field is
// optional; an empty body plans the stored roster.
type PlanRequest struct {
	Depot      *DepotRequest    `json:"depot"`
	Profile    string           `json:"profile"`
	TimeBudget string           `json:"time_budget"`
	Stops      []StopRequest    `json:"stops"`
	Vehicles   []VehicleRequest `json:"vehicles"`
}

type DepotRequest struct {
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Address string   `json:"address"`
}

type StopRequest struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Demand  int      `json:"demand"`
}

type VehicleRequest struct {
	ID       int `json:"id"`
	Capacity int `json:"capacity"`
}

type SolverStats struct {
	Termination     string `json:"termination"`
	InitialDistance int    `json:"initial_distance_meters"`
	Passes          int    `json:"passes"`
	Escapes         int    `json:"escapes"`
	Improvements    int    `json:"improvements"`
	DurationMillis  int64  `json:"duration_ms"`
}

type PlanResponse struct {
	*report.Report
	Solver SolverStats `json:"solver"`
}
