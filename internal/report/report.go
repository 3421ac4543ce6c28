package report

import (
	"fmt"

	"bus-route-service/internal/domain"
)

// Visit is one node of a vehicle's route. The depot appears at both ends.
type Visit struct {
	Node   int     `json:"node"`
	Depot  bool    `json:"depot"`
	StopID int     `json:"stop_id,omitempty"`
	Name   string  `json:"name,omitempty"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

type RouteReport struct {
	VehicleID      int     `json:"vehicle_id"`
	Capacity       int     `json:"capacity"`
	Load           int     `json:"load"`
	DistanceMeters int     `json:"distance_meters"`
	Visits         []Visit `json:"visits"`
}

type ExcludedReport struct {
	StopID  int    `json:"stop_id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Reason  string `json:"reason"`
}

// Report is the presentation form of a solution. Vehicles whose route is
// depot->depot are listed in IdleVehicles instead of Routes.
type Report struct {
	Routes              []RouteReport    `json:"routes"`
	IdleVehicles        []int            `json:"idle_vehicles"`
	TotalDistanceMeters int              `json:"total_distance_meters"`
	Excluded            []ExcludedReport `json:"excluded"`
}

// Build maps matrix indices back to stops and recomputes every route distance
// from directional arcs. stops[i] is matrix node i+1; vehicles[v] drives
// sol.Routes[v].
func Build(
	sol domain.Solution,
	dist *domain.DistanceMatrix,
	depot domain.Coordinates,
	stops []domain.Stop,
	vehicles []domain.Vehicle,
	excluded []domain.ExcludedStop,
) (*Report, error) {
	if dist == nil {
		return nil, fmt.Errorf("build report: distance matrix is nil")
	}
	if dist.Size() != len(stops)+1 {
		return nil, fmt.Errorf("build report: matrix has %d nodes for %d stops", dist.Size(), len(stops))
	}
	if len(sol.Routes) != len(vehicles) {
		return nil, fmt.Errorf("build report: %d routes for %d vehicles", len(sol.Routes), len(vehicles))
	}

	rep := &Report{
		Routes:       []RouteReport{},
		IdleVehicles: []int{},
		Excluded:     make([]ExcludedReport, 0, len(excluded)),
	}

	for v, r := range sol.Routes {
		veh := vehicles[v]
		if r.IsEmpty() {
			rep.IdleVehicles = append(rep.IdleVehicles, veh.ID)
			continue
		}

		rr := RouteReport{
			VehicleID:      veh.ID,
			Capacity:       veh.Capacity,
			DistanceMeters: dist.PathCost(r.Nodes),
			Visits:         make([]Visit, 0, len(r.Nodes)),
		}

		for _, node := range r.Nodes {
			if node < 0 || node >= dist.Size() {
				return nil, fmt.Errorf("build report: route %d has invalid node %d", v, node)
			}
			if node == domain.DepotIndex {
				rr.Visits = append(rr.Visits, Visit{Node: node, Depot: true, Lat: depot.Lat, Lon: depot.Lon})
				continue
			}

			s := stops[node-1]
			visit := Visit{Node: node, StopID: s.ID, Name: s.Name}
			if s.Coordinates != nil {
				visit.Lat, visit.Lon = s.Coordinates.Lat, s.Coordinates.Lon
			}
			rr.Visits = append(rr.Visits, visit)
			rr.Load += s.Demand
		}

		rep.Routes = append(rep.Routes, rr)
		rep.TotalDistanceMeters += rr.DistanceMeters
	}

	for _, e := range excluded {
		rep.Excluded = append(rep.Excluded, ExcludedReport{
			StopID:  e.Stop.ID,
			Name:    e.Stop.Name,
			Address: e.Stop.Address,
			Reason:  e.Reason,
		})
	}

	return rep, nil
}

// StopNames returns the names of the students picked up on a route, in order.
func (r RouteReport) StopNames() []string {
	names := make([]string, 0, len(r.Visits))
	for _, v := range r.Visits {
		if !v.Depot {
			names = append(names, v.Name)
		}
	}
	return names
}
