package handlers

import (
	"log"
	"net/http"

	"bus-route-service/internal/api/dto"
	"bus-route-service/internal/ports"
)

// RosterHandler exposes the stored students and buses read-only.
type RosterHandler struct {
	Stops    ports.StopSource
	Vehicles ports.VehicleSource
}

func (h *RosterHandler) ListStops(w http.ResponseWriter, r *http.Request) {
	stops, err := h.Stops.ListStops(r.Context())
	if err != nil {
		log.Printf("list stops failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListStopsResponse{Stops: make([]dto.StopResponse, 0, len(stops))}
	for _, s := range stops {
		out := dto.StopResponse{
			ID:      s.ID,
			Name:    s.Name,
			Address: s.Address,
			Demand:  s.Demand,
		}
		if s.Coordinates != nil {
			lat, lon := s.Coordinates.Lat, s.Coordinates.Lon
			out.Lat, out.Lon = &lat, &lon
		}
		res.Stops = append(res.Stops, out)
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *RosterHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Vehicles.ListVehicles(r.Context())
	if err != nil {
		log.Printf("list vehicles failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListVehiclesResponse{Vehicles: make([]dto.VehicleResponse, 0, len(vehicles))}
	for _, v := range vehicles {
		res.Vehicles = append(res.Vehicles, dto.VehicleResponse{ID: v.ID, Capacity: v.Capacity})
	}

	writeJSON(w, r, http.StatusOK, res)
}
