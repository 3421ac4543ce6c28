package ports

import (
	"context"

	"bus-route-service/internal/domain"
)

// Port: a boundary for retrieving the students to pick up.
type StopSource interface {
	ListStops(ctx context.Context) ([]domain.Stop, error)
}

// Port: a boundary for retrieving the bus fleet.
type VehicleSource interface {
	ListVehicles(ctx context.Context) ([]domain.Vehicle, error)
}
