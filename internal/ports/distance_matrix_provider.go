package ports

import (
	"context"

	"bus-route-service/internal/domain"
)

// Contract for retrieving directional travel distances between coordinates.
type DistanceMatrixProvider interface {
	// Return one row per entry of sources. Row k holds the distance in meters
	// from locations[sources[k]] to every location, in locations order.
	DistanceRows(ctx context.Context, locations []domain.Coordinates, sources []int, profile string) ([][]float64, error)
}
