package ports

import (
	"context"

	"bus-route-service/internal/domain"
)

// GeocodeCache persists address -> coordinates lookups. Addresses are
// expected to be normalized by the caller.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, entries map[string]domain.Coordinates) error
}

// DistanceCache persists directional distances from one origin. Results are
// keyed by destination Coordinates.Key() and scoped by travel profile.
type DistanceCache interface {
	GetMany(ctx context.Context, profile string, origin domain.Coordinates, destinations []domain.Coordinates) (map[string]float64, error)
	PutMany(ctx context.Context, profile string, origin domain.Coordinates, meters map[string]float64) error
}
