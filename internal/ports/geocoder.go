package ports

import (
	"context"

	"bus-route-service/internal/domain"
)

// Geocoder resolves a free-form address to coordinates. An address with no
// match yields an error wrapping domain.ErrNotFound.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (domain.Coordinates, error)
}
