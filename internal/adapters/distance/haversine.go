package distance

import (
	"context"
	"fmt"
	"math"

	"bus-route-service/internal/domain"
)

const earthRadiusMeters = 6371000.0

// HaversineProvider estimates road distance as great-circle distance scaled
// by DetourFactor. It needs no network access and is symmetric.
type HaversineProvider struct {
	DetourFactor float64
}

func NewHaversineProvider(detourFactor float64) *HaversineProvider {
	if detourFactor <= 0 {
		detourFactor = 1
	}
	return &HaversineProvider{DetourFactor: detourFactor}
}

func (h *HaversineProvider) DistanceRows(
	ctx context.Context,
	locations []domain.Coordinates,
	sources []int,
	profile string,
) ([][]float64, error) {
	out := make([][]float64, len(sources))
	for k, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if src < 0 || src >= len(locations) {
			return nil, fmt.Errorf("haversine rows: source index %d out of range [0,%d)", src, len(locations))
		}

		row := make([]float64, len(locations))
		for j, dst := range locations {
			row[j] = haversineMeters(locations[src], dst) * h.DetourFactor
		}
		out[k] = row
	}
	return out, nil
}

func haversineMeters(a, b domain.Coordinates) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}
