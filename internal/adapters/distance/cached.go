package distance

import (
	"context"
	"fmt"
	"log"

	"bus-route-service/internal/domain"
	"bus-route-service/internal/platform/obs"
	"bus-route-service/internal/ports"
)

// CachedMatrixProvider serves complete rows from a DistanceCache and asks
// the wrapped provider only for rows with at least one missing entry.
type CachedMatrixProvider struct {
	next  ports.DistanceMatrixProvider
	cache ports.DistanceCache
}

func NewCachedMatrixProvider(next ports.DistanceMatrixProvider, cache ports.DistanceCache) *CachedMatrixProvider {
	return &CachedMatrixProvider{next: next, cache: cache}
}

func (c *CachedMatrixProvider) DistanceRows(
	ctx context.Context,
	locations []domain.Coordinates,
	sources []int,
	profile string,
) ([][]float64, error) {
	rows := make([][]float64, len(sources))
	misses := make([]int, 0, len(sources))

	for k, src := range sources {
		if src < 0 || src >= len(locations) {
			return nil, fmt.Errorf("cached distance rows: source index %d out of range [0,%d)", src, len(locations))
		}

		hits, err := c.cache.GetMany(ctx, profile, locations[src], locations)
		if err != nil {
			return nil, fmt.Errorf("cached distance rows: get distance cache: %w", err)
		}

		row, ok := assembleRow(hits, locations)
		if !ok {
			misses = append(misses, k)
			obs.CacheLookups.WithLabelValues("distance", "miss").Inc()
			continue
		}
		rows[k] = row
		obs.CacheLookups.WithLabelValues("distance", "hit").Inc()
	}

	if len(misses) == 0 {
		return rows, nil
	}

	missSources := make([]int, 0, len(misses))
	for _, k := range misses {
		missSources = append(missSources, sources[k])
	}

	fetched, err := c.next.DistanceRows(ctx, locations, missSources, profile)
	if err != nil {
		return nil, err
	}
	if len(fetched) != len(missSources) {
		return nil, fmt.Errorf("cached distance rows: provider returned %d rows for %d sources", len(fetched), len(missSources))
	}

	for i, k := range misses {
		rows[k] = fetched[i]

		if len(fetched[i]) != len(locations) {
			continue
		}
		meters := make(map[string]float64, len(locations))
		for j, loc := range locations {
			meters[loc.Key()] = fetched[i][j]
		}
		if err := c.cache.PutMany(ctx, profile, locations[sources[k]], meters); err != nil {
			log.Printf("distance cache write failed: %v", err)
		}
	}

	return rows, nil
}

func assembleRow(hits map[string]float64, locations []domain.Coordinates) ([]float64, bool) {
	row := make([]float64, len(locations))
	for j, loc := range locations {
		d, ok := hits[loc.Key()]
		if !ok {
			return nil, false
		}
		row[j] = d
	}
	return row, true
}

// CachedGeocoder consults a GeocodeCache before the wrapped Geocoder and
// stores fresh results. Failed lookups are not cached.
type CachedGeocoder struct {
	next  ports.Geocoder
	cache ports.GeocodeCache
}

func NewCachedGeocoder(next ports.Geocoder, cache ports.GeocodeCache) *CachedGeocoder {
	return &CachedGeocoder{next: next, cache: cache}
}

func (c *CachedGeocoder) Resolve(ctx context.Context, address string) (domain.Coordinates, error) {
	norm := NormalizeAddress(address)

	hits, err := c.cache.GetMany(ctx, []string{norm})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("cached geocode: get geocode cache: %w", err)
	}
	if coords, ok := hits[norm]; ok {
		obs.CacheLookups.WithLabelValues("geocode", "hit").Inc()
		return coords, nil
	}
	obs.CacheLookups.WithLabelValues("geocode", "miss").Inc()

	coords, err := c.next.Resolve(ctx, norm)
	if err != nil {
		return domain.Coordinates{}, err
	}

	if err := c.cache.PutMany(ctx, map[string]domain.Coordinates{norm: coords}); err != nil {
		log.Printf("geocode cache write failed: %v", err)
	}

	return coords, nil
}
