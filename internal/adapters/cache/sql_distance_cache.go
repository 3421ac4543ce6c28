package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"bus-route-service/internal/domain"
	"bus-route-service/internal/platform/obs"
)

// SQLDistanceCache is a Postgres-backed cache for directional distances,
// shared by every service instance.
type SQLDistanceCache struct {
	DB *sql.DB
}

func NewSQLDistanceCache(db *sql.DB) *SQLDistanceCache {
	return &SQLDistanceCache{DB: db}
}

// Fetch cached distances for one origin and multiple destinations.
func (s *SQLDistanceCache) GetMany(
	ctx context.Context,
	profile string,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) (_ map[string]float64, err error) {
	defer obs.Time(ctx, "distance.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("distance cache: db is nil")
	}

	if profile == "" {
		return nil, errors.New("get distance cache: profile must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]float64{}, nil
	}

	q := `
	SELECT destination, distance_meters
    FROM distance_cache
    WHERE profile = $1
        AND origin = $2
        AND destination = ANY($3::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, profile, origin.Key(), uniq)
	if err != nil {
		return nil, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64, len(uniq))
	for rows.Next() {
		var dest string
		var meters float64
		if err := rows.Scan(&dest, &meters); err != nil {
			return nil, fmt.Errorf("get distance cache: scan rows: %w", err)
		}
		out[dest] = meters
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get distance cache: row iteration: %w", err)
	}

	return out, nil
}

// PutMany upserts one origin's distances in one statement.
func (s *SQLDistanceCache) PutMany(
	ctx context.Context,
	profile string,
	origin domain.Coordinates,
	meters map[string]float64,
) (err error) {
	defer obs.Time(ctx, "distance.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("distance cache: db is nil")
	}
	if profile == "" {
		return errors.New("insert distance cache: profile must not be empty")
	}
	if len(meters) == 0 {
		return nil
	}

	dests := make([]string, 0, len(meters))
	values := make([]float64, 0, len(meters))
	for dest, m := range meters {
		if strings.TrimSpace(dest) == "" {
			return errors.New("insert distance cache: empty destination key")
		}
		if m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return fmt.Errorf("insert distance cache dest=%q: invalid distance %v", dest, m)
		}
		dests = append(dests, dest)
		values = append(values, m)
	}

	q := `
	INSERT INTO distance_cache (profile, origin, destination, distance_meters)
	SELECT $1, $2, d.destination, d.meters
	FROM unnest($3::text[], $4::float8[]) AS d(destination, meters)
	ON CONFLICT (profile, origin, destination) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		created_at = now();
	`
	if _, err := s.DB.ExecContext(ctx, q, profile, origin.Key(), dests, values); err != nil {
		return fmt.Errorf("insert distance cache origin=%s: upsert %d rows: %w", origin.Key(), len(dests), err)
	}
	return nil
}
