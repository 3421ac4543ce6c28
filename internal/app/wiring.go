// Package app assembles adapters from configuration. It is shared by the
// server and the command-line tools.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"bus-route-service/internal/adapters/cache"
	"bus-route-service/internal/adapters/distance"
	"bus-route-service/internal/adapters/repositories"
	"bus-route-service/internal/config"
	"bus-route-service/internal/domain"
	"bus-route-service/internal/platform/db"
	"bus-route-service/internal/ports"
	"bus-route-service/internal/services"
	"bus-route-service/internal/vrp"
)

// HaversineDetourFactor approximates road distance from straight-line
// distance when no routing provider is configured.
const HaversineDetourFactor = 1.3

// Providers holds the geocoder and distance provider chosen for a process.
// Geocoder is nil when no ORS key is configured.
type Providers struct {
	Geocoder ports.Geocoder
	Matrix   ports.DistanceMatrixProvider

	closers []func() error
}

func (p *Providers) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		errs = append(errs, p.closers[i]())
	}
	return errors.Join(errs...)
}

// NewProviders builds the ORS client (or the Haversine fallback) and layers
// the configured cache backend on top. local is the SQLite store and is only
// required by the sqlite backend.
func NewProviders(ctx context.Context, cfg config.Config, local *sql.DB) (*Providers, error) {
	p := &Providers{}

	distCache, geoCache, err := p.openCaches(ctx, cfg, local)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("new providers: %w", err)
	}

	if cfg.ORS.APIKey == "" {
		log.Printf("warn: ORS_API_KEY not set; using haversine distances (detour=%.1f) and no geocoding", HaversineDetourFactor)
		p.Matrix = distance.NewHaversineProvider(HaversineDetourFactor)
		return p, nil
	}

	client, err := distance.NewORSClient(distance.ORSOptions{
		APIKey:            cfg.ORS.APIKey,
		BaseURL:           cfg.ORS.BaseURL,
		Timeout:           cfg.ORS.Timeout,
		RequestsPerMinute: cfg.ORS.RequestsPerMinute,
		Country:           cfg.ORS.Country,
	})
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("new providers: %w", err)
	}

	p.Geocoder = client
	p.Matrix = client
	if geoCache != nil {
		p.Geocoder = distance.NewCachedGeocoder(client, geoCache)
	}
	if distCache != nil {
		p.Matrix = distance.NewCachedMatrixProvider(client, distCache)
	}
	return p, nil
}

func (p *Providers) openCaches(ctx context.Context, cfg config.Config, local *sql.DB) (ports.DistanceCache, ports.GeocodeCache, error) {
	switch cfg.Cache.Backend {
	case config.CacheNone, "":
		return nil, nil, nil

	case config.CacheSqlite:
		if local == nil {
			return nil, nil, errors.New("sqlite cache requires the local database")
		}
		return cache.NewSqliteDistanceCache(local), cache.NewSqliteGeocodeCache(local), nil

	case config.CachePostgres:
		pg, err := db.Open(cfg.Cache.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		p.closers = append(p.closers, pg.Close)
		if err := repositories.InitPostgresCacheSchema(ctx, pg); err != nil {
			return nil, nil, err
		}
		return cache.NewSQLDistanceCache(pg), cache.NewSQLGeocodeCache(pg), nil

	case config.CacheRedis:
		opts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		p.closers = append(p.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return cache.NewRedisDistanceCache(rdb, cfg.Cache.RedisTTL), cache.NewRedisGeocodeCache(rdb, cfg.Cache.RedisTTL), nil

	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// SolverOptions maps configuration onto engine options.
func SolverOptions(cfg config.Config) vrp.Options {
	return vrp.Options{
		TimeBudget:    cfg.Solver.TimeBudget,
		PenaltyFactor: cfg.Solver.PenaltyFactor,
		MaxEscapes:    cfg.Solver.MaxEscapes,
	}
}

func GeocodeOptions(cfg config.Config) services.GeocodeOptions {
	return services.GeocodeOptions{
		Policy:      services.GeocodePolicy(cfg.Geocode.Policy),
		Retries:     cfg.Geocode.Retries,
		Parallelism: cfg.Geocode.Parallelism,
	}
}

func MatrixOptions(cfg config.Config) services.MatrixOptions {
	return services.MatrixOptions{
		RowsPerBatch: cfg.Matrix.RowsPerBatch,
		Parallelism:  cfg.Matrix.Parallelism,
	}
}

// Depot returns the configured depot coordinates, or nil when the depot is
// given only as an address.
func Depot(cfg config.Config) *domain.Coordinates {
	if !cfg.HasDepotCoordinates() {
		return nil
	}
	return &domain.Coordinates{Lat: *cfg.Depot.Lat, Lon: *cfg.Depot.Lon}
}

// PlanRequest fills a pipeline request with the configured defaults.
func PlanRequest(cfg config.Config, stops []domain.Stop, vehicles []domain.Vehicle) services.PlanRoutesRequest {
	return services.PlanRoutesRequest{
		Depot:        Depot(cfg),
		DepotAddress: cfg.Depot.Address,
		Stops:        stops,
		Vehicles:     vehicles,
		Profile:      cfg.Profile,
		Solver:       SolverOptions(cfg),
		Geocode:      GeocodeOptions(cfg),
		Matrix:       MatrixOptions(cfg),
	}
}
