package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus-route-service/internal/adapters/distance"
	"bus-route-service/internal/adapters/repositories"
	"bus-route-service/internal/config"
	"bus-route-service/internal/domain"
	"bus-route-service/internal/platform/db"
	"bus-route-service/internal/services"
)

func testConfig() config.Config {
	cfg := config.Default()
	lat, lon := 47.6, -122.3
	cfg.Depot.Lat, cfg.Depot.Lon = &lat, &lon
	return cfg
}

func TestNewProviders_HaversineFallback(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Backend = config.CacheNone

	p, err := NewProviders(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer p.Close()

	assert.Nil(t, p.Geocoder)
	assert.IsType(t, &distance.HaversineProvider{}, p.Matrix)
}

func TestNewProviders_SqliteCacheWrapsORS(t *testing.T) {
	local, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer local.Close()
	require.NoError(t, repositories.InitSchema(local))

	cfg := testConfig()
	cfg.ORS.APIKey = "test-key"

	p, err := NewProviders(context.Background(), cfg, local)
	require.NoError(t, err)
	defer p.Close()

	assert.IsType(t, &distance.CachedGeocoder{}, p.Geocoder)
	assert.IsType(t, &distance.CachedMatrixProvider{}, p.Matrix)
}

func TestNewProviders_SqliteCacheNeedsLocalDB(t *testing.T) {
	cfg := testConfig()
	cfg.ORS.APIKey = "test-key"

	_, err := NewProviders(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestNewProviders_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.ORS.APIKey = "test-key"
	cfg.Cache.Backend = config.CacheRedis
	cfg.Cache.RedisURL = "redis://" + mr.Addr()

	p, err := NewProviders(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.IsType(t, &distance.CachedMatrixProvider{}, p.Matrix)
	require.NoError(t, p.Close())
}

func TestNewProviders_BadRedisURL(t *testing.T) {
	cfg := testConfig()
	cfg.ORS.APIKey = "test-key"
	cfg.Cache.Backend = config.CacheRedis
	cfg.Cache.RedisURL = "not a url"

	_, err := NewProviders(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestPlanRequest(t *testing.T) {
	cfg := testConfig()
	cfg.Solver.TimeBudget = 3 * time.Second
	cfg.Geocode.Policy = config.GeocodeStrict

	stops := []domain.Stop{domain.NewStop(1, "Ava", nil)}
	vehicles := []domain.Vehicle{domain.NewVehicle(1, 4)}

	req := PlanRequest(cfg, stops, vehicles)

	require.NotNil(t, req.Depot)
	assert.Equal(t, 47.6, req.Depot.Lat)
	assert.Equal(t, 3*time.Second, req.Solver.TimeBudget)
	assert.Equal(t, services.GeocodeStrict, req.Geocode.Policy)
	assert.Equal(t, "driving-car", req.Profile)
	assert.Equal(t, stops, req.Stops)
	assert.Equal(t, 25, req.Matrix.RowsPerBatch)
}

func TestDepotAddressOnly(t *testing.T) {
	cfg := config.Default()
	cfg.Depot.Address = "1 School Rd"

	assert.Nil(t, Depot(cfg))
	assert.Equal(t, "1 School Rd", PlanRequest(cfg, nil, nil).DepotAddress)
}
