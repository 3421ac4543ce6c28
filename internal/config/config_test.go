package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	t.Setenv("TIME_BUDGET", "3s")
	t.Setenv("ORS_API_KEY", "secret")
	t.Setenv("CACHE_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	path := writeYAML(t, `
depot:
  lat: 30.3565
  lon: 76.3647
profile: driving-hgv
solver:
  time_budget: 20s
  max_escapes: 50
geocode:
  policy: strict
matrix:
  rows_per_batch: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.True(t, cfg.HasDepotCoordinates())
	assert.Equal(t, 30.3565, *cfg.Depot.Lat)
	assert.Equal(t, "driving-hgv", cfg.Profile)
	assert.Equal(t, 3*time.Second, cfg.Solver.TimeBudget, "env overrides the file")
	assert.Equal(t, 50, cfg.Solver.MaxEscapes)
	assert.Equal(t, 0.1, cfg.Solver.PenaltyFactor, "defaults survive partial files")
	assert.Equal(t, GeocodeStrict, cfg.Geocode.Policy)
	assert.Equal(t, 10, cfg.Matrix.RowsPerBatch)
	assert.Equal(t, 4, cfg.Matrix.Parallelism)
	assert.Equal(t, "secret", cfg.ORS.APIKey)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("DEPOT_ADDRESS", "Thapar School, Patiala")
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.HasDepotCoordinates())
	assert.Equal(t, "Thapar School, Patiala", cfg.Depot.Address)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.Solver.TimeBudget)
}

func TestLoad_RejectsMalformedEnv(t *testing.T) {
	t.Setenv("DEPOT_ADDRESS", "x")
	t.Setenv("TIME_BUDGET", "soon")

	_, err := Load("")
	require.ErrorContains(t, err, "TIME_BUDGET")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	lat, lon := 30.0, 76.0
	base := Default()
	base.Depot.Lat, base.Depot.Lon = &lat, &lon
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"no depot":         func(c *Config) { c.Depot = Depot{} },
		"half depot":       func(c *Config) { c.Depot.Lon = nil },
		"zero budget":      func(c *Config) { c.Solver.TimeBudget = 0 },
		"negative penalty": func(c *Config) { c.Solver.PenaltyFactor = -1 },
		"unknown policy":   func(c *Config) { c.Geocode.Policy = "ignore" },
		"unknown backend":  func(c *Config) { c.Cache.Backend = "memcached" },
		"postgres w/o url": func(c *Config) { c.Cache.Backend = CachePostgres },
		"redis w/o url":    func(c *Config) { c.Cache.Backend = CacheRedis },
		"empty profile":    func(c *Config) { c.Profile = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}

func TestGet(t *testing.T) {
	t.Setenv("BUS_ROUTE_TEST_KEY", "set")
	assert.Equal(t, "set", Get("BUS_ROUTE_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", Get("BUS_ROUTE_TEST_UNSET", "fallback"))
}
