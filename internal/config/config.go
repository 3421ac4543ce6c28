package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	GeocodeDrop   = "drop"
	GeocodeRetry  = "retry"
	GeocodeStrict = "strict"

	CacheNone     = "none"
	CacheSqlite   = "sqlite"
	CachePostgres = "postgres"
	CacheRedis    = "redis"
)

type Depot struct {
	Lat     *float64 `yaml:"lat"`
	Lon     *float64 `yaml:"lon"`
	Address string   `yaml:"address"`
}

type Solver struct {
	TimeBudget    time.Duration `yaml:"time_budget"`
	PenaltyFactor float64       `yaml:"penalty_factor"`
	MaxEscapes    int           `yaml:"max_escapes"`
}

type Geocode struct {
	Policy      string `yaml:"policy"`
	Retries     int    `yaml:"retries"`
	Parallelism int    `yaml:"parallelism"`
}

type ORS struct {
	BaseURL           string        `yaml:"base_url"`
	APIKey            string        `yaml:"-"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Timeout           time.Duration `yaml:"timeout"`
	Country           string        `yaml:"country"`
}

type Matrix struct {
	RowsPerBatch int `yaml:"rows_per_batch"`
	Parallelism  int `yaml:"parallelism"`
}

type Cache struct {
	Backend     string        `yaml:"backend"`
	DatabaseURL string        `yaml:"-"`
	RedisURL    string        `yaml:"-"`
	RedisTTL    time.Duration `yaml:"redis_ttl"`
}

// Config is the explicit configuration of one process. Credentials are only
// ever read from the environment.
type Config struct {
	Depot    Depot   `yaml:"depot"`
	Profile  string  `yaml:"profile"`
	Solver   Solver  `yaml:"solver"`
	Geocode  Geocode `yaml:"geocode"`
	ORS      ORS     `yaml:"ors"`
	Matrix   Matrix  `yaml:"matrix"`
	Cache    Cache   `yaml:"cache"`
	DBPath   string  `yaml:"db_path"`
	SeedPath string  `yaml:"seed_path"`
	Port     string  `yaml:"port"`
}

func Default() Config {
	return Config{
		Profile: "driving-car",
		Solver: Solver{
			TimeBudget:    10 * time.Second,
			PenaltyFactor: 0.1,
			MaxEscapes:    1000,
		},
		Geocode: Geocode{
			Policy:      GeocodeDrop,
			Retries:     2,
			Parallelism: 4,
		},
		ORS: ORS{
			BaseURL:           "https://api.openrouteservice.org",
			RequestsPerMinute: 40,
			Timeout:           30 * time.Second,
		},
		Matrix: Matrix{
			RowsPerBatch: 25,
			Parallelism:  4,
		},
		Cache: Cache{
			Backend:  CacheSqlite,
			RedisTTL: 30 * 24 * time.Hour,
		},
		DBPath:   "data/app.db",
		SeedPath: "data/seeds/roster.json",
		Port:     "8080",
	}
}

// Load builds a Config from defaults, the optional YAML file at path, a
// .env file in the working directory, and finally the process environment.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config: parse %q: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error

	if v, ok := lookup("DEPOT_LAT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		errs = append(errs, wrapEnv("DEPOT_LAT", err))
		c.Depot.Lat = &f
	}
	if v, ok := lookup("DEPOT_LON"); ok {
		f, err := strconv.ParseFloat(v, 64)
		errs = append(errs, wrapEnv("DEPOT_LON", err))
		c.Depot.Lon = &f
	}
	if v, ok := lookup("DEPOT_ADDRESS"); ok {
		c.Depot.Address = v
	}
	if v, ok := lookup("ROUTE_PROFILE"); ok {
		c.Profile = v
	}
	if v, ok := lookup("TIME_BUDGET"); ok {
		d, err := time.ParseDuration(v)
		errs = append(errs, wrapEnv("TIME_BUDGET", err))
		c.Solver.TimeBudget = d
	}
	if v, ok := lookup("PENALTY_FACTOR"); ok {
		f, err := strconv.ParseFloat(v, 64)
		errs = append(errs, wrapEnv("PENALTY_FACTOR", err))
		c.Solver.PenaltyFactor = f
	}
	if v, ok := lookup("MAX_ESCAPES"); ok {
		n, err := strconv.Atoi(v)
		errs = append(errs, wrapEnv("MAX_ESCAPES", err))
		c.Solver.MaxEscapes = n
	}
	if v, ok := lookup("GEOCODE_POLICY"); ok {
		c.Geocode.Policy = strings.ToLower(v)
	}
	if v, ok := lookup("GEOCODE_RETRIES"); ok {
		n, err := strconv.Atoi(v)
		errs = append(errs, wrapEnv("GEOCODE_RETRIES", err))
		c.Geocode.Retries = n
	}
	if v, ok := lookup("ORS_BASE_URL"); ok {
		c.ORS.BaseURL = v
	}
	if v, ok := lookup("ORS_API_KEY"); ok {
		c.ORS.APIKey = v
	}
	if v, ok := lookup("ORS_REQUESTS_PER_MINUTE"); ok {
		n, err := strconv.Atoi(v)
		errs = append(errs, wrapEnv("ORS_REQUESTS_PER_MINUTE", err))
		c.ORS.RequestsPerMinute = n
	}
	if v, ok := lookup("CACHE_BACKEND"); ok {
		c.Cache.Backend = strings.ToLower(v)
	}
	if v, ok := lookup("DATABASE_URL"); ok {
		c.Cache.DatabaseURL = v
	}
	if v, ok := lookup("REDIS_URL"); ok {
		c.Cache.RedisURL = v
	}
	if v, ok := lookup("DB_PATH"); ok {
		c.DBPath = v
	}
	if v, ok := lookup("SEED_PATH"); ok {
		c.SeedPath = v
	}
	if v, ok := lookup("PORT"); ok {
		c.Port = v
	}

	return errors.Join(errs...)
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func wrapEnv(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("env %s: %w", key, err)
}

// HasDepotCoordinates reports whether the depot is given as lat/lon rather
// than an address to geocode.
func (c Config) HasDepotCoordinates() bool {
	return c.Depot.Lat != nil && c.Depot.Lon != nil
}

func (c Config) Validate() error {
	var errs []error

	if (c.Depot.Lat == nil) != (c.Depot.Lon == nil) {
		errs = append(errs, errors.New("depot lat and lon must be set together"))
	}
	if !c.HasDepotCoordinates() && strings.TrimSpace(c.Depot.Address) == "" {
		errs = append(errs, errors.New("depot coordinates or depot address is required"))
	}
	if c.Profile == "" {
		errs = append(errs, errors.New("profile must not be empty"))
	}
	if c.Solver.TimeBudget <= 0 {
		errs = append(errs, fmt.Errorf("time budget must be > 0 (got %s)", c.Solver.TimeBudget))
	}
	if c.Solver.PenaltyFactor < 0 {
		errs = append(errs, fmt.Errorf("penalty factor must be >= 0 (got %g)", c.Solver.PenaltyFactor))
	}

	switch c.Geocode.Policy {
	case GeocodeDrop, GeocodeRetry, GeocodeStrict:
	default:
		errs = append(errs, fmt.Errorf("unknown geocode policy %q", c.Geocode.Policy))
	}
	if c.Geocode.Retries < 0 {
		errs = append(errs, fmt.Errorf("geocode retries must be >= 0 (got %d)", c.Geocode.Retries))
	}

	switch c.Cache.Backend {
	case CacheNone, CacheSqlite:
	case CachePostgres:
		if c.Cache.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres cache"))
		}
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q", c.Cache.Backend))
	}

	if c.Matrix.RowsPerBatch < 0 || c.Matrix.Parallelism < 0 {
		errs = append(errs, errors.New("matrix batch size and parallelism must be >= 0"))
	}

	return errors.Join(errs...)
}

// Get returns the environment value for key or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
