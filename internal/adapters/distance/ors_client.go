package distance

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultORSBaseURL = "https://api.openrouteservice.org"
	DefaultProfile    = "driving-car"
)

type ORSOptions struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// RequestsPerMinute throttles outbound calls. Zero disables throttling.
	RequestsPerMinute int
	// Country restricts geocoding to one ISO country code when set.
	Country string
}

// ORSClient implements Geocoder and DistanceMatrixProvider using
// OpenRouteService.
//
// It coordinates:
//   - Address normalization
//   - Client-side rate limiting
//   - External API calls with retry/backoff
//
// Caching is layered on top with CachedGeocoder and CachedMatrixProvider.
// The client is safe for concurrent use.
type ORSClient struct {
	session *http.Client
	apiKey  string
	baseURL string
	country string
	limiter *rate.Limiter
	backoff time.Duration
}

func NewORSClient(opts ORSOptions) (*ORSClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultORSBaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RequestsPerMinute))
	}

	return &ORSClient{
		session: &http.Client{Timeout: timeout},
		apiKey:  opts.APIKey,
		baseURL: baseURL,
		country: opts.Country,
		limiter: rate.NewLimiter(limit, 1),
		backoff: 200 * time.Millisecond,
	}, nil
}

// NormalizeAddress collapses whitespace so equivalent addresses share cache
// keys.
func NormalizeAddress(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
