package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"bus-route-service/internal/domain"
	"bus-route-service/internal/platform/obs"
	"bus-route-service/internal/ports"
)

// GeocodePolicy decides what happens to stops whose address cannot be
// resolved.
type GeocodePolicy string

const (
	// Exclude unresolved stops and report them.
	GeocodeDrop GeocodePolicy = "drop"
	// Re-attempt transient failures before excluding.
	GeocodeRetry GeocodePolicy = "retry"
	// Abort the run when any stop stays unresolved.
	GeocodeStrict GeocodePolicy = "strict"
)

const (
	ReasonMissingLocation = "missing coordinates and address"
	ReasonNoGeocoder      = "address given but no geocoder configured"
	ReasonGeocodeFailed   = "geocode failure"
)

type GeocodeOptions struct {
	Policy      GeocodePolicy
	Retries     int
	Parallelism int
}

// ResolveStops returns the stops that carry usable coordinates, in input
// order, geocoding the ones that only have an address. Stops that cannot be
// resolved are returned as exclusions. Under GeocodeStrict any exclusion
// turns into an error wrapping domain.ErrGeocodeFailure.
func ResolveStops(
	ctx context.Context,
	geocoder ports.Geocoder,
	stops []domain.Stop,
	opts GeocodeOptions,
) (_ []domain.Stop, _ []domain.ExcludedStop, err error) {
	defer obs.Time(ctx, "services.ResolveStops")(&err)

	if opts.Parallelism <= 0 {
		opts.Parallelism = DefaultParallelism
	}
	attempts := 1
	if opts.Policy == GeocodeRetry {
		attempts += max(opts.Retries, 0)
	}

	out := make([]domain.Stop, len(stops))
	reasons := make([]string, len(stops))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)

	for i, s := range stops {
		out[i] = s
		if s.Resolved() {
			continue
		}

		addr := strings.TrimSpace(s.Address)
		switch {
		case addr == "":
			reasons[i] = ReasonMissingLocation
			continue
		case geocoder == nil:
			reasons[i] = ReasonNoGeocoder
			continue
		}

		i := i
		g.Go(func() error {
			c, err := resolveWithRetry(gctx, geocoder, addr, attempts)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				reasons[i] = err.Error()
				return nil
			}
			out[i].Coordinates = &c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("resolve stops: %w", err)
	}

	resolved := make([]domain.Stop, 0, len(stops))
	var excluded []domain.ExcludedStop
	for i, s := range out {
		if reasons[i] == "" {
			resolved = append(resolved, s)
			continue
		}
		excluded = append(excluded, domain.ExcludedStop{Stop: s, Reason: reasons[i]})
		log.Printf("warn: excluding stop id=%d name=%q reason=%q", s.ID, s.Name, reasons[i])
		obs.ExcludedStops.WithLabelValues(reasonLabel(reasons[i])).Inc()
	}

	if opts.Policy == GeocodeStrict && len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, e := range excluded {
			ids = append(ids, fmt.Sprint(e.Stop.ID))
		}
		return nil, excluded, fmt.Errorf(
			"resolve stops: %w: %d stops unresolved (ids %s); supply coordinates manually",
			domain.ErrGeocodeFailure, len(excluded), strings.Join(ids, ","),
		)
	}

	return resolved, excluded, nil
}

func resolveWithRetry(ctx context.Context, geocoder ports.Geocoder, addr string, attempts int) (domain.Coordinates, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		c, err := geocoder.Resolve(ctx, addr)
		if err == nil {
			if !c.Valid() {
				return domain.Coordinates{}, fmt.Errorf("geocoder returned invalid coordinates %s", c)
			}
			return c, nil
		}
		lastErr = err

		// A definitive miss will not change on retry.
		if errors.Is(err, domain.ErrNotFound) || ctx.Err() != nil {
			break
		}
	}
	return domain.Coordinates{}, fmt.Errorf("%w: %w", domain.ErrGeocodeFailure, lastErr)
}

func reasonLabel(reason string) string {
	switch {
	case strings.HasPrefix(reason, ReasonGeocodeFailed):
		return "geocode_failed"
	case reason == ReasonNoGeocoder:
		return "no_geocoder"
	default:
		return "missing_location"
	}
}
