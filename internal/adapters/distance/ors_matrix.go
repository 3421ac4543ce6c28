package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"bus-route-service/internal/domain"
	"bus-route-service/internal/platform/obs"
)

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Sources   []int       `json:"sources"`
	Metrics   []string    `json:"metrics"`
	Units     string      `json:"units"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
}

// DistanceRows retrieves the distance rows of the given sources to every
// location using the OpenRouteService matrix endpoint. Distances are in
// meters and directional.
func (o *ORSClient) DistanceRows(
	ctx context.Context,
	locations []domain.Coordinates,
	sources []int,
	profile string,
) (_ [][]float64, err error) {
	defer obs.Time(ctx, "ors.DistanceRows")(&err)

	if profile == "" {
		return nil, errors.New("profile must be non-empty")
	}
	if len(sources) == 0 {
		return [][]float64{}, nil
	}
	for _, s := range sources {
		if s < 0 || s >= len(locations) {
			return nil, fmt.Errorf("source index %d out of range [0,%d)", s, len(locations))
		}
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, profile)

	locs := make([][]float64, 0, len(locations))
	for _, c := range locations {
		locs = append(locs, c.CoordsToList())
	}

	payload, err := json.Marshal(matrixRequest{
		Locations: locs,
		Sources:   sources,
		Metrics:   []string{"distance"},
		Units:     "m",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, "matrix", func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Distances) != len(sources) {
		return nil, fmt.Errorf("expected %d source rows; got %d", len(sources), len(mr.Distances))
	}

	out := make([][]float64, len(sources))
	for k, row := range mr.Distances {
		if len(row) != len(locations) {
			return nil, fmt.Errorf("row %d has %d entries, want %d", k, len(row), len(locations))
		}

		out[k] = make([]float64, len(row))
		for j, d := range row {
			// ORS reports unroutable pairs as null.
			if d == nil {
				return nil, fmt.Errorf("no route from location %d to %d", sources[k], j)
			}
			out[k][j] = *d
		}
	}

	return out, nil
}
