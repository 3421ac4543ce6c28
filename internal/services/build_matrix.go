package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"bus-route-service/internal/domain"
	"bus-route-service/internal/platform/obs"
	"bus-route-service/internal/ports"
)

const (
	DefaultRowsPerBatch = 25
	DefaultParallelism  = 4
)

type MatrixOptions struct {
	// RowsPerBatch is the number of source rows requested per provider call.
	RowsPerBatch int
	// Parallelism bounds the number of concurrent provider calls.
	Parallelism int
}

func (o MatrixOptions) withDefaults() MatrixOptions {
	if o.RowsPerBatch <= 0 {
		o.RowsPerBatch = DefaultRowsPerBatch
	}
	if o.Parallelism <= 0 {
		o.Parallelism = DefaultParallelism
	}
	return o
}

// BuildDistanceMatrix fetches the full directional matrix for locations,
// where index 0 is the depot. Source rows are requested in batches with
// bounded parallelism and written to their own positions, so the result does
// not depend on completion order. Values are rounded to whole meters and the
// diagonal is forced to zero.
//
// Any provider error or incomplete, negative or non-finite value fails the
// whole build with an error wrapping domain.ErrMatrixFailure.
func BuildDistanceMatrix(
	ctx context.Context,
	provider ports.DistanceMatrixProvider,
	locations []domain.Coordinates,
	profile string,
	opts MatrixOptions,
) (_ *domain.DistanceMatrix, err error) {
	defer obs.Time(ctx, "services.BuildDistanceMatrix")(&err)

	n := len(locations)
	if n == 0 {
		return nil, fmt.Errorf("build distance matrix: %w: no locations", domain.ErrMatrixFailure)
	}
	if provider == nil {
		return nil, fmt.Errorf("build distance matrix: %w: no provider configured", domain.ErrMatrixFailure)
	}
	opts = opts.withDefaults()

	rows := make([][]int, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)

	for start := 0; start < n; start += opts.RowsPerBatch {
		end := min(start+opts.RowsPerBatch, n)
		sources := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			sources = append(sources, i)
		}

		g.Go(func() error {
			fetched, err := provider.DistanceRows(gctx, locations, sources, profile)
			if err != nil {
				return fmt.Errorf("rows %d-%d: %w", sources[0], sources[len(sources)-1], err)
			}
			if len(fetched) != len(sources) {
				return fmt.Errorf("rows %d-%d: got %d rows, want %d", sources[0], sources[len(sources)-1], len(fetched), len(sources))
			}

			for k, src := range sources {
				row, err := roundRow(src, fetched[k], n)
				if err != nil {
					return err
				}
				rows[src] = row
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("build distance matrix: %w: %w", domain.ErrMatrixFailure, err)
		}
		return nil, fmt.Errorf("build distance matrix: %w: %v", domain.ErrMatrixFailure, err)
	}

	m, err := domain.NewDistanceMatrix(rows)
	if err != nil {
		return nil, fmt.Errorf("build distance matrix: %w: %v", domain.ErrMatrixFailure, err)
	}
	return m, nil
}

func roundRow(src int, raw []float64, n int) ([]int, error) {
	if len(raw) != n {
		return nil, fmt.Errorf("row %d has %d entries, want %d", src, len(raw), n)
	}

	row := make([]int, n)
	for j, v := range raw {
		if j == src {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, fmt.Errorf("invalid distance %v from %d to %d", v, src, j)
		}
		row[j] = int(math.Round(v))
	}
	return row, nil
}
