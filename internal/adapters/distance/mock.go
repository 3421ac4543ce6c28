package distance

import (
	"context"
	"fmt"
	"sync"

	"bus-route-service/internal/domain"
)

// MockMatrixProvider serves rows of a fixed matrix indexed by location
// position. It records every requested source batch.
type MockMatrixProvider struct {
	Rows [][]float64
	Err  error

	mu      sync.Mutex
	batches [][]int
}

func NewMockMatrixProvider(rows [][]float64) *MockMatrixProvider {
	return &MockMatrixProvider{Rows: rows}
}

func (p *MockMatrixProvider) DistanceRows(
	ctx context.Context,
	locations []domain.Coordinates,
	sources []int,
	profile string,
) ([][]float64, error) {
	p.mu.Lock()
	p.batches = append(p.batches, append([]int(nil), sources...))
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}

	out := make([][]float64, len(sources))
	for k, s := range sources {
		if s < 0 || s >= len(p.Rows) {
			return nil, fmt.Errorf("missing row %d", s)
		}
		out[k] = append([]float64(nil), p.Rows[s]...)
	}
	return out, nil
}

// Batches returns the source batches requested so far.
func (p *MockMatrixProvider) Batches() [][]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]int(nil), p.batches...)
}

// MockGeocoder resolves addresses from a fixed table. Unknown addresses
// yield domain.ErrNotFound; addresses listed in Fail return that error.
type MockGeocoder struct {
	Known map[string]domain.Coordinates
	Fail  map[string]error

	mu    sync.Mutex
	calls map[string]int
}

func NewMockGeocoder(known map[string]domain.Coordinates) *MockGeocoder {
	return &MockGeocoder{Known: known, Fail: map[string]error{}, calls: map[string]int{}}
}

func (g *MockGeocoder) Resolve(ctx context.Context, address string) (domain.Coordinates, error) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = map[string]int{}
	}
	g.calls[address]++
	g.mu.Unlock()

	if err, ok := g.Fail[address]; ok {
		return domain.Coordinates{}, err
	}
	c, ok := g.Known[address]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("mock geocode %q: %w", address, domain.ErrNotFound)
	}
	return c, nil
}

func (g *MockGeocoder) Calls(address string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[address]
}
