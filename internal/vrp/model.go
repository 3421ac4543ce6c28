package vrp

import (
	"fmt"

	"bus-route-service/internal/domain"
)

// Model is the immutable input of one optimization run.
type Model struct {
	dist       *domain.DistanceMatrix
	demands    []int
	capacities []int
}

// NewModel validates shapes and signs and copies demands and capacities.
// demands is indexed by matrix node; demands[0] belongs to the depot and must
// be zero.
func NewModel(dist *domain.DistanceMatrix, demands []int, capacities []int) (*Model, error) {
	if dist == nil {
		return nil, fmt.Errorf("new model: %w: distance matrix is nil", domain.ErrInvalidModel)
	}

	n := dist.Size()
	if len(demands) != n {
		return nil, fmt.Errorf(
			"new model: %w: demand vector has %d entries, matrix has %d nodes",
			domain.ErrInvalidModel, len(demands), n,
		)
	}

	if demands[domain.DepotIndex] != 0 {
		return nil, fmt.Errorf(
			"new model: %w: depot demand must be 0 (got %d)",
			domain.ErrInvalidModel, demands[domain.DepotIndex],
		)
	}

	for i, d := range demands {
		if d < 0 {
			return nil, fmt.Errorf("new model: %w: negative demand at node %d: %d", domain.ErrInvalidModel, i, d)
		}
	}

	for v, c := range capacities {
		if c < 0 {
			return nil, fmt.Errorf("new model: %w: negative capacity for vehicle %d: %d", domain.ErrInvalidModel, v, c)
		}
	}

	return &Model{
		dist:       dist,
		demands:    append([]int(nil), demands...),
		capacities: append([]int(nil), capacities...),
	}, nil
}

// UniformDemands returns the demand vector for n nodes where the depot
// consumes nothing and every stop consumes one seat.
func UniformDemands(n int) []int {
	out := make([]int, n)
	for i := 1; i < n; i++ {
		out[i] = domain.DefaultStopDemand
	}
	return out
}

func (m *Model) NodeCount() int { return m.dist.Size() }

func (m *Model) VehicleCount() int { return len(m.capacities) }

func (m *Model) Demand(node int) int { return m.demands[node] }

func (m *Model) Capacity(vehicle int) int { return m.capacities[vehicle] }

func (m *Model) Cost(from, to int) int { return m.dist.At(from, to) }

func (m *Model) Matrix() *domain.DistanceMatrix { return m.dist }

func (m *Model) TotalDemand() int {
	total := 0
	for _, d := range m.demands {
		total += d
	}
	return total
}

func (m *Model) TotalCapacity() int {
	total := 0
	for _, c := range m.capacities {
		total += c
	}
	return total
}

// Validate checks global feasibility. It runs before any search.
func (m *Model) Validate() error {
	demand := m.TotalDemand()
	capacity := m.TotalCapacity()
	if demand > capacity {
		return fmt.Errorf(
			"%w: total demand %d exceeds total capacity %d across %d vehicles",
			domain.ErrCapacityInfeasible, demand, capacity, len(m.capacities),
		)
	}
	return nil
}
