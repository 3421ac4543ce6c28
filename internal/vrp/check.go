package vrp

import (
	"errors"
	"fmt"

	"bus-route-service/internal/domain"
)

var ErrInvalidSolution = errors.New("invalid solution")

// CheckSolution verifies every structural invariant of a completed solution:
// one route per vehicle, depot only at both ends, every stop visited exactly
// once, per-route demand within capacity, and TotalDistance equal to the sum
// of directional route costs.
func CheckSolution(m *Model, sol domain.Solution) error {
	if len(sol.Routes) != m.VehicleCount() {
		return fmt.Errorf("%w: %d routes for %d vehicles", ErrInvalidSolution, len(sol.Routes), m.VehicleCount())
	}

	n := m.NodeCount()
	seen := make([]bool, n)
	total := 0

	for v, r := range sol.Routes {
		if r.Vehicle != v {
			return fmt.Errorf("%w: route %d references vehicle %d", ErrInvalidSolution, v, r.Vehicle)
		}

		k := len(r.Nodes)
		if k < 2 || r.Nodes[0] != domain.DepotIndex || r.Nodes[k-1] != domain.DepotIndex {
			return fmt.Errorf("%w: route %d must start and end at the depot: %v", ErrInvalidSolution, v, r.Nodes)
		}

		load := 0
		for _, node := range r.Nodes[1 : k-1] {
			if node <= domain.DepotIndex || node >= n {
				return fmt.Errorf("%w: route %d has invalid node %d", ErrInvalidSolution, v, node)
			}
			if seen[node] {
				return fmt.Errorf("%w: stop %d visited more than once", ErrInvalidSolution, node)
			}
			seen[node] = true
			load += m.Demand(node)
		}

		if load > m.Capacity(v) {
			return fmt.Errorf("%w: route %d load %d exceeds capacity %d", ErrInvalidSolution, v, load, m.Capacity(v))
		}

		total += m.Matrix().PathCost(r.Nodes)
	}

	for node := 1; node < n; node++ {
		if !seen[node] {
			return fmt.Errorf("%w: stop %d is not routed", ErrInvalidSolution, node)
		}
	}

	if total != sol.TotalDistance {
		return fmt.Errorf("%w: total distance %d, routes sum to %d", ErrInvalidSolution, sol.TotalDistance, total)
	}

	return nil
}
