package vrp

import (
	"context"
	"fmt"
	"math"

	"bus-route-service/internal/domain"
)

// insertion is the cheapest place for one stop in one route.
type insertion struct {
	cost int
	pos  int
}

// cheapestInsertion scans every gap of route and returns the lowest
// cost(prev->stop) + cost(stop->next) - cost(prev->next). Equal costs keep
// the earliest position.
func cheapestInsertion(m *Model, route []int, stop int) insertion {
	best := insertion{cost: math.MaxInt, pos: -1}
	for pos := 1; pos < len(route); pos++ {
		prev, next := route[pos-1], route[pos]
		c := m.Cost(prev, stop) + m.Cost(stop, next) - m.Cost(prev, next)
		if c < best.cost {
			best = insertion{cost: c, pos: pos}
		}
	}
	return best
}

// construct builds the initial solution with cheapest-arc insertion.
//
// The best insertion of every unrouted stop into every route is cached and
// only the column of the route that just changed is recomputed after each
// insertion. Selection walks stops, then routes, in ascending order and only
// replaces the incumbent on a strictly lower cost, which yields the
// lowest-stop, lowest-route, lowest-position tie-break.
func construct(ctx context.Context, m *Model) (*plan, error) {
	n := m.NodeCount()
	vehicles := m.VehicleCount()
	p := newPlan(vehicles)

	routed := make([]bool, n)
	routed[domain.DepotIndex] = true

	best := make([][]insertion, n)
	for s := 1; s < n; s++ {
		best[s] = make([]insertion, vehicles)
		for v := 0; v < vehicles; v++ {
			best[s][v] = cheapestInsertion(m, p.routes[v], s)
		}
	}

	for remaining := n - 1; remaining > 0; remaining-- {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("construct: %w", err)
		}

		bestStop, bestRoute := -1, -1
		bestCost := math.MaxInt

		for s := 1; s < n; s++ {
			if routed[s] {
				continue
			}

			fits := false
			for v := 0; v < vehicles; v++ {
				if p.loads[v]+m.Demand(s) > m.Capacity(v) {
					continue
				}
				fits = true

				if best[s][v].cost < bestCost {
					bestCost = best[s][v].cost
					bestStop, bestRoute = s, v
				}
			}

			// Residual capacity only shrinks, so this stop can never be placed.
			if !fits {
				return nil, fmt.Errorf(
					"construct: stop %d (demand %d) fits no open route with %d stops left: %w",
					s, m.Demand(s), remaining, domain.ErrNoSolution,
				)
			}
		}

		pos := best[bestStop][bestRoute].pos
		p.routes[bestRoute] = insertAt(p.routes[bestRoute], pos, bestStop)
		p.loads[bestRoute] += m.Demand(bestStop)
		routed[bestStop] = true

		for s := 1; s < n; s++ {
			if !routed[s] {
				best[s][bestRoute] = cheapestInsertion(m, p.routes[bestRoute], s)
			}
		}
	}

	return p, nil
}
