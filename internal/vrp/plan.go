package vrp

import "bus-route-service/internal/domain"

// plan is the mutable working solution owned by the engine. Every route
// slice starts and ends with the depot.
type plan struct {
	routes [][]int
	loads  []int
}

func newPlan(vehicles int) *plan {
	p := &plan{
		routes: make([][]int, vehicles),
		loads:  make([]int, vehicles),
	}
	for v := range p.routes {
		p.routes[v] = []int{domain.DepotIndex, domain.DepotIndex}
	}
	return p
}

func (p *plan) clone() *plan {
	out := &plan{
		routes: make([][]int, len(p.routes)),
		loads:  append([]int(nil), p.loads...),
	}
	for v, r := range p.routes {
		out.routes[v] = append([]int(nil), r...)
	}
	return out
}

func (p *plan) routeCost(m *Model, v int) int {
	return m.Matrix().PathCost(p.routes[v])
}

func (p *plan) cost(m *Model) int {
	total := 0
	for v := range p.routes {
		total += p.routeCost(m, v)
	}
	return total
}

// freeze copies the plan into an immutable domain.Solution.
func (p *plan) freeze(m *Model) domain.Solution {
	sol := domain.Solution{Routes: make([]domain.Route, len(p.routes))}
	for v, r := range p.routes {
		sol.Routes[v] = domain.Route{Vehicle: v, Nodes: append([]int(nil), r...)}
	}
	sol.TotalDistance = p.cost(m)
	return sol
}

func insertAt(route []int, pos int, node int) []int {
	route = append(route, 0)
	copy(route[pos+1:], route[pos:])
	route[pos] = node
	return route
}

func removeAt(route []int, pos int) []int {
	return append(route[:pos], route[pos+1:]...)
}

func reverse(nodes []int) {
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
}
