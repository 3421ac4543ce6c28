package domain

// DepotIndex is the matrix index of the single depot.
const DepotIndex = 0

// Represents the ordered visit sequence of a single vehicle.
// Nodes are matrix indices; a well-formed route begins and ends at DepotIndex
// and contains it nowhere else.
type Route struct {
	Vehicle int
	Nodes   []int
}

// Stops returns the non-depot nodes of the route in visiting order.
func (r Route) Stops() []int {
	if len(r.Nodes) <= 2 {
		return []int{}
	}
	return r.Nodes[1 : len(r.Nodes)-1]
}

// IsEmpty reports whether the route is the trivial depot->depot tour.
func (r Route) IsEmpty() bool { return len(r.Nodes) <= 2 }

// Represents a frozen optimization result: one route per vehicle (possibly
// empty) and the total distance over all of them.
// It is immutable planning data and contains no side effects.
type Solution struct {
	Routes        []Route
	TotalDistance int
}

// Clone returns a deep copy so callers cannot alias engine state.
func (s Solution) Clone() Solution {
	out := Solution{Routes: make([]Route, len(s.Routes)), TotalDistance: s.TotalDistance}
	for i, r := range s.Routes {
		out.Routes[i] = Route{Vehicle: r.Vehicle, Nodes: append([]int(nil), r.Nodes...)}
	}
	return out
}
