package domain

import (
	"testing"
)

func TestVehicleValidate(t *testing.T) {
	if err := NewVehicle(1, 0).Validate(); err != nil {
		t.Fatalf("zero capacity should be valid, got %v", err)
	}

	if err := NewVehicle(2, -1).Validate(); err == nil {
		t.Fatalf("expected error for negative capacity")
	}
}

func TestCapacities(t *testing.T) {
	fleet := []Vehicle{NewVehicle(10, 3), NewVehicle(11, 0), NewVehicle(12, 5)}

	caps := Capacities(fleet)
	want := []int{3, 0, 5}
	if len(caps) != len(want) {
		t.Fatalf("len = %d, want %d", len(caps), len(want))
	}
	for i := range want {
		if caps[i] != want[i] {
			t.Errorf("caps[%d] = %d, want %d", i, caps[i], want[i])
		}
	}
}

func TestRouteStops(t *testing.T) {
	r := Route{Vehicle: 0, Nodes: []int{0, 3, 1, 0}}
	if r.IsEmpty() {
		t.Fatalf("route with stops reported empty")
	}

	stops := r.Stops()
	if len(stops) != 2 || stops[0] != 3 || stops[1] != 1 {
		t.Fatalf("stops = %v, want [3 1]", stops)
	}

	trivial := Route{Vehicle: 1, Nodes: []int{0, 0}}
	if !trivial.IsEmpty() || len(trivial.Stops()) != 0 {
		t.Fatalf("depot->depot route should be empty")
	}
}

func TestSolutionCloneDoesNotAlias(t *testing.T) {
	sol := Solution{Routes: []Route{{Vehicle: 0, Nodes: []int{0, 1, 0}}}, TotalDistance: 7}

	cp := sol.Clone()
	cp.Routes[0].Nodes[1] = 9

	if sol.Routes[0].Nodes[1] != 1 {
		t.Fatalf("clone aliased the original route nodes")
	}
}
