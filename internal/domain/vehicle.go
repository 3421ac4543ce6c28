package domain

import "fmt"

// A bus departing from and returning to the depot.
type Vehicle struct {
	ID       int
	Capacity int
}

func NewVehicle(id int, capacity int) Vehicle {
	return Vehicle{
		ID:       id,
		Capacity: capacity,
	}
}

func (v Vehicle) Validate() error {
	if v.Capacity < 0 {
		return fmt.Errorf("vehicle %d: capacity must be non-negative (got %d)", v.ID, v.Capacity)
	}
	return nil
}

// Capacities returns the capacity vector in fleet order.
func Capacities(vehicles []Vehicle) []int {
	out := make([]int, len(vehicles))
	for i, v := range vehicles {
		out[i] = v.Capacity
	}
	return out
}
