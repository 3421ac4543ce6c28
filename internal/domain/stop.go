package domain

// Represents a single pickup point (one student) handled by the system.
// Coordinates are nil until the stop has been resolved, either from the
// input record or by geocoding its Address.
type Stop struct {
	ID          int
	Name        string
	Address     string
	Coordinates *Coordinates
	Demand      int
}

// DefaultStopDemand is the capacity every stop consumes on a vehicle.
const DefaultStopDemand = 1

func NewStop(id int, name string, coords *Coordinates) Stop {
	return Stop{
		ID:          id,
		Name:        name,
		Coordinates: coords,
		Demand:      DefaultStopDemand,
	}
}

// Resolved reports whether the stop carries usable coordinates.
func (s Stop) Resolved() bool {
	return s.Coordinates != nil && s.Coordinates.Valid()
}

// ExcludedStop records a stop that was dropped before optimization.
type ExcludedStop struct {
	Stop   Stop
	Reason string
}
