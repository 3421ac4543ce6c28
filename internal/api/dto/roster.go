package dto

type StopResponse struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Demand  int      `json:"demand"`
}

type ListStopsResponse struct {
	Stops []StopResponse `json:"stops"`
}

type VehicleResponse struct {
	ID       int `json:"id"`
	Capacity int `json:"capacity"`
}

type ListVehiclesResponse struct {
	Vehicles []VehicleResponse `json:"vehicles"`
}
