package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

func km(meters int) string {
	return fmt.Sprintf("%.2f km", float64(meters)/1000)
}

// WriteText renders the report in the console layout used by the CLI.
func WriteText(w io.Writer, rep *Report) error {
	var b strings.Builder

	for _, r := range rep.Routes {
		fmt.Fprintf(&b, "\nBus %d (Capacity %d, Load %d)\n", r.VehicleID, r.Capacity, r.Load)
		fmt.Fprintf(&b, "Assigned Students: %s\n", strings.Join(r.StopNames(), ", "))

		coords := make([]string, 0, len(r.Visits))
		for _, v := range r.Visits {
			coords = append(coords, fmt.Sprintf("(%.6f, %.6f)", v.Lon, v.Lat))
		}
		fmt.Fprintf(&b, "Route (coords): %s\n", strings.Join(coords, " -> "))
		fmt.Fprintf(&b, "Distance: %s\n", km(r.DistanceMeters))
	}

	if len(rep.IdleVehicles) > 0 {
		ids := make([]string, 0, len(rep.IdleVehicles))
		for _, id := range rep.IdleVehicles {
			ids = append(ids, fmt.Sprint(id))
		}
		fmt.Fprintf(&b, "\nIdle buses: %s\n", strings.Join(ids, ", "))
	}

	if len(rep.Excluded) > 0 {
		fmt.Fprintf(&b, "\nExcluded students:\n")
		for _, e := range rep.Excluded {
			fmt.Fprintf(&b, "  %d %s: %s\n", e.StopID, e.Name, e.Reason)
		}
	}

	fmt.Fprintf(&b, "\nTotal Distance (all buses): %s\n", km(rep.TotalDistanceMeters))

	_, err := io.WriteString(w, b.String())
	return err
}

func WriteJSON(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
