package records

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"bus-route-service/internal/domain"
)

// header maps lower-cased column names to their position.
type header map[string]int

func readHeader(r *csv.Reader, required ...string) (header, error) {
	names, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	h := make(header, len(names))
	for i, n := range names {
		h[normalizeColumn(n)] = i
	}
	for _, col := range required {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	return h, nil
}

func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}

func (h header) get(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ReadStops parses stop records with columns id, name, lat, lon and an
// optional address. Rows with blank lat or lon come back unresolved; a row
// with only one of them, or a non-numeric value, is an error.
func ReadStops(r io.Reader) ([]domain.Stop, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	h, err := readHeader(cr, "id", "name", "lat", "lon")
	if err != nil {
		return nil, fmt.Errorf("read stops: %w", err)
	}

	var stops []domain.Stop
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read stops: line %d: %w", line, err)
		}

		id, err := strconv.Atoi(h.get(row, "id"))
		if err != nil {
			return nil, fmt.Errorf("read stops: line %d: invalid id: %w", line, err)
		}

		coords, err := parseCoordinates(h.get(row, "lat"), h.get(row, "lon"))
		if err != nil {
			return nil, fmt.Errorf("read stops: line %d: %w", line, err)
		}

		stop := domain.NewStop(id, h.get(row, "name"), coords)
		stop.Address = h.get(row, "address")
		stops = append(stops, stop)
	}
	return stops, nil
}

func parseCoordinates(lat, lon string) (*domain.Coordinates, error) {
	if lat == "" && lon == "" {
		return nil, nil
	}
	if lat == "" || lon == "" {
		return nil, errors.New("lat and lon must both be set or both be blank")
	}

	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lat: %w", err)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lon: %w", err)
	}

	c := domain.Coordinates{Lon: lo, Lat: la}
	if !c.Valid() {
		return nil, fmt.Errorf("coordinates out of range: %s", c)
	}
	return &c, nil
}

// ReadVehicles parses vehicle records with columns id and capacity.
func ReadVehicles(r io.Reader) ([]domain.Vehicle, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	h, err := readHeader(cr, "id", "capacity")
	if err != nil {
		return nil, fmt.Errorf("read vehicles: %w", err)
	}

	var vehicles []domain.Vehicle
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read vehicles: line %d: %w", line, err)
		}

		id, err := strconv.Atoi(h.get(row, "id"))
		if err != nil {
			return nil, fmt.Errorf("read vehicles: line %d: invalid id: %w", line, err)
		}
		capacity, err := strconv.Atoi(h.get(row, "capacity"))
		if err != nil {
			return nil, fmt.Errorf("read vehicles: line %d: invalid capacity: %w", line, err)
		}

		v := domain.NewVehicle(id, capacity)
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("read vehicles: line %d: %w", line, err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

// CSVStopSource implements ports.StopSource over a CSV file.
type CSVStopSource struct {
	Path string
}

func (s CSVStopSource) ListStops(ctx context.Context) ([]domain.Stop, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("list stops: %w", err)
	}
	defer f.Close()
	return ReadStops(f)
}

// CSVVehicleSource implements ports.VehicleSource over a CSV file.
type CSVVehicleSource struct {
	Path string
}

func (s CSVVehicleSource) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer f.Close()
	return ReadVehicles(f)
}
