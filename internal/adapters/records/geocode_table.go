package records

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"

	"bus-route-service/internal/domain"
)

type GeocodeTableStats struct {
	Rows     int
	Resolved int
	Failed   int
}

// GeocodeTable copies an address table from r to w, appending lat and lon
// columns resolved from the "address" column. Lookup failures are logged and
// leave both columns blank; they never abort the copy.
func GeocodeTable(
	ctx context.Context,
	r io.Reader,
	w io.Writer,
	resolve func(ctx context.Context, address string) (domain.Coordinates, error),
) (GeocodeTableStats, error) {
	var stats GeocodeTableStats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	names, err := cr.Read()
	if err != nil {
		return stats, fmt.Errorf("geocode table: read header: %w", err)
	}

	h := make(header, len(names))
	for i, n := range names {
		h[normalizeColumn(n)] = i
	}
	if _, ok := h["address"]; !ok {
		return stats, errors.New(`geocode table: missing column "address"`)
	}

	// Existing lat/lon columns are overwritten in place instead of duplicated.
	latIdx, hasLat := h["lat"]
	lonIdx, hasLon := h["lon"]
	outHeader := append([]string(nil), names...)
	if !hasLat {
		latIdx = len(outHeader)
		outHeader = append(outHeader, "lat")
	}
	if !hasLon {
		lonIdx = len(outHeader)
		outHeader = append(outHeader, "lon")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(outHeader); err != nil {
		return stats, fmt.Errorf("geocode table: write header: %w", err)
	}

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("geocode table: line %d: %w", line, err)
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Rows++

		out := make([]string, len(outHeader))
		copy(out, row)

		addr := h.get(row, "address")
		c, err := resolve(ctx, addr)
		switch {
		case err != nil:
			stats.Failed++
			log.Printf("warn: geocoding failed line=%d address=%q err=%v", line, addr, err)
			out[latIdx], out[lonIdx] = "", ""
		default:
			stats.Resolved++
			out[latIdx] = strconv.FormatFloat(c.Lat, 'f', -1, 64)
			out[lonIdx] = strconv.FormatFloat(c.Lon, 'f', -1, 64)
		}

		if err := cw.Write(out); err != nil {
			return stats, fmt.Errorf("geocode table: write line %d: %w", line, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return stats, fmt.Errorf("geocode table: flush: %w", err)
	}
	return stats, nil
}
