package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bus-route-service/internal/domain"
)

// SQLite-backed implementation of the StopSource and VehicleSource ports.
type SqliteRosterRepository struct{ DB *sql.DB }

func NewSqliteRosterRepository(db *sql.DB) *SqliteRosterRepository {
	return &SqliteRosterRepository{DB: db}
}

// Return all students as stops. Students without stored coordinates come
// back unresolved.
func (s *SqliteRosterRepository) ListStops(ctx context.Context) ([]domain.Stop, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite roster repository: DB is nil")
	}

	query := `
	SELECT
		student_id,
		name,
		address,
		lat,
		lon
	FROM students
	ORDER BY student_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stops: query students table: %w", err)
	}
	defer rows.Close()

	stops := make([]domain.Stop, 0, 64)
	for rows.Next() {
		var (
			id       int
			name     string
			address  string
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(&id, &name, &address, &lat, &lon); err != nil {
			return nil, fmt.Errorf("list stops: scan row: %w", err)
		}

		var coords *domain.Coordinates
		if lat.Valid && lon.Valid {
			coords = &domain.Coordinates{Lon: lon.Float64, Lat: lat.Float64}
		}
		stop := domain.NewStop(id, name, coords)
		stop.Address = address
		stops = append(stops, stop)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stops: row iteration: %w", err)
	}

	return stops, nil
}

// Return the fleet ordered by bus id.
func (s *SqliteRosterRepository) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite roster repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT bus_id, capacity FROM buses ORDER BY bus_id;`)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: query buses table: %w", err)
	}
	defer rows.Close()

	vehicles := make([]domain.Vehicle, 0, 16)
	for rows.Next() {
		var id, capacity int
		if err := rows.Scan(&id, &capacity); err != nil {
			return nil, fmt.Errorf("list vehicles: scan row: %w", err)
		}
		vehicles = append(vehicles, domain.NewVehicle(id, capacity))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicles: row iteration: %w", err)
	}

	return vehicles, nil
}

// SetCoordinates stores geocoded coordinates for a student so later runs
// skip the lookup.
func (s *SqliteRosterRepository) SetCoordinates(ctx context.Context, studentID int, c domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("sqlite roster repository: DB is nil")
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE students SET lat = ?, lon = ? WHERE student_id = ?;`, c.Lat, c.Lon, studentID)
	if err != nil {
		return fmt.Errorf("set coordinates student_id=%d: %w", studentID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set coordinates student_id=%d: %w", studentID, err)
	}
	if n == 0 {
		return fmt.Errorf("set coordinates student_id=%d: %w", studentID, domain.ErrNotFound)
	}
	return nil
}
