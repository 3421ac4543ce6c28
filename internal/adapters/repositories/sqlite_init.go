package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the SQLite database schema: the local store of students and
// buses plus the per-machine geocode and distance caches.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createStudentsQuery := `
	CREATE TABLE IF NOT EXISTS students (
		student_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		lat REAL,
		lon REAL
	);
	`

	createBusesQuery := `
	CREATE TABLE IF NOT EXISTS buses (
		bus_id INTEGER PRIMARY KEY,
		capacity INTEGER NOT NULL CHECK (capacity >= 0)
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
        profile TEXT NOT NULL,
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        distance_meters REAL NOT NULL,
        PRIMARY KEY (profile, origin, destination)
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon REAL NOT NULL,
        lat REAL NOT NULL
    );
	`

	statements := []string{
		createStudentsQuery,
		createBusesQuery,
		createDistanceCacheQuery,
		createGeocodeCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type StudentSeed struct {
	StudentID int      `json:"student_id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
}

type BusSeed struct {
	BusID    int `json:"bus_id"`
	Capacity int `json:"capacity"`
}

type Seed struct {
	Students []StudentSeed `json:"students"`
	Buses    []BusSeed     `json:"buses"`
}

// Populate the database with students and buses from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed: parse json: %w", err)
	}

	for i, s := range data.Students {
		if s.StudentID <= 0 {
			return fmt.Errorf("seed: invalid student_id at index %d: %d", i+1, s.StudentID)
		}
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("seed: student at index %d: name cannot be empty", i+1)
		}
		if (s.Lat == nil) != (s.Lon == nil) {
			return fmt.Errorf("seed: student_id=%d: lat and lon must be given together", s.StudentID)
		}
	}
	for i, b := range data.Buses {
		if b.BusID <= 0 {
			return fmt.Errorf("seed: invalid bus_id at index %d: %d", i+1, b.BusID)
		}
		if b.Capacity < 0 {
			return fmt.Errorf("seed: bus_id=%d: capacity must be non-negative", b.BusID)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer tx.Rollback()

	studentStmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO students (
		student_id,
		name,
		address,
		lat,
		lon
	)
	VALUES (?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed: prepare student insert: %w", err)
	}
	defer studentStmt.Close()

	for _, s := range data.Students {
		if _, err := studentStmt.Exec(s.StudentID, strings.TrimSpace(s.Name), strings.TrimSpace(s.Address), s.Lat, s.Lon); err != nil {
			return fmt.Errorf("seed: insert student_id=%d: %w", s.StudentID, err)
		}
	}

	busStmt, err := tx.Prepare(`INSERT OR REPLACE INTO buses (bus_id, capacity) VALUES (?, ?);`)
	if err != nil {
		return fmt.Errorf("seed: prepare bus insert: %w", err)
	}
	defer busStmt.Close()

	for _, b := range data.Buses {
		if _, err := busStmt.Exec(b.BusID, b.Capacity); err != nil {
			return fmt.Errorf("seed: insert bus_id=%d: %w", b.BusID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
