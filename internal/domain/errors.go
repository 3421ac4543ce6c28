package domain

import "errors"

var (
	// A single address could not be resolved. Stop-level, never fatal on its own.
	ErrGeocodeFailure = errors.New("geocode failure")
	// The distance provider could not produce a complete matrix. Fatal.
	ErrMatrixFailure = errors.New("matrix failure")
	// Aggregate demand exceeds aggregate capacity. Detected before search.
	ErrCapacityInfeasible = errors.New("capacity infeasible")
	// Construction could not place every stop within per-route capacity.
	ErrNoSolution = errors.New("no solution")
	// Model inputs are malformed (shape mismatch, negative values).
	ErrInvalidModel = errors.New("invalid model")
	// A lookup found nothing.
	ErrNotFound = errors.New("not found")
)
