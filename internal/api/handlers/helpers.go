package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"bus-route-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidModel), errors.Is(err, domain.ErrGeocodeFailure):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCapacityInfeasible), errors.Is(err, domain.ErrNoSolution):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMatrixFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not found")
}
