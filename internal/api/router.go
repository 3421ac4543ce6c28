package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"bus-route-service/internal/api/handlers"
	"bus-route-service/internal/platform/obs"
)

type Deps struct {
	Roster handlers.RosterHandler
	Plans  handlers.PlanHandler
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	r := mux.NewRouter()

	roster := deps.Roster
	plans := deps.Plans

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.Handle("/metrics", obs.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/stops", roster.ListStops).Methods(http.MethodGet)
	r.HandleFunc("/vehicles", roster.ListVehicles).Methods(http.MethodGet)
	r.HandleFunc("/plans", plans.Plan).Methods(http.MethodPost)

	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)
	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)

	return requestIDMiddleware(loggingMiddleware(r, r))
}
