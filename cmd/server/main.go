package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bus-route-service/internal/adapters/repositories"
	"bus-route-service/internal/api"
	"bus-route-service/internal/api/handlers"
	"bus-route-service/internal/app"
	"bus-route-service/internal/config"
	"bus-route-service/internal/platform/db"
	"bus-route-service/internal/platform/obs"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, ORS, caches) behind ports and starts the HTTP server.
func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	obs.RegisterDefault()

	local, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer local.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(local, cfg.SeedPath); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := app.NewProviders(ctx, cfg, local)
	if err != nil {
		log.Fatal(err)
	}
	defer providers.Close()

	roster := repositories.NewSqliteRosterRepository(local)
	router := api.NewRouter(api.Deps{
		Roster: handlers.RosterHandler{Stops: roster, Vehicles: roster},
		Plans: handlers.PlanHandler{
			Stops:    roster,
			Vehicles: roster,
			Geocoder: providers.Geocoder,
			Provider: providers.Matrix,
			Defaults: handlers.PlanDefaults{
				Depot:        app.Depot(cfg),
				DepotAddress: cfg.Depot.Address,
				Profile:      cfg.Profile,
				Solver:       app.SolverOptions(cfg),
				Geocode:      app.GeocodeOptions(cfg),
				Matrix:       app.MatrixOptions(cfg),
			},
		},
	})

	// Timeouts are tuned for cold-cache route planning (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening addr=:%s profile=%s cache=%s", cfg.Port, cfg.Profile, cfg.Cache.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	case <-ctx.Done():
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}
}

func initAndSeed(db *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		log.Printf("No seed file at %s (skipping seed)", seedPath)
		return nil
	}
	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
