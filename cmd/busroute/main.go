package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bus-route-service/internal/adapters/records"
	"bus-route-service/internal/adapters/repositories"
	"bus-route-service/internal/app"
	"bus-route-service/internal/config"
	"bus-route-service/internal/platform/db"
	"bus-route-service/internal/ports"
	"bus-route-service/internal/report"
	"bus-route-service/internal/services"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	stopsPath := flag.String("stops", "", "students CSV (id,name,lat,lon[,address]); defaults to the SQLite store")
	busesPath := flag.String("buses", "", "buses CSV (id,capacity); defaults to the SQLite store")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	budget := flag.Duration("time-budget", 0, "override the solver time budget")
	flag.Parse()

	if err := run(*configPath, *stopsPath, *busesPath, *asJSON, *budget); err != nil {
		log.Fatal(err)
	}
}

func run(configPath, stopsPath, busesPath string, asJSON bool, budget time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if budget > 0 {
		cfg.Solver.TimeBudget = budget
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var local *sql.DB
	if stopsPath == "" || busesPath == "" || cfg.Cache.Backend == config.CacheSqlite {
		local, err = db.OpenSQLite(cfg.DBPath)
		if err != nil {
			return err
		}
		defer local.Close()
		if err := repositories.InitSchema(local); err != nil {
			return err
		}
	}

	var stopSource ports.StopSource
	var vehicleSource ports.VehicleSource
	if local != nil {
		roster := repositories.NewSqliteRosterRepository(local)
		stopSource, vehicleSource = roster, roster
	}
	if stopsPath != "" {
		stopSource = records.CSVStopSource{Path: stopsPath}
	}
	if busesPath != "" {
		vehicleSource = records.CSVVehicleSource{Path: busesPath}
	}

	stops, err := stopSource.ListStops(ctx)
	if err != nil {
		return err
	}
	vehicles, err := vehicleSource.ListVehicles(ctx)
	if err != nil {
		return err
	}

	providers, err := app.NewProviders(ctx, cfg, local)
	if err != nil {
		return err
	}
	defer providers.Close()

	res, err := services.PlanRoutes(ctx, app.PlanRequest(cfg, stops, vehicles), providers.Geocoder, providers.Matrix)
	if err != nil {
		return fmt.Errorf("busroute: %w", err)
	}

	log.Printf(
		"termination=%s distance=%d initial=%d excluded=%d",
		res.Result.Termination, res.Result.Solution.TotalDistance, res.Result.Stats.InitialDistance, len(res.Excluded),
	)

	if asJSON {
		return report.WriteJSON(os.Stdout, res.Report)
	}
	return report.WriteText(os.Stdout, res.Report)
}
