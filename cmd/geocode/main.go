package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bus-route-service/internal/adapters/records"
	"bus-route-service/internal/adapters/repositories"
	"bus-route-service/internal/app"
	"bus-route-service/internal/config"
	"bus-route-service/internal/platform/db"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	in := flag.String("in", "", "CSV with an address column")
	out := flag.String("out", "", "output CSV with lat and lon columns")
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, *in, *out); err != nil {
		log.Fatal(err)
	}
}

func run(configPath, inPath, outPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.ORS.APIKey == "" {
		return errors.New("geocode: ORS_API_KEY is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var local *sql.DB
	if cfg.Cache.Backend == config.CacheSqlite {
		local, err = db.OpenSQLite(cfg.DBPath)
		if err != nil {
			return err
		}
		defer local.Close()
		if err := repositories.InitSchema(local); err != nil {
			return err
		}
	}

	providers, err := app.NewProviders(ctx, cfg, local)
	if err != nil {
		return err
	}
	defer providers.Close()

	src, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("geocode: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("geocode: %w", err)
	}
	defer dst.Close()

	stats, err := records.GeocodeTable(ctx, src, dst, providers.Geocoder.Resolve)
	if err != nil {
		return err
	}

	log.Printf("geocoded rows=%d resolved=%d failed=%d out=%s", stats.Rows, stats.Resolved, stats.Failed, outPath)
	return dst.Close()
}
