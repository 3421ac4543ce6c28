package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"bus-route-service/internal/adapters/repositories"
	"bus-route-service/internal/config"
	"bus-route-service/internal/platform/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	skipSQLite := flag.Bool("skip-sqlite", false, "do not touch the local SQLite store")
	skipSeed := flag.Bool("skip-seed", false, "create the schema without seeding students and buses")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if databaseURL := strings.TrimSpace(config.Get("DATABASE_URL", "")); databaseURL != "" {
		pg, err := db.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pg.Close()

		log.Println("Initializing postgres cache schema...")
		if err := repositories.InitPostgresCacheSchema(ctx, pg); err != nil {
			log.Fatalf("postgres schema initialization failed: %v", err)
		}
		log.Println("Postgres cache schema ready.")
	} else {
		log.Println("DATABASE_URL not set (skipping postgres cache schema)")
	}

	if *skipSQLite {
		return
	}

	local, err := db.OpenSQLite(config.Get("DB_PATH", "data/app.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer local.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/roster.json")
	if *skipSeed {
		seedPath = ""
	}
	initAndSeed(local, seedPath)
}

func initAndSeed(db *sql.DB, seedPath string) {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(db); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if seedPath == "" {
		return
	}

	log.Println("Seeding database...")
	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
