package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Rrens/shop-assistant/internal/config"
	"github.com/Rrens/shop-assistant/internal/repository/postgres"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of migrating up")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	dir, err := filepath.Abs(cfg.Database.MigrationsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid migrations directory")
	}
	source := postgres.MigrationSource(dir)

	fmt.Printf("Migrating %s:%d/%s from %s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Database, dir)

	if *down > 0 {
		err = postgres.RollbackMigrations(cfg.Database.DSN(), source, *down)
	} else {
		err = postgres.RunMigrations(cfg.Database.DSN(), source)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
