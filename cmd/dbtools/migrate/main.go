// cmd/dbtools/migrate/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/mailthemes/internal/db"
)

func main() {
	var (
		dbPath  = flag.String("db", "", "Path to SQLite database")
		command = flag.String("command", "", "Command to run (up, down, steps, force, version)")
		count   = flag.Int("n", 0, "Step count for steps, or version for force")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *dbPath == "" || *command == "" {
		flag.Usage()
		os.Exit(1)
	}

	absDB, err := filepath.Abs(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid database path")
	}
	if err := os.MkdirAll(filepath.Dir(absDB), 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create database directory")
	}

	database, err := db.Open(absDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	logger := log.With().Str("db", absDB).Str("command", *command).Logger()

	if err := run(database, *command, *count); err != nil {
		logger.Fatal().Err(err).Msg("Migration failed")
	}

	version, dirty, err := database.MigrationVersion()
	if err != nil {
		logger.Fatal().Err(err).Msg("Get version failed")
	}
	logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("Migration complete")
}

func run(database *db.DB, command string, n int) error {
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		return database.MigrateDown()
	case "steps":
		if n == 0 {
			return fmt.Errorf("steps requires -n")
		}
		return database.MigrateSteps(n)
	case "force":
		return database.ForceVersion(n)
	case "version":
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
