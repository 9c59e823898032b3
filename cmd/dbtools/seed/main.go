// cmd/dbtools/seed/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/mailthemes/internal/config"
	"github.com/codr1/mailthemes/internal/db"
	"github.com/codr1/mailthemes/internal/models"
	"github.com/codr1/mailthemes/internal/themes"
)

// Publishes the curated themes to the marketplace under one owner. With -file
// the themes are read from disk instead of the embedded list.
func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to config file")
		owner      = flag.String("owner", "curated", "User id that owns the seeded themes")
		file       = flag.String("file", "", "Themes file to read instead of the embedded list")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created, total, err := seed(ctx, database, *owner, *file)
	if err != nil {
		log.Fatal().Err(err).Str("owner", *owner).Msg("Seeding failed")
	}
	log.Info().Str("owner", *owner).Int("created", created).Int("total", total).Msg("Seeded public themes")
}

func seed(ctx context.Context, database *db.DB, owner, path string) (created, total int, err error) {
	seeds, err := loadSeeds(path)
	if err != nil {
		return 0, 0, err
	}
	svc := themes.NewService(database.Queries, themes.WithTransactions(database))
	created, err = svc.SeedPublicThemes(ctx, owner, seeds)
	return created, len(seeds), err
}

func loadSeeds(path string) ([]models.Theme, error) {
	if path == "" {
		return db.ParseThemesFile()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open themes file: %w", err)
	}
	defer f.Close()
	return db.ParseThemes(f)
}
