// cmd/dbtools/token/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/mailthemes/internal/api/authz"
	"github.com/codr1/mailthemes/internal/config"
	"github.com/codr1/mailthemes/internal/db"
	dbgen "github.com/codr1/mailthemes/internal/db/generated"
	"github.com/codr1/mailthemes/internal/themes"
)

// Issues a bearer token for a user. With -connection it also makes sure the
// connection exists and, with -default, makes it the user's active one.
func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to config file")
		userID     = flag.String("user", "", "User id to issue the token for")
		connection = flag.String("connection", "", "Connection id to create for the user")
		email      = flag.String("email", "", "Connection email (default <connection>@example.com)")
		provider   = flag.String("provider", "google", "Connection provider id")
		setDefault = flag.Bool("default", false, "Make the connection the user's active connection")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *userID == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if *connection != "" {
		database, err := db.NewFromConfig(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open database")
		}
		defer database.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := ensureConnection(ctx, database, *userID, *connection, *email, *provider); err != nil {
			log.Fatal().Err(err).Str("connection_id", *connection).Msg("Failed to create connection")
		}
		if *setDefault {
			if err := themes.NewService(database.Queries, themes.WithTransactions(database)).SetActiveConnectionID(ctx, *userID, *connection); err != nil {
				log.Fatal().Err(err).Str("connection_id", *connection).Msg("Failed to set active connection")
			}
		}
	}

	tokens := authz.NewTokenService([]byte(cfg.Auth.SigningKey), cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	token, err := tokens.Issue(*userID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to issue token")
	}
	fmt.Println(token)
}

func ensureConnection(ctx context.Context, database *db.DB, userID, id, email, provider string) error {
	_, err := database.Queries.GetUserConnection(ctx, dbgen.GetUserConnectionParams{ID: id, UserID: userID})
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if email == "" {
		email = id + "@example.com"
	}
	return database.Queries.CreateConnection(ctx, dbgen.CreateConnectionParams{
		ID:         id,
		UserID:     userID,
		Email:      email,
		ProviderID: provider,
	})
}
