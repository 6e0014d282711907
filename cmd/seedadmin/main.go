// Command seedadmin creates or updates a user and grants it admin access.
// There is no UI for this; run it once per stand manager.
//
//	go run ./cmd/seedadmin -email leder@klubb.no -password hemmelig
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/likbrus/likbrus.github.io/internal/config"
	"github.com/likbrus/likbrus.github.io/internal/infra"
	"github.com/likbrus/likbrus.github.io/internal/model"
	"github.com/likbrus/likbrus.github.io/internal/repository"
	"github.com/likbrus/likbrus.github.io/internal/service"

	"github.com/rs/zerolog/log"
)

func main() {
	email := flag.String("email", os.Getenv("SEED_EMAIL"), "user email")
	password := flag.String("password", os.Getenv("SEED_PASSWORD"), "user password")
	admin := flag.Bool("admin", true, "grant admin access")
	flag.Parse()

	if *email == "" || len(*password) < 4 {
		fmt.Fprintln(os.Stderr, "usage: seedadmin -email <email> -password <min 4 chars> [-admin=false]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	closer := infra.SetupLogger(cfg)
	defer closer.Close()

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	hash, err := service.HashPassword(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	if err := users.Upsert(ctx, &model.User{Email: *email, PasswordHash: hash}); err != nil {
		log.Fatal().Err(err).Msg("user upsert failed")
	}
	u, err := users.FindByEmail(ctx, *email)
	if err != nil {
		log.Fatal().Err(err).Msg("user lookup failed")
	}

	admins := repository.NewAdminRepository(db)
	if *admin {
		err = admins.Grant(ctx, u.ID)
	} else {
		err = admins.Revoke(ctx, u.ID)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("admin marker update failed")
	}
	log.Info().Str("email", u.Email).Str("id", u.ID.String()).Bool("admin", *admin).Msg("user seeded")
}
