package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brgysanroque/registry/internal/account"
	"github.com/brgysanroque/registry/internal/auth"
	"github.com/brgysanroque/registry/internal/db"
	"github.com/brgysanroque/registry/internal/util"
)

// seedaccount creates an account directly in the database, bypassing the
// signup confirmation code. Useful for bootstrapping the first admin.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	_ = godotenv.Load()

	var (
		email    = flag.String("email", "", "account email")
		password = flag.String("password", "", "account password")
		role     = flag.String("role", account.RoleViewer, "account role (admin or viewer)")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		usage()
		os.Exit(1)
	}

	if err := util.ValidateEmail(*email); err != nil {
		log.Fatal().Err(err).Msg("invalid email")
	}
	if err := util.ValidatePassword(*password); err != nil {
		log.Fatal().Err(err).Msg("invalid password")
	}
	if *role != account.RoleAdmin && *role != account.RoleViewer {
		log.Fatal().Str("role", *role).Msg("role must be admin or viewer")
	}

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("set DB_DSN or DATABASE_URL")
	}

	ctx := context.Background()

	if err := db.Migrate(ctx, dsn); err != nil {
		log.Fatal().Err(err).Msg("could not run migrations")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to the database")
	}
	defer pool.Close()

	hash, err := auth.Hash(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("could not hash password")
	}

	repo := account.NewRepository(pool)
	created, err := repo.Insert(ctx, account.Account{
		ID:           uuid.New(),
		Email:        *email,
		PasswordHash: hash,
		Role:         *role,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("could not create account")
	}

	fmt.Printf("created %s account %s (%s)\n", created.Role, created.Email, created.ID)
}

func usage() {
	fmt.Fprintln(os.Stderr, "seedaccount creates a registry account directly in the database")
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  seedaccount --email admin@brgy.ph --password secret123 --role admin")
}
