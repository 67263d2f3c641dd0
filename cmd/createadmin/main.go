// Command createadmin creates an admin account for the back-office.
//
//	createadmin -email ops@example.com -name "Ops" -role ADMIN
//
// The password is read from ADMIN_PASSWORD.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/toystore_api/internal/config"
	"github.com/GTDGit/toystore_api/internal/database"
	"github.com/GTDGit/toystore_api/internal/repository"
	"github.com/GTDGit/toystore_api/internal/service"
	"github.com/GTDGit/toystore_api/internal/utils"
)

func main() {
	email := flag.String("email", "", "admin email")
	name := flag.String("name", "", "display name")
	role := flag.String("role", "ADMIN", "ADMIN or SUPER_ADMIN")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	if err := database.RunMigrations(db.DB, cfg.DB.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	jwtManager, err := utils.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("jwt setup failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := service.NewAdminAuthService(repository.NewAdminUserRepository(db), jwtManager)
	user, err := svc.CreateAdmin(ctx, *email, os.Getenv("ADMIN_PASSWORD"), *name, *role)
	if err != nil {
		if ae, ok := utils.AsAppError(err); ok {
			fmt.Fprintln(os.Stderr, ae.Message)
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("create admin failed")
	}

	log.Info().Int("id", user.ID).Str("email", user.Email).Str("role", user.Role).Msg("Admin created")
}
