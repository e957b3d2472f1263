// cmd/seeduser/main.go creates or updates the admin account.
// Usage: SEED_EMAIL=... SEED_PASSWORD=... go run ./cmd/seeduser
package main

import (
	"context"
	"os"

	"arcadeorders/internal/config"
	"arcadeorders/internal/infra"
	"arcadeorders/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	email := envOr("SEED_EMAIL", "admin@arcade.local")
	password := envOr("SEED_PASSWORD", "admin1234")
	name := envOr("SEED_NAME", "Administrador")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}

	result := db.WithContext(context.Background()).Exec(`
		INSERT INTO users (id, email, name, password_hash, role, active)
		VALUES (?, ?, ?, ?, ?, TRUE)
		ON CONFLICT (email) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    name = EXCLUDED.name,
		    role = EXCLUDED.role,
		    active = TRUE,
		    updated_at = NOW()
	`, uuid.New(), email, name, string(hash), model.RoleAdmin)
	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("insert")
	}
	log.Info().Str("email", email).Msg("admin user created/updated")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
