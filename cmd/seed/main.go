package main

import (
	"database/sql"
	"errors"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/project-board/config"
	"github.com/oksasatya/project-board/pkg/helpers"
)

// Upserts the admin account from SEED_ADMIN_*. Run after migrations.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		logger.WithError(err).Fatal("failed to open db")
	}
	defer func() { _ = db.Close() }()

	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))
	if email == "" || len(cfg.SeedAdminPassword) < 6 {
		logger.Fatal("SEED_ADMIN_EMAIL and a SEED_ADMIN_PASSWORD of at least 6 characters are required")
	}
	hash, err := helpers.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		logger.WithError(err).Fatal("failed to hash password")
	}

	// roles are fixed at creation: an existing non-admin account is left untouched
	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name, role)
		VALUES ($1, $2, $3, 'admin')
		ON CONFLICT (lower(email)) DO UPDATE
		SET password_hash = EXCLUDED.password_hash, name = EXCLUDED.name, updated_at = now()
		WHERE users.role = 'admin'
		RETURNING id::text
	`, email, hash, cfg.SeedAdminName).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		logger.WithField("email", email).Fatal("account exists with role user; refusing to change its role")
	}
	if err != nil {
		logger.WithError(err).Fatal("failed to seed admin")
	}
	logger.WithField("id", id).WithField("email", email).Info("seeded admin")
}
