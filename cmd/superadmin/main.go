// Command superadmin creates the superadmin account, or promotes an existing account with the same email.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"sheetdash/internal/config"
	"sheetdash/internal/database"
	"sheetdash/internal/database/migration"
	"sheetdash/internal/logging"
	"sheetdash/internal/repository/postgres"
	"sheetdash/internal/service"
)

func main() {
	cfg := config.Load()
	logging.Setup(os.Stdout, cfg.Location())

	if err := run(cfg, os.Getenv("SUPERADMIN_NAME"), os.Getenv("SUPERADMIN_EMAIL")); err != nil {
		slog.Error("superadmin_seed_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, name, email string) error {
	if name == "" || email == "" {
		return errors.New("SUPERADMIN_NAME and SUPERADMIN_EMAIL are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, cfg.Database.Host); err != nil {
		return err
	}

	// Seeding never deletes uploads, so no upload service is wired.
	svc := service.NewAccountService(postgres.NewAccountPostgres(db), postgres.NewUploadPostgres(db), nil)

	acc, err := svc.EnsureSuperadmin(ctx, name, email)
	if err != nil {
		return err
	}
	slog.Info("superadmin_ready", "id", acc.ID, "email", acc.Email)
	return nil
}
