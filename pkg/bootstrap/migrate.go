package bootstrap

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"inboxai/internal/logger"
)

// RunPostgresMigrations applies all pending file-based migrations against db.
// A database already at the latest version is not an error.
func RunPostgresMigrations(db *sql.DB, migrationsDir string, log logger.Logger) error {
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsDir),
		"postgres", driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Infow("Database migrations applied", "dir", migrationsDir)
	return nil
}
