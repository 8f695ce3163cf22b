package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexivanou/weather-dashboard/internal/config"
	"github.com/alexivanou/weather-dashboard/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver for database/sql
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DriverName returns the database/sql driver used for the configured type
func DriverName(cfg config.DBConfig) string {
	if cfg.IsSQLite() {
		return "sqlite3"
	}
	return "pgx"
}

// Connect creates a database connection based on configuration using sqlx
func Connect(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, DriverName(cfg), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Specific settings for SQLite to enable Foreign Keys
	if cfg.IsSQLite() {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return db, nil
}

// NewMigrator builds a migrate instance over the embedded schema for the
// configured database, reusing the open connection
func NewMigrator(db *sqlx.DB, cfg config.DBConfig) (*migrate.Migrate, error) {
	dir := "postgres"
	if cfg.IsSQLite() {
		dir = "sqlite"
	}

	src, err := iofs.New(migrations.FS, dir)
	if err != nil {
		return nil, fmt.Errorf("could not open embedded migrations: %w", err)
	}

	var (
		driver database.Driver
		name   string
	)
	if cfg.IsSQLite() {
		// Use driver instance directly to avoid DSN parsing issues with in-memory SQLite
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		name = "sqlite3"
	} else {
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
		name = "postgres"
	}
	if err != nil {
		return nil, fmt.Errorf("could not create %s driver: %w", name, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, name, driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// Migrate applies all pending migrations
func Migrate(db *sqlx.DB, cfg config.DBConfig) error {
	m, err := NewMigrator(db, cfg)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
