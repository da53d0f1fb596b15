package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

//go:embed sql/*.sql
var files embed.FS

// sentinelTable is the table whose presence means the schema has been applied at least once.
const sentinelTable = "public.bookings"

// Migrator applies the embedded schema migrations to a PostgreSQL database.
type Migrator struct {
	db  *sql.DB
	log zerolog.Logger
	m   *migrate.Migrate
}

// New prepares a migrator over an open database handle.
func New(db *sql.DB, log zerolog.Logger) (*Migrator, error) {
	src, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}
	drv, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("open migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", drv)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return &Migrator{db: db, log: log.With().Str("component", "database").Logger(), m: m}, nil
}

// SchemaExists reports whether the sentinel table is present.
func SchemaExists(ctx context.Context, db *sql.DB) (bool, error) {
	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelTable).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check sentinel table: %w", err)
	}
	return exists, nil
}

// Up applies all pending migrations. Running it against an up-to-date schema is a no-op.
func (mg *Migrator) Up(ctx context.Context, dbHost string) error {
	start := time.Now()
	mg.log.Info().Str("event", "db_migration_start").Str("status", "in_progress").Str("db_host", dbHost).Send()

	err := mg.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info().
			Str("event", "db_migration_skip").
			Str("status", "success").
			Str("db_host", dbHost).
			Dur("duration_ms", time.Since(start)).
			Msg("schema already up to date")
		return nil
	}
	if err != nil {
		mg.log.Error().
			Str("event", "db_migration_failed").
			Str("status", "error").
			Err(err).
			Str("db_host", dbHost).
			Dur("duration_ms", time.Since(start)).
			Send()
		return fmt.Errorf("migrate up: %w", err)
	}

	version, _, _ := mg.m.Version()
	mg.log.Info().
		Str("event", "db_migration_success").
		Str("status", "success").
		Uint("version", version).
		Str("db_host", dbHost).
		Dur("duration_ms", time.Since(start)).
		Send()
	return nil
}

// Down rolls back the given number of migrations.
func (mg *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive")
	}
	if err := mg.m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	mg.log.Info().Str("event", "db_migration_down").Int("steps", steps).Send()
	return nil
}

// Version returns the applied schema version. A database without migrations reports version 0.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}
