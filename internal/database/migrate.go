package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sjperalta/modular-erp-api/pkg/logger"
	"go.uber.org/multierr"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrator applies the embedded schema migrations
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator opens a migrator for a postgres:// or postgresql:// URL
func NewMigrator(databaseURL string) (*Migrator, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrationURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize migrate: %w", err)
	}
	return &Migrator{m: m}, nil
}

// migrationURL switches the scheme to the pgx/v5 driver
func migrationURL(databaseURL string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(databaseURL, scheme) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, scheme)
		}
	}
	return databaseURL
}

// Up applies pending migrations. steps > 0 limits how many are applied.
func (mg *Migrator) Up(steps int) error {
	var err error
	if steps > 0 {
		err = mg.m.Steps(steps)
	} else {
		err = mg.m.Up()
	}
	return ignoreNoChange(err)
}

// Down rolls back steps migrations, or all of them when steps is 0
func (mg *Migrator) Down(steps int) error {
	var err error
	if steps > 0 {
		err = mg.m.Steps(-steps)
	} else {
		err = mg.m.Down()
	}
	return ignoreNoChange(err)
}

// Version reports the applied version and whether the last run left it dirty
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Close releases the source and database handles
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return multierr.Append(srcErr, dbErr)
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No migration changes to apply")
		return nil
	}
	return err
}

// Migrate applies every pending migration
func Migrate(databaseURL string) error {
	mg, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Up(0); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	version, _, err := mg.Version()
	if err != nil {
		return err
	}
	logger.Info("Database schema is up to date", "version", version)
	return nil
}
