package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/defmon-lab/argos/pkg/domain/interfaces"
	"github.com/defmon-lab/argos/pkg/repository"
)

// Database holds monitor database configuration
type Database struct {
	DSN         string
	AutoMigrate bool
}

// Flags returns CLI flags for Database configuration
func (d *Database) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "database-dsn",
			Usage:       "Monitor database DSN (postgres://...)",
			Category:    "Database",
			Sources:     cli.EnvVars("ARGOS_DATABASE_DSN"),
			Destination: &d.DSN,
		},
		&cli.BoolFlag{
			Name:        "db-migrate",
			Usage:       "Run schema migrations at startup",
			Category:    "Database",
			Sources:     cli.EnvVars("ARGOS_DB_MIGRATE"),
			Destination: &d.AutoMigrate,
		},
	}
}

// IsConfigured checks if a database DSN was provided
func (d *Database) IsConfigured() bool {
	return d.DSN != ""
}

// Configure creates the repository. Without a DSN it falls back to the
// in-memory repository so the server can run for local development.
func (d *Database) Configure(ctx context.Context) (interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	if !d.IsConfigured() {
		logger.Warn("Using memory repository instead of a database. All data is lost on shutdown")
		return repository.NewMemory(), nil
	}

	pg, err := d.ConfigurePostgres(ctx)
	if err != nil {
		return nil, err
	}
	return pg, nil
}

// ConfigurePostgres opens the Postgres repository and optionally runs
// migrations.
func (d *Database) ConfigurePostgres(ctx context.Context) (*repository.Postgres, error) {
	pg, err := repository.NewPostgres(ctx, d.DSN)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to init database")
	}

	if d.AutoMigrate {
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, goerr.Wrap(err, "failed to migrate database")
		}
	}
	return pg, nil
}

// LogValue returns structured log value
func (d Database) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("configured", d.IsConfigured()),
		slog.Bool("autoMigrate", d.AutoMigrate),
	)
}
