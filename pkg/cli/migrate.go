package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/defmon-lab/argos/pkg/cli/config"
)

func cmdMigrate() *cli.Command {
	var (
		fileCfg     config.File
		databaseCfg config.Database
	)

	flags := joinFlags(
		fileCfg.Flags(),
		databaseCfg.Flags(),
	)

	return &cli.Command{
		Name:  "migrate",
		Usage: "Run monitor database schema migrations",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			var serverCfg config.Server
			var directoryCfg config.Directory
			if err := fileCfg.Apply(&serverCfg, &databaseCfg, &directoryCfg); err != nil {
				return err
			}
			if !databaseCfg.IsConfigured() {
				return goerr.New("database DSN is required for migrations")
			}

			pg, err := databaseCfg.ConfigurePostgres(ctx)
			if err != nil {
				return err
			}
			defer pg.Close()

			if err := pg.Migrate(ctx); err != nil {
				return err
			}

			ctxlog.From(ctx).Info("Migrations complete")
			return nil
		},
	}
}
