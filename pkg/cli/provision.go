package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/defmon-lab/argos/pkg/cli/config"
	"github.com/defmon-lab/argos/pkg/domain/model"
	"github.com/defmon-lab/argos/pkg/domain/types"
)

func cmdProvision() *cli.Command {
	var (
		fileCfg     config.File
		databaseCfg config.Database

		projectName  string
		groupName    string
		language     string
		databaseName string
	)

	flags := joinFlags(
		fileCfg.Flags(),
		databaseCfg.Flags(),
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "project",
				Usage:       "Project name to register",
				Required:    true,
				Destination: &projectName,
			},
			&cli.StringFlag{
				Name:        "group",
				Usage:       "Group the project belongs to",
				Required:    true,
				Destination: &groupName,
			},
			&cli.StringFlag{
				Name:        "language",
				Usage:       "Language analyzed in the project (CPP, JAVA, ...)",
				Destination: &language,
			},
			&cli.StringFlag{
				Name:        "database",
				Usage:       "Schema name for the project's account and defect tables (defaults to the project name)",
				Destination: &databaseName,
			},
		},
	)

	return &cli.Command{
		Name:  "provision",
		Usage: "Register a project and create its schema",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			var serverCfg config.Server
			var directoryCfg config.Directory
			if err := fileCfg.Apply(&serverCfg, &databaseCfg, &directoryCfg); err != nil {
				return err
			}
			if !databaseCfg.IsConfigured() {
				return goerr.New("database DSN is required for provisioning")
			}
			if databaseName == "" {
				databaseName = projectName
			}

			pg, err := databaseCfg.ConfigurePostgres(ctx)
			if err != nil {
				return err
			}
			defer pg.Close()

			db := types.DatabaseName(databaseName)
			if err := pg.ProvisionProjectSchema(ctx, db); err != nil {
				return err
			}
			if err := pg.RegisterProject(ctx, &model.ProjectInfo{
				ProjectName:  types.ProjectName(projectName),
				GroupName:    types.GroupName(groupName),
				Language:     language,
				DatabaseName: db,
			}); err != nil {
				return err
			}

			ctxlog.From(ctx).Info("Project provisioned",
				"project", projectName,
				"group", groupName,
				"database", databaseName,
			)
			return nil
		},
	}
}
