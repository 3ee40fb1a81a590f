package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/defmon-lab/argos/pkg/cli/config"
	controller "github.com/defmon-lab/argos/pkg/controller/http"
	"github.com/defmon-lab/argos/pkg/usecase"
)

func cmdServe() *cli.Command {
	var (
		fileCfg      config.File
		serverCfg    config.Server
		databaseCfg  config.Database
		directoryCfg config.Directory
	)

	flags := joinFlags(
		fileCfg.Flags(),
		serverCfg.Flags(),
		databaseCfg.Flags(),
		directoryCfg.Flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if err := fileCfg.Apply(&serverCfg, &databaseCfg, &directoryCfg); err != nil {
				return err
			}
			if serverCfg.Addr == "" {
				serverCfg.Addr = config.DefaultAddr
			}

			logger.Info("Starting argos server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("database", databaseCfg),
				slog.Any("directory", directoryCfg),
			)

			repo, err := databaseCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			directoryClient := directoryCfg.Configure(ctx)

			defectUC := usecase.NewDefect(repo)
			userUC := usecase.NewUser(repo, directoryClient)

			server, err := controller.NewServer(ctx, serverCfg.Addr, defectUC, userUC)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
