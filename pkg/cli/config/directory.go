package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/defmon-lab/argos/pkg/domain/interfaces"
	"github.com/defmon-lab/argos/pkg/service/directory"
)

// Directory holds user-directory service configuration
type Directory struct {
	BaseURL string
	Timeout time.Duration
}

// Flags returns CLI flags for Directory configuration
func (d *Directory) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "directory-url",
			Usage:       "User-directory lookup URL; the userId is appended to it",
			Category:    "Directory",
			Sources:     cli.EnvVars("ARGOS_DIRECTORY_URL"),
			Destination: &d.BaseURL,
		},
		&cli.DurationFlag{
			Name:        "directory-timeout",
			Usage:       "Per-lookup timeout for the user-directory service",
			Category:    "Directory",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("ARGOS_DIRECTORY_TIMEOUT"),
			Destination: &d.Timeout,
		},
	}
}

// IsConfigured checks if a directory URL was provided
func (d *Directory) IsConfigured() bool {
	return d.BaseURL != ""
}

// Configure creates the directory client. Without a URL it returns nil;
// enrichment then degrades every lookup to a bare userId record.
func (d *Directory) Configure(ctx context.Context) interfaces.DirectoryClient {
	if !d.IsConfigured() {
		ctxlog.From(ctx).Warn("User-directory URL is not set; profile enrichment is disabled")
		return nil
	}
	return directory.New(d.BaseURL, directory.WithTimeout(d.Timeout))
}

// LogValue returns structured log value
func (d Directory) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("baseURL", d.BaseURL),
		slog.Duration("timeout", d.Timeout),
	)
}
