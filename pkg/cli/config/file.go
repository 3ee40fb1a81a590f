package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// File points at an optional YAML configuration file whose values fill
// in flags that were not set on the command line or environment.
type File struct {
	Path string
}

// Flags returns CLI flags for the configuration file
func (f *File) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to a YAML configuration file",
			Sources:     cli.EnvVars("ARGOS_CONFIG"),
			Destination: &f.Path,
		},
	}
}

type fileValues struct {
	Addr         string `yaml:"addr"`
	DatabaseDSN  string `yaml:"database_dsn"`
	DirectoryURL string `yaml:"directory_url"`
}

// Apply loads the file (when set) and fills only the fields the flags
// left empty; explicit flags and environment variables win.
func (f *File) Apply(server *Server, database *Database, directory *Directory) error {
	if f.Path == "" {
		return nil
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", f.Path))
	}

	var values fileValues
	if err := yaml.Unmarshal(data, &values); err != nil {
		return goerr.Wrap(err, "failed to parse config file", goerr.V("path", f.Path))
	}

	if server.Addr == "" {
		server.Addr = values.Addr
	}
	if database.DSN == "" {
		database.DSN = values.DatabaseDSN
	}
	if directory.BaseURL == "" {
		directory.BaseURL = values.DirectoryURL
	}
	return nil
}
