package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/defmon-lab/argos/pkg/cli/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "argos.yml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestFileApply(t *testing.T) {
	file := &config.File{Path: writeConfig(t, `
addr: localhost:9999
database_dsn: postgres://argos@localhost/argos
directory_url: http://directory.example.com/search?uid=
`)}

	server := &config.Server{}
	database := &config.Database{}
	directory := &config.Directory{}
	gt.NoError(t, file.Apply(server, database, directory))

	gt.Equal(t, server.Addr, "localhost:9999")
	gt.Equal(t, database.DSN, "postgres://argos@localhost/argos")
	gt.Equal(t, directory.BaseURL, "http://directory.example.com/search?uid=")
}

func TestFileApplyDoesNotOverrideFlags(t *testing.T) {
	file := &config.File{Path: writeConfig(t, `
addr: localhost:9999
database_dsn: postgres://file@localhost/argos
`)}

	// Values already set by flags or environment stay untouched
	server := &config.Server{Addr: "localhost:4981"}
	database := &config.Database{DSN: "postgres://flag@localhost/argos"}
	directory := &config.Directory{}
	gt.NoError(t, file.Apply(server, database, directory))

	gt.Equal(t, server.Addr, "localhost:4981")
	gt.Equal(t, database.DSN, "postgres://flag@localhost/argos")
	gt.Equal(t, directory.BaseURL, "")
}

func TestFileApplyMissingFile(t *testing.T) {
	file := &config.File{}
	gt.NoError(t, file.Apply(&config.Server{}, &config.Database{}, &config.Directory{}))

	file.Path = filepath.Join(t.TempDir(), "nope.yml")
	err := file.Apply(&config.Server{}, &config.Database{}, &config.Directory{})
	gt.Error(t, err)
}
