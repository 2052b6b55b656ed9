package config_test

import (
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/tobsdb/tabq/internal/auth"
	. "github.com/tobsdb/tabq/internal/config"
	"github.com/tobsdb/tabq/internal/source"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"
)

const sample_config = `
port: 9000
schema: schema.tdb
items_per_page: 25
log:
  level: debug
users:
  - name: alice
    password: secret
    role: exporter
  - name: bob
    password: hunter2
tables:
  inventory:
    source:
      kind: csv
      path: data/inventory.csv
  remote_drugs:
    source:
      path: /abs/drugs.json
    remote:
      url: ws://other:7085
      table: drugs
`

func TestLoadDefaults(t *testing.T) {
	dir := fs.NewDir(t, "config")
	defer dir.Remove()

	cfg, err := Load(dir.Join("missing.yaml"), nil)
	assert.ErrorContains(t, err, "error reading config file")
	assert.Assert(t, cfg == nil)

	cfg, err = Load("", nil)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Port, DEFAULT_PORT)
	assert.Equal(t, cfg.ItemsPerPage, 10)
	assert.Equal(t, cfg.RemoteDebounceMs, DEFAULT_REMOTE_DELAY)
	assert.Equal(t, cfg.Log.Level, "info")
	assert.Equal(t, len(cfg.Tables), 0)
}

func TestLoadFile(t *testing.T) {
	dir := fs.NewDir(t, "config", fs.WithFile("tabq.yaml", sample_config))
	defer dir.Remove()

	cfg, err := Load(dir.Join("tabq.yaml"), nil)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Port, 9000)
	assert.Equal(t, cfg.ItemsPerPage, 25)
	assert.Equal(t, cfg.Log.Level, "debug")
	assert.Equal(t, cfg.Log.MaxBackups, DEFAULT_LOG_BACKUPS)
	assert.Equal(t, cfg.Schema, filepath.Join(dir.Path(), "schema.tdb"))

	inventory := cfg.Tables["inventory"]
	assert.Equal(t, inventory.Source.Kind, source.KindCSV)
	assert.Equal(t, inventory.Source.Path, filepath.Join(dir.Path(), "data/inventory.csv"))
	assert.Assert(t, inventory.Remote == nil)

	remote := cfg.Tables["remote_drugs"]
	assert.Equal(t, remote.Source.Path, "/abs/drugs.json")
	assert.Equal(t, remote.Remote.URL, "ws://other:7085")
	assert.Equal(t, remote.Remote.Table, "drugs")

	users, err := cfg.BuildUsers()
	assert.NilError(t, err)
	assert.Equal(t, len(users), 2)
	assert.Equal(t, users[0].Role, auth.UserRoleExporter)
	assert.Equal(t, users[1].Role, auth.UserRoleViewer)
	assert.Assert(t, users.Validate("alice", "secret") == users[0])
}

func TestLoadPrecedence(t *testing.T) {
	dir := fs.NewDir(t, "config", fs.WithFile("tabq.yaml", "port: 9000\nitems_per_page: 25\n"))
	defer dir.Remove()

	t.Setenv("TABQ_PORT", "9100")
	t.Setenv("TABQ_LOG_LEVEL", "none")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 0, "")
	flags.Int("items-per-page", 0, "")
	flags.String("log-level", "", "")
	assert.NilError(t, flags.Parse([]string{"--items-per-page", "50"}))

	cfg, err := Load(dir.Join("tabq.yaml"), flags)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Port, 9100)
	assert.Equal(t, cfg.ItemsPerPage, 50)
	assert.Equal(t, cfg.Log.Level, "none")
}

func TestValidate(t *testing.T) {
	for name, c := range map[string]struct {
		content string
		err     string
	}{
		"page size": {"items_per_page: 0\n", "items_per_page must be positive"},
		"log level": {"log:\n  level: loud\n", "Invalid log level: loud"},
		"role":      {"users:\n  - name: x\n    role: root\n", "user x: Invalid user role: root"},
		"source":    {"tables:\n  a:\n    source:\n      kind: csv\n", "table a: source needs a path or dsn"},
		"remote":    {"tables:\n  a:\n    source:\n      path: a.csv\n    remote:\n      table: b\n", "table a: remote needs a url"},
	} {
		t.Run(name, func(t *testing.T) {
			dir := fs.NewDir(t, "config", fs.WithFile("tabq.yaml", c.content))
			defer dir.Remove()
			_, err := Load(dir.Join("tabq.yaml"), nil)
			assert.ErrorContains(t, err, c.err)
		})
	}
}
