package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/tobsdb/tabq/internal/builder"
	"github.com/tobsdb/tabq/pkg"
)

type Kind string

const (
	KindJSON Kind = "json"
	KindYAML Kind = "yaml"
	KindCSV  Kind = "csv"
	KindSQL  Kind = "sql"
)

// Config says where a table's records come from.
type Config struct {
	Kind Kind   `koanf:"kind" json:"kind"`
	Path string `koanf:"path" json:"path"`

	// csv
	Delimiter string `koanf:"delimiter" json:"delimiter"`

	// sql
	Driver string `koanf:"driver" json:"driver"`
	DSN    string `koanf:"dsn" json:"dsn"`
	Query  string `koanf:"query" json:"query"`
}

// table is nil when records are loaded without a schema.
type loader func(ctx context.Context, cfg Config, table *builder.Table) ([]builder.Row, error)

var loaders = map[Kind]loader{
	KindJSON: loadJSON,
	KindYAML: loadYAML,
	KindCSV:  loadCSV,
	KindSQL:  loadSQL,
}

// kind falls back to the file extension when Kind is unset.
func (cfg Config) kind() Kind {
	if len(cfg.Kind) > 0 {
		return Kind(strings.ToLower(string(cfg.Kind)))
	}
	switch {
	case strings.HasSuffix(cfg.Path, ".json"):
		return KindJSON
	case strings.HasSuffix(cfg.Path, ".yaml"), strings.HasSuffix(cfg.Path, ".yml"):
		return KindYAML
	case strings.HasSuffix(cfg.Path, ".csv"), strings.HasSuffix(cfg.Path, ".tsv"):
		return KindCSV
	case len(cfg.DSN) > 0:
		return KindSQL
	}
	return ""
}

// Load reads every record of a dataset into memory. Untyped formats take
// their value types from table's fields when table is not nil.
func Load(ctx context.Context, cfg Config, table *builder.Table) ([]builder.Row, error) {
	kind := cfg.kind()
	load, ok := loaders[kind]
	if !ok {
		return nil, fmt.Errorf("unknown source kind %q", kind)
	}
	rows, err := load(ctx, cfg, table)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s source", kind)
	}
	pkg.DebugLog("loaded", len(rows), "rows from", kind, "source")
	return rows, nil
}

func readFile(path string) ([]byte, error) {
	if len(path) == 0 {
		return nil, errors.New("source path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading source file")
	}
	return data, nil
}
