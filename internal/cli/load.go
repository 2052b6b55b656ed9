package cli

import (
	"context"
	"fmt"

	"github.com/tobsdb/tabq/internal/builder"
	"github.com/tobsdb/tabq/internal/conn"
	"github.com/tobsdb/tabq/internal/source"
	"github.com/tobsdb/tabq/pkg/client"
)

// schemaPath prefers a positional argument over the configured schema.
func (a *app) schemaPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if len(a.cfg.Schema) == 0 {
		return "", fmt.Errorf("No schema provided; pass a path or set schema in the config")
	}
	return a.cfg.Schema, nil
}

func (a *app) loadSchema(args []string) (*builder.Schema, error) {
	path, err := a.schemaPath(args)
	if err != nil {
		return nil, err
	}
	return builder.NewSchemaFromPath(path)
}

// loadDataset reads the configured source of table. with_remote also wires
// the table's remote search backend.
func (a *app) loadDataset(ctx context.Context, schema *builder.Schema, name string, with_remote bool) (*conn.Dataset, error) {
	table, ok := schema.Table(name)
	if !ok {
		return nil, fmt.Errorf("Table %s not found in schema", name)
	}
	table_cfg, ok := a.cfg.Tables[name]
	if !ok {
		return nil, fmt.Errorf("Table %s has no configured source", name)
	}

	rows, err := source.Load(ctx, table_cfg.Source, table)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}
	d := conn.NewDataset(table, rows)

	if with_remote && table_cfg.Remote != nil {
		remote_table := table_cfg.Remote.Table
		if len(remote_table) == 0 {
			remote_table = name
		}
		c, err := client.NewClient(table_cfg.Remote.URL, remote_table, client.Options{
			Username: table_cfg.Remote.Username,
			Password: table_cfg.Remote.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		d.Remote = client.NewSearcher(c)
	}
	return d, nil
}
