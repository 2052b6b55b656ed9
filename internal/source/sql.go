package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/tobsdb/tabq/internal/builder"
	_ "modernc.org/sqlite"
)

// driver names as registered by the imported drivers
var sql_drivers = map[string]string{
	"sqlite":     "sqlite",
	"sqlite3":    "sqlite",
	"postgres":   "postgres",
	"postgresql": "postgres",
	"mysql":      "mysql",
}

func loadSQL(ctx context.Context, cfg Config, _ *builder.Table) ([]builder.Row, error) {
	driver, ok := sql_drivers[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}
	if len(cfg.Query) == 0 {
		return nil, errors.New("sql source needs a query")
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	defer db.Close()

	return QueryRows(ctx, db, cfg.Query)
}

// QueryRows runs query and collects every result row by column name.
func QueryRows(ctx context.Context, db *sql.DB, query string, args ...any) ([]builder.Row, error) {
	rs, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "running query")
	}
	defer rs.Close()

	cols, err := rs.Columns()
	if err != nil {
		return nil, err
	}

	rows := []builder.Row{}
	for rs.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "scanning row")
		}
		row := make(builder.Row, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, rs.Err()
}
