package builder

import (
	"encoding/json"

	"github.com/tobsdb/tabq/internal/query"
	"github.com/tobsdb/tabq/pkg"
)

type Table struct {
	Name   string
	Fields *pkg.InsertSortMap[string, *Field]

	Schema *Schema `json:"-"`
}

func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name    string        `json:"name"`
		Columns query.Columns `json:"columns"`
	}{t.Name, t.Columns()})
}

// Columns lists the table's column descriptors in declaration order.
func (t *Table) Columns() query.Columns {
	cols := make(query.Columns, 0, t.Fields.Len())
	for _, f := range t.Fields.Values() {
		cols = append(cols, query.Column{
			Field:      f.Name,
			Label:      f.Label(),
			Type:       f.BuiltinType,
			Sortable:   f.Sortable(),
			Filterable: f.Filterable(),
			Searchable: f.Searchable(),
			Options:    f.Options(),
		})
	}
	return cols
}
