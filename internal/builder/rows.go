package builder

import (
	"fmt"

	"github.com/tobsdb/tabq/pkg"
)

// Row maps a field name to its value.
type Row = pkg.Map[string, any]

// CheckRows validates rows against the table's fields. It never rejects a
// dataset; the returned problems are meant for logging.
func (t *Table) CheckRows(rows []Row) []error {
	problems := []error{}
	for i, row := range rows {
		for _, f := range t.Fields.Values() {
			v, ok := row[f.Name]
			if err := f.checkValue(v, ok); err != nil {
				problems = append(problems, fmt.Errorf("table %s row %d: %w", t.Name, i, err))
			}
		}
	}
	return problems
}
