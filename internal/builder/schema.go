package builder

import (
	"fmt"
	"os"

	"github.com/tobsdb/tabq/pkg"
)

type Schema struct {
	Tables *pkg.InsertSortMap[string, *Table]
}

func NewSchemaFromString(data string) (*Schema, error) {
	return ParseSchema(data)
}

func NewSchemaFromPath(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	return ParseSchema(string(data))
}

func (s *Schema) Table(name string) (*Table, bool) {
	if !s.Tables.Has(name) {
		return nil, false
	}
	return s.Tables.Get(name), true
}
