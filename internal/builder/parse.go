package builder

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/tobsdb/tabq/internal/parser"
	"github.com/tobsdb/tabq/pkg"
)

func ParseSchema(schema_data string) (*Schema, error) {
	schema := Schema{Tables: pkg.NewInsertSortMap[string, *Table]()}

	scanner := bufio.NewScanner(strings.NewReader(schema_data))
	line_idx := 0

	var current_table *Table

	for scanner.Scan() {
		line_idx++
		line := strings.TrimSpace(scanner.Text())

		// Ignore empty lines & comments
		if len(line) == 0 || strings.HasPrefix(line, "//") {
			continue
		}

		state, data, err := parser.LineParser(line)
		if err != nil {
			return nil, ParseLineError(line_idx, err.Error())
		}

		switch state {
		case parser.ParserStateTableStart:
			if current_table != nil {
				return nil, ParseLineError(line_idx, fmt.Sprintf("Table %s is not closed", current_table.Name))
			}
			if schema.Tables.Has(data.Name) {
				return nil, ParseLineError(line_idx, fmt.Sprintf("Duplicate table %s", data.Name))
			}
			current_table = &Table{
				Name:   data.Name,
				Fields: pkg.NewInsertSortMap[string, *Field](),
				Schema: &schema,
			}
		case parser.ParserStateTableEnd:
			if current_table == nil {
				return nil, ParseLineError(line_idx, "Unexpected }")
			}
			if current_table.Fields.Len() == 0 {
				return nil, ParseLineError(line_idx, fmt.Sprintf("Table %s has no fields", current_table.Name))
			}
			schema.Tables.Push(current_table.Name, current_table)
			current_table = nil
		case parser.ParserStateNewField:
			if current_table == nil {
				return nil, ParseLineError(line_idx, "Field declared outside of a table")
			}
			if current_table.Fields.Has(data.Name) {
				return nil, ParseLineError(line_idx, fmt.Sprintf("Duplicate field %s", data.Name))
			}
			new_field := Field{
				Name:        data.Name,
				Properties:  data.Properties,
				BuiltinType: data.Builtin_type,
				Table:       current_table,
			}

			if err := CheckFieldRules(&new_field); err != nil {
				return nil, ParseLineError(line_idx, err.Error())
			}

			current_table.Fields.Push(new_field.Name, &new_field)
		}
	}

	if current_table != nil {
		return nil, fmt.Errorf("Table %s is not closed", current_table.Name)
	}
	if schema.Tables.Len() == 0 {
		return nil, fmt.Errorf("Schema has no tables")
	}

	return &schema, nil
}

func ParseLineError(line int, reason string) error {
	return fmt.Errorf("Error parsing line %d: %s", line, reason)
}
