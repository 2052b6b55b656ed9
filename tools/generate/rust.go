package generate

import (
	"fmt"
	"strings"

	"github.com/tobsdb/tabq/internal/types"
)

func SchemaToRust(s []ParsedTable) []byte {
	res := "use serde::{Deserialize, Serialize};\n"

	for _, t := range s {
		name := toPascalCase(t.Name)
		res += fmt.Sprintf("\n#[derive(Debug, Clone, Serialize, Deserialize)]\npub struct %s {\n%s\n}\n",
			name, fieldsToRust(t.Fields))
		res += fmt.Sprintf("\npub const %s_COLUMNS: [&str; %d] = [%s];\n",
			strings.ToUpper(t.Name), len(t.Fields), quoteFields(t.Fields))
	}
	return []byte(res)
}

func fieldsToRust(fields []ParsedField) string {
	lines := make([]string, len(fields))
	for i, f := range fields {
		lines[i] = fmt.Sprintf("\tpub %s: %s,", f.Name, typeToRust(f))
	}
	return strings.Join(lines, "\n")
}

func typeToRust(f ParsedField) string {
	res := "String"
	switch f.BuiltinType {
	case types.FieldTypeNumber:
		res = "f64"
	case types.FieldTypeBool:
		res = "bool"
	}
	if f.Optional {
		res = fmt.Sprintf("Option<%s>", res)
	}
	return res
}
