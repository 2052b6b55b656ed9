package types

import (
	"fmt"
	"slices"
	"strings"
)

var VALID_BUILTIN_TYPES = []FieldType{
	FieldTypeString, FieldTypeNumber, FieldTypeDate,
	FieldTypeBool, FieldTypeSelect,
}

// FieldType is the declared type of a column. It decides how filter values
// and record values are coerced before comparison.
type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeNumber FieldType = "number"
	FieldTypeDate   FieldType = "date"
	FieldTypeBool   FieldType = "boolean"
	FieldTypeSelect FieldType = "select"
)

func (t FieldType) IsValid() bool {
	return slices.Contains(VALID_BUILTIN_TYPES, t)
}

// DSLName is the spelling used in table descriptor files.
func (t FieldType) DSLName() string {
	switch t {
	case FieldTypeBool:
		return "Bool"
	case "":
		return ""
	}
	return strings.ToUpper(string(t[0:1])) + string(t[1:])
}

var type_aliases = map[string]FieldType{
	"string":  FieldTypeString,
	"text":    FieldTypeString,
	"number":  FieldTypeNumber,
	"int":     FieldTypeNumber,
	"float":   FieldTypeNumber,
	"date":    FieldTypeDate,
	"bool":    FieldTypeBool,
	"boolean": FieldTypeBool,
	"select":  FieldTypeSelect,
}

// ParseFieldType accepts both descriptor spelling (Number, Bool) and the
// lower case wire spelling (number, boolean).
func ParseFieldType(s string) (FieldType, error) {
	t, ok := type_aliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("Invalid field type: %s", s)
	}
	return t, nil
}
