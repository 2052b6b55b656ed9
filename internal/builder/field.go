package builder

import (
	"fmt"
	"slices"

	"github.com/tobsdb/tabq/internal/props"
	"github.com/tobsdb/tabq/internal/query"
	"github.com/tobsdb/tabq/internal/types"
	"github.com/tobsdb/tabq/pkg"
)

type Field struct {
	Name        string
	BuiltinType types.FieldType
	Properties  pkg.Map[props.FieldProp, string]

	Table *Table `json:"-"`
}

func (f *Field) Label() string {
	if f.Properties.Has(props.FieldPropLabel) {
		return props.ParseLabelProp(f.Properties.Get(props.FieldPropLabel))
	}
	return f.Name
}

func (f *Field) boolProp(p props.FieldProp, fallback bool) bool {
	if !f.Properties.Has(p) {
		return fallback
	}
	b, err := props.ParseBoolPropSafe(p, f.Properties.Get(p))
	if err != nil {
		return fallback
	}
	return b
}

// Sortable and Filterable default to true. Searchable defaults to true for
// String fields only.
func (f *Field) Sortable() bool   { return f.boolProp(props.FieldPropSortable, true) }
func (f *Field) Filterable() bool { return f.boolProp(props.FieldPropFilterable, true) }
func (f *Field) Searchable() bool {
	return f.boolProp(props.FieldPropSearchable, f.BuiltinType == types.FieldTypeString)
}
func (f *Field) Optional() bool { return f.boolProp(props.FieldPropOptional, false) }

func (f *Field) Options() []string {
	if !f.Properties.Has(props.FieldPropOptions) {
		return nil
	}
	options, _ := props.ParseOptionsPropSafe(f.Properties.Get(props.FieldPropOptions))
	return options
}

// field local rules:
// - options prop only on Select fields, and Select fields need it
// - Bool fields can't be searchable
// - bool props must be true or false
func CheckFieldRules(field *Field) error {
	for prop, value := range field.Properties {
		if !prop.IsBool() {
			continue
		}
		if _, err := props.ParseBoolPropSafe(prop, value); err != nil {
			return fmt.Errorf("field(%s %s) %s", field.Name, field.BuiltinType.DSLName(), err.Error())
		}
	}

	_, has_options := field.Properties[props.FieldPropOptions]
	if field.BuiltinType == types.FieldTypeSelect {
		if !has_options {
			return fmt.Errorf("field(%s Select) must have options prop", field.Name)
		}
		if _, err := props.ParseOptionsPropSafe(field.Properties.Get(props.FieldPropOptions)); err != nil {
			return fmt.Errorf("field(%s Select) %s", field.Name, err.Error())
		}
	} else if has_options {
		return fmt.Errorf("field(%s %s) cannot have options prop", field.Name, field.BuiltinType.DSLName())
	}

	if field.BuiltinType == types.FieldTypeBool && field.Searchable() {
		return fmt.Errorf("field(%s Bool) cannot be searchable", field.Name)
	}

	return nil
}

// checkValue reports why v does not fit the field, or nil.
func (f *Field) checkValue(v any, present bool) error {
	if !present || v == nil {
		if f.Optional() {
			return nil
		}
		return fmt.Errorf("missing value for field %s", f.Name)
	}
	if f.BuiltinType == types.FieldTypeSelect {
		s, err := query.Text(v)
		if err != nil || !slices.Contains(f.Options(), s) {
			return fmt.Errorf("value %q of field %s is not one of %v", s, f.Name, f.Options())
		}
	}
	return nil
}
