package props

import "slices"

type FieldProp string

var VALID_BUILTIN_PROPS = []FieldProp{
	FieldPropLabel, FieldPropSortable, FieldPropFilterable,
	FieldPropSearchable, FieldPropOptions, FieldPropOptional,
}

const (
	FieldPropLabel      FieldProp = "label"      // label("Display Name")
	FieldPropSortable   FieldProp = "sortable"   // sortable(true/false)
	FieldPropFilterable FieldProp = "filterable" // filterable(true/false)
	FieldPropSearchable FieldProp = "searchable" // searchable(true/false)
	FieldPropOptions    FieldProp = "options"    // options(a, b, c)
	FieldPropOptional   FieldProp = "optional"   // optional(true/false)
)

func (p FieldProp) IsValid() bool {
	return slices.Contains(VALID_BUILTIN_PROPS, p)
}

// IsBool reports whether the prop takes a true/false value.
func (p FieldProp) IsBool() bool {
	switch p {
	case FieldPropSortable, FieldPropFilterable, FieldPropSearchable, FieldPropOptional:
		return true
	}
	return false
}
