package query

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/tobsdb/tabq/internal/types"
)

type Operator string

const (
	OpContains    Operator = "contains"
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "notEquals"
	OpGreaterThan Operator = "greaterThan"
	OpLessThan    Operator = "lessThan"
	OpBetween     Operator = "between"
	OpStartsWith  Operator = "startsWith"
	OpEndsWith    Operator = "endsWith"
)

var VALID_OPERATORS = []Operator{
	OpContains, OpEquals, OpNotEquals, OpGreaterThan,
	OpLessThan, OpBetween, OpStartsWith, OpEndsWith,
}

var legal_operators = map[types.FieldType][]Operator{
	types.FieldTypeString: {OpContains, OpEquals, OpNotEquals, OpStartsWith, OpEndsWith},
	types.FieldTypeNumber: {OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpBetween},
	types.FieldTypeDate:   {OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpBetween},
	types.FieldTypeBool:   {OpEquals},
	types.FieldTypeSelect: {OpEquals, OpNotEquals},
}

func (op Operator) IsValid() bool { return slices.Contains(VALID_OPERATORS, op) }

// LegalOperators lists the operators a field type accepts.
func LegalOperators(t types.FieldType) []Operator {
	return slices.Clone(legal_operators[t])
}

func ParseOperator(s string) (Operator, error) {
	s = strings.TrimSpace(s)
	for _, op := range VALID_OPERATORS {
		if strings.EqualFold(string(op), s) {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownOperator, s)
}

// Criterion is a single typed filter on one field. Build it with
// NewCriterion; the zero value matches nothing.
type Criterion struct {
	Field    string          `json:"field"`
	Operator Operator        `json:"operator"`
	Value    any             `json:"value"`
	Type     types.FieldType `json:"type"`

	match func(v any) bool
}

// NewCriterion validates the operator against the field type and compiles
// the comparison. A filter value that cannot be coerced to the field type
// does not fail construction; the criterion just never matches.
func NewCriterion(field string, op Operator, t types.FieldType, value any) (Criterion, error) {
	c := Criterion{Field: field, Operator: op, Value: value, Type: t}

	if len(strings.TrimSpace(field)) == 0 {
		return c, ErrEmptyField
	}
	if !t.IsValid() {
		return c, fmt.Errorf("%w: %q on field %s", ErrUnknownFieldType, t, field)
	}
	if !op.IsValid() {
		return c, fmt.Errorf("%w: %q on field %s", ErrUnknownOperator, op, field)
	}
	if !slices.Contains(legal_operators[t], op) {
		return c, fmt.Errorf("%w: %s on %s field %s", ErrIllegalOperator, op, t, field)
	}

	var err error
	switch t {
	case types.FieldTypeString:
		c.match = compileString(op, value)
	case types.FieldTypeNumber:
		c.match, err = compileOrdered(op, value, toNumber, compareFloat)
	case types.FieldTypeDate:
		c.match, err = compileOrdered(op, value, toTime, compareTime)
	case types.FieldTypeBool:
		c.match = compileBool(value)
	case types.FieldTypeSelect:
		c.match = compileSelect(op, value)
	}
	if err != nil {
		return c, fmt.Errorf("%w on field %s", err, field)
	}

	return c, nil
}

// Matches reports whether a record's field value passes the criterion.
// Missing fields are passed as nil.
func (c Criterion) Matches(v any) bool {
	if c.match == nil {
		return false
	}
	return c.match(v)
}

func (c Criterion) String() string {
	return fmt.Sprintf("%s %s %v", c.Field, c.Operator, c.Value)
}

func never(any) bool { return false }

func compileString(op Operator, value any) func(any) bool {
	raw, err := Text(value)
	if err != nil {
		return never
	}
	needle := fold(raw)

	return func(v any) bool {
		raw, err := Text(v)
		if err != nil {
			return false
		}
		s := fold(raw)
		switch op {
		case OpContains:
			return strings.Contains(s, needle)
		case OpStartsWith:
			return strings.HasPrefix(s, needle)
		case OpEndsWith:
			return strings.HasSuffix(s, needle)
		case OpEquals:
			return s == needle
		case OpNotEquals:
			return s != needle
		}
		return false
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareTime(a, b time.Time) int { return a.Compare(b) }

func compileOrdered[T any](op Operator, value any, coerce func(any) (T, bool), compare func(a, b T) int) (func(any) bool, error) {
	if op == OpBetween {
		lo_raw, hi_raw, err := rangeBounds(value)
		if err != nil {
			return nil, err
		}
		lo, lo_ok := coerce(lo_raw)
		hi, hi_ok := coerce(hi_raw)
		if !lo_ok || !hi_ok {
			return never, nil
		}
		return func(v any) bool {
			x, ok := coerce(v)
			return ok && compare(x, lo) >= 0 && compare(x, hi) <= 0
		}, nil
	}

	want, ok := coerce(value)
	if !ok {
		return never, nil
	}
	return func(v any) bool {
		x, ok := coerce(v)
		if !ok {
			return false
		}
		c := compare(x, want)
		switch op {
		case OpEquals:
			return c == 0
		case OpNotEquals:
			return c != 0
		case OpGreaterThan:
			return c > 0
		case OpLessThan:
			return c < 0
		}
		return false
	}, nil
}

// rangeBounds accepts a two element slice or array, or "min..max" text.
func rangeBounds(value any) (any, any, error) {
	if s, ok := value.(string); ok {
		lo, hi, found := strings.Cut(s, "..")
		if !found {
			return nil, nil, ErrInvalidRange
		}
		return strings.TrimSpace(lo), strings.TrimSpace(hi), nil
	}

	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return nil, nil, ErrInvalidRange
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() != 2 {
			return nil, nil, ErrInvalidRange
		}
		return rv.Index(0).Interface(), rv.Index(1).Interface(), nil
	}
	return nil, nil, ErrInvalidRange
}

func compileBool(value any) func(any) bool {
	want, ok := toBool(value)
	if !ok {
		return never
	}
	return func(v any) bool {
		b, ok := toBool(v)
		return ok && b == want
	}
}

func compileSelect(op Operator, value any) func(any) bool {
	want, err := Text(value)
	if err != nil {
		return never
	}
	return func(v any) bool {
		got, err := Text(v)
		if err != nil {
			return false
		}
		if op == OpNotEquals {
			return got != want
		}
		return got == want
	}
}

// ParseCriterion reads the "field:operator:value" text form. The field type
// comes from typeOf; between values are written "min..max".
func ParseCriterion(expr string, typeOf func(field string) (types.FieldType, bool)) (Criterion, error) {
	parts := strings.SplitN(expr, ":", 3)
	if len(parts) != 3 {
		return Criterion{}, fmt.Errorf("Invalid filter %q; expected field:operator:value", expr)
	}
	field := strings.TrimSpace(parts[0])
	op, err := ParseOperator(parts[1])
	if err != nil {
		return Criterion{}, err
	}
	t, ok := typeOf(field)
	if !ok {
		return Criterion{}, fmt.Errorf("Invalid filter %q; unknown field %s", expr, field)
	}
	return NewCriterion(field, op, t, parts[2])
}
