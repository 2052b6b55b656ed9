package query_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/tobsdb/tabq/internal/query"
	"github.com/tobsdb/tabq/internal/types"
	"gotest.tools/v3/assert"
)

func mustCriterion(t *testing.T, field string, op Operator, ft types.FieldType, value any) Criterion {
	t.Helper()
	c, err := NewCriterion(field, op, ft, value)
	assert.NilError(t, err)
	return c
}

func TestNewCriterionLegality(t *testing.T) {
	for ft, ops := range map[types.FieldType][]Operator{
		types.FieldTypeString: {OpGreaterThan, OpLessThan, OpBetween},
		types.FieldTypeNumber: {OpContains, OpStartsWith, OpEndsWith},
		types.FieldTypeDate:   {OpContains, OpStartsWith, OpEndsWith},
		types.FieldTypeBool:   {OpNotEquals, OpContains, OpGreaterThan, OpBetween},
		types.FieldTypeSelect: {OpContains, OpGreaterThan, OpBetween},
	} {
		for _, op := range ops {
			_, err := NewCriterion("f", op, ft, "x")
			assert.Assert(t, errors.Is(err, ErrIllegalOperator), "%s %s: %v", ft, op, err)
		}
		for _, op := range LegalOperators(ft) {
			value := any("1")
			if op == OpBetween {
				value = []any{1, 2}
			}
			_, err := NewCriterion("f", op, ft, value)
			assert.NilError(t, err, "%s %s", ft, op)
		}
	}

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewCriterion("f", OpEquals, types.FieldType("vector"), 1)
		assert.Assert(t, errors.Is(err, ErrUnknownFieldType))
	})

	t.Run("unknown operator", func(t *testing.T) {
		_, err := NewCriterion("f", Operator("like"), types.FieldTypeString, "a")
		assert.Assert(t, errors.Is(err, ErrUnknownOperator))
	})

	t.Run("empty field", func(t *testing.T) {
		_, err := NewCriterion(" ", OpEquals, types.FieldTypeString, "a")
		assert.Assert(t, errors.Is(err, ErrEmptyField))
	})

	t.Run("malformed between", func(t *testing.T) {
		for _, value := range []any{5, []any{1}, []any{1, 2, 3}, "5", nil} {
			_, err := NewCriterion("price", OpBetween, types.FieldTypeNumber, value)
			assert.Assert(t, errors.Is(err, ErrInvalidRange), "%v", value)
		}
	})

	t.Run("zero value matches nothing", func(t *testing.T) {
		assert.Assert(t, !Criterion{}.Matches("anything"))
	})
}

func TestStringCriterion(t *testing.T) {
	cases := []struct {
		op    Operator
		value any
		input any
		want  bool
	}{
		{OpContains, "AMOX", "Amoxicillin 250mg", true},
		{OpContains, "amox", "Paracetamol 500mg", false},
		{OpStartsWith, "para", "Paracetamol", true},
		{OpStartsWith, "cet", "Paracetamol", false},
		{OpEndsWith, "MG", "Paracetamol 500mg", true},
		{OpEquals, "ibuprofen", "IBUPROFEN", true},
		{OpEquals, "ibu", "Ibuprofen", false},
		{OpNotEquals, "ibu", "Ibuprofen", true},
		{OpEquals, "", nil, true},
		{OpContains, "x", nil, false},
		{OpEquals, "5", 5, true},
		{OpEquals, "ΣΊΣΥΦΟΣ", "σίσυφος", true},
	}
	for _, c := range cases {
		crit := mustCriterion(t, "name", c.op, types.FieldTypeString, c.value)
		assert.Equal(t, crit.Matches(c.input), c.want, "%s %v %v", c.op, c.value, c.input)
	}
}

func TestNumberCriterion(t *testing.T) {
	t.Run("operators", func(t *testing.T) {
		cases := []struct {
			op    Operator
			value any
			input any
			want  bool
		}{
			{OpEquals, 10, 10.0, true},
			{OpEquals, "10", 10, true},
			{OpNotEquals, 10, 11, true},
			{OpNotEquals, 10, nil, false},
			{OpGreaterThan, 10, 11, true},
			{OpGreaterThan, 10, 10, false},
			{OpLessThan, 10, "9.5", true},
			{OpLessThan, 10, "many", false},
			{OpLessThan, 10, true, false},
			{OpBetween, []any{5, 10}, 5, true},
			{OpBetween, []any{5, 10}, 10, true},
			{OpBetween, []int{5, 10}, 7, true},
			{OpBetween, "5..10", 11, false},
			{OpBetween, "5..10", "7", true},
		}
		for _, c := range cases {
			crit := mustCriterion(t, "stock", c.op, types.FieldTypeNumber, c.value)
			assert.Equal(t, crit.Matches(c.input), c.want, "%s %v %v", c.op, c.value, c.input)
		}
	})

	t.Run("unparseable filter value never matches", func(t *testing.T) {
		crit := mustCriterion(t, "stock", OpEquals, types.FieldTypeNumber, "abc")
		for _, v := range []any{0, 1, "abc", nil, 10.5} {
			assert.Assert(t, !crit.Matches(v), "%v", v)
		}

		crit = mustCriterion(t, "stock", OpBetween, types.FieldTypeNumber, []any{"low", 10})
		assert.Assert(t, !crit.Matches(5))
	})
}

func TestDateCriterion(t *testing.T) {
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		op    Operator
		value any
		input any
		want  bool
	}{
		{OpEquals, "2024-01-15", jan, true},
		{OpEquals, "2024-01-15T00:00:00Z", "2024-01-15", true},
		{OpGreaterThan, "2024-01-01", jan, true},
		{OpLessThan, "2024-01-01", jan, false},
		{OpLessThan, jan, jan.UnixMilli() - 1, true},
		{OpBetween, []string{"2024-01-01", "2024-01-31"}, "2024-01-15T12:30:00Z", true},
		{OpBetween, "2024-01-01..2024-01-14", jan, false},
		{OpGreaterThan, "2024-01-01", "soon", false},
		{OpEquals, "not a date", jan, false},
	}
	for _, c := range cases {
		crit := mustCriterion(t, "expires", c.op, types.FieldTypeDate, c.value)
		assert.Equal(t, crit.Matches(c.input), c.want, "%s %v %v", c.op, c.value, c.input)
	}
}

func TestBoolCriterion(t *testing.T) {
	yes := mustCriterion(t, "rx", OpEquals, types.FieldTypeBool, true)
	assert.Assert(t, yes.Matches(true))
	assert.Assert(t, yes.Matches("true"))
	assert.Assert(t, !yes.Matches(false))
	assert.Assert(t, !yes.Matches(1))
	assert.Assert(t, !yes.Matches("yes"))
	assert.Assert(t, !yes.Matches(nil))

	no := mustCriterion(t, "rx", OpEquals, types.FieldTypeBool, "false")
	assert.Assert(t, no.Matches(false))

	strict := mustCriterion(t, "rx", OpEquals, types.FieldTypeBool, "TRUE")
	assert.Assert(t, !strict.Matches(true))
}

func TestSelectCriterion(t *testing.T) {
	eq := mustCriterion(t, "category", OpEquals, types.FieldTypeSelect, "antibiotic")
	assert.Assert(t, eq.Matches("antibiotic"))
	assert.Assert(t, !eq.Matches("Antibiotic"))
	assert.Assert(t, !eq.Matches(nil))

	ne := mustCriterion(t, "category", OpNotEquals, types.FieldTypeSelect, "antibiotic")
	assert.Assert(t, ne.Matches("analgesic"))
	assert.Assert(t, ne.Matches(nil))
	assert.Assert(t, !ne.Matches("antibiotic"))
}

func TestParseCriterion(t *testing.T) {
	typeOf := Columns{
		{Field: "stock", Type: types.FieldTypeNumber},
		{Field: "name", Type: types.FieldTypeString},
	}.TypeOf

	c, err := ParseCriterion("stock:lessThan:10", typeOf)
	assert.NilError(t, err)
	assert.Equal(t, c.Field, "stock")
	assert.Equal(t, c.Operator, OpLessThan)
	assert.Assert(t, c.Matches(9))

	c, err = ParseCriterion("name:contains:a:b", typeOf)
	assert.NilError(t, err)
	assert.Assert(t, c.Matches("xa:bx"))

	_, err = ParseCriterion("stock:lessThan", typeOf)
	assert.ErrorContains(t, err, "expected field:operator:value")

	_, err = ParseCriterion("price:lessThan:4", typeOf)
	assert.ErrorContains(t, err, "unknown field price")

	_, err = ParseCriterion("name:greaterThan:4", typeOf)
	assert.Assert(t, errors.Is(err, ErrIllegalOperator))
}
