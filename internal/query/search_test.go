package query_test

import (
	"testing"
	"time"

	. "github.com/tobsdb/tabq/internal/query"
	"github.com/tobsdb/tabq/pkg"
	"gotest.tools/v3/assert"
)

type row = pkg.Map[string, any]

func names(rows []row) []string {
	out := []string{}
	for _, r := range rows {
		out = append(out, r.Get("name").(string))
	}
	return out
}

func TestSearch(t *testing.T) {
	rows := []row{
		{"name": "Amoxicillin 250mg", "sku": "AMX-250"},
		{"name": "Paracetamol 500mg", "sku": "PCM-500"},
		{"name": "Ibuprofen", "sku": nil, "stock": 250},
		{"name": "Cetirizine"},
	}
	fields := []string{"name", "sku", "stock"}

	t.Run("substring case insensitive", func(t *testing.T) {
		assert.DeepEqual(t, names(Search(rows, fields, MapAccessor, "amox")), []string{"Amoxicillin 250mg"})
		assert.DeepEqual(t, names(Search(rows, fields, MapAccessor, "  PCM ")), []string{"Paracetamol 500mg"})
	})

	t.Run("or across fields", func(t *testing.T) {
		assert.DeepEqual(t, names(Search(rows, fields, MapAccessor, "250")),
			[]string{"Amoxicillin 250mg", "Ibuprofen"})
	})

	t.Run("blank term is a no-op", func(t *testing.T) {
		assert.Equal(t, len(Search(rows, fields, MapAccessor, "   ")), len(rows))
	})

	t.Run("nil and missing fields never match", func(t *testing.T) {
		assert.Equal(t, len(Search(rows, []string{"sku"}, MapAccessor, "i")), 0)
	})

	t.Run("dates are searchable as text", func(t *testing.T) {
		dated := []row{{"name": "a", "at": time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}}
		assert.Equal(t, len(Search(dated, []string{"at"}, MapAccessor, "2024-03")), 1)
	})

	t.Run("unrenderable values are skipped", func(t *testing.T) {
		odd := []row{{"name": "a", "tags": []string{"x"}}}
		assert.Equal(t, len(Search(odd, []string{"tags"}, MapAccessor, "x")), 0)
	})
}

func TestFilterComposition(t *testing.T) {
	rows := []row{
		{"name": "a", "stock": 5},
		{"name": "b", "stock": 15},
		{"name": "c", "stock": 0},
		{"name": "d", "stock": 9},
	}

	low := mustCriterion(t, "stock", OpLessThan, "number", 10)
	assert.DeepEqual(t, names(Filter(rows, []Criterion{low}, MapAccessor)), []string{"a", "c", "d"})

	not_d := mustCriterion(t, "name", OpNotEquals, "string", "D")
	assert.DeepEqual(t, names(Filter(rows, []Criterion{low, not_d}, MapAccessor)), []string{"a", "c"})

	assert.Equal(t, len(Filter(rows, nil, MapAccessor)), 4)

	t.Run("search and filter intersect", func(t *testing.T) {
		searched := Search(rows, []string{"name"}, MapAccessor, "d")
		assert.DeepEqual(t, names(Filter(searched, []Criterion{low}, MapAccessor)), []string{"d"})
	})
}
