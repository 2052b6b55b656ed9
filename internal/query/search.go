package query

import (
	"strings"

	"github.com/tobsdb/tabq/pkg"
)

// NormalizeTerm trims and case folds a search term. A blank term normalizes
// to "", which disables the search stage.
func NormalizeTerm(term string) string {
	return fold(strings.TrimSpace(term))
}

// SearchMatch reports whether any of fields contains needle. needle must
// already be normalized. Missing and nil values never match.
func SearchMatch[R any](record R, fields []string, get Accessor[R], needle string) bool {
	if len(needle) == 0 {
		return true
	}
	for _, field := range fields {
		v, ok := get(record, field)
		if !ok || v == nil {
			continue
		}
		s, err := Text(v)
		if err != nil {
			continue
		}
		if strings.Contains(fold(s), needle) {
			return true
		}
	}
	return false
}

// Search returns the records matching term, preserving input order.
func Search[R any](records []R, fields []string, get Accessor[R], term string) []R {
	needle := NormalizeTerm(term)
	if len(needle) == 0 {
		return records
	}
	return pkg.Filter(records, func(r R) bool {
		return SearchMatch(r, fields, get, needle)
	})
}

// Filter returns the records that pass every criterion.
func Filter[R any](records []R, criteria []Criterion, get Accessor[R]) []R {
	if len(criteria) == 0 {
		return records
	}
	return pkg.Filter(records, func(r R) bool {
		for _, c := range criteria {
			v, _ := get(r, c.Field)
			if !c.Matches(v) {
				return false
			}
		}
		return true
	})
}
