package query

import (
	"github.com/tobsdb/tabq/internal/paging"
)

// State is everything a table remembers between operations.
type State struct {
	SearchTerm   string      `json:"search_term"`
	Filters      []Criterion `json:"filters"`
	SortKeys     SortKeys    `json:"sort_keys"`
	CurrentPage  int         `json:"current_page"`
	ItemsPerPage int         `json:"items_per_page"`
}

// View is derived from a State and a record collection on demand.
type View[R any] struct {
	Rows          []R `json:"rows"`
	FilteredCount int `json:"filtered_count"`
	TotalItems    int `json:"total_items"`
	TotalPages    int `json:"total_pages"`
	CurrentPage   int `json:"current_page"`
	ItemsPerPage  int `json:"items_per_page"`

	// RemoteErr is set when the last remote search failed.
	RemoteErr error `json:"-"`
}

type Options[R any] struct {
	Accessor Accessor[R]
	Columns  Columns
	// SearchFields defaults to the searchable columns.
	SearchFields []string
	ItemsPerPage int
}

func (opts Options[R]) searchFields() []string {
	if opts.SearchFields != nil {
		return opts.SearchFields
	}
	return opts.Columns.SearchFields()
}

// Reduce runs the search, filter and sort stages over records.
func Reduce[R any](state State, records []R, opts Options[R]) []R {
	found := Search(records, opts.searchFields(), opts.Accessor, state.SearchTerm)
	return refine(state, found, opts)
}

// refine is Reduce without the search stage.
func refine[R any](state State, records []R, opts Options[R]) []R {
	found := Filter(records, state.Filters, opts.Accessor)
	return Sort(found, state.SortKeys, opts.Accessor, opts.Columns.TypeOf)
}

// DeriveView runs the full pipeline. It is a pure function of its inputs.
func DeriveView[R any](state State, records []R, opts Options[R]) View[R] {
	return paginate(state, Reduce(state, records, opts), len(records))
}

func paginate[R any](state State, reduced []R, total int) View[R] {
	p := paging.NewPage(state.CurrentPage, state.ItemsPerPage, len(reduced))
	return View[R]{
		Rows:          paging.Slice(reduced, p),
		FilteredCount: len(reduced),
		TotalItems:    total,
		TotalPages:    p.TotalPages,
		CurrentPage:   p.Number,
		ItemsPerPage:  p.Size,
	}
}
