package query

import (
	"context"
	"fmt"

	"github.com/tobsdb/tabq/internal/paging"
	"github.com/tobsdb/tabq/pkg"
)

// Table owns the pipeline state of one rendered table. It is not safe for
// concurrent use; callers serialize access.
type Table[R any] struct {
	opts    Options[R]
	records []R

	search_term    string
	filters        *pkg.InsertSortMap[string, Criterion]
	sort_keys      SortKeys
	current_page   int
	items_per_page int

	remote        *Remote[R]
	deliver       func(RemoteResult[R])
	remote_ctx    context.Context
	remote_id     uint64
	remote_rows   []R
	remote_err    error
	remote_loaded bool

	// reduce_version changes when search, filters or sort change and
	// data_version when the input collection is replaced. The reduced
	// collection is reused while both match.
	reduce_version uint64
	data_version   uint64
	cache          *reduction[R]
}

type reduction[R any] struct {
	reduce_version uint64
	data_version   uint64
	reduced        []R
	total          int
}

func NewTable[R any](records []R, opts Options[R]) *Table[R] {
	if opts.Accessor == nil {
		panic("query: NewTable requires an Accessor")
	}
	if opts.ItemsPerPage <= 0 {
		opts.ItemsPerPage = paging.DEFAULT_PAGE_SIZE
	}
	return &Table[R]{
		opts:           opts,
		records:        records,
		filters:        pkg.NewInsertSortMap[string, Criterion](),
		sort_keys:      SortKeys{},
		current_page:   1,
		items_per_page: opts.ItemsPerPage,
	}
}

func (t *Table[R]) Columns() Columns { return t.opts.Columns }

func (t *Table[R]) State() State {
	return State{
		SearchTerm:   t.search_term,
		Filters:      t.filters.Values(),
		SortKeys:     t.sort_keys.clone(),
		CurrentPage:  t.current_page,
		ItemsPerPage: t.items_per_page,
	}
}

// SetRecords replaces the input collection. The current page is clamped to
// the new page count.
func (t *Table[R]) SetRecords(records []R) {
	t.records = records
	t.data_version++
	t.clampPage()
}

func (t *Table[R]) Records() []R { return t.records }

func (t *Table[R]) SetSearchTerm(term string) {
	t.search_term = term
	t.current_page = 1
	t.touch()

	if t.remote == nil {
		return
	}
	t.remote_rows, t.remote_err, t.remote_loaded = nil, nil, false
	if len(NormalizeTerm(term)) == 0 {
		t.remote_id = t.remote.Cancel()
		return
	}
	t.remote_id = t.remote.Submit(t.remote_ctx, term, t.deliver)
}

// AddFilter installs c, replacing any criterion already set on c.Field in
// place.
func (t *Table[R]) AddFilter(c Criterion) error {
	if c.match == nil {
		return fmt.Errorf("%w: criterion on %s was not built with NewCriterion", ErrUnknownOperator, c.Field)
	}
	t.filters.Set(c.Field, c)
	t.current_page = 1
	t.touch()
	return nil
}

func (t *Table[R]) RemoveFilter(field string) {
	t.filters.Delete(field)
	t.current_page = 1
	t.touch()
}

func (t *Table[R]) ClearFilters() {
	t.filters = pkg.NewInsertSortMap[string, Criterion]()
	t.current_page = 1
	t.touch()
}

// AddSort applies the toggle protocol to field, appending it with dir when
// it is not sorted yet.
func (t *Table[R]) AddSort(field string, dir Direction) error {
	if len(field) == 0 {
		return ErrEmptyField
	}
	if dir != Asc && dir != Desc {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}
	t.sort_keys = t.sort_keys.toggleFrom(field, dir)
	t.touch()
	return nil
}

func (t *Table[R]) ToggleSort(field string) error { return t.AddSort(field, Asc) }

func (t *Table[R]) RemoveSort(field string) {
	t.sort_keys = t.sort_keys.Remove(field)
	t.touch()
}

// SetSort replaces the whole sort chain.
func (t *Table[R]) SetSort(keys SortKeys) error {
	if err := keys.Validate(); err != nil {
		return err
	}
	t.sort_keys = keys.clone()
	t.touch()
	return nil
}

func (t *Table[R]) SetItemsPerPage(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, n)
	}
	t.items_per_page = n
	t.current_page = 1
	return nil
}

// SetCurrentPage moves to page, clamped into [1, TotalPages].
func (t *Table[R]) SetCurrentPage(page int) {
	t.current_page = page
	t.clampPage()
}

// UseRemote makes searches go through remote. deliver is invoked with each
// accepted result from another goroutine; it must serialize with the
// table's other callers and then call ApplyRemote.
func (t *Table[R]) UseRemote(ctx context.Context, remote *Remote[R], deliver func(RemoteResult[R])) {
	if ctx == nil {
		ctx = context.Background()
	}
	t.remote, t.deliver, t.remote_ctx = remote, deliver, ctx
}

// ApplyRemote installs a remote search result. Results for any request
// other than the most recent one are ignored and false is returned. A
// failed search installs an empty set and keeps the error for the view.
func (t *Table[R]) ApplyRemote(res RemoteResult[R]) bool {
	if t.remote == nil || res.ID != t.remote_id {
		return false
	}
	t.remote_rows, t.remote_err, t.remote_loaded = res.Rows, res.Err, true
	if res.Err != nil {
		t.remote_rows = []R{}
	}
	t.data_version++
	t.clampPage()
	return true
}

func (t *Table[R]) RemotePending() bool {
	return t.remote != nil && len(NormalizeTerm(t.search_term)) > 0 && !t.remote_loaded
}

// View returns the current page. Search, filter and sort are rerun only
// when they or the input changed since the last call.
func (t *Table[R]) View() View[R] {
	r := t.reduce()
	view := paginate(t.State(), r.reduced, r.total)
	view.RemoteErr = t.remote_err
	return view
}

// Filtered returns every record passing search and filters, in sort order.
// The slice may be shared with the table and must not be modified.
func (t *Table[R]) Filtered() []R {
	return t.reduce().reduced
}

func (t *Table[R]) reduce() *reduction[R] {
	if t.cache != nil && t.cache.reduce_version == t.reduce_version && t.cache.data_version == t.data_version {
		return t.cache
	}

	state := t.State()
	r := &reduction[R]{reduce_version: t.reduce_version, data_version: t.data_version}
	if t.remote_loaded && len(NormalizeTerm(state.SearchTerm)) > 0 {
		r.reduced = refine(state, t.remote_rows, t.opts)
		r.total = len(t.remote_rows)
	} else {
		r.reduced = Reduce(state, t.records, t.opts)
		r.total = len(t.records)
	}
	t.cache = r
	return r
}

func (t *Table[R]) touch() { t.reduce_version++ }

func (t *Table[R]) clampPage() {
	t.current_page = paging.NewPage(t.current_page, t.items_per_page, len(t.reduce().reduced)).Number
}
