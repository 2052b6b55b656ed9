package query

import (
	"context"
	"sync"
	"time"

	"github.com/tobsdb/tabq/pkg"
)

// Searcher looks up the records matching a search term somewhere else.
type Searcher[R any] interface {
	Search(ctx context.Context, term string) ([]R, error)
}

type SearcherFunc[R any] func(ctx context.Context, term string) ([]R, error)

func (f SearcherFunc[R]) Search(ctx context.Context, term string) ([]R, error) {
	return f(ctx, term)
}

type RemoteResult[R any] struct {
	ID   uint64
	Term string
	Rows []R
	Err  error
}

const DEFAULT_REMOTE_DELAY = 300 * time.Millisecond

// Remote debounces searches against a Searcher. Every submission gets a new
// request id and supersedes all earlier ones: pending timers are stopped,
// in-flight contexts are cancelled and late results are dropped.
type Remote[R any] struct {
	searcher Searcher[R]
	delay    time.Duration

	mu     sync.Mutex
	latest uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

func NewRemote[R any](searcher Searcher[R], delay time.Duration) *Remote[R] {
	if delay < 0 {
		delay = DEFAULT_REMOTE_DELAY
	}
	return &Remote[R]{searcher: searcher, delay: delay}
}

// Submit schedules a search for term and returns its request id. deliver is
// called from another goroutine, at most once, and only if the request is
// still the latest when its result arrives.
func (r *Remote[R]) Submit(ctx context.Context, term string, deliver func(RemoteResult[R])) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.supersede()
	r.timer = time.AfterFunc(r.delay, func() { r.run(ctx, id, term, deliver) })
	return id
}

// Cancel supersedes every outstanding request without issuing a new search.
func (r *Remote[R]) Cancel() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.supersede()
}

func (r *Remote[R]) supersede() uint64 {
	r.latest++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	return r.latest
}

func (r *Remote[R]) Latest() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

func (r *Remote[R]) IsLatest(id uint64) bool { return r.Latest() == id }

func (r *Remote[R]) run(parent context.Context, id uint64, term string, deliver func(RemoteResult[R])) {
	r.mu.Lock()
	if id != r.latest {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel
	r.mu.Unlock()
	defer cancel()

	pkg.DebugLog("remote search", id, term)
	rows, err := r.searcher.Search(ctx, term)

	if !r.IsLatest(id) {
		pkg.DebugLog("dropping superseded remote search", id)
		return
	}
	if err != nil {
		pkg.WarnLog("remote search failed:", err)
		rows = nil
	}
	deliver(RemoteResult[R]{ID: id, Term: term, Rows: rows, Err: err})
}
