package query_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/tobsdb/tabq/internal/query"
	"gotest.tools/v3/assert"
)

type gatedSearcher struct {
	mu    sync.Mutex
	calls []string
	gates map[string]chan struct{}
}

func (s *gatedSearcher) Search(ctx context.Context, term string) ([]drug, error) {
	s.mu.Lock()
	s.calls = append(s.calls, term)
	gate := s.gates[term]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if term == "boom" {
		return nil, errors.New("upstream unavailable")
	}
	return []drug{{Name: "remote " + term, Stock: 1}}, nil
}

func TestRemoteSupersession(t *testing.T) {
	searcher := &gatedSearcher{gates: map[string]chan struct{}{"slow": make(chan struct{})}}
	remote := NewRemote[drug](searcher, 0)

	results := make(chan RemoteResult[drug], 4)
	deliver := func(r RemoteResult[drug]) { results <- r }

	first := remote.Submit(context.Background(), "slow", deliver)
	time.Sleep(20 * time.Millisecond)
	second := remote.Submit(context.Background(), "fast", deliver)
	assert.Assert(t, second > first)

	select {
	case res := <-results:
		assert.Equal(t, res.ID, second)
		assert.Equal(t, res.Rows[0].Name, "remote fast")
	case <-time.After(2 * time.Second):
		t.Fatal("no result delivered")
	}

	close(searcher.gates["slow"])
	select {
	case res := <-results:
		t.Fatalf("superseded result delivered: %+v", res)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRemoteDebounce(t *testing.T) {
	searcher := &gatedSearcher{gates: map[string]chan struct{}{}}
	remote := NewRemote[drug](searcher, 30*time.Millisecond)

	results := make(chan RemoteResult[drug], 4)
	deliver := func(r RemoteResult[drug]) { results <- r }
	for _, term := range []string{"a", "am", "amo", "amox"} {
		remote.Submit(context.Background(), term, deliver)
	}

	select {
	case res := <-results:
		assert.Equal(t, res.Term, "amox")
	case <-time.After(2 * time.Second):
		t.Fatal("no result delivered")
	}

	searcher.mu.Lock()
	defer searcher.mu.Unlock()
	assert.DeepEqual(t, searcher.calls, []string{"amox"})
}

func TestTableRemoteSearch(t *testing.T) {
	searcher := &gatedSearcher{gates: map[string]chan struct{}{}}
	remote := NewRemote[drug](searcher, 0)

	var mu sync.Mutex
	applied := make(chan bool, 4)
	table := newDrugTable(12)
	table.UseRemote(context.Background(), remote, func(r RemoteResult[drug]) {
		mu.Lock()
		defer mu.Unlock()
		applied <- table.ApplyRemote(r)
	})

	mu.Lock()
	table.SetSearchTerm("drug 1")
	assert.Assert(t, table.RemotePending())
	// local search stands in until the remote answer lands
	assert.Equal(t, table.View().FilteredCount, 2)
	mu.Unlock()

	assert.Assert(t, <-applied)

	mu.Lock()
	view := table.View()
	assert.Equal(t, view.FilteredCount, 1)
	assert.Equal(t, view.Rows[0].Name, "remote drug 1")
	assert.Assert(t, view.RemoteErr == nil)
	mu.Unlock()

	t.Run("failure keeps state", func(t *testing.T) {
		mu.Lock()
		table.SetSearchTerm("boom")
		mu.Unlock()
		assert.Assert(t, <-applied)

		mu.Lock()
		defer mu.Unlock()
		view := table.View()
		assert.ErrorContains(t, view.RemoteErr, "upstream unavailable")
		assert.Equal(t, view.FilteredCount, 0)
		assert.Equal(t, table.State().SearchTerm, "boom")
	})

	t.Run("stale results are ignored", func(t *testing.T) {
		mu.Lock()
		defer mu.Unlock()
		assert.Assert(t, !table.ApplyRemote(RemoteResult[drug]{ID: 1, Rows: []drug{{Name: "old"}}}))
	})

	t.Run("clearing the term uses local records", func(t *testing.T) {
		mu.Lock()
		defer mu.Unlock()
		table.SetSearchTerm(" ")
		assert.Assert(t, !table.RemotePending())
		assert.Equal(t, table.View().FilteredCount, 12)
	})
}
