package client

import (
	"context"

	"github.com/tobsdb/tabq/pkg"
)

// Searcher runs searches against a table on another server.
type Searcher struct {
	client *Client
}

func NewSearcher(c *Client) *Searcher { return &Searcher{c} }

// Search returns every record of the remote table matching term, in the
// remote table's current sort order.
func (s *Searcher) Search(ctx context.Context, term string) ([]pkg.Map[string, any], error) {
	v, err := s.client.SetSearch(ctx, term)
	if err != nil {
		return nil, err
	}
	if v.FilteredCount > len(v.Rows) {
		if v, err = s.client.SetPageSize(ctx, v.FilteredCount); err != nil {
			return nil, err
		}
	}
	if v.Rows == nil {
		return []pkg.Map[string, any]{}, nil
	}
	return v.Rows, nil
}
