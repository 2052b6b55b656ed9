// Package client talks to a TabQ server over its table session websocket.
//
// create a client for one table
//
//	c, err := client.NewClient("ws://localhost:7085", "inventory", client.Options{})
//
// change the table state and read pages
//
//	view, err := c.SetSearch(ctx, "amox")
//	view, err = c.AddFilter(ctx, "stock", "lessThan", 10)
//
// or use it as the remote search backend of another table
//
//	query.NewRemote[pkg.Map[string, any]](client.NewSearcher(c), 0)
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/tobsdb/tabq/pkg"
)

type Options struct {
	Username string
	Password string
}

// Client is safe for concurrent use; requests are sent one at a time.
type Client struct {
	Locker sync.RWMutex
	// The formatted session url of the TabQ server
	Url *url.URL

	conn   *websocket.Conn
	req_id int
}

func NewClient(server_url, table string, options Options) (*Client, error) {
	u, err := url.Parse(server_url)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/tables/" + url.PathEscape(table) + "/session"

	q := u.Query()
	if len(options.Username) > 0 {
		q.Set("username", options.Username)
		q.Set("password", options.Password)
	}
	u.RawQuery = q.Encode()

	return &Client{Url: u}, nil
}

func (c *Client) GetLocker() *sync.RWMutex { return &c.Locker }

func (c *Client) connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	conn, res, err := websocket.DefaultDialer.DialContext(ctx, c.Url.String(), nil)
	if err != nil {
		return err
	}
	if msg := res.Header.Get("tabq-error"); len(msg) > 0 {
		conn.Close()
		return fmt.Errorf("TabQ Error: %s", msg)
	}

	pkg.DebugLog("Connected to TabQ server", c.Url.Host)
	c.conn = conn
	return nil
}

func (c *Client) Connect(ctx context.Context) error {
	_, err := pkg.LockWrapResult(c, func() (struct{}, error) {
		return struct{}{}, c.connect(ctx)
	})
	return err
}

func (c *Client) Disconnect() error {
	_, err := pkg.LockWrapResult(c, func() (struct{}, error) {
		if c.conn == nil {
			return struct{}{}, nil
		}
		defer func() { c.conn = nil }()
		err := c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Disconnect"))
		if err != nil {
			c.conn.Close()
			return struct{}{}, err
		}
		return struct{}{}, c.conn.Close()
	})
	return err
}

type Response struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	ReqId   int             `json:"__tabq_req_id__"`
}

type View struct {
	Rows          []pkg.Map[string, any] `json:"rows"`
	FilteredCount int                    `json:"filtered_count"`
	TotalItems    int                    `json:"total_items"`
	TotalPages    int                    `json:"total_pages"`
	CurrentPage   int                    `json:"current_page"`
	ItemsPerPage  int                    `json:"items_per_page"`
	RemotePending bool                   `json:"remote_pending"`
	RemoteError   string                 `json:"remote_error"`
}

// ResponseError is a response with a non 2xx status.
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("TabQ Error %d: %s", e.Status, e.Message)
}

// Do sends one action and waits for its response. Pushed views and
// responses to abandoned requests are skipped.
func (c *Client) Do(ctx context.Context, action string, payload map[string]any) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	return pkg.LockWrapResult(c, func() (Response, error) {
		if err := c.connect(ctx); err != nil {
			return Response{}, err
		}

		c.req_id++
		id := c.req_id
		msg := map[string]any{"action": action, "__tabq_req_id__": id}
		for k, v := range payload {
			msg[k] = v
		}

		stop := context.AfterFunc(ctx, func() { c.conn.SetReadDeadline(time.Now()) })
		defer stop()

		if err := c.conn.WriteJSON(msg); err != nil {
			c.drop()
			return Response{}, err
		}
		for {
			var res Response
			if err := c.conn.ReadJSON(&res); err != nil {
				c.drop()
				if ctx.Err() != nil {
					return Response{}, ctx.Err()
				}
				return Response{}, errors.Wrapf(err, "reading %s response", action)
			}
			if res.ReqId != id {
				continue
			}
			if res.Status < 200 || res.Status >= 300 {
				return res, &ResponseError{res.Status, res.Message}
			}
			return res, nil
		}
	})
}

// drop discards a connection that can no longer be read from.
func (c *Client) drop() {
	c.conn.Close()
	c.conn = nil
}

func (c *Client) doView(ctx context.Context, action string, payload map[string]any) (View, error) {
	res, err := c.Do(ctx, action, payload)
	if err != nil {
		return View{}, err
	}
	var v View
	if err := json.Unmarshal(res.Data, &v); err != nil {
		return View{}, errors.Wrap(err, "decoding view")
	}
	return v, nil
}

func (c *Client) View(ctx context.Context) (View, error) {
	return c.doView(ctx, "view", nil)
}

func (c *Client) SetSearch(ctx context.Context, term string) (View, error) {
	return c.doView(ctx, "setSearch", map[string]any{"term": term})
}

func (c *Client) AddFilter(ctx context.Context, field, operator string, value any) (View, error) {
	return c.doView(ctx, "addFilter", map[string]any{"field": field, "operator": operator, "value": value})
}

func (c *Client) RemoveFilter(ctx context.Context, field string) (View, error) {
	return c.doView(ctx, "removeFilter", map[string]any{"field": field})
}

func (c *Client) AddSort(ctx context.Context, field, direction string) (View, error) {
	return c.doView(ctx, "addSort", map[string]any{"field": field, "direction": direction})
}

func (c *Client) SetPage(ctx context.Context, page int) (View, error) {
	return c.doView(ctx, "setPage", map[string]any{"page": page})
}

func (c *Client) SetPageSize(ctx context.Context, size int) (View, error) {
	return c.doView(ctx, "setPageSize", map[string]any{"size": size})
}

type CsvArtifact struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

func (c *Client) ExportCsv(ctx context.Context, title string) (CsvArtifact, error) {
	res, err := c.Do(ctx, "exportCsv", map[string]any{"title": title})
	if err != nil {
		return CsvArtifact{}, err
	}
	var a CsvArtifact
	if err := json.Unmarshal(res.Data, &a); err != nil {
		return CsvArtifact{}, errors.Wrap(err, "decoding csv artifact")
	}
	return a, nil
}
