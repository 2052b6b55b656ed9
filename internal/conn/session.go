package conn

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tobsdb/tabq/internal/auth"
	"github.com/tobsdb/tabq/internal/builder"
	"github.com/tobsdb/tabq/internal/query"
	"github.com/tobsdb/tabq/pkg"
)

const REQ_ID_KEY = "__tabq_req_id__"

type WsRequest struct {
	Action RequestAction `json:"action"`
	ReqId  int           `json:"__tabq_req_id__"`
}

var Upgrader = websocket.Upgrader{
	WriteBufferSize: 1024 * 10,
	ReadBufferSize:  1024 * 10,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const MAX_MESSAGE_SIZE = 1 << 20

// Session is one client's view of a dataset. Its table state lives as long
// as the websocket connection.
type Session struct {
	Locker  sync.RWMutex
	Id      string
	User    *auth.User
	Dataset *Dataset
	Table   *query.Table[builder.Row]

	server *Server
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
}

func NewSession(server *Server, dataset *Dataset, user *auth.User, conn *websocket.Conn) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		Id:      uuid.New().String(),
		User:    user,
		Dataset: dataset,
		server:  server,
		conn:    conn,
		ctx:     ctx,
		cancel:  cancel,
	}
	s.Table = query.NewTable(dataset.Rows, query.Options[builder.Row]{
		Accessor:     query.MapAccessor,
		Columns:      dataset.Table.Columns(),
		ItemsPerPage: server.Settings.ItemsPerPage,
	})
	if dataset.Remote != nil {
		remote := query.NewRemote(dataset.Remote, server.Settings.RemoteDelay)
		s.Table.UseRemote(ctx, remote, s.deliver)
	}
	return s
}

func (s *Session) GetLocker() *sync.RWMutex { return &s.Locker }

// WriteResponse must be called with the session lock held so responses and
// remote pushes leave in the order they were produced.
func (s *Session) WriteResponse(r Response) error {
	s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return s.conn.WriteJSON(r)
}

// deliver pushes an accepted remote search result to the client as an
// unsolicited view.
func (s *Session) deliver(res query.RemoteResult[builder.Row]) {
	pkg.LockWrap(s, func() {
		if s.ctx.Err() != nil || !s.Table.ApplyRemote(res) {
			return
		}
		r := NewResponse(http.StatusOK, "Remote search results", NewViewData(s.Table))
		if res.Err != nil {
			r.Status = http.StatusBadGateway
		}
		if err := s.WriteResponse(r); err != nil {
			pkg.ErrorLog("writing remote results", err)
		}
	})
}

func (s *Session) Close(reason string) {
	s.cancel()
	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, reason),
		time.Now().Add(time.Second))
	s.conn.Close()
}

// Serve reads requests until the connection closes.
func (s *Session) Serve() {
	defer s.cancel()
	defer s.conn.Close()
	defer pkg.InfoLog("Session closed", s.Id, s.conn.RemoteAddr())

	s.conn.SetReadLimit(MAX_MESSAGE_SIZE)
	for {
		_, buf, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				pkg.ErrorLog("conn read error", err)
			}
			return
		}

		var req WsRequest
		if err := json.Unmarshal(buf, &req); err != nil {
			pkg.ErrorLog("parsing request", err)
			_, write_err := pkg.LockWrapResult(s, func() (struct{}, error) {
				return struct{}{}, s.WriteResponse(NewErrorResponse(http.StatusBadRequest, err.Error()))
			})
			if write_err != nil {
				return
			}
			continue
		}

		_, err = pkg.LockWrapResult(s, func() (struct{}, error) {
			res := ActionHandler(s, req.Action, buf)
			res.ReqId = req.ReqId
			return struct{}{}, s.WriteResponse(res)
		})
		if err != nil {
			pkg.ErrorLog("writing response", err)
			return
		}
	}
}

func ConnError(w http.ResponseWriter, r *http.Request, conn_error string) {
	pkg.InfoLog("connection error:", conn_error)
	headers := http.Header{}
	headers.Set("tabq-error", conn_error)
	conn, err := Upgrader.Upgrade(w, r, headers)
	if err != nil {
		pkg.ErrorLog(err)
		return
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseUnsupportedData, conn_error))
	conn.Close()
}
