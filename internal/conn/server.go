package conn

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tobsdb/tabq/internal/auth"
	"github.com/tobsdb/tabq/internal/builder"
	"github.com/tobsdb/tabq/internal/export"
	"github.com/tobsdb/tabq/internal/query"
	"github.com/tobsdb/tabq/pkg"
	"golang.org/x/sync/errgroup"
)

// Dataset is a table descriptor with its loaded records.
type Dataset struct {
	Table *builder.Table
	Rows  []builder.Row
	// Remote, when set, serves searches instead of the local rows.
	Remote query.Searcher[builder.Row]
}

// NewDataset checks rows against the table's fields. Rows that break a
// field rule are kept and reported in the log.
func NewDataset(table *builder.Table, rows []builder.Row) *Dataset {
	for _, err := range table.CheckRows(rows) {
		pkg.WarnLog(err)
	}
	return &Dataset{Table: table, Rows: rows}
}

func (d *Dataset) Name() string { return d.Table.Name }

type Settings struct {
	ItemsPerPage int
	RemoteDelay  time.Duration
	CSV          export.CSVOptions
	// Renderer receives document export requests. Without one the request
	// is only returned to the client.
	Renderer export.DocumentRenderer
}

type Server struct {
	Locker   sync.RWMutex
	Users    auth.Users
	Settings Settings

	datasets *pkg.InsertSortMap[string, *Dataset]
	sessions pkg.Map[string, *Session]
}

func NewServer(users auth.Users, settings Settings) *Server {
	if settings.ItemsPerPage <= 0 {
		settings.ItemsPerPage = 10
	}
	if settings.Renderer == nil {
		settings.Renderer = export.DocumentRendererFunc(func(_ context.Context, req export.DocumentRequest) error {
			pkg.DebugLog("document requested", req.ContainerID, req.Filename)
			return nil
		})
	}
	return &Server{
		Users:    users,
		Settings: settings,
		datasets: pkg.NewInsertSortMap[string, *Dataset](),
		sessions: pkg.Map[string, *Session]{},
	}
}

func (s *Server) GetLocker() *sync.RWMutex { return &s.Locker }

func (s *Server) AddDataset(d *Dataset) {
	pkg.LockWrap(s, func() { s.datasets.Set(d.Name(), d) })
}

func (s *Server) Dataset(name string) (d *Dataset, ok bool) {
	pkg.RLockWrap(s, func() {
		ok = s.datasets.Has(name)
		d = s.datasets.Get(name)
	})
	return
}

func (s *Server) Datasets() (list []*Dataset) {
	pkg.RLockWrap(s, func() { list = s.datasets.Values() })
	return
}

func (s *Server) SessionCount() (n int) {
	pkg.RLockWrap(s, func() { n = len(s.sessions) })
	return
}

func (s *Server) addSession(session *Session) {
	pkg.LockWrap(s, func() { s.sessions.Set(session.Id, session) })
}

func (s *Server) removeSession(session *Session) {
	pkg.LockWrap(s, func() { s.sessions.Delete(session.Id) })
}

// Router serves the HTTP and websocket endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/tables", s.ListTables)
	r.Route("/tables/{table}", func(r chi.Router) {
		r.Get("/session", s.HandleSession)
		r.Get("/export.csv", s.HandleExport)
	})
	return r
}

// Listen serves on port until ctx is cancelled, then shuts down and closes
// every open session.
func (s *Server) Listen(ctx context.Context, port int) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Router(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		pkg.InfoLog("TabQ listening on port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdown_ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		pkg.DebugLog("Shutting down...")
		err := srv.Shutdown(shutdown_ctx)
		for _, session := range s.openSessions() {
			session.Close("server shutting down")
		}
		return err
	})

	return eg.Wait()
}

func (s *Server) openSessions() (list []*Session) {
	pkg.RLockWrap(s, func() {
		for _, session := range s.sessions {
			list = append(list, session)
		}
	})
	return
}
