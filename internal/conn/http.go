package conn

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tobsdb/tabq/internal/auth"
	"github.com/tobsdb/tabq/internal/builder"
	"github.com/tobsdb/tabq/internal/export"
	"github.com/tobsdb/tabq/internal/query"
	"github.com/tobsdb/tabq/pkg"
)

// authenticate reads credentials from basic auth or the username and
// password query parameters.
func (s *Server) authenticate(r *http.Request) *auth.User {
	name, password, ok := r.BasicAuth()
	if !ok {
		q := r.URL.Query()
		name, password = q.Get("username"), q.Get("password")
	}
	return s.Users.Validate(name, password)
}

func writeJSON(w http.ResponseWriter, status int, res Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		pkg.ErrorLog("writing response", err)
	}
}

type TableInfo struct {
	*builder.Table
	Rows int `json:"rows"`
}

func (t TableInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name    string        `json:"name"`
		Columns query.Columns `json:"columns"`
		Rows    int           `json:"rows"`
	}{t.Name, t.Columns(), t.Rows})
}

func (s *Server) ListTables(w http.ResponseWriter, r *http.Request) {
	if s.authenticate(r) == nil {
		writeJSON(w, http.StatusUnauthorized, NewErrorResponse(http.StatusUnauthorized, "Invalid auth"))
		return
	}
	tables := []TableInfo{}
	for _, d := range s.Datasets() {
		tables = append(tables, TableInfo{d.Table, len(d.Rows)})
	}
	writeJSON(w, http.StatusOK, NewResponse(http.StatusOK, "Tables", tables))
}

func (s *Server) HandleSession(w http.ResponseWriter, r *http.Request) {
	user := s.authenticate(r)
	if user == nil {
		ConnError(w, r, "Invalid auth")
		return
	}
	dataset, ok := s.Dataset(chi.URLParam(r, "table"))
	if !ok {
		ConnError(w, r, "Table not found")
		return
	}

	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		pkg.ErrorLog(err)
		return
	}

	session := NewSession(s, dataset, user, conn)
	s.addSession(session)
	defer s.removeSession(session)

	pkg.InfoLog("Session", session.Id, "opened on table", dataset.Name(), "by", user.Name)
	session.Serve()
}

// HandleExport downloads the full searched, filtered and sorted set as CSV.
// Query parameters: search, filter (field:operator:value, repeatable),
// sort (field:direction, repeatable) and title.
func (s *Server) HandleExport(w http.ResponseWriter, r *http.Request) {
	user := s.authenticate(r)
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, NewErrorResponse(http.StatusUnauthorized, "Invalid auth"))
		return
	}
	if !user.HasClearance(auth.UserRoleExporter) {
		writeJSON(w, http.StatusForbidden, NewErrorResponse(http.StatusForbidden, auth.InsufficientPermissions.Error()))
		return
	}
	dataset, ok := s.Dataset(chi.URLParam(r, "table"))
	if !ok {
		writeJSON(w, http.StatusNotFound, NewErrorResponse(http.StatusNotFound, "Table not found"))
		return
	}

	q := r.URL.Query()
	t, err := BuildTable(dataset, q.Get("search"), q["filter"], q["sort"])
	if err != nil {
		res := configErrorResponse(err)
		writeJSON(w, res.Status, res)
		return
	}

	title := q.Get("title")
	if len(title) == 0 {
		title = dataset.Name()
	}
	_, err = export.ExportCSV(r.Context(), export.ResponseWriter{W: w}, title,
		t.Filtered(), t.Columns(), query.MapAccessor, s.Settings.CSV)
	if err != nil {
		var export_err *export.Error
		if errors.As(err, &export_err) && export_err.Row < 0 {
			// headers are already sent
			pkg.ErrorLog(err)
			return
		}
		res := exportErrorResponse(err)
		writeJSON(w, res.Status, res)
	}
}

// BuildTable makes a one-shot table over the dataset's local rows from
// text search, filter and sort expressions.
func BuildTable(dataset *Dataset, search string, filters, sorts []string) (*query.Table[builder.Row], error) {
	cols := dataset.Table.Columns()
	t := query.NewTable(dataset.Rows, query.Options[builder.Row]{
		Accessor: query.MapAccessor,
		Columns:  cols,
	})
	t.SetSearchTerm(search)

	for _, expr := range filters {
		if field, _, found := strings.Cut(expr, ":"); found {
			if _, err := checkColumn(cols, strings.TrimSpace(field), "filterable", isFilterable); err != nil {
				return nil, err
			}
		}
		c, err := query.ParseCriterion(expr, cols.TypeOf)
		if err != nil {
			return nil, err
		}
		if err := t.AddFilter(c); err != nil {
			return nil, err
		}
	}

	keys := query.SortKeys{}
	for _, expr := range sorts {
		k, err := query.ParseSortKey(expr)
		if err != nil {
			return nil, err
		}
		if _, err := checkColumn(cols, k.Field, "sortable", isSortable); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if err := t.SetSort(keys); err != nil {
		return nil, err
	}
	return t, nil
}
